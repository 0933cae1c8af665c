package server

import (
	"context"
	"time"
)

const (
	// TicksPerSecond 世界推进频率（20 TPS）
	TicksPerSecond = 20
)

var tickInterval = time.Duration(1000/TicksPerSecond) * time.Millisecond // 50ms

// TickHook 每个 Tick 调用一次的扩展点，dt 为距上一 Tick 的秒数
// 预留给未来服务端驱动的玩法（AI、机关、地形效果）；当前所有位移都由输入事件同步驱动
type TickHook interface {
	OnTick(ctx context.Context, dt float64)
}

// PlayerLogicHook 默认空实现：瞬移模型下位移全部由按键驱动，周期内无事可做
type PlayerLogicHook struct{}

func (PlayerLogicHook) OnTick(ctx context.Context, dt float64) {}

// RegisterHook 注册 Tick 扩展（需在 StartTicker 之前调用）
func (r *Room) RegisterHook(h TickHook) {
	r.hooks = append(r.hooks, h)
}

// StartTicker 启动房间的 Tick 循环（单协程推进世界）
func (r *Room) StartTicker() {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-r.ctx.Done():
				// 退出前最后一轮落盘；房间 ctx 已取消，换一个带超时的
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				r.flushPositions(flushCtx)
				cancel()
				Log.Infof("room ticker stopped: room=%s tick=%d", r.ID, r.tickSeq)
				return
			case now := <-ticker.C:
				// 核心循环：整帧状态 → 处理输入 → 扩展钩子 → 广播 → 落盘
				start := time.Now()
				dt := now.Sub(last).Seconds()
				last = now
				r.BeginTick()
				r.ProcessInputs()
				for _, h := range r.hooks {
					h.OnTick(r.ctx, dt)
				}
				r.Broadcast()
				r.maybePersist()
				r.metrics.AddTick(time.Since(start).Nanoseconds())
			}
		}
	}()
}
