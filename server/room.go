package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"
)

// Room 房间世界：权威状态维护在内存，单协程 Tick 推进
// 玩家表只在 Tick 协程内读写，加入/离开/输入一律经通道路由进来
type Room struct {
	ID string

	Players   map[PlayerID]*Player
	inputChan chan inputEvent
	joinChan  chan joinRequest
	leaveChan chan leaveRequest

	// 配置：可经 /admin/config 热更新，cfgMu 保护跨协程读写
	cfg   roomConfig
	cfgMu sync.RWMutex

	hooks   []TickHook
	store   PlayerStore
	tickSeq uint64
	metrics *RoomMetrics

	ctx           context.Context
	cancel        context.CancelFunc
	tickerStarted bool
}

// joinRequest 加入请求：连接已建立，等 Tick 协程接收进玩家表
type joinRequest struct {
	ID   PlayerID
	Conn *ClientConn
}

// leaveRequest 离开请求：带上发起请求的连接，
// 被重连顶掉的旧连接退出时发来的请求据此识别并忽略
type leaveRequest struct {
	ID   PlayerID
	Conn *ClientConn
}

// roomConfig 房间可热更新的规则集合
type roomConfig struct {
	Spawn              Vector3
	MaxInputsPerTick   int
	SimulateDelayMinMs int
	SimulateDelayMaxMs int
	SimulateDropProb   float64
	PersistEveryTicks  int
}

// NewRoom 创建房间，初始化数据结构；store 可为 nil（不持久化）
func NewRoom(id string, store PlayerStore) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	return &Room{
		ID:        id,
		Players:   make(map[PlayerID]*Player),
		inputChan: make(chan inputEvent, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		joinChan:  make(chan joinRequest, 64),
		leaveChan: make(chan leaveRequest, 64),
		cfg: roomConfig{
			MaxInputsPerTick:  5,
			PersistEveryTicks: 100, // 20 TPS 下约 5 秒落盘一次
		},
		store:   store,
		metrics: &RoomMetrics{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// JoinPlayer 请求加入：统一路由到 Tick 协程处理，避免并发改动玩家表
func (r *Room) JoinPlayer(id PlayerID, conn *ClientConn) {
	select {
	case r.joinChan <- joinRequest{ID: id, Conn: conn}:
	default:
		// 加入通道拥塞：直接断开，避免阻塞网络协程
		conn.Close()
	}
}

// RequestLeave 请求在 Tick 协程中移除玩家；conn 为发起退出的连接，nil 表示无条件移除
// 为保证移除一定生效，这里采用阻塞式写入（通道有容量，避免死锁）；
// 房间关停后 Tick 协程不再消费，退化为对 ctx.Done 的选择，防止挂起网络协程
func (r *Room) RequestLeave(pid PlayerID, conn *ClientConn) {
	select {
	case r.leaveChan <- leaveRequest{ID: pid, Conn: conn}:
	case <-r.ctx.Done():
	}
}

// configSnapshot 取一份配置副本，供 Tick 协程与网络协程读取
func (r *Room) configSnapshot() roomConfig {
	r.cfgMu.RLock()
	defer r.cfgMu.RUnlock()
	return r.cfg
}

// UpdateConfig 在锁内修改配置（/admin/config 热更新入口）
func (r *Room) UpdateConfig(fn func(*roomConfig)) {
	r.cfgMu.Lock()
	defer r.cfgMu.Unlock()
	fn(&r.cfg)
}

// OnInput 入站输入（不立即生效），先过网络条件模拟，再入队等下一次 Tick
func (r *Room) OnInput(ev inputEvent) {
	cfg := r.configSnapshot()
	if p := cfg.SimulateDropProb; p > 0 && rand.Float64() < p {
		r.metrics.IncDropsSimulated()
		return
	}
	if maxMs := cfg.SimulateDelayMaxMs; maxMs > 0 {
		minMs := cfg.SimulateDelayMinMs
		if minMs > maxMs {
			minMs = maxMs
		}
		delay := minMs
		if maxMs > minMs {
			delay = minMs + rand.Intn(maxMs-minMs+1)
		}
		time.AfterFunc(time.Duration(delay)*time.Millisecond, func() { r.enqueue(ev) })
		return
	}
	r.enqueue(ev)
}

// enqueue 非阻塞入队：输入拥塞时丢弃，保证 Tick 准时
func (r *Room) enqueue(ev inputEvent) {
	select {
	case r.inputChan <- ev:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// BeginTick 推进 Tick 序号并重置帧内状态（限流计数）
func (r *Room) BeginTick() {
	r.tickSeq++
	for _, p := range r.Players {
		p.inputsThisTick = 0
	}
}

// ProcessInputs 处理当前帧积压的加入/离开/输入事件（非阻塞 drain）
func (r *Room) ProcessInputs() {
	for {
		select {
		case req := <-r.joinChan:
			r.addPlayer(req)
		case req := <-r.leaveChan:
			r.removePlayer(req)
		case ev := <-r.inputChan:
			r.applyInputEvent(ev)
		default:
			return
		}
	}
}

// addPlayer 接收加入请求；有存档则恢复上次站位，否则落在出生点
func (r *Room) addPlayer(req joinRequest) {
	if old, ok := r.Players[req.ID]; ok {
		// 同名重连：顶掉旧连接，保留记录
		if old.Conn != nil && old.Conn != req.Conn {
			old.Conn.Close()
		}
		old.Conn = req.Conn
		Log.Infof("player reconnected: room=%s player=%s", r.ID, req.ID)
		return
	}
	pos := r.configSnapshot().Spawn
	if r.store != nil {
		if saved, found, err := r.store.Load(r.ctx, req.ID); err != nil {
			r.metrics.IncPersistError()
			Log.Warnf("load position failed: room=%s player=%s err=%v", r.ID, req.ID, err)
		} else if found {
			pos = saved
		}
	}
	p := &Player{
		ID:               req.ID,
		Position:         pos,
		CurrentAnimation: "idle",
		Conn:             req.Conn,
	}
	r.Players[req.ID] = p
	Log.Infof("player joined: room=%s player=%s pos=(%.0f,%.0f,%.0f)", r.ID, req.ID, pos.X, pos.Y, pos.Z)
}

// removePlayer 移除玩家并落盘最终站位
// 重连顶掉旧连接后，旧读泵退出时的离开请求带着旧连接，与当前连接不符则忽略，
// 否则刚重连上的玩家会被旧连接的收尾动作踢下线
func (r *Room) removePlayer(req leaveRequest) {
	p, ok := r.Players[req.ID]
	if !ok {
		return
	}
	if req.Conn != nil && p.Conn != req.Conn {
		Log.Debugf("stale leave ignored: room=%s player=%s", r.ID, req.ID)
		return
	}
	if r.store != nil {
		if err := r.store.Save(r.ctx, req.ID, p.Position); err != nil {
			r.metrics.IncPersistError()
			Log.Warnf("save position failed: room=%s player=%s err=%v", r.ID, req.ID, err)
		}
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.Players, req.ID)
	Log.Infof("player left: room=%s player=%s", r.ID, req.ID)
}

// applyInputEvent 去重、限流之后把一帧输入折叠进玩家记录
func (r *Room) applyInputEvent(ev inputEvent) {
	p, ok := r.Players[ev.PlayerID]
	if !ok {
		return
	}
	if ev.Input.Sequence != 0 && ev.Input.Sequence <= p.LastInputSeq {
		// 旧序列或重复帧：乱序由客户端重发解决，服务端直接忽略
		r.metrics.IncStaleSeqIgnored()
		return
	}
	if limit := r.configSnapshot().MaxInputsPerTick; limit > 0 && p.inputsThisTick >= limit {
		r.metrics.IncRateLimited()
		return
	}
	p.inputsThisTick++
	ApplyInput(p, ev.Input, ev.Rotation, ev.Animation)
	r.metrics.IncApplied()
}

// Broadcast 将当前世界状态广播给所有玩家（文本 JSON）
func (r *Room) Broadcast() {
	snapshot := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		snapshot = append(snapshot, p.snapshot())
	}
	payload := struct {
		Type    string           `json:"type"`
		Tick    uint64           `json:"tick"`
		Players []PlayerSnapshot `json:"players"`
	}{Type: "state", Tick: r.tickSeq, Players: snapshot}

	b, _ := json.Marshal(payload)
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Enqueue(b)
		}
	}
}

// maybePersist 按 PersistEveryTicks 周期批量落盘玩家位置
func (r *Room) maybePersist() {
	every := r.configSnapshot().PersistEveryTicks
	if r.store == nil || every <= 0 {
		return
	}
	if r.tickSeq%uint64(every) != 0 {
		return
	}
	r.flushPositions(r.ctx)
}

// flushPositions 批量写出所有在线玩家的位置；失败只记日志，不影响 Tick
func (r *Room) flushPositions(ctx context.Context) {
	if r.store == nil || len(r.Players) == 0 {
		return
	}
	batch := make(map[PlayerID]Vector3, len(r.Players))
	for id, p := range r.Players {
		batch[id] = p.Position
	}
	if err := r.store.BatchSave(ctx, batch); err != nil {
		r.metrics.IncPersistError()
		Log.Warnf("persist positions failed: room=%s players=%d err=%v", r.ID, len(batch), err)
	}
}

// Shutdown 停止 Tick 循环；最后一轮落盘由 Tick 协程在退出前完成
func (r *Room) Shutdown() {
	r.cancel()
}
