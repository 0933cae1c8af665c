package server

// PlayerID 表示玩家唯一标识
type PlayerID string

// Vector3 三维向量：作为位置时 x/z 为网格平面、y 为高度；
// 作为朝向时 y 为偏航角（弧度），x/z 不参与移动计算
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Player 房间内的玩家权威记录（仅在 Tick 协程内读写）
type Player struct {
	ID       PlayerID
	Position Vector3 // 网格对齐位置：x/z 恒为格长整数倍
	Rotation Vector3 // 客户端上报的连续朝向，从不吸附，仅作解析输入的依据

	// IsTeleporting 瞬移标记：提示客户端本次位移为离散跳格，跳过插值
	IsTeleporting bool
	IsMoving      bool
	IsRunning     bool
	IsAttacking   bool
	IsCasting     bool

	CurrentAnimation string
	LastInput        InputState // 最近一次生效的输入快照（回放/排查用）
	LastInputSeq     uint64

	inputsThisTick int // 当前 Tick 已接受的输入数，限流用，每帧清零

	Conn *ClientConn // 网络连接的发送端（写协程）
}

// PlayerSnapshot 广播给客户端的轻量状态
type PlayerSnapshot struct {
	ID            string  `json:"id"`
	Position      Vector3 `json:"position"`
	Rotation      Vector3 `json:"rotation"`
	Animation     string  `json:"animation"`
	IsTeleporting bool    `json:"isTeleporting"`
	IsAttacking   bool    `json:"isAttacking"`
	IsCasting     bool    `json:"isCasting"`
	LastSeq       uint64  `json:"lastSeq"` // 客户端据此确认本地预测
}

func (p *Player) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:            string(p.ID),
		Position:      p.Position,
		Rotation:      p.Rotation,
		Animation:     p.CurrentAnimation,
		IsTeleporting: p.IsTeleporting,
		IsAttacking:   p.IsAttacking,
		IsCasting:     p.IsCasting,
		LastSeq:       p.LastInputSeq,
	}
}
