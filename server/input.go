package server

// InputState 一帧客户端输入快照（构造后不可变）
// Sprint/Jump 不参与网格移动分支，仅随快照原样保存
type InputState struct {
	Forward   bool `json:"forward"`
	Backward  bool `json:"backward"`
	Left      bool `json:"left"`
	Right     bool `json:"right"`
	Attack    bool `json:"attack"`
	CastSpell bool `json:"castSpell"`
	Sprint    bool `json:"sprint"`
	Jump      bool `json:"jump"`

	// Sequence 单调递增的输入帧序号，外层传输负责排序与去重；核心只负责记录
	Sequence uint64 `json:"-"`
}

// InputMessage 入站 WebSocket 文本消息
// 示例：{"type":"input","seq":42,"input":{"forward":true},"rotation":{"y":1.57},"animation":"walk-forward"}
type InputMessage struct {
	Type      string     `json:"type"`
	Seq       uint64     `json:"seq"`
	Input     InputState `json:"input"`
	Rotation  Vector3    `json:"rotation"`
	Animation string     `json:"animation"`
}

// inputEvent 路由进房间输入通道的完整事件（输入 + 客户端上报的朝向与动画名）
type inputEvent struct {
	PlayerID  PlayerID
	Input     InputState
	Rotation  Vector3
	Animation string
}
