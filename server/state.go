package server

// ApplyInput 将一帧输入折叠进玩家权威记录
// 调用方（房间 Tick 协程）持有记录的独占访问权；排序与去重也由调用方负责，
// 这里只原样记录拿到的序号。朝向与动画名直接信任客户端上报值。
func ApplyInput(p *Player, input InputState, clientRot Vector3, clientAnim string) {
	// 按客户端上报的朝向解析目标格
	newPosition := CalculateNewPosition(p.Position, clientRot, input)

	// 瞬移标记：告知客户端这是离散跳格，不做插值
	p.IsTeleporting = true

	p.Position = newPosition
	p.Rotation = clientRot
	p.CurrentAnimation = clientAnim
	p.LastInput = input
	p.LastInputSeq = input.Sequence

	// 瞬移模型下不存在持续位移，这两个标记恒为 false
	p.IsMoving = false
	p.IsRunning = false

	p.IsAttacking = input.Attack
	p.IsCasting = input.CastSpell
}
