package server

import "math"

// gridCellSize 网格移动的固定步长（世界单位），所有位置吸附到它的整数倍
const gridCellSize float32 = 1.0

// normalizeYaw 将任意偏航角规整到 [0, 2π)
// 先加一整圈再取模，避免负角度取模结果为负
func normalizeYaw(yaw float32) float64 {
	const twoPi = 2 * math.Pi
	return math.Mod(math.Mod(float64(yaw), twoPi)+twoPi, twoPi)
}

// snapToGrid 将坐标吸附到最近的格长整数倍（四舍五入，0.5 远离零）
func snapToGrid(v float32) float32 {
	return float32(math.Round(float64(v)/float64(gridCellSize))) * gridCellSize
}

// CalculateNewPosition 网格瞬移：由当前位置、面朝方向与输入解析出下一个格子
// 每次调用至多沿一个轴移动一格；四个方向键按 前 > 后 > 右 > 左 取最高优先级那个，
// 全不按下时原地返回。纯函数，无副作用。
//
// 朝向按四个基本方位分桶（Three.js 约定：0 弧度朝 -Z；顺时针增大）：
// 北 = -Z，东 = +X，南 = +Z，西 = -X，扇区在 ±45° 处分界
func CalculateNewPosition(position, rotation Vector3, input InputState) Vector3 {
	newPosition := position

	yaw := normalizeYaw(rotation.Y)

	if input.Forward {
		// 沿面朝方位前进一格
		if yaw < math.Pi*0.25 || yaw > math.Pi*1.75 {
			// 面朝北（-Z）
			newPosition.Z -= gridCellSize
		} else if yaw < math.Pi*0.75 {
			// 面朝东（+X）
			newPosition.X += gridCellSize
		} else if yaw < math.Pi*1.25 {
			// 面朝南（+Z）
			newPosition.Z += gridCellSize
		} else {
			// 面朝西（-X）
			newPosition.X -= gridCellSize
		}
	} else if input.Backward {
		// 沿面朝方位的反向后退一格
		if yaw < math.Pi*0.25 || yaw > math.Pi*1.75 {
			// 面朝北，往南退
			newPosition.Z += gridCellSize
		} else if yaw < math.Pi*0.75 {
			// 面朝东，往西退
			newPosition.X -= gridCellSize
		} else if yaw < math.Pi*1.25 {
			// 面朝南，往北退
			newPosition.Z -= gridCellSize
		} else {
			// 面朝西，往东退
			newPosition.X += gridCellSize
		}
	} else if input.Right {
		// 面朝方位顺时针 90° 平移一格
		if yaw < math.Pi*0.25 || yaw > math.Pi*1.75 {
			// 面朝北，往东移
			newPosition.X += gridCellSize
		} else if yaw < math.Pi*0.75 {
			// 面朝东，往南移
			newPosition.Z += gridCellSize
		} else if yaw < math.Pi*1.25 {
			// 面朝南，往西移
			newPosition.X -= gridCellSize
		} else {
			// 面朝西，往北移
			newPosition.Z -= gridCellSize
		}
	} else if input.Left {
		// 面朝方位逆时针 90° 平移一格
		if yaw < math.Pi*0.25 || yaw > math.Pi*1.75 {
			// 面朝北，往西移
			newPosition.X -= gridCellSize
		} else if yaw < math.Pi*0.75 {
			// 面朝东，往北移
			newPosition.Z -= gridCellSize
		} else if yaw < math.Pi*1.25 {
			// 面朝南，往东移
			newPosition.X += gridCellSize
		} else {
			// 面朝西，往南移
			newPosition.Z += gridCellSize
		}
	}

	// 各分支只做整格增量，这里再吸附一次兜底
	newPosition.X = snapToGrid(newPosition.X)
	newPosition.Z = snapToGrid(newPosition.Z)

	return newPosition
}
