package server

import (
	"math"
	"testing"
)

func TestNormalizeYaw(t *testing.T) {
	cases := []struct {
		name string
		yaw  float32
		want float64
	}{
		{name: "zero", yaw: 0, want: 0},
		{name: "quarter_turn", yaw: float32(math.Pi / 2), want: math.Pi / 2},
		{name: "negative_quarter_turn", yaw: float32(-math.Pi / 2), want: 3 * math.Pi / 2},
		{name: "full_turn", yaw: float32(2 * math.Pi), want: 0},
		{name: "two_and_half_turns", yaw: float32(5 * math.Pi), want: math.Pi},
		{name: "negative_wrap", yaw: float32(-7 * math.Pi / 4), want: math.Pi / 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeYaw(tc.yaw)
			if got < 0 || got >= 2*math.Pi {
				t.Fatalf("normalizeYaw(%v) = %v, out of [0, 2π)", tc.yaw, got)
			}
			if math.Abs(got-tc.want) > 1e-4 {
				t.Fatalf("normalizeYaw(%v) = %v, want ~%v", tc.yaw, got, tc.want)
			}
		})
	}
}

func TestSnapToGrid(t *testing.T) {
	cases := []struct {
		name string
		in   float32
		want float32
	}{
		{name: "zero", in: 0, want: 0},
		{name: "already_aligned", in: -3, want: -3},
		{name: "round_down", in: 0.4, want: 0},
		{name: "round_up", in: 0.6, want: 1},
		{name: "half_away_from_zero", in: 0.5, want: 1},
		{name: "negative_half_away_from_zero", in: -0.5, want: -1},
		{name: "two_point_five", in: 2.5, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := snapToGrid(tc.in); got != tc.want {
				t.Fatalf("snapToGrid(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	// 幂等：已对齐的坐标再吸附一次不变
	for _, v := range []float32{-17, -1, 0, 2, 333} {
		if got := snapToGrid(snapToGrid(v)); got != v {
			t.Fatalf("snapToGrid not idempotent at %v: got %v", v, got)
		}
	}
}

func TestCalculateNewPositionCardinalMoves(t *testing.T) {
	start := Vector3{X: 2, Y: 0.5, Z: -3}

	cases := []struct {
		name  string
		yaw   float32
		input InputState
		want  Vector3
	}{
		// 面朝北（-Z）
		{name: "north_forward", yaw: 0, input: InputState{Forward: true}, want: Vector3{X: 2, Y: 0.5, Z: -4}},
		{name: "north_backward", yaw: 0, input: InputState{Backward: true}, want: Vector3{X: 2, Y: 0.5, Z: -2}},
		{name: "north_right", yaw: 0, input: InputState{Right: true}, want: Vector3{X: 3, Y: 0.5, Z: -3}},
		{name: "north_left", yaw: 0, input: InputState{Left: true}, want: Vector3{X: 1, Y: 0.5, Z: -3}},
		// 面朝东（+X）
		{name: "east_forward", yaw: float32(math.Pi / 2), input: InputState{Forward: true}, want: Vector3{X: 3, Y: 0.5, Z: -3}},
		{name: "east_backward", yaw: float32(math.Pi / 2), input: InputState{Backward: true}, want: Vector3{X: 1, Y: 0.5, Z: -3}},
		{name: "east_right", yaw: float32(math.Pi / 2), input: InputState{Right: true}, want: Vector3{X: 2, Y: 0.5, Z: -2}},
		{name: "east_left", yaw: float32(math.Pi / 2), input: InputState{Left: true}, want: Vector3{X: 2, Y: 0.5, Z: -4}},
		// 面朝南（+Z）
		{name: "south_forward", yaw: float32(math.Pi), input: InputState{Forward: true}, want: Vector3{X: 2, Y: 0.5, Z: -2}},
		{name: "south_backward", yaw: float32(math.Pi), input: InputState{Backward: true}, want: Vector3{X: 2, Y: 0.5, Z: -4}},
		{name: "south_right", yaw: float32(math.Pi), input: InputState{Right: true}, want: Vector3{X: 1, Y: 0.5, Z: -3}},
		{name: "south_left", yaw: float32(math.Pi), input: InputState{Left: true}, want: Vector3{X: 3, Y: 0.5, Z: -3}},
		// 面朝西（-X）
		{name: "west_forward", yaw: float32(3 * math.Pi / 2), input: InputState{Forward: true}, want: Vector3{X: 1, Y: 0.5, Z: -3}},
		{name: "west_backward", yaw: float32(3 * math.Pi / 2), input: InputState{Backward: true}, want: Vector3{X: 3, Y: 0.5, Z: -3}},
		{name: "west_right", yaw: float32(3 * math.Pi / 2), input: InputState{Right: true}, want: Vector3{X: 2, Y: 0.5, Z: -4}},
		{name: "west_left", yaw: float32(3 * math.Pi / 2), input: InputState{Left: true}, want: Vector3{X: 2, Y: 0.5, Z: -2}},
		// 负角度也按同样的方位解析
		{name: "negative_quarter_turn_is_west", yaw: float32(-math.Pi / 2), input: InputState{Forward: true}, want: Vector3{X: 1, Y: 0.5, Z: -3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateNewPosition(start, Vector3{Y: tc.yaw}, tc.input)
			if got != tc.want {
				t.Fatalf("CalculateNewPosition yaw=%v input=%+v: got %+v, want %+v", tc.yaw, tc.input, got, tc.want)
			}
		})
	}
}

// 原点场景：与客户端联调用的基准用例
func TestCalculateNewPositionFromOrigin(t *testing.T) {
	origin := Vector3{}

	if got := CalculateNewPosition(origin, Vector3{Y: 0}, InputState{Forward: true}); got != (Vector3{X: 0, Y: 0, Z: -1}) {
		t.Fatalf("facing north forward: got %+v, want (0,0,-1)", got)
	}
	if got := CalculateNewPosition(origin, Vector3{Y: 0}, InputState{Right: true}); got != (Vector3{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("facing north right: got %+v, want (1,0,0)", got)
	}
	if got := CalculateNewPosition(origin, Vector3{Y: float32(math.Pi)}, InputState{Forward: true}); got != (Vector3{X: 0, Y: 0, Z: 1}) {
		t.Fatalf("facing south forward: got %+v, want (0,0,1)", got)
	}
}

// 扇区分界角的归属由 float32 表示相对 float64 分界的舍入决定，需与既有行为逐位一致：
// π/4 的 float32 略大于分界 → 东；3π/4 略大 → 南；5π/4 与 7π/4 略小 → 各归前一扇区
func TestCalculateNewPositionYawBoundaries(t *testing.T) {
	origin := Vector3{}
	forward := InputState{Forward: true}

	cases := []struct {
		name string
		yaw  float32
		want Vector3
	}{
		{name: "quarter_pi_goes_east", yaw: float32(math.Pi / 4), want: Vector3{X: 1}},
		{name: "three_quarter_pi_goes_south", yaw: float32(3 * math.Pi / 4), want: Vector3{Z: 1}},
		{name: "five_quarter_pi_stays_south", yaw: float32(5 * math.Pi / 4), want: Vector3{Z: 1}},
		{name: "seven_quarter_pi_stays_west", yaw: float32(7 * math.Pi / 4), want: Vector3{X: -1}},
		// 分界附近的内点
		{name: "just_below_quarter_pi_is_north", yaw: float32(math.Pi/4) - 0.01, want: Vector3{Z: -1}},
		{name: "just_above_seven_quarter_pi_is_north", yaw: float32(7*math.Pi/4) + 0.01, want: Vector3{Z: -1}},
		{name: "just_below_five_quarter_pi_is_south", yaw: float32(5*math.Pi/4) - 0.01, want: Vector3{Z: 1}},
		{name: "just_above_five_quarter_pi_is_west", yaw: float32(5*math.Pi/4) + 0.01, want: Vector3{X: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateNewPosition(origin, Vector3{Y: tc.yaw}, forward)
			if got != tc.want {
				t.Fatalf("yaw=%v forward: got %+v, want %+v", tc.yaw, got, tc.want)
			}
		})
	}
}

// 方向键优先级：前 > 后 > 右 > 左
func TestCalculateNewPositionInputPriority(t *testing.T) {
	origin := Vector3{}

	cases := []struct {
		name  string
		input InputState
		want  Vector3
	}{
		{name: "forward_beats_right", input: InputState{Forward: true, Right: true}, want: Vector3{Z: -1}},
		{name: "forward_beats_all", input: InputState{Forward: true, Backward: true, Left: true, Right: true}, want: Vector3{Z: -1}},
		{name: "backward_beats_right", input: InputState{Backward: true, Right: true}, want: Vector3{Z: 1}},
		{name: "right_beats_left", input: InputState{Right: true, Left: true}, want: Vector3{X: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateNewPosition(origin, Vector3{Y: 0}, tc.input)
			if got != tc.want {
				t.Fatalf("input=%+v: got %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestCalculateNewPositionNoInput(t *testing.T) {
	// 无方向输入：原地返回（攻击等标记不影响位置）
	aligned := Vector3{X: 4, Y: 1, Z: -7}
	if got := CalculateNewPosition(aligned, Vector3{Y: 1.3}, InputState{Attack: true, Sprint: true}); got != aligned {
		t.Fatalf("no directional input: got %+v, want %+v", got, aligned)
	}

	// 未对齐的输入位置会被吸附（防御性兜底）
	got := CalculateNewPosition(Vector3{X: 0.4, Y: 1.2, Z: -0.6}, Vector3{}, InputState{})
	want := Vector3{X: 0, Y: 1.2, Z: -1}
	if got != want {
		t.Fatalf("unaligned passthrough: got %+v, want %+v", got, want)
	}
}

// 单键位移恒为恰好一格、恰好一根轴，任意朝向下成立；y 始终不动
func TestCalculateNewPositionSingleFlagInvariant(t *testing.T) {
	flags := []struct {
		name  string
		input InputState
	}{
		{name: "forward", input: InputState{Forward: true}},
		{name: "backward", input: InputState{Backward: true}},
		{name: "right", input: InputState{Right: true}},
		{name: "left", input: InputState{Left: true}},
	}

	start := Vector3{X: 5, Y: 2, Z: -5}
	for _, f := range flags {
		t.Run(f.name, func(t *testing.T) {
			for yaw := float32(-8); yaw < 8; yaw += 0.1 {
				got := CalculateNewPosition(start, Vector3{Y: yaw}, f.input)
				dx := math.Abs(float64(got.X - start.X))
				dz := math.Abs(float64(got.Z - start.Z))
				if got.Y != start.Y {
					t.Fatalf("yaw=%v: y changed from %v to %v", yaw, start.Y, got.Y)
				}
				if dx+dz != float64(gridCellSize) || (dx != 0 && dz != 0) {
					t.Fatalf("yaw=%v: moved (%v,%v), want exactly one cell on one axis", yaw, dx, dz)
				}
			}
		})
	}
}

// 不论入参如何，解析结果的 x/z 都落在格点上
func TestCalculateNewPositionGridAlignment(t *testing.T) {
	inputs := []InputState{{}, {Forward: true}, {Backward: true}, {Left: true}, {Right: true}}
	positions := []Vector3{{}, {X: 0.3, Z: 0.7}, {X: -2.49, Y: 3, Z: 1.51}}

	for _, pos := range positions {
		for _, in := range inputs {
			for yaw := float32(0); yaw < 7; yaw += 0.37 {
				got := CalculateNewPosition(pos, Vector3{Y: yaw}, in)
				if math.Mod(float64(got.X), float64(gridCellSize)) != 0 ||
					math.Mod(float64(got.Z), float64(gridCellSize)) != 0 {
					t.Fatalf("pos=%+v yaw=%v input=%+v: result %+v not grid aligned", pos, yaw, in, got)
				}
			}
		}
	}
}
