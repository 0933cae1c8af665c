package server

import (
	"encoding/json"
	"testing"
)

// 入站帧的线上格式：序号在外层，input 内的 seq 不参与解码
func TestInputMessageWireFormat(t *testing.T) {
	payload := `{
		"type": "input",
		"seq": 42,
		"input": {"forward": true, "sprint": true, "castSpell": true},
		"rotation": {"y": 1.5707964},
		"animation": "run-forward"
	}`

	var im InputMessage
	if err := json.Unmarshal([]byte(payload), &im); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if im.Type != "input" || im.Seq != 42 {
		t.Fatalf("envelope = type=%q seq=%d, want input/42", im.Type, im.Seq)
	}
	if !im.Input.Forward || !im.Input.Sprint || !im.Input.CastSpell || im.Input.Backward {
		t.Fatalf("input flags = %+v, decoded wrong", im.Input)
	}
	if im.Input.Sequence != 0 {
		t.Fatalf("input.Sequence = %d, must only come from the envelope", im.Input.Sequence)
	}
	if im.Rotation.Y != 1.5707964 {
		t.Fatalf("rotation.y = %v, want 1.5707964", im.Rotation.Y)
	}
	if im.Animation != "run-forward" {
		t.Fatalf("animation = %q, want run-forward", im.Animation)
	}
}
