package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig 提供房间配置的读取与更新（热更新基本规则）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	rm := GetRoomManager()
	room := rm.GetOrCreateRoom(roomID)

	type cfg struct {
		MaxInputsPerTick   *int     `json:"maxInputsPerTick,omitempty"`
		SimulateDelayMinMs *int     `json:"simulateDelayMinMs,omitempty"`
		SimulateDelayMaxMs *int     `json:"simulateDelayMaxMs,omitempty"`
		SimulateDropProb   *float64 `json:"simulateDropProb,omitempty"`
		PersistEveryTicks  *int     `json:"persistEveryTicks,omitempty"`
		Spawn              *Vector3 `json:"spawn,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		snap := room.configSnapshot()
		cur := cfg{
			MaxInputsPerTick:   &snap.MaxInputsPerTick,
			SimulateDelayMinMs: &snap.SimulateDelayMinMs,
			SimulateDelayMaxMs: &snap.SimulateDelayMaxMs,
			SimulateDropProb:   &snap.SimulateDropProb,
			PersistEveryTicks:  &snap.PersistEveryTicks,
			Spawn:              &snap.Spawn,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cur)
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room.UpdateConfig(func(c *roomConfig) {
			if body.MaxInputsPerTick != nil {
				c.MaxInputsPerTick = *body.MaxInputsPerTick
			}
			if body.SimulateDelayMinMs != nil {
				c.SimulateDelayMinMs = *body.SimulateDelayMinMs
			}
			if body.SimulateDelayMaxMs != nil {
				c.SimulateDelayMaxMs = *body.SimulateDelayMaxMs
			}
			if body.SimulateDropProb != nil {
				c.SimulateDropProb = *body.SimulateDropProb
			}
			if body.PersistEveryTicks != nil {
				c.PersistEveryTicks = *body.PersistEveryTicks
			}
			if body.Spawn != nil {
				c.Spawn = *body.Spawn
			}
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		after := room.configSnapshot()
		Log.Infof("config updated: room=%s maxInputsPerTick=%d delay=[%d,%d] drop=%.2f persistEvery=%d",
			roomID, after.MaxInputsPerTick, after.SimulateDelayMinMs, after.SimulateDelayMaxMs,
			after.SimulateDropProb, after.PersistEveryTicks)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	rm := GetRoomManager()
	room := rm.GetOrCreateRoom(roomID)
	payload := map[string]any{
		"room":    roomID,
		"tick":    room.tickSeq,
		"players": len(room.Players),
		"metrics": room.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
