package server

import (
	"encoding/json"
	"net/http"
	"time"

	"snakearena/game"
)

// DefaultRoomID 请求未带 room 参数时使用
const DefaultRoomID = "room-1"

func roomParam(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	return DefaultRoomID
}

type adminConfig struct {
	BaseIntervalMs  *int    `json:"baseIntervalMs,omitempty"`
	PowerUpsEnabled *bool   `json:"powerUpsEnabled,omitempty"`
	Skin            *string `json:"skin,omitempty"`
}

type adminStatus struct {
	BaseIntervalMs  int64      `json:"baseIntervalMs"`
	IntervalMs      int64      `json:"intervalMs"`
	FrameIntervalMs int64      `json:"frameIntervalMs"`
	PowerUpsEnabled bool       `json:"powerUpsEnabled"`
	Skin            game.Skin  `json:"skin"`
	State           game.State `json:"state"`
	Score           int        `json:"score"`
	Best            int        `json:"best"`
	SpeedPresetsMs  []int64    `json:"speedPresetsMs"`
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段；变更以输入形式交给房间 goroutine
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, err := m.GetOrCreateRoom(roomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		snap := room.Snapshot()
		presets := make([]int64, len(game.SpeedPresets))
		for i, p := range game.SpeedPresets {
			presets[i] = p.Milliseconds()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(adminStatus{
			BaseIntervalMs:  snap.BaseInterval.Milliseconds(),
			IntervalMs:      snap.Interval.Milliseconds(),
			FrameIntervalMs: room.FrameInterval().Milliseconds(),
			PowerUpsEnabled: snap.PowerUpsEnabled,
			Skin:            snap.Skin,
			State:           snap.State,
			Score:           snap.Score,
			Best:            snap.Best,
			SpeedPresetsMs:  presets,
		})
		return
	case http.MethodPost:
		var body adminConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		var inputs []Input
		if body.BaseIntervalMs != nil {
			if *body.BaseIntervalMs <= 0 {
				http.Error(w, "baseIntervalMs must be positive", http.StatusBadRequest)
				return
			}
			inputs = append(inputs, Input{PlayerID: "admin", Kind: InputSpeed, Interval: time.Duration(*body.BaseIntervalMs) * time.Millisecond})
		}
		if body.PowerUpsEnabled != nil {
			inputs = append(inputs, Input{PlayerID: "admin", Kind: InputPowerUps, Enabled: *body.PowerUpsEnabled})
		}
		if body.Skin != nil {
			skin, ok := game.ParseSkin(*body.Skin)
			if !ok {
				http.Error(w, "unknown skin", http.StatusBadRequest)
				return
			}
			inputs = append(inputs, Input{PlayerID: "admin", Kind: InputSkin, Skin: skin})
		}
		for _, in := range inputs {
			room.OnInput(in)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		Log.Infow("config updated", "room", roomID, "changes", len(inputs))
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"room":    roomID,
		"tick":    room.TickSeq(),
		"state":   room.Snapshot().State,
		"metrics": room.Metrics().Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
