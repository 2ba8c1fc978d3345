package server

import "snakearena/game"

// PlayerID 表示连接（玩家或观众）的唯一标识
type PlayerID string

// Viewer 挂在房间上的观察者：每帧收到插值后的画面，以及离散事件。
// 所有方法都在房间 goroutine 中调用，不得阻塞。
type Viewer interface {
	Frame(f game.Frame)
	Event(e Event)
	Close()
}

// Event 离散事件（吃到食物、道具、死亡、新纪录……）
type Event struct {
	Type     string           `json:"event"`
	Kind     game.Kind        `json:"kind,omitempty"`
	Reason   game.DeathReason `json:"reason,omitempty"`
	Category string           `json:"category,omitempty"`
	Score    int              `json:"score"`
	Best     int              `json:"best"`
	State    game.State       `json:"state"`
}

const (
	EventEat       = "eat"
	EventSpawn     = "spawn"
	EventPowerUp   = "powerup"
	EventExpired   = "expired"
	EventCollect   = "collect"
	EventDeath     = "death"
	EventOver      = "over"
	EventRestart   = "restart"
	EventHighScore = "highscore"
	EventState     = "state"
)
