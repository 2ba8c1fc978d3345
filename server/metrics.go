package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 实际推进的 Tick 次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
	InputsAccepted    int64 // 被接受的方向输入
	InputsRejected    int64 // 被拒绝的方向输入（反向、死亡中）
	ChanFullDiscarded int64 // 因通道满被丢弃的输入数
	OldSeqIgnored     int64 // 序列号过期被丢弃的输入数
	FoodEaten         int64
	PowerUps          int64 // 吃到的道具
	Deaths            int64
	Restarts          int64
	IntervalResets    int64 // Tick 间隔重排次数
	Frames            int64
}

func (m *RoomMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncRejected()          { atomic.AddInt64(&m.InputsRejected, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncOldSeqIgnored()     { atomic.AddInt64(&m.OldSeqIgnored, 1) }
func (m *RoomMetrics) IncFood()              { atomic.AddInt64(&m.FoodEaten, 1) }
func (m *RoomMetrics) IncPowerUp()           { atomic.AddInt64(&m.PowerUps, 1) }
func (m *RoomMetrics) IncDeath()             { atomic.AddInt64(&m.Deaths, 1) }
func (m *RoomMetrics) IncRestart()           { atomic.AddInt64(&m.Restarts, 1) }
func (m *RoomMetrics) IncIntervalReset()     { atomic.AddInt64(&m.IntervalResets, 1) }
func (m *RoomMetrics) IncFrame()             { atomic.AddInt64(&m.Frames, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"inputs_rejected":     atomic.LoadInt64(&m.InputsRejected),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"old_seq_ignored":     atomic.LoadInt64(&m.OldSeqIgnored),
		"food_eaten":          atomic.LoadInt64(&m.FoodEaten),
		"powerups":            atomic.LoadInt64(&m.PowerUps),
		"deaths":              atomic.LoadInt64(&m.Deaths),
		"restarts":            atomic.LoadInt64(&m.Restarts),
		"interval_resets":     atomic.LoadInt64(&m.IntervalResets),
		"frames":              atomic.LoadInt64(&m.Frames),
		"avg_tick_ms":         avgMs,
	}
}
