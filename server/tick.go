package server

import "time"

const (
	// DefaultFrameRate 帧驱动频率（与 Tick 频率无关）
	DefaultFrameRate = 60
)

// TickController 持有唯一的 Tick 源与独立的帧驱动。
// 只应由房间 goroutine 调用；间隔变化时用 Reset 原子地取消旧周期并按新间隔重排。
type TickController struct {
	tick     *time.Ticker
	interval time.Duration
	running  bool

	frames        *time.Ticker
	frameInterval time.Duration
}

// NewTickController 按帧率构造，帧率非正时使用默认值
func NewTickController(frameRate int) *TickController {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &TickController{frameInterval: time.Second / time.Duration(frameRate)}
}

// Start 以给定间隔启动 Tick；帧驱动第一次启动后一直运行到 Close
func (t *TickController) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}
	t.interval = interval
	if t.tick == nil {
		t.tick = time.NewTicker(interval)
	} else {
		t.tick.Reset(interval)
	}
	t.running = true
	if t.frames == nil {
		t.frames = time.NewTicker(t.frameInterval)
	}
}

// SetInterval 间隔变化时重排 Tick；未变化返回 false
func (t *TickController) SetInterval(d time.Duration) bool {
	if d <= 0 || d == t.interval {
		return false
	}
	t.interval = d
	if t.running {
		t.tick.Reset(d)
	}
	return true
}

// Restart 从现在起重新计一个完整间隔（恢复暂停、开局时使用）
func (t *TickController) Restart() {
	if t.running {
		t.tick.Reset(t.interval)
	}
}

// Stop 停止 Tick，帧驱动不受影响
func (t *TickController) Stop() {
	if t.running {
		t.tick.Stop()
		t.running = false
	}
}

// Close 停止一切，房间销毁时调用
func (t *TickController) Close() {
	t.Stop()
	if t.frames != nil {
		t.frames.Stop()
		t.frames = nil
	}
}

// Ticks 停止时返回 nil 通道，select 中该分支永不就绪
func (t *TickController) Ticks() <-chan time.Time {
	if !t.running {
		return nil
	}
	return t.tick.C
}

// Frames 帧驱动通道
func (t *TickController) Frames() <-chan time.Time {
	if t.frames == nil {
		return nil
	}
	return t.frames.C
}

func (t *TickController) Running() bool           { return t.running }
func (t *TickController) Interval() time.Duration { return t.interval }
func (t *TickController) FrameInterval() time.Duration {
	return t.frameInterval
}
