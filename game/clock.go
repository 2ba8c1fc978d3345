package game

import (
	"sync"
	"time"
)

// Clock 时间源，模拟与插值都通过它取当前时间
type Clock interface {
	Now() time.Time
}

// SystemClock 真实系统时间（带单调时钟读数）
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock 可控时钟，用于测试
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock 以给定时间起步
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set 直接设定当前时间
func (m *ManualClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance 前进 d
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
