package tui

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// cueVolume 线性音量，正弦波满幅太刺耳
const cueVolume = 0.3

// Cue 音效种类
type Cue int

const (
	CueEat Cue = iota
	CuePowerUp
	CueCollect
	CueDeath
	CueHighScore
)

type note struct {
	freq float64
	dur  time.Duration
}

var cues = map[Cue][]note{
	CueEat:       {{880, 50 * time.Millisecond}},
	CuePowerUp:   {{660, 60 * time.Millisecond}, {990, 80 * time.Millisecond}},
	CueCollect:   {{740, 50 * time.Millisecond}, {740, 50 * time.Millisecond}},
	CueDeath:     {{330, 120 * time.Millisecond}, {220, 240 * time.Millisecond}},
	CueHighScore: {{523, 90 * time.Millisecond}, {659, 90 * time.Millisecond}, {784, 160 * time.Millisecond}},
}

// Sound 基于 beep 的简单提示音；初始化失败时静默
type Sound struct {
	rate    beep.SampleRate
	enabled bool
}

// NewSound 打开扬声器；失败返回可用的静音实例和错误（不致命）
func NewSound() (*Sound, error) {
	rate := beep.SampleRate(44100)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return &Sound{rate: rate}, err
	}
	return &Sound{rate: rate, enabled: true}, nil
}

// Enabled 是否真的会发声
func (s *Sound) Enabled() bool {
	return s != nil && s.enabled
}

// Play 异步播放，不阻塞调用方
func (s *Sound) Play(c Cue) {
	if !s.Enabled() {
		return
	}
	seq := s.sequence(cues[c])
	if seq == nil {
		return
	}
	speaker.Play(seq)
}

func (s *Sound) sequence(notes []note) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		sine, err := generators.SineTone(s.rate, n.freq)
		if err != nil {
			continue
		}
		parts = append(parts, beep.Take(s.rate.N(n.dur), sine))
	}
	if len(parts) == 0 {
		return nil
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: math.Log2(cueVolume)}
}

// Close 关闭扬声器
func (s *Sound) Close() {
	if s.Enabled() {
		speaker.Close()
		s.enabled = false
	}
}
