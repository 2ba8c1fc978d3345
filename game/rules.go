package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotInitialized 在网格尺寸确定之前调用模拟操作（调用方契约错误）
	ErrNotInitialized = errors.New("game: simulation used before init")
	// ErrInvalidRules 规则参数不合法
	ErrInvalidRules = errors.New("game: invalid rules")
)

// SpeedPresets 速度选择器提供的基础间隔
var SpeedPresets = []time.Duration{
	200 * time.Millisecond,
	140 * time.Millisecond,
	100 * time.Millisecond,
	70 * time.Millisecond,
}

// Rules 一局游戏的全部可调参数
type Rules struct {
	Cols int
	Rows int

	BaseInterval time.Duration
	MinInterval  time.Duration // 速度道具作用后的下限

	DeathDuration time.Duration
	WallDeathMult float64 // 撞墙死亡动画更长

	FoodPoints  int
	FlagPoints  int
	BonusPoints int

	PowerUpChance float64
	FlagChance    float64
	BonusChance   float64

	GlowDuration   time.Duration
	BonusDuration  time.Duration
	ThicknessBoost float64

	// SpawnLifetime 地图上道具与次要收集物的存在时长，0 表示不过期
	SpawnLifetime time.Duration

	Skin            Skin
	PowerUpsEnabled bool
}

// DefaultRules 20×20 网格，140ms 一步
func DefaultRules() Rules {
	return Rules{
		Cols:            20,
		Rows:            20,
		BaseInterval:    140 * time.Millisecond,
		MinInterval:     40 * time.Millisecond,
		DeathDuration:   700 * time.Millisecond,
		WallDeathMult:   1.25,
		FoodPoints:      10,
		FlagPoints:      30,
		BonusPoints:     20,
		PowerUpChance:   0.1,
		FlagChance:      0.2,
		BonusChance:     0.18,
		GlowDuration:    5 * time.Second,
		BonusDuration:   15 * time.Second,
		ThicknessBoost:  1.8,
		Skin:            SkinPineapple,
		PowerUpsEnabled: true,
	}
}

// Validate 检查尺寸与时长
func (r Rules) Validate() error {
	if r.Cols < 2 || r.Rows < 1 {
		return fmt.Errorf("%w: grid %dx%d too small", ErrInvalidRules, r.Cols, r.Rows)
	}
	if r.BaseInterval <= 0 || r.MinInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidRules)
	}
	if r.DeathDuration < 0 || r.WallDeathMult < 0 {
		return fmt.Errorf("%w: negative death duration", ErrInvalidRules)
	}
	if _, ok := ParseSkin(string(r.Skin)); !ok {
		return fmt.Errorf("%w: unknown skin %q", ErrInvalidRules, r.Skin)
	}
	return nil
}

// wallDeathDuration 撞墙死亡时长 = 通用时长 × 倍数
func (r Rules) wallDeathDuration() time.Duration {
	return time.Duration(float64(r.DeathDuration) * r.WallDeathMult)
}

// BestStore 最高分持久化；写入对调用方同步可见
type BestStore interface {
	Best() int
	SetBest(n int)
}

// Notifier 新纪录通知，发出即忘
type Notifier interface {
	NotifyNewHighScore()
}

// MemoryStore 进程内最高分
type MemoryStore struct {
	best int
}

func (m *MemoryStore) Best() int     { return m.best }
func (m *MemoryStore) SetBest(n int) { m.best = n }

// NotifierFunc 函数适配为 Notifier
type NotifierFunc func()

func (f NotifierFunc) NotifyNewHighScore() { f() }
