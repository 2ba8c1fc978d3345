package game

import (
	"fmt"
	"strings"
	"time"
)

// Kind 道具种类
type Kind int

const (
	KindNone Kind = iota
	KindRainbow
	KindBunny
	KindTurtle
	KindStar
)

var kindNames = [...]string{"none", "rainbow", "bunny", "turtle", "star"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i, n := range kindNames {
		if n == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown power-up kind %q", s)
}

// Category 效果类别：同类别同时只保留一个效果
type Category int

const (
	CategoryCosmetic Category = iota
	CategorySpeed
	CategoryScore
	CategoryGlow      // 旗帜收集物
	CategoryThickness // 奖励角色
)

var categoryNames = [...]string{"cosmetic", "speed", "score", "glow", "thickness"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// PowerUpDef 一种道具的效果定义
type PowerUpDef struct {
	Kind        Kind
	Category    Category
	Duration    time.Duration
	SpeedFactor float64 // <1 加速，>1 减速；仅速度类
	ScoreMult   int     // 仅分数类
}

// PowerUp 地图上的道具实例
type PowerUp struct {
	Position  Cell      `json:"position"`
	Kind      Kind      `json:"kind"`
	SpawnedAt time.Time `json:"spawnedAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"` // 零值表示一直存在直到被吃或重开
}

// Registry 道具目录
type Registry struct {
	defs []PowerUpDef
}

// DefaultRegistry 四种道具：彩虹、兔子、乌龟、星星
func DefaultRegistry() *Registry {
	return NewRegistry(
		PowerUpDef{Kind: KindRainbow, Category: CategoryCosmetic, Duration: 10 * time.Second},
		PowerUpDef{Kind: KindBunny, Category: CategorySpeed, Duration: 8 * time.Second, SpeedFactor: 0.6},
		PowerUpDef{Kind: KindTurtle, Category: CategorySpeed, Duration: 8 * time.Second, SpeedFactor: 1.6},
		PowerUpDef{Kind: KindStar, Category: CategoryScore, Duration: 8 * time.Second, ScoreMult: 2},
	)
}

// NewRegistry 以给定定义构造目录，顺序决定随机选取的下标
func NewRegistry(defs ...PowerUpDef) *Registry {
	return &Registry{defs: append([]PowerUpDef(nil), defs...)}
}

// Lookup 按种类查定义
func (r *Registry) Lookup(k Kind) (PowerUpDef, bool) {
	for _, s := range r.defs {
		if s.Kind == k {
			return s, true
		}
	}
	return PowerUpDef{}, false
}

// Kinds 目录中的全部种类
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, len(r.defs))
	for i, s := range r.defs {
		kinds[i] = s.Kind
	}
	return kinds
}

// Len 目录大小
func (r *Registry) Len() int {
	return len(r.defs)
}

// Random 等概率选一种
func (r *Registry) Random(rng Rand) PowerUpDef {
	return r.defs[rng.IntN(len(r.defs))]
}
