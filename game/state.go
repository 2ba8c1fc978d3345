package game

import (
	"fmt"
	"strings"
	"time"
)

// State 模拟状态机
//
//	idle → running      第一次有效方向输入
//	running ↔ paused    暂停开关
//	running → dying     本次 Tick 发生碰撞
//	dying → over        死亡动画时长结束
//	任意 → idle          Restart
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateDying
	StateOver
)

var stateNames = [...]string{"idle", "running", "paused", "dying", "over"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Alive 蛇仍可被 Tick 推进（含暂停与待机）
func (s State) Alive() bool {
	return s == StateIdle || s == StateRunning || s == StatePaused
}

// DeathReason 死因
type DeathReason int

const (
	DeathNone DeathReason = iota
	DeathWall
	DeathSelf
)

func (r DeathReason) String() string {
	switch r {
	case DeathWall:
		return "wall"
	case DeathSelf:
		return "self"
	}
	return "none"
}

func (r DeathReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Death 死亡过程的记录，用于死亡动画
type Death struct {
	Reason DeathReason `json:"reason"`
	Head   Cell        `json:"head"`
	Impact Cell        `json:"impact"` // 撞墙时的越界方向
	Until  time.Time   `json:"until"`
}

// Skin 食物皮肤；doner 额外启用旗帜与奖励角色
type Skin string

const (
	SkinStrawberry Skin = "strawberry"
	SkinApple      Skin = "apple"
	SkinPineapple  Skin = "pineapple"
	SkinCoconut    Skin = "coconut"
	SkinWatermelon Skin = "watermelon"
	SkinDoner      Skin = "doner"
)

// Skins 全部皮肤，按界面上的切换顺序
var Skins = []Skin{SkinStrawberry, SkinApple, SkinPineapple, SkinCoconut, SkinWatermelon, SkinDoner}

// ParseSkin 解析皮肤名
func ParseSkin(s string) (Skin, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Skins {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// HasBonusEntities 是否启用次要收集物
func (s Skin) HasBonusEntities() bool {
	return s == SkinDoner
}

// Next 循环切到下一个皮肤
func (s Skin) Next() Skin {
	for i, k := range Skins {
		if k == s {
			return Skins[(i+1)%len(Skins)]
		}
	}
	return Skins[0]
}
