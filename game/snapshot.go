package game

import "time"

// Snapshot 某一时刻的完整只读副本。每次 Tick 或输入后由持有者重新生成，
// 渲染方只读快照，永远看不到半更新的状态。
type Snapshot struct {
	Cols  int    `json:"cols"`
	Rows  int    `json:"rows"`
	State State  `json:"state"`
	Tick  uint64 `json:"tick"`
	Epoch uint64 `json:"epoch"`

	Body      []Cell    `json:"body"`
	PrevBody  []Cell    `json:"prevBody"`
	Direction Direction `json:"direction"`

	Food    *Cell    `json:"food,omitempty"`
	PowerUp *PowerUp `json:"powerUp,omitempty"`
	Flag    *Cell    `json:"flag,omitempty"`
	Bonus   *Cell    `json:"bonus,omitempty"`

	Score     int `json:"score"`
	Best      int `json:"best"`
	ScoreMult int `json:"scoreMult"`

	Interval     time.Duration `json:"-"`
	BaseInterval time.Duration `json:"-"`
	TickAt       time.Time     `json:"tickAt"`

	Effects         []EffectState `json:"effects,omitempty"`
	Death           *Death        `json:"death,omitempty"`
	Skin            Skin          `json:"skin"`
	PowerUpsEnabled bool          `json:"powerUpsEnabled"`
	ThicknessBoost  float64       `json:"-"`
}

// Snapshot 深拷贝当前状态
func (s *Simulation) Snapshot() Snapshot {
	s.mustInit()
	snap := Snapshot{
		Cols:            s.grid.Cols,
		Rows:            s.grid.Rows,
		State:           s.state,
		Tick:            s.ticks,
		Epoch:           s.epoch,
		Body:            cloneCells(s.body),
		PrevBody:        cloneCells(s.prev),
		Direction:       s.dir,
		Food:            cloneCell(s.food),
		Flag:            cloneCell(s.flag),
		Bonus:           cloneCell(s.bonus),
		Score:           s.score,
		Best:            s.best,
		ScoreMult:       s.scoreMult,
		Interval:        s.interval,
		BaseInterval:    s.baseInterval,
		TickAt:          s.tickAt,
		Effects:         s.effects.states(),
		Skin:            s.skin,
		PowerUpsEnabled: s.powerUpsEnabled,
		ThicknessBoost:  s.rules.ThicknessBoost,
	}
	if s.powerUp != nil {
		p := *s.powerUp
		snap.PowerUp = &p
	}
	if s.death != nil {
		d := *s.death
		snap.Death = &d
	}
	return snap
}

// Effect 查某类别的效果（以最近一次 Tick 为准）
func (s Snapshot) Effect(c Category) (EffectState, bool) {
	for _, e := range s.Effects {
		if e.Category == c {
			return e, true
		}
	}
	return EffectState{}, false
}

// EffectActiveAt 某类别在 t 时刻是否仍生效；外观效果按帧判断，不等下一次 Tick
func (s Snapshot) EffectActiveAt(c Category, t time.Time) bool {
	e, ok := s.Effect(c)
	return ok && t.Before(e.ExpiresAt)
}

// Head 蛇头
func (s Snapshot) Head() Cell {
	if len(s.Body) == 0 {
		return Cell{}
	}
	return s.Body[0]
}

func cloneCell(c *Cell) *Cell {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
