package game

import "time"

// EffectState 对外可见的效果信息（快照用）
type EffectState struct {
	Category  Category  `json:"category"`
	Kind      Kind      `json:"kind,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// effect 一条限时效果，到期时调用 revert 复原
type effect struct {
	EffectState
	revert func(*Simulation)
}

// effectList 每个类别至多一条；到期检查集中在 sweep
type effectList []effect

// put 覆盖同类别的旧效果（不叠加、不排队）
func (l *effectList) put(e effect) {
	for i := range *l {
		if (*l)[i].Category == e.Category {
			(*l)[i] = e
			return
		}
	}
	*l = append(*l, e)
}

// sweep 移除所有已到期效果并执行复原，返回到期的类别
func (l *effectList) sweep(now time.Time, s *Simulation) []Category {
	var expired []Category
	kept := (*l)[:0]
	for _, e := range *l {
		if now.Before(e.ExpiresAt) {
			kept = append(kept, e)
			continue
		}
		if e.revert != nil {
			e.revert(s)
		}
		expired = append(expired, e.Category)
	}
	*l = kept
	return expired
}

// remove 移除某类别；revert 为真时执行复原
func (l *effectList) remove(c Category, s *Simulation, revert bool) bool {
	for i, e := range *l {
		if e.Category != c {
			continue
		}
		*l = append((*l)[:i], (*l)[i+1:]...)
		if revert && e.revert != nil {
			e.revert(s)
		}
		return true
	}
	return false
}

func (l effectList) find(c Category) (EffectState, bool) {
	for _, e := range l {
		if e.Category == c {
			return e.EffectState, true
		}
	}
	return EffectState{}, false
}

func (l effectList) states() []EffectState {
	if len(l) == 0 {
		return nil
	}
	out := make([]EffectState, len(l))
	for i, e := range l {
		out[i] = e.EffectState
	}
	return out
}
