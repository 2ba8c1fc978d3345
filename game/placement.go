package game

// Rand 随机源；math/rand/v2 的 *rand.Rand 直接满足
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Placement 在满足排除约束的格子中等概率选取
type Placement struct {
	grid Grid
	rng  Rand
}

// NewPlacement 绑定网格与随机源
func NewPlacement(grid Grid, rng Rand) *Placement {
	return &Placement{grid: grid, rng: rng}
}

// Candidates 全部可选格（未被占用）
func (p *Placement) Candidates(occ Occupancy) []Cell {
	return p.grid.Free(occ)
}

// Pick 先收集候选再随机取一，网格占满时返回 false
func (p *Placement) Pick(occ Occupancy) (Cell, bool) {
	return p.PickFrom(p.Candidates(occ))
}

// PickFrom 在给定候选中等概率选取
func (p *Placement) PickFrom(cands []Cell) (Cell, bool) {
	if len(cands) == 0 {
		return Cell{}, false
	}
	return cands[p.rng.IntN(len(cands))], true
}

// Roll 以概率 prob 返回 true
func (p *Placement) Roll(prob float64) bool {
	return p.rng.Float64() < prob
}

// without 过滤掉某个格子，返回新切片
func without(cells []Cell, skip *Cell) []Cell {
	if skip == nil {
		return cells
	}
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if c != *skip {
			out = append(out, c)
		}
	}
	return out
}
