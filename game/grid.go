package game

// Cell 网格坐标，结构相等即同一格
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add 返回平移后的坐标
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Grid 固定尺寸的离散坐标空间，只做纯查询
type Grid struct {
	Cols int
	Rows int
}

// Contains 判断坐标是否在 [0,cols) × [0,rows) 内
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.Cols && c.Y >= 0 && c.Y < g.Rows
}

// Clamp 越界坐标裁剪到最近的合法格
func (g Grid) Clamp(c Cell) Cell {
	return Cell{X: clampInt(c.X, 0, g.Cols-1), Y: clampInt(c.Y, 0, g.Rows-1)}
}

// Center 网格中心（向下取整）
func (g Grid) Center() Cell {
	return Cell{X: g.Cols / 2, Y: g.Rows / 2}
}

// Size 总格数
func (g Grid) Size() int {
	return g.Cols * g.Rows
}

// Free 按行优先顺序返回所有未被占用的格子
func (g Grid) Free(occ Occupancy) []Cell {
	free := make([]Cell, 0, g.Size()-len(occ))
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			c := Cell{X: x, Y: y}
			if !occ.Has(c) {
				free = append(free, c)
			}
		}
	}
	return free
}

// Occupancy 被占用格子的集合
type Occupancy map[Cell]struct{}

// Occupy 由蛇身与任意额外格子构造占用集合
func Occupy(body []Cell, extra ...*Cell) Occupancy {
	occ := make(Occupancy, len(body)+len(extra))
	for _, c := range body {
		occ[c] = struct{}{}
	}
	for _, c := range extra {
		if c != nil {
			occ[*c] = struct{}{}
		}
	}
	return occ
}

// Has 是否被占用
func (o Occupancy) Has(c Cell) bool {
	_, ok := o[c]
	return ok
}

// containsCell 线性查找，蛇身较短时比建 map 更省
func containsCell(cells []Cell, c Cell) bool {
	for _, s := range cells {
		if s == c {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
