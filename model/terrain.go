package model

// TerrainType classifies a coarse grid zone.
type TerrainType byte

const (
	Land   TerrainType = 0 // passable ground
	Water  TerrainType = 1 // hover and naval only
	Cliff  TerrainType = 2 // impassable (rock, tree, wall)
	Bridge TerrainType = 3 // land corridor over water (chokepoint)
)

// Propulsion groups movement types by what terrain they can cross.
type Propulsion string

const (
	PropWheeled Propulsion = "wheeled"
	PropTracked Propulsion = "tracked"
	PropLegged  Propulsion = "legged"
	PropHover   Propulsion = "hover"
	PropLift    Propulsion = "lift"
)

// Passable reports whether a propulsion class can enter a terrain type.
func (p Propulsion) Passable(t TerrainType) bool {
	switch p {
	case PropLift:
		return true
	case PropHover:
		return t != Cliff
	default:
		return t == Land || t == Bridge
	}
}

// TerrainGrid is a coarse grid sent once during the hello handshake.
// Each zone covers CellW x CellH map tiles and stores a single TerrainType.
type TerrainGrid struct {
	Cols  int           // grid columns
	Rows  int           // grid rows
	CellW int           // map tiles per grid column
	CellH int           // map tiles per grid row
	Grid  []TerrainType // row-major: Grid[row*Cols + col]

	// connected-component labels per propulsion, built on first query
	regions map[Propulsion][]int
}

// At returns the terrain type at grid coordinates (col, row).
// Returns Land for out-of-bounds coordinates.
func (g *TerrainGrid) At(col, row int) TerrainType {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return Land
	}
	return g.Grid[row*g.Cols+col]
}

// AtMapPos converts map coordinates to coarse grid coordinates and returns
// the terrain type. Returns Land for out-of-bounds or zero-sized cells.
func (g *TerrainGrid) AtMapPos(mapX, mapY int) TerrainType {
	if g.CellW <= 0 || g.CellH <= 0 {
		return Land
	}
	return g.At(mapX/g.CellW, mapY/g.CellH)
}

// CanReach reports whether a unit with the given propulsion standing at
// from can path to to. Zones are connected 4-way; a destination outside
// the grid or on impassable terrain is unreachable, except for lift.
func (g *TerrainGrid) CanReach(p Propulsion, from, to Position) bool {
	if p == PropLift {
		return true
	}
	if g == nil || g.CellW <= 0 || g.CellH <= 0 || len(g.Grid) != g.Cols*g.Rows {
		return true
	}
	a, okA := g.zone(from)
	b, okB := g.zone(to)
	if !okA || !okB {
		return false
	}
	labels := g.regionsFor(p)
	return labels[a] >= 0 && labels[a] == labels[b]
}

func (g *TerrainGrid) zone(p Position) (int, bool) {
	col, row := p.X/g.CellW, p.Y/g.CellH
	if p.X < 0 || p.Y < 0 || col >= g.Cols || row >= g.Rows {
		return 0, false
	}
	return row*g.Cols + col, true
}

func (g *TerrainGrid) regionsFor(p Propulsion) []int {
	if labels, ok := g.regions[p]; ok {
		return labels
	}
	labels := make([]int, len(g.Grid))
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	stack := make([]int, 0, 16)
	for start, t := range g.Grid {
		if labels[start] >= 0 || !p.Passable(t) {
			continue
		}
		labels[start] = next
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			col, row := cur%g.Cols, cur/g.Cols
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nc, nr := col+d[0], row+d[1]
				if nc < 0 || nc >= g.Cols || nr < 0 || nr >= g.Rows {
					continue
				}
				n := nr*g.Cols + nc
				if labels[n] < 0 && p.Passable(g.Grid[n]) {
					labels[n] = next
					stack = append(stack, n)
				}
			}
		}
		next++
	}
	if g.regions == nil {
		g.regions = make(map[Propulsion][]int)
	}
	g.regions[p] = labels
	return labels
}
