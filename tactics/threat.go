package tactics

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Sector is one fixed-size tile block of the threat grid. Bounds are
// inclusive.
type Sector struct {
	Index          int
	X1, Y1, X2, Y2 int

	PlayerObjects    int  // enemy objects seen on the last rescan
	Dangerous        bool // weapons or sensors present
	AntiAir          bool
	ArtilleryWatched bool // sensor coverage

	poisoned   bool
	poisonedAt time.Duration
}

// Mid returns the sector's center tile.
func (s Sector) Mid() model.Position {
	return model.Position{X: (s.X1 + s.X2) / 2, Y: (s.Y1 + s.Y2) / 2}
}

func (s Sector) corners() [4]model.Position {
	return [4]model.Position{
		{X: s.X1, Y: s.Y1}, {X: s.X1, Y: s.Y2},
		{X: s.X2, Y: s.Y1}, {X: s.X2, Y: s.Y2},
	}
}

// ThreatGrid tags map sectors with what the enemy has there and where
// our units were recently hurt, to route retreats away from both.
type ThreatGrid struct {
	host    Host
	cfg     Config
	sectors []Sector
	built   bool
	skipped bool
}

func newThreatGrid(host Host, cfg Config) *ThreatGrid {
	return &ThreatGrid{host: host, cfg: cfg}
}

// ensure tiles the map on first use. It reports false when the map is
// too small to be worth partitioning.
func (g *ThreatGrid) ensure() bool {
	if g.built {
		return true
	}
	if g.skipped {
		return false
	}
	chunk := g.cfg.SectorChunk
	w, h := g.host.MapSize()
	if chunk <= 0 || w*h <= chunk*chunk {
		slog.Warn("map is too small for sector analysis", "width", w, "height", h, "chunk", chunk)
		g.skipped = true
		return false
	}
	cols := (w + chunk - 1) / chunk
	rows := (h + chunk - 1) / chunk
	g.sectors = make([]Sector, 0, cols*rows)
	for row := range rows {
		for col := range cols {
			x1, y1 := col*chunk, row*chunk
			g.sectors = append(g.sectors, Sector{
				Index: len(g.sectors),
				X1:    x1,
				Y1:    y1,
				X2:    min(x1+chunk-1, w-1),
				Y2:    min(y1+chunk-1, h-1),
			})
		}
	}
	g.built = true
	slog.Debug("threat grid built", "sectors", len(g.sectors), "cols", cols, "rows", rows)
	return true
}

// Rescan refreshes every sector from the enemy objects currently inside
// it and expires stale poison marks.
func (g *ThreatGrid) Rescan() {
	if !g.ensure() {
		return
	}
	for i := range g.sectors {
		s := &g.sectors[i]
		objects := g.host.EnemiesInArea(s.X1, s.Y1, s.X2, s.Y2)
		s.PlayerObjects = len(objects)
		s.Dangerous, s.AntiAir, s.ArtilleryWatched = false, false, false
		for _, obj := range objects {
			classify(s, obj)
		}
	}
	g.unpoison(g.host.Now())
}

func classify(s *Sector, obj model.Object) {
	switch obj.Kind {
	case model.KindStructure:
		switch {
		case obj.Structure == model.StructWall || obj.Structure == model.StructGate:
		case obj.Sensor:
			s.ArtilleryWatched = true
			s.Dangerous = true
		case obj.Structure == model.StructDefense:
			s.Dangerous = true
			s.AntiAir = s.AntiAir || obj.CanHitAir
		}
	case model.KindUnit:
		switch {
		case obj.Sensor || obj.Unit == model.UnitSensor:
			s.ArtilleryWatched = true
			s.Dangerous = true
		case obj.Unit == model.UnitWeapon || obj.Unit == model.UnitCyborg:
			s.Dangerous = true
			s.AntiAir = s.AntiAir || obj.CanHitAir
		}
	}
}

// Poison marks the sectors with a corner near pos, nearest first, up to
// MaxPoisoned of them.
func (g *ThreatGrid) Poison(pos model.Position) {
	if !g.ensure() {
		return
	}
	type near struct {
		idx  int
		dist float64
	}
	var hits []near
	limit := float64(g.cfg.PoisonDistance)
	for i, s := range g.sectors {
		best := math.Inf(1)
		for _, c := range s.corners() {
			best = min(best, model.Dist(c, pos))
		}
		if best <= limit {
			hits = append(hits, near{idx: i, dist: best})
		}
	}
	slices.SortStableFunc(hits, func(a, b near) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return a.idx - b.idx
	})
	if len(hits) > g.cfg.MaxPoisoned {
		hits = hits[:g.cfg.MaxPoisoned]
	}
	now := g.host.Now()
	for _, h := range hits {
		g.sectors[h.idx].poisoned = true
		g.sectors[h.idx].poisonedAt = now
	}
	slog.Debug("sectors poisoned", "x", pos.X, "y", pos.Y, "count", len(hits))
}

func (g *ThreatGrid) unpoison(now time.Duration) {
	for i := range g.sectors {
		s := &g.sectors[i]
		if s.poisoned && !g.poisonedAt(*s, now) {
			s.poisoned = false
		}
	}
}

// poisonedAt reports whether a poison mark is still live at now. Marks
// expire once PoisonCooldown has elapsed since they were last refreshed.
func (g *ThreatGrid) poisonedAt(s Sector, now time.Duration) bool {
	return s.poisoned && now-s.poisonedAt < g.cfg.PoisonCooldown
}

// Poisoned reports whether sector i is currently poisoned.
func (g *ThreatGrid) Poisoned(i int) bool {
	if i < 0 || i >= len(g.sectors) {
		return false
	}
	return g.poisonedAt(g.sectors[i], g.host.Now())
}

// Sectors returns a copy of the grid.
func (g *ThreatGrid) Sectors() []Sector {
	return slices.Clone(g.sectors)
}

// FindSafeRetreat picks the middle of the nearest sector that is neither
// dangerous nor poisoned and that obj can reach. Sectors within radius
// are tried first. When nothing qualifies it returns obj's own position
// and false.
func (g *ThreatGrid) FindSafeRetreat(obj model.Object, radius int) (model.Position, bool) {
	origin := obj.Pos()
	if !g.ensure() {
		return origin, false
	}
	if radius <= 0 {
		radius = g.cfg.RetreatRadius
	}
	now := g.host.Now()
	type candidate struct {
		idx  int
		mid  model.Position
		dist float64
	}
	var cands []candidate
	for i, s := range g.sectors {
		if s.Dangerous || g.poisonedAt(s, now) {
			continue
		}
		mid := s.Mid()
		cands = append(cands, candidate{idx: i, mid: mid, dist: model.Dist(mid, origin)})
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return a.idx - b.idx
	})
	for _, withinRadius := range []bool{true, false} {
		for _, c := range cands {
			if withinRadius != (c.dist <= float64(radius)) {
				continue
			}
			if g.host.CanReach(obj, c.mid) {
				return c.mid, true
			}
		}
	}
	slog.Debug("no safe retreat sector", "unit", obj.ID, "x", origin.X, "y", origin.Y)
	return origin, false
}
