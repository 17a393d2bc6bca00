// Package world adapts the snapshots streamed by the host simulation into
// the queries the tactics manager needs.
package world

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Host answers tactics queries from the latest WorldState and buffers the
// commands issued against it until the agent drains them.
type Host struct {
	state      model.WorldState
	byID       map[int]int // object id → index in state.Objects
	now        time.Duration
	terrain    *model.TerrainGrid
	selfRepair map[int]bool
	rng        *rand.Rand

	// groups the sidecar created itself, e.g. commander escorts
	groups  map[string][]int
	pending []model.Command
}

// New returns a host with an empty world and a deterministic random
// source seeded from seed.
func New(seed uint64) *Host {
	return &Host{
		byID:       make(map[int]int),
		selfRepair: make(map[int]bool),
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		groups:     make(map[string][]int),
	}
}

// SetTerrain stores the coarse terrain grid used for reachability.
func (h *Host) SetTerrain(grid *model.TerrainGrid) { h.terrain = grid }

// SetSelfRepair marks a player whose units heal without a repair facility.
func (h *Host) SetSelfRepair(player int, on bool) { h.selfRepair[player] = on }

// Update replaces the world with a new snapshot and drops dead units from
// sidecar-owned groups.
func (h *Host) Update(ws model.WorldState) {
	h.state = ws
	h.now = time.Duration(ws.TimeMS) * time.Millisecond
	clear(h.byID)
	for i, o := range ws.Objects {
		h.byID[o.ID] = i
	}
	for name, ids := range h.groups {
		ids = slices.DeleteFunc(ids, func(id int) bool {
			_, ok := h.byID[id]
			return !ok
		})
		if len(ids) == 0 {
			delete(h.groups, name)
			continue
		}
		h.groups[name] = ids
	}
}

// State returns the last snapshot.
func (h *Host) State() model.WorldState { return h.state }

// Drain returns and clears the commands dispatched since the last call.
func (h *Host) Drain() []model.Command {
	out := h.pending
	h.pending = nil
	return out
}

func (h *Host) Now() time.Duration          { return h.now }
func (h *Host) MapSize() (int, int)         { return h.state.MapWidth, h.state.MapHeight }
func (h *Host) EnemyPlayer() int            { return h.state.Enemy }
func (h *Host) SelfRepairs(player int) bool { return h.selfRepair[player] }
func (h *Host) Dispatch(cmd model.Command)  { h.pending = append(h.pending, cmd) }

// GroupIDs returns the unit ids of a group, dead or alive. Sidecar-owned
// groups take precedence over host groups of the same name.
func (h *Host) GroupIDs(group string) []int {
	if ids, ok := h.groups[group]; ok {
		return ids
	}
	return h.state.Groups[group]
}

func (h *Host) Members(group string) []model.Object {
	ids := h.GroupIDs(group)
	out := make([]model.Object, 0, len(ids))
	for _, id := range ids {
		if i, ok := h.byID[id]; ok {
			out = append(out, h.state.Objects[i])
		}
	}
	return out
}

// AssignGroup moves units into a sidecar-owned group. A unit belongs to
// at most one such group; groups left empty by the move are dropped.
func (h *Host) AssignGroup(group string, units ...int) {
	for name, ids := range h.groups {
		if name == group {
			continue
		}
		ids = slices.DeleteFunc(ids, func(id int) bool { return slices.Contains(units, id) })
		if len(ids) == 0 {
			delete(h.groups, name)
			continue
		}
		h.groups[name] = ids
	}
	ids := h.groups[group]
	for _, id := range units {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	h.groups[group] = ids
	slog.Debug("units assigned to group", "group", group, "units", units)
}

func (h *Host) Object(label string) (model.Object, bool) {
	for _, o := range h.state.Objects {
		if o.Label == label {
			return o, true
		}
	}
	return model.Object{}, false
}

func (h *Host) Position(label string) (model.Position, bool) {
	if p, ok := h.state.Labels[label]; ok {
		return p, true
	}
	if o, ok := h.Object(label); ok {
		return o.Pos(), true
	}
	return model.Position{}, false
}

func (h *Host) EnemiesInRange(center model.Position, radius int, visibleOnly bool) []model.Object {
	return h.enemies(func(o model.Object) bool {
		return (!visibleOnly || o.Visible) && model.Dist(o.Pos(), center) <= float64(radius)
	})
}

func (h *Host) EnemiesInArea(x1, y1, x2, y2 int) []model.Object {
	return h.enemies(func(o model.Object) bool {
		return o.X >= x1 && o.X <= x2 && o.Y >= y1 && o.Y <= y2
	})
}

func (h *Host) EnemyStructures() []model.Object {
	return h.enemies(model.Object.IsStructure)
}

func (h *Host) EnemyUnits() []model.Object {
	return h.enemies(model.Object.IsUnit)
}

func (h *Host) enemies(keep func(model.Object) bool) []model.Object {
	var out []model.Object
	for _, o := range h.state.Objects {
		if o.Player == h.state.Enemy && o.Kind != model.KindFeature && keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (h *Host) CanReach(unit model.Object, to model.Position) bool {
	if unit.VTOL {
		return true
	}
	return h.terrain.CanReach(unit.Propulsion, unit.Pos(), to)
}

func (h *Host) HasStructure(player int, kind model.StructureType) bool {
	for _, o := range h.state.Objects {
		if o.Player == player && o.IsStructure() && o.Structure == kind {
			return true
		}
	}
	return false
}

// Rand returns a value in [0, n), or 0 when n is not positive.
func (h *Host) Rand(n int) int {
	if n <= 0 {
		return 0
	}
	return h.rng.IntN(n)
}
