package tactics

import (
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

const (
	aiPlayer    = 1
	humanPlayer = 0
)

// fakeHost is an in-memory world for driving the manager in tests.
type fakeHost struct {
	now         time.Duration
	width       int
	height      int
	objects     []model.Object
	groups      map[string][]int
	labels      map[string]model.Position
	structures  map[int][]model.StructureType
	selfRepair  map[int]bool
	unreachable map[model.Position]bool
	cmds        []model.Command
	rolls       []int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		width:       64,
		height:      64,
		groups:      make(map[string][]int),
		labels:      make(map[string]model.Position),
		structures:  make(map[int][]model.StructureType),
		selfRepair:  make(map[int]bool),
		unreachable: make(map[model.Position]bool),
	}
}

func unit(id, x, y int) model.Object {
	return model.Object{ID: id, Player: aiPlayer, Kind: model.KindUnit, Unit: model.UnitWeapon, X: x, Y: y, Health: 100, Ammo: 100}
}

func enemyUnit(id, x, y int) model.Object {
	return model.Object{ID: id, Player: humanPlayer, Kind: model.KindUnit, Unit: model.UnitWeapon, X: x, Y: y, Health: 100, Visible: true}
}

func enemyStructure(id, x, y int, kind model.StructureType) model.Object {
	return model.Object{ID: id, Player: humanPlayer, Kind: model.KindStructure, Structure: kind, X: x, Y: y, Health: 100, Visible: true}
}

func (h *fakeHost) add(group string, objs ...model.Object) {
	for _, o := range objs {
		h.objects = append(h.objects, o)
		if group != "" {
			h.groups[group] = append(h.groups[group], o.ID)
		}
	}
}

func (h *fakeHost) kill(ids ...int) {
	h.objects = slices.DeleteFunc(h.objects, func(o model.Object) bool {
		return slices.Contains(ids, o.ID)
	})
}

func (h *fakeHost) update(id int, fn func(*model.Object)) {
	for i := range h.objects {
		if h.objects[i].ID == id {
			fn(&h.objects[i])
		}
	}
}

func (h *fakeHost) find(id int) (model.Object, bool) {
	for _, o := range h.objects {
		if o.ID == id {
			return o, true
		}
	}
	return model.Object{}, false
}

func (h *fakeHost) takeCommands() []model.Command {
	out := h.cmds
	h.cmds = nil
	return out
}

func (h *fakeHost) Now() time.Duration         { return h.now }
func (h *fakeHost) MapSize() (int, int)        { return h.width, h.height }
func (h *fakeHost) EnemyPlayer() int           { return humanPlayer }
func (h *fakeHost) Dispatch(cmd model.Command) { h.cmds = append(h.cmds, cmd) }

func (h *fakeHost) Members(group string) []model.Object {
	var out []model.Object
	for _, id := range h.groups[group] {
		if o, ok := h.find(id); ok {
			out = append(out, o)
		}
	}
	return out
}

func (h *fakeHost) AssignGroup(group string, units ...int) {
	h.groups[group] = append(h.groups[group], units...)
}

func (h *fakeHost) Object(label string) (model.Object, bool) {
	for _, o := range h.objects {
		if o.Label == label {
			return o, true
		}
	}
	return model.Object{}, false
}

func (h *fakeHost) Position(label string) (model.Position, bool) {
	if p, ok := h.labels[label]; ok {
		return p, true
	}
	if o, ok := h.Object(label); ok {
		return o.Pos(), true
	}
	return model.Position{}, false
}

func (h *fakeHost) EnemiesInRange(center model.Position, radius int, visibleOnly bool) []model.Object {
	var out []model.Object
	for _, o := range h.objects {
		if o.Player != humanPlayer || (visibleOnly && !o.Visible) {
			continue
		}
		if model.Dist(o.Pos(), center) <= float64(radius) {
			out = append(out, o)
		}
	}
	return out
}

func (h *fakeHost) EnemiesInArea(x1, y1, x2, y2 int) []model.Object {
	var out []model.Object
	for _, o := range h.objects {
		if o.Player == humanPlayer && o.X >= x1 && o.X <= x2 && o.Y >= y1 && o.Y <= y2 {
			out = append(out, o)
		}
	}
	return out
}

func (h *fakeHost) EnemyStructures() []model.Object {
	var out []model.Object
	for _, o := range h.objects {
		if o.Player == humanPlayer && o.IsStructure() {
			out = append(out, o)
		}
	}
	return out
}

func (h *fakeHost) EnemyUnits() []model.Object {
	var out []model.Object
	for _, o := range h.objects {
		if o.Player == humanPlayer && o.IsUnit() {
			out = append(out, o)
		}
	}
	return out
}

func (h *fakeHost) CanReach(_ model.Object, to model.Position) bool {
	return !h.unreachable[to]
}

func (h *fakeHost) HasStructure(player int, kind model.StructureType) bool {
	return slices.Contains(h.structures[player], kind)
}

func (h *fakeHost) SelfRepairs(player int) bool { return h.selfRepair[player] }

func (h *fakeHost) Rand(n int) int {
	if len(h.rolls) == 0 {
		return 0
	}
	r := h.rolls[0]
	h.rolls = h.rolls[1:]
	return r % n
}

// recorder collects manager events.
type recorder struct{ events []Event }

func (r *recorder) Record(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	var out []EventKind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

// commandsFor filters dispatched commands by unit.
func commandsFor(cmds []model.Command, unit int) []model.Command {
	var out []model.Command
	for _, c := range cmds {
		if c.Unit == unit {
			out = append(out, c)
		}
	}
	return out
}

func intPtr(n int) *int { return &n }
