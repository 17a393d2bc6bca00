package tactics

import (
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Host is the simulation the manager drives. Enemy queries only cover
// the enemy (human) player's objects.
type Host interface {
	// Now is the simulation clock.
	Now() time.Duration
	MapSize() (width, height int)
	// EnemyPlayer is the player whose objects are targets.
	EnemyPlayer() int

	// Members lists the live units of a group.
	Members(group string) []model.Object
	// AssignGroup puts units into a (possibly new) group.
	AssignGroup(group string, units ...int)
	// Object looks up a live object by label.
	Object(label string) (model.Object, bool)
	// Position resolves a label naming a position, area or object.
	Position(label string) (model.Position, bool)

	EnemiesInRange(center model.Position, radius int, visibleOnly bool) []model.Object
	EnemiesInArea(x1, y1, x2, y2 int) []model.Object
	EnemyStructures() []model.Object
	EnemyUnits() []model.Object

	// CanReach reports whether unit's propulsion can get to the position.
	CanReach(unit model.Object, to model.Position) bool
	HasStructure(player int, kind model.StructureType) bool
	// SelfRepairs reports whether the player's units heal without a facility.
	SelfRepairs(player int) bool

	Dispatch(cmd model.Command)
	// Rand returns a value in [0, n).
	Rand(n int) int
}

func (m *Manager) orderUnit(u model.Object, a model.Action) {
	m.host.Dispatch(model.Command{Action: a, Unit: u.ID})
}

func (m *Manager) orderLoc(u model.Object, a model.Action, p model.Position) {
	m.host.Dispatch(model.Command{Action: a, Unit: u.ID, X: p.X, Y: p.Y})
}

func (m *Manager) orderObj(u model.Object, a model.Action, target model.Object) {
	m.host.Dispatch(model.Command{Action: a, Unit: u.ID, Target: target.ID})
}
