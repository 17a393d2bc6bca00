package directive

import (
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

// World is the part of the host simulation directive conditions can see.
type World interface {
	Now() time.Duration
	Members(group string) []model.Object
	EnemiesInRange(center model.Position, radius int, visibleOnly bool) []model.Object
	EnemyStructures() []model.Object
	EnemyUnits() []model.Object
}

// Env exposes helper methods callable from directive conditions.
type Env struct {
	world   World
	manager *tactics.Manager
	tick    int
	fired   map[string]int
}

func (e Env) Seconds() float64 { return e.world.Now().Seconds() }
func (e Env) Tick() int        { return e.tick }

func (e Env) GroupSize(group string) int { return len(e.world.Members(group)) }

func (e Env) Managed(group string) bool {
	_, ok := e.manager.GroupOrder(group)
	return ok
}

// OrderOf returns the group's current order name, or "" when unmanaged.
func (e Env) OrderOf(group string) string {
	rec, ok := e.manager.GroupOrder(group)
	if !ok {
		return ""
	}
	return rec.Order.String()
}

func (e Env) EnemiesNear(x, y, radius int) int {
	return len(e.world.EnemiesInRange(model.Position{X: x, Y: y}, radius, false))
}

func (e Env) EnemiesVisible() int {
	n := 0
	for _, o := range e.world.EnemyUnits() {
		if o.Visible {
			n++
		}
	}
	for _, o := range e.world.EnemyStructures() {
		if o.Visible {
			n++
		}
	}
	return n
}

func (e Env) EnemyStructureCount() int { return len(e.world.EnemyStructures()) }

// Fired reports whether the named directive has fired at least once.
func (e Env) Fired(name string) bool { return e.fired[name] > 0 }
