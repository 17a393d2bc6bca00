package directive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/tactics"
	"github.com/nstehr/vimy/vimy-tactics/world"
)

const sample = `
directives:
  - name: hold-the-bridge
    priority: 10
    when: Seconds() >= 0
    group: alpha
    order:
      order: defend
      pos: {x: 4, y: 4}
  - name: counterattack
    priority: 50
    when: EnemiesNear(10, 10, 5) > 0
    group: alpha
    exclusive: true
    order:
      order: attack
      pos: [{x: 10, y: 10}]
  - name: stand-down
    priority: 1
    when: Fired("counterattack") && GroupSize("alpha") < 2
    group: alpha
    clear: true
`

func testWorld(withEnemy bool) *world.Host {
	ws := model.WorldState{
		TimeMS:    1000,
		Player:    1,
		Enemy:     0,
		MapWidth:  32,
		MapHeight: 32,
		Objects: []model.Object{
			{ID: 1, Player: 1, Kind: model.KindUnit, X: 2, Y: 2, Health: 100},
			{ID: 2, Player: 1, Kind: model.KindUnit, X: 3, Y: 2, Health: 100},
		},
		Groups: map[string][]int{"alpha": {1, 2}},
	}
	if withEnemy {
		ws.Objects = append(ws.Objects, model.Object{ID: 50, Player: 0, Kind: model.KindUnit, X: 11, Y: 10, Visible: true})
	}
	h := world.New(1)
	h.Update(ws)
	return h
}

func newEngine(t *testing.T, src string) *Engine {
	t.Helper()
	ds, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e, err := NewEngine(ds)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_SortsByPriority(t *testing.T) {
	e := newEngine(t, sample)
	if e.Len() != 3 {
		t.Fatalf("Len = %d, want 3", e.Len())
	}
	for i := 1; i < len(e.directives); i++ {
		if e.directives[i].Priority > e.directives[i-1].Priority {
			t.Errorf("directives not sorted: %s (%d) > %s (%d)",
				e.directives[i].Name, e.directives[i].Priority,
				e.directives[i-1].Name, e.directives[i-1].Priority)
		}
	}
}

func TestNewEngine_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad expr", "directives:\n  - {name: a, when: 'Nope(', group: g, clear: true}\n", "compile"},
		{"not bool", "directives:\n  - {name: a, when: 'Tick()', group: g, clear: true}\n", "compile"},
		{"no group", "directives:\n  - {name: a, when: 'true', clear: true}\n", "missing group"},
		{"no action", "directives:\n  - {name: a, when: 'true', group: g}\n", "order or clear"},
		{"bad order", "directives:\n  - {name: a, when: 'true', group: g, order: {order: dance}}\n", "unsupported"},
		{"duplicate", "directives:\n  - {name: a, when: 'true', group: g, clear: true}\n  - {name: a, when: 'true', group: h, clear: true}\n", "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = NewEngine(ds)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEvaluate_ExclusiveAndEdgeTriggered(t *testing.T) {
	e := newEngine(t, sample)
	h := testWorld(true)
	mgr := tactics.NewManager(h, tactics.DefaultConfig())

	// counterattack wins the group; hold-the-bridge waits its turn.
	if n := e.Evaluate(h, 1, mgr); n != 1 {
		t.Fatalf("fired %d, want 1", n)
	}
	if rec, _ := mgr.GroupOrder("alpha"); rec.Order != tactics.OrderAttack {
		t.Fatalf("order = %v, want ATTACK", rec.Order)
	}

	// Still true: counterattack stays quiet, the blocked directive fires now.
	if n := e.Evaluate(h, 2, mgr); n != 1 {
		t.Fatalf("second evaluation fired %d, want 1", n)
	}
	if rec, _ := mgr.GroupOrder("alpha"); rec.Order != tactics.OrderDefend {
		t.Errorf("order = %v, want DEFEND", rec.Order)
	}
	if n := e.Evaluate(h, 3, mgr); n != 0 {
		t.Errorf("steady state fired %d, want 0", n)
	}
}

func TestEvaluate_OnceVersusRepeat(t *testing.T) {
	src := `
directives:
  - name: once
    when: EnemiesNear(10, 10, 5) > 0
    group: a
    order: {order: attack}
  - name: again
    when: EnemiesNear(10, 10, 5) > 0
    group: b
    repeat: true
    order: {order: attack}
`
	e := newEngine(t, src)
	quiet, busy := testWorld(false), testWorld(true)
	mgr := tactics.NewManager(busy, tactics.DefaultConfig())

	want := []int{2, 0, 0, 1}
	for i, h := range []*world.Host{busy, busy, quiet, busy} {
		if n := e.Evaluate(h, i, mgr); n != want[i] {
			t.Errorf("evaluation %d fired %d, want %d", i, n, want[i])
		}
	}
}

func TestEvaluate_ClearAndFired(t *testing.T) {
	e := newEngine(t, sample)
	h := testWorld(true)
	mgr := tactics.NewManager(h, tactics.DefaultConfig())
	e.Evaluate(h, 1, mgr)
	e.Evaluate(h, 2, mgr)

	ws := h.State()
	ws.Objects = ws.Objects[1:]
	h.Update(ws)
	if n := e.Evaluate(h, 3, mgr); n != 1 {
		t.Fatalf("fired %d, want stand-down", n)
	}
	if _, ok := mgr.GroupOrder("alpha"); ok {
		t.Error("alpha still managed after stand-down")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds) != 3 || ds[1].Order == nil || len(ds[1].Order.Pos) != 1 {
		t.Errorf("loaded %+v", ds)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestFork_FreshState(t *testing.T) {
	e := newEngine(t, sample)
	h := testWorld(true)
	e.Evaluate(h, 1, tactics.NewManager(h, tactics.DefaultConfig()))

	f := e.Fork()
	if f.Len() != e.Len() {
		t.Fatalf("fork has %d directives, want %d", f.Len(), e.Len())
	}
	mgr := tactics.NewManager(h, tactics.DefaultConfig())
	if n := f.Evaluate(h, 1, mgr); n != 1 {
		t.Errorf("fork fired %d, want counterattack again", n)
	}
	if e.fired["counterattack"] != 1 {
		t.Errorf("parent engine state changed: %v", e.fired)
	}
}
