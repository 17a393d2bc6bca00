package world

import (
	"slices"
	"testing"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

func snapshot() model.WorldState {
	return model.WorldState{
		Tick:      10,
		TimeMS:    2500,
		Player:    1,
		Enemy:     0,
		MapWidth:  32,
		MapHeight: 32,
		Objects: []model.Object{
			{ID: 1, Player: 1, Kind: model.KindUnit, X: 2, Y: 2, Label: "hero"},
			{ID: 2, Player: 1, Kind: model.KindUnit, X: 3, Y: 2},
			{ID: 3, Player: 1, Kind: model.KindStructure, Structure: model.StructHQ, X: 1, Y: 1},
			{ID: 10, Player: 0, Kind: model.KindUnit, X: 10, Y: 10, Visible: true},
			{ID: 11, Player: 0, Kind: model.KindUnit, X: 12, Y: 10},
			{ID: 12, Player: 0, Kind: model.KindStructure, Structure: model.StructDefense, X: 20, Y: 20, Visible: true},
			{ID: 13, Player: 0, Kind: model.KindFeature, X: 10, Y: 11},
		},
		Groups: map[string][]int{"alpha": {1, 2, 99}},
		Labels: map[string]model.Position{"bridge": {X: 16, Y: 5}},
	}
}

func TestHost_Queries(t *testing.T) {
	h := New(1)
	h.Update(snapshot())

	if h.Now() != 2500*time.Millisecond {
		t.Errorf("Now = %v", h.Now())
	}
	if got := h.Members("alpha"); len(got) != 2 {
		t.Errorf("Members = %d, want 2 live units", len(got))
	}
	if p, ok := h.Position("bridge"); !ok || p != (model.Position{X: 16, Y: 5}) {
		t.Errorf("Position(bridge) = %v %v", p, ok)
	}
	if p, ok := h.Position("hero"); !ok || p != (model.Position{X: 2, Y: 2}) {
		t.Errorf("Position(hero) = %v %v", p, ok)
	}
	if _, ok := h.Position("nowhere"); ok {
		t.Error("unknown label resolved")
	}

	if got := h.EnemiesInRange(model.Position{X: 10, Y: 10}, 3, false); len(got) != 2 {
		t.Errorf("EnemiesInRange = %d, want 2 (features excluded)", len(got))
	}
	if got := h.EnemiesInRange(model.Position{X: 10, Y: 10}, 3, true); len(got) != 1 {
		t.Errorf("visible EnemiesInRange = %d, want 1", len(got))
	}
	if got := h.EnemiesInArea(16, 16, 23, 23); len(got) != 1 || got[0].ID != 12 {
		t.Errorf("EnemiesInArea = %+v", got)
	}
	if len(h.EnemyStructures()) != 1 || len(h.EnemyUnits()) != 2 {
		t.Errorf("structures=%d units=%d", len(h.EnemyStructures()), len(h.EnemyUnits()))
	}
	if !h.HasStructure(1, model.StructHQ) || h.HasStructure(1, model.StructRepairFacility) {
		t.Error("HasStructure mismatch")
	}
}

func TestHost_SyntheticGroupsArePruned(t *testing.T) {
	h := New(1)
	h.Update(snapshot())
	h.AssignGroup("commander-x", 1)
	h.AssignGroup("commander-x", 1)
	if ids := h.GroupIDs("commander-x"); !slices.Equal(ids, []int{1}) {
		t.Fatalf("GroupIDs = %v", ids)
	}

	next := snapshot()
	next.Objects = next.Objects[1:]
	h.Update(next)
	if ids := h.GroupIDs("commander-x"); len(ids) != 0 {
		t.Errorf("dead commander still grouped: %v", ids)
	}
}

func TestHost_AssignGroupMovesUnits(t *testing.T) {
	h := New(1)
	h.Update(snapshot())
	h.AssignGroup("commander-a", 1, 2)
	h.AssignGroup("commander-b", 1)
	h.AssignGroup("commander-c", 2)

	if ids := h.GroupIDs("commander-a"); len(ids) != 0 {
		t.Errorf("commander-a should be emptied, have %v", ids)
	}
	if ids := h.GroupIDs("commander-b"); !slices.Equal(ids, []int{1}) {
		t.Errorf("commander-b = %v, want [1]", ids)
	}
	if ids := h.GroupIDs("commander-c"); !slices.Equal(ids, []int{2}) {
		t.Errorf("commander-c = %v, want [2]", ids)
	}
}

func TestHost_CanReach(t *testing.T) {
	h := New(1)
	h.Update(snapshot())
	h.SetTerrain(&model.TerrainGrid{
		Cols: 2, Rows: 1, CellW: 16, CellH: 32,
		Grid: []model.TerrainType{model.Land, model.Water},
	})
	tank := model.Object{ID: 1, X: 2, Y: 2, Propulsion: model.PropTracked}
	hover := model.Object{ID: 2, X: 2, Y: 2, Propulsion: model.PropHover}
	vtol := model.Object{ID: 3, X: 2, Y: 2, VTOL: true}
	across := model.Position{X: 20, Y: 2}

	if h.CanReach(tank, across) {
		t.Error("tracked unit crossed water")
	}
	if !h.CanReach(hover, across) || !h.CanReach(vtol, across) {
		t.Error("hover and VTOL should cross water")
	}
}

func TestHost_RandDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for range 20 {
		if x, y := a.Rand(10), b.Rand(10); x != y {
			t.Fatalf("same seed diverged: %d vs %d", x, y)
		}
	}
	if a.Rand(0) != 0 {
		t.Error("Rand(0) should be 0")
	}
}

func TestHost_Drain(t *testing.T) {
	h := New(1)
	h.Dispatch(model.Command{Action: model.ActionMove, Unit: 1})
	h.Dispatch(model.Command{Action: model.ActionHold, Unit: 2})
	if got := h.Drain(); len(got) != 2 {
		t.Errorf("Drain = %d commands, want 2", len(got))
	}
	if got := h.Drain(); len(got) != 0 {
		t.Errorf("second Drain = %d commands, want 0", len(got))
	}
}
