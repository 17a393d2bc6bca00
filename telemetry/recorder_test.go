package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

func TestNewRecorder_DisabledIsNil(t *testing.T) {
	r, err := NewRecorder("", 8)
	if err != nil || r != nil {
		t.Fatalf("expected nil recorder, got %v, %v", r, err)
	}
	// nil recorders swallow everything
	r.Observer("s").Record(tactics.Event{Group: "g"})
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestRecorder_WritesRows(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, 2)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	obs := r.Observer("abc")
	obs.Record(tactics.Event{At: 1500 * time.Millisecond, Group: "north", Kind: tactics.EventOrderSet, Order: tactics.OrderAttack, Members: 4})
	obs.Record(tactics.Event{At: 2 * time.Second, Group: "north", Kind: tactics.EventTarget, Order: tactics.OrderAttack, Members: 4, Target: &model.Position{X: 12, Y: 30}})
	r.Observer("def").Record(tactics.Event{At: 3 * time.Second, Group: "south", Kind: tactics.EventOrderCleared, Order: tactics.OrderPatrol})
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := ReadDecisions(filepath.Join(dir, "decisions.csv"))
	if err != nil {
		t.Fatalf("ReadDecisions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (one header only), got %d: %+v", len(rows), rows)
	}
	if rows[0].Session != "abc" || rows[0].AtMS != 1500 || rows[0].Order != "ATTACK" || rows[0].HasTarget {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if !rows[1].HasTarget || rows[1].TargetX != 12 || rows[1].TargetY != 30 || rows[1].Kind != "target" {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Session != "def" || rows[2].Order != "PATROL" {
		t.Errorf("row 2 = %+v", rows[2])
	}
}

func TestRecorder_BuffersUntilFlush(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, 100)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	defer r.Close()
	r.Observer("s").Record(tactics.Event{Group: "g", Kind: tactics.EventRegroupHold})

	path := filepath.Join(dir, "decisions.csv")
	if rows, _ := ReadDecisions(path); len(rows) != 0 {
		t.Errorf("expected nothing written before flush, got %d rows", len(rows))
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	rows, err := ReadDecisions(path)
	if err != nil || len(rows) != 1 {
		t.Errorf("expected 1 row after flush, got %d, %v", len(rows), err)
	}
}
