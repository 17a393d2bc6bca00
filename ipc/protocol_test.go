package ipc

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypeStopManaging, StopManagingMessage{Group: "north"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[:4]); int(got) != buf.Len()-4 {
		t.Errorf("length prefix = %d, payload = %d", got, buf.Len()-4)
	}

	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	if got.Type != TypeStopManaging {
		t.Errorf("type = %q", got.Type)
	}
	if !strings.Contains(string(got.Data), `"north"`) {
		t.Errorf("data = %s", got.Data)
	}
}

func TestReadEnvelope_RejectsBadLength(t *testing.T) {
	for _, n := range []uint32{0, MaxFrame + 1} {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, n)
		if _, err := ReadEnvelope(&buf); err == nil {
			t.Errorf("length %d: expected error", n)
		}
	}
}

func TestReadEnvelope_Truncated(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(10))
	buf.WriteString("{}")
	if _, err := ReadEnvelope(&buf); err == nil {
		t.Error("expected error on short payload")
	}
}

func TestWriteEnvelope_TooLarge(t *testing.T) {
	env := Envelope{Type: "x", Data: []byte(`"` + strings.Repeat("a", MaxFrame) + `"`)}
	var buf bytes.Buffer
	if err := WriteEnvelope(&buf, env); err == nil {
		t.Error("expected error for oversized frame")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes for rejected frame", buf.Len())
	}
}

func TestTerrainData_ToGrid(t *testing.T) {
	td := &TerrainData{Cols: 2, Rows: 1, CellW: 4, CellH: 4, Grid: []int{0, 1}}
	g, err := td.ToGrid()
	if err != nil {
		t.Fatalf("ToGrid: %v", err)
	}
	if g.AtMapPos(5, 0) != 1 {
		t.Errorf("expected water at (5,0), got %d", g.AtMapPos(5, 0))
	}

	td.Grid = td.Grid[:1]
	if _, err := td.ToGrid(); err == nil {
		t.Error("expected error for short grid")
	}
}
