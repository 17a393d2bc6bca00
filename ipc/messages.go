package ipc

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

// Message types understood by the bridge.
const (
	TypeHello        = "hello"
	TypeAck          = "ack"
	TypeError        = "error"
	TypeWorldState   = "world_state"
	TypeManageGroup  = "manage_group"
	TypeStopManaging = "stop_managing"
	TypeOrders       = "orders"
)

type HelloMessage struct {
	Player  int    `json:"player"`
	Enemy   int    `json:"enemy"`
	Faction string `json:"faction"`
	// SelfRepair is set for factions whose units heal without a facility.
	SelfRepair bool         `json:"selfRepair"`
	Seed       uint64       `json:"seed"`
	Terrain    *TerrainData `json:"terrain,omitempty"`
}

// TerrainData carries the coarse terrain grid from the host.
// Optional: if absent the sidecar treats every position as reachable.
type TerrainData struct {
	Cols  int   `json:"cols"`
	Rows  int   `json:"rows"`
	CellW int   `json:"cellW"`
	CellH int   `json:"cellH"`
	Grid  []int `json:"grid"`
}

// ToGrid converts the wire form into a terrain grid.
func (t *TerrainData) ToGrid() (*model.TerrainGrid, error) {
	if t.Cols <= 0 || t.Rows <= 0 || len(t.Grid) != t.Cols*t.Rows {
		return nil, fmt.Errorf("terrain grid %dx%d has %d cells", t.Cols, t.Rows, len(t.Grid))
	}
	cells := make([]model.TerrainType, len(t.Grid))
	for i, v := range t.Grid {
		cells[i] = model.TerrainType(v)
	}
	return &model.TerrainGrid{Cols: t.Cols, Rows: t.Rows, CellW: t.CellW, CellH: t.CellH, Grid: cells}, nil
}

type AckMessage struct {
	Status string `json:"status"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ManageGroupMessage asks the sidecar to start (or replace) managing a group.
type ManageGroupMessage struct {
	Group string            `json:"group"`
	Order tactics.OrderSpec `json:"order"`
}

type StopManagingMessage struct {
	Group string `json:"group"`
}

// OrdersMessage is the batch of unit commands produced for one snapshot.
type OrdersMessage struct {
	Tick     int             `json:"tick"`
	Commands []model.Command `json:"commands"`
}
