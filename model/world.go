package model

import "gonum.org/v1/gonum/spatial/r2"

// WorldState is the per-tick snapshot the host simulation sends.
// Objects holds the AI player's own objects plus every enemy object the
// AI currently knows about.
type WorldState struct {
	Tick      int                 `json:"tick"`
	TimeMS    int64               `json:"timeMs"`
	Player    int                 `json:"player"`
	Enemy     int                 `json:"enemy"`
	MapWidth  int                 `json:"mapWidth"`
	MapHeight int                 `json:"mapHeight"`
	Objects   []Object            `json:"objects"`
	Groups    map[string][]int    `json:"groups"`
	Labels    map[string]Position `json:"labels"`
}

// Position is a map tile coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec converts the tile coordinate for distance math.
func (p Position) Vec() r2.Vec { return r2.Vec{X: float64(p.X), Y: float64(p.Y)} }

// Dist is the euclidean tile distance between two positions.
func Dist(a, b Position) float64 {
	return r2.Norm(r2.Sub(a.Vec(), b.Vec()))
}

type ObjectKind string

const (
	KindUnit      ObjectKind = "unit"
	KindStructure ObjectKind = "structure"
	KindFeature   ObjectKind = "feature"
)

// UnitType mirrors the host's droid classification.
type UnitType string

const (
	UnitWeapon      UnitType = "weapon"
	UnitCyborg      UnitType = "cyborg"
	UnitSensor      UnitType = "sensor"
	UnitCommander   UnitType = "commander"
	UnitTransporter UnitType = "transporter"
	UnitConstruct   UnitType = "construct"
	UnitRepair      UnitType = "repair"
)

// StructureType mirrors the host's structure stat types.
type StructureType string

const (
	StructDefense        StructureType = "defense"
	StructWall           StructureType = "wall"
	StructGate           StructureType = "gate"
	StructHQ             StructureType = "hq"
	StructRepairFacility StructureType = "repair_facility"
	StructRearmPad       StructureType = "rearm_pad"
	StructFactory        StructureType = "factory"
	StructGeneric        StructureType = "generic"
)

// Object is a unit, structure or feature in the snapshot.
type Object struct {
	ID         int           `json:"id"`
	Label      string        `json:"label,omitempty"`
	Player     int           `json:"player"`
	Kind       ObjectKind    `json:"kind"`
	Unit       UnitType      `json:"unitType,omitempty"`
	Structure  StructureType `json:"structType,omitempty"`
	X          int           `json:"x"`
	Y          int           `json:"y"`
	Z          int           `json:"z"`
	Health     int           `json:"health"` // percent
	Ammo       int           `json:"ammo"`   // percent, VTOLs only
	Action     Action        `json:"action"`
	Propulsion Propulsion    `json:"propulsion,omitempty"`
	VTOL       bool          `json:"vtol,omitempty"`
	Sensor     bool          `json:"sensor,omitempty"`
	Indirect   bool          `json:"indirect,omitempty"`
	CB         bool          `json:"cb,omitempty"`
	CanHitAir  bool          `json:"canHitAir,omitempty"`
	Visible    bool          `json:"visible,omitempty"`
}

func (o Object) Pos() Position { return Position{X: o.X, Y: o.Y} }

func (o Object) IsUnit() bool      { return o.Kind == KindUnit }
func (o Object) IsStructure() bool { return o.Kind == KindStructure }

// IsAirborne reports whether the object is a VTOL unit.
func (o Object) IsAirborne() bool { return o.Kind == KindUnit && o.VTOL }

// IsTransporter reports whether the object is a non-combat transport unit.
func (o Object) IsTransporter() bool { return o.Kind == KindUnit && o.Unit == UnitTransporter }

// ArtilleryLike covers counter-battery, indirect-fire and sensor units,
// which hang back instead of closing in.
func (o Object) ArtilleryLike() bool { return o.CB || o.Indirect || o.Sensor }

// Action is a unit-level order, both as reported for a unit's current
// activity and as issued in a Command.
type Action string

const (
	ActionNone             Action = ""
	ActionMove             Action = "move"
	ActionScout            Action = "scout"
	ActionAttack           Action = "attack"
	ActionObserve          Action = "observe"
	ActionHold             Action = "hold"
	ActionReturnToRepair   Action = "rtr"
	ActionReturnToBase     Action = "rtb"
	ActionRearm            Action = "rearm"
	ActionCommanderSupport Action = "commander_support"
)

// Command is a single unit order dispatched to the host. Location orders
// use X/Y, object orders use Target.
type Command struct {
	Action Action `json:"action"`
	Unit   int    `json:"unit"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	Target int    `json:"target,omitempty"`
}
