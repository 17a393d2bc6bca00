package tactics

import (
	"fmt"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Location is either a named map label or a literal tile position.
// SetGroupOrder resolves labels, so stored params always carry X/Y.
type Location struct {
	Label string
	X, Y  int
}

// At is a literal tile position.
func At(x, y int) Location { return Location{X: x, Y: y} }

// Labeled refers to a position the host knows by name.
func Labeled(name string) Location { return Location{Label: name} }

func (l Location) Pos() model.Position { return model.Position{X: l.X, Y: l.Y} }

func (l Location) String() string {
	if l.Label != "" {
		return fmt.Sprintf("%s(%d,%d)", l.Label, l.X, l.Y)
	}
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// Common holds the fields every order variant understands.
type Common struct {
	// Count overrides the group size baseline. Nil means "live size when
	// the order is given"; a negative value makes regroup require
	// RegroupRatio of the live group in the largest cluster.
	Count *int
	// Repair is the health percentage below which members go for repairs.
	// Zero leaves it unset.
	Repair  int
	Regroup bool
	// KeepWhenEmpty stops the scheduler from dropping the group when it
	// has no members, for groups that a script refills by hand.
	KeepWhenEmpty bool
}

// Params is the order-specific configuration. Each order has exactly one
// concrete type; the set is closed.
type Params interface {
	Order() Order
	common() *Common
}

// AttackParams pursues the enemy, preferring the listed positions in order.
type AttackParams struct {
	Common
	Pos      []Location
	Radius   int       // scan radius around Pos; zero uses PlayerBaseRadius
	Fallback *Location // where to defend when morale breaks
	Morale   int       // 1-100; zero disables morale checks
}

// DefendParams holds Pos[0]; Advance is what the group attacks again
// once morale recovers.
type DefendParams struct {
	Common
	Pos     []Location
	Radius  int // zero uses DefenseRadius
	Advance []Location
	Morale  int
}

// PatrolParams moves randomly between positions.
type PatrolParams struct {
	Common
	Pos      []Location
	Interval time.Duration // zero uses PatrolInterval
}

// CompromiseParams behaves like attack but stays anchored to the last position.
type CompromiseParams struct {
	Common
	Pos    []Location
	Radius int
}

// FollowParams escorts a commander; when the commander dies the group
// takes over the commander's order.
type FollowParams struct {
	Common
	Commander string // commander label
	SubOrder  Order
	SubParams Params
}

func (p *AttackParams) Order() Order     { return OrderAttack }
func (p *DefendParams) Order() Order     { return OrderDefend }
func (p *PatrolParams) Order() Order     { return OrderPatrol }
func (p *CompromiseParams) Order() Order { return OrderCompromise }
func (p *FollowParams) Order() Order     { return OrderFollow }

func (p *AttackParams) common() *Common     { return &p.Common }
func (p *DefendParams) common() *Common     { return &p.Common }
func (p *PatrolParams) common() *Common     { return &p.Common }
func (p *CompromiseParams) common() *Common { return &p.Common }
func (p *FollowParams) common() *Common     { return &p.Common }

// emptyParams returns a zero variant for an order given without params.
func emptyParams(o Order) (Params, error) {
	switch o {
	case OrderAttack:
		return &AttackParams{}, nil
	case OrderDefend:
		return &DefendParams{}, nil
	case OrderPatrol:
		return &PatrolParams{}, nil
	case OrderCompromise:
		return &CompromiseParams{}, nil
	case OrderFollow:
		return &FollowParams{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedOrder, o)
}

// cloneParams copies a variant so the store never aliases caller slices.
func cloneParams(p Params) Params {
	switch v := p.(type) {
	case *AttackParams:
		c := *v
		c.Pos = cloneLocations(v.Pos)
		if v.Fallback != nil {
			fb := *v.Fallback
			c.Fallback = &fb
		}
		c.Count = cloneCount(v.Count)
		return &c
	case *DefendParams:
		c := *v
		c.Pos = cloneLocations(v.Pos)
		c.Advance = cloneLocations(v.Advance)
		c.Count = cloneCount(v.Count)
		return &c
	case *PatrolParams:
		c := *v
		c.Pos = cloneLocations(v.Pos)
		c.Count = cloneCount(v.Count)
		return &c
	case *CompromiseParams:
		c := *v
		c.Pos = cloneLocations(v.Pos)
		c.Count = cloneCount(v.Count)
		return &c
	case *FollowParams:
		c := *v
		if v.SubParams != nil {
			c.SubParams = cloneParams(v.SubParams)
		}
		c.Count = cloneCount(v.Count)
		return &c
	}
	return p
}

func cloneLocations(in []Location) []Location {
	if in == nil {
		return nil
	}
	return append([]Location(nil), in...)
}

func cloneCount(c *int) *int {
	if c == nil {
		return nil
	}
	n := *c
	return &n
}

// positions returns the position list of a variant, if it has one.
func positions(p Params) []Location {
	switch v := p.(type) {
	case *AttackParams:
		return v.Pos
	case *DefendParams:
		return v.Pos
	case *PatrolParams:
		return v.Pos
	case *CompromiseParams:
		return v.Pos
	}
	return nil
}

func scanRadius(r, def int) int {
	if r > 0 {
		return r
	}
	return def
}
