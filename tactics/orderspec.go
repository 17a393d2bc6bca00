package tactics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// OrderSpec is the serialized form of an order, as found in directive
// files and manage_group messages.
type OrderSpec struct {
	Order         string        `yaml:"order" json:"order"`
	Pos           Locations     `yaml:"pos,omitempty" json:"pos,omitempty"`
	Radius        int           `yaml:"radius,omitempty" json:"radius,omitempty"`
	Fallback      *Location     `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	Advance       Locations     `yaml:"advance,omitempty" json:"advance,omitempty"`
	Morale        int           `yaml:"morale,omitempty" json:"morale,omitempty"`
	Count         *int          `yaml:"count,omitempty" json:"count,omitempty"`
	Repair        int           `yaml:"repair,omitempty" json:"repair,omitempty"`
	Regroup       bool          `yaml:"regroup,omitempty" json:"regroup,omitempty"`
	Interval      time.Duration `yaml:"interval,omitempty" json:"-"`
	IntervalMS    int64         `yaml:"interval_ms,omitempty" json:"intervalMs,omitempty"`
	KeepWhenEmpty bool          `yaml:"keep_when_empty,omitempty" json:"keepWhenEmpty,omitempty"`
	Commander     string        `yaml:"commander,omitempty" json:"commander,omitempty"`
	Sub           *OrderSpec    `yaml:"sub,omitempty" json:"sub,omitempty"`
}

// Build converts the spec into an order and its params.
func (s OrderSpec) Build() (Order, Params, error) {
	o, err := ParseOrder(s.Order)
	if err != nil {
		return 0, nil, err
	}
	if s.Morale < 0 || s.Morale > 100 {
		return 0, nil, fmt.Errorf("morale %d is not a percentage", s.Morale)
	}
	common := Common{
		Count:         cloneCount(s.Count),
		Repair:        s.Repair,
		Regroup:       s.Regroup,
		KeepWhenEmpty: s.KeepWhenEmpty,
	}
	switch o {
	case OrderAttack:
		var fb *Location
		if s.Fallback != nil {
			l := *s.Fallback
			fb = &l
		}
		return o, &AttackParams{Common: common, Pos: cloneLocations(s.Pos), Radius: s.Radius, Fallback: fb, Morale: s.Morale}, nil
	case OrderDefend:
		return o, &DefendParams{Common: common, Pos: cloneLocations(s.Pos), Radius: s.Radius, Advance: cloneLocations(s.Advance), Morale: s.Morale}, nil
	case OrderPatrol:
		interval := s.Interval
		if interval == 0 {
			interval = time.Duration(s.IntervalMS) * time.Millisecond
		}
		return o, &PatrolParams{Common: common, Pos: cloneLocations(s.Pos), Interval: interval}, nil
	case OrderCompromise:
		return o, &CompromiseParams{Common: common, Pos: cloneLocations(s.Pos), Radius: s.Radius}, nil
	}
	// FOLLOW
	if s.Commander == "" {
		return 0, nil, errors.New("follow order needs a commander")
	}
	if s.Sub == nil {
		return 0, nil, errors.New("follow order needs a commander order")
	}
	so, sp, err := s.Sub.Build()
	if err != nil {
		return 0, nil, fmt.Errorf("commander order: %w", err)
	}
	return o, &FollowParams{Common: common, Commander: s.Commander, SubOrder: so, SubParams: sp}, nil
}

// Locations decodes a single label, a single {x, y} mapping, or a list
// of either.
type Locations []Location

type locationFields struct {
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	X     int    `yaml:"x" json:"x"`
	Y     int    `yaml:"y" json:"y"`
}

func (l *Location) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = Labeled(n.Value)
		return nil
	}
	var f locationFields
	if err := n.Decode(&f); err != nil {
		return err
	}
	*l = Location{Label: f.Label, X: f.X, Y: f.Y}
	return nil
}

func (l Location) MarshalYAML() (any, error) {
	if l.Label != "" {
		return l.Label, nil
	}
	return locationFields{X: l.X, Y: l.Y}, nil
}

func (ls *Locations) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		var list []Location
		if err := n.Decode(&list); err != nil {
			return err
		}
		*ls = list
		return nil
	}
	var one Location
	if err := n.Decode(&one); err != nil {
		return err
	}
	*ls = Locations{one}
	return nil
}

func (l *Location) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		*l = Labeled(label)
		return nil
	}
	var f locationFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*l = Location{Label: f.Label, X: f.X, Y: f.Y}
	return nil
}

func (l Location) MarshalJSON() ([]byte, error) {
	if l.Label != "" {
		return json.Marshal(l.Label)
	}
	return json.Marshal(locationFields{X: l.X, Y: l.Y})
}

func (ls *Locations) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []Location
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*ls = list
		return nil
	}
	var one Location
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*ls = Locations{one}
	return nil
}
