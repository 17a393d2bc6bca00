package tactics

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// candidate is a possible engagement point: an enemy object, or a bare
// position when the order falls back to one.
type candidate struct {
	pos model.Position
	obj *model.Object
}

func (c candidate) id() int {
	if c.obj == nil {
		return -1
	}
	return c.obj.ID
}

func objectCandidates(objs []model.Object) []candidate {
	out := make([]candidate, 0, len(objs))
	for i := range objs {
		out = append(out, candidate{pos: objs[i].Pos(), obj: &objs[i]})
	}
	return out
}

// pickTarget chooses where the group should engage and caches it on the
// record. It reports false when there is nothing worth pursuing.
func (m *Manager) pickTarget(rec *GroupOrder, members []model.Object) (model.Position, bool) {
	center, ok := centroid(members)
	if !ok {
		return model.Position{}, false
	}
	var cands []candidate
	switch p := rec.Params.(type) {
	case *AttackParams:
		if rec.Target != nil {
			for _, o := range m.host.EnemiesInRange(*rec.Target, m.cfg.TrackingRadius, false) {
				if o.IsStructure() || (o.IsUnit() && !o.IsAirborne()) {
					cands = append(cands, candidate{pos: o.Pos(), obj: &o})
				}
			}
		}
		cands = append(cands, m.scanPositions(p.Pos, scanRadius(p.Radius, m.cfg.PlayerBaseRadius))...)
		cands = m.widenSearch(cands, members[0])
	case *CompromiseParams:
		if len(p.Pos) == 0 {
			slog.Warn("cannot pick target", "group", rec.Group, "order", rec.Order, "err", ErrMissingPosition)
			return model.Position{}, false
		}
		cands = m.scanPositions(p.Pos, scanRadius(p.Radius, m.cfg.PlayerBaseRadius))
		if len(cands) == 0 {
			cands = []candidate{{pos: p.Pos[len(p.Pos)-1].Pos()}}
		}
		cands = m.widenSearch(cands, members[0])
	case *DefendParams:
		if len(p.Pos) == 0 {
			slog.Warn("cannot pick target", "group", rec.Group, "order", rec.Order, "err", ErrMissingPosition)
			return model.Position{}, false
		}
		home := p.Pos[0].Pos()
		radius := scanRadius(p.Radius, m.cfg.DefenseRadius)
		if rec.Target != nil && model.Dist(*rec.Target, home) < float64(radius) {
			cands = objectCandidates(m.host.EnemiesInRange(*rec.Target, m.cfg.TrackingRadius, false))
		}
		if len(cands) == 0 {
			cands = objectCandidates(m.host.EnemiesInRange(home, radius, false))
		}
		if len(cands) == 0 {
			cands = []candidate{{pos: home}}
		}
	default:
		slog.Warn("unsupported group order", "group", rec.Group, "order", rec.Order)
		return model.Position{}, false
	}
	if len(cands) == 0 {
		return model.Position{}, false
	}

	sortCandidates(cands, center)
	best := cands[0]
	if best.obj != nil && best.obj.IsTransporter() {
		return model.Position{}, false
	}
	if rec.Target == nil || *rec.Target != best.pos {
		t := best.pos
		m.record(Event{Group: rec.Group, Kind: EventTarget, Order: rec.Order, Members: len(members), Target: &t})
	}
	t := best.pos
	rec.Target = &t
	return t, true
}

// scanPositions returns the enemies around the first listed position
// that has any.
func (m *Manager) scanPositions(list []Location, radius int) []candidate {
	for _, loc := range list {
		if found := m.host.EnemiesInRange(loc.Pos(), radius, false); len(found) > 0 {
			return objectCandidates(found)
		}
	}
	return nil
}

// widenSearch keeps the candidates lead can reach. When none are left it
// falls back to ever broader enemy sets: structures, then ground units,
// then any unit.
func (m *Manager) widenSearch(cands []candidate, lead model.Object) []candidate {
	reachable := func(in []candidate) []candidate {
		var out []candidate
		for _, c := range in {
			if m.host.CanReach(lead, c.pos) {
				out = append(out, c)
			}
		}
		return out
	}
	if out := reachable(cands); len(out) > 0 {
		return out
	}
	if out := reachable(objectCandidates(m.host.EnemyStructures())); len(out) > 0 {
		return out
	}
	units := m.host.EnemyUnits()
	var ground []model.Object
	for _, u := range units {
		if !u.IsAirborne() {
			ground = append(ground, u)
		}
	}
	if out := reachable(objectCandidates(ground)); len(out) > 0 {
		return out
	}
	return reachable(objectCandidates(units))
}

// sortCandidates orders by distance from center, then by object id so
// equal distances always resolve the same way.
func sortCandidates(cands []candidate, center model.Position) {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(model.Dist(a.pos, center), model.Dist(b.pos, center)); c != 0 {
			return c
		}
		return cmp.Compare(a.id(), b.id())
	})
}

func sortObjects(objs []model.Object, center model.Position) {
	slices.SortStableFunc(objs, func(a, b model.Object) int {
		if c := cmp.Compare(model.Dist(a.Pos(), center), model.Dist(b.Pos(), center)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
