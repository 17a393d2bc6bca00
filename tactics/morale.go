package tactics

import (
	"log/slog"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// moraleThreshold is the alive count at or below which an attacking group
// breaks. The same value gates recovery, so a group sitting exactly on it
// stays defending.
func moraleThreshold(morale, count int) int {
	return floorDiv((100-morale)*count, 100)
}

// checkMorale flips a group between ATTACK and DEFEND based on how many
// of its members are still alive, swapping the advance and fallback
// positions.
func (m *Manager) checkMorale(group string) {
	rec, ok := m.groups[group]
	if !ok {
		return
	}
	members := m.host.Members(group)
	alive := len(members)

	switch p := rec.Params.(type) {
	case *AttackParams:
		if p.Morale <= 0 || alive > moraleThreshold(p.Morale, rec.Count) {
			return
		}
		var fallback Location
		switch {
		case p.Fallback != nil:
			fallback = *p.Fallback
		default:
			c, ok := centroid(members)
			if !ok {
				slog.Warn("group broke with no fallback position", "group", group)
				return
			}
			fallback = At(c.X, c.Y)
		}
		slog.Info("group falls back", "group", group, "alive", alive, "count", rec.Count, "to", fallback)
		rec.Order = OrderDefend
		rec.Params = &DefendParams{
			Common:  p.Common,
			Pos:     []Location{fallback},
			Radius:  p.Radius,
			Advance: p.Pos,
			Morale:  p.Morale,
		}
		rec.broken = true
		m.afterMoraleFlip(rec, EventMoraleBroken, alive, fallback.Pos())
	case *DefendParams:
		if p.Morale <= 0 || alive <= moraleThreshold(p.Morale, rec.Count) {
			return
		}
		// A DEFEND set directly has nowhere to advance to.
		if len(p.Advance) == 0 && !rec.broken {
			return
		}
		var fallback *Location
		if len(p.Pos) > 0 {
			fb := p.Pos[0]
			fallback = &fb
		}
		slog.Info("group restores", "group", group, "alive", alive, "count", rec.Count)
		rec.Order = OrderAttack
		rec.Params = &AttackParams{
			Common:   p.Common,
			Pos:      p.Advance,
			Radius:   p.Radius,
			Fallback: fallback,
			Morale:   p.Morale,
		}
		var to model.Position
		if len(p.Advance) > 0 {
			to = p.Advance[0].Pos()
		}
		rec.broken = false
		m.afterMoraleFlip(rec, EventMoraleRestore, alive, to)
	default:
		slog.Debug("group order has no morale", "group", group, "order", rec.Order)
	}
}

func (m *Manager) afterMoraleFlip(rec *GroupOrder, kind EventKind, alive int, to model.Position) {
	m.sched.schedule(m.host.Now()+m.cfg.Quantum, taskEvaluate, rec.Group)
	m.record(Event{Group: rec.Group, Kind: kind, Order: rec.Order, Members: alive, Target: &to})
}
