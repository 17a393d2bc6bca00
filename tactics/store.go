package tactics

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// GroupOrder is the managed state of one group.
type GroupOrder struct {
	Group  string
	Order  Order
	Params Params
	// Target is the last resolved engagement point.
	Target *model.Position
	// Count is the size baseline for morale and regroup math.
	Count int

	LastHit     time.Duration
	LastMove    time.Duration
	PatrolIndex int

	hit        bool
	patrolling bool
	memberHits map[int]time.Duration
	escort     string // commander group created by a FOLLOW order
	broken     bool   // DEFEND came from an ATTACK losing its morale
}

func (g *GroupOrder) hitWithin(now, window time.Duration) bool {
	return g.hit && now-g.LastHit < window
}

func (g *GroupOrder) memberHitWithin(unit int, now, window time.Duration) bool {
	at, ok := g.memberHits[unit]
	return ok && now-at < window
}

// pruneHits forgets hit times of units no longer in the group.
func (g *GroupOrder) pruneHits(members []model.Object) {
	for id := range g.memberHits {
		if !slices.ContainsFunc(members, func(u model.Object) bool { return u.ID == id }) {
			delete(g.memberHits, id)
		}
	}
}

// SetGroupOrder starts managing a group, replacing any previous order.
// Labels in the position lists are resolved now so ticks stay cheap. The
// new order is evaluated one quantum later rather than waiting for the
// group's slot in the sweep.
func (m *Manager) SetGroupOrder(group string, order Order, params Params) error {
	if params == nil {
		p, err := emptyParams(order)
		if err != nil {
			return err
		}
		params = p
	}
	if params.Order() != order {
		return fmt.Errorf("%w: %v given %T", ErrParamsMismatch, order, params)
	}
	params = cloneParams(params)
	if err := m.resolve(params); err != nil {
		return fmt.Errorf("group %s: %w", group, err)
	}

	var commander model.Object
	var subParams Params
	if fp, ok := params.(*FollowParams); ok {
		sp := fp.SubParams
		if sp == nil {
			p, err := emptyParams(fp.SubOrder)
			if err != nil {
				return fmt.Errorf("group %s: commander order: %w", group, err)
			}
			sp = p
		} else if sp.Order() != fp.SubOrder {
			return fmt.Errorf("group %s: commander order: %w", group, ErrParamsMismatch)
		}
		subParams = cloneParams(sp)
		if err := m.resolve(subParams); err != nil {
			return fmt.Errorf("group %s: commander order: %w", group, err)
		}
		c, found := m.host.Object(fp.Commander)
		if !found {
			return fmt.Errorf("group %s: %w: %q", group, ErrUnknownCommander, fp.Commander)
		}
		commander = c
	}

	members := m.host.Members(group)
	count := len(members)
	if c := params.common().Count; c != nil {
		count = *c
	}

	prev, hadPrev := m.groups[group]
	rec := &GroupOrder{
		Group:  group,
		Order:  order,
		Params: params,
		Count:  count,
	}
	m.groups[group] = rec

	if fp, ok := params.(*FollowParams); ok {
		sub := "commander-" + uuid.NewString()
		m.host.AssignGroup(sub, commander.ID)
		if err := m.SetGroupOrder(sub, fp.SubOrder, subParams); err != nil {
			if hadPrev {
				m.groups[group] = prev
			} else {
				delete(m.groups, group)
			}
			return fmt.Errorf("commander order for %s: %w", group, err)
		}
		rec.escort = sub
	}

	if hadPrev {
		if prev.Order != order {
			slog.Info("group receives a new order", "group", group, "from", prev.Order, "to", order)
		}
		m.releaseEscort(prev)
	}
	m.record(Event{Group: group, Kind: EventOrderSet, Order: order, Members: len(members)})
	m.sched.schedule(m.host.Now()+m.cfg.Quantum, taskEvaluate, group)
	return nil
}

// releaseEscort stops managing the commander group a FOLLOW order created.
func (m *Manager) releaseEscort(rec *GroupOrder) {
	if rec.escort == "" {
		return
	}
	if _, ok := m.groups[rec.escort]; ok {
		m.ClearGroupOrder(rec.escort)
	}
}

// ClearGroupOrder stops managing a group.
func (m *Manager) ClearGroupOrder(group string) {
	rec, ok := m.groups[group]
	if !ok {
		slog.Debug("not managing group anyway", "group", group)
		return
	}
	slog.Info("cease managing group", "group", group)
	delete(m.groups, group)
	m.releaseEscort(rec)
	m.record(Event{Group: group, Kind: EventOrderCleared, Order: rec.Order})
}

// GroupOrder returns a copy of a group's record.
func (m *Manager) GroupOrder(group string) (GroupOrder, bool) {
	rec, ok := m.groups[group]
	if !ok {
		return GroupOrder{}, false
	}
	cp := *rec
	cp.Params = cloneParams(rec.Params)
	if rec.Target != nil {
		t := *rec.Target
		cp.Target = &t
	}
	cp.memberHits = nil
	return cp, true
}

// resolve fills in the coordinates of every labeled location.
func (m *Manager) resolve(p Params) error {
	if err := m.resolveList(positions(p)); err != nil {
		return err
	}
	switch v := p.(type) {
	case *AttackParams:
		if v.Fallback != nil {
			fb := []Location{*v.Fallback}
			if err := m.resolveList(fb); err != nil {
				return err
			}
			*v.Fallback = fb[0]
		}
	case *DefendParams:
		return m.resolveList(v.Advance)
	}
	return nil
}

func (m *Manager) resolveList(list []Location) error {
	for i := range list {
		if list[i].Label == "" {
			continue
		}
		pos, ok := m.host.Position(list[i].Label)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, list[i].Label)
		}
		list[i].X, list[i].Y = pos.X, pos.Y
	}
	return nil
}
