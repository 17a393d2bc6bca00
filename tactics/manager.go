package tactics

import (
	"log/slog"
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// EventKind names a decision worth recording.
type EventKind string

const (
	EventOrderSet      EventKind = "order_set"
	EventOrderCleared  EventKind = "order_cleared"
	EventMoraleBroken  EventKind = "morale_broken"
	EventMoraleRestore EventKind = "morale_restored"
	EventRegroupHold   EventKind = "regroup_hold"
	EventTarget        EventKind = "target"
)

// Event describes one decision taken by the manager.
type Event struct {
	At      time.Duration
	Group   string
	Kind    EventKind
	Order   Order
	Members int
	Target  *model.Position
	Detail  string
}

// Observer receives decision events, e.g. for a CSV decision log.
type Observer interface {
	Record(ev Event)
}

// Manager owns all tactics state for one AI player: the group order
// store, the scheduler and the threat grid. It is not safe for concurrent
// use; the host's tick loop is the only caller.
type Manager struct {
	host    Host
	cfg     Config
	groups  map[string]*GroupOrder
	sched   Scheduler
	threats *ThreatGrid
	obs     Observer
	armed   bool
}

type Option func(*Manager)

// WithObserver attaches a decision observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.obs = o }
}

func NewManager(host Host, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		host:   host,
		cfg:    cfg,
		groups: make(map[string]*GroupOrder),
	}
	m.threats = newThreatGrid(host, cfg)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threats exposes the sector grid.
func (m *Manager) Threats() *ThreatGrid { return m.threats }

// Tick runs every scheduled task that is due at the host's current time.
// The first call arms the repeating sweep and threat rescan.
func (m *Manager) Tick() {
	now := m.host.Now()
	if !m.armed {
		m.armed = true
		m.sched.schedule(now, taskRescan, "")
		m.sched.schedule(now+m.cfg.Quantum, taskSweep, "")
	}
	for {
		t, ok := m.sched.pop(now)
		if !ok {
			return
		}
		switch t.kind {
		case taskSweep:
			m.sweep(now)
		case taskEvaluate:
			m.evaluate(t.group)
		case taskRescan:
			m.threats.Rescan()
			m.sched.schedule(now+max(m.cfg.RescanInterval, m.cfg.Quantum), taskRescan, "")
		}
	}
}

// sweep drops empty groups and staggers one evaluation per group across
// the next quanta, then re-arms itself after the last of them.
func (m *Manager) sweep(now time.Duration) {
	dt := m.cfg.Quantum
	for _, group := range m.Groups() {
		rec := m.groups[group]
		if len(m.host.Members(group)) == 0 && !rec.Params.common().KeepWhenEmpty {
			m.ClearGroupOrder(group)
			continue
		}
		m.checkMorale(group)
		m.sched.schedule(now+dt, taskEvaluate, group)
		dt += m.cfg.Quantum
	}
	m.sched.schedule(now+dt, taskSweep, "")
}

// Groups returns the managed group names in sorted order.
func (m *Manager) Groups() []string {
	names := make([]string, 0, len(m.groups))
	for name := range m.groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OnUnitHit records that a group member took damage. Hits that leave the
// unit badly hurt mark the surrounding sectors as poisoned.
func (m *Manager) OnUnitHit(group string, unit model.Object) {
	now := m.host.Now()
	if rec, ok := m.groups[group]; ok {
		rec.LastHit = now
		rec.hit = true
		if rec.memberHits == nil {
			rec.memberHits = make(map[int]time.Duration)
		}
		rec.memberHits[unit.ID] = now
	}
	if unit.Health < m.cfg.PoisonHealth {
		m.threats.Poison(unit.Pos())
	}
}

// OnUnitLost poisons the area a member died in and re-checks morale.
func (m *Manager) OnUnitLost(group string, at model.Position) {
	m.threats.Poison(at)
	if _, ok := m.groups[group]; ok {
		m.checkMorale(group)
	}
}

// MoveGroup sends every member not on its way to repairs to a point.
// It returns the number of units ordered.
func (m *Manager) MoveGroup(group string, to model.Position, action model.Action) int {
	if action == model.ActionNone {
		action = model.ActionScout
	}
	n := 0
	for _, u := range m.host.Members(group) {
		if u.Action == model.ActionReturnToRepair {
			continue
		}
		m.orderLoc(u, action, to)
		n++
	}
	slog.Debug("group moved", "group", group, "units", n, "x", to.X, "y", to.Y, "action", action)
	return n
}

func (m *Manager) record(ev Event) {
	if m.obs == nil {
		return
	}
	if ev.At == 0 {
		ev.At = m.host.Now()
	}
	m.obs.Record(ev)
}
