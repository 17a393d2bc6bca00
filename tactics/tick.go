package tactics

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// evaluate runs one decision pass for a group: repairs, regrouping,
// target resolution and per-member orders. Each stage may end the pass.
func (m *Manager) evaluate(group string) {
	rec, ok := m.groups[group]
	if !ok {
		return
	}
	members := m.host.Members(group)
	if len(members) == 0 {
		return
	}
	now := m.host.Now()

	healthy := m.repairPass(rec, members, now)
	if rec.Params.common().Regroup && len(healthy) > 0 {
		var proceed bool
		healthy, proceed = m.regroupPass(rec, healthy, len(members), now)
		if !proceed {
			return
		}
	}

	var target *model.Position
	switch p := rec.Params.(type) {
	case *AttackParams, *DefendParams, *CompromiseParams:
		t, ok := m.pickTarget(rec, members)
		if !ok {
			return
		}
		target = &t
	case *PatrolParams:
		if t, ok := m.advancePatrol(rec, p, now); ok {
			target = &t
		}
	case *FollowParams:
		commander, ok := m.host.Object(p.Commander)
		if !ok {
			slog.Info("commander is gone, group takes over its order", "group", group, "commander", p.Commander, "order", p.SubOrder)
			if err := m.SetGroupOrder(group, p.SubOrder, p.SubParams); err != nil {
				slog.Warn("failed to hand over commander order", "group", group, "error", err)
			}
			return
		}
		for _, u := range healthy {
			if m.rearming(u) {
				continue
			}
			if u.Unit != model.UnitCommander && u.Action != model.ActionCommanderSupport {
				m.orderObj(u, model.ActionCommanderSupport, commander)
			}
		}
		return
	default:
		slog.Warn("unknown group order", "group", group, "order", rec.Order)
		return
	}

	center, _ := centroid(members)
	for _, u := range healthy {
		m.dispatchMember(rec, u, target, center)
	}
}

// repairPass sends damaged members for repairs and returns the ones fit
// for combat this pass.
func (m *Manager) repairPass(rec *GroupOrder, members []model.Object, now time.Duration) []model.Object {
	rec.pruneHits(members)
	player := members[0].Player
	hasFacility := m.host.HasStructure(player, model.StructRepairFacility)
	selfRepair := m.host.SelfRepairs(player)
	if !hasFacility && !selfRepair {
		return slices.DeleteFunc(slices.Clone(members), func(u model.Object) bool {
			return u.Action == model.ActionReturnToRepair
		})
	}
	configured := rec.Params.common().Repair
	threshold := configured
	if threshold <= 0 {
		threshold = m.cfg.DefaultRepair
	}

	healthy := make([]model.Object, 0, len(members))
	for _, u := range members {
		if u.Action == model.ActionReturnToRepair {
			continue
		}
		switch {
		case u.IsAirborne():
		case hasFacility:
			if configured > 0 && u.Health < configured {
				m.orderUnit(u, model.ActionReturnToRepair)
				continue
			}
		case u.Health < threshold:
			if u.Action == model.ActionMove && rec.memberHitWithin(u.ID, now, m.cfg.RunAwayWindow) {
				continue
			}
			if to, ok := m.threats.FindSafeRetreat(u, m.cfg.RetreatRadius); ok {
				m.orderLoc(u, model.ActionMove, to)
			}
			continue
		}
		healthy = append(healthy, u)
	}
	return healthy
}

// regroupPass pulls stragglers toward the largest cluster. It returns the
// cluster's members, or false after ordering them to stand down when the
// cluster is too small to fight.
func (m *Manager) regroupPass(rec *GroupOrder, healthy []model.Object, size int, now time.Duration) ([]model.Object, bool) {
	clusters, largest := findClusters(healthy, m.cfg.ClusterSize)
	main := clusters[largest]
	for i, c := range clusters {
		if i == largest {
			continue
		}
		for _, u := range c.Members {
			if u.Action != model.ActionReturnToRepair {
				m.orderLoc(u, model.ActionMove, main.Center())
			}
		}
	}

	need := float64(rec.Count)
	if rec.Count < 0 {
		need = float64(size) * m.cfg.RegroupRatio
	}
	if float64(len(main.Members)) >= need {
		return main.Members, true
	}

	fallBack := rec.hitWithin(now, m.cfg.RegroupFallbackWindow) &&
		m.host.HasStructure(main.Members[0].Player, model.StructHQ)
	for _, u := range main.Members {
		switch {
		case u.Action == model.ActionReturnToRepair:
		case fallBack:
			if u.Action != model.ActionReturnToBase {
				m.orderUnit(u, model.ActionReturnToBase)
			}
		case u.Action != model.ActionHold:
			m.orderUnit(u, model.ActionHold)
		}
	}
	slog.Debug("group too scattered, standing down", "group", rec.Group, "cluster", len(main.Members), "need", need)
	m.record(Event{Group: rec.Group, Kind: EventRegroupHold, Order: rec.Order, Members: size})
	return nil, false
}

// advancePatrol returns the current waypoint, moving on to a different
// random one once the interval has elapsed.
func (m *Manager) advancePatrol(rec *GroupOrder, p *PatrolParams, now time.Duration) (model.Position, bool) {
	if len(p.Pos) == 0 {
		slog.Debug("patrol has no waypoints", "group", rec.Group)
		return model.Position{}, false
	}
	interval := p.Interval
	if interval <= 0 {
		interval = m.cfg.PatrolInterval
	}
	switch {
	case !rec.patrolling:
		rec.patrolling = true
		rec.PatrolIndex = 0
		rec.LastMove = now
	case now-rec.LastMove > interval && len(p.Pos) > 1:
		next := m.host.Rand(len(p.Pos) - 1)
		if next >= rec.PatrolIndex {
			next++
		}
		rec.PatrolIndex = next
		rec.LastMove = now
	}
	if rec.PatrolIndex >= len(p.Pos) {
		rec.PatrolIndex = 0
	}
	return p.Pos[rec.PatrolIndex].Pos(), true
}

// rearming reports whether a VTOL should sit this pass out, sending it
// to a pad when one exists.
func (m *Manager) rearming(u model.Object) bool {
	if !u.IsAirborne() {
		return false
	}
	busy := u.Action == model.ActionRearm
	if u.Ammo >= 1 && !(busy && (u.Ammo < 100 || u.Health < 100)) {
		return false
	}
	if !busy && m.host.HasStructure(u.Player, model.StructRearmPad) {
		m.orderUnit(u, model.ActionRearm)
	}
	return true
}

func (m *Manager) dispatchMember(rec *GroupOrder, u model.Object, target *model.Position, center model.Position) {
	if u.Player == m.host.EnemyPlayer() {
		slog.Warn("controlling a unit owned by the enemy player", "group", rec.Group, "unit", u.ID)
	}
	if m.rearming(u) {
		return
	}
	if p, ok := rec.Params.(*DefendParams); ok {
		home := p.Pos[0].Pos()
		if model.Dist(u.Pos(), home) > float64(scanRadius(p.Radius, m.cfg.DefenseRadius)) {
			m.orderLoc(u, model.ActionMove, home)
			return
		}
	}
	if target == nil || model.Dist(u.Pos(), *target) < float64(m.cfg.CloseRadius) {
		return
	}

	artillery := u.ArtilleryLike()
	air := u.IsAirborne()
	nearby := m.host.EnemiesInRange(u.Pos(), m.scanRange(rec.Order, u), rec.Order == OrderCompromise)
	var pick *model.Object
	if len(nearby) > 0 {
		sortObjects(nearby, center)
		pick = &nearby[0]
	}
	if pick != nil && !air && !artillery && abs(u.Z-pick.Z) > m.cfg.CloseZ {
		pick = nil
	}
	if pick != nil && pick.IsAirborne() && (air || !u.CanHitAir) {
		pick = nil
	}

	defending := rec.Order == OrderDefend
	switch {
	case !defending && pick != nil:
		if u.Unit == model.UnitSensor {
			m.orderObj(u, model.ActionObserve, *pick)
		} else {
			m.orderObj(u, model.ActionAttack, *pick)
		}
	case defending || !(artillery || air):
		m.orderLoc(u, model.ActionMove, *target)
	default:
		m.orderLoc(u, model.ActionScout, *target)
	}
}

// scanRange is how far a member looks for opportunistic targets.
func (m *Manager) scanRange(o Order, u model.Object) int {
	rng := m.cfg.TrackingRadius
	switch o {
	case OrderPatrol:
		rng = m.cfg.PatrolScanRange
	case OrderCompromise:
		rng = m.cfg.CompromiseScanRange
	}
	if u.Unit == model.UnitSensor {
		rng = int(math.Floor(float64(rng) * m.cfg.SensorRangeFactor))
	}
	return rng
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
