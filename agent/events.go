package agent

import (
	"github.com/nstehr/vimy/vimy-tactics/model"
)

// EventKind identifies what happened to a managed group member between
// two consecutive snapshots.
type EventKind string

const (
	EventUnitHit  EventKind = "unit_hit"
	EventUnitLost EventKind = "unit_lost"
)

// Event is a member-level change detected by diffing snapshots. For hits
// Unit is the current state; for losses it is the last state seen.
type Event struct {
	Kind  EventKind
	Group string
	Unit  model.Object
}

// stateSnapshot captures the diffable fields of one tick: the player's own
// objects and the rosters of the groups under management.
type stateSnapshot struct {
	tick    int
	objects map[int]model.Object
	groups  map[string][]int
}

// ownObjects indexes the player's objects in a snapshot by id.
func ownObjects(ws model.WorldState) map[int]model.Object {
	objs := make(map[int]model.Object)
	for _, o := range ws.Objects {
		if o.Player == ws.Player {
			objs[o.ID] = o
		}
	}
	return objs
}

// takeSnapshot records the rosters of the given groups so the next tick can
// tell hits and losses apart from units simply changing groups.
func takeSnapshot(ws model.WorldState, groups []string, roster func(group string) []int) stateSnapshot {
	snap := stateSnapshot{
		tick:    ws.Tick,
		objects: ownObjects(ws),
		groups:  make(map[string][]int, len(groups)),
	}
	for _, g := range groups {
		ids := roster(g)
		kept := make([]int, 0, len(ids))
		for _, id := range ids {
			if _, ok := snap.objects[id]; ok {
				kept = append(kept, id)
			}
		}
		snap.groups[g] = kept
	}
	return snap
}

// detectEvents compares the current world against the previous snapshot.
// A member that lost health was hit; a member that is gone from the world
// entirely was lost. Groups are visited in the order they were recorded.
func detectEvents(ws model.WorldState, groups []string, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	cur := ownObjects(ws)

	var events []Event
	for _, g := range groups {
		for _, id := range prev.groups[g] {
			before := prev.objects[id]
			now, alive := cur[id]
			switch {
			case !alive:
				events = append(events, Event{Kind: EventUnitLost, Group: g, Unit: before})
			case now.Health < before.Health:
				events = append(events, Event{Kind: EventUnitHit, Group: g, Unit: now})
			}
		}
	}
	return events
}
