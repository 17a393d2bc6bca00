package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/vimy-tactics/directive"
	"github.com/nstehr/vimy/vimy-tactics/ipc"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/tactics"
	"github.com/nstehr/vimy/vimy-tactics/world"
)

var errNoSession = errors.New("no hello received yet")

// Agent owns the tactics state for a single player session.
type Agent struct {
	Conn    *ipc.Connection
	Player  int
	Faction string

	cfg     tactics.Config
	engine  *directive.Engine
	obs     tactics.Observer
	host    *world.Host
	manager *tactics.Manager
	prev    *stateSnapshot
}

// New prepares an agent. engine and obs may be nil.
func New(conn *ipc.Connection, cfg tactics.Config, engine *directive.Engine, obs tactics.Observer) *Agent {
	return &Agent{Conn: conn, cfg: cfg, engine: engine, obs: obs}
}

// Manager returns the session's tactics manager, nil before the hello.
func (a *Agent) Manager() *tactics.Manager { return a.manager }

// HandleHello starts a fresh session so the mod knows the bridge is ready.
// A repeated hello resets all group state.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Player = hello.Player
	a.Faction = hello.Faction
	if a.Conn != nil {
		a.Conn.Player = hello.Player
	}

	a.host = world.New(hello.Seed)
	a.host.SetSelfRepair(hello.Player, hello.SelfRepair)
	if hello.Terrain != nil {
		grid, err := hello.Terrain.ToGrid()
		if err != nil {
			slog.Warn("ignoring terrain grid", "error", err)
		} else {
			a.host.SetTerrain(grid)
		}
	}

	var opts []tactics.Option
	if a.obs != nil {
		opts = append(opts, tactics.WithObserver(a.obs))
	}
	a.manager = tactics.NewManager(a.host, a.cfg, opts...)
	a.prev = nil

	slog.Info("player identified",
		"player", a.Player,
		"enemy", hello.Enemy,
		"faction", a.Faction,
		"selfRepair", hello.SelfRepair,
		"terrain", hello.Terrain != nil,
	)
	return ack()
}

// HandleWorldState runs one tick: detect hits and losses, fire directives,
// advance the manager and reply with whatever orders came out of it.
func (a *Agent) HandleWorldState(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.manager == nil {
		return nil, errNoSession
	}
	var ws model.WorldState
	if err := json.Unmarshal(env.Data, &ws); err != nil {
		return nil, fmt.Errorf("unmarshal world state: %w", err)
	}
	a.host.Update(ws)

	groups := a.manager.Groups()
	for _, ev := range detectEvents(ws, groups, a.prev) {
		switch ev.Kind {
		case EventUnitHit:
			a.manager.OnUnitHit(ev.Group, ev.Unit)
		case EventUnitLost:
			slog.Debug("group member lost", "group", ev.Group, "unit", ev.Unit.ID)
			a.manager.OnUnitLost(ev.Group, ev.Unit.Pos())
		}
	}

	if a.engine != nil {
		if n := a.engine.Evaluate(a.host, ws.Tick, a.manager); n > 0 {
			slog.Debug("directives fired", "tick", ws.Tick, "count", n)
		}
	}
	a.manager.Tick()

	snap := takeSnapshot(ws, a.manager.Groups(), a.host.GroupIDs)
	a.prev = &snap

	cmds := a.host.Drain()
	slog.Debug("world state processed",
		"tick", ws.Tick,
		"objects", len(ws.Objects),
		"groups", len(snap.groups),
		"commands", len(cmds),
	)
	if len(cmds) == 0 {
		return ack()
	}
	out, err := ipc.NewEnvelope(ipc.TypeOrders, ipc.OrdersMessage{Tick: ws.Tick, Commands: cmds})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// HandleManageGroup puts a group under management, replacing any order
// it already had.
func (a *Agent) HandleManageGroup(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.manager == nil {
		return nil, errNoSession
	}
	var msg ipc.ManageGroupMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal manage_group: %w", err)
	}
	order, params, err := msg.Order.Build()
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", msg.Group, err)
	}
	if err := a.manager.SetGroupOrder(msg.Group, order, params); err != nil {
		return nil, err
	}
	return ack()
}

func (a *Agent) HandleStopManaging(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.manager == nil {
		return nil, errNoSession
	}
	var msg ipc.StopManagingMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal stop_managing: %w", err)
	}
	a.manager.ClearGroupOrder(msg.Group)
	return ack()
}

func ack() (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &env, nil
}
