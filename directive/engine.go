package directive

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

// Engine evaluates directives against each snapshot. A directive fires on
// the evaluation where its condition turns true, not on every evaluation
// it stays true.
type Engine struct {
	directives []*Directive
	fired      map[string]int
	holding    map[string]bool // condition result from the last evaluation
}

// NewEngine compiles all directive conditions into expr bytecode and sorts
// by priority.
func NewEngine(directives []*Directive) (*Engine, error) {
	seen := make(map[string]bool)
	for _, d := range directives {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate directive %q", d.Name)
		}
		seen[d.Name] = true
		prog, err := expr.Compile(d.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile directive %q: %w", d.Name, err)
		}
		d.program = prog
	}
	sort.SliceStable(directives, func(i, j int) bool {
		return directives[i].Priority > directives[j].Priority
	})
	return &Engine{
		directives: directives,
		fired:      make(map[string]int),
		holding:    make(map[string]bool),
	}, nil
}

// Fork returns an engine over the same compiled directives with no fired
// or holding state, one per player session.
func (e *Engine) Fork() *Engine {
	return &Engine{
		directives: e.directives,
		fired:      make(map[string]int),
		holding:    make(map[string]bool),
	}
}

// Len returns the number of loaded directives.
func (e *Engine) Len() int { return len(e.directives) }

// Evaluate runs every directive once and applies those that fire. It
// returns how many fired.
func (e *Engine) Evaluate(world World, tick int, mgr *tactics.Manager) int {
	env := Env{world: world, manager: mgr, tick: tick, fired: e.fired}
	blocked := make(map[string]bool) // group → exclusive directive already fired

	n := 0
	for _, d := range e.directives {
		result, err := vm.Run(d.program, env)
		if err != nil {
			slog.Warn("directive condition error", "directive", d.Name, "error", err)
			continue
		}
		if match, _ := result.(bool); !match {
			e.holding[d.Name] = false
			continue
		}
		if e.holding[d.Name] || (!d.Repeat && e.fired[d.Name] > 0) {
			continue
		}
		if blocked[d.Group] {
			continue // retried on the next evaluation
		}

		e.holding[d.Name] = true
		e.apply(d, mgr)
		e.fired[d.Name]++
		n++
		if d.Exclusive {
			blocked[d.Group] = true
		}
	}
	return n
}

func (e *Engine) apply(d *Directive, mgr *tactics.Manager) {
	if d.Clear {
		slog.Info("directive fired", "directive", d.Name, "group", d.Group, "action", "clear")
		mgr.ClearGroupOrder(d.Group)
		return
	}
	order, params, err := d.Order.Build()
	if err != nil {
		slog.Error("directive order invalid", "directive", d.Name, "error", err)
		return
	}
	slog.Info("directive fired", "directive", d.Name, "group", d.Group, "order", order)
	if err := mgr.SetGroupOrder(d.Group, order, params); err != nil {
		slog.Error("directive order rejected", "directive", d.Name, "group", d.Group, "error", err)
	}
}
