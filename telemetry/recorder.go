// Package telemetry writes the manager's decisions to a CSV log.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

// DecisionRow is one line of decisions.csv.
type DecisionRow struct {
	Session   string `csv:"session"`
	AtMS      int64  `csv:"at_ms"`
	Group     string `csv:"group"`
	Kind      string `csv:"kind"`
	Order     string `csv:"order"`
	Members   int    `csv:"members"`
	HasTarget bool   `csv:"has_target"`
	TargetX   int    `csv:"target_x"`
	TargetY   int    `csv:"target_y"`
	Detail    string `csv:"detail"`
}

// Recorder buffers decision rows from every session and appends them to
// decisions.csv in batches. All methods are safe on a nil Recorder, which
// is what NewRecorder returns when logging is disabled.
type Recorder struct {
	mu            sync.Mutex
	file          *os.File
	rows          []DecisionRow
	flushEvery    int
	headerWritten bool
}

// NewRecorder creates dir and opens decisions.csv in it.
// Returns nil if dir is empty.
func NewRecorder(dir string, flushEvery int) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "decisions.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating decisions.csv: %w", err)
	}
	return &Recorder{file: f, flushEvery: max(flushEvery, 1)}, nil
}

// Observer returns a tactics observer that tags every row with session.
func (r *Recorder) Observer(session string) tactics.Observer {
	return sessionObserver{r: r, session: session}
}

func (r *Recorder) add(row DecisionRow) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	if len(r.rows) < r.flushEvery {
		return nil
	}
	return r.flushLocked()
}

// Flush writes every buffered row.
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.rows) == 0 {
		return nil
	}
	var err error
	if !r.headerWritten {
		err = gocsv.Marshal(r.rows, r.file)
		r.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(r.rows, r.file)
	}
	r.rows = r.rows[:0]
	if err != nil {
		return fmt.Errorf("writing decisions: %w", err)
	}
	return nil
}

// Close flushes and closes the log.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	err := r.Flush()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadDecisions loads a decisions.csv written by a Recorder.
func ReadDecisions(path string) ([]DecisionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []DecisionRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing decisions: %w", err)
	}
	return rows, nil
}

type sessionObserver struct {
	r       *Recorder
	session string
}

func (o sessionObserver) Record(ev tactics.Event) {
	row := DecisionRow{
		Session: o.session,
		AtMS:    ev.At.Milliseconds(),
		Group:   ev.Group,
		Kind:    string(ev.Kind),
		Order:   ev.Order.String(),
		Members: ev.Members,
		Detail:  ev.Detail,
	}
	if ev.Target != nil {
		row.HasTarget = true
		row.TargetX, row.TargetY = ev.Target.X, ev.Target.Y
	}
	if err := o.r.add(row); err != nil {
		slog.Warn("decision log write failed", "error", err)
	}
}
