package tactics

import (
	"container/heap"
	"time"
)

type taskKind int

const (
	taskSweep taskKind = iota
	taskEvaluate
	taskRescan
)

type task struct {
	at    time.Duration
	seq   uint64
	kind  taskKind
	group string
}

type taskQueue []task

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)   { *q = append(*q, x.(task)) }
func (q *taskQueue) Pop() any {
	old := *q
	t := old[len(old)-1]
	*q = old[:len(old)-1]
	return t
}

// Scheduler is a time-ordered queue of pending work drained once per host
// tick. Tasks due at the same time run in the order they were scheduled.
type Scheduler struct {
	q   taskQueue
	seq uint64
}

func (s *Scheduler) schedule(at time.Duration, kind taskKind, group string) {
	s.seq++
	heap.Push(&s.q, task{at: at, seq: s.seq, kind: kind, group: group})
}

// pop returns the earliest task due at or before now.
func (s *Scheduler) pop(now time.Duration) (task, bool) {
	if len(s.q) == 0 || s.q[0].at > now {
		return task{}, false
	}
	return heap.Pop(&s.q).(task), true
}

// nextEvaluation returns the earliest pending evaluation for a group.
func (s *Scheduler) nextEvaluation(group string) (time.Duration, bool) {
	var best time.Duration
	found := false
	for _, t := range s.q {
		if t.kind == taskEvaluate && t.group == group && (!found || t.at < best) {
			best, found = t.at, true
		}
	}
	return best, found
}

func (s *Scheduler) Len() int { return len(s.q) }
