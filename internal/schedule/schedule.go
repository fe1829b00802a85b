// Package schedule provides cancellable deferred tasks tied to an owner's lifetime.
//
// Components that need "run this a little later" (paste-settling delays,
// recording suppression windows) schedule through a Scheduler instead of
// bare timers so the owner can cancel everything it started when it is torn
// down. A task that has been cancelled, or whose scheduler has been closed,
// never runs.
package schedule

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs functions after a delay on the configured clock.
type Scheduler struct {
	mu     sync.Mutex
	clock  clock.Clock
	tasks  map[uint64]*Task
	nextID uint64
	closed bool
}

// Task is a scheduled function.
type Task struct {
	id    uint64
	s     *Scheduler
	timer *clock.Timer

	mu   sync.Mutex
	done bool
}

// New creates a scheduler. A nil clock uses the wall clock.
func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clock: clk,
		tasks: make(map[uint64]*Task),
	}
}

// Clock returns the scheduler's clock.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// After schedules fn to run once after d. It returns nil if the scheduler
// has been closed.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if fn == nil {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.nextID++
	t := &Task{id: s.nextID, s: s}
	s.tasks[t.id] = t
	s.mu.Unlock()

	timer := s.clock.AfterFunc(d, func() {
		if !t.claim() {
			return
		}
		s.forget(t.id)
		if s.isClosed() {
			return
		}
		fn()
	})

	t.mu.Lock()
	t.timer = timer
	t.mu.Unlock()
	return t
}

// Cancel prevents the task from running. It reports whether the task was
// still pending.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	if !t.claim() {
		return false
	}
	t.mu.Lock()
	timer := t.timer
	t.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	t.s.forget(t.id)
	return true
}

// Done reports whether the task has run or been cancelled.
func (t *Task) Done() bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// claim marks the task done; only the first caller wins.
func (t *Task) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Pending returns the number of tasks that have neither run nor been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// CancelAll cancels every pending task and returns how many were cancelled.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	n := 0
	for _, t := range tasks {
		if t.Cancel() {
			n++
		}
	}
	return n
}

// Close cancels all pending tasks and rejects new ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.CancelAll()
}

func (s *Scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scheduler) forget(id uint64) {
	s.mu.Lock()
	delete(s.tasks, id)
	s.mu.Unlock()
}
