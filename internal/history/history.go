package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/logging"
	"github.com/dshills/asteronote/internal/schedule"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrClosed        = errors.New("history closed")
)

const (
	// DefaultMaxSize is the undo capacity used when none is configured.
	DefaultMaxSize = 100
	// PasteDelay defers paste-triggered recording until the paste settles.
	PasteDelay = 10 * time.Millisecond
	// SuppressWindow is how long recording stays off after Undo or Redo.
	SuppressWindow = 50 * time.Millisecond
)

// Source is the content a History snapshots.
// Content may be called from a timer goroutine.
type Source interface {
	Content() string
	SetContent(html string) error
}

// Size reports the depth of both stacks.
type Size struct {
	Undo int
	Redo int
}

// History manages undo/redo snapshots for one editor.
type History struct {
	mu sync.Mutex

	src    Source
	sched  *schedule.Scheduler
	logger *logging.Logger

	undoStack []string
	redoStack []string
	maxSize   int

	recording   bool
	lastContent string
	resume      *schedule.Task

	bus    *event.Emitter
	subs   []event.Subscription
	closed bool
}

// Option configures a History.
type Option func(*History)

// WithMaxSize sets the undo capacity. Non-positive values keep the default.
func WithMaxSize(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxSize = n
		}
	}
}

// WithClock sets the clock deferred recording runs on.
func WithClock(clk clock.Clock) Option {
	return func(h *History) {
		h.sched = schedule.New(clk)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *History) {
		h.logger = l
	}
}

// New creates a History over src, seeded with its current content. When
// bus is non-nil the History subscribes to the keyup, paste and change
// topics.
func New(src Source, bus *event.Emitter, opts ...Option) *History {
	h := &History{
		src:       src,
		maxSize:   DefaultMaxSize,
		recording: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sched == nil {
		h.sched = schedule.New(nil)
	}
	h.lastContent = src.Content()

	if bus != nil {
		h.attach(bus)
	}
	return h
}

func (h *History) attach(bus *event.Emitter) {
	record := func(...any) error {
		if h.IsRecording() {
			h.RecordIfChanged()
		}
		return nil
	}
	paste := func(...any) error {
		if h.IsRecording() {
			h.sched.After(PasteDelay, func() { h.RecordIfChanged() })
		}
		return nil
	}

	h.bus = bus
	for _, s := range []struct {
		topic string
		fn    event.Handler
	}{
		{event.TopicKeyup, record},
		{event.TopicPaste, paste},
		{event.TopicChange, record},
	} {
		sub, err := bus.On(s.topic, s.fn)
		if err != nil {
			h.logger.Error("subscribe history", err, "topic", s.topic)
			continue
		}
		h.subs = append(h.subs, sub)
	}
}

// RecordIfChanged records the last seen content when the current content
// differs from it. It reports whether an entry was recorded.
func (h *History) RecordIfChanged() bool {
	current := h.src.Content()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || current == h.lastContent {
		return false
	}
	h.pushLocked(h.lastContent)
	h.lastContent = current
	return true
}

// Record pushes content onto the undo stack as a checkpoint, evicting the
// oldest entry at capacity. Recording always clears the redo stack.
func (h *History) Record(content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.pushLocked(content)
}

// Checkpoint records the current content before a mutation that will not
// pass through the bus triggers.
func (h *History) Checkpoint() {
	h.Record(h.src.Content())
}

// Sync makes the current content the baseline for the next comparison
// without recording anything.
func (h *History) Sync() {
	current := h.src.Content()
	h.mu.Lock()
	h.lastContent = current
	h.mu.Unlock()
}

func (h *History) pushLocked(content string) {
	if len(h.undoStack) >= h.maxSize {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxSize+1:]
	}
	h.undoStack = append(h.undoStack, content)
	h.redoStack = nil
}

// Undo restores the previous snapshot.
func (h *History) Undo() error {
	return h.swap(&h.undoStack, &h.redoStack, ErrNothingToUndo)
}

// Redo reapplies the last undone snapshot.
func (h *History) Redo() error {
	return h.swap(&h.redoStack, &h.undoStack, ErrNothingToRedo)
}

// swap pops from one stack, pushes the current content onto the other and
// applies the popped content with recording suspended. The lock is released
// while the source is written so bus handlers fired by the write can query
// the History.
func (h *History) swap(from, to *[]string, empty error) error {
	current := h.src.Content()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	if len(*from) == 0 {
		h.mu.Unlock()
		return empty
	}
	target := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	*to = append(*to, current)
	prevLast := h.lastContent
	h.lastContent = target
	h.suspendLocked()
	h.mu.Unlock()

	if err := h.src.SetContent(target); err != nil {
		h.mu.Lock()
		*to = (*to)[:len(*to)-1]
		*from = append(*from, target)
		h.lastContent = prevLast
		h.mu.Unlock()
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// suspendLocked turns recording off and schedules it back on after
// SuppressWindow. A pending resume is replaced.
func (h *History) suspendLocked() {
	h.recording = false
	h.resume.Cancel()
	h.resume = h.sched.After(SuppressWindow, func() {
		h.mu.Lock()
		h.recording = true
		h.resume = nil
		h.mu.Unlock()
	})
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// IsRecording reports whether bus triggers currently record.
func (h *History) IsRecording() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recording && !h.closed
}

// Size returns the depth of both stacks.
func (h *History) Size() Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Size{Undo: len(h.undoStack), Redo: len(h.redoStack)}
}

// MaxSize returns the undo capacity.
func (h *History) MaxSize() int {
	return h.maxSize
}

// Clear empties both stacks and rebases on the current content.
func (h *History) Clear() {
	current := h.src.Content()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.lastContent = current
}

// Close unsubscribes from the bus and cancels pending deferred work.
// Close is idempotent.
func (h *History) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	for _, sub := range subs {
		h.bus.Off(sub)
	}
	h.sched.Close()
}
