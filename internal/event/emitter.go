package event

import (
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dshills/asteronote/internal/logging"
)

// Handler receives the arguments passed to Emit.
type Handler func(args ...any) error

// AnyHandler receives every emission after the topic's own handlers.
type AnyHandler func(topic string, args ...any) error

// Subscription identifies one registration made with On, Once or OnAny.
// The zero value is not a valid subscription.
type Subscription struct {
	id    uint64
	topic string
	any   bool
}

// ID returns the subscription's numeric ID.
func (s Subscription) ID() uint64 { return s.id }

// Topic returns the subscribed topic, or "" for OnAny subscriptions.
func (s Subscription) Topic() string { return s.topic }

// Valid reports whether s was returned by a successful subscribe call.
func (s Subscription) Valid() bool { return s.id != 0 }

type listener struct {
	id    uint64
	topic string
	fn    Handler
	anyFn AnyHandler
	once  bool
	fired atomic.Bool
}

// Stats is a point-in-time view of emitter counters.
type Stats struct {
	Emitted   uint64
	Delivered uint64
	Failed    uint64
	Panicked  uint64
	Topics    int
	Listeners int
}

// Emitter is a synchronous topic-based publish/subscribe bus.
// It is safe for concurrent use; handlers are always called without the
// emitter's lock held.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]*listener
	anys      []*listener
	nextID    uint64

	logger  *logging.Logger
	onError func(error)

	emitted   atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used to report handler failures.
func WithLogger(l *logging.Logger) Option {
	return func(e *Emitter) {
		e.logger = l
	}
}

// WithErrorHandler sets a hook called with every HandlerError or PanicError.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Emitter) {
		e.onError = fn
	}
}

// New creates an emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		listeners: make(map[string][]*listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// On appends fn to topic's handler list. The same function may be
// subscribed more than once; each call yields a distinct Subscription.
func (e *Emitter) On(topic string, fn Handler) (Subscription, error) {
	return e.add(topic, fn, false)
}

// Once subscribes fn for a single delivery, after which it is removed.
func (e *Emitter) Once(topic string, fn Handler) (Subscription, error) {
	return e.add(topic, fn, true)
}

func (e *Emitter) add(topic string, fn Handler, once bool) (Subscription, error) {
	if topic == "" {
		return Subscription{}, ErrInvalidTopic
	}
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	l := &listener{id: e.nextID, topic: topic, fn: fn, once: once}
	e.listeners[topic] = append(e.listeners[topic], l)
	return Subscription{id: l.id, topic: topic}, nil
}

// OnAny subscribes fn to every topic. Catch-all handlers run after the
// topic's own handlers.
func (e *Emitter) OnAny(fn AnyHandler) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	l := &listener{id: e.nextID, anyFn: fn}
	e.anys = append(e.anys, l)
	return Subscription{id: l.id, any: true}, nil
}

// Off removes exactly the subscription sub. It reports whether the
// subscription was still registered.
func (e *Emitter) Off(sub Subscription) bool {
	if !sub.Valid() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if sub.any {
		var ok bool
		e.anys, ok = without(e.anys, sub.id)
		return ok
	}

	list, ok := without(e.listeners[sub.topic], sub.id)
	if !ok {
		return false
	}
	if len(list) == 0 {
		delete(e.listeners, sub.topic)
	} else {
		e.listeners[sub.topic] = list
	}
	return true
}

// OffAll removes every handler for topic and returns how many were removed.
// It is a no-op for a topic with no subscribers.
func (e *Emitter) OffAll(topic string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.listeners[topic])
	delete(e.listeners, topic)
	return n
}

// without returns list minus the listener with id. The result is a new
// slice so snapshots held by in-flight emissions are never modified.
func without(list []*listener, id uint64) ([]*listener, bool) {
	for i, l := range list {
		if l.id != id {
			continue
		}
		out := make([]*listener, 0, len(list)-1)
		out = append(out, list[:i]...)
		out = append(out, list[i+1:]...)
		return out, true
	}
	return list, false
}

// Emit synchronously calls a snapshot of topic's handlers in subscription
// order, followed by the catch-all handlers. It reports whether any topic
// handler existed.
func (e *Emitter) Emit(topic string, args ...any) bool {
	e.mu.RLock()
	handlers := append([]*listener(nil), e.listeners[topic]...)
	anys := append([]*listener(nil), e.anys...)
	e.mu.RUnlock()

	e.emitted.Add(1)
	e.deliver(topic, handlers, args)
	for _, l := range anys {
		e.invoke(topic, l, args)
	}
	return len(handlers) > 0
}

func (e *Emitter) deliver(topic string, handlers []*listener, args []any) {
	for _, l := range handlers {
		if l.once {
			if !l.fired.CompareAndSwap(false, true) {
				continue
			}
			e.Off(Subscription{id: l.id, topic: l.topic})
		}
		e.invoke(topic, l, args)
	}
}

// invoke calls one handler, converting returned errors and panics into
// HandlerError and PanicError values that are logged and counted.
func (e *Emitter) invoke(topic string, l *listener, args []any) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{
					SubscriptionID: l.id,
					Topic:          topic,
					Value:          r,
					Stack:          string(debug.Stack()),
				}
			}
		}()
		var herr error
		if l.anyFn != nil {
			herr = l.anyFn(topic, args...)
		} else {
			herr = l.fn(args...)
		}
		if herr != nil {
			err = &HandlerError{SubscriptionID: l.id, Topic: topic, Err: herr}
		}
	}()

	if err == nil {
		e.delivered.Add(1)
		return
	}
	e.report(err)
}

func (e *Emitter) report(err error) {
	if pe, ok := err.(*PanicError); ok {
		e.panicked.Add(1)
		e.logger.Error("event handler panicked", err, "topic", pe.Topic, "subscription", pe.SubscriptionID)
	} else {
		e.failed.Add(1)
		e.logger.Error("event handler failed", err)
	}

	if e.onError != nil {
		func() {
			defer func() { _ = recover() }()
			e.onError(err)
		}()
	}
}

// ListenerCount returns the number of handlers subscribed to topic.
func (e *Emitter) ListenerCount(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[topic])
}

// HasListeners reports whether topic has at least one handler.
func (e *Emitter) HasListeners(topic string) bool {
	return e.ListenerCount(topic) > 0
}

// EventNames returns the topics that currently have handlers, sorted.
func (e *Emitter) EventNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveAllListeners clears every topic's handlers and every catch-all handler.
func (e *Emitter) RemoveAllListeners() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners = make(map[string][]*listener)
	e.anys = nil
}

// Snapshot freezes the handlers currently subscribed to topic. The returned
// Frozen delivers to exactly those handlers even after the emitter has been
// cleared, which lets an owner announce its own teardown last.
func (e *Emitter) Snapshot(topic string) *Frozen {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &Frozen{
		e:        e,
		topic:    topic,
		handlers: append([]*listener(nil), e.listeners[topic]...),
		anys:     append([]*listener(nil), e.anys...),
	}
}

// Frozen is a handler list captured by Snapshot.
type Frozen struct {
	e        *Emitter
	topic    string
	handlers []*listener
	anys     []*listener
}

// Len returns the number of captured topic handlers.
func (f *Frozen) Len() int { return len(f.handlers) }

// Emit delivers args to the captured handlers with the same isolation rules
// as Emitter.Emit.
func (f *Frozen) Emit(args ...any) bool {
	f.e.emitted.Add(1)
	f.e.deliver(f.topic, f.handlers, args)
	for _, l := range f.anys {
		f.e.invoke(f.topic, l, args)
	}
	return len(f.handlers) > 0
}

// Stats returns the emitter's counters.
func (e *Emitter) Stats() Stats {
	e.mu.RLock()
	topics := len(e.listeners)
	count := len(e.anys)
	for _, list := range e.listeners {
		count += len(list)
	}
	e.mu.RUnlock()

	return Stats{
		Emitted:   e.emitted.Load(),
		Delivered: e.delivered.Load(),
		Failed:    e.failed.Load(),
		Panicked:  e.panicked.Load(),
		Topics:    topics,
		Listeners: count,
	}
}
