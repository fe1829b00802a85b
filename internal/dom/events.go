package dom

import (
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/key"
)

// Native event types dispatched by the document.
const (
	EventInput           = "input"
	EventFocus           = "focus"
	EventBlur            = "blur"
	EventKeydown         = "keydown"
	EventKeyup           = "keyup"
	EventMouseup         = "mouseup"
	EventPaste           = "paste"
	EventClick           = "click"
	EventSelectionChange = "selectionchange"
)

// Event is a native event travelling through the tree.
type Event struct {
	Type string

	// Target is the node the event was dispatched at; nil for
	// document-level events.
	Target *html.Node

	// CurrentTarget is the node whose listener is running; nil while
	// document listeners run.
	CurrentTarget *html.Node

	// Key is set for keydown and keyup.
	Key *key.Event

	// Text carries pasted or typed text.
	Text string

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// NewKeyEvent creates a keydown or keyup event for k.
func NewKeyEvent(typ string, k *key.Event) *Event {
	return &Event{Type: typ, Key: k}
}

// PreventDefault cancels the host's default action.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// Listener handles a native event.
type Listener func(ev *Event)

// ListenerID identifies a listener registration.
type ListenerID uint64

type registration struct {
	id      ListenerID
	target  *html.Node
	typ     string
	fn      Listener
	removed bool
}

// AddEventListener registers fn for events of typ at target. A nil target
// registers a document-level listener.
func (d *Document) AddEventListener(target *html.Node, typ string, fn Listener) ListenerID {
	if fn == nil {
		return 0
	}
	d.lmu.Lock()
	defer d.lmu.Unlock()

	d.nextListener++
	r := &registration{id: d.nextListener, target: target, typ: typ, fn: fn}
	d.listeners = append(d.listeners, r)
	d.byID[r.id] = r
	return r.id
}

// RemoveEventListener unregisters a listener. A listener removed while an
// event is being dispatched is not called for the rest of that dispatch.
func (d *Document) RemoveEventListener(id ListenerID) bool {
	d.lmu.Lock()
	defer d.lmu.Unlock()

	r, ok := d.byID[id]
	if !ok {
		return false
	}
	r.removed = true
	delete(d.byID, id)
	out := make([]*registration, 0, len(d.listeners)-1)
	for _, l := range d.listeners {
		if l.id != id {
			out = append(out, l)
		}
	}
	d.listeners = out
	return true
}

// ListenerCount returns the number of listeners for typ at target. An empty
// typ counts every type.
func (d *Document) ListenerCount(target *html.Node, typ string) int {
	d.lmu.Lock()
	defer d.lmu.Unlock()

	n := 0
	for _, l := range d.listeners {
		if l.target == target && (typ == "" || l.typ == typ) {
			n++
		}
	}
	return n
}

func (d *Document) listenersFor(target *html.Node, typ string) []*registration {
	d.lmu.Lock()
	defer d.lmu.Unlock()

	var out []*registration
	for _, l := range d.listeners {
		if l.target == target && l.typ == typ {
			out = append(out, l)
		}
	}
	return out
}

func (d *Document) isRemoved(r *registration) bool {
	d.lmu.Lock()
	defer d.lmu.Unlock()
	return r.removed
}

// Dispatch delivers ev at target, bubbling through target's ancestors and
// finally to document listeners. It returns false if a listener prevented
// the default action.
func (d *Document) Dispatch(target *html.Node, ev *Event) bool {
	ev.Target = target

	for n := target; n != nil; n = n.Parent {
		ev.CurrentTarget = n
		d.run(d.listenersFor(n, ev.Type), ev)
		if ev.stopped {
			return !ev.defaultPrevented
		}
	}

	ev.CurrentTarget = nil
	d.run(d.listenersFor(nil, ev.Type), ev)
	return !ev.defaultPrevented
}

func (d *Document) run(regs []*registration, ev *Event) {
	for _, r := range regs {
		if d.isRemoved(r) {
			continue
		}
		r.fn(ev)
	}
}

// Click dispatches a click event at n.
func (d *Document) Click(n *html.Node) bool {
	return d.Dispatch(n, NewEvent(EventClick))
}
