package dom

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a parsed HTML document with listeners, focus and selection.
type Document struct {
	mu      sync.RWMutex
	writing bool
	pending bool

	root *html.Node
	head *html.Node
	body *html.Node

	lmu          sync.Mutex
	listeners    []*registration
	byID         map[ListenerID]*registration
	nextListener ListenerID

	active *html.Node
	sel    *Selection
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	doc, _ := Parse("")
	return doc
}

// Parse parses a full HTML document or a body fragment.
func Parse(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	d := &Document{
		root: root,
		byID: make(map[ListenerID]*registration),
	}
	Walk(root, func(n *html.Node) bool {
		switch {
		case d.head == nil && IsElement(n, "head"):
			d.head = n
		case d.body == nil && IsElement(n, "body"):
			d.body = n
		}
		return d.body == nil
	})
	if d.body == nil {
		d.body = NewElement("body")
		root.AppendChild(d.body)
	}
	d.sel = &Selection{doc: d}
	return d, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Head returns the <head> element, if any.
func (d *Document) Head() *html.Node { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *html.Node { return d.body }

// Query returns the first element matching selector, or nil.
func (d *Document) Query(selector string) *html.Node {
	n, err := QueryIn(d.root, selector)
	if err != nil {
		return nil
	}
	return n
}

// QueryAll returns every element matching selector.
func (d *Document) QueryAll(selector string) []*html.Node {
	nodes, err := QueryAllIn(d.root, selector)
	if err != nil {
		return nil
	}
	return nodes
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if IsElement(n) && GetAttr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Attached reports whether n is part of this document's tree.
func (d *Document) Attached(n *html.Node) bool {
	return Contains(d.root, n)
}

// Render serialises the whole document.
func (d *Document) Render() string {
	return OuterHTML(d.root)
}

// Read runs fn under the document's read lock. Use it for reads made off
// the UI goroutine.
func (d *Document) Read(fn func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn()
}

// Write runs fn under the document's write lock. Selection changes made
// by fn fire a single selectionchange event after the lock is released.
// Write must not be nested, and fn must not call Read.
func (d *Document) Write(fn func() error) error {
	var fire bool
	err := func() error {
		d.mu.Lock()
		defer func() {
			d.writing = false
			fire = d.pending
			d.pending = false
			d.mu.Unlock()
		}()
		d.writing = true
		return fn()
	}()
	if fire {
		d.fireSelectionChange()
	}
	return err
}

// ActiveElement returns the focused node, or nil.
func (d *Document) ActiveElement() *html.Node { return d.active }

// HasFocus reports whether n is the focused node.
func (d *Document) HasFocus(n *html.Node) bool {
	return n != nil && d.active == n
}

// Focus moves focus to n, firing blur on the previously focused node and
// focus on n. Focusing the already focused node does nothing.
func (d *Document) Focus(n *html.Node) {
	if n == nil || d.active == n {
		return
	}
	prev := d.active
	d.active = n
	if prev != nil {
		d.Dispatch(prev, NewEvent(EventBlur))
	}
	d.Dispatch(n, NewEvent(EventFocus))
}

// Blur removes focus from n if it holds it.
func (d *Document) Blur(n *html.Node) {
	if n == nil || d.active != n {
		return
	}
	d.active = nil
	d.Dispatch(n, NewEvent(EventBlur))
}

// Selection returns the document's selection.
func (d *Document) Selection() *Selection { return d.sel }

func (d *Document) selectionChanged() {
	if d.writing {
		d.pending = true
		return
	}
	d.fireSelectionChange()
}

func (d *Document) fireSelectionChange() {
	d.Dispatch(nil, NewEvent(EventSelectionChange))
}
