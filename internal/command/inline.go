package command

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

// inlineFormat describes a toggleable inline format. The first tag is the
// one created; the others are recognised as equivalent.
type inlineFormat struct {
	tags []string
}

func (f inlineFormat) tag() string { return f.tags[0] }

var inlineFormats = map[string]inlineFormat{
	Bold:          {tags: []string{"b", "strong"}},
	Italic:        {tags: []string{"i", "em"}},
	Underline:     {tags: []string{"u", "ins"}},
	StrikeThrough: {tags: []string{"s", "strike", "del"}},
	Subscript:     {tags: []string{"sub"}},
	Superscript:   {tags: []string{"sup"}},
	Code:          {tags: []string{"code"}},
	Highlight:     {tags: []string{"mark"}},
}

// removableTags are stripped by removeFormat. Links survive.
var removableTags = []string{
	"b", "strong", "i", "em", "u", "ins", "s", "strike", "del",
	"sub", "sup", "code", "mark", "span", "font", "small", "big",
}

func applyInline(name string) applyFunc {
	f := inlineFormats[name]
	if name == Highlight {
		return func(e *DocumentExecutor, r dom.Range, value string) error {
			color, err := canonicalColor(value)
			if err != nil {
				return err
			}
			return e.toggleInline(r, f, color)
		}
	}
	return func(e *DocumentExecutor, r dom.Range, _ string) error {
		return e.toggleInline(r, f, "")
	}
}

// canonicalColor validates a highlight colour and returns it as #rrggbb.
// An empty value means the default highlight.
func canonicalColor(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return "", ErrInvalidValue
	}
	return c.Hex(), nil
}

func (e *DocumentExecutor) formatAncestor(n *html.Node, f inlineFormat) *html.Node {
	return dom.ClosestTag(n, e.root, f.tags...)
}

// inlineActive reports whether every character in r carries f. A caret
// reports the format of its position.
func (e *DocumentExecutor) inlineActive(r dom.Range, f inlineFormat) bool {
	texts := e.intersectingTexts(r)
	if r.Collapsed() || len(texts) == 0 {
		return e.formatAncestor(r.StartContainer, f) != nil
	}
	for _, t := range texts {
		if e.formatAncestor(t, f) == nil {
			return false
		}
	}
	return true
}

// toggleInline removes f from r when all of r already carries it and
// applies it otherwise. A caret is left untouched. For highlights a colour
// recolours an already highlighted range instead of removing it.
func (e *DocumentExecutor) toggleInline(r dom.Range, f inlineFormat, color string) error {
	if r.Collapsed() {
		return nil
	}

	m := e.saveMarks(r)
	start, end := splitRange(r)
	texts := e.containedTexts(start, end)

	active := len(texts) > 0
	for _, t := range texts {
		if e.formatAncestor(t, f) == nil {
			active = false
			break
		}
	}

	switch {
	case active && color != "":
		for _, t := range texts {
			dom.SetStyle(e.formatAncestor(t, f), "background-color", color)
		}
	case active:
		for _, t := range texts {
			e.stripAncestors(t, f.tags)
		}
	default:
		for _, t := range texts {
			if e.formatAncestor(t, f) != nil {
				continue
			}
			w := dom.NewElement(f.tag())
			if color != "" {
				dom.SetStyle(w, "background-color", color)
			}
			dom.Wrap(t, w)
			mergeSiblings(w)
		}
	}

	e.restoreMarks(m)
	return nil
}

// stripAncestors isolates n from, and then unwraps, every ancestor inside
// root whose tag is one of tags.
func (e *DocumentExecutor) stripAncestors(n *html.Node, tags []string) {
	for {
		a := dom.ClosestTag(n, e.root, tags...)
		if a == nil {
			return
		}
		isolate(n, a)
		dom.Unwrap(a)
	}
}

// mergeSiblings folds w into an identical element directly before or
// after it.
func mergeSiblings(w *html.Node) *html.Node {
	if prev := w.PrevSibling; sameElement(prev, w) {
		dom.MoveChildren(w, prev)
		dom.Remove(w)
		w = prev
	}
	if next := w.NextSibling; sameElement(next, w) {
		dom.MoveChildren(next, w)
		dom.Remove(next)
	}
	return w
}

func sameElement(a, b *html.Node) bool {
	if !dom.IsElement(a) || !dom.IsElement(b) || a.Data != b.Data || len(a.Attr) != len(b.Attr) {
		return false
	}
	for _, attr := range a.Attr {
		if v, ok := dom.Attr(b, attr.Key); !ok || v != attr.Val {
			return false
		}
	}
	return true
}

func (e *DocumentExecutor) removeFormat(r dom.Range, _ string) error {
	if r.Collapsed() {
		return nil
	}
	m := e.saveMarks(r)
	start, end := splitRange(r)
	for _, t := range e.containedTexts(start, end) {
		e.stripAncestors(t, removableTags)
	}
	e.restoreMarks(m)
	return nil
}

func (e *DocumentExecutor) createLink(r dom.Range, value string) error {
	href := strings.TrimSpace(value)
	if href == "" {
		return ErrInvalidValue
	}

	if r.Collapsed() {
		a := dom.NewElement("a")
		dom.SetAttr(a, "href", href)
		a.AppendChild(dom.NewText(href))
		e.insertNodes(r, []*html.Node{a})
		return nil
	}

	m := e.saveMarks(r)
	start, end := splitRange(r)
	for _, t := range e.containedTexts(start, end) {
		if a := dom.ClosestTag(t, e.root, "a"); a != nil {
			dom.SetAttr(a, "href", href)
			continue
		}
		a := dom.NewElement("a")
		dom.SetAttr(a, "href", href)
		dom.Wrap(t, a)
		mergeSiblings(a)
	}
	e.restoreMarks(m)
	return nil
}

// unlink unwraps every link touching the selection.
func (e *DocumentExecutor) unlink(r dom.Range, _ string) error {
	var anchors []*html.Node
	seen := map[*html.Node]bool{}
	collect := func(n *html.Node) {
		if a := dom.ClosestTag(n, e.root, "a"); a != nil && !seen[a] {
			seen[a] = true
			anchors = append(anchors, a)
		}
	}

	collect(r.StartContainer)
	for _, t := range e.intersectingTexts(r) {
		collect(t)
	}
	if len(anchors) == 0 {
		return nil
	}

	m := e.saveMarks(r)
	for _, a := range anchors {
		dom.Unwrap(a)
	}
	e.restoreMarks(m)
	return nil
}
