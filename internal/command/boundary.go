package command

import (
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

// boundary is a position between children of parent, just before the
// child before (nil means after the last child). Anchoring on a node
// rather than an index keeps the position stable while siblings are
// inserted elsewhere.
type boundary struct {
	parent *html.Node
	before *html.Node
}

func (b boundary) offset() int {
	if b.before == nil {
		return dom.ChildCount(b.parent)
	}
	return dom.Index(b.before)
}

// splitText splits a text node at byte offset off and returns the new
// right-hand node, inserted after n.
func splitText(n *html.Node, off int) *html.Node {
	right := dom.NewText(n.Data[off:])
	n.Data = n.Data[:off]
	dom.InsertAfter(n, right)
	return right
}

// boundaryAt converts a range point into a boundary, splitting a text node
// when the point falls strictly inside it.
func boundaryAt(n *html.Node, off int) boundary {
	if !dom.IsText(n) {
		return boundary{parent: n, before: dom.ChildAt(n, off)}
	}
	switch {
	case off <= 0:
		return boundary{parent: n.Parent, before: n}
	case off >= len(n.Data):
		return boundary{parent: n.Parent, before: n.NextSibling}
	}
	return boundary{parent: n.Parent, before: splitText(n, off)}
}

// splitRange splits text at both ends of r so the range begins and ends on
// node edges. The end is split first so the start offset stays valid when
// both ends share a text node.
func splitRange(r dom.Range) (start, end boundary) {
	end = boundaryAt(r.EndContainer, r.EndOffset)
	start = boundaryAt(r.StartContainer, r.StartOffset)
	return start, end
}

// contained reports whether n lies entirely between start and end.
func contained(n *html.Node, start, end boundary) bool {
	if n.Parent == nil {
		return false
	}
	i := dom.Index(n)
	return dom.ComparePoints(start.parent, start.offset(), n.Parent, i) <= 0 &&
		dom.ComparePoints(n.Parent, i+1, end.parent, end.offset()) <= 0
}

// containedTexts returns the non-empty text nodes lying between start and
// end in document order, skipping whitespace that only separates structural
// elements (list items, table parts).
func (e *DocumentExecutor) containedTexts(start, end boundary) []*html.Node {
	var out []*html.Node
	dom.Walk(e.root, func(n *html.Node) bool {
		if !dom.IsText(n) || n.Data == "" {
			return true
		}
		if structural(n.Parent) {
			return true
		}
		if contained(n, start, end) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// intersectingTexts returns the text nodes that share at least one
// character with r, without modifying the tree.
func (e *DocumentExecutor) intersectingTexts(r dom.Range) []*html.Node {
	var out []*html.Node
	dom.Walk(e.root, func(n *html.Node) bool {
		if !dom.IsText(n) || n.Data == "" || structural(n.Parent) {
			return true
		}
		from, to := 0, len(n.Data)
		if n == r.StartContainer {
			from = r.StartOffset
		} else if dom.ComparePoints(r.StartContainer, r.StartOffset, n, 0) > 0 {
			return true
		}
		if n == r.EndContainer {
			to = r.EndOffset
		} else if dom.ComparePoints(n, 0, r.EndContainer, r.EndOffset) >= 0 {
			return true
		}
		if from < to {
			out = append(out, n)
		}
		return true
	})
	return out
}

func structural(n *html.Node) bool {
	return dom.IsElement(n, "ul", "ol", "table", "thead", "tbody", "tfoot", "tr", "colgroup")
}

// marks records a selection as character offsets into the root's text so
// it survives text-node splitting and merging.
type marks struct {
	start, end int
}

func (e *DocumentExecutor) saveMarks(r dom.Range) marks {
	return marks{
		start: textOffset(e.root, r.StartContainer, r.StartOffset),
		end:   textOffset(e.root, r.EndContainer, r.EndOffset),
	}
}

// restoreMarks normalises the root and selects the recorded span again.
func (e *DocumentExecutor) restoreMarks(m marks) {
	normalize(e.root)
	if m.start == m.end {
		n, off := locate(e.root, m.start, false)
		e.setRange(dom.Caret(n, off))
		return
	}
	sn, so := locate(e.root, m.start, true)
	en, eo := locate(e.root, m.end, false)
	e.setRange(dom.Span(sn, so, en, eo))
}

// keepRange reselects r when block-level edits left its nodes in place,
// falling back to the recorded marks otherwise.
func (e *DocumentExecutor) keepRange(r dom.Range, m marks) {
	if r.Valid() && r.Within(e.root) {
		e.setRange(r)
		return
	}
	e.restoreMarks(m)
}

// textOffset counts the text characters (bytes) that precede (n, off)
// within root.
func textOffset(root, n *html.Node, off int) int {
	total := 0
	done := false
	dom.Walk(root, func(c *html.Node) bool {
		if done {
			return false
		}
		if c == n {
			done = true
			if dom.IsText(c) {
				total += off
				return false
			}
			for i, k := 0, c.FirstChild; k != nil && i < off; i, k = i+1, k.NextSibling {
				total += len(dom.TextContent(k))
			}
			return false
		}
		if dom.IsText(c) {
			total += len(c.Data)
		}
		return true
	})
	return total
}

// locate finds the text position for character offset off. At a node seam
// preferLater picks the start of the following node, otherwise the end of
// the preceding one. Without any text it falls back to root itself.
func locate(root *html.Node, off int, preferLater bool) (*html.Node, int) {
	var (
		found   *html.Node
		foundAt int
		last    *html.Node
		pos     int
	)
	dom.Walk(root, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if !dom.IsText(c) || c.Data == "" {
			return true
		}
		l := len(c.Data)
		if (preferLater && off < pos+l) || (!preferLater && off <= pos+l) {
			found, foundAt = c, max(off-pos, 0)
			return false
		}
		last = c
		pos += l
		return true
	})
	if found != nil {
		return found, foundAt
	}
	if last != nil {
		return last, len(last.Data)
	}
	if preferLater {
		return root, 0
	}
	return root, dom.ChildCount(root)
}

// normalize merges adjacent text nodes and drops empty ones under n.
func normalize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case dom.IsText(c) && c.Data == "":
			n.RemoveChild(c)
		case dom.IsText(c):
			for next != nil && dom.IsText(next) {
				c.Data += next.Data
				after := next.NextSibling
				n.RemoveChild(next)
				next = after
			}
		case c.Type == html.ElementNode:
			normalize(c)
		}
		c = next
	}
}

// isolate splits every ancestor between n and ancestor (inclusive) so
// that n's ancestor chain has no other content. Siblings on either side
// move into shallow clones placed before or after the ancestor at each
// level.
func isolate(n, ancestor *html.Node) {
	for cur := n; cur != ancestor && cur.Parent != nil; cur = cur.Parent {
		parent := cur.Parent
		if parent.Parent == nil {
			return
		}
		if cur.PrevSibling != nil {
			left := dom.CloneShallow(parent)
			for c := parent.FirstChild; c != cur; {
				next := c.NextSibling
				parent.RemoveChild(c)
				left.AppendChild(c)
				c = next
			}
			parent.Parent.InsertBefore(left, parent)
		}
		if cur.NextSibling != nil {
			right := dom.CloneShallow(parent)
			for c := cur.NextSibling; c != nil; {
				next := c.NextSibling
				parent.RemoveChild(c)
				right.AppendChild(c)
				c = next
			}
			dom.InsertAfter(parent, right)
		}
		if parent == ancestor {
			return
		}
	}
}

// splitAt splits ancestor at (n, off), moving everything after the point
// into a shallow clone of ancestor inserted right after it. Intermediate
// clones left empty are discarded; the returned top-level clone may be
// empty.
func splitAt(ancestor, n *html.Node, off int) *html.Node {
	b := boundaryAt(n, off)
	parent, before := b.parent, b.before
	for {
		right := dom.CloneShallow(parent)
		for c := before; c != nil; {
			next := c.NextSibling
			parent.RemoveChild(c)
			right.AppendChild(c)
			c = next
		}
		if parent == ancestor || parent.Parent == nil {
			dom.InsertAfter(parent, right)
			return right
		}
		dom.InsertAfter(parent, right)
		next := right
		if right.FirstChild == nil {
			next = right.NextSibling
			dom.Remove(right)
		}
		parent, before = parent.Parent, next
	}
}

// isEmpty reports whether n has no text and no void content.
func isEmpty(n *html.Node) bool {
	empty := true
	dom.Walk(n, func(c *html.Node) bool {
		if !empty {
			return false
		}
		if dom.IsText(c) && c.Data != "" {
			empty = false
		}
		if c != n && dom.IsElement(c, "img", "hr", "iframe", "video", "table") {
			empty = false
		}
		return true
	})
	return empty
}

// placeholder fills an empty block with <br> so it keeps a line box.
func placeholder(n *html.Node) {
	if n.FirstChild == nil {
		n.AppendChild(dom.NewElement("br"))
	}
}
