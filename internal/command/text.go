package command

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

var voidTags = []string{"br", "hr", "img", "input", "wbr", "embed", "source", "track"}

func isVoid(n *html.Node) bool {
	return dom.IsElement(n, voidTags...)
}

// deleteContents removes everything inside r, joins the two end blocks
// when they differ and returns the resulting caret.
func (e *DocumentExecutor) deleteContents(r dom.Range) (*html.Node, int) {
	if r.Collapsed() {
		return r.StartContainer, r.StartOffset
	}

	startBlock := e.closestBlock(r.StartContainer)
	endBlock := e.closestBlock(r.EndContainer)
	start, end := splitRange(r)

	var doomed []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if contained(c, start, end) {
				doomed = append(doomed, c)
				continue
			}
			visit(c)
		}
	}
	visit(e.root)

	caretParent, caretIndex := start.parent, start.offset()
	for _, n := range doomed {
		dom.Remove(n)
	}

	if startBlock != nil && endBlock != nil && startBlock != endBlock &&
		e.root != nil && dom.Contains(e.root, endBlock) &&
		!dom.Contains(startBlock, endBlock) && !dom.Contains(endBlock, startBlock) &&
		!dom.IsElement(startBlock, "td", "th") && !dom.IsElement(endBlock, "td", "th") {
		e.mergeBlocks(startBlock, endBlock)
	}

	return e.settleCaret(caretParent, caretIndex)
}

// mergeBlocks appends from's content to into and removes from, along with
// any list left without items.
func (e *DocumentExecutor) mergeBlocks(into, from *html.Node) {
	if into.FirstChild != nil && into.FirstChild == into.LastChild && dom.IsElement(into.FirstChild, "br") {
		dom.Remove(into.FirstChild)
	}
	parent := from.Parent
	dom.MoveChildren(from, into)
	dom.Remove(from)
	e.pruneEmpty(parent)
}

// pruneEmpty removes n and its ancestors below root while they hold
// nothing but whitespace.
func (e *DocumentExecutor) pruneEmpty(n *html.Node) {
	for n != nil && n != e.root && n.Parent != nil && !hasElementChild(n) && strings.TrimSpace(dom.TextContent(n)) == "" {
		parent := n.Parent
		dom.Remove(n)
		n = parent
	}
}

// settleCaret normalises the caret's block and moves the selection to
// the caret, preferring a text position.
func (e *DocumentExecutor) settleCaret(parent *html.Node, index int) (*html.Node, int) {
	if !dom.Contains(e.root, parent) {
		parent, index = e.root, dom.ChildCount(e.root)
	}
	scope := e.closestBlock(parent)
	if scope == nil {
		scope = e.root
	}

	off := textOffset(scope, parent, index)
	normalize(scope)

	var n *html.Node
	var o int
	switch {
	case isEmpty(scope) && scope != e.root:
		dom.RemoveChildren(scope)
		placeholder(scope)
		n, o = scope, 0
	case dom.TextContent(scope) == "":
		n, o = parent, min(index, dom.ChildCount(parent))
	default:
		n, o = locate(scope, off, false)
	}
	e.setRange(dom.Caret(n, o))
	return n, o
}

func (e *DocumentExecutor) insertText(r dom.Range, value string) error {
	n, off := r.StartContainer, r.StartOffset
	if !r.Collapsed() {
		n, off = e.deleteContents(r)
	}
	if value == "" {
		return nil
	}
	n, off = insertTextAt(n, off, value)
	e.setRange(dom.Caret(n, off))
	return nil
}

// insertTextAt splices s into the tree at (n, off) and returns the caret
// just after it.
func insertTextAt(n *html.Node, off int, s string) (*html.Node, int) {
	if dom.IsText(n) {
		n.Data = n.Data[:off] + s + n.Data[off:]
		return n, off + len(s)
	}
	if isVoid(n) {
		n, off = n.Parent, dom.Index(n)+1
	}
	if only := n.FirstChild; only != nil && only == n.LastChild && dom.IsElement(only, "br") {
		dom.Remove(only)
		off = 0
	}
	if prev := dom.ChildAt(n, off-1); dom.IsText(prev) {
		prev.Data += s
		return prev, len(prev.Data)
	}
	if next := dom.ChildAt(n, off); dom.IsText(next) {
		next.Data = s + next.Data
		return next, len(s)
	}
	t := dom.NewText(s)
	dom.InsertAt(n, t, off)
	return t, len(s)
}

func (e *DocumentExecutor) insertHTML(r dom.Range, value string) error {
	nodes, err := dom.ParseFragment(value, e.root)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		if !r.Collapsed() {
			e.deleteContents(r)
		}
		return nil
	}
	e.insertNodes(r, nodes)
	return nil
}

// insertNodes puts nodes at the selection, replacing selected content.
// Inline nodes are spliced in at the caret; block nodes split the caret's
// block. Inside list items and table cells the nodes stay in the item or
// cell. The caret ends after the last inserted node.
func (e *DocumentExecutor) insertNodes(r dom.Range, nodes []*html.Node) *html.Node {
	n, off := r.StartContainer, r.StartOffset
	if !r.Collapsed() {
		n, off = e.deleteContents(r)
	}
	if isVoid(n) {
		n, off = n.Parent, dom.Index(n)+1
	}

	hasBlock := false
	for _, c := range nodes {
		if isBlockLevel(c) {
			hasBlock = true
			break
		}
	}

	scope := dom.ClosestTag(n, e.root, "li", "td", "th")
	if scope == nil {
		scope = e.root
	}
	top := topIn(scope, n)

	var parent, before, right *html.Node
	if !hasBlock || top == nil || dom.IsText(top) {
		b := boundaryAt(n, off)
		parent, before = b.parent, b.before
	} else {
		right = splitAt(top, n, off)
		parent, before = scope, right
	}

	if only := parent.FirstChild; only != nil && only == parent.LastChild && dom.IsElement(only, "br") && before != only {
		dom.Remove(only)
	}
	for _, c := range nodes {
		parent.InsertBefore(c, before)
	}
	if right != nil {
		if isEmpty(top) && !isVoid(top) {
			dom.Remove(top)
		}
		if isEmpty(right) && !isVoid(right) {
			dom.Remove(right)
		}
	}
	last := nodes[len(nodes)-1]
	e.setRange(dom.Caret(parent, dom.Index(last)+1))
	return last
}

func (e *DocumentExecutor) deleteBackward(r dom.Range, _ string) error {
	if !r.Collapsed() {
		e.deleteContents(r)
		return nil
	}

	n, off := r.StartContainer, r.StartOffset
	if !dom.IsText(n) {
		if prev := dom.ChildAt(n, off-1); dom.IsText(prev) && prev.Data != "" {
			n, off = prev, len(prev.Data)
		}
	}
	if dom.IsText(n) && off > 0 {
		at := prevGraphemeStart(n.Data, off)
		n.Data = n.Data[:at] + n.Data[off:]
		e.setRange(dom.Caret(n, at))
		return nil
	}

	leaf := e.leafBefore(n, off)
	if leaf == nil {
		return nil
	}
	cur, prev := e.closestBlock(n), e.closestBlock(leaf)
	if cur != nil && prev != nil && cur != prev && !dom.Contains(cur, prev) {
		if dom.IsElement(cur, "td", "th") || dom.IsElement(prev, "td", "th") {
			return nil
		}
		m := e.saveMarks(dom.Caret(n, off))
		e.mergeBlocks(prev, cur)
		e.restoreMarks(m)
		return nil
	}

	if isVoid(leaf) {
		m := e.saveMarks(dom.Caret(n, off))
		dom.Remove(leaf)
		e.restoreMarks(m)
		return nil
	}
	at := prevGraphemeStart(leaf.Data, len(leaf.Data))
	leaf.Data = leaf.Data[:at]
	e.setRange(dom.Caret(leaf, at))
	return nil
}

func (e *DocumentExecutor) deleteForward(r dom.Range, _ string) error {
	if !r.Collapsed() {
		e.deleteContents(r)
		return nil
	}

	n, off := r.StartContainer, r.StartOffset
	if !dom.IsText(n) {
		if next := dom.ChildAt(n, off); dom.IsText(next) && next.Data != "" {
			n, off = next, 0
		}
	}
	if dom.IsText(n) && off < len(n.Data) {
		end := nextGraphemeEnd(n.Data, off)
		n.Data = n.Data[:off] + n.Data[end:]
		e.setRange(dom.Caret(n, off))
		return nil
	}

	leaf := e.leafAfter(n, off)
	if leaf == nil {
		return nil
	}
	cur, next := e.closestBlock(n), e.closestBlock(leaf)
	if cur != nil && next != nil && cur != next && !dom.Contains(cur, next) {
		if dom.IsElement(cur, "td", "th") || dom.IsElement(next, "td", "th") {
			return nil
		}
		m := e.saveMarks(dom.Caret(n, off))
		e.mergeBlocks(cur, next)
		e.restoreMarks(m)
		return nil
	}

	if isVoid(leaf) {
		m := e.saveMarks(dom.Caret(n, off))
		dom.Remove(leaf)
		e.restoreMarks(m)
		return nil
	}
	end := nextGraphemeEnd(leaf.Data, 0)
	leaf.Data = leaf.Data[end:]
	m := e.saveMarks(dom.Caret(n, off))
	e.restoreMarks(m)
	return nil
}

// leaves returns root's non-empty text nodes and void elements in
// document order.
func (e *DocumentExecutor) leaves() []*html.Node {
	var out []*html.Node
	dom.Walk(e.root, func(c *html.Node) bool {
		if (dom.IsText(c) && c.Data != "") || isVoid(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// leafBefore returns the last leaf that ends at or before (n, off).
func (e *DocumentExecutor) leafBefore(n *html.Node, off int) *html.Node {
	var found *html.Node
	for _, l := range e.leaves() {
		var c int
		if dom.IsText(l) {
			c = dom.ComparePoints(l, len(l.Data), n, off)
		} else {
			c = dom.ComparePoints(l.Parent, dom.Index(l)+1, n, off)
		}
		if c > 0 || l == n {
			break
		}
		found = l
	}
	return found
}

// leafAfter returns the first leaf that starts at or after (n, off).
func (e *DocumentExecutor) leafAfter(n *html.Node, off int) *html.Node {
	for _, l := range e.leaves() {
		if l == n {
			continue
		}
		var c int
		if dom.IsText(l) {
			c = dom.ComparePoints(l, 0, n, off)
		} else {
			c = dom.ComparePoints(l.Parent, dom.Index(l), n, off)
		}
		if c >= 0 {
			return l
		}
	}
	return nil
}

// prevGraphemeStart returns the byte offset where the grapheme cluster
// ending at off begins.
func prevGraphemeStart(s string, off int) int {
	last := 0
	g := uniseg.NewGraphemes(s[:off])
	for g.Next() {
		last, _ = g.Positions()
	}
	return last
}

// nextGraphemeEnd returns the byte offset where the grapheme cluster
// starting at off ends.
func nextGraphemeEnd(s string, off int) int {
	g := uniseg.NewGraphemes(s[off:])
	if g.Next() {
		_, to := g.Positions()
		return off + to
	}
	return off
}
