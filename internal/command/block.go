package command

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

// blockTags are the elements a caret's line belongs to.
var blockTags = []string{
	"p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "div",
	"li", "td", "th", "dt", "dd",
}

// containerBlocks hold other blocks; commands that change a block's kind
// work inside them rather than renaming them.
var containerBlocks = []string{"li", "td", "th", "dt", "dd"}

var blockLevel = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "div": true, "ul": true, "ol": true, "li": true,
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true, "td": true,
	"th": true, "hr": true, "dl": true, "dt": true, "dd": true, "figure": true,
	"section": true, "article": true, "header": true, "footer": true, "nav": true,
	"aside": true, "address": true, "details": true, "fieldset": true, "form": true,
	"main": true,
}

// formatBlockTags are the values formatBlock accepts.
var formatBlockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "div": true,
}

const indentStep = 40

func isBlockLevel(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockLevel[n.Data]
}

func (e *DocumentExecutor) closestBlock(n *html.Node) *html.Node {
	return dom.ClosestTag(n, e.root, blockTags...)
}

// topIn returns the ancestor of n whose parent is scope, or nil when n is
// scope itself or outside it.
func topIn(scope, n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Parent == scope {
			return n
		}
	}
	return nil
}

// blockFor returns n's block, wrapping a run of inline content that sits
// directly in the root into a new paragraph when there is none.
func (e *DocumentExecutor) blockFor(n *html.Node) *html.Node {
	if b := e.closestBlock(n); b != nil {
		return b
	}
	top := topIn(e.root, n)
	if top == nil || isBlockLevel(top) {
		return nil
	}

	first, last := top, top
	for first.PrevSibling != nil && !isBlockLevel(first.PrevSibling) {
		first = first.PrevSibling
	}
	for last.NextSibling != nil && !isBlockLevel(last.NextSibling) {
		last = last.NextSibling
	}

	p := dom.NewElement("p")
	e.root.InsertBefore(p, first)
	for c := first; ; {
		next := c.NextSibling
		e.root.RemoveChild(c)
		p.AppendChild(c)
		if c == last {
			break
		}
		c = next
	}
	return p
}

// firstLeaf descends through first children.
func firstLeaf(n *html.Node) *html.Node {
	for n != nil && n.FirstChild != nil {
		n = n.FirstChild
	}
	return n
}

// selectedBlocks returns the blocks the range touches in document order,
// creating paragraphs for loose inline content.
func (e *DocumentExecutor) selectedBlocks(r dom.Range) []*html.Node {
	var nodes []*html.Node
	if !r.Collapsed() {
		nodes = e.intersectingTexts(r)
	}
	if len(nodes) == 0 {
		nodes = []*html.Node{r.StartContainer}
	}

	var blocks []*html.Node
	seen := map[*html.Node]bool{}
	for _, n := range nodes {
		if n == e.root {
			if e.root.FirstChild == nil {
				p := dom.NewElement("p")
				placeholder(p)
				e.root.AppendChild(p)
				return []*html.Node{p}
			}
			child := dom.ChildAt(e.root, r.StartOffset)
			if child == nil {
				child = e.root.LastChild
			}
			n = firstLeaf(child)
		}
		b := e.blockFor(n)
		if b == nil || seen[b] {
			continue
		}
		seen[b] = true
		blocks = append(blocks, b)
	}
	return blocks
}

func (e *DocumentExecutor) formatBlock(r dom.Range, value string) error {
	tag := strings.Trim(strings.ToLower(strings.TrimSpace(value)), "<>")
	if !formatBlockTags[tag] {
		return ErrInvalidValue
	}

	m := e.saveMarks(r)
	for _, b := range e.selectedBlocks(r) {
		if dom.IsElement(b, containerBlocks...) {
			inner := dom.NewElement(tag)
			dom.MoveChildren(b, inner)
			b.AppendChild(inner)
			continue
		}
		dom.Rename(b, tag)
	}
	e.keepRange(r, m)
	return nil
}

// listTag returns "ul" or "ol" for the list item holding n, or "".
func (e *DocumentExecutor) listTag(n *html.Node) string {
	li := dom.ClosestTag(n, e.root, "li")
	if li == nil || !dom.IsElement(li.Parent, "ul", "ol") {
		return ""
	}
	return li.Parent.Data
}

func listCommand(tag string) applyFunc {
	return func(e *DocumentExecutor, r dom.Range, _ string) error {
		return e.toggleList(r, tag)
	}
}

// toggleList removes the list when every selected block is an item of a
// tag list, converts items of the other list kind, and wraps plain blocks
// into a new list.
func (e *DocumentExecutor) toggleList(r dom.Range, tag string) error {
	m := e.saveMarks(r)
	blocks := e.selectedBlocks(r)

	all := len(blocks) > 0
	for _, b := range blocks {
		if !dom.IsElement(b, "li") || !dom.IsElement(b.Parent, tag) {
			all = false
			break
		}
	}

	if all {
		for _, li := range blocks {
			e.unlistItem(li)
		}
		e.keepRange(r, m)
		return nil
	}

	var list *html.Node
	var touched []*html.Node
	for _, b := range blocks {
		switch {
		case dom.IsElement(b, "li") && dom.IsElement(b.Parent, "ul", "ol"):
			if b.Parent.Data != tag {
				dom.Rename(b.Parent, tag)
			}
			touched = append(touched, b.Parent)
			list = nil
		case dom.IsElement(b, containerBlocks...):
			inner := dom.NewElement(tag)
			li := dom.NewElement("li")
			dom.MoveChildren(b, li)
			inner.AppendChild(li)
			b.AppendChild(inner)
		default:
			li := dom.NewElement("li")
			dom.MoveChildren(b, li)
			placeholder(li)
			if list != nil && nextElement(list) == b {
				dom.Remove(b)
				list.AppendChild(li)
				continue
			}
			list = dom.NewElement(tag)
			dom.Replace(b, list)
			list.AppendChild(li)
			touched = append(touched, list)
		}
	}
	for _, l := range touched {
		if l.Parent != nil {
			mergeLists(l)
		}
	}
	e.keepRange(r, m)
	return nil
}

// unlistItem turns a list item into a paragraph, splitting its list.
func (e *DocumentExecutor) unlistItem(li *html.Node) {
	list := li.Parent
	isolate(li, list)
	p := dom.NewElement("p")
	dom.MoveChildren(li, p)
	placeholder(p)
	dom.Replace(list, p)
}

// nextElement returns the next element sibling, skipping whitespace text.
func nextElement(n *html.Node) *html.Node {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
		if dom.IsText(c) && strings.TrimSpace(c.Data) != "" {
			return nil
		}
	}
	return nil
}

// prevElement returns the previous element sibling, skipping whitespace text.
func prevElement(n *html.Node) *html.Node {
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
		if dom.IsText(c) && strings.TrimSpace(c.Data) != "" {
			return nil
		}
	}
	return nil
}

// mergeLists joins l with adjacent lists of the same kind.
func mergeLists(l *html.Node) {
	if prev := prevElement(l); prev != nil && prev.Data == l.Data {
		dom.MoveChildren(l, prev)
		dom.Remove(l)
		l = prev
	}
	if next := nextElement(l); next != nil && next.Data == l.Data {
		dom.MoveChildren(next, l)
		dom.Remove(next)
	}
}

func (e *DocumentExecutor) indent(r dom.Range, _ string) error {
	m := e.saveMarks(r)
	for _, b := range e.selectedBlocks(r) {
		if dom.IsElement(b, "li") && dom.IsElement(b.Parent, "ul", "ol") {
			indentItem(b)
			continue
		}
		shiftMargin(b, indentStep)
	}
	e.keepRange(r, m)
	return nil
}

func (e *DocumentExecutor) outdent(r dom.Range, _ string) error {
	m := e.saveMarks(r)
	for _, b := range e.selectedBlocks(r) {
		if dom.IsElement(b, "li") && dom.IsElement(b.Parent, "ul", "ol") {
			e.outdentItem(b)
			continue
		}
		shiftMargin(b, -indentStep)
	}
	e.keepRange(r, m)
	return nil
}

// indentItem nests li into a sublist of the preceding item. The first item
// of a list cannot be indented.
func indentItem(li *html.Node) {
	prev := prevElement(li)
	if !dom.IsElement(prev, "li") {
		return
	}
	var sub *html.Node
	for c := prev.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			if dom.IsElement(c, "ul", "ol") {
				sub = c
			}
			break
		}
	}
	if sub == nil {
		sub = dom.NewElement(li.Parent.Data)
		prev.AppendChild(sub)
	}
	dom.Remove(li)
	sub.AppendChild(li)
}

// outdentItem lifts a nested item one level, carrying its following
// siblings along as its own sublist. A top-level item becomes a paragraph.
func (e *DocumentExecutor) outdentItem(li *html.Node) {
	list := li.Parent
	outer := list.Parent
	if !dom.IsElement(outer, "li") {
		e.unlistItem(li)
		return
	}

	if li.NextSibling != nil {
		tail := dom.CloneShallow(list)
		for c := li.NextSibling; c != nil; {
			next := c.NextSibling
			list.RemoveChild(c)
			tail.AppendChild(c)
			c = next
		}
		li.AppendChild(tail)
	}
	dom.Remove(li)
	dom.InsertAfter(outer, li)
	if isEmpty(list) && !hasElementChild(list) {
		dom.Remove(list)
	}
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// shiftMargin adjusts a block's margin-left in px, removing it at zero.
func shiftMargin(b *html.Node, delta int) {
	cur, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(dom.Style(b, "margin-left")), "px"))
	next := cur + delta
	if next <= 0 {
		dom.SetStyle(b, "margin-left", "")
		return
	}
	dom.SetStyle(b, "margin-left", strconv.Itoa(next)+"px")
}

func justifyCommand(align string) applyFunc {
	return func(e *DocumentExecutor, r dom.Range, _ string) error {
		m := e.saveMarks(r)
		for _, b := range e.selectedBlocks(r) {
			dom.SetStyle(b, "text-align", align)
		}
		e.keepRange(r, m)
		return nil
	}
}

// alignment returns the text-align of n's block.
func (e *DocumentExecutor) alignment(n *html.Node) string {
	return dom.Style(e.closestBlock(n), "text-align")
}

// insertHorizontalRule splits the caret's block around a new <hr> and puts
// the caret at the start of the second half.
func (e *DocumentExecutor) insertHorizontalRule(r dom.Range, _ string) error {
	n, off := r.StartContainer, r.StartOffset
	if !r.Collapsed() {
		n, off = e.deleteContents(r)
	}

	hr := dom.NewElement("hr")
	if n == e.root {
		dom.InsertAt(e.root, hr, off)
		e.setRange(dom.Caret(e.root, dom.Index(hr)+1))
		return nil
	}

	block := e.blockFor(n)
	switch {
	case block == nil:
		e.root.AppendChild(hr)
		e.setRange(dom.Caret(e.root, dom.ChildCount(e.root)))
	case dom.IsElement(block, containerBlocks...):
		b := boundaryAt(n, off)
		b.parent.InsertBefore(hr, b.before)
		e.setRange(dom.Caret(hr.Parent, dom.Index(hr)+1))
	default:
		right := splitAt(block, n, off)
		dom.InsertAfter(block, hr)
		if isEmpty(block) {
			dom.Remove(block)
		}
		if isEmpty(right) {
			dom.RemoveChildren(right)
			placeholder(right)
		}
		e.setRange(dom.Caret(right, 0))
	}
	return nil
}
