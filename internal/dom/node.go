package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element.
func NewElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element, and if tags are given, whether
// its tag is one of them.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// Attr returns the value of attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttr returns the value of attribute key, or "".
func GetAttr(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets attribute key, keeping its position if it already exists.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Contains reports whether n is ancestor or n itself.
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Index returns n's position among its parent's children, or -1.
func Index(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// ChildAt returns the i-th child of n, or nil.
func ChildAt(n *html.Node, i int) *html.Node {
	if n == nil || i < 0 {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if i == 0 {
			return c
		}
		i--
	}
	return nil
}

// Children returns n's children as a slice, safe to iterate while mutating.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Remove detaches n from its parent. It is a no-op for detached nodes.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts n as the next sibling of ref.
func InsertAfter(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil || n == nil {
		return
	}
	Remove(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// InsertBefore inserts n as the previous sibling of ref.
func InsertBefore(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil || n == nil {
		return
	}
	Remove(n)
	ref.Parent.InsertBefore(n, ref)
}

// InsertAt inserts n as parent's i-th child; out-of-range indexes append.
func InsertAt(parent, n *html.Node, i int) {
	if parent == nil || n == nil {
		return
	}
	Remove(n)
	parent.InsertBefore(n, ChildAt(parent, i))
}

// Replace puts n in old's place and detaches old.
func Replace(old, n *html.Node) {
	if old == nil || old.Parent == nil || n == nil {
		return
	}
	Remove(n)
	old.Parent.InsertBefore(n, old)
	old.Parent.RemoveChild(old)
}

// Wrap inserts wrapper in n's place and moves n inside it.
func Wrap(n, wrapper *html.Node) {
	if n == nil || n.Parent == nil || wrapper == nil {
		return
	}
	n.Parent.InsertBefore(wrapper, n)
	n.Parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

// Unwrap replaces el with its children and returns them.
func Unwrap(el *html.Node) []*html.Node {
	if el == nil || el.Parent == nil {
		return nil
	}
	kids := Children(el)
	for _, c := range kids {
		el.RemoveChild(c)
		el.Parent.InsertBefore(c, el)
	}
	el.Parent.RemoveChild(el)
	return kids
}

// MoveChildren appends every child of from to to.
func MoveChildren(from, to *html.Node) {
	for _, c := range Children(from) {
		from.RemoveChild(c)
		to.AppendChild(c)
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for _, c := range Children(n) {
		n.RemoveChild(c)
	}
}

// CloneShallow copies n's type, tag and attributes without children.
func CloneShallow(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	return c
}

// CloneDeep copies n and its whole subtree.
func CloneDeep(n *html.Node) *html.Node {
	c := CloneShallow(n)
	if c == nil {
		return nil
	}
	for k := n.FirstChild; k != nil; k = k.NextSibling {
		c.AppendChild(CloneDeep(k))
	}
	return c
}

// Rename changes an element's tag.
func Rename(n *html.Node, tag string) {
	if !IsElement(n) {
		return
	}
	tag = strings.ToLower(tag)
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Closest returns the nearest inclusive ancestor of n, stopping at (and
// excluding) limit, for which match returns true.
func Closest(n, limit *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil && n != limit; n = n.Parent {
		if match(n) {
			return n
		}
	}
	return nil
}

// ClosestTag is Closest with a tag-name match.
func ClosestTag(n, limit *html.Node, tags ...string) *html.Node {
	return Closest(n, limit, func(c *html.Node) bool { return IsElement(c, tags...) })
}

// TextContent concatenates the text of n's subtree.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces n's children with a single text node.
func SetTextContent(n *html.Node, s string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		n.Data = s
		return
	}
	RemoveChildren(n)
	if s != "" {
		n.AppendChild(NewText(s))
	}
}

// Value returns the form value of a textarea or input; for any other node it
// returns the text content.
func Value(n *html.Node) string {
	if IsElement(n, "input") {
		return GetAttr(n, "value")
	}
	return TextContent(n)
}

// SetValue sets the form value of a textarea or input.
func SetValue(n *html.Node, v string) {
	if IsElement(n, "input") {
		SetAttr(n, "value", v)
		return
	}
	SetTextContent(n, v)
}

// IsFormField reports whether n holds a value rather than markup.
func IsFormField(n *html.Node) bool {
	return IsElement(n, "textarea", "input")
}
