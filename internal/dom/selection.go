package dom

import (
	"golang.org/x/net/html"
)

// Range is a span between two boundary points. Offsets into text nodes are
// byte offsets; offsets into elements are child indexes.
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// Caret returns a collapsed range at (n, offset).
func Caret(n *html.Node, offset int) Range {
	return Range{StartContainer: n, StartOffset: offset, EndContainer: n, EndOffset: offset}
}

// Span returns a range from (start, so) to (end, eo).
func Span(start *html.Node, so int, end *html.Node, eo int) Range {
	return Range{StartContainer: start, StartOffset: so, EndContainer: end, EndOffset: eo}
}

// ContentsOf returns a range covering all of n's content.
func ContentsOf(n *html.Node) Range {
	return Range{StartContainer: n, StartOffset: 0, EndContainer: n, EndOffset: maxOffset(n)}
}

// Collapsed reports whether start and end coincide.
func (r Range) Collapsed() bool {
	return r.StartContainer == r.EndContainer && r.StartOffset == r.EndOffset
}

// Valid reports whether both boundary points exist and are in bounds.
func (r Range) Valid() bool {
	return validPoint(r.StartContainer, r.StartOffset) && validPoint(r.EndContainer, r.EndOffset)
}

// Within reports whether both boundary points lie inside root.
func (r Range) Within(root *html.Node) bool {
	return Contains(root, r.StartContainer) && Contains(root, r.EndContainer)
}

// CommonAncestor returns the deepest node containing both boundary points.
func (r Range) CommonAncestor() *html.Node {
	for n := r.StartContainer; n != nil; n = n.Parent {
		if Contains(n, r.EndContainer) {
			return n
		}
	}
	return nil
}

func validPoint(n *html.Node, off int) bool {
	return n != nil && off >= 0 && off <= maxOffset(n)
}

// maxOffset is the largest valid boundary offset inside n.
func maxOffset(n *html.Node) int {
	if n == nil {
		return 0
	}
	if n.Type == html.TextNode {
		return len(n.Data)
	}
	return ChildCount(n)
}

// MaxOffset returns the offset of the end of n's content.
func MaxOffset(n *html.Node) int { return maxOffset(n) }

// Selection is the document-wide selection. It holds at most one range.
type Selection struct {
	doc *Document
	r   Range
	has bool
}

// RangeCount returns 0 or 1.
func (s *Selection) RangeCount() int {
	if s.has {
		return 1
	}
	return 0
}

// Range returns the current range.
func (s *Selection) Range() (Range, bool) {
	return s.r, s.has
}

// AnchorNode returns the range's start container, or nil.
func (s *Selection) AnchorNode() *html.Node {
	if !s.has {
		return nil
	}
	return s.r.StartContainer
}

// FocusNode returns the range's end container, or nil.
func (s *Selection) FocusNode() *html.Node {
	if !s.has {
		return nil
	}
	return s.r.EndContainer
}

// IsCollapsed reports whether there is no range or the range is a caret.
func (s *Selection) IsCollapsed() bool {
	return !s.has || s.r.Collapsed()
}

// RemoveAllRanges clears the selection.
func (s *Selection) RemoveAllRanges() {
	if !s.has {
		return
	}
	s.has = false
	s.r = Range{}
	s.doc.selectionChanged()
}

// AddRange sets the selection's range. Like browsers, it is ignored while
// a range is already present.
func (s *Selection) AddRange(r Range) {
	if s.has {
		return
	}
	s.r = r
	s.has = true
	s.doc.selectionChanged()
}

// SetRange replaces the selection's range.
func (s *Selection) SetRange(r Range) {
	if s.has && s.r == r {
		return
	}
	s.r = r
	s.has = true
	s.doc.selectionChanged()
}

// Collapse places a caret at (n, offset).
func (s *Selection) Collapse(n *html.Node, offset int) {
	s.SetRange(Caret(n, offset))
}

// SelectNodeContents selects all of n's content.
func (s *Selection) SelectNodeContents(n *html.Node) {
	s.SetRange(ContentsOf(n))
}

// String returns the selected text.
func (s *Selection) String() string {
	if !s.has {
		return ""
	}
	return RangeText(s.r)
}

// RangeText returns the text covered by r.
func RangeText(r Range) string {
	if !r.Valid() {
		return ""
	}
	if r.StartContainer == r.EndContainer && IsText(r.StartContainer) {
		return r.StartContainer.Data[r.StartOffset:r.EndOffset]
	}

	root := r.CommonAncestor()
	var out []byte
	Walk(root, func(n *html.Node) bool {
		if !IsText(n) {
			return true
		}
		start, end := 0, len(n.Data)
		if !afterStart(r, n) || !beforeEnd(r, n) {
			return true
		}
		if n == r.StartContainer {
			start = r.StartOffset
		}
		if n == r.EndContainer {
			end = r.EndOffset
		}
		if start < end {
			out = append(out, n.Data[start:end]...)
		}
		return true
	})
	return string(out)
}

// afterStart reports whether text node n begins at or after r's start.
func afterStart(r Range, n *html.Node) bool {
	if n == r.StartContainer {
		return true
	}
	return ComparePoints(r.StartContainer, r.StartOffset, n, 0) <= 0
}

// beforeEnd reports whether text node n begins before r's end.
func beforeEnd(r Range, n *html.Node) bool {
	if n == r.EndContainer {
		return true
	}
	return ComparePoints(n, 0, r.EndContainer, r.EndOffset) < 0
}

// ComparePoints orders two boundary points in document order, returning
// -1, 0 or 1.
func ComparePoints(a *html.Node, ao int, b *html.Node, bo int) int {
	if a == b {
		switch {
		case ao < bo:
			return -1
		case ao > bo:
			return 1
		}
		return 0
	}

	// Express both points as (parent, child index) pairs under their
	// common ancestor and compare there.
	pa := ancestry(a)
	pb := ancestry(b)
	i := 0
	for i < len(pa) && i < len(pb) && pa[i] == pb[i] {
		i++
	}
	if i == 0 {
		return 0
	}
	ka, oa := childIndexUnder(pa, i, ao)
	kb, ob := childIndexUnder(pb, i, bo)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	// Same child index: one point is the common ancestor itself at that
	// offset, the other is inside the child at that index and comes after.
	switch {
	case oa < ob:
		return -1
	case oa > ob:
		return 1
	}
	return 0
}

// ancestry returns the path from the root down to n.
func ancestry(n *html.Node) []*html.Node {
	var path []*html.Node
	for ; n != nil; n = n.Parent {
		path = append(path, n)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// childIndexUnder maps a point to a child index of the common ancestor
// path[depth-1] plus a tiebreak: 0 when the point is the ancestor itself at
// that offset, 1 when it is inside the child at that index.
func childIndexUnder(path []*html.Node, depth, offset int) (int, int) {
	if depth == len(path) {
		return offset, 0
	}
	return Index(path[depth]), 1
}
