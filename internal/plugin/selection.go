package plugin

import (
	"github.com/dshills/asteronote/internal/dom"
)

// Selection returns the document selection.
func (b *Base) Selection() *dom.Selection {
	return b.host.Document().Selection()
}

// Range returns the current range, if any.
func (b *Base) Range() (dom.Range, bool) {
	return b.Selection().Range()
}

// SaveRange returns the current range when it lies inside the editable
// region, for a later RestoreRange.
func (b *Base) SaveRange() (dom.Range, bool) {
	r, ok := b.Range()
	if !ok || !r.Within(b.host.Editable()) {
		return dom.Range{}, false
	}
	return r, true
}

// RestoreRange reinstates a saved range. It fails when the range's nodes
// have since been detached or its offsets no longer fit.
func (b *Base) RestoreRange(r dom.Range) bool {
	doc := b.host.Document()
	if !r.Valid() || !doc.Attached(r.StartContainer) || !doc.Attached(r.EndContainer) {
		return false
	}
	doc.Selection().SetRange(r)
	return true
}

// IsSelectionInsideEditor reports whether the selection anchor lies in
// the editable region.
func (b *Base) IsSelectionInsideEditor() bool {
	editable := b.host.Editable()
	anchor := b.Selection().AnchorNode()
	return editable != nil && anchor != nil && dom.Contains(editable, anchor)
}

// EnsureFocusAndRange focuses the editor and places a caret if the
// selection is outside it.
func (b *Base) EnsureFocusAndRange() {
	b.host.EnsureFocusAndRange()
}
