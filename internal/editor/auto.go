package editor

import (
	"strconv"

	"github.com/dshills/asteronote/internal/dom"
)

// InitAll creates and initialises an editor for every element matching
// selector, or DefaultSelector when selector is empty. A data-height or
// data-placeholder attribute on an element overrides opts for that
// element. Editors initialised before a failure are returned with it.
func InitAll(doc *dom.Document, selector string, opts Options, options ...Option) ([]*Editor, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if selector == "" {
		selector = DefaultSelector
	}

	var editors []*Editor
	for _, target := range doc.QueryAll(selector) {
		o := opts
		if v, ok := dom.Attr(target, "data-height"); ok {
			if h, err := strconv.Atoi(v); err == nil {
				o.Height = h
			}
		}
		if v, ok := dom.Attr(target, "data-placeholder"); ok {
			o.Placeholder = v
		}

		ed, err := New(doc, target, o, options...)
		if err != nil {
			return editors, err
		}
		if err := ed.Init(); err != nil {
			return editors, err
		}
		editors = append(editors, ed)
	}
	return editors, nil
}
