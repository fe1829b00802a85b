// Package command implements rich-text commands over a dom tree.
//
// The editor core only depends on the Executor interface. DocumentExecutor
// is the headless implementation: an explicit formatting-range model that
// mutates the editable subtree of a dom.Document according to the
// document's current selection, and moves the selection to cover the
// affected content afterwards.
//
// DocumentExecutor does not lock the document; callers run Apply inside
// dom.Document.Write.
package command

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/logging"
)

// Executor applies and queries named rich-text commands.
type Executor interface {
	// Apply runs the command with an optional value.
	Apply(name, value string) error
	// QueryState reports whether the command is active at the selection.
	QueryState(name string) bool
	// QueryValue returns the command's current value at the selection.
	QueryValue(name string) string
	// Supports reports whether the command is implemented.
	Supports(name string) bool
}

// Command names.
const (
	Bold          = "bold"
	Italic        = "italic"
	Underline     = "underline"
	StrikeThrough = "strikeThrough"
	Subscript     = "subscript"
	Superscript   = "superscript"
	Code          = "code"
	Highlight     = "highlight"
	RemoveFormat  = "removeFormat"
	CreateLink    = "createLink"
	Unlink        = "unlink"

	FormatBlock          = "formatBlock"
	InsertUnorderedList  = "insertUnorderedList"
	InsertOrderedList    = "insertOrderedList"
	Indent               = "indent"
	Outdent              = "outdent"
	JustifyLeft          = "justifyLeft"
	JustifyCenter        = "justifyCenter"
	JustifyRight         = "justifyRight"
	JustifyFull          = "justifyFull"
	InsertHorizontalRule = "insertHorizontalRule"

	InsertText    = "insertText"
	InsertHTML    = "insertHTML"
	Delete        = "delete"
	ForwardDelete = "forwardDelete"
	SelectAll     = "selectAll"

	InsertTable             = "insertTable"
	TableAddRow             = "tableAddRow"
	TableAddColumn          = "tableAddColumn"
	TableDeleteRow          = "tableDeleteRow"
	TableDeleteColumn       = "tableDeleteColumn"
	TableDelete             = "tableDelete"
	TableToggleHeaderRow    = "tableToggleHeaderRow"
	TableToggleHeaderColumn = "tableToggleHeaderColumn"
)

type applyFunc func(e *DocumentExecutor, r dom.Range, value string) error

// commands maps lower-cased command names to their implementation.
var commands = map[string]applyFunc{}

func init() {
	for name := range inlineFormats {
		commands[strings.ToLower(name)] = applyInline(name)
	}
	add := func(name string, fn applyFunc) { commands[strings.ToLower(name)] = fn }

	add(RemoveFormat, (*DocumentExecutor).removeFormat)
	add(CreateLink, (*DocumentExecutor).createLink)
	add(Unlink, (*DocumentExecutor).unlink)

	add(FormatBlock, (*DocumentExecutor).formatBlock)
	add(InsertUnorderedList, listCommand("ul"))
	add(InsertOrderedList, listCommand("ol"))
	add(Indent, (*DocumentExecutor).indent)
	add(Outdent, (*DocumentExecutor).outdent)
	add(JustifyLeft, justifyCommand(""))
	add(JustifyCenter, justifyCommand("center"))
	add(JustifyRight, justifyCommand("right"))
	add(JustifyFull, justifyCommand("justify"))
	add(InsertHorizontalRule, (*DocumentExecutor).insertHorizontalRule)

	add(InsertText, (*DocumentExecutor).insertText)
	add(InsertHTML, (*DocumentExecutor).insertHTML)
	add(Delete, (*DocumentExecutor).deleteBackward)
	add(ForwardDelete, (*DocumentExecutor).deleteForward)

	add(InsertTable, (*DocumentExecutor).insertTable)
	add(TableAddRow, (*DocumentExecutor).tableAddRow)
	add(TableAddColumn, (*DocumentExecutor).tableAddColumn)
	add(TableDeleteRow, (*DocumentExecutor).tableDeleteRow)
	add(TableDeleteColumn, (*DocumentExecutor).tableDeleteColumn)
	add(TableDelete, (*DocumentExecutor).tableDelete)
	add(TableToggleHeaderRow, (*DocumentExecutor).tableToggleHeaderRow)
	add(TableToggleHeaderColumn, (*DocumentExecutor).tableToggleHeaderColumn)
}

// Names returns every supported command name in canonical spelling.
func Names() []string {
	return []string{
		Bold, Italic, Underline, StrikeThrough, Subscript, Superscript, Code, Highlight,
		RemoveFormat, CreateLink, Unlink,
		FormatBlock, InsertUnorderedList, InsertOrderedList, Indent, Outdent,
		JustifyLeft, JustifyCenter, JustifyRight, JustifyFull, InsertHorizontalRule,
		InsertText, InsertHTML, Delete, ForwardDelete, SelectAll,
		InsertTable, TableAddRow, TableAddColumn, TableDeleteRow, TableDeleteColumn,
		TableDelete, TableToggleHeaderRow, TableToggleHeaderColumn,
	}
}

// DocumentExecutor runs commands against the editable root of a document.
type DocumentExecutor struct {
	doc    *dom.Document
	root   *html.Node
	logger *logging.Logger
}

// Option configures a DocumentExecutor.
type Option func(*DocumentExecutor)

// WithLogger sets the executor's logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *DocumentExecutor) {
		e.logger = l
	}
}

// NewDocumentExecutor creates an executor for the editable subtree root.
func NewDocumentExecutor(doc *dom.Document, root *html.Node, opts ...Option) *DocumentExecutor {
	e := &DocumentExecutor{doc: doc, root: root}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the editable root.
func (e *DocumentExecutor) Root() *html.Node { return e.root }

// Supports reports whether name is a known command. Names are matched
// case-insensitively.
func (e *DocumentExecutor) Supports(name string) bool {
	key := strings.ToLower(name)
	if key == strings.ToLower(SelectAll) {
		return true
	}
	_, ok := commands[key]
	return ok
}

// Apply runs the named command at the current selection.
func (e *DocumentExecutor) Apply(name, value string) error {
	key := strings.ToLower(name)
	if key == strings.ToLower(SelectAll) {
		e.doc.Selection().SelectNodeContents(e.root)
		return nil
	}

	fn, ok := commands[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, name)
	}
	r, err := e.currentRange()
	if err != nil {
		return err
	}

	e.logger.Debug("apply command", "command", name, "value", value)
	if err := fn(e, r, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// currentRange returns the selection's range if it is valid and inside root.
func (e *DocumentExecutor) currentRange() (dom.Range, error) {
	r, ok := e.doc.Selection().Range()
	if !ok || !r.Valid() || !r.Within(e.root) {
		return dom.Range{}, ErrNoSelection
	}
	if dom.ComparePoints(r.StartContainer, r.StartOffset, r.EndContainer, r.EndOffset) > 0 {
		r.StartContainer, r.EndContainer = r.EndContainer, r.StartContainer
		r.StartOffset, r.EndOffset = r.EndOffset, r.StartOffset
	}
	return r, nil
}

func (e *DocumentExecutor) setRange(r dom.Range) {
	e.doc.Selection().SetRange(r)
}

// QueryState reports whether the command is active at the selection.
func (e *DocumentExecutor) QueryState(name string) bool {
	r, err := e.currentRange()
	if err != nil {
		return false
	}

	key := strings.ToLower(name)
	for fname, f := range inlineFormats {
		if strings.ToLower(fname) == key {
			return e.inlineActive(r, f)
		}
	}

	anchor := r.StartContainer
	switch key {
	case strings.ToLower(InsertUnorderedList):
		return e.listTag(anchor) == "ul"
	case strings.ToLower(InsertOrderedList):
		return e.listTag(anchor) == "ol"
	case strings.ToLower(JustifyLeft):
		a := e.alignment(anchor)
		return a == "" || a == "left" || a == "start"
	case strings.ToLower(JustifyCenter):
		return e.alignment(anchor) == "center"
	case strings.ToLower(JustifyRight):
		return e.alignment(anchor) == "right"
	case strings.ToLower(JustifyFull):
		return e.alignment(anchor) == "justify"
	case strings.ToLower(CreateLink), strings.ToLower(Unlink):
		return dom.ClosestTag(anchor, e.root, "a") != nil
	case strings.ToLower(InsertTable), strings.ToLower(TableDelete):
		return dom.ClosestTag(anchor, e.root, "td", "th") != nil
	}
	return false
}

// QueryValue returns the command's value at the selection: the block tag
// for formatBlock, the href for createLink, the highlight colour and the
// alignment for the justify commands.
func (e *DocumentExecutor) QueryValue(name string) string {
	r, err := e.currentRange()
	if err != nil {
		return ""
	}
	anchor := r.StartContainer

	switch strings.ToLower(name) {
	case strings.ToLower(FormatBlock):
		if b := e.closestBlock(anchor); b != nil {
			return b.Data
		}
		return "p"
	case strings.ToLower(CreateLink):
		return dom.GetAttr(dom.ClosestTag(anchor, e.root, "a"), "href")
	case strings.ToLower(Highlight):
		return dom.Style(dom.ClosestTag(anchor, e.root, "mark"), "background-color")
	case strings.ToLower(JustifyLeft), strings.ToLower(JustifyCenter),
		strings.ToLower(JustifyRight), strings.ToLower(JustifyFull):
		if a := e.alignment(anchor); a != "" {
			return a
		}
		return "left"
	}
	return ""
}
