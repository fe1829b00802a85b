package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

type fixture struct {
	doc  *dom.Document
	root *html.Node
	ex   *DocumentExecutor
}

func newFixture(t *testing.T, content string) *fixture {
	t.Helper()
	doc, err := dom.Parse(`<div id="ed">` + content + `</div>`)
	require.NoError(t, err)
	root := doc.Query("#ed")
	require.NotNil(t, root)
	return &fixture{doc: doc, root: root, ex: NewDocumentExecutor(doc, root)}
}

func (f *fixture) html() string { return dom.InnerHTML(f.root) }

// text returns the first text node containing needle.
func (f *fixture) text(t *testing.T, needle string) *html.Node {
	t.Helper()
	var found *html.Node
	dom.Walk(f.root, func(n *html.Node) bool {
		if found == nil && dom.IsText(n) && strings.Contains(n.Data, needle) {
			found = n
		}
		return found == nil
	})
	require.NotNil(t, found, "no text node contains %q", needle)
	return found
}

func (f *fixture) selectText(t *testing.T, needle string) {
	t.Helper()
	n := f.text(t, needle)
	i := strings.Index(n.Data, needle)
	f.doc.Selection().SetRange(dom.Span(n, i, n, i+len(needle)))
}

func (f *fixture) caret(t *testing.T, needle string, at int) {
	t.Helper()
	n := f.text(t, needle)
	f.doc.Selection().SetRange(dom.Caret(n, strings.Index(n.Data, needle)+at))
}

func (f *fixture) apply(t *testing.T, name, value string) {
	t.Helper()
	require.NoError(t, f.ex.Apply(name, value))
}

func TestBoldToggleSymmetry(t *testing.T) {
	f := newFixture(t, "hello")
	f.selectText(t, "hello")

	f.apply(t, Bold, "")
	assert.Equal(t, "<b>hello</b>", f.html())
	assert.True(t, f.ex.QueryState(Bold))
	assert.Equal(t, "hello", f.doc.Selection().String())

	f.apply(t, Bold, "")
	assert.Equal(t, "hello", f.html())
	assert.False(t, f.ex.QueryState(Bold))
	assert.Equal(t, "hello", f.doc.Selection().String())
}

func TestBoldPartialSelections(t *testing.T) {
	f := newFixture(t, "hello world")

	f.selectText(t, "world")
	f.apply(t, Bold, "")
	assert.Equal(t, "hello <b>world</b>", f.html())

	lo := f.text(t, "hello ")
	wo := f.text(t, "world")
	f.doc.Selection().SetRange(dom.Span(lo, 3, wo, 2))
	assert.False(t, f.ex.QueryState(Bold), "mixed selection is not bold")

	f.apply(t, Bold, "")
	assert.Equal(t, "hel<b>lo world</b>", f.html())
	assert.Equal(t, "lo wo", f.doc.Selection().String())
}

func TestUnboldMiddle(t *testing.T) {
	f := newFixture(t, "<b>hello world</b>")
	f.selectText(t, "lo wo")

	f.apply(t, Bold, "")
	assert.Equal(t, "<b>hel</b>lo wo<b>rld</b>", f.html())
}

func TestInlineAliases(t *testing.T) {
	tests := []struct {
		name    string
		command string
		in      string
		want    string
	}{
		{"em counts as italic", Italic, "<em>x</em>", "x"},
		{"strong counts as bold", Bold, "<strong>x</strong>", "x"},
		{"del counts as strike", StrikeThrough, "<del>x</del>", "x"},
		{"underline applies u", Underline, "x", "<u>x</u>"},
		{"code applies code", Code, "x", "<code>x</code>"},
		{"sup applies sup", Superscript, "x", "<sup>x</sup>"},
		{"sub applies sub", Subscript, "x", "<sub>x</sub>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.in)
			f.selectText(t, "x")
			f.apply(t, tt.command, "")
			assert.Equal(t, tt.want, f.html())
		})
	}
}

func TestCollapsedInlineToggleIsNoop(t *testing.T) {
	f := newFixture(t, "abc")
	f.caret(t, "abc", 1)
	f.apply(t, Bold, "")
	assert.Equal(t, "abc", f.html())
}

func TestQueryStateAtCaret(t *testing.T) {
	f := newFixture(t, "<b>bold</b> plain")
	f.caret(t, "bold", 2)
	assert.True(t, f.ex.QueryState(Bold))
	assert.False(t, f.ex.QueryState(Italic))

	f.doc.Selection().SelectNodeContents(f.root)
	assert.False(t, f.ex.QueryState(Bold))
}

func TestHighlight(t *testing.T) {
	f := newFixture(t, "hi")
	f.selectText(t, "hi")

	f.apply(t, Highlight, "ff0")
	assert.Equal(t, `<mark style="background-color: #ffff00;">hi</mark>`, f.html())
	assert.Equal(t, "#ffff00", f.ex.QueryValue(Highlight))

	f.apply(t, Highlight, "#00ff00")
	assert.Equal(t, "#00ff00", f.ex.QueryValue(Highlight))

	f.apply(t, Highlight, "")
	assert.Equal(t, "hi", f.html())

	assert.ErrorIs(t, f.ex.Apply(Highlight, "zz"), ErrInvalidValue)
}

func TestRemoveFormat(t *testing.T) {
	f := newFixture(t, `<b><i>x</i></b>y<a href="u">z</a>`)
	f.doc.Selection().SelectNodeContents(f.root)

	f.apply(t, RemoveFormat, "")
	assert.Equal(t, `xy<a href="u">z</a>`, f.html())
}

func TestLinks(t *testing.T) {
	f := newFixture(t, "hello")
	f.selectText(t, "hello")

	assert.ErrorIs(t, f.ex.Apply(CreateLink, "  "), ErrInvalidValue)

	f.apply(t, CreateLink, "https://example.com")
	assert.Equal(t, `<a href="https://example.com">hello</a>`, f.html())
	assert.True(t, f.ex.QueryState(CreateLink))
	assert.Equal(t, "https://example.com", f.ex.QueryValue(CreateLink))

	f.apply(t, CreateLink, "https://other.example")
	assert.Equal(t, `<a href="https://other.example">hello</a>`, f.html())

	f.caret(t, "hello", 1)
	f.apply(t, Unlink, "")
	assert.Equal(t, "hello", f.html())
}

func TestCreateLinkAtCaret(t *testing.T) {
	f := newFixture(t, "<p>ab</p>")
	f.caret(t, "ab", 1)
	f.apply(t, CreateLink, "u")
	assert.Equal(t, `<p>a<a href="u">u</a>b</p>`, f.html())
}

func TestFormatBlock(t *testing.T) {
	f := newFixture(t, "<p>title</p>")
	f.caret(t, "title", 0)

	f.apply(t, FormatBlock, "h1")
	assert.Equal(t, "<h1>title</h1>", f.html())
	assert.Equal(t, "h1", f.ex.QueryValue(FormatBlock))

	f.apply(t, FormatBlock, "<blockquote>")
	assert.Equal(t, "<blockquote>title</blockquote>", f.html())

	assert.ErrorIs(t, f.ex.Apply(FormatBlock, "h9"), ErrInvalidValue)
}

func TestFormatBlockWrapsLooseText(t *testing.T) {
	f := newFixture(t, "hello <b>there</b><p>next</p>")
	f.caret(t, "hello", 2)

	f.apply(t, FormatBlock, "h2")
	assert.Equal(t, "<h2>hello <b>there</b></h2><p>next</p>", f.html())
}

func TestListToggleAndConvert(t *testing.T) {
	f := newFixture(t, "<p>one</p><p>two</p>")
	one, two := f.text(t, "one"), f.text(t, "two")
	f.doc.Selection().SetRange(dom.Span(one, 0, two, 3))

	f.apply(t, InsertUnorderedList, "")
	assert.Equal(t, "<ul><li>one</li><li>two</li></ul>", f.html())
	assert.True(t, f.ex.QueryState(InsertUnorderedList))

	f.apply(t, InsertOrderedList, "")
	assert.Equal(t, "<ol><li>one</li><li>two</li></ol>", f.html())
	assert.True(t, f.ex.QueryState(InsertOrderedList))
	assert.False(t, f.ex.QueryState(InsertUnorderedList))

	f.apply(t, InsertOrderedList, "")
	assert.Equal(t, "<p>one</p><p>two</p>", f.html())
}

func TestListIndentOutdent(t *testing.T) {
	f := newFixture(t, "<ul><li>a</li><li>b</li></ul>")
	f.caret(t, "b", 0)

	f.apply(t, Indent, "")
	assert.Equal(t, "<ul><li>a<ul><li>b</li></ul></li></ul>", f.html())

	f.apply(t, Outdent, "")
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", f.html())

	f.apply(t, Outdent, "")
	assert.Equal(t, "<ul><li>a</li></ul><p>b</p>", f.html())
}

func TestBlockIndentAndJustify(t *testing.T) {
	f := newFixture(t, "<p>x</p>")
	f.caret(t, "x", 0)

	f.apply(t, Indent, "")
	f.apply(t, Indent, "")
	assert.Equal(t, `<p style="margin-left: 80px;">x</p>`, f.html())
	f.apply(t, Outdent, "")
	f.apply(t, Outdent, "")
	assert.Equal(t, "<p>x</p>", f.html())

	f.apply(t, JustifyCenter, "")
	assert.Equal(t, `<p style="text-align: center;">x</p>`, f.html())
	assert.True(t, f.ex.QueryState(JustifyCenter))
	assert.False(t, f.ex.QueryState(JustifyLeft))
	assert.Equal(t, "center", f.ex.QueryValue(JustifyLeft))

	f.apply(t, JustifyLeft, "")
	assert.Equal(t, "<p>x</p>", f.html())
	assert.True(t, f.ex.QueryState(JustifyLeft))
}

func TestInsertText(t *testing.T) {
	f := newFixture(t, "<p>ab</p>")
	f.caret(t, "ab", 1)
	f.apply(t, InsertText, "XY")
	assert.Equal(t, "<p>aXYb</p>", f.html())

	f.selectText(t, "b")
	f.apply(t, InsertText, "!")
	assert.Equal(t, "<p>aXY!</p>", f.html())
}

func TestInsertTextReplacesPlaceholder(t *testing.T) {
	f := newFixture(t, "<p><br></p>")
	p := f.root.FirstChild
	f.doc.Selection().SetRange(dom.Caret(p, 0))

	f.apply(t, InsertText, "\t")
	assert.Equal(t, "<p>\t</p>", f.html())
}

func TestDeleteAcrossBlocks(t *testing.T) {
	f := newFixture(t, "<p>abc</p><p>def</p>")
	abc, def := f.text(t, "abc"), f.text(t, "def")
	f.doc.Selection().SetRange(dom.Span(abc, 1, def, 2))

	f.apply(t, Delete, "")
	assert.Equal(t, "<p>af</p>", f.html())
}

func TestBackspaceGraphemes(t *testing.T) {
	f := newFixture(t, "<p>café</p>")
	n := f.text(t, "caf")
	f.doc.Selection().SetRange(dom.Caret(n, len(n.Data)))

	f.apply(t, Delete, "")
	assert.Equal(t, "<p>caf</p>", f.html())
}

func TestBackspaceJoinsBlocks(t *testing.T) {
	f := newFixture(t, "<p>ab</p><p>cd</p>")
	f.caret(t, "cd", 0)

	f.apply(t, Delete, "")
	assert.Equal(t, "<p>abcd</p>", f.html())
	r, ok := f.doc.Selection().Range()
	require.True(t, ok)
	assert.Equal(t, 2, r.StartOffset)
}

func TestForwardDelete(t *testing.T) {
	f := newFixture(t, "<p>ab</p><p>cd</p>")
	f.caret(t, "ab", 0)
	f.apply(t, ForwardDelete, "")
	assert.Equal(t, "<p>b</p><p>cd</p>", f.html())

	f.caret(t, "b", 1)
	f.apply(t, ForwardDelete, "")
	assert.Equal(t, "<p>bcd</p>", f.html())
}

func TestInsertHTML(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		f := newFixture(t, "<p>ab</p>")
		f.caret(t, "ab", 1)
		f.apply(t, InsertHTML, "<b>X</b>")
		assert.Equal(t, "<p>a<b>X</b>b</p>", f.html())
	})

	t.Run("block splits paragraph", func(t *testing.T) {
		f := newFixture(t, "<p>abcd</p>")
		f.caret(t, "abcd", 2)
		f.apply(t, InsertHTML, "<h2>X</h2>")
		assert.Equal(t, "<p>ab</p><h2>X</h2><p>cd</p>", f.html())
	})
}

func TestInsertHorizontalRule(t *testing.T) {
	f := newFixture(t, "<p>abcd</p>")
	f.caret(t, "abcd", 2)

	f.apply(t, InsertHorizontalRule, "")
	assert.Equal(t, "<p>ab</p><hr/><p>cd</p>", f.html())
}

func TestTables(t *testing.T) {
	f := newFixture(t, "")
	f.doc.Selection().SetRange(dom.Caret(f.root, 0))

	count := func(sel string) int {
		nodes, err := dom.QueryAllIn(f.root, sel)
		require.NoError(t, err)
		return len(nodes)
	}

	f.apply(t, InsertTable, "2x3")
	assert.Equal(t, 2, count("tr"))
	assert.Equal(t, 6, count("td"))
	table, err := dom.QueryIn(f.root, "table")
	require.NoError(t, err)
	assert.True(t, dom.HasClass(table, "table-bordered"))
	assert.True(t, f.ex.QueryState(TableDelete))

	f.apply(t, TableAddRow, "below")
	assert.Equal(t, 3, count("tr"))

	f.apply(t, TableAddColumn, "right")
	assert.Equal(t, 12, count("td"))

	f.apply(t, TableDeleteRow, "")
	assert.Equal(t, 2, count("tr"))

	f.apply(t, TableDeleteColumn, "")
	assert.Equal(t, 6, count("td"))

	f.apply(t, TableToggleHeaderRow, "")
	assert.Equal(t, 3, count("th"))

	assert.ErrorIs(t, f.ex.Apply(TableAddRow, "sideways"), ErrInvalidValue)

	f.apply(t, TableDelete, "")
	assert.Equal(t, "<p><br/></p>", f.html())
	assert.ErrorIs(t, f.ex.Apply(TableAddRow, ""), ErrNotInTable)
}

func TestParseTableSize(t *testing.T) {
	tests := []struct {
		in         string
		rows, cols int
		wantErr    bool
	}{
		{"3x4", 3, 4, false},
		{"3 X 4", 3, 4, false},
		{"", 2, 2, false},
		{"0x500", 1, 100, false},
		{"3", 0, 0, true},
		{"axb", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, c, err := parseTableSize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, r)
			assert.Equal(t, tt.cols, c)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	f := newFixture(t, "x")

	assert.ErrorIs(t, f.ex.Apply("bogus", ""), ErrUnsupportedCommand)
	assert.ErrorIs(t, f.ex.Apply(Bold, ""), ErrNoSelection)

	f.doc.Selection().SelectNodeContents(f.doc.Body())
	assert.ErrorIs(t, f.ex.Apply(Bold, ""), ErrNoSelection, "range outside the root")
	assert.False(t, f.ex.QueryState(Bold))
	assert.Equal(t, "", f.ex.QueryValue(FormatBlock))
}

func TestSelectAllAndSupports(t *testing.T) {
	f := newFixture(t, "<p>a</p><p>b</p>")
	f.apply(t, SelectAll, "")
	assert.Equal(t, "ab", f.doc.Selection().String())

	for _, name := range Names() {
		assert.True(t, f.ex.Supports(name), name)
	}
	assert.True(t, f.ex.Supports("BOLD"))
	assert.False(t, f.ex.Supports("fontName"))
}
