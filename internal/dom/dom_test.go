package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/key"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(src)
	require.NoError(t, err)
	return doc
}

func TestParseAndQuery(t *testing.T) {
	doc := mustParse(t, `<div id="a" class="x y"><p data-k="v">one</p><p>two</p></div><textarea name="t">hi</textarea>`)

	require.NotNil(t, doc.Body())
	assert.Equal(t, "div", doc.Query("#a").Data)
	assert.Equal(t, "div", doc.Query(".x.y").Data)
	assert.Equal(t, "one", TextContent(doc.Query("[data-k=v]")))
	assert.Len(t, doc.QueryAll("p"), 2)
	assert.Equal(t, "hi", Value(doc.Query("textarea[name=t]")))
	assert.Nil(t, doc.Query("#missing"))
	assert.Nil(t, doc.Query("div p"))
	assert.Same(t, doc.Query("#a"), doc.ElementByID("a"))
}

func TestParseSelectorErrors(t *testing.T) {
	for _, s := range []string{"", "#", ".", "[", "[]", "a > b", "p,div"} {
		t.Run(s, func(t *testing.T) {
			_, err := parseSelector(s)
			assert.ErrorIs(t, err, ErrInvalidSelector)
		})
	}
}

func TestAttributesClassesStyles(t *testing.T) {
	n := NewElement("DIV")
	assert.Equal(t, "div", n.Data)

	SetAttr(n, "id", "x")
	SetAttr(n, "id", "y")
	assert.Equal(t, "y", GetAttr(n, "id"))
	assert.Len(t, n.Attr, 1)

	AddClass(n, "a", "b a")
	assert.Equal(t, []string{"a", "b"}, Classes(n))
	RemoveClass(n, "a")
	assert.True(t, HasClass(n, "b"))
	RemoveClass(n, "b")
	assert.False(t, HasAttr(n, "class"))

	SetStyle(n, "height", "300px")
	SetStyle(n, "Text-Align", "center")
	assert.Equal(t, "300px", Style(n, "height"))
	assert.Equal(t, "height: 300px; text-align: center;", GetAttr(n, "style"))
	SetStyle(n, "height", "")
	SetStyle(n, "text-align", "")
	assert.False(t, HasAttr(n, "style"))
}

func TestTreeHelpers(t *testing.T) {
	parent := NewElement("div")
	a, b, c := NewText("a"), NewElement("b"), NewText("c")
	parent.AppendChild(a)
	parent.AppendChild(c)
	InsertAfter(a, b)

	assert.Equal(t, 1, Index(b))
	assert.Equal(t, 3, ChildCount(parent))
	assert.Same(t, c, ChildAt(parent, 2))
	assert.True(t, Contains(parent, b))
	assert.False(t, Contains(b, parent))

	w := NewElement("span")
	Wrap(b, w)
	assert.Same(t, w, b.Parent)
	Unwrap(w)
	assert.Same(t, parent, b.Parent)

	clone := CloneDeep(parent)
	assert.Equal(t, OuterHTML(parent), OuterHTML(clone))

	Rename(b, "strong")
	assert.Equal(t, "<div>a<strong></strong>c</div>", OuterHTML(parent))
	assert.Same(t, parent, ClosestTag(b, nil, "div"))
}

func TestInnerHTMLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"text", "hello", "hello"},
		{"bold", "<b>hi</b> there", "<b>hi</b> there"},
		{"implied close", "<p>one<p>two", "<p>one</p><p>two</p>"},
		{"nested list", "<ul><li>a<ul><li>b</li></ul></li></ul>", "<ul><li>a<ul><li>b</li></ul></li></ul>"},
		{"table", "<table><tr><td>1</td></tr></table>", "<table><tbody><tr><td>1</td></tr></tbody></table>"},
		{"entities", "a &amp; b &lt;", "a &amp; b &lt;"},
		{"single quotes", "<a href='x'>l</a>", `<a href="x">l</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHTML(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			el := NewElement("div")
			require.NoError(t, SetInnerHTML(el, tt.in))
			assert.Equal(t, got, InnerHTML(el))

			again, err := NormalizeHTML(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalisation must be idempotent")
		})
	}
}

func TestSetInnerHTMLErrors(t *testing.T) {
	assert.ErrorIs(t, SetInnerHTML(nil, "x"), ErrNilNode)
	assert.ErrorIs(t, SetInnerHTML(NewText("t"), "x"), ErrNotElement)
}

func TestValue(t *testing.T) {
	ta := NewElement("textarea")
	SetValue(ta, "<b>x</b>")
	assert.Equal(t, "<b>x</b>", Value(ta))
	assert.Equal(t, "<textarea>&lt;b&gt;x&lt;/b&gt;</textarea>", OuterHTML(ta))

	in := NewElement("input")
	SetValue(in, "v")
	assert.Equal(t, "v", GetAttr(in, "value"))
	assert.True(t, IsFormField(in))
}

func TestDispatchBubbling(t *testing.T) {
	doc := mustParse(t, `<div id="outer"><span id="inner">x</span></div>`)
	outer, inner := doc.Query("#outer"), doc.Query("#inner")

	var order []string
	doc.AddEventListener(inner, "click", func(ev *Event) {
		order = append(order, "inner")
		assert.Same(t, inner, ev.Target)
	})
	doc.AddEventListener(outer, "click", func(ev *Event) {
		order = append(order, "outer")
		assert.Same(t, outer, ev.CurrentTarget)
	})
	doc.AddEventListener(nil, "click", func(ev *Event) {
		order = append(order, "document")
		ev.PreventDefault()
	})

	assert.False(t, doc.Click(inner), "document listener prevented default")
	assert.Equal(t, []string{"inner", "outer", "document"}, order)
}

func TestDispatchStopPropagation(t *testing.T) {
	doc := mustParse(t, `<div id="outer"><span id="inner">x</span></div>`)
	inner := doc.Query("#inner")

	outerCalled := false
	doc.AddEventListener(inner, "keydown", func(ev *Event) { ev.StopPropagation() })
	doc.AddEventListener(doc.Query("#outer"), "keydown", func(ev *Event) { outerCalled = true })

	ev := NewKeyEvent(EventKeydown, key.NewEvent("k", key.ModCtrl))
	doc.Dispatch(inner, ev)
	assert.False(t, outerCalled)
	assert.True(t, ev.PropagationStopped())
}

func TestRemoveEventListener(t *testing.T) {
	doc := NewDocument()
	body := doc.Body()

	var second ListenerID
	calls := 0
	doc.AddEventListener(body, "input", func(*Event) { doc.RemoveEventListener(second) })
	second = doc.AddEventListener(body, "input", func(*Event) { calls++ })

	assert.Equal(t, 2, doc.ListenerCount(body, "input"))
	doc.Dispatch(body, NewEvent("input"))
	assert.Equal(t, 0, calls, "listener removed mid-dispatch must not run")
	assert.Equal(t, 1, doc.ListenerCount(body, ""))
	assert.False(t, doc.RemoveEventListener(second))
	assert.Equal(t, ListenerID(0), doc.AddEventListener(body, "input", nil))
}

func TestFocus(t *testing.T) {
	doc := mustParse(t, `<div id="a"></div><div id="b"></div>`)
	a, b := doc.Query("#a"), doc.Query("#b")

	var events []string
	record := func(name string) Listener {
		return func(ev *Event) { events = append(events, name+":"+ev.Type) }
	}
	doc.AddEventListener(a, EventFocus, record("a"))
	doc.AddEventListener(a, EventBlur, record("a"))
	doc.AddEventListener(b, EventFocus, record("b"))

	doc.Focus(a)
	doc.Focus(a)
	doc.Focus(b)
	assert.Equal(t, []string{"a:focus", "a:blur", "b:focus"}, events)
	assert.True(t, doc.HasFocus(b))

	doc.Blur(a)
	assert.Same(t, b, doc.ActiveElement())
	doc.Blur(b)
	assert.Nil(t, doc.ActiveElement())
}

func TestSelectionChangeEvents(t *testing.T) {
	doc := mustParse(t, `<p id="p">hello world</p>`)
	text := doc.Query("#p").FirstChild

	changes := 0
	doc.AddEventListener(nil, EventSelectionChange, func(*Event) { changes++ })

	sel := doc.Selection()
	sel.SetRange(Span(text, 0, text, 5))
	assert.Equal(t, 1, changes)
	assert.Equal(t, "hello", sel.String())
	assert.Equal(t, 1, sel.RangeCount())

	sel.SetRange(Span(text, 0, text, 5))
	assert.Equal(t, 1, changes, "setting an identical range is not a change")

	sel.AddRange(Caret(text, 1))
	r, _ := sel.Range()
	assert.Equal(t, 5, r.EndOffset, "AddRange is ignored while a range exists")

	err := doc.Write(func() error {
		sel.Collapse(text, 2)
		sel.Collapse(text, 3)
		assert.Equal(t, 1, changes, "no events while writing")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, changes, "coalesced into one event after Write")

	sel.RemoveAllRanges()
	assert.Equal(t, 3, changes)
	assert.True(t, sel.IsCollapsed())
	assert.Nil(t, sel.AnchorNode())
}

func TestRangeText(t *testing.T) {
	doc := mustParse(t, `<p id="p">ab<b>cd</b>ef</p>`)
	p := doc.Query("#p")
	ab, cd, ef := p.FirstChild, p.FirstChild.NextSibling.FirstChild, p.LastChild

	tests := []struct {
		name string
		r    Range
		want string
	}{
		{"within one node", Span(ab, 1, ab, 2), "b"},
		{"across nodes", Span(ab, 1, ef, 1), "bcde"},
		{"element offsets", Span(p, 1, p, 3), "cdef"},
		{"contents", ContentsOf(p), "abcdef"},
		{"inside bold", Span(cd, 0, cd, 2), "cd"},
		{"invalid", Span(ab, 0, ab, 99), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangeText(tt.r))
		})
	}
}

func TestComparePoints(t *testing.T) {
	doc := mustParse(t, `<p id="p">ab<b>cd</b>ef</p>`)
	p := doc.Query("#p")
	ab := p.FirstChild
	cd := p.FirstChild.NextSibling.FirstChild

	assert.Equal(t, -1, ComparePoints(ab, 1, cd, 0))
	assert.Equal(t, 1, ComparePoints(cd, 0, ab, 2))
	assert.Equal(t, -1, ComparePoints(p, 1, cd, 0))
	assert.Equal(t, 1, ComparePoints(p, 2, cd, 2))
	assert.Equal(t, 0, ComparePoints(cd, 1, cd, 1))
}

func TestRangeValidity(t *testing.T) {
	p := NewElement("p")
	txt := NewText("abc")
	p.AppendChild(txt)

	assert.True(t, Caret(txt, 3).Valid())
	assert.False(t, Caret(txt, 4).Valid())
	assert.True(t, ContentsOf(p).Within(p))
	assert.Same(t, p, Span(p, 0, txt, 1).CommonAncestor())

	other := NewElement("div")
	assert.False(t, Caret(other, 0).Within(p))
	assert.Equal(t, html.ElementNode, p.Type)
}
