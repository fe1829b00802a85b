package content

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/editor"
)

func TestFromMarkdown(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"paragraph", "# Title\n\nSome **bold** and *em* text.\n",
			"<h1>Title</h1><p>Some <strong>bold</strong> and <em>em</em> text.</p>"},
		{"tight list", "- a\n- b\n", "<ul><li>a</li><li>b</li></ul>"},
		{"loose list", "- a\n\n- b\n", "<ul><li><p>a</p></li><li><p>b</p></li></ul>"},
		{"strikethrough", "~~gone~~\n", "<p><del>gone</del></p>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |\n",
			"<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>"},
		{"linkify", "see https://example.com\n",
			`<p>see <a href="https://example.com">https://example.com</a></p>`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromMarkdown([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMarkdownCodeBlockKeepsNewlines(t *testing.T) {
	got, err := FromMarkdown([]byte("```\nx := 1\ny := 2\n```\n"))
	require.NoError(t, err)
	assert.Equal(t, "<pre><code>x := 1\ny := 2\n</code></pre>", got)
}

func TestFromMarkdownOptions(t *testing.T) {
	src := []byte("# Hello World\n\n<div class=\"x\">raw</div>\n")

	got, err := FromMarkdown(src)
	require.NoError(t, err)
	assert.NotContains(t, got, `<div class="x">`)
	assert.NotContains(t, got, `id=`)

	got, err = FromMarkdown(src, WithRawHTML(), WithHeadingIDs())
	require.NoError(t, err)
	assert.Contains(t, got, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, got, `<div class="x">raw</div>`)
}

func TestMarkdownIsStableThroughEditor(t *testing.T) {
	markup, err := FromMarkdown([]byte("## Notes\n\n1. one\n2. **two**\n\n> quoted\n"))
	require.NoError(t, err)

	doc, err := dom.Parse(`<div id="t"></div>`)
	require.NoError(t, err)
	ed, err := editor.NewFromSelector(doc, "#t", editor.DefaultOptions(), editor.WithClock(clock.NewMock()))
	require.NoError(t, err)
	require.NoError(t, ed.Init())
	defer ed.Destroy()

	require.NoError(t, ed.SetContent(markup))
	assert.Equal(t, markup, ed.Content())
	assert.Equal(t, "Notes\none\ntwo\nquoted", PlainText(ed.Content()))
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"paragraphs", "<p>hello <b>world</b></p><p>second</p>", "hello world\nsecond"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "a\nb"},
		{"br", "line<br>break", "line\nbreak"},
		{"entities", "<p>a &amp; b</p>", "a & b"},
		{"script", "<script>x()</script><p>y</p>", "y"},
		{"table", "<table><tr><td>a</td><td>b</td></tr><tr><td>1</td><td>2</td></tr></table>", "a\tb\n1\t2"},
		{"whitespace", "<p>  lots   of\n space </p>", "lots of space"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.markup))
		})
	}
}

func TestAnalyze(t *testing.T) {
	st := Analyze("<p>Hello, wörld!</p><p>二 x</p>")
	assert.Equal(t, Stats{Characters: 16, NonSpace: 14, Words: 4, Lines: 2}, st)
	assert.Equal(t, Stats{}, Analyze("<p></p>"))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount(" ... "))
	assert.Equal(t, 3, WordCount("one, two; three."))
	assert.Equal(t, 2, WordCount("don't stop"))
}
