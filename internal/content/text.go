package content

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms end a line of plain text.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Tr: true, atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Hr: true,
}

// PlainText flattens markup into text. Block elements and <br> become
// line breaks and table cells are separated by tabs. Whitespace inside a
// line collapses to single spaces; <pre> keeps its line breaks. Empty
// lines are dropped.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	pre := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a read error; either way the input is exhausted.
			return tidyLines(b.String())
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			if pre == 0 {
				text = collapseSpace(text)
			}
			b.WriteString(text)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				skip++
			case a == atom.Br:
				b.WriteByte('\n')
			case a == atom.Td || a == atom.Th:
				if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
					b.WriteByte('\t')
				}
			case blockAtoms[a]:
				if a == atom.Pre {
					pre++
				}
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				if skip > 0 {
					skip--
				}
			case blockAtoms[a]:
				if a == atom.Pre && pre > 0 {
					pre--
				}
				b.WriteByte('\n')
			}
		}
	}
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// tidyLines trims each line, squeezes doubled spaces and drops empty lines.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimRightFunc(strings.TrimLeft(l, " "), unicode.IsSpace)
		if strings.Trim(l, "\t") == "" {
			continue
		}
		for strings.Contains(l, "  ") {
			l = strings.ReplaceAll(l, "  ", " ")
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// Stats summarises the text of a fragment.
type Stats struct {
	Characters int `json:"characters" yaml:"characters"`
	NonSpace   int `json:"nonSpace" yaml:"nonSpace"`
	Words      int `json:"words" yaml:"words"`
	Lines      int `json:"lines" yaml:"lines"`
}

// Analyze counts the plain text of markup. Characters are grapheme
// clusters; words are Unicode word segments containing a letter or digit.
func Analyze(markup string) Stats {
	text := PlainText(markup)
	if text == "" {
		return Stats{}
	}
	st := Stats{Lines: strings.Count(text, "\n") + 1}

	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if c := g.Str(); c == "\n" {
			continue
		} else if !strings.ContainsFunc(c, unicode.IsSpace) {
			st.NonSpace++
		}
		st.Characters++
	}

	st.Words = WordCount(text)
	return st
}

// WordCount counts the words of plain text.
func WordCount(text string) int {
	n := 0
	state := -1
	var word string
	for len(text) > 0 {
		word, text, state = uniseg.FirstWordInString(text, state)
		if strings.ContainsFunc(word, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			n++
		}
	}
	return n
}
