package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

// MarkdownOption configures FromMarkdown.
type MarkdownOption func(*mdOptions)

type mdOptions struct {
	unsafe     bool
	headingIDs bool
}

// WithRawHTML keeps raw HTML blocks found in the source. By default they
// are dropped.
func WithRawHTML() MarkdownOption {
	return func(o *mdOptions) { o.unsafe = true }
}

// WithHeadingIDs gives every heading a generated id attribute.
func WithHeadingIDs() MarkdownOption {
	return func(o *mdOptions) { o.headingIDs = true }
}

// FromMarkdown renders src to editor markup. Inter-block whitespace the
// renderer emits is removed so the result matches what the editor itself
// serialises.
func FromMarkdown(src []byte, opts ...MarkdownOption) (string, error) {
	var o mdOptions
	for _, opt := range opts {
		opt(&o)
	}

	var popts []parser.Option
	if o.headingIDs {
		popts = append(popts, parser.WithAutoHeadingID())
	}
	var ropts []goldmark.Option
	ropts = append(ropts,
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(popts...),
	)
	if o.unsafe {
		ropts = append(ropts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}
	md := goldmark.New(ropts...)

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdown, err)
	}
	return compact(buf.String())
}

// blockParents hold only element children in editor markup; whitespace
// text directly inside them is layout.
var blockParents = map[string]bool{
	"div": true, "ul": true, "ol": true, "blockquote": true,
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
}

// compact parses markup in a <div> context, drops whitespace-only text
// nodes under block containers and re-serialises.
func compact(markup string) (string, error) {
	root := dom.NewElement("div")
	if err := dom.SetInnerHTML(root, markup); err != nil {
		return "", err
	}
	var drop []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode && n.Parent != nil && blockParents[n.Parent.Data] &&
			strings.TrimSpace(n.Data) == "" {
			drop = append(drop, n)
		}
		return true
	})
	for _, n := range drop {
		dom.Remove(n)
	}
	// Loose lists and cells keep newlines around their first and last child.
	dom.Walk(root, func(n *html.Node) bool {
		if dom.IsElement(n, "pre") {
			return false
		}
		if dom.IsElement(n, "li", "td", "th") {
			trimEdges(n)
		}
		return true
	})
	return dom.InnerHTML(root), nil
}

func trimEdges(n *html.Node) {
	if last := n.LastChild; last != nil && last.Type == html.TextNode {
		last.Data = strings.TrimRight(last.Data, "\n")
		if last.Data == "" {
			dom.Remove(last)
		}
	}
	if first := n.FirstChild; first != nil && first.Type == html.TextNode &&
		strings.TrimSpace(first.Data) == "" && first.NextSibling != nil {
		dom.Remove(first)
	}
}
