package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// OuterHTML renders n and its subtree.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}

// InnerHTML renders n's children.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// ParseFragment parses src as the content of an element shaped like ctx.
// A nil ctx parses in a <div> context.
func ParseFragment(src string, ctx *html.Node) ([]*html.Node, error) {
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = NewElement("div")
	}
	return html.ParseFragment(strings.NewReader(src), ctx)
}

// SetInnerHTML replaces n's children with the parsed markup.
func SetInnerHTML(n *html.Node, src string) error {
	if n == nil {
		return ErrNilNode
	}
	if n.Type != html.ElementNode {
		return ErrNotElement
	}
	nodes, err := ParseFragment(src, n)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// NormalizeHTML returns the canonical serialisation of a markup fragment:
// what a browser would hand back after assigning src to a <div>'s
// innerHTML. Two fragments that differ only in host normalisation (quoting,
// entity spelling, implied end tags) normalise to the same string.
func NormalizeHTML(src string) (string, error) {
	ctx := NewElement("div")
	if err := SetInnerHTML(ctx, src); err != nil {
		return "", err
	}
	return InnerHTML(ctx), nil
}
