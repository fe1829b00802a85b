package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// selector is one compound selector: tag, #id, .class and [attr] or
// [attr=value] parts in any combination. Combinators are not supported.
type selector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key, val string
	hasVal   bool
}

func parseSelector(s string) (selector, error) {
	s = strings.TrimSpace(s)
	var sel selector
	if s == "" || strings.ContainsAny(s, " >+~,") {
		return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}

	i := 0
	readName := func() string {
		start := i
		for i < len(s) && !strings.ContainsRune("#.[", rune(s[i])) {
			i++
		}
		return s[start:i]
	}

	if s[0] != '#' && s[0] != '.' && s[0] != '[' {
		sel.tag = strings.ToLower(readName())
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			sel.id = readName()
			if sel.id == "" {
				return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
			}
		case '.':
			i++
			c := readName()
			if c == "" {
				return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
			}
			sel.classes = append(sel.classes, c)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
			}
			body := s[i+1 : i+end]
			i += end + 1
			key, val, hasVal := strings.Cut(body, "=")
			key = strings.TrimSpace(key)
			if key == "" {
				return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
			}
			val = strings.Trim(strings.TrimSpace(val), `"'`)
			sel.attrs = append(sel.attrs, attrMatch{key: key, val: val, hasVal: hasVal})
		default:
			return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
		}
	}
	return sel, nil
}

func (sel selector) match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && sel.tag != "*" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && GetAttr(n, "id") != sel.id {
		return false
	}
	for _, c := range sel.classes {
		if !HasClass(n, c) {
			return false
		}
	}
	for _, a := range sel.attrs {
		v, ok := Attr(n, a.key)
		if !ok || (a.hasVal && v != a.val) {
			return false
		}
	}
	return true
}

// Matches reports whether n matches the selector s.
func Matches(n *html.Node, s string) bool {
	sel, err := parseSelector(s)
	if err != nil {
		return false
	}
	return sel.match(n)
}

// QueryIn returns the first descendant of root (root excluded) matching s.
func QueryIn(root *html.Node, s string) (*html.Node, error) {
	sel, err := parseSelector(s)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n != root && sel.match(n) {
			found = n
			return false
		}
		return true
	})
	return found, nil
}

// QueryAllIn returns every descendant of root matching s in document order.
func QueryAllIn(root *html.Node, s string) ([]*html.Node, error) {
	sel, err := parseSelector(s)
	if err != nil {
		return nil, err
	}
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n != root && sel.match(n) {
			out = append(out, n)
		}
		return true
	})
	return out, nil
}
