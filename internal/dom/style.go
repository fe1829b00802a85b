package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Classes returns n's class list.
func Classes(n *html.Node) []string {
	return strings.Fields(GetAttr(n, "class"))
}

// HasClass reports whether n's class list contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range Classes(n) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends names that are not already present.
func AddClass(n *html.Node, names ...string) {
	list := Classes(n)
	for _, name := range names {
		for _, part := range strings.Fields(name) {
			if !contains(list, part) {
				list = append(list, part)
			}
		}
	}
	SetAttr(n, "class", strings.Join(list, " "))
}

// RemoveClass drops names from the class list, removing the attribute when
// it becomes empty.
func RemoveClass(n *html.Node, names ...string) {
	var out []string
	for _, c := range Classes(n) {
		if !contains(names, c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// ToggleClass adds or removes name and reports whether it is now present.
func ToggleClass(n *html.Node, name string, on bool) bool {
	if on {
		AddClass(n, name)
	} else {
		RemoveClass(n, name)
	}
	return on
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type declaration struct {
	prop, val string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop, val})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.val+";")
	}
	return strings.Join(parts, " ")
}

// Style returns the inline style value of prop, or "".
func Style(n *html.Node, prop string) string {
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(GetAttr(n, "style")) {
		if d.prop == prop {
			return d.val
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it, and
// the style attribute is dropped once no declarations remain.
func SetStyle(n *html.Node, prop, val string) {
	if n == nil {
		return
	}
	prop = strings.ToLower(prop)
	decls := parseStyle(GetAttr(n, "style"))
	found := false
	out := decls[:0]
	for _, d := range decls {
		if d.prop == prop {
			found = true
			if val == "" {
				continue
			}
			d.val = val
		}
		out = append(out, d)
	}
	if !found && val != "" {
		out = append(out, declaration{prop, val})
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", formatStyle(out))
}
