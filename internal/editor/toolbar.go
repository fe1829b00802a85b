package editor

// toolbarAliases maps short toolbar names to the command names plugins
// look their slot up by.
var toolbarAliases = map[string]string{
	"ul":   "insertUnorderedList",
	"ol":   "insertOrderedList",
	"link": "createLink",
}

// FlattenToolbar turns a toolbar configuration into a flat action list.
// Items may be action names, lists of names, or the legacy
// [group, [names...]] pairs. Anything else is skipped.
func FlattenToolbar(items []any) []string {
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case []string:
			out = append(out, v...)
		case []any:
			if len(v) >= 2 {
				if group, ok := asList(v[1]); ok {
					out = append(out, group...)
					continue
				}
			}
			for _, x := range v {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func asList(v any) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		return l, true
	case []any:
		out := make([]string, 0, len(l))
		for _, x := range l {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}
