package key

import (
	"errors"
	"fmt"
	"strings"
)

// Combo parse errors.
var (
	ErrEmptyCombo   = errors.New("empty key combo")
	ErrInvalidCombo = errors.New("invalid key combo")
)

// NormalizeCombo brings a user supplied combo into canonical form.
//
// Accepted separators are "+" and "-" ("Ctrl-B"); modifier names are case
// insensitive and Cmd/Meta/Command fold onto the primary modifier, so
// "cmd+b", "Ctrl+b" and "control+B" all normalise to "Ctrl+B". A literal "+"
// key is written as a trailing "+" ("Ctrl++").
func NormalizeCombo(s string) (string, error) {
	ev, err := ParseCombo(s)
	if err != nil {
		return "", err
	}
	return ev.Combo(PlatformOther), nil
}

// ParseCombo parses a combo string into an Event using the PlatformOther
// modifier layout (primary = Ctrl).
func ParseCombo(s string) (*Event, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyCombo
	}

	parts := splitCombo(s)
	keyPart := parts[len(parts)-1]
	if keyPart == "" {
		return nil, fmt.Errorf("%w: %q has no key", ErrInvalidCombo, s)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return nil, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidCombo, p, s)
		}
		if mod == ModMeta {
			mod = ModCtrl
		}
		mods = mods.With(mod)
	}

	if ModifierFromName(keyPart) != ModNone && len(parts) > 1 {
		return nil, fmt.Errorf("%w: %q ends with a modifier", ErrInvalidCombo, s)
	}
	return &Event{Key: keyPart, Modifiers: mods}, nil
}

// splitCombo splits on "+" (or "-" when no "+" separator is present),
// keeping a trailing separator as the key itself.
func splitCombo(s string) []string {
	sep := "+"
	if !strings.Contains(s, "+") && strings.Count(s, "-") > 0 && len(s) > 1 {
		sep = "-"
	}
	if strings.HasSuffix(s, sep+sep) {
		head := strings.Split(strings.TrimSuffix(s, sep+sep), sep)
		return append(head, sep)
	}
	if s == sep {
		return []string{sep}
	}
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
