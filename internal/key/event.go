package key

import (
	"runtime"
	"strings"
)

// Platform selects which physical modifier acts as the primary shortcut modifier.
type Platform int

const (
	// PlatformOther uses Control as the primary modifier.
	PlatformOther Platform = iota
	// PlatformMac uses Command (Meta) as the primary modifier.
	PlatformMac
)

// CurrentPlatform returns the platform family of the running process.
func CurrentPlatform() Platform {
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return PlatformMac
	}
	return PlatformOther
}

// String returns the platform name.
func (p Platform) String() string {
	if p == PlatformMac {
		return "mac"
	}
	return "other"
}

// Primary returns the modifier that "Ctrl" in a combo stands for.
func (p Platform) Primary() Modifier {
	if p == PlatformMac {
		return ModMeta
	}
	return ModCtrl
}

// Event is a single key press as reported by the host.
type Event struct {
	// Key is the logical key value: a character ("b", "K", "1") or a
	// named key ("Tab", "Enter", "Backspace", "ArrowLeft").
	Key string

	// Modifiers contains the modifier keys held during the press.
	Modifiers Modifier
}

// NewEvent creates a key event.
func NewEvent(k string, mods Modifier) *Event {
	return &Event{Key: k, Modifiers: mods}
}

// Combo returns the canonical combo string for the event on the given
// platform, e.g. "Ctrl+Shift+Z". The primary modifier is read from the
// platform's physical key; the other platform's key is ignored.
func (e *Event) Combo(p Platform) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Modifiers.Has(p.Primary()) {
		b.WriteString("Ctrl+")
	}
	if e.Modifiers.HasShift() {
		b.WriteString("Shift+")
	}
	if e.Modifiers.HasAlt() {
		b.WriteString("Alt+")
	}
	b.WriteString(canonicalKey(e.Key))
	return b.String()
}

// Is reports whether the event is the named key regardless of case.
func (e *Event) Is(name string) bool {
	return e != nil && strings.EqualFold(e.Key, name)
}

// canonicalKey upper-cases key names and resolves aliases.
func canonicalKey(k string) string {
	if k == " " {
		return "SPACE"
	}
	up := strings.ToUpper(k)
	if alias, ok := keyAliases[up]; ok {
		return alias
	}
	return up
}

var keyAliases = map[string]string{
	"ESC":    "ESCAPE",
	"RETURN": "ENTER",
	"CR":     "ENTER",
	"BS":     "BACKSPACE",
	"DEL":    "DELETE",
	"LEFT":   "ARROWLEFT",
	"RIGHT":  "ARROWRIGHT",
	"UP":     "ARROWUP",
	"DOWN":   "ARROWDOWN",
	"PGUP":   "PAGEUP",
	"PGDN":   "PAGEDOWN",
}
