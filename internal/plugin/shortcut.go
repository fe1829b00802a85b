package plugin

import (
	"fmt"
	"sort"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/key"
)

// ShortcutFunc handles a matched key combo.
type ShortcutFunc func(ev *dom.Event)

// AddShortcut binds a combo such as "Ctrl+B" or "ctrl+shift+z". "Ctrl"
// stands for Command on macOS. Binding a combo again replaces the handler.
func (b *Base) AddShortcut(combo string, fn ShortcutFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrInvalidShortcut, combo)
	}
	canon, err := key.NormalizeCombo(combo)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.shortcuts[canon] = fn
	b.mu.Unlock()
	return nil
}

// RemoveShortcut unbinds a combo.
func (b *Base) RemoveShortcut(combo string) bool {
	canon, err := key.NormalizeCombo(combo)
	if err != nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.shortcuts[canon]; !ok {
		return false
	}
	delete(b.shortcuts, canon)
	return true
}

// Shortcuts returns the bound combos in canonical form, sorted.
func (b *Base) Shortcuts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.shortcuts))
	for c := range b.shortcuts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HandleShortcut runs the handler bound to ev's combo. A match prevents
// the default action and stops propagation. Disabled or destroyed
// instances match nothing.
func (b *Base) HandleShortcut(ev *dom.Event) bool {
	if ev == nil || ev.Key == nil || !b.live() {
		return false
	}
	combo := ev.Key.Combo(b.host.Platform())
	b.mu.Lock()
	fn, ok := b.shortcuts[combo]
	b.mu.Unlock()
	if !ok {
		return false
	}
	ev.PreventDefault()
	ev.StopPropagation()
	fn(ev)
	return true
}
