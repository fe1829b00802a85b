package key

import "github.com/gdamore/tcell/v2"

// FromTcell converts a terminal key event into an Event so terminal hosts can
// drive the same shortcut tables as graphical ones. Control-letter keys
// (tcell.KeyCtrlB and friends) become the letter with ModCtrl set.
func FromTcell(ev *tcell.EventKey) *Event {
	if ev == nil {
		return nil
	}
	mods := fromTcellMod(ev.Modifiers())

	k := ev.Key()
	if k == tcell.KeyRune {
		r := ev.Rune()
		return &Event{Key: string(r), Modifiers: mods}
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ && k != tcell.KeyTab && k != tcell.KeyEnter && k != tcell.KeyBackspace {
		letter := rune('a' + int(k-tcell.KeyCtrlA))
		return &Event{Key: string(letter), Modifiers: mods.With(ModCtrl)}
	}
	if k == tcell.KeyBacktab {
		mods = mods.With(ModShift)
	}
	if name, ok := tcellNames[k]; ok {
		return &Event{Key: name, Modifiers: mods}
	}
	return &Event{Key: tcell.KeyNames[k], Modifiers: mods}
}

func fromTcellMod(m tcell.ModMask) Modifier {
	var mods Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(ModMeta)
	}
	return mods
}

var tcellNames = map[tcell.Key]string{
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Tab",
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Escape",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
}
