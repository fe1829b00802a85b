// Package key models keyboard input for the editor's shortcut system.
//
// A shortcut is identified by a canonical combo string built from the
// modifier flags of a key event and the key itself:
//
//	Ctrl+B
//	Ctrl+Shift+Z
//	Shift+TAB
//
// Modifiers always appear in the fixed order Ctrl, Shift, Alt and the key is
// upper-cased. "Ctrl" names the platform's primary modifier: the Command (Meta)
// key on macOS and the Control key everywhere else, so a plugin that registers
// "Ctrl+B" gets Cmd+B on a Mac without registering it twice.
//
// User supplied combos ("cmd+b", "Control+Shift+z") are brought into canonical
// form with NormalizeCombo before they are stored or compared.
package key
