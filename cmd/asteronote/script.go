package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/asteronote/internal/editor"
	"github.com/dshills/asteronote/internal/key"
)

// Script errors.
var (
	ErrUnknownStep = errors.New("unknown script step")
	ErrStepFailed  = errors.New("script step failed")
)

// A command script is a line-oriented list of editor steps. Blank lines
// and lines starting with # are ignored.
//
//	select TEXT         select the first occurrence of TEXT
//	caret-end           collapse the caret to the end of the content
//	exec NAME [VALUE]   run an editor command
//	click ACTION        click a toolbar button
//	key COMBO           press a key combination such as Ctrl+B
//	type TEXT           type TEXT at the caret
//	paste TEXT          paste TEXT at the caret
//	undo | redo         step the history
type step struct {
	line int
	verb string
	arg  string
}

func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		verb = strings.ToLower(verb)
		switch verb {
		case "select", "exec", "click", "key", "type", "paste":
			if strings.TrimSpace(arg) == "" {
				return nil, fmt.Errorf("line %d: %s needs an argument", n, verb)
			}
		case "caret-end", "undo", "redo":
		default:
			return nil, fmt.Errorf("line %d: %w %q", n, ErrUnknownStep, verb)
		}
		steps = append(steps, step{line: n, verb: verb, arg: strings.TrimSpace(arg)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// run applies steps in order, settling the session after each one, and
// stops at the first failure.
func (ss *session) run(steps []step) error {
	for _, s := range steps {
		if err := s.apply(ss.ed); err != nil {
			return fmt.Errorf("line %d: %s: %w", s.line, s.verb, err)
		}
		ss.settle()
		ss.ed.Logger().Debug("script step", "line", s.line, "step", s.verb)
	}
	return nil
}

func (s step) apply(ed *editor.Editor) error {
	switch s.verb {
	case "select":
		if !ed.Select(s.arg) {
			return fmt.Errorf("%w: %q not found", ErrStepFailed, s.arg)
		}
	case "caret-end":
		ed.PlaceCaretAtEnd()
	case "exec":
		name, value, _ := strings.Cut(s.arg, " ")
		return ed.ExecCommand(name, strings.TrimSpace(value))
	case "click":
		if !ed.ClickToolbar(s.arg) {
			return fmt.Errorf("%w: no toolbar button %q", ErrStepFailed, s.arg)
		}
	case "key":
		k, err := key.ParseCombo(s.arg)
		if err != nil {
			return err
		}
		// Combos are written with Ctrl as the primary modifier.
		if k.Modifiers.HasCtrl() {
			k.Modifiers = k.Modifiers.Without(key.ModCtrl).With(ed.Platform().Primary())
		}
		return ed.PressKey(k)
	case "type":
		return ed.TypeText(s.arg)
	case "paste":
		return ed.Paste(s.arg)
	case "undo", "redo":
		h := ed.History()
		if h == nil {
			return fmt.Errorf("%w: history is disabled", ErrStepFailed)
		}
		if s.verb == "undo" {
			return h.Undo()
		}
		return h.Redo()
	}
	return nil
}
