package plugins

import (
	"fmt"
	"strconv"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// MaxHeadingLevel is the deepest heading the heading plugin applies.
const MaxHeadingLevel = 6

// HeadingPlugin turns the current block into a heading or back into a
// paragraph. The button cycles paragraph, h1, h2, h3 and back;
// Ctrl+Alt+0 through Ctrl+Alt+6 pick a level directly.
type HeadingPlugin struct {
	*plugin.Base
}

// Heading returns the heading class.
func Heading() plugin.Class {
	return newClass(NameHeading, func(base *plugin.Base) plugin.Plugin {
		return &HeadingPlugin{Base: base}
	})
}

// Init adds the button, the level shortcuts and the state sync.
func (p *HeadingPlugin) Init() error {
	if _, err := p.AddButton(plugin.Button{
		Name:      "heading",
		Icon:      `<i class="ri-heading"></i>`,
		Tooltip:   "Heading",
		ClassName: "asteronote-btn-heading",
		Callback:  func(*dom.Event) { p.apply(nextHeading(p.Level())) },
	}); err != nil {
		return err
	}
	for level := 0; level <= MaxHeadingLevel; level++ {
		level := level
		if err := p.AddShortcut("Ctrl+Alt+"+strconv.Itoa(level), func(*dom.Event) { p.apply(level) }); err != nil {
			return err
		}
	}
	if err := watchSelection(p.Base, p.UpdateButtonState); err != nil {
		return err
	}
	p.UpdateButtonState()
	return nil
}

func nextHeading(level int) int {
	if level >= 3 {
		return 0
	}
	return level + 1
}

func (p *HeadingPlugin) apply(level int) {
	if err := p.SetLevel(level); err != nil {
		p.Logger().Debug("heading failed", "level", level, "error", err.Error())
	}
}

// SetLevel formats the current block as h<level>, or as a paragraph for
// level 0, and emits plugin.heading.heading-changed with the level.
func (p *HeadingPlugin) SetLevel(level int) error {
	if level < 0 || level > MaxHeadingLevel {
		return fmt.Errorf("%w: heading level %d", command.ErrInvalidValue, level)
	}
	tag := "p"
	if level > 0 {
		tag = "h" + strconv.Itoa(level)
	}
	if err := p.ExecCommand(command.FormatBlock, "<"+tag+">"); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent("heading-changed", level)
	return nil
}

// Level returns the heading level of the current block, 0 for anything
// that is not a heading.
func (p *HeadingPlugin) Level() int {
	tag := p.QueryValue(command.FormatBlock)
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// UpdateButtonState marks the button active inside a heading and shows
// the level on it.
func (p *HeadingPlugin) UpdateButtonState() {
	level := p.Level()
	p.SetButtonActive("heading", level > 0)
	if el := p.Button("heading"); el != nil {
		if level > 0 {
			dom.SetAttr(el, "data-level", strconv.Itoa(level))
		} else {
			dom.RemoveAttr(el, "data-level")
		}
	}
}

// BlockquotePlugin wraps the current block in a quote or unwraps it.
type BlockquotePlugin struct {
	*plugin.Base
}

// Blockquote returns the blockquote class.
func Blockquote() plugin.Class {
	return newClass(NameBlockquote, func(base *plugin.Base) plugin.Plugin {
		return &BlockquotePlugin{Base: base}
	})
}

// Init adds the button and the state sync.
func (p *BlockquotePlugin) Init() error {
	if _, err := p.AddButton(plugin.Button{
		Name:    "blockquote",
		Icon:    `<i class="ri-double-quotes-l"></i>`,
		Tooltip: "Blockquote",
		Callback: func(*dom.Event) {
			if err := p.Toggle(); err != nil {
				p.Logger().Debug("blockquote failed", "error", err.Error())
			}
		},
	}); err != nil {
		return err
	}
	if err := watchSelection(p.Base, p.UpdateButtonState); err != nil {
		return err
	}
	p.UpdateButtonState()
	return nil
}

// IsActive reports whether the caret is inside a quote.
func (p *BlockquotePlugin) IsActive() bool {
	return p.QueryValue(command.FormatBlock) == "blockquote"
}

// Toggle quotes the current block, or turns a quote back into a
// paragraph, and emits plugin.blockquote.toggled with the new state.
func (p *BlockquotePlugin) Toggle() error {
	tag := "<blockquote>"
	active := !p.IsActive()
	if !active {
		tag = "<p>"
	}
	if err := p.ExecCommand(command.FormatBlock, tag); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent(event.PluginToggled, active)
	return nil
}

// UpdateButtonState mirrors IsActive onto the button.
func (p *BlockquotePlugin) UpdateButtonState() {
	p.SetButtonActive("blockquote", p.IsActive())
}

// Alignment values accepted by AlignPlugin.Apply.
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

var alignCommands = map[string]string{
	AlignLeft:    command.JustifyLeft,
	AlignCenter:  command.JustifyCenter,
	AlignRight:   command.JustifyRight,
	AlignJustify: command.JustifyFull,
}

var alignCycle = []string{AlignLeft, AlignCenter, AlignRight, AlignJustify}

// AlignPlugin sets block alignment and indentation.
type AlignPlugin struct {
	*plugin.Base
}

// Align returns the align class.
func Align() plugin.Class {
	return newClass(NameAlign, func(base *plugin.Base) plugin.Plugin {
		return &AlignPlugin{Base: base}
	})
}

// Init adds the button, which cycles through the alignments, and the
// alignment and indentation shortcuts.
func (p *AlignPlugin) Init() error {
	if _, err := p.AddButton(plugin.Button{
		Name:      "align",
		Icon:      `<i class="ri-align-left"></i>`,
		Tooltip:   "Align",
		ClassName: "asteronote-btn-align",
		Callback:  func(*dom.Event) { p.apply(p.next()) },
	}); err != nil {
		return err
	}

	bindings := []struct {
		combo string
		fn    func()
	}{
		{"Ctrl+Shift+L", func() { p.apply(AlignLeft) }},
		{"Ctrl+Shift+E", func() { p.apply(AlignCenter) }},
		{"Ctrl+Shift+R", func() { p.apply(AlignRight) }},
		{"Ctrl+Shift+J", func() { p.apply(AlignJustify) }},
		{"Ctrl+[", func() { p.logErr("outdent", p.Outdent()) }},
		{"Ctrl+]", func() { p.logErr("indent", p.Indent()) }},
	}
	for _, b := range bindings {
		fn := b.fn
		if err := p.AddShortcut(b.combo, func(*dom.Event) { fn() }); err != nil {
			return err
		}
	}
	return watchSelection(p.Base, p.UpdateButtonState)
}

func (p *AlignPlugin) next() string {
	cur := p.Current()
	for i, a := range alignCycle {
		if a == cur {
			return alignCycle[(i+1)%len(alignCycle)]
		}
	}
	return AlignLeft
}

func (p *AlignPlugin) apply(align string) {
	p.logErr("align", p.Apply(align))
}

func (p *AlignPlugin) logErr(op string, err error) {
	if err != nil {
		p.Logger().Debug(op+" failed", "error", err.Error())
	}
}

// Current returns the alignment of the current block.
func (p *AlignPlugin) Current() string {
	return p.QueryValue(command.JustifyLeft)
}

// Apply aligns the selected blocks and emits plugin.align.align with the
// value.
func (p *AlignPlugin) Apply(align string) error {
	cmd, ok := alignCommands[align]
	if !ok {
		return fmt.Errorf("%w: alignment %q", command.ErrInvalidValue, align)
	}
	if err := p.ExecCommand(cmd, ""); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent("align", align)
	return nil
}

// Indent indents the selected blocks and emits plugin.align.indented.
func (p *AlignPlugin) Indent() error {
	if err := p.ExecCommand(command.Indent, ""); err != nil {
		return err
	}
	p.EmitEvent("indented")
	return nil
}

// Outdent outdents the selected blocks and emits plugin.align.outdented.
func (p *AlignPlugin) Outdent() error {
	if err := p.ExecCommand(command.Outdent, ""); err != nil {
		return err
	}
	p.EmitEvent("outdented")
	return nil
}

// UpdateButtonState records the current alignment on the button and
// marks it active for anything but left.
func (p *AlignPlugin) UpdateButtonState() {
	cur := p.Current()
	p.SetButtonActive("align", cur != AlignLeft)
	if el := p.Button("align"); el != nil {
		dom.SetAttr(el, "data-align", cur)
	}
}

// HorizontalRulePlugin inserts <hr>.
type HorizontalRulePlugin struct {
	*plugin.Base
}

// HorizontalRule returns the horizontal rule class. Its button is named
// "hr". Ctrl+Enter.
func HorizontalRule() plugin.Class {
	return newClass(NameHorizontalRule, func(base *plugin.Base) plugin.Plugin {
		return &HorizontalRulePlugin{Base: base}
	})
}

// Init adds the button and shortcut.
func (p *HorizontalRulePlugin) Init() error {
	run := func(*dom.Event) {
		if err := p.Insert(); err != nil {
			p.Logger().Debug("insert rule failed", "error", err.Error())
		}
	}
	if _, err := p.AddButton(plugin.Button{
		Name:     "hr",
		Icon:     `<i class="ri-separator"></i>`,
		Tooltip:  "Horizontal Line (Ctrl+Enter)",
		Callback: run,
	}); err != nil {
		return err
	}
	return p.AddShortcut("Ctrl+Enter", run)
}

// Insert adds a rule after the current block and emits
// plugin.horizontalRule.inserted.
func (p *HorizontalRulePlugin) Insert() error {
	if err := p.ExecCommand(command.InsertHorizontalRule, ""); err != nil {
		return err
	}
	p.EmitEvent("inserted")
	return nil
}
