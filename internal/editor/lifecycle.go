package editor

import (
	"fmt"
	"runtime/debug"
	"strconv"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/plugin"
)

// Init builds the scaffold, attaches native listeners, mounts the
// configured plugins, loads the target's content and emits editor.init.
// Calling Init on a live editor logs a warning and does nothing. An
// editor cannot be initialised again after Destroy.
//
// If a plugin fails to mount, everything Init set up is torn down and
// the error is returned.
func (e *Editor) Init() error {
	switch {
	case e.destroyed:
		return ErrDestroyed
	case e.initialized:
		e.logger.Warn("editor already initialized")
		return nil
	}

	// 1. Scaffold
	if err := e.buildScaffold(); err != nil {
		return &InitError{Stage: "scaffold", Err: err}
	}
	e.exec = e.newExecutor(e.doc, e.editable)

	// 2. Native listeners
	e.attachHandlers()

	// 3. History, before plugins so undo and redo can reach it.
	if e.opts.HistorySize >= 0 {
		e.history = history.New(e, e.bus,
			history.WithMaxSize(e.opts.HistorySize),
			history.WithClock(e.clock),
			history.WithLogger(e.logger.WithComponent("history")),
		)
	}

	// 4. Plugins
	if len(e.opts.Plugins) > 0 {
		if err := e.mountPlugins(e.opts.Plugins); err != nil {
			e.teardown()
			return &InitError{Stage: "plugins", Err: err}
		}
	}

	// 5. Initial content
	initial := dom.Value(e.target)
	if !dom.IsFormField(e.target) {
		initial = dom.InnerHTML(e.target)
	}
	if err := e.SetContent(initial); err != nil {
		e.teardown()
		return &InitError{Stage: "content", Err: err}
	}
	if e.history != nil {
		e.history.Sync()
	}

	if e.opts.Placeholder != "" {
		dom.SetAttr(e.editable, "data-placeholder", e.opts.Placeholder)
	}
	if e.opts.Focus {
		e.Focus()
	}

	e.initialized = true
	e.logger.Debug("editor initialized", "plugins", len(e.order))

	e.callback("onInit", func() {
		if e.opts.Callbacks.OnInit != nil {
			e.opts.Callbacks.OnInit()
		}
	})
	e.bus.Emit(event.TopicInit)
	return nil
}

// buildScaffold hides the target and inserts the wrapper, toolbar and
// editable region after it.
func (e *Editor) buildScaffold() error {
	if e.target.Parent == nil {
		return ErrTargetDetached
	}

	e.targetDisplay = dom.Style(e.target, "display")
	dom.SetStyle(e.target, "display", "none")

	e.wrapper = dom.NewElement("div")
	dom.AddClass(e.wrapper, "asteronote-editor")
	dom.SetAttr(e.wrapper, "data-editor-id", e.id)

	e.toolbar = dom.NewElement("div")
	dom.AddClass(e.toolbar, "asteronote-toolbar", "d-flex", "flex-wrap")
	dom.SetAttr(e.toolbar, "role", "toolbar")
	dom.SetAttr(e.toolbar, "aria-label", "Editor toolbar")
	e.mapToolbarSlots()

	e.editable = dom.NewElement("div")
	dom.AddClass(e.editable, "asteronote-editable")
	dom.SetAttr(e.editable, "contenteditable", "true")
	if e.opts.MinHeight > 0 {
		dom.SetStyle(e.editable, "min-height", px(e.opts.MinHeight))
	}
	if e.opts.MaxHeight > 0 {
		dom.SetStyle(e.editable, "max-height", px(e.opts.MaxHeight))
	}
	if e.opts.Height > 0 {
		dom.SetStyle(e.editable, "height", px(e.opts.Height))
	}
	dom.SetStyle(e.editable, "overflow", "auto")
	dom.SetStyle(e.editable, "outline", "none")
	if e.opts.TabSize > 0 {
		dom.SetStyle(e.editable, "tab-size", strconv.Itoa(e.opts.TabSize))
	}

	e.wrapper.AppendChild(e.toolbar)
	e.wrapper.AppendChild(e.editable)
	return e.doc.Write(func() error {
		dom.InsertAfter(e.target, e.wrapper)
		return nil
	})
}

// mapToolbarSlots points every configured action, and the command names
// its short form stands for, at the toolbar container.
func (e *Editor) mapToolbarSlots() {
	e.slots = make(map[string]*html.Node)
	for _, action := range e.opts.Toolbar {
		e.slots[action] = e.toolbar
		if alias, ok := toolbarAliases[action]; ok {
			e.slots[alias] = e.toolbar
		}
	}
}

func px(n int) string {
	return strconv.Itoa(n) + "px"
}

// attachHandlers wires the editable region's native events and the
// document-wide selectionchange.
func (e *Editor) attachHandlers() {
	listen := func(target *html.Node, typ string, fn dom.Listener) {
		e.listeners = append(e.listeners, e.doc.AddEventListener(target, typ, fn))
	}
	listen(e.editable, dom.EventInput, e.handleInput)
	listen(e.editable, dom.EventFocus, e.handleFocus)
	listen(e.editable, dom.EventBlur, e.handleBlur)
	listen(e.editable, dom.EventKeydown, e.handleKeydown)
	listen(e.editable, dom.EventKeyup, e.handleKeyup)
	listen(e.editable, dom.EventMouseup, e.handleMouseup)
	listen(e.editable, dom.EventPaste, e.handlePaste)
	listen(nil, dom.EventSelectionChange, e.handleSelectionChange)
}

func (e *Editor) detachHandlers() {
	for _, id := range e.listeners {
		e.doc.RemoveEventListener(id)
	}
	e.listeners = nil
}

// Destroy writes the content back to the target, destroys every plugin in
// reverse mount order, detaches native listeners, clears the bus, removes
// the scaffold and shows the target again. editor.destroy is delivered to
// the handlers subscribed before the bus was cleared. Destroying an
// editor that is not initialised does nothing.
//
// Teardown always completes; the returned error joins plugin teardown
// failures for reporting.
func (e *Editor) Destroy() error {
	if !e.initialized {
		return nil
	}

	e.updateOriginal()
	err := e.teardown()

	final := e.bus.Snapshot(event.TopicDestroy)
	e.bus.RemoveAllListeners()

	e.initialized = false
	e.destroyed = true
	e.logger.Debug("editor destroyed")

	e.callback("onDestroy", func() {
		if e.opts.Callbacks.OnDestroy != nil {
			e.opts.Callbacks.OnDestroy()
		}
	})
	final.Emit()
	return err
}

// teardown undoes Init's setup steps.
func (e *Editor) teardown() error {
	err := e.registry.DestroyAll()
	e.plugins = make(map[string]plugin.Plugin)
	e.order = nil
	e.counts = make(map[string]int)

	if e.history != nil {
		e.history.Close()
	}
	e.detachHandlers()

	_ = e.doc.Write(func() error {
		if e.wrapper != nil {
			dom.Remove(e.wrapper)
		}
		dom.SetStyle(e.target, "display", e.targetDisplay)
		return nil
	})
	if e.HasFocus() {
		e.Blur()
	}
	return err
}

// callback runs a user callback, logging a panic instead of propagating
// it.
func (e *Editor) callback(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("callback panicked", fmt.Errorf("%v", r),
				"callback", name, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
