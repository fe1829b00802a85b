package plugins

import (
	"fmt"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/plugin"
)

// Default size of a table inserted from the toolbar button.
const (
	DefaultTableRows = 3
	DefaultTableCols = 3
)

// TablePlugin inserts tables and edits their rows, columns and header
// cells. Every edit first commits pending content to the undo history so
// it can be undone on its own.
type TablePlugin struct {
	*plugin.Base
}

// Table returns the table class.
func Table() plugin.Class {
	return newClass(NameTable, func(base *plugin.Base) plugin.Plugin {
		return &TablePlugin{Base: base}
	})
}

// Init adds the button, which inserts a default sized table, and the
// state sync.
func (p *TablePlugin) Init() error {
	if _, err := p.AddButton(plugin.Button{
		Name:      "table",
		Icon:      `<i class="ri-table-2"></i>`,
		Tooltip:   "Table",
		ClassName: "asteronote-btn-table",
		Callback: func(*dom.Event) {
			if err := p.Insert(DefaultTableRows, DefaultTableCols); err != nil {
				p.Logger().Debug("insert table failed", "error", err.Error())
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

// InTable reports whether the caret is inside a table cell.
func (p *TablePlugin) InTable() bool {
	return p.QueryState(command.InsertTable)
}

// UpdateButtonState marks the button active inside a table.
func (p *TablePlugin) UpdateButtonState() {
	p.SetButtonActive("table", p.InTable())
}

func (p *TablePlugin) checkpoint() {
	if h := p.Host().History(); h != nil {
		h.RecordIfChanged()
	}
}

func (p *TablePlugin) edit(cmd, value, topic string, args ...any) error {
	p.checkpoint()
	if err := p.ExecCommand(cmd, value); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent(topic, args...)
	return nil
}

// Insert adds a rows x cols table and emits
// plugin.table.inserted with the size.
func (p *TablePlugin) Insert(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: table size %dx%d", command.ErrInvalidValue, rows, cols)
	}
	return p.edit(command.InsertTable, fmt.Sprintf("%dx%d", rows, cols), "inserted", rows, cols)
}

// AddRow adds a row "above" or "below" the current one.
func (p *TablePlugin) AddRow(where string) error {
	return p.edit(command.TableAddRow, where, "row-added", where)
}

// AddColumn adds a column "left" or "right" of the current one.
func (p *TablePlugin) AddColumn(where string) error {
	return p.edit(command.TableAddColumn, where, "col-added", where)
}

// DeleteRow removes the current row.
func (p *TablePlugin) DeleteRow() error {
	return p.edit(command.TableDeleteRow, "", "row-deleted")
}

// DeleteColumn removes the current column.
func (p *TablePlugin) DeleteColumn() error {
	return p.edit(command.TableDeleteColumn, "", "col-deleted")
}

// DeleteTable removes the whole table.
func (p *TablePlugin) DeleteTable() error {
	return p.edit(command.TableDelete, "", "table-deleted")
}

// ToggleHeaderRow switches the first row between th and td cells.
func (p *TablePlugin) ToggleHeaderRow() error {
	return p.edit(command.TableToggleHeaderRow, "", "header-row-toggled")
}

// ToggleHeaderColumn switches the first column between th and td cells.
func (p *TablePlugin) ToggleHeaderColumn() error {
	return p.edit(command.TableToggleHeaderColumn, "", "header-col-toggled")
}
