package command

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
)

const (
	maxTableSize     = 100
	defaultTableSize = 2
)

// tableContext is the cell holding the selection and its row and table.
type tableContext struct {
	cell  *html.Node
	row   *html.Node
	table *html.Node
}

func (e *DocumentExecutor) tableAt(r dom.Range) (tableContext, error) {
	cell := dom.ClosestTag(r.StartContainer, e.root, "td", "th")
	if cell == nil || !dom.IsElement(cell.Parent, "tr") {
		return tableContext{}, ErrNotInTable
	}
	table := dom.ClosestTag(cell.Parent, e.root, "table")
	if table == nil {
		return tableContext{}, ErrNotInTable
	}
	return tableContext{cell: cell, row: cell.Parent, table: table}, nil
}

// parseTableSize parses "RxC". An empty value yields the default size;
// dimensions are clamped to 1..100.
func parseTableSize(value string) (int, int, error) {
	value = strings.ToLower(strings.ReplaceAll(value, " ", ""))
	if value == "" {
		return defaultTableSize, defaultTableSize, nil
	}
	rs, cs, ok := strings.Cut(value, "x")
	if !ok {
		return 0, 0, ErrInvalidValue
	}
	rows, err1 := strconv.Atoi(rs)
	cols, err2 := strconv.Atoi(cs)
	if err1 != nil || err2 != nil {
		return 0, 0, ErrInvalidValue
	}
	return clamp(rows), clamp(cols), nil
}

func clamp(n int) int {
	return max(1, min(maxTableSize, n))
}

func newCell(tag string) *html.Node {
	cell := dom.NewElement(tag)
	p := dom.NewElement("p")
	placeholder(p)
	cell.AppendChild(p)
	return cell
}

func (e *DocumentExecutor) insertTable(r dom.Range, value string) error {
	rows, cols, err := parseTableSize(value)
	if err != nil {
		return err
	}

	table := dom.NewElement("table")
	dom.AddClass(table, "table", "table-bordered")
	tbody := dom.NewElement("tbody")
	for i := 0; i < rows; i++ {
		tr := dom.NewElement("tr")
		for j := 0; j < cols; j++ {
			tr.AppendChild(newCell("td"))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)

	e.insertNodes(r, []*html.Node{table})
	e.caretInCell(firstCell(table))
	return nil
}

func firstCell(n *html.Node) *html.Node {
	cell, _ := dom.QueryIn(n, "td")
	if th, _ := dom.QueryIn(n, "th"); th != nil && (cell == nil || dom.ComparePoints(th, 0, cell, 0) < 0) {
		return th
	}
	return cell
}

// caretInCell collapses the selection to the start of cell's first
// paragraph, or of the cell itself.
func (e *DocumentExecutor) caretInCell(cell *html.Node) {
	if cell == nil {
		return
	}
	target := cell
	if p := cell.FirstChild; dom.IsElement(p, "p") {
		target = p
	}
	e.setRange(dom.Caret(target, 0))
}

func cells(row *html.Node) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, "td", "th") {
			out = append(out, c)
		}
	}
	return out
}

func cellIndex(cell *html.Node) int {
	for i, c := range cells(cell.Parent) {
		if c == cell {
			return i
		}
	}
	return -1
}

func rows(table *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(table, func(n *html.Node) bool {
		if dom.IsElement(n, "tr") {
			out = append(out, n)
			return false
		}
		return n == table || dom.IsElement(n, "thead", "tbody", "tfoot")
	})
	return out
}

func (e *DocumentExecutor) tableAddRow(r dom.Range, value string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	tr := dom.NewElement("tr")
	for range cells(ctx.row) {
		tr.AppendChild(newCell("td"))
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "above":
		dom.InsertBefore(ctx.row, tr)
	case "", "below":
		dom.InsertAfter(ctx.row, tr)
	default:
		return ErrInvalidValue
	}
	return nil
}

func (e *DocumentExecutor) tableAddColumn(r dom.Range, value string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	ref := cellIndex(ctx.cell)
	idx := ref
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left":
	case "", "right":
		idx++
	default:
		return ErrInvalidValue
	}

	for _, row := range rows(ctx.table) {
		rc := cells(row)
		tag := "td"
		if ref < len(rc) && rc[ref].Data == "th" {
			tag = "th"
		}
		cell := newCell(tag)
		if idx < len(rc) {
			dom.InsertBefore(rc[idx], cell)
		} else {
			row.AppendChild(cell)
		}
	}
	return nil
}

func (e *DocumentExecutor) tableDeleteRow(r dom.Range, _ string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	all := rows(ctx.table)
	if len(all) <= 1 {
		e.removeTable(ctx.table)
		return nil
	}

	i := 0
	for i < len(all) && all[i] != ctx.row {
		i++
	}
	neighbour := all[max(i-1, 0)]
	if i+1 < len(all) {
		neighbour = all[i+1]
	}
	dom.Remove(ctx.row)
	if rc := cells(neighbour); len(rc) > 0 {
		e.caretInCell(rc[0])
	}
	return nil
}

func (e *DocumentExecutor) tableDeleteColumn(r dom.Range, _ string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	idx := cellIndex(ctx.cell)
	remaining := 0
	for _, row := range rows(ctx.table) {
		rc := cells(row)
		if idx < len(rc) {
			dom.Remove(rc[idx])
		}
		remaining += len(rc) - 1
	}
	if remaining <= 0 {
		e.removeTable(ctx.table)
		return nil
	}
	if rc := cells(ctx.row); len(rc) > 0 {
		e.caretInCell(rc[min(idx, len(rc)-1)])
	}
	return nil
}

func (e *DocumentExecutor) tableDelete(r dom.Range, _ string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	e.removeTable(ctx.table)
	return nil
}

// removeTable deletes the table and leaves the caret where it stood.
func (e *DocumentExecutor) removeTable(table *html.Node) {
	parent, idx := table.Parent, dom.Index(table)
	dom.Remove(table)
	if parent == e.root && e.root.FirstChild == nil {
		p := dom.NewElement("p")
		placeholder(p)
		e.root.AppendChild(p)
		e.setRange(dom.Caret(p, 0))
		return
	}
	e.setRange(dom.Caret(parent, min(idx, dom.ChildCount(parent))))
}

func (e *DocumentExecutor) tableToggleHeaderRow(r dom.Range, _ string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	all := rows(ctx.table)
	if len(all) == 0 {
		return nil
	}
	for _, c := range cells(all[0]) {
		toggleCellTag(c)
	}
	return nil
}

func (e *DocumentExecutor) tableToggleHeaderColumn(r dom.Range, _ string) error {
	ctx, err := e.tableAt(r)
	if err != nil {
		return err
	}
	for _, row := range rows(ctx.table) {
		if rc := cells(row); len(rc) > 0 {
			toggleCellTag(rc[0])
		}
	}
	return nil
}

func toggleCellTag(c *html.Node) {
	if c.Data == "td" {
		dom.Rename(c, "th")
	} else {
		dom.Rename(c, "td")
	}
	placeholderCell(c)
}

func placeholderCell(c *html.Node) {
	if c.FirstChild == nil {
		p := dom.NewElement("p")
		placeholder(p)
		c.AppendChild(p)
	}
}
