package timestats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Row is one entry of the structured report: a node's depth below the
// root, its display label, its elapsed time (HasElapsed is false for
// still-open scopes) and whether it opened a named scope.
type Row struct {
	Depth      int
	Label      string
	Elapsed    time.Duration
	HasElapsed bool
	IsScope    bool
}

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// CollectRows traverses the tree pre-order, children in insertion
// order, and returns one Row per node. The root is not emitted; its
// children are at depth 1.
func (p *Profiler) CollectRows() []Row {
	var rows []Row
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		rows = append(rows, Row{
			Depth:      depth,
			Label:      n.label(),
			Elapsed:    n.elapsed,
			HasElapsed: n.finalized,
			IsScope:    n.IsScope(),
		})
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	for _, c := range p.root.children {
		visit(c, 1)
	}
	return rows
}

// RenderTable renders the report as an ANSI grid with Action, Time
// and % columns. Labels are indented by depth, each row's text is
// colored by severity, and the percentage is each node's share of the
// total time since construction, captured once on entry.
func (p *Profiler) RenderTable() string {
	total := p.now().Sub(p.root.startTime)
	rows := p.CollectRows()

	rowStyles := make([]lipgloss.Style, len(rows))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("Action", "Time", "%")
	for i, row := range rows {
		style := tableCellStyle
		if row.HasElapsed {
			if c, ok := p.schema.Color(row.Elapsed); ok {
				style = style.Foreground(c)
			}
		}
		rowStyles[i] = style
		t.Row(
			strings.Repeat(" ", row.Depth)+row.Label,
			formatElapsed(row),
			formatShare(row, total),
		)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return tableHeaderStyle
		}
		if row < 0 || row >= len(rowStyles) {
			return tableCellStyle
		}
		return rowStyles[row]
	})
	return t.String()
}

// formatElapsed renders a row's duration in seconds, "??" for a scope
// that never closed.
func formatElapsed(r Row) string {
	if !r.HasElapsed {
		return "??"
	}
	return fmt.Sprintf("%.6fs", r.Elapsed.Seconds())
}

// formatShare renders a row's percentage of the total duration. Rows
// without a duration, and any row when the total is zero, read 0.0%
// so a degenerate report never shows NaN.
func formatShare(r Row, total time.Duration) string {
	if !r.HasElapsed || total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", r.Elapsed.Seconds()/total.Seconds()*100)
}
