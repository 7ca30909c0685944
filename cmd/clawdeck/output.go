package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

// renderTable prints a styled table on a terminal and tab-separated rows
// otherwise, so piped output stays easy to cut and grep.
func renderTable(header table.Row, rows []table.Row) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.AppendHeader(header)
	w.AppendRows(rows)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		w.SetStyle(table.StyleLight)
		w.Render()
	} else {
		w.RenderTSV()
	}
}
