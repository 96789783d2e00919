package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"audiodupes/internal/config"
	"audiodupes/internal/report"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printKeyValues renders label/value pairs as a two-column table.
func printKeyValues(w io.Writer, rows [][2]string) {
	tw := report.NewTable()
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	fmt.Fprintln(w, tw.Render())
}

// statusWord renders an availability label, coloured for terminals.
func statusWord(w io.Writer, ok bool, okText, badText string) string {
	display := report.Display{Colour: report.ResolveColour(config.ColourAuto, w)}
	if ok {
		return display.Good(okText)
	}
	return display.Bad(badText)
}
