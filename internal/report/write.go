package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"audiodupes/internal/config"
)

const (
	modTimeLayout = "2006-01-02 15:04"
	sizeWidth     = 10
)

// Write renders doc in the named format.
func (d Display) Write(w io.Writer, format string, doc Document) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", config.FormatText:
		return d.WriteText(w, doc)
	case config.FormatTable:
		return d.WriteTable(w, doc)
	case config.FormatJSON:
		return WriteJSON(w, doc)
	case config.FormatYAML:
		return WriteYAML(w, doc)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Summary renders "found N clusters in: " followed by the scanned roots.
func (d Display) Summary(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %s in: \n", describeClusters(len(doc.Groups)))
	for _, root := range doc.Roots {
		fmt.Fprintf(&b, "   %s\n", root)
	}
	return b.String()
}

func describeClusters(n int) string {
	switch n {
	case 0:
		return "no clusters"
	case 1:
		return "one cluster"
	default:
		return fmt.Sprintf("%d clusters", n)
	}
}

// WriteText writes the summary followed by one block per cluster.
func (d Display) WriteText(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString(d.Summary(doc))
	for _, group := range doc.Groups {
		b.WriteString("\n")
		b.WriteString(d.Heading(fmt.Sprintf("--- %d duplicates ---", len(group.Files))))
		b.WriteString("\n")
		for _, f := range group.Files {
			fmt.Fprintf(&b, "%s %*d  %s\n",
				f.ModTime.Format(modTimeLayout), sizeWidth, f.SizeBytes, d.Path(f.Path))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTable writes the summary and a single table of all cluster members.
func (d Display) WriteTable(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString(d.Summary(doc))
	if len(doc.Groups) > 0 {
		tw := NewTable("Cluster", "Modified", "Size", "Length", "Path")
		for i, group := range doc.Groups {
			if i > 0 {
				tw.AppendSeparator()
			}
			for _, f := range group.Files {
				tw.AppendRow(table.Row{
					strconv.Itoa(i + 1),
					f.ModTime.Format(modTimeLayout),
					humanize.IBytes(uint64(max(f.SizeBytes, 0))),
					(time.Duration(f.DurationSeconds) * time.Second).String(),
					f.Path,
				})
			}
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight, AutoMerge: true},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		b.WriteString("\n")
		b.WriteString(tw.Render())
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteYAML writes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
