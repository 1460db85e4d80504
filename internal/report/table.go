package report

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Alignment selects column alignment for RenderTable.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable draws rows under headers. Fancy rounded borders are used only
// when fancy is true; otherwise the table is plain ASCII so it survives log
// capture.
func RenderTable(headers []string, rows [][]string, aligns []Alignment, fancy bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if fancy {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// RenderSummaries draws one row per stage with a column per counter.
func RenderSummaries(summaries []*Summary, fancy bool) string {
	var labels []string
	seen := map[string]bool{}
	for _, s := range summaries {
		for _, label := range s.Labels() {
			if !seen[label] {
				seen[label] = true
				labels = append(labels, label)
			}
		}
	}

	headers := append([]string{"Stage"}, labels...)
	headers = append(headers, "Elapsed")
	aligns := make([]Alignment, len(headers))
	for i := 1; i < len(aligns); i++ {
		aligns[i] = AlignRight
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{s.Stage}
		for _, label := range labels {
			if _, ok := s.counts[label]; ok {
				row = append(row, strconv.Itoa(s.Count(label)))
			} else {
				row = append(row, "-")
			}
		}
		row = append(row, s.Elapsed.Round(time.Millisecond).String())
		rows = append(rows, row)
	}
	return RenderTable(headers, rows, aligns, fancy)
}

// IsTerminal reports whether writer is an interactive terminal.
func IsTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
