package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stockdesk/internal/queue"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableColumn describes one column of CLI table output. QueueState columns
// render their cells in the color of the matching queue status when the
// output is a terminal.
type tableColumn struct {
	Title      string
	Align      columnAlignment
	QueueState bool
}

func writeTable(out io.Writer, columns []tableColumn, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	colorize := shouldColorize(out)

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	for i, column := range columns {
		header[i] = column.Title
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, column := range columns {
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       columnAlign(column.Align),
			AlignHeader: text.AlignLeft,
		}
		if column.QueueState && colorize {
			cfg.Transformer = queueStateCell
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	tw.Render()
}

func columnAlign(align columnAlignment) text.Align {
	if align == alignRight {
		return text.AlignRight
	}
	return text.AlignLeft
}

func queueStateCell(val interface{}) string {
	label, ok := val.(string)
	if !ok {
		return fmt.Sprint(val)
	}
	status, ok := queue.ParseStatus(label)
	if !ok {
		return label
	}
	style := statusKindStyles[statusKindForQueue(status)]
	if style.color == "" {
		return label
	}
	return style.color + label + ansiReset
}
