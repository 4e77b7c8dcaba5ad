package display

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to width columns, preserving ANSI escape sequences.
// A width below one uses DefaultWidth.
func Wrap(text string, width int) string {
	if width < 1 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}

// Columns lays items out left to right in equally sized columns, as many per
// row as fit in width.
func Columns(items []string, width int) string {
	if len(items) == 0 {
		return ""
	}
	if width < 1 {
		width = DefaultWidth
	}

	colWidth := 0
	for _, item := range items {
		colWidth = max(colWidth, runewidth.StringWidth(item))
	}
	colWidth += 2
	perRow := max(1, width/colWidth)

	var rows []string
	for start := 0; start < len(items); start += perRow {
		end := min(start+perRow, len(items))

		var row strings.Builder
		for _, item := range items[start:end] {
			row.WriteString(padding.String(item, uint(colWidth)))
		}
		rows = append(rows, strings.TrimRight(row.String(), " "))
	}
	return strings.Join(rows, "\n")
}
