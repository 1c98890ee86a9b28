package command

import (
	"fmt"
	"strings"
)

// pageRows bounds table output so responses stay inside Discord's message
// size limit.
const pageRows = 20

// Column pairs a table header with its rendered width.
type Column struct {
	Name  string
	Width int
}

// MonoTable renders rows into the fixed-width code-block layout used across
// the leaderboard commands. Cells longer than their column are truncated.
func MonoTable(columns []Column, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("```\n")
	for _, col := range columns {
		sb.WriteString(pad(col.Name, col.Width))
	}
	sb.WriteString("\n")
	total := 0
	for _, col := range columns {
		total += col.Width
	}
	sb.WriteString(strings.Repeat("-", total))
	sb.WriteString("\n")
	for _, row := range rows {
		for i, col := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(pad(cell, col.Width))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```")
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width-1] + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}

func limitRows(rows [][]string) [][]string {
	if len(rows) > pageRows {
		return rows[:pageRows]
	}
	return rows
}

func enumerate(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string{fmt.Sprintf("%d.", i+1)}, row...)
	}
	return out
}
