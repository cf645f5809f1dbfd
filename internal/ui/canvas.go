package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/proctemp/internal/chart"
)

// attr is the look of a cell: colour pair plus bold and reverse video.
type attr struct {
	color   chart.Color
	bold    bool
	reverse bool
}

func (a attr) style() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(a.color.Foreground()).
		Bold(a.bold).
		Reverse(a.reverse)
}

type cell struct {
	ch rune
	attr
}

// canvas is a fixed rows x cols grid that text is placed on by
// coordinates. Anything outside the grid is clipped.
type canvas struct {
	rows, cols int
	cells      [][]cell
}

func newCanvas(rows, cols int) *canvas {
	rows, cols = max(rows, 0), max(cols, 0)
	c := &canvas{rows: rows, cols: cols, cells: make([][]cell, rows)}
	for r := range c.cells {
		c.cells[r] = make([]cell, cols)
		for col := range c.cells[r] {
			c.cells[r][col].ch = ' '
		}
	}
	return c
}

// text writes s starting at row, col.
func (c *canvas) text(a attr, row, col int, s string) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, ch := range s {
		if col >= c.cols {
			return
		}
		if col >= 0 {
			c.cells[row][col] = cell{ch: ch, attr: a}
		}
		col++
	}
}

// at returns the cell at row, col. Out-of-range cells are blank.
func (c *canvas) at(row, col int) cell {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return cell{ch: ' '}
	}
	return c.cells[row][col]
}

// line returns the plain text of a row without trailing blanks.
func (c *canvas) line(row int) string {
	if row < 0 || row >= c.rows {
		return ""
	}
	var sb strings.Builder
	for _, cl := range c.cells[row] {
		sb.WriteRune(cl.ch)
	}
	return strings.TrimRight(sb.String(), " ")
}

// render styles each row in runs of equal attributes.
func (c *canvas) render() string {
	lines := make([]string, c.rows)
	for r, row := range c.cells {
		var sb strings.Builder
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].attr == row[start].attr {
				end++
			}
			var run strings.Builder
			for _, cl := range row[start:end] {
				run.WriteRune(cl.ch)
			}
			if row[start].attr == (attr{}) {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(row[start].style().Render(run.String()))
			}
			start = end
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}
