// Package chart computes the proportional temperature bars shown by the
// viewer and the colours of values and bar cells.
package chart

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/proctemp/internal/sensor"
	"github.com/luki/proctemp/internal/severity"
)

// BarMin is the temperature at which a bar starts filling. A bar is full
// at the reading's critical threshold plus BarHeadroom.
const (
	BarMin      = 40.0
	BarHeadroom = 5.0
)

// Color is one of the five colour pairs the viewer registers. White is
// the terminal's own foreground.
type Color int

const (
	White Color = iota
	Green
	Yellow
	Red
	Blue
)

var palette = map[Color]lipgloss.TerminalColor{
	White:  lipgloss.NoColor{},
	Green:  lipgloss.Color("2"),
	Yellow: lipgloss.Color("3"),
	Red:    lipgloss.Color("1"),
	Blue:   lipgloss.Color("4"),
}

// Foreground returns the terminal colour for c.
func (c Color) Foreground() lipgloss.TerminalColor {
	if fg, ok := palette[c]; ok {
		return fg
	}
	return lipgloss.NoColor{}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// ForLevel maps a severity to its colour.
func ForLevel(l severity.Level) Color {
	switch l {
	case severity.Critical:
		return Red
	case severity.High:
		return Yellow
	default:
		return Green
	}
}

// ValueColor colours a displayed reading. Reaching a threshold is enough,
// so a reading sitting exactly on its high mark is already yellow.
// Readings without a high threshold are green.
func ValueColor(t sensor.Temperature) Color {
	switch {
	case !t.HasHigh():
		return Green
	case t.HasCritical() && t.Current >= t.Critical:
		return Red
	case t.HasHigh() && t.Current >= t.High:
		return Yellow
	default:
		return Green
	}
}

// HasBar reports whether t gets a bar: it needs both thresholds and a
// critical threshold above the start of the bar domain.
func HasBar(t sensor.Temperature) bool {
	return t.HasHigh() && t.HasCritical() && t.Critical+BarHeadroom > BarMin
}

// BarWidth is the bar size for a screen cols wide whose bars start at
// column indent. Bars take the left two thirds of the screen.
func BarWidth(cols, indent int) int {
	return 2*cols/3 - indent - 5
}

// Bar is the geometry of one bracketed bar. Cells[0] and Cells[Size-1]
// hold the brackets; interior cell k is filled when k < Fill.
type Bar struct {
	Size  int
	Fill  int
	Cells []Color
}

// Filled reports whether interior cell k is drawn solid.
func (b Bar) Filled(k int) bool {
	return k < b.Fill
}

// NewBar lays out a bar of the given size for t. The caller checks
// HasBar first.
func NewBar(t sensor.Temperature, size int) Bar {
	if size < 0 {
		size = 0
	}
	b := Bar{Size: size, Fill: FillLength(t, size), Cells: make([]Color, size)}
	for k := 1; k+1 < size; k++ {
		b.Cells[k] = cellColor(t, size, k)
	}
	if size > 0 {
		b.Cells[0] = White
		b.Cells[size-1] = White
	}
	return b
}

// FillLength returns how many cells of a bar of the given size are
// filled for t. It is 0 at BarMin and size at or above the bar maximum.
func FillLength(t sensor.Temperature, size int) int {
	lo, hi := BarMin, t.Critical+BarHeadroom
	if hi <= lo {
		return 0
	}
	cur := min(max(t.Current, lo), hi)
	return int(float64(size) * (cur - lo) / (hi - lo))
}

// cellColor colours interior cell k by the zone it falls in once the
// thresholds are scaled into the bar.
func cellColor(t sensor.Temperature, size, k int) Color {
	lo, hi := BarMin, t.Critical+BarHeadroom
	scale := func(v float64) float64 { return float64(size) * (v - lo) / (hi - lo) }

	switch {
	case t.HasHigh() && float64(k) < scale(t.High):
		return Green
	case float64(k) < scale(t.Critical):
		return Yellow
	default:
		return Red
	}
}
