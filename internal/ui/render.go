package ui

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/luki/proctemp/internal/chart"
	"github.com/luki/proctemp/internal/sensor"
)

// frame is everything one screen is drawn from.
type frame struct {
	rows, cols int
	fahrenheit bool
	debug      bool
	version    string
	err        error
	buses      sensor.BusSet
}

// draw lays out a whole screen: help labels and footer first, then the
// readings.
func draw(f frame) *canvas {
	c := newCanvas(f.rows, f.cols)
	drawLabels(c, f)
	drawTemps(c, f)
	return c
}

// helpColumn is where the right-hand text starts.
func helpColumn(cols int) int {
	return 2 * cols / 3
}

func drawLabels(c *canvas, f frame) {
	col := helpColumn(c.cols)
	footer := c.rows - 1

	c.text(attr{color: chart.Blue, bold: true}, footer, 0, "proctempview version "+f.version)
	if f.err != nil {
		c.text(attr{color: chart.Red, bold: true}, footer, col, "error: "+f.err.Error())
	}

	row := 0
	lines := []string{
		"T = change Temperature scale",
		"S = Save configuration options",
		"Q = Quit",
	}
	if f.debug {
		lines = append(lines,
			"",
			runtime.Version()+", bubbletea "+bubbleteaVersion(),
			fmt.Sprintf("terminal dimensions %d X %d", c.rows, c.cols),
			"",
			"YOU ARE IN DEBUG MODE.",
			"PRESS '!' TO TURN OFF DEBUG MODE.",
		)
	}
	for _, l := range lines {
		if row >= footer {
			break
		}
		c.text(attr{}, row, col, l)
		row++
	}
}

// drawTemps writes one row per bus, one per chip and one per reading,
// stopping before the footer row.
func drawTemps(c *canvas, f frame) {
	indent1 := len(strconv.Itoa(f.buses.MaxTemperatures())) + 1
	// a three digit value, its unit and a space
	indent2 := indent1 + 5
	full := func(row int) bool { return row+1 >= c.rows }

	row := 0
	for _, b := range f.buses {
		if full(row) {
			return
		}
		c.text(attr{}, row, 0, b.Name)
		row++

		for n, chip := range b.Chips {
			if full(row) {
				return
			}
			name := chip.Name
			if len(b.Chips) > 1 {
				name = fmt.Sprintf("%s %d", chip.Name, n)
			}
			c.text(attr{}, row, 0, name)
			row++

			for i, t := range chip.Temperatures {
				if full(row) {
					return
				}
				drawReading(c, row, i, t, f.fahrenheit, indent1, indent2)
				row++
			}
		}
	}
}

func drawReading(c *canvas, row, index int, t sensor.Temperature, fahrenheit bool, indent1, indent2 int) {
	c.text(attr{}, row, 0, strconv.Itoa(index))

	value := fmt.Sprintf("%4s", sensor.FormatTemp(t.Current, fahrenheit))
	c.text(attr{color: chart.ValueColor(t), bold: true}, row, indent1, value)
	if !chart.HasBar(t) {
		return
	}

	size := chart.BarWidth(c.cols, indent2)
	if size < 3 {
		return
	}
	bar := chart.NewBar(t, size)
	c.text(attr{bold: true}, row, indent2, "[")
	c.text(attr{bold: true}, row, indent2+size-1, "]")
	for k := 1; k+1 < size; k++ {
		if bar.Filled(k) {
			c.text(attr{color: bar.Cells[k], bold: true, reverse: true}, row, indent2+k, " ")
		} else {
			c.text(attr{color: bar.Cells[k], bold: true}, row, indent2+k, "-")
		}
	}
}

func bubbleteaVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == "github.com/charmbracelet/bubbletea" {
			return dep.Version
		}
	}
	return "unknown"
}
