package sensor

import (
	"math"
	"strconv"
)

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// Display converts c to the selected scale and rounds it to the nearest
// integer.
func Display(c float64, fahrenheit bool) float64 {
	if fahrenheit {
		c = CToF(c)
	}
	return math.Round(c)
}

// FormatTemp renders c as it appears on screen, e.g. "55C" or "131F".
func FormatTemp(c float64, fahrenheit bool) string {
	unit := "C"
	if fahrenheit {
		unit = "F"
	}
	v := Display(c, fahrenheit)
	if v == 0 {
		v = 0 // no "-0C"
	}
	return strconv.FormatFloat(v, 'f', 0, 64) + unit
}
