// Package severity classifies temperature readings against their own
// high and critical thresholds.
package severity

import (
	"fmt"

	"github.com/luki/proctemp/internal/sensor"
)

// Level is a classification outcome. Levels are totally ordered and
// double as alert-mode exit codes.
type Level int

const (
	Normal Level = iota
	High
	Critical
)

func (l Level) String() string {
	switch l {
	case Normal:
		return "normal"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Parse maps 0, 1 and 2 to their levels.
func Parse(n int) (Level, error) {
	if n < int(Normal) || n > int(Critical) {
		return Normal, fmt.Errorf("severity %d out of range 0-2", n)
	}
	return Level(n), nil
}

// Of classifies a single reading. A reading with no usable threshold is
// always Normal.
func Of(t sensor.Temperature) Level {
	if t.HasCritical() && t.Current > t.Critical {
		return Critical
	}
	if t.HasHigh() && t.Current > t.High {
		return High
	}
	return Normal
}

// Classify returns the highest level among all readings of bs. An empty
// snapshot is Normal.
func Classify(bs sensor.BusSet) Level {
	worst := Normal
	for _, b := range bs {
		for _, c := range b.Chips {
			for _, t := range c.Temperatures {
				if l := Of(t); l > worst {
					worst = l
					if worst == Critical {
						return worst
					}
				}
			}
		}
	}
	return worst
}
