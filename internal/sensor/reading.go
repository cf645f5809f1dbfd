// Package sensor models one snapshot of the machine's hardware sensors
// (buses, chips, temperature and fan channels) and assembles it from a
// pluggable backend: lm-sensors, sysfs hwmon or gopsutil.
package sensor

import "strings"

// Unset marks a threshold the backend does not report.
const Unset = -1.0

// Temperature is a single temperature channel in Celsius.
type Temperature struct {
	Current  float64 `json:"current" yaml:"current"`
	High     float64 `json:"high" yaml:"high"`         // Unset if not available
	Critical float64 `json:"critical" yaml:"critical"` // Unset if not available
}

// HasHigh reports whether the high threshold is usable.
func (t Temperature) HasHigh() bool { return t.High > 0 }

// HasCritical reports whether the critical threshold is usable.
func (t Temperature) HasCritical() bool { return t.Critical > 0 }

// Fan is a single fan channel in RPM.
type Fan struct {
	Current float64 `json:"current" yaml:"current"`
}

// Chip is a sensor device on a bus.
type Chip struct {
	Name         string        `json:"name" yaml:"name"` // e.g. "coretemp"
	Temperatures []Temperature `json:"temperatures" yaml:"temperatures"`
	Fans         []Fan         `json:"fans,omitempty" yaml:"fans,omitempty"`
}

// Bus groups the chips behind one adapter.
type Bus struct {
	Name  string `json:"name" yaml:"name"` // adapter name, e.g. "ISA adapter"
	ID    int    `json:"id" yaml:"id"`
	Chips []Chip `json:"chips" yaml:"chips"`
}

// IsPCI reports whether the bus is a PCI bus, where discrete GPUs live.
func (b Bus) IsPCI() bool {
	return strings.Contains(strings.ToLower(b.Name), "pci")
}

// BusSet is one complete snapshot. It is never mutated after Scan returns.
type BusSet []Bus

// Filter returns the buses for which keep returns true.
func (bs BusSet) Filter(keep func(Bus) bool) BusSet {
	var out BusSet
	for _, b := range bs {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// MaxTemperatures returns the largest per-chip temperature count.
func (bs BusSet) MaxTemperatures() int {
	n := 0
	for _, b := range bs {
		for _, c := range b.Chips {
			if len(c.Temperatures) > n {
				n = len(c.Temperatures)
			}
		}
	}
	return n
}
