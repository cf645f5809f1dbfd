package ui

import (
	"math/rand"

	"github.com/luki/proctemp/internal/sensor"
)

// jitter returns a copy of bs in which some readings are replaced by
// random values between their high threshold and critical+10, so every
// colour and bar length shows up without heating the machine. On average
// one reading per chip is replaced. bs itself is left untouched.
func jitter(bs sensor.BusSet, rng *rand.Rand) sensor.BusSet {
	out := make(sensor.BusSet, len(bs))
	for i, b := range bs {
		b.Chips = append([]sensor.Chip(nil), b.Chips...)
		for j := range b.Chips {
			temps := append([]sensor.Temperature(nil), b.Chips[j].Temperatures...)
			for k, t := range temps {
				if rng.Intn(len(temps)) != 0 || !t.HasHigh() || !t.HasCritical() {
					continue
				}
				span := int(t.Critical + 10 - t.High)
				if span <= 0 {
					continue
				}
				temps[k].Current = float64(rng.Intn(span)) + t.High
			}
			b.Chips[j].Temperatures = temps
		}
		out[i] = b
	}
	return out
}
