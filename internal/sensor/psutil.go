package sensor

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

const psutilAdapter = "gopsutil"

// sensorsFunc matches host.SensorsTemperaturesWithContext.
type sensorsFunc func(ctx context.Context) ([]host.TemperatureStat, error)

// Psutil reads temperatures through gopsutil. It works where neither
// lm-sensors nor a hwmon tree is available, but reports no fans.
type Psutil struct {
	snapshotProvider
	read sensorsFunc
}

// NewPsutil returns a gopsutil backend.
func NewPsutil() *Psutil {
	return &Psutil{read: host.SensorsTemperaturesWithContext}
}

// Buses reads all temperature sensors into a single bus. Consecutive
// sensors sharing a key prefix (e.g. "coretemp_core_0", "coretemp_core_1")
// become one chip.
func (p *Psutil) Buses(ctx context.Context) ([]int, error) {
	temps, err := p.read(ctx)
	if err != nil && len(temps) == 0 {
		// gopsutil returns partial results together with warnings
		return nil, &ProviderError{Op: "gopsutil", Err: err}
	}

	var records []chipRecord
	for _, t := range temps {
		if t.Temperature <= 0 || t.Temperature > 200 {
			continue
		}
		name := t.SensorKey
		if i := strings.Index(name, "_"); i > 0 {
			name = name[:i]
		}
		if len(records) == 0 || records[len(records)-1].chip.Name != name {
			records = append(records, chipRecord{id: name, adapter: psutilAdapter, chip: Chip{Name: name}})
		}
		last := &records[len(records)-1]
		last.chip.Temperatures = append(last.chip.Temperatures, Temperature{
			Current:  t.Temperature,
			High:     validThreshold(t.High),
			Critical: validThreshold(t.Critical),
		})
	}

	return p.replace(groupByAdapter(records)), nil
}
