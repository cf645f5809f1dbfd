package sensor

import (
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	gpuAdapter   = "PCI adapter"
	driveAdapter = "SATA adapter"

	// smartctl does not report limits; these are the common drive
	// vendor recommendations.
	driveHigh     = 55
	driveCritical = 60
)

// readNvidiaGPU reads GPU temperatures via nvidia-smi.
// Returns nil if nvidia-smi is not available.
func readNvidiaGPU(ctx context.Context, run runFunc) []chipRecord {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return nil
	}

	out, err := run(ctx, "nvidia-smi",
		"--query-gpu=index,temperature.gpu",
		"--format=csv,noheader,nounits",
	)
	if err != nil {
		return nil
	}

	thresholds := parseNvidiaThresholds(ctx, run)
	return parseNvidiaQuery(string(out), thresholds)
}

func parseNvidiaQuery(out string, thresholds map[string]float64) []chipRecord {
	var records []chipRecord
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		idx := strings.TrimSpace(parts[0])
		temp, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}

		t := Temperature{Current: temp, High: Unset, Critical: Unset}
		if v, ok := thresholds["slowdown"]; ok {
			t.High = v
		}
		if v, ok := thresholds["shutdown"]; ok {
			t.Critical = v
		}

		records = append(records, chipRecord{
			id:      "nvidia-gpu-" + idx,
			adapter: gpuAdapter,
			chip:    Chip{Name: "nvidia" + idx, Temperatures: []Temperature{t}},
		})
	}
	return records
}

var nvidiaTempValRe = regexp.MustCompile(`:\s*(\d+)\s*C`)

func parseNvidiaThresholds(ctx context.Context, run runFunc) map[string]float64 {
	out, err := run(ctx, "nvidia-smi", "-q", "-d", "TEMPERATURE")
	if err != nil {
		return nil
	}
	return parseNvidiaThresholdText(string(out))
}

func parseNvidiaThresholdText(out string) map[string]float64 {
	result := make(map[string]float64)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "GPU Shutdown Temp"):
			if v := extractNvidiaTemp(line); v > 0 {
				result["shutdown"] = v
			}
		case strings.HasPrefix(line, "GPU Slowdown Temp"):
			if v := extractNvidiaTemp(line); v > 0 {
				result["slowdown"] = v
			}
		}
	}
	return result
}

func extractNvidiaTemp(line string) float64 {
	m := nvidiaTempValRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// readSmartctlDrives reads SATA drive temperatures via smartctl.
func readSmartctlDrives(ctx context.Context, run runFunc) []chipRecord {
	if _, err := exec.LookPath("smartctl"); err != nil {
		return nil
	}

	drives, _ := filepath.Glob("/dev/sd?")
	var records []chipRecord
	for _, dev := range drives {
		out, err := run(ctx, "smartctl", "-A", dev)
		if err != nil {
			continue
		}
		temp, ok := parseSmartTemp(string(out))
		if !ok {
			continue
		}
		name := filepath.Base(dev)
		records = append(records, chipRecord{
			id:      "smart-" + name,
			adapter: driveAdapter,
			chip: Chip{
				Name:         name,
				Temperatures: []Temperature{{Current: temp, High: driveHigh, Critical: driveCritical}},
			},
		})
	}
	return records
}

// parseSmartTemp reads RAW_VALUE of attribute 194 (Temperature_Celsius),
// falling back to 190 (Airflow_Temperature_Cel).
func parseSmartTemp(output string) (float64, bool) {
	for _, attr := range []string{"194", "190"} {
		for _, line := range strings.Split(output, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 10 || fields[0] != attr || !strings.Contains(fields[1], "Temperature") {
				continue
			}
			if v, err := strconv.ParseFloat(fields[9], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
