package sensor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// runFunc runs an external program and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// chipRecord is one chip as reported by a backend, before grouping by
// adapter.
type chipRecord struct {
	id      string // full chip id, e.g. "coretemp-isa-0000"
	adapter string
	chip    Chip
}

// groupByAdapter turns records into buses keyed by adapter name. Bus ids
// are assigned in first-seen order; chip order is preserved.
func groupByAdapter(records []chipRecord) BusSet {
	var bs BusSet
	index := make(map[string]int)
	for _, r := range records {
		adapter := r.adapter
		if adapter == "" {
			adapter = "Unknown"
		}
		i, ok := index[adapter]
		if !ok {
			i = len(bs)
			index[adapter] = i
			bs = append(bs, Bus{Name: adapter, ID: i})
		}
		bs[i].Chips = append(bs[i].Chips, r.chip)
	}
	return bs
}

// chipPrefix returns the driver part of an lm-sensors chip id.
func chipPrefix(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}

// validThreshold filters out the placeholder limits some drivers report
// (e.g. NVMe "high = +65261.8°C").
func validThreshold(v float64) float64 {
	if v > 0 && v < 1000 {
		return v
	}
	return Unset
}

// LMSensors reads lm-sensors through the `sensors` program.
type LMSensors struct {
	snapshotProvider

	// GPUs adds NVIDIA GPUs reported by nvidia-smi on a "PCI adapter" bus.
	GPUs bool
	// Drives adds SATA drives reported by smartctl on a "SATA adapter" bus.
	Drives bool

	run runFunc
}

// NewLMSensors returns an lm-sensors backend.
func NewLMSensors() *LMSensors {
	return &LMSensors{run: runCommand}
}

// Buses runs `sensors -j` (falling back to plain `sensors`) and returns
// the adapters found.
func (p *LMSensors) Buses(ctx context.Context) ([]int, error) {
	records, err := p.readJSON(ctx)
	if err != nil {
		records, err = p.readText(ctx)
		if err != nil {
			return nil, &ProviderError{Op: "sensors", Err: err}
		}
	}

	if p.GPUs {
		records = append(records, readNvidiaGPU(ctx, p.run)...)
	}
	if p.Drives {
		records = append(records, readSmartctlDrives(ctx, p.run)...)
	}

	return p.replace(groupByAdapter(records)), nil
}

func (p *LMSensors) readJSON(ctx context.Context) ([]chipRecord, error) {
	out, err := p.run(ctx, "sensors", "-j")
	if err != nil {
		return nil, err
	}
	return parseSensorsJSON(out)
}

func (p *LMSensors) readText(ctx context.Context) ([]chipRecord, error) {
	out, err := p.run(ctx, "sensors")
	if err != nil {
		return nil, err
	}
	return parseSensorsText(string(out)), nil
}

// ── JSON parser (primary) ────────────────────────────────────────────

// parseSensorsJSON parses `sensors -j` output. Chips and features keep
// the order lm-sensors printed them in.
func parseSensorsJSON(data []byte) ([]chipRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var records []chipRecord
	for dec.More() {
		id, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		r, err := parseChipJSON(dec, id)
		if err != nil {
			return nil, fmt.Errorf("chip %s: %w", id, err)
		}
		records = append(records, r)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return records, nil
}

func parseChipJSON(dec *json.Decoder, id string) (chipRecord, error) {
	r := chipRecord{id: id, chip: Chip{Name: chipPrefix(id)}}
	if err := expectDelim(dec, '{'); err != nil {
		return r, err
	}
	for dec.More() {
		label, err := stringToken(dec)
		if err != nil {
			return r, err
		}
		if label == "Adapter" {
			if err := dec.Decode(&r.adapter); err != nil {
				return r, err
			}
			continue
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return r, err
		}
		var fields map[string]float64
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		addFeature(&r.chip, fields)
	}
	return r, expectDelim(dec, '}')
}

// addFeature appends the temperature or fan described by one feature's
// subfeature map, e.g. {"temp1_input": 48, "temp1_max": 100}.
func addFeature(c *Chip, fields map[string]float64) {
	for k, v := range fields {
		if !strings.HasSuffix(k, "_input") {
			continue
		}
		base := strings.TrimSuffix(k, "_input")
		switch {
		case strings.HasPrefix(base, "temp"):
			if v < -200 {
				return
			}
			t := Temperature{Current: v, High: Unset, Critical: Unset}
			if hi, ok := fields[base+"_max"]; ok {
				t.High = validThreshold(hi)
			}
			if crit, ok := fields[base+"_crit"]; ok {
				t.Critical = validThreshold(crit)
			}
			c.Temperatures = append(c.Temperatures, t)
		case strings.HasPrefix(base, "fan"):
			if v < 0 {
				return
			}
			c.Fans = append(c.Fans, Fan{Current: v})
		}
		return
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected key, got %v", tok)
	}
	return s, nil
}

// ── Text parser (fallback) ───────────────────────────────────────────

var (
	adapterRe  = regexp.MustCompile(`^Adapter:\s+(.+)$`)
	namedValRe = regexp.MustCompile(`(\w+)\s*=\s*([+-]?\d+\.?\d*)°C`)
	tempValRe  = regexp.MustCompile(`([+-]?\d+\.?\d*)°C`)
	fanValRe   = regexp.MustCompile(`(\d+)\s*RPM`)
)

// parseSensorsText parses the human-readable `sensors` output.
func parseSensorsText(output string) []chipRecord {
	var records []chipRecord
	var cur *chipRecord

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := adapterRe.FindStringSubmatch(line); m != nil {
			if cur != nil {
				cur.adapter = m[1]
			}
			continue
		}

		idx := strings.Index(line, ":")
		switch {
		case idx >= 0 && cur != nil && strings.Contains(line, "°C"):
			m := tempValRe.FindStringSubmatch(line[idx+1:])
			if m == nil {
				continue
			}
			temp, err := strconv.ParseFloat(m[1], 64)
			if err != nil || temp < -200 {
				continue
			}
			t := Temperature{
				Current:  temp,
				High:     validThreshold(extractNamedVal(line, "high")),
				Critical: validThreshold(extractNamedVal(line, "crit")),
			}
			// crit may wrap onto the next, label-less line
			if i+1 < len(lines) {
				next := lines[i+1]
				if strings.Contains(next, "crit") && !strings.Contains(next, ":") {
					if crit := validThreshold(extractNamedVal(next, "crit")); crit != Unset {
						t.Critical = crit
					}
				}
			}
			cur.chip.Temperatures = append(cur.chip.Temperatures, t)

		case idx >= 0 && cur != nil && strings.Contains(line, "RPM"):
			m := fanValRe.FindStringSubmatch(line[idx+1:])
			if m == nil {
				continue
			}
			rpm, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			cur.chip.Fans = append(cur.chip.Fans, Fan{Current: rpm})

		case !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") && idx < 0:
			id := strings.TrimSpace(line)
			records = append(records, chipRecord{id: id, chip: Chip{Name: chipPrefix(id)}})
			cur = &records[len(records)-1]
		}
	}

	return records
}

func extractNamedVal(line, name string) float64 {
	for _, m := range namedValRe.FindAllStringSubmatch(line, -1) {
		if m[1] == name {
			v, err := strconv.ParseFloat(m[2], 64)
			if err == nil && v > -200 {
				return v
			}
		}
	}
	return Unset
}
