// Package export writes a single sensor snapshot as text, CSV, JSON or
// YAML. Nothing is kept between calls.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/luki/proctemp/internal/sensor"
	"github.com/luki/proctemp/internal/severity"
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, CSV, JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, csv, json or yaml)", s)
	}
}

// Write encodes bs to w. Temperatures are converted to Fahrenheit for
// the text format only; the structured formats always carry Celsius.
func Write(w io.Writer, bs sensor.BusSet, f Format, fahrenheit bool) error {
	switch f {
	case Text:
		return writeText(w, bs, fahrenheit)
	case CSV:
		return writeCSV(w, bs)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bs)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func writeText(w io.Writer, bs sensor.BusSet, fahrenheit bool) error {
	var sb strings.Builder
	indent := len(strconv.Itoa(bs.MaxTemperatures())) + 1

	for _, b := range bs {
		fmt.Fprintf(&sb, "%s\n", b.Name)
		for _, c := range b.Chips {
			fmt.Fprintf(&sb, "  %s (%s)\n", c.Name, sensor.Component(c.Name))
			for i, t := range c.Temperatures {
				fmt.Fprintf(&sb, "    %-*d%5s", indent, i, sensor.FormatTemp(t.Current, fahrenheit))
				var limits []string
				if t.HasHigh() {
					limits = append(limits, "high "+sensor.FormatTemp(t.High, fahrenheit))
				}
				if t.HasCritical() {
					limits = append(limits, "crit "+sensor.FormatTemp(t.Critical, fahrenheit))
				}
				if len(limits) > 0 {
					fmt.Fprintf(&sb, "  (%s)", strings.Join(limits, ", "))
				}
				if l := severity.Of(t); l != severity.Normal {
					fmt.Fprintf(&sb, "  %s", strings.ToUpper(l.String()))
				}
				sb.WriteString("\n")
			}
			for i, fan := range c.Fans {
				fmt.Fprintf(&sb, "    fan%d %s RPM\n", i, humanize.Comma(int64(fan.Current)))
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCSV(w io.Writer, bs sensor.BusSet) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"bus", "chip", "kind", "index", "current", "high", "critical"})

	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
	for _, b := range bs {
		for _, c := range b.Chips {
			for i, t := range c.Temperatures {
				cw.Write([]string{b.Name, c.Name, "temp", strconv.Itoa(i), num(t.Current), num(t.High), num(t.Critical)})
			}
			for i, fan := range c.Fans {
				cw.Write([]string{b.Name, c.Name, "fan", strconv.Itoa(i), num(fan.Current), "", ""})
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
