package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/luki/proctemp/internal/sensor"
)

var snapshot = sensor.BusSet{
	{Name: "ISA adapter", ID: 0, Chips: []sensor.Chip{
		{Name: "coretemp", Temperatures: []sensor.Temperature{
			{Current: 55, High: 70, Critical: 90},
			{Current: 95, High: 70, Critical: 90},
		}},
		{Name: "nct6775", Temperatures: []sensor.Temperature{
			{Current: 31, High: sensor.Unset, Critical: sensor.Unset},
		}, Fans: []sensor.Fan{{Current: 1024}}},
	}},
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, snapshot, Text, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"ISA adapter\n",
		"  coretemp (CPU)\n",
		"55C  (high 70C, crit 90C)\n",
		"95C  (high 70C, crit 90C)  CRITICAL\n",
		"31C\n",
		"fan0 1,024 RPM\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Write(&buf, snapshot, Text, true)
	if !strings.Contains(buf.String(), "131F  (high 158F, crit 194F)") {
		t.Errorf("fahrenheit output:\n%s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, snapshot, CSV, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if got := strings.Join(rows[1], ","); got != "ISA adapter,coretemp,temp,0,55.0,70.0,90.0" {
		t.Errorf("row 1: %s", got)
	}
	if got := rows[4]; got[2] != "fan" || got[4] != "1024.0" {
		t.Errorf("fan row: %v", got)
	}
}

func TestWriteStructured(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, snapshot, JSON, true); err != nil {
		t.Fatalf("json: %v", err)
	}
	var fromJSON sensor.BusSet
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if fromJSON[0].Chips[0].Temperatures[1].Current != 95 {
		t.Errorf("json should stay in Celsius: %+v", fromJSON)
	}

	buf.Reset()
	if err := Write(&buf, snapshot, YAML, false); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var fromYAML sensor.BusSet
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if fromYAML[0].Chips[1].Fans[0].Current != 1024 {
		t.Errorf("yaml fans: %+v", fromYAML[0].Chips[1])
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != JSON {
		t.Errorf("got %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
