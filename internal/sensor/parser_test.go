package sensor

import (
	"context"
	"errors"
	"testing"
)

const testSensorOutput = `iwlwifi_1-virtual-0
Adapter: Virtual device
temp1:        +35.0°C

nvme-pci-0300
Adapter: PCI adapter
Composite:    +36.9°C  (low  = -273.1°C, high = +81.8°C)
                       (crit = +84.8°C)
Sensor 1:     +36.9°C  (low  = -273.1°C, high = +65261.8°C)

coretemp-isa-0000
Adapter: ISA adapter
Package id 0:  +48.0°C  (high = +101.0°C, crit = +115.0°C)
Core 0:        +46.0°C  (high = +101.0°C, crit = +115.0°C)
Core 1:        +45.0°C  (high = +101.0°C, crit = +115.0°C)

nct6775-isa-0290
Adapter: ISA adapter
fan1:        1024 RPM  (min =    0 RPM)
fan2:         812 RPM  (min =    0 RPM)
SYSTIN:       +31.0°C  (high = +80.0°C, hyst = +75.0°C)
`

const testSensorJSON = `{
   "coretemp-isa-0000":{
      "Adapter": "ISA adapter",
      "Package id 0":{
         "temp1_input": 48.000,
         "temp1_max": 101.000,
         "temp1_crit": 115.000,
         "temp1_crit_alarm": 0.000
      },
      "Core 0":{
         "temp2_input": 46.000,
         "temp2_max": 101.000,
         "temp2_crit": 115.000
      }
   },
   "acpitz-acpi-0":{
      "Adapter": "ACPI interface",
      "temp1":{
         "temp1_input": 27.800
      }
   },
   "nct6775-isa-0290":{
      "Adapter": "ISA adapter",
      "fan1":{
         "fan1_input": 1024.000,
         "fan1_min": 0.000
      },
      "intrusion0":{
         "intrusion0_alarm": 1.000
      },
      "SYSTIN":{
         "temp1_input": 31.000,
         "temp1_max": 80.000
      }
   }
}`

func TestParseSensorsText(t *testing.T) {
	records := parseSensorsText(testSensorOutput)
	if len(records) != 4 {
		t.Fatalf("expected 4 chips, got %d", len(records))
	}

	nvme := records[1]
	if nvme.chip.Name != "nvme" || nvme.adapter != "PCI adapter" {
		t.Errorf("nvme chip: got %q on %q", nvme.chip.Name, nvme.adapter)
	}
	if len(nvme.chip.Temperatures) != 2 {
		t.Fatalf("nvme temps: got %d, want 2", len(nvme.chip.Temperatures))
	}
	composite := nvme.chip.Temperatures[0]
	if composite.High != 81.8 || composite.Critical != 84.8 {
		t.Errorf("Composite thresholds: got high=%v crit=%v", composite.High, composite.Critical)
	}
	if nvme.chip.Temperatures[1].High != Unset {
		t.Errorf("placeholder high should be unset, got %v", nvme.chip.Temperatures[1].High)
	}

	core := records[2].chip
	if len(core.Temperatures) != 3 {
		t.Fatalf("coretemp temps: got %d, want 3", len(core.Temperatures))
	}
	if got := core.Temperatures[1]; got.Current != 46 || got.High != 101 || got.Critical != 115 {
		t.Errorf("Core 0: got %+v", got)
	}

	fans := records[3].chip
	if len(fans.Fans) != 2 || fans.Fans[0].Current != 1024 {
		t.Errorf("nct6775 fans: got %+v", fans.Fans)
	}
	if len(fans.Temperatures) != 1 || fans.Temperatures[0].Critical != Unset {
		t.Errorf("SYSTIN: got %+v", fans.Temperatures)
	}
}

func TestParseSensorsJSONKeepsOrder(t *testing.T) {
	records, err := parseSensorsJSON([]byte(testSensorJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []string{"coretemp", "acpitz", "nct6775"}
	if len(records) != len(want) {
		t.Fatalf("got %d chips, want %d", len(records), len(want))
	}
	for i, name := range want {
		if records[i].chip.Name != name {
			t.Errorf("chip %d: got %q, want %q", i, records[i].chip.Name, name)
		}
	}

	core := records[0].chip.Temperatures
	if len(core) != 2 || core[0].Current != 48 || core[1].Current != 46 {
		t.Errorf("coretemp order: got %+v", core)
	}
	if acpi := records[1].chip.Temperatures[0]; acpi.High != Unset || acpi.Critical != Unset {
		t.Errorf("acpitz thresholds should be unset, got %+v", acpi)
	}
	if n := len(records[2].chip.Fans); n != 1 {
		t.Errorf("nct6775 fans: got %d, want 1", n)
	}
}

func TestParseSensorsJSONRejectsGarbage(t *testing.T) {
	if _, err := parseSensorsJSON([]byte(`["not", "an", "object"]`)); err == nil {
		t.Error("expected error for non-object input")
	}
	if _, err := parseSensorsJSON([]byte(`{"coretemp-isa-0000": {`)); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestGroupByAdapter(t *testing.T) {
	records, err := parseSensorsJSON([]byte(testSensorJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bs := groupByAdapter(records)

	if len(bs) != 2 {
		t.Fatalf("expected 2 buses, got %d", len(bs))
	}
	if bs[0].Name != "ISA adapter" || bs[0].ID != 0 || len(bs[0].Chips) != 2 {
		t.Errorf("bus 0: got %+v", bs[0])
	}
	if bs[0].Chips[1].Name != "nct6775" {
		t.Errorf("second ISA chip: got %q", bs[0].Chips[1].Name)
	}
	if bs[1].Name != "ACPI interface" || bs[1].ID != 1 {
		t.Errorf("bus 1: got %+v", bs[1])
	}
}

func TestLMSensorsFallsBackToText(t *testing.T) {
	p := &LMSensors{run: func(_ context.Context, name string, args ...string) ([]byte, error) {
		if len(args) > 0 && args[0] == "-j" {
			return nil, errors.New("unknown option -j")
		}
		return []byte(testSensorOutput), nil
	}}

	bs, err := Scan(context.Background(), p)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(bs) != 3 {
		t.Fatalf("expected 3 buses, got %d", len(bs))
	}
	if bs[2].Name != "ISA adapter" || len(bs[2].Chips) != 2 {
		t.Errorf("ISA bus: got %+v", bs[2])
	}
}

func TestLMSensorsProviderError(t *testing.T) {
	p := &LMSensors{run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("executable file not found")
	}}

	_, err := Scan(context.Background(), p)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Op != "sensors" {
		t.Errorf("op: got %q", perr.Op)
	}
}

func TestParseNvidia(t *testing.T) {
	thresholds := parseNvidiaThresholdText(`
    Temperature
        GPU Current Temp                  : 41 C
        GPU Shutdown Temp                 : 98 C
        GPU Slowdown Temp                 : 95 C
        GPU Max Operating Temp            : 93 C
`)
	records := parseNvidiaQuery("0, 41\n1, 57\n", thresholds)
	if len(records) != 2 {
		t.Fatalf("expected 2 GPUs, got %d", len(records))
	}
	gpu := records[1]
	if gpu.adapter != gpuAdapter || gpu.chip.Name != "nvidia1" {
		t.Errorf("gpu 1: got %q on %q", gpu.chip.Name, gpu.adapter)
	}
	if got := gpu.chip.Temperatures[0]; got.Current != 57 || got.High != 95 || got.Critical != 98 {
		t.Errorf("gpu 1 temp: got %+v", got)
	}
}

func TestParseSmartTemp(t *testing.T) {
	out := `ID# ATTRIBUTE_NAME          FLAG     VALUE WORST THRESH TYPE      UPDATED  WHEN_FAILED RAW_VALUE
190 Airflow_Temperature_Cel 0x0032   066   052   000    Old_age   Always       -       34
194 Temperature_Celsius     0x0022   036   048   000    Old_age   Always       -       36 (Min/Max 20/48)
`
	v, ok := parseSmartTemp(out)
	if !ok || v != 36 {
		t.Errorf("got %v (ok=%v), want 36", v, ok)
	}
	if _, ok := parseSmartTemp("no attributes here"); ok {
		t.Error("expected no temperature")
	}
}

func TestComponent(t *testing.T) {
	tests := []struct {
		chip string
		want string
	}{
		{"coretemp", "CPU"},
		{"nvme", "NVMe SSD"},
		{"iwlwifi_1", "WiFi"},
		{"pch_cannonlake", "PCH (Chipset)"},
		{"amdgpu", "GPU (AMD)"},
		{"nvidia0", "GPU (NVIDIA)"},
		{"sda", "HDD/SSD"},
		{"drivetemp", "HDD/SSD"},
		{"some-unknown-chip", "Sensor"},
	}
	for _, tt := range tests {
		if got := Component(tt.chip); got != tt.want {
			t.Errorf("Component(%q) = %q, want %q", tt.chip, got, tt.want)
		}
	}
}
