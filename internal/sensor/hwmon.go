package sensor

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultHwmonRoot is where Linux exposes hwmon devices.
const DefaultHwmonRoot = "/sys/class/hwmon"

// adapterNames maps a device's sysfs subsystem to the adapter label
// lm-sensors prints for it.
var adapterNames = map[string]string{
	"pci":      "PCI adapter",
	"platform": "ISA adapter",
	"isa":      "ISA adapter",
	"acpi":     "ACPI interface",
	"i2c":      "I2C adapter",
	"nvme":     "PCI adapter",
	"scsi":     "SCSI adapter",
	"hid":      "HID adapter",
	"usb":      "USB adapter",
}

// Hwmon reads sensors straight from sysfs.
type Hwmon struct {
	snapshotProvider
	root string
}

// NewHwmon returns a backend reading the hwmon tree under root
// (DefaultHwmonRoot when empty).
func NewHwmon(root string) *Hwmon {
	if root == "" {
		root = DefaultHwmonRoot
	}
	return &Hwmon{root: root}
}

// Buses walks the hwmon tree and groups devices by subsystem.
func (p *Hwmon) Buses(ctx context.Context) ([]int, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, &ProviderError{Op: "hwmon", Err: err}
	}

	var records []chipRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, &ProviderError{Op: "hwmon", Err: err}
		}
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		dir := filepath.Join(p.root, entry.Name())
		records = append(records, readHwmonDevice(dir))
	}

	return p.replace(groupByAdapter(records)), nil
}

func readHwmonDevice(dir string) chipRecord {
	name := readTrimmed(filepath.Join(dir, "name"))
	if name == "" {
		name = filepath.Base(dir)
	}

	c := Chip{Name: name}
	for _, n := range channelNumbers(dir, "temp") {
		prefix := filepath.Join(dir, "temp"+strconv.Itoa(n))
		cur, ok := readMilli(prefix + "_input")
		if !ok {
			continue
		}
		t := Temperature{Current: cur, High: Unset, Critical: Unset}
		if v, ok := readMilli(prefix + "_max"); ok {
			t.High = validThreshold(v)
		}
		if v, ok := readMilli(prefix + "_crit"); ok {
			t.Critical = validThreshold(v)
		}
		c.Temperatures = append(c.Temperatures, t)
	}
	for _, n := range channelNumbers(dir, "fan") {
		rpm, err := strconv.ParseFloat(readTrimmed(filepath.Join(dir, "fan"+strconv.Itoa(n)+"_input")), 64)
		if err != nil || rpm < 0 {
			continue
		}
		c.Fans = append(c.Fans, Fan{Current: rpm})
	}

	return chipRecord{id: filepath.Base(dir), adapter: hwmonAdapter(dir), chip: c}
}

// channelNumbers returns the N of every <kind>N_input file, ascending.
func channelNumbers(dir, kind string) []int {
	matches, _ := filepath.Glob(filepath.Join(dir, kind+"*_input"))
	var nums []int
	for _, m := range matches {
		base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), kind), "_input")
		if n, err := strconv.Atoi(base); err == nil {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

func hwmonAdapter(dir string) string {
	target, err := os.Readlink(filepath.Join(dir, "device", "subsystem"))
	if err != nil {
		return "Virtual device"
	}
	subsystem := filepath.Base(target)
	if name, ok := adapterNames[subsystem]; ok {
		return name
	}
	return subsystem + " adapter"
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readMilli reads a millidegree value and returns degrees.
func readMilli(path string) (float64, bool) {
	v, err := strconv.ParseFloat(readTrimmed(path), 64)
	if err != nil {
		return 0, false
	}
	return v / 1000.0, true
}
