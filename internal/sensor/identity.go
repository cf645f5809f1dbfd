package sensor

import "strings"

// componentByPrefix maps chip driver prefixes to the component they sit on.
var componentByPrefix = []struct {
	prefix    string
	component string
}{
	{"coretemp", "CPU"},
	{"k10temp", "CPU"},
	{"zenpower", "CPU"},
	{"cpu_thermal", "CPU"},
	{"amdgpu", "GPU (AMD)"},
	{"radeon", "GPU (AMD)"},
	{"nouveau", "GPU (NVIDIA)"},
	{"nvidia", "GPU (NVIDIA)"},
	{"i915", "GPU (Intel)"},
	{"nvme", "NVMe SSD"},
	{"drivetemp", "HDD/SSD"},
	{"sd", "HDD/SSD"},
	{"iwlwifi", "WiFi"},
	{"ath", "WiFi"},
	{"mt7", "WiFi"},
	{"pch", "PCH (Chipset)"},
	{"acpitz", "ACPI Thermal"},
	{"it87", "Motherboard"},
	{"nct", "Motherboard"},
	{"w83", "Motherboard"},
	{"f71", "Motherboard"},
	{"asus", "Motherboard"},
	{"thinkpad", "Laptop EC"},
	{"dell", "Laptop EC"},
	{"bat", "Battery"},
}

// Component returns a human-readable component name for a chip, or
// "Sensor" when the driver is not known.
func Component(chip string) string {
	lower := strings.ToLower(chip)
	for _, entry := range componentByPrefix {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.component
		}
	}
	return "Sensor"
}
