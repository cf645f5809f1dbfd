package sensor

import (
	"fmt"
	"os"
	"os/exec"
)

// Backend names accepted by Open.
const (
	BackendAuto      = "auto"
	BackendLMSensors = "lmsensors"
	BackendHwmon     = "hwmon"
	BackendGopsutil  = "gopsutil"
)

// Options tune the backend chosen by Open.
type Options struct {
	// GPUs and Drives enable lm-sensors' supplementary sources.
	GPUs   bool
	Drives bool
	// HwmonRoot overrides DefaultHwmonRoot.
	HwmonRoot string
}

// Open returns the named backend. BackendAuto (or "") prefers lm-sensors
// when `sensors` is installed, then sysfs hwmon, then gopsutil.
func Open(name string, opts Options) (Provider, error) {
	switch name {
	case "", BackendAuto:
		return Open(Detect(opts.HwmonRoot), opts)
	case BackendLMSensors:
		p := NewLMSensors()
		p.GPUs = opts.GPUs
		p.Drives = opts.Drives
		return p, nil
	case BackendHwmon:
		return NewHwmon(opts.HwmonRoot), nil
	case BackendGopsutil:
		return NewPsutil(), nil
	default:
		return nil, &ProviderError{Op: "open", Err: fmt.Errorf("unknown backend %q", name)}
	}
}

// Detect names the backend BackendAuto resolves to on this machine.
func Detect(hwmonRoot string) string {
	if _, err := exec.LookPath("sensors"); err == nil {
		return BackendLMSensors
	}
	if hwmonRoot == "" {
		hwmonRoot = DefaultHwmonRoot
	}
	if _, err := os.Stat(hwmonRoot); err == nil {
		return BackendHwmon
	}
	return BackendGopsutil
}
