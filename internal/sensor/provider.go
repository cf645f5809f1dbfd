package sensor

import (
	"context"
	"fmt"
	"sync"
)

// ChipHandle identifies a chip within the provider's current read.
type ChipHandle struct {
	Bus   int
	Index int    // position on the bus
	Name  string // chip prefix, e.g. "coretemp"
}

// Provider is a sensor backend.
//
// Buses re-reads the backend. Chips, Temperatures, FanSpeeds and
// AdapterName answer from that read, so one scan sees one consistent
// enumeration as long as scans on a provider do not overlap.
type Provider interface {
	Buses(ctx context.Context) ([]int, error)
	Chips(ctx context.Context, bus int) ([]ChipHandle, error)
	Temperatures(ctx context.Context, chip ChipHandle) ([]Temperature, error)
	FanSpeeds(ctx context.Context, chip ChipHandle) ([]Fan, error)
	AdapterName(ctx context.Context, bus int) (string, bool)
}

// ProviderError reports that a sensor backend is unreachable or
// misconfigured.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("sensor backend: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// snapshotProvider answers Provider queries from an in-memory BusSet.
// Backends that read everything at once embed it and refresh it in Buses.
type snapshotProvider struct {
	mu    sync.RWMutex
	buses BusSet
}

// replace swaps in a fresh read and returns its bus ids.
func (p *snapshotProvider) replace(bs BusSet) []int {
	p.mu.Lock()
	p.buses = bs
	p.mu.Unlock()
	return p.ids()
}

func (p *snapshotProvider) find(bus int) (Bus, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, b := range p.buses {
		if b.ID == bus {
			return b, true
		}
	}
	return Bus{}, false
}

func (p *snapshotProvider) ids() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]int, 0, len(p.buses))
	for _, b := range p.buses {
		ids = append(ids, b.ID)
	}
	return ids
}

func (p *snapshotProvider) Chips(_ context.Context, bus int) ([]ChipHandle, error) {
	b, ok := p.find(bus)
	if !ok {
		return nil, nil
	}
	handles := make([]ChipHandle, len(b.Chips))
	for i, c := range b.Chips {
		handles[i] = ChipHandle{Bus: bus, Index: i, Name: c.Name}
	}
	return handles, nil
}

func (p *snapshotProvider) chip(h ChipHandle) (Chip, error) {
	b, ok := p.find(h.Bus)
	if !ok || h.Index < 0 || h.Index >= len(b.Chips) {
		return Chip{}, &ProviderError{Op: "lookup", Err: fmt.Errorf("no chip %d on bus %d", h.Index, h.Bus)}
	}
	return b.Chips[h.Index], nil
}

func (p *snapshotProvider) Temperatures(_ context.Context, h ChipHandle) ([]Temperature, error) {
	c, err := p.chip(h)
	if err != nil {
		return nil, err
	}
	return append([]Temperature(nil), c.Temperatures...), nil
}

func (p *snapshotProvider) FanSpeeds(_ context.Context, h ChipHandle) ([]Fan, error) {
	c, err := p.chip(h)
	if err != nil {
		return nil, err
	}
	return append([]Fan(nil), c.Fans...), nil
}

func (p *snapshotProvider) AdapterName(_ context.Context, bus int) (string, bool) {
	b, ok := p.find(bus)
	if !ok || b.Name == "" {
		return "", false
	}
	return b.Name, true
}

// Static is a Provider that always reports the same snapshot.
type Static struct {
	snapshotProvider
}

// NewStatic returns a Provider serving bs. Bus ids are taken as given.
func NewStatic(bs BusSet) *Static {
	return &Static{snapshotProvider: snapshotProvider{buses: bs}}
}

// Buses returns the ids of the fixed snapshot.
func (s *Static) Buses(_ context.Context) ([]int, error) {
	return s.ids(), nil
}
