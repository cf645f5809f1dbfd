package sensor

import "context"

// Scan reads every bus of p into a new BusSet.
//
// Provider errors are returned unchanged. Buses without chips are left
// out; bus, chip and channel order follow the provider's enumeration.
func Scan(ctx context.Context, p Provider) (BusSet, error) {
	ids, err := p.Buses(ctx)
	if err != nil {
		return nil, err
	}

	bs := make(BusSet, 0, len(ids))
	for _, id := range ids {
		handles, err := p.Chips(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(handles) == 0 {
			continue
		}

		name, ok := p.AdapterName(ctx, id)
		if !ok {
			name = "Unknown"
		}

		b := Bus{Name: name, ID: id, Chips: make([]Chip, 0, len(handles))}
		for _, h := range handles {
			temps, err := p.Temperatures(ctx, h)
			if err != nil {
				return nil, err
			}
			fans, err := p.FanSpeeds(ctx, h)
			if err != nil {
				return nil, err
			}
			b.Chips = append(b.Chips, Chip{
				Name:         h.Name,
				Temperatures: temps,
				Fans:         fans,
			})
		}
		bs = append(bs, b)
	}
	return bs, nil
}
