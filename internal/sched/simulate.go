package sched

import (
	"context"
)

// Simulate admits every descriptor in load order and then runs the
// dispatcher until all lanes are empty.
func Simulate(ctx context.Context, cfg Config, descs []Descriptor, opts ...Option) (Summary, error) {
	d, err := New(cfg, opts...)
	if err != nil {
		return Summary{}, err
	}
	for _, desc := range descs {
		d.Admit(desc)
	}
	return d.Run(ctx)
}
