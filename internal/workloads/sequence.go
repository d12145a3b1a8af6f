package workloads

import (
	"context"
	"errors"
)

// Stopper mirrors the power package's Workloads contract.
type Stopper interface {
	StopAll(ctx context.Context) error
}

// Sequence runs several stoppers in order. Every stopper runs even when
// an earlier one fails, because a half-stopped box still reboots better
// than an unstopped one; the errors are joined for the caller's log.
type Sequence []Stopper

func (s Sequence) StopAll(ctx context.Context) error {
	var errs []error
	for _, stopper := range s {
		if err := stopper.StopAll(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
