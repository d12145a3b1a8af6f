package workloads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/dbus"
)

// unitConn is the slice of the systemd D-Bus API the stopper needs.
// Carved out so tests do not need a running systemd.
type unitConn interface {
	StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	Close()
}

// SystemdUnits stops a fixed set of systemd units over D-Bus. Used for
// workloads that run as services rather than containers, for example an
// emulation frontend that should save state before the reboot.
type SystemdUnits struct {
	units   []string
	logger  *slog.Logger
	connect func(ctx context.Context) (unitConn, error)
}

// NewSystemdUnits returns a stopper for the given unit names. The D-Bus
// connection is opened per StopAll call; the daemon spends its life idle
// and holding a connection open for a once-per-boot operation is waste.
func NewSystemdUnits(units []string, logger *slog.Logger) *SystemdUnits {
	return &SystemdUnits{
		units:  units,
		logger: logger,
		connect: func(ctx context.Context) (unitConn, error) {
			return dbus.NewSystemConnectionContext(ctx)
		},
	}
}

// StopAll stops every configured unit in replace mode. All units are
// attempted even when one fails; the errors are joined.
func (s *SystemdUnits) StopAll(ctx context.Context) error {
	if len(s.units) == 0 {
		return nil
	}

	conn, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("systemd connection: %w", err)
	}
	defer conn.Close()

	var errs []error
	for _, unit := range s.units {
		s.logger.Info("Stopping unit", "unit", unit)
		if _, stopErr := conn.StopUnitContext(ctx, unit, "replace", nil); stopErr != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", unit, stopErr))
		}
	}
	return errors.Join(errs...)
}
