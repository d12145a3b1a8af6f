package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/caseguard/caseguard/cmd"
	"github.com/caseguard/caseguard/internal/config"
	"github.com/caseguard/caseguard/internal/events"
	"github.com/caseguard/caseguard/internal/gpio"
	"github.com/caseguard/caseguard/internal/health"
	"github.com/caseguard/caseguard/internal/led"
	"github.com/caseguard/caseguard/internal/logging"
	"github.com/caseguard/caseguard/internal/power"
	"github.com/caseguard/caseguard/internal/version"
	"github.com/caseguard/caseguard/internal/workloads"
)

func main() {
	opts := config.Default()

	root := &cobra.Command{
		Use:   "caseguard",
		Short: "Supervisory daemon for SBC expansion cases",
		Long: `caseguard watches CPU load and temperature, reflects system health on the
case status LED with distinct blink patterns, and turns the case's power
and reset buttons into a safe, debounced shutdown/reboot sequence.`,
		Version:      version.String(),
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c, &opts)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.Config, "config", "c", "config.toml", "Path to configuration file")
	flags.StringVar(&opts.Chip, "chip", opts.Chip, "GPIO character device name")
	flags.IntVar(&opts.PowerPin, "power-pin", opts.PowerPin, "Power button pin (BCM)")
	flags.IntVar(&opts.ResetPin, "reset-pin", opts.ResetPin, "Reset button pin (BCM)")
	flags.IntVar(&opts.LedPin, "led-pin", opts.LedPin, "Status LED pin (BCM)")
	flags.IntVar(&opts.PowerEnablePin, "power-enable-pin", opts.PowerEnablePin, "Power enable latch pin (BCM)")
	flags.IntVar(&opts.TickMs, "tick-ms", opts.TickMs, "LED animation tick in milliseconds")
	flags.IntVar(&opts.DebounceMs, "debounce-ms", opts.DebounceMs, "Button debounce interval in milliseconds")
	flags.IntVar(&opts.GraceMs, "grace-ms", opts.GraceMs, "Grace period before reboot in milliseconds")
	flags.Float64Var(&opts.TempLowC, "temp-low-c", opts.TempLowC, "Low tier temperature threshold (Celsius)")
	flags.Float64Var(&opts.TempMediumC, "temp-medium-c", opts.TempMediumC, "Medium tier temperature threshold (Celsius)")
	flags.Float64Var(&opts.TempHighC, "temp-high-c", opts.TempHighC, "High tier temperature threshold (Celsius)")
	flags.Float64Var(&opts.LoadLow, "load-low", opts.LoadLow, "Low tier 1-minute load threshold")
	flags.Float64Var(&opts.LoadMedium, "load-medium", opts.LoadMedium, "Medium tier 1-minute load threshold")
	flags.Float64Var(&opts.LoadHigh, "load-high", opts.LoadHigh, "High tier 1-minute load threshold")
	flags.StringVar(&opts.StopCommand, "stop-command", opts.StopCommand, "Shell command stopping managed workloads before reboot")
	flags.StringVar(&opts.StopUnits, "stop-units", opts.StopUnits, "Comma separated systemd units to stop before reboot")
	flags.IntVar(&opts.StopTimeoutMs, "stop-timeout-ms", opts.StopTimeoutMs, "Workload stop timeout in milliseconds")
	flags.BoolVar(&opts.Watch, "watch", opts.Watch, "Reload thresholds when the config file changes")
	flags.StringVar(&opts.LoggingLevel, "logging-level", opts.LoggingLevel, "Global logging level (debug, info, warn, error)")
	flags.StringVar(&opts.LoggingFormat, "logging-format", opts.LoggingFormat, "Logging format (text, json)")

	root.AddCommand(cmd.CreateValidateCmd())
	root.AddCommand(cmd.CreateVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(c *cobra.Command, opts *config.Options) error {
	if err := config.LoadConfig(opts, c); err != nil {
		return err
	}

	loggingConfig := config.LoadLoggingConfig(opts.Config)
	loggingConfig.Level = opts.LoggingLevel
	loggingConfig.Format = opts.LoggingFormat
	logging.Initialize(loggingConfig)

	logger := logging.GetLogger("main")

	if err := config.Validate(*opts); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("caseguard starting",
		"version", version.String(),
		"chip", opts.Chip,
		"power_pin", opts.PowerPin, "reset_pin", opts.ResetPin,
		"led_pin", opts.LedPin, "power_enable_pin", opts.PowerEnablePin)

	chip := gpio.Open(opts.Chip, logger)
	defer chip.Close()

	// The power enable latch keeps the case supplying power to the board.
	// Raised once here and held for the process lifetime; it stays up
	// through teardown so a reboot does not cut its own power mid-flight.
	powerEnable, err := chip.RequestOutput(opts.PowerEnablePin, gpio.High)
	if err != nil {
		return fmt.Errorf("power enable line: %w", err)
	}
	defer powerEnable.Close()

	// LED on at startup: system is up.
	ledLine, err := chip.RequestOutput(opts.LedPin, gpio.High)
	if err != nil {
		return fmt.Errorf("led line: %w", err)
	}
	defer ledLine.Close()

	bus := events.New()
	subscribeDiagnostics(bus)

	state := power.NewState()
	sampler := health.NewSampler(logging.GetLogger("health"))
	rebooter := power.NewSystemRebooter(logging.GetLogger("power"))
	stoppers := workloads.Sequence{
		workloads.NewDocker(opts.StopCommand, logging.GetLogger("workloads")),
	}
	if units := opts.StopUnitList(); len(units) > 0 {
		stoppers = append(stoppers, workloads.NewSystemdUnits(units, logging.GetLogger("workloads")))
	}

	coordinator := power.NewCoordinator(state, stoppers, rebooter, bus, logging.GetLogger("power"))
	coordinator.SetGrace(opts.Grace())
	coordinator.SetStopTimeout(opts.StopTimeout())

	animator := led.NewAnimator(ledLine, sampler, state, opts.Thresholds(), bus, logging.GetLogger("led"))
	animator.SetTick(opts.Tick())

	powerButton := power.NewButton("power", opts.Debounce(), coordinator.TriggerPowerShutdown, bus, logging.GetLogger("power"))
	powerLine, err := chip.RequestButton(opts.PowerPin, opts.Debounce(), powerButton.HandleEdge)
	if err != nil {
		return fmt.Errorf("power button line: %w", err)
	}
	powerButton.BindLine(powerLine)

	// The reset button deliberately bypasses the coordinator: immediate
	// reboot, no grace, no workload stop, no idempotence guard. The
	// rebooter tolerates repeat calls.
	resetButton := power.NewButton("reset", opts.Debounce(), func() {
		if rebootErr := rebooter.Reboot(); rebootErr != nil {
			logging.GetLogger("power").Error("Reset reboot failed", "error", rebootErr)
		}
	}, bus, logging.GetLogger("power"))
	resetLine, err := chip.RequestButton(opts.ResetPin, opts.Debounce(), resetButton.HandleEdge)
	if err != nil {
		return fmt.Errorf("reset button line: %w", err)
	}
	resetButton.BindLine(resetLine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go animator.Run(ctx)

	if opts.Watch {
		if _, statErr := os.Stat(opts.Config); statErr == nil {
			watcher := config.NewWatcher(opts.Config, config.LoadFile, logging.GetLogger("config"))
			watcher.OnReload(func(o config.Options) {
				if validateErr := config.Validate(o); validateErr != nil {
					logging.GetLogger("config").Warn("Ignoring invalid config reload", "error", validateErr)
					return
				}
				animator.SetThresholds(o.Thresholds())
				bus.Publish(events.ConfigReloadedEvent{
					Path:      opts.Config,
					Timestamp: time.Now().Format(time.RFC3339),
				})
			})
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher not started", "error", watchErr)
			} else {
				defer watcher.Stop()
			}
		}
	}

	if sent, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
		logger.Debug("sd_notify failed", "error", notifyErr)
	} else if sent {
		logger.Debug("Notified systemd: ready")
	}

	logger.Info("Button handlers registered, waiting for events")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig
	logger.Info("Signal received, shutting down", "signal", received.String())

	daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()

	// Quiesce the LED before releasing the lines; the chip Close (via
	// defer) releases everything else. The power enable latch stays high.
	if setErr := ledLine.Set(gpio.Low); setErr != nil {
		logger.Debug("Could not turn LED off on exit", "error", setErr)
	}

	logger.Info("caseguard stopped")
	return nil
}

// subscribeDiagnostics logs every bus event, so the journal carries a
// trace of presses, tier changes, and reloads.
func subscribeDiagnostics(bus *events.Bus) {
	logger := logging.GetLogger("events")

	bus.Subscribe(func(e events.ButtonPressedEvent) {
		logger.Info("Button pressed", "button", e.Button)
	})
	bus.Subscribe(func(e events.ShutdownStartedEvent) {
		logger.Info("Shutdown sequence started", "source", e.Source)
	})
	bus.Subscribe(func(e events.HealthTierChangedEvent) {
		logger.Info("Health tier changed", "tier", e.Tier,
			"load1", e.Load1, "temperature_c", e.TemperatureC)
	})
	bus.Subscribe(func(e events.ConfigReloadedEvent) {
		logger.Info("Configuration reloaded", "path", e.Path)
	})
}
