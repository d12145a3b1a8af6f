// Package logging provides structured logging with per-module log level
// configuration.
//
// The logging system uses Go's slog package with automatic output routing:
// logs go to the systemd journal when journald is available, to stdout when a
// terminal, pipe, or file is connected, and to both when both are available.
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"led":   "debug",
//			"power": "info",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("power")
//	logger.Info("Shutdown sequence started", "button", "power")
//
// When running as a systemd service, view logs with:
//
//	journalctl -t caseguard -f
package logging
