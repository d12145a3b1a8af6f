// Package config loads daemon configuration with the precedence
// CLI flags > environment > TOML file > defaults.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/caseguard/caseguard/internal/led"
	"github.com/caseguard/caseguard/internal/logging"
)

const envPrefix = "CASEGUARD_"

// Options is the full daemon configuration, flat with TOML path mapping.
type Options struct {
	Config string `toml:"-"`

	// GPIO wiring (BCM numbering, NESPi 4 defaults)
	Chip           string `toml:"gpio.chip" env:"GPIO_CHIP"`
	PowerPin       int    `toml:"gpio.power_pin" env:"GPIO_POWER_PIN"`
	ResetPin       int    `toml:"gpio.reset_pin" env:"GPIO_RESET_PIN"`
	LedPin         int    `toml:"gpio.led_pin" env:"GPIO_LED_PIN"`
	PowerEnablePin int    `toml:"gpio.power_enable_pin" env:"GPIO_POWER_ENABLE_PIN"`

	// Timing
	TickMs     int `toml:"timing.tick_ms" env:"TICK_MS"`
	DebounceMs int `toml:"timing.debounce_ms" env:"DEBOUNCE_MS"`
	GraceMs    int `toml:"timing.grace_ms" env:"GRACE_MS"`

	// Health tier thresholds
	TempLowC    float64 `toml:"thresholds.temp_low_c" env:"TEMP_LOW_C"`
	TempMediumC float64 `toml:"thresholds.temp_medium_c" env:"TEMP_MEDIUM_C"`
	TempHighC   float64 `toml:"thresholds.temp_high_c" env:"TEMP_HIGH_C"`
	LoadLow     float64 `toml:"thresholds.load_low" env:"LOAD_LOW"`
	LoadMedium  float64 `toml:"thresholds.load_medium" env:"LOAD_MEDIUM"`
	LoadHigh    float64 `toml:"thresholds.load_high" env:"LOAD_HIGH"`

	// Workloads stopped before reboot
	StopCommand   string `toml:"workloads.stop_command" env:"STOP_COMMAND"`
	StopUnits     string `toml:"workloads.stop_units" env:"STOP_UNITS"`
	StopTimeoutMs int    `toml:"workloads.stop_timeout_ms" env:"STOP_TIMEOUT_MS"`

	// Watch reloads thresholds when the config file changes
	Watch bool `toml:"watch" env:"WATCH"`

	// Logging
	LoggingLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `toml:"logging.format" env:"LOGGING_FORMAT"`
}

// Default returns the stock NESPi 4 configuration.
func Default() Options {
	return Options{
		Chip:           "gpiochip0",
		PowerPin:       3,
		ResetPin:       2,
		LedPin:         14,
		PowerEnablePin: 4,

		TickMs:     200,
		DebounceMs: 200,
		GraceMs:    3000,

		TempLowC:    60.0,
		TempMediumC: 67.0,
		TempHighC:   75.0,
		LoadLow:     1.1,
		LoadMedium:  2.2,
		LoadHigh:    3.3,

		StopCommand:   "docker ps -q | xargs -r docker stop",
		StopTimeoutMs: 30000,

		Watch: true,

		LoggingLevel:  "info",
		LoggingFormat: "text",
	}
}

// Tick returns the LED animation tick duration.
func (o Options) Tick() time.Duration { return time.Duration(o.TickMs) * time.Millisecond }

// Debounce returns the button debounce/settle duration.
func (o Options) Debounce() time.Duration { return time.Duration(o.DebounceMs) * time.Millisecond }

// Grace returns the pre-reboot grace period.
func (o Options) Grace() time.Duration { return time.Duration(o.GraceMs) * time.Millisecond }

// StopTimeout returns the workload stop timeout.
func (o Options) StopTimeout() time.Duration {
	return time.Duration(o.StopTimeoutMs) * time.Millisecond
}

// StopUnitList splits the comma separated stop_units value into unit names.
func (o Options) StopUnitList() []string {
	var units []string
	for _, unit := range strings.Split(o.StopUnits, ",") {
		if unit = strings.TrimSpace(unit); unit != "" {
			units = append(units, unit)
		}
	}
	return units
}

// Thresholds returns the health tier boundaries as the led package wants them.
func (o Options) Thresholds() led.Thresholds {
	return led.Thresholds{
		LowTempC:    o.TempLowC,
		MediumTempC: o.TempMediumC,
		HighTempC:   o.TempHighC,
		LowLoad1:    o.LoadLow,
		MediumLoad1: o.LoadMedium,
		HighLoad1:   o.LoadHigh,
	}
}

// Validate checks the configuration for contradictions.
func Validate(o Options) error {
	pins := map[int]string{}
	for _, p := range []struct {
		name string
		pin  int
	}{
		{"gpio.power_pin", o.PowerPin},
		{"gpio.reset_pin", o.ResetPin},
		{"gpio.led_pin", o.LedPin},
		{"gpio.power_enable_pin", o.PowerEnablePin},
	} {
		if p.pin < 0 {
			return fmt.Errorf("%s: pin must be non-negative, got %d", p.name, p.pin)
		}
		if other, taken := pins[p.pin]; taken {
			return fmt.Errorf("%s and %s both use pin %d", p.name, other, p.pin)
		}
		pins[p.pin] = p.name
	}

	if o.TickMs <= 0 {
		return fmt.Errorf("timing.tick_ms must be positive, got %d", o.TickMs)
	}
	if o.DebounceMs <= 0 {
		return fmt.Errorf("timing.debounce_ms must be positive, got %d", o.DebounceMs)
	}
	if o.GraceMs < 0 {
		return fmt.Errorf("timing.grace_ms must be non-negative, got %d", o.GraceMs)
	}
	if o.StopTimeoutMs <= 0 {
		return fmt.Errorf("workloads.stop_timeout_ms must be positive, got %d", o.StopTimeoutMs)
	}

	if !(o.TempLowC < o.TempMediumC && o.TempMediumC < o.TempHighC) {
		return fmt.Errorf("temperature thresholds must be ascending: %.1f < %.1f < %.1f",
			o.TempLowC, o.TempMediumC, o.TempHighC)
	}
	if !(o.LoadLow < o.LoadMedium && o.LoadMedium < o.LoadHigh) {
		return fmt.Errorf("load thresholds must be ascending: %.2f < %.2f < %.2f",
			o.LoadLow, o.LoadMedium, o.LoadHigh)
	}

	return nil
}

// LoadConfig applies the TOML file and environment on top of opts, keeping
// any values explicitly set via CLI flags.
func LoadConfig(opts *Options, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changedFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changedFlags[f.Name] = true
			}
		})
	}

	if opts.Config != "" {
		if data, err := os.ReadFile(opts.Config); err == nil {
			var raw map[string]any
			if err := toml.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("failed to parse TOML config: %w", err)
			}

			for i := 0; i < v.NumField(); i++ {
				field := v.Field(i)
				fieldType := t.Field(i)

				if changedFlags[fieldNameToFlag(fieldType.Name)] {
					continue
				}
				if tomlPath := fieldType.Tag.Get("toml"); tomlPath != "" && tomlPath != "-" {
					if value := getNestedValue(raw, tomlPath); value != nil {
						setFieldValue(field, value)
					}
				}
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if changedFlags[fieldNameToFlag(fieldType.Name)] {
			continue
		}
		if envKey := fieldType.Tag.Get("env"); envKey != "" {
			if envValue := os.Getenv(envPrefix + envKey); envValue != "" {
				setFieldValueFromString(field, envValue)
			}
		}
	}

	return nil
}

// LoadFile loads defaults plus the TOML file at path. Used by the config
// watcher, which needs parse errors surfaced rather than swallowed.
func LoadFile(path string) (Options, error) {
	o := Default()
	o.Config = path

	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read config: %w", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return o, fmt.Errorf("parse config: %w", err)
	}

	v := reflect.ValueOf(&o).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if tomlPath := t.Field(i).Tag.Get("toml"); tomlPath != "" && tomlPath != "-" {
			if value := getNestedValue(raw, tomlPath); value != nil {
				setFieldValue(v.Field(i), value)
			}
		}
	}
	return o, nil
}

// LoadLoggingConfig reads per-module log levels from the [logging] table.
// Returns defaults if the file is missing or unparseable.
func LoadLoggingConfig(configPath string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	if configPath == "" {
		return cfg
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}

	var raw struct {
		Logging map[string]string `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg
	}

	for key, value := range raw.Logging {
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		default:
			cfg.Modules[key] = value
		}
	}
	return cfg
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "PowerPin" -> "power-pin".
func fieldNameToFlag(fieldName string) string {
	var result []rune
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '-')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue retrieves a value from a nested map using dot notation.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

// setFieldValue sets a field value from a decoded TOML value.
func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		}
	case reflect.Float64:
		switch n := value.(type) {
		case float64:
			field.SetFloat(n)
		case int64:
			field.SetFloat(float64(n))
		}
	}
}

// setFieldValueFromString sets a field value from a string (for env vars).
func setFieldValueFromString(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Float64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			field.SetFloat(f)
		}
	}
}
