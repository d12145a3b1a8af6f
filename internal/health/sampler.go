// Package health reads the scalar health metrics the LED animator renders:
// 1-minute load average and CPU temperature.
package health

import (
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
)

const thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// Sample is a point-in-time health reading.
type Sample struct {
	Load1        float64
	TemperatureC float64
}

// Sampler obtains a health sample on demand.
// Implementations never fail the caller: unreadable metrics resolve to 0.
type Sampler interface {
	Sample() Sample
}

// systemSampler reads from the running system via gopsutil, with a sysfs
// thermal zone fallback for boards whose sensors gopsutil does not map.
type systemSampler struct {
	logger *slog.Logger
}

// NewSampler returns a Sampler reading from the local system.
func NewSampler(logger *slog.Logger) Sampler {
	return &systemSampler{logger: logger}
}

// Sample reads load and temperature. Read errors are logged at debug level
// and the affected metric resolves to 0, which selects the idle tier.
func (s *systemSampler) Sample() Sample {
	var sample Sample

	avg, err := load.Avg()
	if err != nil {
		s.logger.Debug("Could not read load average", "error", err)
	} else {
		sample.Load1 = clamp(avg.Load1)
	}

	temp, err := s.cpuTemperature()
	if err != nil {
		s.logger.Debug("Could not read CPU temperature", "error", err)
	} else {
		sample.TemperatureC = clamp(temp)
	}

	return sample
}

// cpuTemperature tries gopsutil sensor enumeration first and falls back to
// the thermal zone sysfs file the kernel exposes on most SBCs.
func (s *systemSampler) cpuTemperature() (float64, error) {
	temps, err := host.SensorsTemperatures()
	if err == nil {
		for _, t := range temps {
			if isCPUSensor(t.SensorKey) && t.Temperature > 0 {
				return t.Temperature, nil
			}
		}
	}
	return readThermalZone(thermalZonePath)
}

// isCPUSensor matches the sensor keys SBC kernels use for the SoC/CPU.
func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	for _, want := range []string{"cpu_thermal", "cpu-thermal", "soc_thermal", "coretemp", "k10temp"} {
		if strings.Contains(key, want) {
			return true
		}
	}
	return false
}

// readThermalZone parses a sysfs thermal zone file (millidegrees Celsius).
func readThermalZone(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, err
	}
	return milli / 1000.0, nil
}

// clamp maps NaN, infinite, and negative readings to 0 so downstream
// pattern selection only ever sees plain non-negative numbers.
func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
