package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/ecohub/internal/config"
	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecohub.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "debug"
log_file = "/tmp/ecohub.log"
history_file = "/var/lib/ecohub/history.log"
batch_size = 5
idle_delay = "250ms"
min_update_delay = "2s"
max_update_delay = "3s"
temp_threshold = 32
cooling_target = 24.5
battery_threshold = 15
metrics = true
metrics_db = "/path/to/metrics.db"

[[devices]]
id = "thermo_09"
name = "Garage Thermostat"
location = "Garage"
type = "thermostat"
current_temp = 33.5
`)

	// Set environment variable to point to the test config file
	t.Setenv("ECOHUB_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/ecohub.log", cfg.LogFile)
	assert.Equal(t, "/var/lib/ecohub/history.log", cfg.HistoryFile)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.IdleDelay)
	assert.Equal(t, 2*time.Second, cfg.MinUpdateDelay)
	assert.Equal(t, 3*time.Second, cfg.MaxUpdateDelay)
	assert.InDelta(t, 32.0, cfg.TempThreshold, 1e-9)
	assert.InDelta(t, 24.5, cfg.CoolingTarget, 1e-9)
	assert.Equal(t, 15, cfg.BatteryThreshold)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "/path/to/metrics.db", cfg.MetricsDB)

	require.Len(t, cfg.Devices, 1)
	spec := cfg.Devices[0].Spec()
	assert.Equal(t, device.Spec{
		ID:           "thermo_09",
		Name:         "Garage Thermostat",
		Location:     "Garage",
		Type:         device.TypeThermostat,
		CurrentTemp:  33.5,
		TargetTemp:   20.0,
		Humidity:     50.0,
		BatteryLevel: 100,
	}, spec)
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("ECOHUB_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, config.DefaultHistoryFile, cfg.HistoryFile)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.IdleDelay)
	assert.Equal(t, time.Second, cfg.MinUpdateDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxUpdateDelay)
	assert.InDelta(t, 30.0, cfg.TempThreshold, 1e-9)
	assert.InDelta(t, 25.0, cfg.CoolingTarget, 1e-9)
	assert.Equal(t, 10, cfg.BatteryThreshold)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, config.DefaultDevices(), cfg.Devices)
}

func TestDefaultDevices(t *testing.T) {
	devices := config.DefaultDevices()
	require.Len(t, devices, 6)

	specs := make(map[string]device.Spec, len(devices))
	for _, d := range devices {
		specs[d.ID] = d.Spec()
	}

	assert.Equal(t, device.TypeBulb, specs["bulb_01"].Type)
	assert.Equal(t, "Bedroom Light", specs["bulb_02"].Name)
	assert.InDelta(t, 28.0, specs["thermo_01"].CurrentTemp, 1e-9)
	assert.InDelta(t, 24.0, specs["thermo_01"].TargetTemp, 1e-9)
	assert.InDelta(t, 45.0, specs["thermo_01"].Humidity, 1e-9)
	assert.InDelta(t, 27.0, specs["thermo_02"].CurrentTemp, 1e-9)
	assert.Equal(t, 85, specs["cam_01"].BatteryLevel)
	assert.Equal(t, 5, specs["cam_02"].BatteryLevel)
	assert.Equal(t, "Garden", specs["cam_02"].Location)
}

func TestLoadEnvOverride(t *testing.T) {
	configPath := writeConfig(t, `
batch_size = 5
`)
	t.Setenv("ECOHUB_CONFIG", configPath)
	t.Setenv("ECOHUB_BATCH_SIZE", "7")
	t.Setenv("ECOHUB_IDLE_DELAY", "50ms")
	t.Setenv("ECOHUB_LOG_LEVEL", "WARN")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.BatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.IdleDelay)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadWithOptions(t *testing.T) {
	configPath := writeConfig(t, `
history_file = "custom.log"
`)
	t.Setenv("ECOHUB_CONFIG", "")
	t.Setenv("TESTHUB_BATCH_SIZE", "3")

	cfg, err := config.Load(config.WithConfigFile(configPath), config.WithEnvPrefix("TESTHUB"))
	require.NoError(t, err)
	assert.Equal(t, "custom.log", cfg.HistoryFile)
	assert.Equal(t, 3, cfg.BatchSize)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("ECOHUB_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, config.ErrReadConfig))
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("ECOHUB_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, config.ErrReadConfig))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{
			name:    "invalid log level",
			content: `log_level = "invalid"`,
			code:    config.ErrInvalidLogLevel,
		},
		{
			name:    "zero batch size",
			content: `batch_size = 0`,
			code:    config.ErrInvalidBatchSize,
		},
		{
			name:    "negative idle delay",
			content: `idle_delay = "-1s"`,
			code:    config.ErrInvalidInterval,
		},
		{
			name: "inverted update delays",
			content: `
min_update_delay = "5s"
max_update_delay = "1s"`,
			code: config.ErrInvalidUpdateDelay,
		},
		{
			name:    "empty history file",
			content: `history_file = ""`,
			code:    config.ErrInvalidHistoryFile,
		},
		{
			name:    "battery threshold out of range",
			content: `battery_threshold = 120`,
			code:    config.ErrInvalidThreshold,
		},
		{
			name:    "cooling target above threshold",
			content: `cooling_target = 35`,
			code:    config.ErrInvalidCoolingTarget,
		},
		{
			name: "metrics without database",
			content: `
metrics = true
metrics_db = ""`,
			code: config.ErrInvalidMetricsDB,
		},
		{
			name: "unknown device type",
			content: `
[[devices]]
id = "toaster_01"
type = "TOASTER"`,
			code: config.ErrInvalidDevice,
		},
		{
			name: "duplicate device id",
			content: `
[[devices]]
id = "bulb_01"
type = "BULB"

[[devices]]
id = "bulb_01"
type = "BULB"`,
			code: config.ErrDuplicateDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ECOHUB_CONFIG", writeConfig(t, tt.content))

			_, err := config.Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "unexpected error: %v", err)
		})
	}
}
