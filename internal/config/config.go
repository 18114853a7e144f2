package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/errors"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix        = "ECOHUB"
	DefaultConfigName       = "ecohub"
	DefaultLogLevel         = "info"
	DefaultHistoryFile      = "history.log"
	DefaultBatchSize        = 10
	DefaultIdleDelay        = 100 * time.Millisecond
	DefaultMinUpdateDelay   = 1 * time.Second
	DefaultMaxUpdateDelay   = 5 * time.Second
	DefaultTempThreshold    = 30.0
	DefaultCoolingTarget    = 25.0
	DefaultBatteryThreshold = 10
	DefaultMetricsDB        = "ecohub-metrics.db"
	DefaultPIDFile          = ""

	defaultThermostatTemp     = 20.0
	defaultThermostatHumidity = 50.0
	defaultBatteryLevel       = 100
)

var configPaths = []string{".", "/etc/ecohub"}

type Config struct {
	LogLevel         string         `mapstructure:"log_level"`
	LogFile          string         `mapstructure:"log_file"`
	HistoryFile      string         `mapstructure:"history_file"`
	BatchSize        int            `mapstructure:"batch_size"`
	IdleDelay        time.Duration  `mapstructure:"idle_delay"`
	MinUpdateDelay   time.Duration  `mapstructure:"min_update_delay"`
	MaxUpdateDelay   time.Duration  `mapstructure:"max_update_delay"`
	TempThreshold    float64        `mapstructure:"temp_threshold"`
	CoolingTarget    float64        `mapstructure:"cooling_target"`
	BatteryThreshold int            `mapstructure:"battery_threshold"`
	Metrics          bool           `mapstructure:"metrics"`
	MetricsDB        string         `mapstructure:"metrics_db"`
	PIDFile          string         `mapstructure:"pid_file"`
	Devices          []DeviceConfig `mapstructure:"devices"`
}

// DeviceConfig declares one simulated device. Optional readings fall back
// to the device defaults when omitted.
type DeviceConfig struct {
	ID           string   `mapstructure:"id"`
	Name         string   `mapstructure:"name"`
	Location     string   `mapstructure:"location"`
	Type         string   `mapstructure:"type"`
	CurrentTemp  *float64 `mapstructure:"current_temp"`
	TargetTemp   *float64 `mapstructure:"target_temp"`
	Humidity     *float64 `mapstructure:"humidity"`
	BatteryLevel *int     `mapstructure:"battery_level"`
}

// Spec resolves the entry into a device constructor spec.
func (d DeviceConfig) Spec() device.Spec {
	return device.Spec{
		ID:           d.ID,
		Name:         d.Name,
		Location:     d.Location,
		Type:         device.Type(strings.ToUpper(d.Type)),
		CurrentTemp:  valueOr(d.CurrentTemp, defaultThermostatTemp),
		TargetTemp:   valueOr(d.TargetTemp, defaultThermostatTemp),
		Humidity:     valueOr(d.Humidity, defaultThermostatHumidity),
		BatteryLevel: valueOr(d.BatteryLevel, defaultBatteryLevel),
	}
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func ptr[T any](v T) *T {
	return &v
}

// DefaultDevices returns the reference fleet used when no devices are
// configured.
func DefaultDevices() []DeviceConfig {
	return []DeviceConfig{
		{ID: "bulb_01", Name: "Living Room Light", Location: "Living Room", Type: string(device.TypeBulb)},
		{ID: "bulb_02", Name: "Bedroom Light", Location: "Bedroom", Type: string(device.TypeBulb)},
		{
			ID: "thermo_01", Name: "Main Thermostat", Location: "Living Room", Type: string(device.TypeThermostat),
			CurrentTemp: ptr(28.0), TargetTemp: ptr(24.0), Humidity: ptr(45.0),
		},
		{
			ID: "thermo_02", Name: "Bedroom Thermostat", Location: "Bedroom", Type: string(device.TypeThermostat),
			CurrentTemp: ptr(27.0), TargetTemp: ptr(25.0), Humidity: ptr(50.0),
		},
		{ID: "cam_01", Name: "Front Door Camera", Location: "Entrance", Type: string(device.TypeCamera), BatteryLevel: ptr(85)},
		{ID: "cam_02", Name: "Backyard Camera", Location: "Garden", Type: string(device.TypeCamera), BatteryLevel: ptr(5)},
	}
}

// Load reads configuration from defaults, an optional TOML file and
// environment variables, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(ErrInvalidConfig, err)
		}
	}
	if o.configPath == "" {
		o.configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(ErrReadConfig, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		for _, path := range configPaths {
			v.AddConfigPath(path)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errFactory.Wrap(ErrReadConfig, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if len(cfg.Devices) == 0 {
		cfg.Devices = DefaultDevices()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("history_file", DefaultHistoryFile)
	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("idle_delay", DefaultIdleDelay)
	v.SetDefault("min_update_delay", DefaultMinUpdateDelay)
	v.SetDefault("max_update_delay", DefaultMaxUpdateDelay)
	v.SetDefault("temp_threshold", DefaultTempThreshold)
	v.SetDefault("cooling_target", DefaultCoolingTarget)
	v.SetDefault("battery_threshold", DefaultBatteryThreshold)
	v.SetDefault("metrics", false)
	v.SetDefault("metrics_db", DefaultMetricsDB)
	v.SetDefault("pid_file", DefaultPIDFile)
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(ErrInvalidLogLevel, c.LogLevel)
	}
	if c.HistoryFile == "" {
		return errFactory.New(ErrInvalidHistoryFile)
	}
	if c.BatchSize <= 0 {
		return errFactory.WithData(ErrInvalidBatchSize, c.BatchSize)
	}
	if c.IdleDelay <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.IdleDelay.String())
	}
	if c.MinUpdateDelay <= 0 || c.MaxUpdateDelay < c.MinUpdateDelay {
		return errFactory.WithData(ErrInvalidUpdateDelay, struct {
			Min string
			Max string
		}{
			Min: c.MinUpdateDelay.String(),
			Max: c.MaxUpdateDelay.String(),
		})
	}
	if c.BatteryThreshold < 0 || c.BatteryThreshold > 100 {
		return errFactory.WithData(ErrInvalidThreshold, c.BatteryThreshold)
	}
	if c.CoolingTarget >= c.TempThreshold {
		return errFactory.WithData(ErrInvalidCoolingTarget, struct {
			CoolingTarget float64
			TempThreshold float64
		}{
			CoolingTarget: c.CoolingTarget,
			TempThreshold: c.TempThreshold,
		})
	}
	if c.Metrics && c.MetricsDB == "" {
		return errFactory.New(ErrInvalidMetricsDB)
	}

	seen := make(map[string]struct{}, len(c.Devices))
	for _, d := range c.Devices {
		if d.ID == "" {
			return errFactory.WithMessage(ErrInvalidDevice, "device id must not be empty")
		}
		if _, ok := seen[d.ID]; ok {
			return errFactory.WithData(ErrDuplicateDevice, d.ID)
		}
		seen[d.ID] = struct{}{}

		switch device.Type(strings.ToUpper(d.Type)) {
		case device.TypeBulb, device.TypeThermostat, device.TypeCamera:
		default:
			return errFactory.WithData(ErrInvalidDevice, struct {
				ID   string
				Type string
			}{
				ID:   d.ID,
				Type: d.Type,
			})
		}
	}

	return nil
}
