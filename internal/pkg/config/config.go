package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Measure   MeasureConfig   `mapstructure:"measure"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	BodyLimit      int    `mapstructure:"body_limit"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	Enabled       bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr          string `mapstructure:"addr"`
	Enabled       bool   `mapstructure:"enabled"`
	PreferenceTTL int    `mapstructure:"preference_ttl"`
}

type TelemetryConfig struct {
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
	Enabled       bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MeasureConfig struct {
	StrictVertex        bool    `mapstructure:"strict_vertex"`
	VertexTolerance     float64 `mapstructure:"vertex_tolerance"`
	DefaultDistanceUnit string  `mapstructure:"default_distance_unit"`
	DefaultAngleUnit    string  `mapstructure:"default_angle_unit"`
}

// DefaultUnits returns the configured unit toggles a new session starts with.
// Validate guarantees both values parse.
func (m MeasureConfig) DefaultUnits() domain.UnitPreference {
	prefs := domain.DefaultUnitPreference()
	if u, err := domain.ParseDistanceUnit(m.DefaultDistanceUnit); err == nil {
		prefs.Distance = u
	}
	if u, err := domain.ParseAngleUnit(m.DefaultAngleUnit); err == nil {
		prefs.Angle = u
	}
	return prefs
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOMEASURE_MEASURE_STRICT_VERTEX → measure.strict_vertex
	v.SetEnvPrefix("GEOMEASURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.body_limit", 64*1024)
	v.SetDefault("server.allowed_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "measurements")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("valkey.preference_ttl", 30*24*3600)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.collector_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("measure.strict_vertex", false)
	v.SetDefault("measure.vertex_tolerance", 1.0)
	v.SetDefault("measure.default_distance_unit", string(domain.Kilometers))
	v.SetDefault("measure.default_angle_unit", string(domain.Degrees))
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, "server.body_limit must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.NATS.Enabled && c.NATS.SubjectPrefix == "" {
		errs = append(errs, "nats.subject_prefix is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.Valkey.PreferenceTTL < 0 {
		errs = append(errs, "valkey.preference_ttl must not be negative")
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorAddr == "" {
		errs = append(errs, "telemetry.collector_addr is required when telemetry is enabled")
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != "json" && f != "text" {
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Measure.VertexTolerance < 0 {
		errs = append(errs, "measure.vertex_tolerance must not be negative")
	}
	if _, err := domain.ParseDistanceUnit(c.Measure.DefaultDistanceUnit); err != nil {
		errs = append(errs, fmt.Sprintf("measure.default_distance_unit: %v", err))
	}
	if _, err := domain.ParseAngleUnit(c.Measure.DefaultAngleUnit); err != nil {
		errs = append(errs, fmt.Sprintf("measure.default_angle_unit: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
