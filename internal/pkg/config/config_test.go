package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("geomeasure-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "measurements", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "geomeasure-test", cfg.Telemetry.ServiceName)
	assert.False(t, cfg.Measure.StrictVertex)
	assert.Equal(t, domain.DefaultUnitPreference(), cfg.Measure.DefaultUnits())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEOMEASURE_SERVER_PORT", "9090")
	t.Setenv("GEOMEASURE_MEASURE_STRICT_VERTEX", "true")
	t.Setenv("GEOMEASURE_MEASURE_DEFAULT_DISTANCE_UNIT", "miles")
	t.Setenv("GEOMEASURE_MEASURE_DEFAULT_ANGLE_UNIT", "rad")
	t.Setenv("GEOMEASURE_LOG_FORMAT", "text")

	cfg, err := config.Load("geomeasure-test")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Measure.StrictVertex)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t,
		domain.UnitPreference{Distance: domain.Miles, Angle: domain.Radians},
		cfg.Measure.DefaultUnits())
}

func TestLoad_RejectsUnknownUnit(t *testing.T) {
	t.Setenv("GEOMEASURE_MEASURE_DEFAULT_DISTANCE_UNIT", "furlong")

	_, err := config.Load("geomeasure-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "measure.default_distance_unit")
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &config.Config{
		NATS:    config.NATSConfig{Enabled: true},
		Valkey:  config.ValkeyConfig{Enabled: true},
		Log:     config.LogConfig{Format: "xml"},
		Measure: config.MeasureConfig{DefaultDistanceUnit: "km", DefaultAngleUnit: "deg"},
	}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"server.port",
		"server.read_timeout",
		"nats.url",
		"nats.subject_prefix",
		"valkey.addr",
		"log.format",
	} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %s", want, msg)
	}
}

func TestValidate_DisabledBackendsNeedNoAddress(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, ReadTimeout: 1, WriteTimeout: 1, BodyLimit: 1024},
		Measure: config.MeasureConfig{DefaultDistanceUnit: "mi", DefaultAngleUnit: "degrees"},
	}

	assert.NoError(t, cfg.Validate())
}
