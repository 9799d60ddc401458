package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg := LoadFrom(envMap(nil))

	assert.Equal(t, ":8080", cfg.HTTPAddress)
	assert.Equal(t, STORE_REDIS, cfg.Store)
	assert.Equal(t, REDIS_DB_ADDRESS, cfg.RedisAddress)
	assert.Equal(t, 10*time.Minute, cfg.SnapshotRefresh)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1.0, cfg.TemperatureTolerance)
	assert.Equal(t, 10, cfg.TopN)
	assert.False(t, cfg.CheckAvailability)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg := LoadFrom(envMap(map[string]string{
		"STORE":                 "SQLite",
		"SQLITE_PATH":           "/tmp/rooms.db",
		"TEMPERATURE_TOLERANCE": "2",
		"TOP_N":                 "5",
		"CHECK_AVAILABILITY":    "true",
		"WEIGHT_FACILITIES":     "0.3",
		"CORS_ALLOWED_ORIGINS":  "http://a.example, http://b.example",
		"MQTT_BROKER":           "tcp://mosquitto:1883",
	}))

	assert.Equal(t, STORE_SQLITE, cfg.Store)
	assert.Equal(t, "/tmp/rooms.db", cfg.SQLitePath)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "tcp://mosquitto:1883", cfg.MQTTBroker)

	opts := cfg.PipelineOptions()
	assert.Equal(t, 2.0, opts.TemperatureTolerance)
	assert.Equal(t, 5, opts.TopN)
	assert.True(t, opts.CheckAvailability)
	assert.Equal(t, 0.3, opts.Weights.Facilities)
	assert.Equal(t, 0.5, opts.Weights.Comfort)
	assert.Equal(t, 45.0, opts.Standards.SoundMax)
}

func TestLoadFrom_InvalidValuesFallBack(t *testing.T) {
	cfg := LoadFrom(envMap(map[string]string{
		"TOP_N":                 "-3",
		"CACHE_TTL_SECONDS":     "soon",
		"CHECK_AVAILABILITY":    "maybe",
		"STORE":                 "mongo",
		"TEMPERATURE_TOLERANCE": "-1",
	}))

	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CheckAvailability)
	assert.Equal(t, STORE_REDIS, cfg.Store)
	assert.Equal(t, 1.0, cfg.TemperatureTolerance)
	assert.Len(t, cfg.Warnings, 5)
}

func TestGetResourcePath(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "/srv/roomrec")
	assert.Equal(t, filepath.Join("/srv/roomrec", "resources", AGENDA_RESOURCE), GetResourcePath(AGENDA_RESOURCE))
}
