package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"roomrec-server/recommender"
)

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// SQLite Config
const SQLITE_DB_PATH = "data/roomrec.db"

// Snapshot refresher config
const SNAPSHOT_REFRESHER_SCHEDULE_MINUTES = 10

// MQTT ingest config; an empty broker disables the subscriber
const MQTT_DEFAULT_TOPIC = "sensors/readings"
const MQTT_DEFAULT_CLIENT_ID = "roomrec-server"

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const AGENDA_RESOURCE = "agenda.json"
const FACILITIES_RESOURCE = "facilities.json"
const SENSOR_READINGS_RESOURCE = "sensor_readings.json"

const (
	STORE_REDIS  = "redis"
	STORE_SQLITE = "sqlite"
)

// Config is the runtime configuration: the constants above overridden by environment
// variables.
type Config struct {
	HTTPAddress     string
	ShutdownTimeout time.Duration

	Store         string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	SQLitePath    string

	SnapshotRefresh    time.Duration
	CacheTTL           time.Duration
	CacheSize          int
	MaxReadingsPerRoom int

	TemperatureTolerance float64
	TopN                 int
	CheckAvailability    bool
	WeightFacilities     float64
	WeightComfort        float64

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string

	LogLevel string
	LogFile  string

	// Warnings lists environment values that were ignored because they did not parse.
	Warnings []string
}

// Load reads the configuration from the process environment.
func Load() Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds a Config from defaults and the variables returned by getenv.
func LoadFrom(getenv func(string) string) Config {
	e := env{getenv: getenv}
	cfg := Config{
		HTTPAddress:     e.str("HTTP_ADDRESS", ":8080"),
		ShutdownTimeout: e.seconds("SHUTDOWN_TIMEOUT_SECONDS", 5),

		Store:         strings.ToLower(e.str("STORE", STORE_REDIS)),
		RedisAddress:  e.str("REDIS_ADDRESS", REDIS_DB_ADDRESS),
		RedisPassword: e.str("REDIS_PASSWORD", REDIS_DB_PASSWORD),
		RedisDB:       e.integer("REDIS_DB", REDIS_DB),
		SQLitePath:    e.str("SQLITE_PATH", SQLITE_DB_PATH),

		SnapshotRefresh:    time.Duration(e.positiveInt("SNAPSHOT_REFRESH_MINUTES", SNAPSHOT_REFRESHER_SCHEDULE_MINUTES)) * time.Minute,
		CacheTTL:           e.seconds("CACHE_TTL_SECONDS", 60),
		CacheSize:          e.positiveInt("CACHE_SIZE", 10000),
		MaxReadingsPerRoom: e.positiveInt("MAX_READINGS_PER_ROOM", 10000),

		TemperatureTolerance: e.float("TEMPERATURE_TOLERANCE", recommender.DefaultTemperatureTolerance),
		TopN:                 e.positiveInt("TOP_N", recommender.DefaultTopN),
		CheckAvailability:    e.boolean("CHECK_AVAILABILITY", false),
		WeightFacilities:     e.float("WEIGHT_FACILITIES", 0.5),
		WeightComfort:        e.float("WEIGHT_COMFORT", 0.5),

		MQTTBroker:   e.str("MQTT_BROKER", ""),
		MQTTTopic:    e.str("MQTT_TOPIC", MQTT_DEFAULT_TOPIC),
		MQTTClientID: e.str("MQTT_CLIENT_ID", MQTT_DEFAULT_CLIENT_ID),

		RateLimitRPS:       e.float("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     e.positiveInt("RATE_LIMIT_BURST", 40),
		CORSAllowedOrigins: splitAndTrim(e.str("CORS_ALLOWED_ORIGINS", "*")),

		LogLevel: e.str("LOG_LEVEL", "info"),
		LogFile:  e.str("LOG_FILE", ""),
	}

	if cfg.Store != STORE_REDIS && cfg.Store != STORE_SQLITE {
		e.warn("STORE", cfg.Store)
		cfg.Store = STORE_REDIS
	}
	if cfg.TemperatureTolerance < 0 {
		e.warn("TEMPERATURE_TOLERANCE", getenv("TEMPERATURE_TOLERANCE"))
		cfg.TemperatureTolerance = recommender.DefaultTemperatureTolerance
	}
	cfg.Warnings = e.warnings
	return cfg
}

// PipelineOptions turns the configured defaults into recommender options.
func (c Config) PipelineOptions() recommender.Options {
	opts := recommender.DefaultOptions()
	opts.TemperatureTolerance = c.TemperatureTolerance
	opts.TopN = c.TopN
	opts.CheckAvailability = c.CheckAvailability
	opts.Weights.Facilities = c.WeightFacilities
	opts.Weights.Comfort = c.WeightComfort
	return opts
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resource_file string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resource_file)
}

type env struct {
	getenv   func(string) string
	warnings []string
}

func (e *env) warn(key, value string) {
	e.warnings = append(e.warnings, fmt.Sprintf("ignoring invalid %s=%q, using default", key, value))
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.warn(key, v)
		return def
	}
	return n
}

func (e *env) positiveInt(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.warn(key, v)
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.warn(key, v)
		return def
	}
	return f
}

func (e *env) boolean(key string, def bool) bool {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.warn(key, v)
		return def
	}
	return b
}

func (e *env) seconds(key string, def int) time.Duration {
	return time.Duration(e.positiveInt(key, def)) * time.Second
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
