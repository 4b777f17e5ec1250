package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	DBURL              string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level

	FootyStatsBaseURL         string
	FootyStatsAPIKey          string
	FootyStatsTimeout         time.Duration
	FootyStatsMaxRetries      int
	FootyStatsRequestsPerSec  int
	FootyStatsCircuitEnabled  bool
	FootyStatsCircuitFailures int
	FootyStatsCircuitOpenFor  time.Duration
	FootyStatsCircuitHalfOpen int

	CollectorWorkers     int
	CollectorMaxAttempts int
	CollectorBackoffBase time.Duration
	FullSyncInterval     time.Duration
	LiveSyncInterval     time.Duration
	SchedulerEnabled     bool
	UpcomingWindow       time.Duration
	TrailingWindow       time.Duration

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string

	PprofEnabled bool
	PprofAddr    string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "league-tracker"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("APP_CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.DBURL = strings.TrimSpace(getEnv("DATABASE_URL", ""))
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg.FootyStatsBaseURL = strings.TrimSpace(getEnv("FOOTYSTATS_BASE_URL", "https://api.football-data-api.com"))
	cfg.FootyStatsAPIKey = strings.TrimSpace(getEnv("FOOTYSTATS_API_KEY", ""))
	if cfg.FootyStatsAPIKey == "" {
		return Config{}, fmt.Errorf("FOOTYSTATS_API_KEY is required")
	}
	cfg.FootyStatsTimeout, err = getEnvAsDuration("FOOTYSTATS_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	cfg.FootyStatsMaxRetries, err = getEnvAsInt("FOOTYSTATS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_MAX_RETRIES: %w", err)
	}
	if cfg.FootyStatsMaxRetries < 0 {
		return Config{}, fmt.Errorf("FOOTYSTATS_MAX_RETRIES must be >= 0")
	}
	cfg.FootyStatsRequestsPerSec, err = getEnvAsInt("FOOTYSTATS_REQUESTS_PER_SEC", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_REQUESTS_PER_SEC: %w", err)
	}
	if cfg.FootyStatsRequestsPerSec < 1 {
		return Config{}, fmt.Errorf("FOOTYSTATS_REQUESTS_PER_SEC must be >= 1")
	}
	cfg.FootyStatsCircuitEnabled, err = getEnvAsBool("FOOTYSTATS_CIRCUIT_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}
	cfg.FootyStatsCircuitFailures, err = getEnvAsInt("FOOTYSTATS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.FootyStatsCircuitFailures < 1 {
		return Config{}, fmt.Errorf("FOOTYSTATS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.FootyStatsCircuitOpenFor, err = getEnvAsDuration("FOOTYSTATS_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	cfg.FootyStatsCircuitHalfOpen, err = getEnvAsInt("FOOTYSTATS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.FootyStatsCircuitHalfOpen < 1 {
		return Config{}, fmt.Errorf("FOOTYSTATS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.CollectorWorkers, err = getEnvAsInt("COLLECTOR_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTOR_WORKERS: %w", err)
	}
	if cfg.CollectorWorkers < 1 {
		return Config{}, fmt.Errorf("COLLECTOR_WORKERS must be >= 1")
	}
	cfg.CollectorMaxAttempts, err = getEnvAsInt("COLLECTOR_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTOR_MAX_ATTEMPTS: %w", err)
	}
	if cfg.CollectorMaxAttempts < 1 {
		return Config{}, fmt.Errorf("COLLECTOR_MAX_ATTEMPTS must be >= 1")
	}
	cfg.CollectorBackoffBase, err = getEnvAsDuration("COLLECTOR_BACKOFF_BASE", "2s")
	if err != nil {
		return Config{}, err
	}
	cfg.FullSyncInterval, err = getEnvAsDuration("FULL_SYNC_INTERVAL", "6h")
	if err != nil {
		return Config{}, err
	}
	cfg.LiveSyncInterval, err = getEnvAsDuration("LIVE_SYNC_INTERVAL", "1m")
	if err != nil {
		return Config{}, err
	}
	cfg.SchedulerEnabled, err = getEnvAsBool("SCHEDULER_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}
	cfg.UpcomingWindow, err = getEnvAsDuration("LIVE_UPCOMING_WINDOW", "30m")
	if err != nil {
		return Config{}, err
	}
	cfg.TrailingWindow, err = getEnvAsDuration("LIVE_TRAILING_WINDOW", "3h")
	if err != nil {
		return Config{}, err
	}

	cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName)
	cfg.PyroscopeAuthToken = getEnv("PYROSCOPE_AUTH_TOKEN", "")

	cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
