package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"boxoffice/internal/cache"
	"boxoffice/internal/database"
	"boxoffice/internal/messaging"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Terminal      TerminalConfig
}

// TerminalConfig - настройки кассового терминала
type TerminalConfig struct {
	ID                string
	LedgerURL         string
	LedgerTimeout     time.Duration
	ReconcileInterval time.Duration
	VenueLayout       string
	VenueLayoutFile   string
	BlockedSeats      []string
	SnapshotEnabled   bool
}

// LoadDotEnv подхватывает .env из рабочего каталога, если он есть
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "boxoffice"),
			Password:           getEnv("DB_PASSWORD", "boxoffice"),
			DBName:             getEnv("DB_NAME", "boxoffice"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "boxoffice"),
			ClientID:  getEnv("NATS_CLIENT_ID", "boxoffice-api"),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Terminal: TerminalConfig{
			ID:                getEnv("TERMINAL_ID", "terminal-1"),
			LedgerURL:         getEnv("LEDGER_URL", "http://localhost:8081"),
			LedgerTimeout:     time.Duration(getEnvInt("LEDGER_TIMEOUT_SEC", 10)) * time.Second,
			ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 5*time.Second),
			VenueLayout:       getEnv("VENUE_LAYOUT", "two-sector"),
			VenueLayoutFile:   os.Getenv("VENUE_LAYOUT_FILE"),
			BlockedSeats:      getEnvList("BLOCKED_SEATS"),
			SnapshotEnabled:   getEnv("SNAPSHOT_ENABLED", "true") == "true",
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration принимает "5s", "1m" или число секунд
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if sec, err := strconv.Atoi(value); err == nil && sec > 0 {
		return time.Duration(sec) * time.Second
	}
	return defaultValue
}

// getEnvList разбирает список через запятую
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
