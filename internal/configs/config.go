package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	LoginPath string
}

type PlacesConfig struct {
	APIKey  string
	BaseURL string
}

type StateStoreConfig struct {
	// URL - путь к файлу sqlite или строка подключения postgres://
	URL string
}

type SearchConfig struct {
	PageSize int
}

type AuthConfig struct {
	OTPResendSeconds int
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию клиента.
type AppConfig struct {
	AppName      string
	API          APIConfig
	Places       PlacesConfig
	StateStore   StateStoreConfig
	Search       SearchConfig
	Auth         AuthConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// IsPostgres сообщает, что состояние хранится в PostgreSQL.
func (c StateStoreConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// LoadConfig читает .env (если он есть) и переменные окружения.
// В отличие от сервисов, CLI работает и без .env.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
		if err != nil {
			return nil, fmt.Errorf("could not load env file %s: %w", envPath[0], err)
		}
	} else if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg := &AppConfig{}
	cfg.AppName = getEnvAsString("APP_NAME", "houseclay-client")

	cfg.API.BaseURL = strings.TrimRight(getEnvAsString("HOUSECLAY_API_BASE_URL", "https://apis.houseclay.com/api"), "/")
	if _, err := url.ParseRequestURI(cfg.API.BaseURL); err != nil {
		return nil, fmt.Errorf("HOUSECLAY_API_BASE_URL is not a valid URL: %w", err)
	}
	cfg.API.Timeout = getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second)
	cfg.API.LoginPath = getEnvAsString("LOGIN_PATH", "/login")

	cfg.Places.APIKey = os.Getenv("GOOGLE_PLACES_KEY")
	cfg.Places.BaseURL = getEnvAsString("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place")

	cfg.StateStore.URL = getEnvAsString("STATE_STORE_URL", "houseclay-state.db")

	cfg.Search.PageSize = getEnvAsInt("SEARCH_PAGE_SIZE", 16)
	if cfg.Search.PageSize <= 0 {
		return nil, fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", cfg.Search.PageSize)
	}
	cfg.Auth.OTPResendSeconds = getEnvAsInt("OTP_RESEND_SECONDS", 30)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "warn")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает "15s", "2m" и просто число секунд.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(valStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration. Using default value: %s\n", key, valStr, defaultValue)
	return defaultValue
}
