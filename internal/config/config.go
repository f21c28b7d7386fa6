package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
)

type Config struct {
	Iris     IrisConfig
	Kakao    KakaoConfig
	PokeAPI  PokeAPIConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
	Bot      BotConfig
}

type IrisConfig struct {
	BaseURL string
	WSURL   string
	Timeout time.Duration
}

type KakaoConfig struct {
	Rooms []string
}

type PokeAPIConfig struct {
	BaseURL               string
	Timeout               time.Duration
	EnableScraperFallback bool
	ScraperBaseURL        string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	RunMigrations bool
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	Prefix string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Iris: IrisConfig{
			BaseURL: getEnv("IRIS_BASE_URL", "http://localhost:3000"),
			WSURL:   getEnv("IRIS_WS_URL", "ws://localhost:3000/ws"),
			Timeout: time.Duration(getEnvInt("IRIS_TIMEOUT_SECONDS", int(constants.APIConfig.IrisTimeout/time.Second))) * time.Second,
		},
		Kakao: KakaoConfig{
			Rooms: parseCommaSeparated(getEnv("KAKAO_ROOMS", "포켓몬 팀 빌더")),
		},
		PokeAPI: PokeAPIConfig{
			BaseURL:               getEnv("POKEAPI_BASE_URL", constants.APIConfig.PokeAPIBaseURL),
			Timeout:               time.Duration(getEnvInt("POKEAPI_TIMEOUT_SECONDS", int(constants.APIConfig.PokeAPITimeout/time.Second))) * time.Second,
			EnableScraperFallback: getEnvBool("POKEAPI_ENABLE_SCRAPER_FALLBACK", true),
			ScraperBaseURL:        getEnv("SCRAPER_BASE_URL", constants.APIConfig.ScraperBaseURL),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:          getEnv("POSTGRES_HOST", "localhost"),
			Port:          getEnvInt("POSTGRES_PORT", 5432),
			User:          getEnv("POSTGRES_USER", "poketeam"),
			Password:      getEnv("POSTGRES_PASSWORD", ""),
			Database:      getEnv("POSTGRES_DB", "poketeam"),
			SSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
			RunMigrations: getEnvBool("POSTGRES_RUN_MIGRATIONS", true),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/bot.log"),
		},
		Bot: BotConfig{
			Prefix: getEnv("BOT_PREFIX", "!"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Iris.BaseURL == "" {
		return fmt.Errorf("IRIS_BASE_URL is required")
	}
	if c.Iris.WSURL == "" {
		return fmt.Errorf("IRIS_WS_URL is required")
	}
	if c.Iris.Timeout <= 0 {
		return fmt.Errorf("IRIS_TIMEOUT_SECONDS must be positive")
	}
	if len(c.Kakao.Rooms) == 0 {
		return fmt.Errorf("KAKAO_ROOMS is required")
	}
	if _, err := url.ParseRequestURI(c.PokeAPI.BaseURL); err != nil {
		return fmt.Errorf("POKEAPI_BASE_URL is invalid: %w", err)
	}
	if c.PokeAPI.Timeout <= 0 {
		return fmt.Errorf("POKEAPI_TIMEOUT_SECONDS must be positive")
	}
	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required")
	}
	if strings.TrimSpace(c.Bot.Prefix) == "" {
		return fmt.Errorf("BOT_PREFIX must not be blank")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
