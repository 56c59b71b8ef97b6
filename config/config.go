package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server and the CLI.
type Config struct {
	DatabaseURL       string
	ServerPort        int
	DefaultTableCount int
	RefreshInterval   time.Duration
	TableLinkSecret   string
	TableLinkTTL      time.Duration
	PublicBaseURL     string
	LogLevel          slog.Level
	CORSOrigins       []string
	SeedFile          string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Enabled reports whether exported workbooks are archived to object storage.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// Load reads the configuration from the environment, after loading a .env file when
// one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}

	secret := getenv("TABLE_LINK_SECRET")
	if secret == "" {
		return nil, errors.New("TABLE_LINK_SECRET environment variable is not set")
	}

	port, err := intVar(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	tableCount, err := intVar(getenv, "DEFAULT_TABLE_COUNT", 5)
	if err != nil {
		return nil, err
	}
	if tableCount < 1 {
		return nil, fmt.Errorf("DEFAULT_TABLE_COUNT must be at least 1, got %d", tableCount)
	}

	refresh, err := durationVar(getenv, "REFRESH_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	if refresh <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", refresh)
	}

	linkTTL, err := durationVar(getenv, "TABLE_LINK_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	var origins []string
	for _, o := range strings.Split(getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		DefaultTableCount: tableCount,
		RefreshInterval:   refresh,
		TableLinkSecret:   secret,
		TableLinkTTL:      linkTTL,
		PublicBaseURL:     strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),
		LogLevel:          level,
		CORSOrigins:       origins,
		SeedFile:          getenv("SEED_FILE"),
		R2AccountID:       getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	raw := getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func durationVar(getenv func(string) string, name string, def time.Duration) (time.Duration, error) {
	raw := getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}
