package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Env        string
	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	JWT JWTConfig

	SeedData             bool
	DefaultAdminPassword string

	CORSAllowedOrigins []string

	Storage StorageConfig
}

// JWTConfig описывает подпись и срок жизни access-токенов.
type JWTConfig struct {
	Key               string
	Issuer            string
	Audience          string
	ExpirationMinutes int
}

// AccessTokenTTL returns the configured access token lifetime.
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// StorageConfig is the S3-compatible bucket used for tournament logos.
// An empty Bucket disables logo uploads.
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// fileConfig mirrors the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	App struct {
		Env                  string `yaml:"env"`
		Seed                 bool   `yaml:"seed"`
		DefaultAdminPassword string `yaml:"default_admin_password"`
	} `yaml:"app"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	JWT struct {
		Key               string `yaml:"key"`
		Issuer            string `yaml:"issuer"`
		Audience          string `yaml:"audience"`
		ExpirationMinutes int    `yaml:"expiration_minutes"`
	} `yaml:"jwt"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Storage struct {
		Endpoint        string `yaml:"endpoint"`
		Region          string `yaml:"region"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		Bucket          string `yaml:"bucket"`
		PublicBaseURL   string `yaml:"public_base_url"`
	} `yaml:"storage"`
}

// Load загружает конфигурацию: .env (если есть), затем YAML-файл из CONFIG_FILE,
// затем переменные окружения, которые имеют наивысший приоритет.
func Load() (*Config, error) {
	// .env не обязателен, ошибку не считаем фатальной.
	_ = godotenv.Load()

	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env:                  getString("APP_ENV", fc.App.Env, EnvDevelopment),
		LogLevel:             getString("LOG_LEVEL", fc.Log.Level, "info"),
		DBDriver:             getString("DB_DRIVER", fc.Database.Driver, DriverPostgres),
		DatabaseURL:          getString("DATABASE_URL", fc.Database.URL, ""),
		DefaultAdminPassword: getString("DEFAULT_ADMIN_PASSWORD", fc.App.DefaultAdminPassword, ""),
		JWT: JWTConfig{
			Key:      getString("JWT_SECRET_KEY", fc.JWT.Key, ""),
			Issuer:   getString("JWT_ISSUER", fc.JWT.Issuer, "TournamentApi"),
			Audience: getString("JWT_AUDIENCE", fc.JWT.Audience, "TournamentApiClients"),
		},
		Storage: StorageConfig{
			Endpoint:        getString("S3_ENDPOINT", fc.Storage.Endpoint, ""),
			Region:          getString("S3_REGION", fc.Storage.Region, "auto"),
			AccessKeyID:     getString("S3_ACCESS_KEY_ID", fc.Storage.AccessKeyID, ""),
			SecretAccessKey: getString("S3_SECRET_ACCESS_KEY", fc.Storage.SecretAccessKey, ""),
			Bucket:          getString("S3_BUCKET", fc.Storage.Bucket, ""),
			PublicBaseURL:   getString("S3_PUBLIC_BASE_URL", fc.Storage.PublicBaseURL, ""),
		},
	}

	var err error
	if cfg.ServerPort, err = getInt("SERVER_PORT", fc.Server.Port, 8080); err != nil {
		return nil, err
	}
	if cfg.JWT.ExpirationMinutes, err = getInt("JWT_EXPIRATION_MINUTES", fc.JWT.ExpirationMinutes, 60); err != nil {
		return nil, err
	}
	if cfg.SeedData, err = getBool("SEED_DATA", fc.App.Seed); err != nil {
		return nil, err
	}

	cfg.CORSAllowedOrigins = fc.CORS.AllowedOrigins
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	if len(cfg.CORSAllowedOrigins) == 0 && cfg.IsDevelopment() {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.JWT.Key == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive, got %d", c.JWT.ExpirationMinutes)
	}
	return nil
}

func getString(env, fromFile, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	return def
}

func getInt(env string, fromFile, def int) (int, error) {
	if v := os.Getenv(env); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s environment variable: %w", env, err)
		}
		return n, nil
	}
	if fromFile != 0 {
		return fromFile, nil
	}
	return def, nil
}

func getBool(env string, fromFile bool) (bool, error) {
	v := os.Getenv(env)
	if v == "" {
		return fromFile, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", env, err)
	}
	return b, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
