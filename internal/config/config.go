package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yukikurage/project-management-api/internal/auth"
)

type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Database DatabaseConfig   `yaml:"database"`
	Tokens   auth.TokenConfig `yaml:"tokens"`
	Mail     MailConfig       `yaml:"mail"`

	OpenAIAPIKey       string        `yaml:"openai_api_key"`
	TokenSweepInterval time.Duration `yaml:"token_sweep_interval"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	GinMode         string   `yaml:"gin_mode"`
	Env             string   `yaml:"env"`
	CORSOrigins     []string `yaml:"cors_origins"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	RateLimitPerMin int      `yaml:"rate_limit_per_minute"`
	SecureCookies   bool     `yaml:"secure_cookies"`
	// TrustedProxies may set X-Forwarded-For. Empty means none.
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// Path is the database file used by the sqlite driver.
	Path string `yaml:"path"`
}

type MailConfig struct {
	SMTPHost         string `yaml:"smtp_host"`
	SMTPPort         int    `yaml:"smtp_port"`
	SMTPUser         string `yaml:"smtp_user"`
	SMTPPassword     string `yaml:"smtp_password"`
	From             string `yaml:"from"`
	ProductName      string `yaml:"product_name"`
	PublicBaseURL    string `yaml:"public_base_url"`
	ResetRedirectURL string `yaml:"reset_redirect_url"`
}

// Load builds the configuration from environment variables. When path is
// non-empty the YAML file is decoded on top of the environment defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Env:             getEnv("APP_ENV", "development"),
			CORSOrigins:     splitList(getEnv("CORS_ORIGIN", "http://localhost:3000")),
			MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 16*1024)),
			RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 50),
			SecureCookies:   getEnv("SECURE_COOKIES", "true") == "true",
			TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "")),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "projectuser"),
			Password: getEnv("DB_PASSWORD", "projectpassword"),
			Name:     getEnv("DB_NAME", "project_management"),
			Path:     getEnv("DB_PATH", "project_management.db"),
		},
		Tokens: auth.TokenConfig{
			AccessSecret:  getEnv("JWT_SECRET", "default-access-secret-change-me"),
			AccessTTL:     getEnvDuration("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", "default-refresh-secret-change-me"),
			RefreshTTL:    getEnvDuration("REFRESH_TOKEN_EXPIRES_IN", 7*24*time.Hour),
			OneTimeTTL:    getEnvDuration("ONE_TIME_TOKEN_EXPIRES_IN", auth.DefaultOneTimeTTL),
		},
		Mail: MailConfig{
			SMTPHost:         getEnv("EMAIL_HOST", ""),
			SMTPPort:         getEnvInt("EMAIL_PORT", 587),
			SMTPUser:         getEnv("EMAIL_USER", ""),
			SMTPPassword:     getEnv("EMAIL_PASS", ""),
			From:             getEnv("EMAIL_FROM", "mail.taskmanager@example.com"),
			ProductName:      getEnv("EMAIL_PRODUCT_NAME", "Task Manager"),
			PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			ResetRedirectURL: getEnv("FORGOT_PASSWORD_REDIRECT_URL", "http://localhost:3000/reset-password"),
		},
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		TokenSweepInterval: getEnvDuration("TOKEN_SWEEP_INTERVAL", time.Hour),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Tokens.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
