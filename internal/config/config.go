package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":5000"
	defaultDatabaseURL     = "bluemoon.db"
	defaultMaxOpenConns    = "5"
	defaultMaxIdleConns    = "5"
	defaultConnMaxLifetime = "30m"
	defaultAutoMigrate     = "true"
	defaultSessionSecret   = "change-me-session-secret"
	defaultCookieName      = "bluemoon.sid"
	defaultSessionTTL      = "8h"
	defaultCookieSecure    = "false"
	defaultCookieSameSite  = "Lax"
	defaultPasswordScheme  = "plain"
	defaultCORSOrigins     = "http://localhost:5000"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
)

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type SessionConfig struct {
	Secret         string
	CookieName     string
	TTL            time.Duration
	CookieSecure   bool
	CookieSameSite string
}

// SameSite converts the configured value for http.Cookie.
func (s SessionConfig) SameSite() http.SameSite {
	switch strings.ToLower(s.CookieSameSite) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BuildingInfo is served as-is by GET /api/building.
type BuildingInfo struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Contact string `json:"contact"`
}

type Config struct {
	AppEnv             string
	HTTPAddr           string
	Database           DatabaseConfig
	Session            SessionConfig
	Redis              RedisConfig
	PasswordScheme     string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	Building           BuildingInfo
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))

	var err error
	cfg.Database.URL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	if cfg.Database.MaxOpenConns, err = parseIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpenConns); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = parseIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdleConns); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", defaultConnMaxLifetime); err != nil {
		return nil, err
	}
	cfg.Database.AutoMigrate = parseBoolEnv("DB_AUTO_MIGRATE", defaultAutoMigrate)

	cfg.Session.Secret = strings.TrimSpace(getEnv("SESSION_SECRET", defaultSessionSecret))
	cfg.Session.CookieName = strings.TrimSpace(getEnv("SESSION_COOKIE_NAME", defaultCookieName))
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	cfg.Session.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.Session.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite))

	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = parseIntEnv("REDIS_DB", "0"); err != nil {
		return nil, err
	}

	cfg.PasswordScheme = strings.ToLower(strings.TrimSpace(getEnv("PASSWORD_SCHEME", defaultPasswordScheme)))
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))

	cfg.Building = BuildingInfo{
		Name:    getEnv("BUILDING_NAME", "Chung cư BlueMoon"),
		Code:    getEnv("BUILDING_CODE", "A1"),
		Address: getEnv("BUILDING_ADDRESS", "Số 01 Đường Trăng Xanh, Quận M, Hà Nội"),
		Manager: getEnv("BUILDING_MANAGER", "Ban quản lý BlueMoon"),
		Contact: getEnv("BUILDING_CONTACT", "0123 456 789 • bql@bluemoon.vn"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	if cfg.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	sameSite := strings.ToLower(cfg.Session.CookieSameSite)
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.Session.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}
	if cfg.PasswordScheme != "plain" && cfg.PasswordScheme != "bcrypt" {
		return fmt.Errorf("PASSWORD_SCHEME must be plain or bcrypt")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Session.Secret, defaultSessionSecret) {
			return fmt.Errorf("in prod/release SESSION_SECRET must be set and not default")
		}
		if !cfg.Session.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
