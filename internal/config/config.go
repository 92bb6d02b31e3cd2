package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Name     string
		Env      string
		LogLevel string
	}

	API struct {
		Host string
		Port string
	}

	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Gateway struct {
		URL   string
		Token string
	}

	Session struct {
		Name            string
		Dir             string
		Headless        bool
		DisableWelcome  bool
		StartTimeout    time.Duration
		PollInterval    time.Duration
		AutoStart       bool
		MonitorInterval time.Duration
	}

	Dispatch struct {
		SendTimeout     time.Duration
		ImageCaption    string
		FailOnTextError bool
	}

	Upload struct {
		Dir       string
		PublicDir string
		MaxBytes  int64
	}
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Name = getEnv("APP_NAME", "wa-dispatch")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")

	// API
	cfg.API.Host = getEnv("API_HOST", "0.0.0.0")
	cfg.API.Port = getEnv("PORT", "3000")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "db")
	cfg.DB.Port = getInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "root")
	cfg.DB.Password = getEnv("DB_PASSWORD", "123456")
	cfg.DB.Name = getEnv("DB_NAME", "db_wa_dispatch")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "redis:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	// WhatsApp gateway
	cfg.Gateway.URL = getEnv("WA_GATEWAY_URL", "http://wa-gateway:21465")
	cfg.Gateway.Token = getEnv("WA_GATEWAY_TOKEN", "")

	// Session
	cfg.Session.Name = getEnv("SESSION_NAME", "sessionName")
	cfg.Session.Dir = getEnv("SESSION_DIR", "briway-sessions")
	cfg.Session.Headless = getBool("SESSION_HEADLESS", true)
	cfg.Session.DisableWelcome = getBool("SESSION_DISABLE_WELCOME", true)
	cfg.Session.StartTimeout = getDuration("SESSION_START_TIMEOUT", 2*time.Minute)
	cfg.Session.PollInterval = getDuration("SESSION_POLL_INTERVAL", 2*time.Second)
	cfg.Session.AutoStart = getBool("SESSION_AUTOSTART", false)
	cfg.Session.MonitorInterval = getDuration("SESSION_MONITOR_INTERVAL", 30*time.Second)

	// Dispatch
	cfg.Dispatch.SendTimeout = getDuration("DISPATCH_SEND_TIMEOUT", 30*time.Second)
	cfg.Dispatch.ImageCaption = getEnv("DISPATCH_IMAGE_CAPTION", "Image from website")
	cfg.Dispatch.FailOnTextError = getBool("DISPATCH_FAIL_ON_TEXT_ERROR", false)

	// Uploads
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "public/uploads")
	cfg.Upload.PublicDir = getEnv("PUBLIC_DIR", "public")
	cfg.Upload.MaxBytes = int64(getInt("UPLOAD_MAX_BYTES", 32<<20))

	return cfg
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return isTruthy(v)
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.API.Host, c.API.Port)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

// UploadURLPrefix is the public path uploads are served under. It mirrors the
// location of the upload directory inside the public directory, falling back
// to /public/uploads when the upload directory lies outside of it.
func (c *Config) UploadURLPrefix() string {
	rel, err := filepath.Rel(c.Upload.PublicDir, c.Upload.Dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "/public/uploads"
	}
	return path.Join("/public", filepath.ToSlash(rel))
}
