package config

import (
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_HOST", "SESSION_NAME", "DISPATCH_FAIL_ON_TEXT_ERROR", "SESSION_START_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := New()

	if cfg.API.Port != "3000" {
		t.Errorf("port = %q, want 3000", cfg.API.Port)
	}
	if cfg.Addr() != "0.0.0.0:3000" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.Session.Name != "sessionName" {
		t.Errorf("session name = %q", cfg.Session.Name)
	}
	if cfg.Dispatch.FailOnTextError {
		t.Errorf("fail on text error should default to false")
	}
	if cfg.Session.StartTimeout != 2*time.Minute {
		t.Errorf("start timeout = %s", cfg.Session.StartTimeout)
	}
	if cfg.Dispatch.ImageCaption != "Image from website" {
		t.Errorf("caption = %q", cfg.Dispatch.ImageCaption)
	}
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DISPATCH_FAIL_ON_TEXT_ERROR", "yes")
	t.Setenv("SESSION_START_TIMEOUT", "15s")
	t.Setenv("SESSION_HEADLESS", "off")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := New()

	if cfg.API.Port != "8081" {
		t.Errorf("port = %q, want 8081", cfg.API.Port)
	}
	if !cfg.Dispatch.FailOnTextError {
		t.Errorf("expected FailOnTextError to be enabled")
	}
	if cfg.Session.StartTimeout != 15*time.Second {
		t.Errorf("start timeout = %s, want 15s", cfg.Session.StartTimeout)
	}
	if cfg.Session.Headless {
		t.Errorf("expected headless to be disabled")
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Redis.DB)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host = "localhost"
	cfg.DB.Port = 5433
	cfg.DB.User = "u"
	cfg.DB.Password = "p"
	cfg.DB.Name = "n"
	cfg.DB.SSLMode = "disable"

	want := "host=localhost port=5433 user=u password=p dbname=n sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestUploadURLPrefix(t *testing.T) {
	tests := []struct {
		public, dir, want string
	}{
		{"public", "public/uploads", "/public/uploads"},
		{"./public", "public/img/in", "/public/img/in"},
		{"public", "/var/uploads", "/public/uploads"},
		{"public", "public", "/public/uploads"},
	}

	for _, tt := range tests {
		cfg := &Config{}
		cfg.Upload.PublicDir = tt.public
		cfg.Upload.Dir = tt.dir

		if got := cfg.UploadURLPrefix(); got != tt.want {
			t.Errorf("UploadURLPrefix(%q, %q) = %q, want %q", tt.public, tt.dir, got, tt.want)
		}
	}
}
