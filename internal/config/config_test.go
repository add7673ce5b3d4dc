package config

import (
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:       AppConfig{Env: "local", Port: 8080},
		Auth:      AuthConfig{JWTSecret: "secret"},
		Pearl:     PearlConfig{BaseURL: defaultPearlBaseURL},
		Directory: DirectoryConfig{BaseURL: defaultDirectoryBaseURL},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalFillsDefaults(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Pearl.Timeout != 15*time.Second {
		t.Fatalf("expected 15s telephony timeout, got %v", c.Pearl.Timeout)
	}
	if c.Directory.Timeout != 10*time.Second {
		t.Fatalf("expected 10s directory timeout, got %v", c.Directory.Timeout)
	}
	if c.Bulk.DefaultTimeframe != 5*time.Second {
		t.Fatalf("expected 5s default timeframe, got %v", c.Bulk.DefaultTimeframe)
	}
	if c.Notify.Limit != 3 {
		t.Fatalf("expected notify limit 3, got %d", c.Notify.Limit)
	}
	if c.UsePostgres() || c.UseRedis() {
		t.Fatalf("expected memory backends when hosts are empty")
	}
}

func TestValidate_ProductionRequiresRedisAndSSLMode(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "iss"
	c.Auth.JWTAudience = "aud"
	c.DB = DBConfig{Host: "db", Port: 5432, User: "postgres", Name: "dialer"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without REDIS_HOST and DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validLocal()
	c.DB = DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "dialer"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_RejectsTimeframeOutOfRange(t *testing.T) {
	c := validLocal()
	c.Bulk.DefaultTimeframe = time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected timeframe error")
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PEARL_API_BASE_URL", "http://pearl.test/v1/")
	t.Setenv("BULK_DEFAULT_TIMEFRAME", "10s")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":9090" {
		t.Fatalf("unexpected addr %q", c.HTTPAddr())
	}
	if c.Pearl.BaseURL != "http://pearl.test/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.Pearl.BaseURL)
	}
	if c.Bulk.DefaultTimeframe != 10*time.Second {
		t.Fatalf("unexpected timeframe %v", c.Bulk.DefaultTimeframe)
	}
}

func TestPearlAccountToken(t *testing.T) {
	if got := (PearlConfig{AccountID: "acc"}).AccountToken(); got != "" {
		t.Fatalf("expected empty token without secret, got %q", got)
	}
	if got := (PearlConfig{AccountID: "acc", SecretKey: "sec"}).AccountToken(); got != "acc:sec" {
		t.Fatalf("unexpected token %q", got)
	}
}
