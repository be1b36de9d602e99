package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "corredora"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{AccessSecret: "access", RefreshSecret: "refresh"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_RequiresBothPrimarySecrets(t *testing.T) {
	c := validBase()
	c.Auth.RefreshSecret = ""
	if err := c.validate(); err == nil {
		t.Fatalf("expected error for missing JWT_REFRESH_SECRET")
	}
}

func TestValidate_ResetSecretFallsBack(t *testing.T) {
	c := validBase()
	if err := c.validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.ResetSecret != DefaultResetSecret {
		t.Fatalf("expected reset secret fallback, got %q", c.Auth.ResetSecret)
	}
}

func TestValidate_AppliesTokenTTLDefaults(t *testing.T) {
	c := validBase()
	if err := c.validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTTL != 15*time.Minute {
		t.Fatalf("expected 15m access TTL, got %v", c.Auth.AccessTTL)
	}
	if c.Auth.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh TTL, got %v", c.Auth.RefreshTTL)
	}
	if c.Auth.ResetTTL != 15*time.Minute {
		t.Fatalf("expected 15m reset TTL, got %v", c.Auth.ResetTTL)
	}
}

func TestValidate_RejectsRefreshTTLNotAboveAccess(t *testing.T) {
	c := validBase()
	c.Auth.AccessTTL = time.Hour
	c.Auth.RefreshTTL = time.Hour
	if err := c.validate(); err == nil {
		t.Fatalf("expected error for refresh TTL <= access TTL")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.App.FrontendOrigin = "https://corredora.example"
	if err := c.validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}
