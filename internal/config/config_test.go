package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
server:
  port: 9090
  mode: release
database:
  driver: sqlite
  dsn: file:test.db
  conn_max_lifetime: 30m
auth:
  jwt_secret: from-yaml
  token_ttl: 2h
rules:
  strict: false
`
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Mode != "release" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Database.MaxOpenConns != 20 {
		t.Errorf("default max_open_conns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("env override failed: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Rules.Strict {
		t.Error("rules.strict should be false")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Driver: "mysql", DSN: "x"}, Auth: AuthConfig{JWTSecret: "s"}}
	if err := cfg.Validate(); err == nil {
		t.Error("mysql driver accepted")
	}
	cfg.Database.Driver = "sqlite"
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing secret accepted")
	}
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"info":   logger.Info,
		"":       logger.Warn,
	}
	for in, want := range cases {
		d := DatabaseConfig{LogLevel: in}
		if got := d.GormLogLevel(); got != want {
			t.Errorf("%q -> %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	l := (&LogConfig{Level: "debug", Format: "json"}).NewLogger()
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T", l.Formatter)
	}
	if (&LogConfig{Level: "bogus"}).NewLogger().GetLevel() != logrus.InfoLevel {
		t.Error("bad level should fall back to info")
	}
}
