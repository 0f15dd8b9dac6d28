package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.RoomIdleTimeout != 5*time.Minute {
		t.Errorf("room idle timeout = %v", cfg.Server.RoomIdleTimeout)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Enabled || cfg.Redis.Enabled {
		t.Errorf("storage should be disabled by default")
	}
	if d := cfg.Game.RoomDefaults(); d.DrawingTimeLimit != 60 || d.BattleEnergyRegen != 8 {
		t.Errorf("room defaults = %+v", d)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9000\n  room_idle_timeout: 90s\ngame:\n  drawing_time_limit: 30\nredis:\n  enabled: true\n  host: cache\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INKBRAWL_SERVER_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Server.RoomIdleTimeout != 90*time.Second {
		t.Errorf("room idle timeout = %v", cfg.Server.RoomIdleTimeout)
	}
	if cfg.Game.DrawingTimeLimit != 30 || cfg.Game.EnergyBudget != 100 {
		t.Errorf("game = %+v", cfg.Game)
	}
	if !cfg.Redis.Enabled || cfg.Redis.GetRedisAddr() != "cache:6379" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "ink", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=ink sslmode=disable"
	if got := c.GetDSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
