package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bank")
	t.Setenv("TOKEN_SIGNING_KEY", "test-key")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("port = %q, want 8080", cfg.ServerPort)
	}
	if cfg.TokenPrefix != "Bearer" {
		t.Errorf("prefix = %q, want Bearer", cfg.TokenPrefix)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.TokenTTL())
	}
	if cfg.PixWindow() != 30*time.Minute {
		t.Errorf("pix window = %v, want 30m", cfg.PixWindow())
	}
	if cfg.SinkAccount != 99 {
		t.Errorf("sink account = %d, want 99", cfg.SinkAccount)
	}
}

func TestLoadRequiredValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"TOKEN_SIGNING_KEY": "k"},
		},
		{
			name: "missing signing key",
			env:  map[string]string{"DATABASE_URL": "postgres://localhost/bank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("TOKEN_SIGNING_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(t.TempDir()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bank")
	t.Setenv("TOKEN_SIGNING_KEY", "k")
	t.Setenv("TOKEN_TTL_MINUTES", "5")
	t.Setenv("SINK_ACCOUNT", "42")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenTTL() != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", cfg.TokenTTL())
	}
	if cfg.SinkAccount != 42 {
		t.Errorf("sink account = %d, want 42", cfg.SinkAccount)
	}
}
