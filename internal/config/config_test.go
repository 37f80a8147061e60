package config

import "testing"

func TestNewConfigRequiresSecret(t *testing.T) {
	t.Setenv("DB_CONN", "host=localhost dbname=todo sslmode=disable")
	t.Setenv("SECRET", "")

	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error when SECRET is missing")
	}
}

func TestNewConfigRequiresDBConn(t *testing.T) {
	t.Setenv("DB_CONN", "")
	t.Setenv("SECRET", "test-secret")

	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error when DB_CONN is missing")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("DB_CONN", "host=localhost dbname=todo sslmode=disable")
	t.Setenv("SECRET", "test-secret")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DigestSchedule != "0 8 * * *" {
		t.Fatalf("DigestSchedule = %q", cfg.DigestSchedule)
	}
	if cfg.DigestEnabled() {
		t.Fatal("digest should be disabled without SMTP settings")
	}
}
