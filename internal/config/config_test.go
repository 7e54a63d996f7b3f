package config

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Academics.PassingGrade != 60 {
		t.Errorf("expected default passing grade 60, got %d", cfg.Academics.PassingGrade)
	}
	if cfg.Registration.Prefix != "TWOEM" {
		t.Errorf("expected default prefix TWOEM, got %s", cfg.Registration.Prefix)
	}
	if cfg.Registration.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Registration.MaxAttempts)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PASSING_GRADE", "75")
	t.Setenv("REGISTRATION_PREFIX", "TOP")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := LoadConfig("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Academics.PassingGrade != 75 {
		t.Errorf("expected passing grade 75, got %d", cfg.Academics.PassingGrade)
	}
	if cfg.Registration.Prefix != "TOP" {
		t.Errorf("expected prefix TOP, got %s", cfg.Registration.Prefix)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("expected max open conns 50, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadConfigRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error for missing JWT secret")
	}
}

func TestLoadConfigRejectsBadPassingGrade(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PASSING_GRADE", "150")

	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error for out-of-range passing grade")
	}
}
