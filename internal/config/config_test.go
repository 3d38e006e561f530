package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meditrack_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.ProjectName != "MediTrack" {
		t.Errorf("expected default project name, got %s", cfg.ProjectName)
	}
	if cfg.AppointmentDefaultDurationMinutes != 30 {
		t.Errorf("expected default duration 30, got %d", cfg.AppointmentDefaultDurationMinutes)
	}
	if cfg.ReminderWindowHours != 24 {
		t.Errorf("expected reminder window 24h, got %d", cfg.ReminderWindowHours)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestValidateRequiresSecretOutsideDev(t *testing.T) {
	cfg := &Config{
		Env:                               "production",
		AdminDefaultPassword:              "s3cret",
		AppointmentDefaultDurationMinutes: 30,
		ReminderWindowHours:               24,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when JWT_SECRET is missing in production")
	}

	cfg.JWTSecret = "topsecret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSMTPWhenEmailEnabled(t *testing.T) {
	cfg := &Config{
		Env:                               "development",
		EmailEnabled:                      true,
		AppointmentDefaultDurationMinutes: 30,
		ReminderWindowHours:               24,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when SMTP_HOST is missing")
	}

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "clinic@example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
