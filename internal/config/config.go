package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	ProjectName string   `mapstructure:"PROJECT_NAME"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret          string `mapstructure:"JWT_SECRET"`
	AccessTokenMinutes int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`

	AdminDefaultEmail    string `mapstructure:"ADMIN_DEFAULT_EMAIL"`
	AdminDefaultPassword string `mapstructure:"ADMIN_DEFAULT_PASSWORD"`

	EmailEnabled bool   `mapstructure:"EMAIL_ENABLED"`
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
	SMTPUseTLS   bool   `mapstructure:"SMTP_USE_TLS"`

	AppointmentDefaultDurationMinutes int `mapstructure:"APPOINTMENT_DEFAULT_DURATION_MINUTES"`
	ReminderWindowHours               int `mapstructure:"REMINDER_WINDOW_HOURS"`
	ReminderLookaheadMinutes          int `mapstructure:"REMINDER_LOOKAHEAD_MINUTES"`
	ReminderIntervalMinutes           int `mapstructure:"REMINDER_INTERVAL_MINUTES"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("PROJECT_NAME", "MediTrack")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)
	v.SetDefault("ADMIN_DEFAULT_EMAIL", "admin@meditrack.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USE_TLS", true)
	v.SetDefault("APPOINTMENT_DEFAULT_DURATION_MINUTES", 30)
	v.SetDefault("REMINDER_WINDOW_HOURS", 24)
	v.SetDefault("REMINDER_LOOKAHEAD_MINUTES", 90)
	v.SetDefault("REMINDER_INTERVAL_MINUTES", 60)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "PROJECT_NAME", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "JWT_SECRET", "ACCESS_TOKEN_EXPIRE_MINUTES",
		"ADMIN_DEFAULT_EMAIL", "ADMIN_DEFAULT_PASSWORD",
		"EMAIL_ENABLED", "SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
		"SMTP_FROM", "SMTP_USE_TLS",
		"APPOINTMENT_DEFAULT_DURATION_MINUTES", "REMINDER_WINDOW_HOURS",
		"REMINDER_LOOKAHEAD_MINUTES", "REMINDER_INTERVAL_MINUTES",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a real JWT secret is required, and enabling outbound email requires a
// complete SMTP configuration.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q. "+
			"Refusing to start without a signing secret", c.Env)
	}
	if c.IsProduction() && c.AdminDefaultPassword == "" {
		return fmt.Errorf("ADMIN_DEFAULT_PASSWORD is required in production")
	}
	if c.EmailEnabled {
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is true")
		}
		if c.SMTPFrom == "" && c.SMTPUsername == "" {
			return fmt.Errorf("SMTP_FROM or SMTP_USERNAME is required when EMAIL_ENABLED is true")
		}
	}
	if c.AppointmentDefaultDurationMinutes <= 0 {
		return fmt.Errorf("APPOINTMENT_DEFAULT_DURATION_MINUTES must be positive, got %d",
			c.AppointmentDefaultDurationMinutes)
	}
	if c.ReminderWindowHours <= 0 {
		return fmt.Errorf("REMINDER_WINDOW_HOURS must be positive, got %d", c.ReminderWindowHours)
	}
	return nil
}
