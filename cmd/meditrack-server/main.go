package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meditrack/meditrack/internal/config"
	"github.com/meditrack/meditrack/internal/domain/appointment"
	"github.com/meditrack/meditrack/internal/domain/auditlog"
	"github.com/meditrack/meditrack/internal/domain/dashboard"
	"github.com/meditrack/meditrack/internal/domain/patient"
	"github.com/meditrack/meditrack/internal/domain/reminder"
	"github.com/meditrack/meditrack/internal/domain/user"
	"github.com/meditrack/meditrack/internal/platform/auth"
	"github.com/meditrack/meditrack/internal/platform/clock"
	"github.com/meditrack/meditrack/internal/platform/db"
	"github.com/meditrack/meditrack/internal/platform/mail"
	"github.com/meditrack/meditrack/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meditrack-server",
		Short: "MediTrack clinic scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MediTrack API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	// migrate down - keep as warning
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a backup or write a forward migration instead.")
			return nil
		},
	})

	return cmd
}

func seedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Ensure the default admin account exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			auditRecorder := auditlog.NewRecorder(auditlog.NewRepoPG(pool), logger)
			tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
			userSvc := user.NewService(user.NewRepoPG(pool), tokens, auditRecorder, clock.System{}, cfg.ProjectName, logger)

			u, created, err := userSvc.SeedAdmin(ctx, cfg.AdminDefaultEmail, cfg.AdminDefaultPassword)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Created admin account %s\n", u.Email)
			} else {
				fmt.Printf("Admin account %s already exists.\n", u.Email)
			}
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Mailer
	var mailer mail.Mailer
	if cfg.EmailEnabled {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			UseTLS:   cfg.SMTPUseTLS,
		}, logger)
		logger.Info().Str("host", cfg.SMTPHost).Msg("email delivery enabled")
	} else {
		mailer = mail.NewLogMailer(logger)
		logger.Info().Msg("email delivery disabled, logging messages instead")
	}

	clk := clock.System{}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	auditRecorder := auditlog.NewRecorder(auditlog.NewRepoPG(pool), logger)

	// Domain services
	userSvc := user.NewService(user.NewRepoPG(pool), tokens, auditRecorder, clk, cfg.ProjectName, logger)
	patientRepo := patient.NewRepoPG(pool)
	patientSvc := patient.NewService(patientRepo, auditRecorder)
	apptSvc := appointment.NewService(
		appointment.NewRepoPG(pool),
		patientRepo,
		userSvc,
		mailer,
		auditRecorder,
		clk,
		time.Duration(cfg.AppointmentDefaultDurationMinutes)*time.Minute,
		logger,
	)
	dashboardSvc := dashboard.NewService(dashboard.NewRepoPG(pool), clk)

	dispatcher := reminder.NewDispatcher(reminder.NewRepoPG(pool), userSvc, mailer, reminder.Config{
		WindowHours:      cfg.ReminderWindowHours,
		LookaheadMinutes: cfg.ReminderLookaheadMinutes,
		DefaultDuration:  time.Duration(cfg.AppointmentDefaultDurationMinutes) * time.Minute,
	}, logger)
	runner := reminder.NewRunner(dispatcher, clk, time.Duration(cfg.ReminderIntervalMinutes)*time.Minute, logger)

	if _, created, err := userSvc.SeedAdmin(ctx, cfg.AdminDefaultEmail, cfg.AdminDefaultPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin account")
	} else if created {
		logger.Info().Str("email", cfg.AdminDefaultEmail).Msg("seeded default admin account")
	}

	// Routes
	public := e.Group("/api/v1")
	userHandler := user.NewHandler(userSvc)
	userHandler.RegisterPublicRoutes(public)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.Middleware(tokens))
	userHandler.RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	appointment.NewHandler(apptSvc).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
	auditlog.NewHandler(auditRecorder).RegisterRoutes(apiV1)
	reminder.NewHandler(dispatcher, auditRecorder, clk).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Background reminder sweep
	runner.Start()
	defer runner.Stop()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
