package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abrigo/intake/internal/config"
	"github.com/abrigo/intake/internal/domain/appointment"
	"github.com/abrigo/intake/internal/domain/housing"
	"github.com/abrigo/intake/internal/domain/reference"
	"github.com/abrigo/intake/internal/domain/report"
	"github.com/abrigo/intake/internal/domain/user"
	"github.com/abrigo/intake/internal/platform/auth"
	"github.com/abrigo/intake/internal/platform/backend"
	"github.com/abrigo/intake/internal/platform/middleware"
	"github.com/abrigo/intake/internal/platform/session"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Shelter intake admin gateway",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
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

	secret := cfg.SessionSecret
	if secret == "" {
		secret = devSecret()
		logger.Warn().Msg("SESSION_SECRET not set, using a throwaway secret; sessions will not survive restarts")
	}

	// Platform
	client := backend.NewClient(cfg.BackendURL, cfg.BackendClientTimeout(), logger)
	sessions := session.NewStore(cfg.SessionTTL())

	// Domain services
	housingRepo := housing.NewAPIRepository(client)
	appointmentRepo := appointment.NewAPIRepository(client)
	userRepo := user.NewAPIRepository(client)
	referenceRepo := reference.NewAPIRepository(cfg.LocalitiesURL, cfg.CountriesURL, cfg.BackendClientTimeout())

	appointmentSvc := appointment.NewService(appointmentRepo, nil, cfg.BackendURL, logger)
	housingSvc := housing.NewService(housingRepo, appointmentSvc, cfg.RoomCapacity, logger)
	appointmentSvc.SetRoomNamer(housingSvc)

	userSvc := user.NewService(userRepo, cfg.BackendURL, logger)
	referenceSvc := reference.NewService(referenceRepo, logger)
	reportSvc := report.NewService(appointmentSvc, housingSvc, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"version":  version,
			"sessions": sessions.Len(),
		})
	})

	// Authenticated surface
	authed := e.Group("", auth.Middleware([]byte(secret), sessions), auth.SessionReaper(sessions))

	authHandler := auth.NewHandler(sessions, userSvc, client, []byte(secret), cfg.SessionTTL(), logger)
	authHandler.RegisterRoutes(e, authed)

	appointment.NewHandler(appointmentSvc, housingSvc, referenceSvc).RegisterRoutes(authed)
	housing.NewHandler(housingSvc).RegisterRoutes(authed)
	reference.NewHandler(referenceSvc).RegisterRoutes(authed)
	user.NewHandler(userSvc).RegisterRoutes(authed)
	report.NewHandler(reportSvc).RegisterRoutes(authed)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.BackendURL).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func devSecret() string {
	buf := make([]byte, 32)
	if _, err := crypto_rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
