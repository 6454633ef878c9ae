package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/vehicore/config"
	"github.com/example/vehicore/handlers"
	"github.com/example/vehicore/logging"
	"github.com/example/vehicore/middleware"
	"github.com/example/vehicore/models"
	"github.com/example/vehicore/services"
	"github.com/example/vehicore/state"
)

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:           "vehicore",
	Short:         "VehiCore dashboard client",
	Long:          "Manage VehiCore API keys, credits and usage from the terminal, or serve the dashboard backend-for-frontend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP backend",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadApp loads configuration, opens the client store and wires the stores.
func loadApp() *state.App {
	config.LoadConfig()
	logger = logging.Setup(config.AppConfig.Environment)

	models.InitDB(config.AppConfig.DatabaseURL)
	storage := models.NewStorage(models.DB)

	return state.NewApp(config.AppConfig, services.NewVehiCoreService(), storage)
}

// cliError rewrites errors that need a next step for the user.
func cliError(err error) error {
	if errors.Is(err, services.ErrUnauthorized) {
		return errors.New("session expired, run `vehicore login`")
	}
	return err
}

func requireSession(app *state.App) error {
	if !app.Session.CheckAuth() {
		return errors.New("not signed in, run `vehicore login`")
	}
	return nil
}

func newServer(app *state.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := handlers.NewHandler(app)
	auth := middleware.NewAuthMiddleware(app.Session)
	h.Register(e, app.Config.Prefix, auth.RequireSession)
	return e
}

func runServe(cmd *cobra.Command, args []string) error {
	app := loadApp()
	e := newServer(app)

	go func() {
		logger.Info().Str("addr", app.Config.ListenAddr).Str("api", app.Config.APIBaseURL).Msg("HTTP server listening")
		if err := e.Start(app.Config.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
