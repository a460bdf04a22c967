package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/accessregistry/go-registry-auth/auth"
	"github.com/accessregistry/go-registry-auth/internal/config"
	"github.com/accessregistry/go-registry-auth/oauth"
	"github.com/accessregistry/go-registry-auth/server"
	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/accessregistry/go-registry-auth/store/postgres"
	"github.com/common-nighthawk/go-figure"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	store, err := postgres.NewStore(c.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("postgres.NewStore: %w", err)
	}
	defer store.Close()
	if err := store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("store.RunMigrations: %w", err)
	}

	sessionManager, err := sessions.NewManager(
		store.Sessions(),
		sessions.WithSecureCookies(c.GetEnv() != "DEV"),
	)
	if err != nil {
		return fmt.Errorf("sessions.NewManager: %w", err)
	}

	authService, err := auth.NewService(
		auth.Repos{Users: store.Users()},
		sessionManager,
		oauth.NewDefaultRegistry(c),
	)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	srv, err := server.New(c, authService)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	cleanup := startSessionCleanup(ctx, sessionManager)
	defer cleanup.Stop()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// startSessionCleanup sweeps expired session rows on an hourly schedule.
func startSessionCleanup(ctx context.Context, manager *sessions.Manager) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		count, err := manager.CleanupExpired(ctx)
		if err != nil {
			log.Err(err).Msg("session cleanup failed")
			return
		}
		if count > 0 {
			log.Info().Int64("count", count).Msg("expired sessions removed")
		}
	})
	if err != nil {
		log.Err(err).Msg("failed to schedule session cleanup")
	}
	c.Start()
	return c
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
