package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stagedoor/api/internal/app"
	"github.com/stagedoor/api/internal/auth"
	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/config"
	"github.com/stagedoor/api/internal/storage/postgres"
	transporthttp "github.com/stagedoor/api/internal/transport/http"
	"github.com/stagedoor/api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if cfg.Server.Env == "development" {
		log.SetFormatter(&logrus.TextFormatter{})
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	clk := clock.NewSystem()

	eventRepo := postgres.NewEventRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)
	hasher := auth.NewBcryptHasher()

	ledger := app.NewLedger(eventRepo, clk)
	ticketSvc := app.NewTicketService(ledger, ticketRepo, eventRepo, clk, log,
		app.WithCancelCutoff(cfg.Tickets.CancelCutoff))
	eventSvc := app.NewEventService(eventRepo, clk)
	userSvc := app.NewUserService(userRepo, hasher, tokens, clk)

	handler := transporthttp.NewRouter(userSvc, eventSvc, ticketSvc, tokens, cfg.CORS.Origins, log)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler,
	}

	log.WithField("port", cfg.Server.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
