package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"expenses/internal/auth"
	expensehandler "expenses/internal/expense/handler"
	expensemetrics "expenses/internal/expense/metrics"
	"expenses/internal/expense/registry"
	"expenses/internal/expense/repository"
	"expenses/internal/platform/config"
	"expenses/internal/platform/httpserver"
	"expenses/internal/platform/logger"
	"expenses/internal/platform/metrics"
)

// main wires high-level dependencies, exposes the HTTP routers, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, closeStore, err := openContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing document store", "error", err)
		}
	}()

	users, err := newUserService(cfg.Auth)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	httpMetrics := metrics.New(reg)

	expenses := registry.New(repository.New(container),
		registry.WithLogger(log),
		registry.WithMetrics(expensemetrics.New(reg)),
	)
	h := expensehandler.New(expenses, log)

	api := httpserver.New(cfg.Server.Addr, newAPIRouter(h, users, httpMetrics, cfg.Server.RequestTimeout, log))
	ops := httpserver.New(cfg.Server.OpsAddr, newOpsRouter(container, reg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting expenses API", "addr", cfg.Server.Addr, "backend", cfg.Store.Backend)
		return httpserver.Run(gctx, api, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		log.Info("starting ops server", "addr", cfg.Server.OpsAddr)
		return httpserver.Run(gctx, ops, cfg.Server.ShutdownTimeout)
	})
	return g.Wait()
}

func newUserService(cfg config.Auth) (*auth.UserService, error) {
	if cfg.PasswordHash != "" {
		return auth.NewUserServiceFromHash(cfg.Username, cfg.PasswordHash)
	}
	return auth.NewUserService(cfg.Username, cfg.Password)
}
