package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminHandler "superadmin/internal/admin/handler"
	adminService "superadmin/internal/admin/service"
	authHandler "superadmin/internal/auth/handler"
	"superadmin/internal/auth/logout"
	authService "superadmin/internal/auth/service"
	"superadmin/internal/backend"
	"superadmin/internal/docs"
	docsHandler "superadmin/internal/docs/handler"
	healthHandler "superadmin/internal/health/handler"
	healthService "superadmin/internal/health/service"
	"superadmin/internal/platform/config"
	"superadmin/internal/platform/httpserver"
	"superadmin/internal/platform/logger"
	"superadmin/internal/platform/metrics"
	redisClient "superadmin/internal/platform/redis"
	"superadmin/internal/session"
	settingsHandler "superadmin/internal/settings/handler"
	settingsService "superadmin/internal/settings/service"
	httptransport "superadmin/internal/transport/http"
	"superadmin/internal/web"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.Environment)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	rdb, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	stores := buildStores(rdb, log)

	auditor, closeAudit, err := buildAuditor(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	logouts := logout.New(stores.revocations, cfg.Session.MaxAge,
		logout.WithMetrics(m),
		logout.WithAuditor(auditor),
		logout.WithLogger(log),
	)
	api := backend.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout,
		backend.WithLogger(log),
		backend.WithObserver(m),
		backend.WithInvalidationHandler(logouts),
	)
	// Health has its own URL and never ends the session.
	healthAPI := backend.New(cfg.Backend.HealthURL, cfg.Backend.RequestTimeout,
		backend.WithLogger(log),
		backend.WithObserver(m),
	)

	keys, err := session.DeriveKeys(cfg.Session.Secret)
	if err != nil {
		return err
	}
	bridge := session.NewBridge(keys.SessionSigning, cfg.Session.MaxAge,
		session.WithRevocations(logouts),
		session.WithMetrics(m),
		session.WithAuditor(auditor),
		session.WithLogger(log),
		session.WithSecureCookie(cfg.Session.SecureCookie),
	)
	flash := session.NewFlash(keys, cfg.Session.SecureCookie, log)
	renderer, err := web.New(flash, bridge, log)
	if err != nil {
		return err
	}

	catalog, err := docs.Load()
	if err != nil {
		return err
	}
	broadcaster := docs.Broadcaster{
		Host:   cfg.Broadcaster.Host,
		Port:   cfg.Broadcaster.Port,
		Scheme: cfg.Broadcaster.Scheme,
		Key:    cfg.Broadcaster.Key,
	}

	auth := authService.New(api, stores.cooldowns, logouts,
		authService.WithMetrics(m),
		authService.WithAuditor(auditor),
		authService.WithLogger(log),
	)
	admin := adminService.New(api, adminService.WithAuditor(auditor), adminService.WithLogger(log))
	settings := settingsService.New(api, settingsService.WithAuditor(auditor), settingsService.WithLogger(log))
	health := healthService.New(healthAPI, healthService.WithLogger(log))

	pingers := map[string]httptransport.Pinger{}
	if rdb != nil {
		pingers["redis"] = rdb
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Sessions: bridge,
		Backend:  api,
		Renderer: renderer,
		Metrics:  m,
		Pingers:  pingers,
		Pages: []httptransport.Registrar{
			authHandler.New(auth, bridge, flash, renderer, log),
			healthHandler.New(health, renderer, log),
			adminHandler.New(admin, renderer, log),
			settingsHandler.New(settings, renderer, log),
			docsHandler.New(catalog, broadcaster, renderer),
		},
		Logger: log,
	})

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Backend.RequestTimeout)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting superadmin portal",
			"addr", cfg.Server.Addr,
			"backend", cfg.Backend.BaseURL,
			"environment", cfg.Server.Environment,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
