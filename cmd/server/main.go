package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authhandler "automatik/internal/auth/handler"
	authmetrics "automatik/internal/auth/metrics"
	authservice "automatik/internal/auth/service"
	conversionhandler "automatik/internal/conversion/handler"
	conversionmetrics "automatik/internal/conversion/metrics"
	"automatik/internal/conversion/upstream"
	"automatik/internal/guard"
	guardmetrics "automatik/internal/guard/metrics"
	jwttoken "automatik/internal/jwt_token"
	"automatik/internal/platform/config"
	"automatik/internal/platform/health"
	"automatik/internal/platform/logger"
	"automatik/internal/platform/metrics"
	"automatik/internal/platform/tracing"
	"automatik/internal/seeder"
	tenanthandler "automatik/internal/tenant/handler"
	tenantmetrics "automatik/internal/tenant/metrics"
	tenantservice "automatik/internal/tenant/service"
	httptransport "automatik/internal/transport/http"
	usagehandler "automatik/internal/usage/handler"
	usagemetrics "automatik/internal/usage/metrics"
	usageservice "automatik/internal/usage/service"
	"automatik/pkg/platform/middleware/metadata"
	"automatik/pkg/platform/middleware/request"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "automatik: %v\n", err)
		os.Exit(1)
	}
}

// run wires the stores, services and handlers, then serves until SIGINT or
// SIGTERM.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing automatik",
		"addr", cfg.Server.Addr,
		"environment", cfg.Environment,
		"upstreams", len(cfg.Upstream.Targets),
	)
	if cfg.UsingDevSecret {
		log.Warn("JWT_SECRET is not set; signing sessions with the development default",
			"production", cfg.IsProduction(),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, health.ServiceName, health.Version)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := metrics.NewRegistry()
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	tenantSvc := tenantservice.New(st.tenants, st.users,
		tenantservice.WithLogger(log),
		tenantservice.WithMetrics(tenantmetrics.New(reg)),
	)
	authSvc, err := authservice.New(st.users, tokens,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New(reg)),
	)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}
	usageSvc := usageservice.New(st.usage,
		usageservice.WithLogger(log),
		usageservice.WithMetrics(usagemetrics.New(reg)),
	)

	if st.seed {
		if err := seeder.New(tenantSvc, authSvc, log).SeedAll(ctx); err != nil {
			return err
		}
	}

	upstreams := upstream.NewRegistry(cfg.Upstream.Targets,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithHealthTimeout(cfg.Upstream.HealthTimeout),
		upstream.WithMetrics(conversionmetrics.New(reg)),
		upstream.WithLogger(log),
	)

	healthHandler := health.New(cfg.Environment)
	if st.pool != nil {
		healthHandler.RegisterCheck("database", st.pool.Health)
	}
	for name, check := range upstreams.Checks() {
		healthHandler.RegisterCheck(name, check)
	}

	meta, err := metadata.NewMiddleware(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("init client metadata: %w", err)
	}

	shell, err := buildShell(ctx, cfg, tenantSvc, guardmetrics.New(reg), log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Auth: authhandler.New(authSvc, log,
			authhandler.WithLoginLimiter(httptransport.LoginLimiter(cfg.Auth.LoginRateLimit)),
			authhandler.WithSessionCookies(cfg.IsProduction()),
		),
		Tenants:        tenanthandler.New(tenantSvc, log),
		Usage:          usagehandler.New(usageSvc, log),
		Conversion:     conversionhandler.New(conversionhandler.FromRegistry(upstreams), cfg.Upstream.FileField, log),
		Health:         healthHandler,
		Shell:          shell,
		Validator:      jwttoken.NewJWTServiceAdapter(tokens),
		TenantResolver: tenantSvc,
		Metadata:       meta,
		Registry:       reg,
		RequestMetrics: request.NewMetrics(reg),
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

// buildShell serves the portal bundle behind the access guard when
// FRONTEND_DIR is set. Tenant routes are fixed at startup.
func buildShell(ctx context.Context, cfg config.Config, tenants *tenantservice.Service, m *guardmetrics.Metrics, log *slog.Logger) (http.Handler, error) {
	if cfg.Frontend.Dir == "" {
		return nil, nil
	}
	slugs, err := tenants.RouteSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenant routes: %w", err)
	}
	shell, err := guard.NewShell(guard.New(guard.NewRouteTable(slugs)), os.DirFS(cfg.Frontend.Dir),
		guard.WithShellLogger(log),
		guard.WithShellMetrics(m),
		guard.WithSecureCookies(cfg.IsProduction()),
	)
	if err != nil {
		return nil, err
	}
	log.Info("serving portal shell", "dir", cfg.Frontend.Dir, "tenant_routes", len(slugs))
	return shell, nil
}
