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

	"taskmanager/backend/internal/config"
	"taskmanager/backend/internal/httpserver"
	"taskmanager/backend/internal/infrastructure/metrics"
	"taskmanager/backend/internal/infrastructure/password"
	"taskmanager/backend/internal/infrastructure/postgres"
	"taskmanager/backend/internal/infrastructure/token"
	"taskmanager/backend/internal/logging"
	authusecase "taskmanager/backend/internal/usecase/auth"
	projectusecase "taskmanager/backend/internal/usecase/project"
	taskusecase "taskmanager/backend/internal/usecase/task"
	userusecase "taskmanager/backend/internal/usecase/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	rootCtx := context.Background()
	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	connectCtx, cancel := context.WithTimeout(rootCtx, 15*time.Second)
	db, err := postgres.New(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		authMetrics authusecase.Metrics
		httpOpts    []httpserver.Option
	)
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.NewCollector(registry)
		authMetrics = collector
		httpOpts = append(httpOpts, httpserver.WithMetrics(collector, metrics.Handler(registry)))
	}

	users := postgres.NewUserRepository(db.Pool)
	codec := token.NewJWTManager([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	hasher := password.NewBcrypt(cfg.BcryptCost)

	authService := authusecase.NewService(users, codec, hasher, cfg.JWTExpiry,
		authusecase.WithLogger(logger),
		authusecase.WithMetrics(authMetrics),
	)
	userService := userusecase.NewService(users, hasher, logger)
	projects := postgres.NewProjectRepository(db.Pool)
	projectService := projectusecase.NewService(projects)
	taskService := taskusecase.NewService(postgres.NewTaskRepository(db.Pool), projects, users)

	bootstrapCtx, cancel := context.WithTimeout(rootCtx, 15*time.Second)
	err = userService.EnsureAdmin(bootstrapCtx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
	cancel()
	if err != nil {
		return err
	}

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	limiter := httpserver.NewLoginRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst, 5*time.Minute, logger)
	httpOpts = append(httpOpts,
		httpserver.WithLogger(logger),
		httpserver.WithLoginLimiter(limiter),
		httpserver.WithTrustedProxies(trustedProxies),
		httpserver.WithHealthCheck(db.Ping),
	)

	server := httpserver.NewServer(cfg, httpserver.Services{
		Auth:     authService,
		Users:    userService,
		Projects: projectService,
		Tasks:    taskService,
	}, httpOpts...)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	shutdownCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-shutdownCtx.Done():
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("graceful shutdown completed")
	return nil
}
