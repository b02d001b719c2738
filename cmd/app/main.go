package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/codelearn/config"
	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/infrastructure/email"
	"github.com/waste3d/codelearn/internal/infrastructure/security"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
	"github.com/waste3d/codelearn/internal/middleware"
	grpc_server "github.com/waste3d/codelearn/internal/transport/grpc"
	handlers "github.com/waste3d/codelearn/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "codelearn stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	if logging.ParseLevel(cfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	m := metrics.New()
	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	var mailer usecase.WelcomeSender
	if cfg.SendgridAPIKey != "" {
		mailer = email.NewSender(cfg.SendgridAPIKey, cfg.SMTPEmail, cfg.FrontendURL)
	} else {
		logger.Warn(ctx, "SENDGRID_API_KEY not set, welcome emails go to the log")
		mailer = email.NewConsoleSender(logger, cfg.FrontendURL)
	}

	authUseCase := usecase.NewAuthUseCase(
		store.users, store.profiles, store.sessions, store.profileCache,
		hasher, tokenManager, mailer, store.bus, m, logger,
	)
	defer authUseCase.Wait()
	if admins := cfg.AdminGrants(); len(admins) > 0 {
		authUseCase.GrantAdminOnRegister(admins...)
		logger.Info(ctx, "admin emails configured", "count", len(admins))
	}
	courseUseCase := usecase.NewCourseUseCase(store.courses, store.progress, store.courseCache, m, logger)
	progressUseCase := usecase.NewProgressUseCase(courseUseCase, store.progress, m, logger)

	var wg sync.WaitGroup
	defer wg.Wait()
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	watcher := usecase.NewSessionWatcher(store.bus, store.profileCache, m, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := watcher.Run(watchCtx); err != nil {
			logger.Error(ctx, "session watcher stopped", "error", err)
		}
	}()

	router, err := handlers.NewRouter(handlers.RouterConfig{
		Auth:            authUseCase,
		Courses:         courseUseCase,
		Progress:        progressUseCase,
		Limiter:         middleware.NewRateLimiter(store.counter, logger.With("component", "ratelimit")),
		Metrics:         m,
		Log:             logger,
		AllowedOrigins:  cfg.Origins(),
		SecureCookies:   cfg.CookieSecure,
		PreviewDebounce: cfg.PreviewDebounce,
		Health:          store.health,
	})
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		return err
	}
	grpcServer := grpc_server.NewServer(grpc_server.NewCatalogService(courseUseCase), logger)

	errCh := make(chan error, 2)
	go func() {
		logger.Info(ctx, "http server listening", "addr", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info(ctx, "grpc server listening", "addr", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "shutting down")
	case err = <-errCh:
		logger.Error(context.Background(), "server failed, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn(shutdownCtx, "http shutdown", "error", serr)
	}
	grpcServer.GracefulStop()
	cancelWatch()
	return err
}
