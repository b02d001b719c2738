package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/waste3d/codelearn/config"
	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/infrastructure/cache"
	"github.com/waste3d/codelearn/internal/infrastructure/events"
	"github.com/waste3d/codelearn/internal/infrastructure/repository"
	"github.com/waste3d/codelearn/internal/infrastructure/security"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Storage != config.StoragePostgres {
		log.Fatalf("admin commands need STORAGE=%s", config.StoragePostgres)
	}
	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	db, err := repository.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	var closers []func()
	cli := commandLine{
		out:     os.Stdout,
		migrate: func(ctx context.Context) error { return repository.Migrate(ctx, db) },
		accounts: func(ctx context.Context) (accounts, error) {
			rdb, err := cache.NewClient(ctx, cfg.RedisAddr)
			if err != nil {
				return nil, err
			}
			closers = append(closers, func() { _ = rdb.Close() })
			return usecase.NewAuthUseCase(
				repository.NewUserRepository(db),
				repository.NewProfileRepository(db),
				cache.NewSessionStore(rdb),
				cache.NewProfileCache(rdb),
				security.NewPasswordHasher(),
				security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
				nil,
				events.NewRedisBus(rdb, logger),
				metrics.New(),
				logger,
			), nil
		},
	}

	err = cli.run(ctx, os.Args)
	for _, c := range closers {
		c()
	}
	_ = repository.Close(db)
	if err != nil {
		if !errors.Is(err, errHelp) {
			log.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
