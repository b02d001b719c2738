package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/waste3d/codelearn/config"
	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/infrastructure/cache"
	"github.com/waste3d/codelearn/internal/infrastructure/events"
	"github.com/waste3d/codelearn/internal/infrastructure/repository"
	"github.com/waste3d/codelearn/internal/infrastructure/repository/inmem"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/middleware"
)

type eventBus interface {
	usecase.EventPublisher
	usecase.EventSubscriber
}

// storage is the set of backends selected by STORAGE.
type storage struct {
	users        usecase.UserRepository
	profiles     usecase.ProfileRepository
	courses      usecase.CourseRepository
	progress     usecase.ProgressRepository
	sessions     usecase.SessionStore
	courseCache  usecase.CourseCache
	profileCache usecase.ProfileCache
	counter      middleware.Counter
	bus          eventBus

	health func(ctx context.Context) error
	close  func()
}

func openStorage(ctx context.Context, cfg config.Config, log logging.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		return openMemory(), nil
	}
	return openPostgres(ctx, cfg, log)
}

func openMemory() *storage {
	store := inmem.New()
	return &storage{
		users:    store.Users(),
		profiles: store.Profiles(),
		courses:  store.Courses(),
		progress: store.Progress(),
		sessions: store.Sessions(),
		counter:  store.RateCounter(),
		bus:      events.NewLocalBus(),
		health:   func(context.Context) error { return nil },
		close:    func() {},
	}
}

func openPostgres(ctx context.Context, cfg config.Config, log logging.Logger) (*storage, error) {
	db, err := repository.Open(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		_ = repository.Close(db)
		return nil, err
	}
	log.Info(ctx, "database ready", "host", cfg.DBHost, "name", cfg.DBName)

	rdb, err := cache.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		_ = repository.Close(db)
		return nil, fmt.Errorf("redis: %w", err)
	}
	log.Info(ctx, "connected to redis", "addr", cfg.RedisAddr)

	sqlDB, err := db.DB()
	if err != nil {
		_ = rdb.Close()
		_ = repository.Close(db)
		return nil, err
	}

	return &storage{
		users:        repository.NewUserRepository(db),
		profiles:     repository.NewProfileRepository(db),
		courses:      repository.NewCourseRepository(db),
		progress:     repository.NewProgressRepository(db),
		sessions:     cache.NewSessionStore(rdb),
		courseCache:  cache.NewCourseCache(rdb),
		profileCache: cache.NewProfileCache(rdb),
		counter:      cache.NewRateCounter(rdb),
		bus:          events.NewRedisBus(rdb, log),
		health: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
		close: func() {
			if err := rdb.Close(); err != nil && err != redis.ErrClosed {
				log.Warn(context.Background(), "redis close failed", "error", err)
			}
			if err := repository.Close(db); err != nil {
				log.Warn(context.Background(), "db close failed", "error", err)
			}
		},
	}, nil
}
