// Package server связывает хранилища, пул кодов, репликацию и HTTP-слой в одно приложение
// и управляет порядком его запуска и остановки.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	handlers "github.com/aseptimu/codepool-shortener/internal/app/handlers/http"
	httpserver "github.com/aseptimu/codepool-shortener/internal/app/server/http"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/store"
	"github.com/aseptimu/codepool-shortener/internal/app/workers"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App - собранное приложение.
type App struct {
	cfg    *config.ConfigType
	logger *zap.SugaredLogger

	fast       store.FastStore
	remote     store.Authoritative
	replicator *workers.Replicator
	dual       *store.DualStore
	syncer     *store.Syncer
	pool       *service.CodePool
	handlers   handlers.Handlers

	migrate func() error
}

// OpenStores открывает быстрое и основное хранилища согласно конфигурации.
// Без DATABASE_DSN основным хранилищем становится файл FILE_STORAGE_PATH.
func OpenStores(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) (store.FastStore, store.Authoritative, error) {
	var (
		fast store.FastStore
		err  error
	)
	switch cfg.FastStore {
	case config.FastStoreRedis:
		logger.Debugw("Redis fast store enabled", "addr", cfg.RedisAddr)
		fast, err = store.NewRedisStore(ctx, cfg.RedisAddr, "shortener:")
	default:
		logger.Debugw("SQLite fast store enabled", "path", cfg.SQLitePath)
		fast, err = store.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, nil, err
	}

	var remote store.Authoritative
	if cfg.DSN != "" {
		logger.Debugw("Database mode enabled")
		remote, err = store.NewDB(ctx, cfg.DSN, logger)
	} else {
		logger.Debugw("File storage mode enabled", "storagePath", cfg.FileStoragePath)
		remote, err = store.NewFileStore(cfg.FileStoragePath)
	}
	if err != nil {
		fast.Close()
		return nil, nil, err
	}
	return fast, remote, nil
}

// NewApp открывает хранилища и собирает приложение.
func NewApp(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) (*App, error) {
	fast, remote, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app := NewAppWithStores(cfg, fast, remote, logger)
	if cfg.DSN != "" {
		app.migrate = func() error { return store.MigrateDB(cfg.DSN, logger) }
	}
	return app, nil
}

// NewAppWithStores собирает приложение поверх уже открытых хранилищ.
func NewAppWithStores(cfg *config.ConfigType, fast store.FastStore, remote store.Authoritative, logger *zap.SugaredLogger) *App {
	replicator := workers.NewReplicator(workers.Config{
		Workers:     cfg.Replication.Workers,
		QueueSize:   cfg.Replication.QueueSize,
		Retries:     cfg.Replication.Retries,
		TaskTimeout: cfg.Replication.TaskTimeout,
	}, logger)

	dual := store.NewDualStore(fast, remote, replicator, logger)
	syncer := store.NewSyncer(fast, remote, logger)
	pool := service.NewCodePool(dual, service.PoolConfig{
		BatchSize:     cfg.Pool.BatchSize,
		LowWatermark:  cfg.Pool.LowWatermark,
		HighWatermark: cfg.Pool.HighWatermark,
		Cooldown:      cfg.Pool.Cooldown,
		CodeLength:    cfg.Pool.CodeLength,
	}, logger)

	gate := service.NewWriteGate()
	h := handlers.New(
		cfg,
		service.NewURLService(pool, dual, gate, logger),
		service.NewGetURLService(dual),
		service.NewURLDeleter(dual, gate),
		service.NewStatsService(dual, pool, replicator),
		service.NewResyncService(replicator, syncer, pool, gate, logger),
		dual,
		logger,
	)

	return &App{
		cfg:        cfg,
		logger:     logger,
		fast:       fast,
		remote:     remote,
		replicator: replicator,
		dual:       dual,
		syncer:     syncer,
		pool:       pool,
		handlers:   h,
	}
}

// Start выполняет миграции, полную синхронизацию быстрого хранилища и заполнение пула.
// Ошибка синхронизации означает, что сервис не может безопасно выдавать коды.
func (a *App) Start(ctx context.Context) error {
	if a.migrate != nil {
		if err := a.migrate(); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
	}

	a.replicator.Start()

	result, err := a.syncer.FullSync(ctx)
	if err != nil {
		return fmt.Errorf("startup sync failed: %w", err)
	}
	if err := a.pool.Prefill(ctx); err != nil {
		return fmt.Errorf("code pool prefill failed: %w", err)
	}

	a.logger.Infow("Application started",
		"mappings", result.Mappings, "settings", result.Settings, "poolSize", a.pool.Size())
	return nil
}

// Handler возвращает HTTP-обработчик со всеми маршрутами.
func (a *App) Handler() http.Handler {
	return httpserver.NewRouter(a.logger, a.handlers)
}

// Run запускает приложение и HTTP-сервер и блокируется до отмены ctx.
// Затем останавливает сервер и вызывает Shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	srv := httpserver.NewServer(a.cfg.ServerAddress, a.logger, a.handlers)
	runErr := srv.Run(ctx, shutdownTimeout)
	return errors.Join(runErr, a.Shutdown(context.Background()))
}

// Shutdown дожидается очереди репликации (не дольше DrainTimeout), затем закрывает
// репликатор и оба хранилища.
func (a *App) Shutdown(ctx context.Context) error {
	if timeout := a.cfg.Replication.DrainTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	drainErr := a.replicator.Drain(ctx)
	a.replicator.Close()

	err := errors.Join(drainErr, a.fast.Close(), a.remote.Close())
	if err != nil {
		a.logger.Errorw("Shutdown completed with errors", "error", err)
		return err
	}
	a.logger.Infow("Shutdown completed")
	return nil
}
