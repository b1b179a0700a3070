package store

import (
	"context"
	"fmt"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Syncer переносит состояние основного хранилища в быстрое.
type Syncer struct {
	fast   FastStore
	remote Authoritative
	logger *zap.SugaredLogger
}

func NewSyncer(fast FastStore, remote Authoritative, logger *zap.SugaredLogger) *Syncer {
	return &Syncer{fast: fast, remote: remote, logger: logger}
}

// FullSync читает оба отношения из основного хранилища и целиком заменяет ими локальные.
// При ошибке чтения быстрое хранилище не изменяется.
func (s *Syncer) FullSync(ctx context.Context) (service.SyncResult, error) {
	var (
		mappings []service.Mapping
		settings []service.Setting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mappings, err = s.remote.Mappings(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch mappings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.remote.Settings(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch settings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return service.SyncResult{}, err
	}

	if err := s.fast.ReplaceAll(ctx, mappings, settings); err != nil {
		return service.SyncResult{}, fmt.Errorf("failed to replace local state: %w", err)
	}

	result := service.SyncResult{Mappings: len(mappings), Settings: len(settings)}
	s.logger.Infow("Full sync completed", "mappings", result.Mappings, "settings", result.Settings)
	return result, nil
}
