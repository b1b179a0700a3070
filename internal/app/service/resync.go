package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Drainer interface {
	Drain(ctx context.Context) error
}

type FullSyncer interface {
	FullSync(ctx context.Context) (SyncResult, error)
}

type PoolReloader interface {
	Reload(ctx context.Context, sync func(ctx context.Context) error) error
}

// ResyncService выполняет ручную пересинхронизацию: дожидается очереди репликации,
// перезаписывает быстрое хранилище из основного и пересобирает пул.
type ResyncService struct {
	drainer Drainer
	syncer  FullSyncer
	pool    PoolReloader
	gate    *WriteGate
	logger  *zap.SugaredLogger
}

func NewResyncService(drainer Drainer, syncer FullSyncer, pool PoolReloader, gate *WriteGate, logger *zap.SugaredLogger) *ResyncService {
	return &ResyncService{drainer: drainer, syncer: syncer, pool: pool, gate: gate, logger: logger}
}

// Resync не перезаписывает быстрое хранилище, пока в очереди есть незавершённые задачи:
// иначе локальные записи, ещё не попавшие в основное хранилище, были бы потеряны.
// На время пересинхронизации новые записи связок ждут на gate.
func (s *ResyncService) Resync(ctx context.Context) (SyncResult, error) {
	defer s.gate.Exclusive()()

	var result SyncResult
	err := s.pool.Reload(ctx, func(ctx context.Context) error {
		if err := s.drainer.Drain(ctx); err != nil {
			return fmt.Errorf("replication not drained: %w", err)
		}
		var err error
		result, err = s.syncer.FullSync(ctx)
		return err
	})
	if err != nil {
		s.logger.Errorw("Resync failed", "error", err)
		return SyncResult{}, err
	}
	s.logger.Infow("Resync completed", "mappings", result.Mappings, "settings", result.Settings)
	return result, nil
}
