package service

import "context"

// StatsDTO - снимок состояния пула, хранилища и очереди репликации.
type StatsDTO struct {
	URLs               int
	PoolSize           int
	Counter            int64
	PendingReplication int
}

type StoreStatsReader interface {
	Count(ctx context.Context) (int, error)
	GetSetting(ctx context.Context, name string) (int64, error)
}

type PoolSizer interface {
	Size() int
}

type PendingCounter interface {
	Pending() int
}

type StatsService struct {
	store   StoreStatsReader
	pool    PoolSizer
	pending PendingCounter
}

func NewStatsService(store StoreStatsReader, pool PoolSizer, pending PendingCounter) *StatsService {
	return &StatsService{store: store, pool: pool, pending: pending}
}

// GetStats собирает статистику из быстрого хранилища, пула и репликатора.
func (s *StatsService) GetStats(ctx context.Context) (StatsDTO, error) {
	urls, err := s.store.Count(ctx)
	if err != nil {
		return StatsDTO{}, err
	}
	counter, err := s.store.GetSetting(ctx, CounterSetting)
	if err != nil {
		return StatsDTO{}, err
	}
	return StatsDTO{
		URLs:               urls,
		PoolSize:           s.pool.Size(),
		Counter:            counter,
		PendingReplication: s.pending.Pending(),
	}, nil
}
