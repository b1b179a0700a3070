package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const maxBindAttempts = 3

// Allocator выдаёт свободные коды.
type Allocator interface {
	Allocate(ctx context.Context) (string, error)
}

// StoreURLSetter записывает связку код -> URL. created=false, если код уже был занят.
type StoreURLSetter interface {
	Bind(ctx context.Context, code, target string) (created bool, err error)
}

// URLShortener - операция, которую использует слой обработчиков.
type URLShortener interface {
	AllocateAndBind(ctx context.Context, target string) (string, error)
}

// URLService выдаёт код из пула и сразу связывает его с URL.
type URLService struct {
	pool   Allocator
	store  StoreURLSetter
	gate   *WriteGate
	logger *zap.SugaredLogger
}

func NewURLService(pool Allocator, store StoreURLSetter, gate *WriteGate, logger *zap.SugaredLogger) *URLService {
	return &URLService{pool: pool, store: store, gate: gate, logger: logger}
}

// AllocateAndBind берёт код из пула и записывает его в хранилище.
// Если код оказался уже занят (запись не создана), он отбрасывается и берётся следующий.
// Выдача и запись идут под одним захватом gate, поэтому пересинхронизация не вклинится между ними.
func (s *URLService) AllocateAndBind(ctx context.Context, target string) (string, error) {
	defer s.gate.Shared()()

	for attempt := 1; attempt <= maxBindAttempts; attempt++ {
		code, err := s.pool.Allocate(ctx)
		if err != nil {
			return "", err
		}

		created, err := s.store.Bind(ctx, code, target)
		if err != nil {
			return "", fmt.Errorf("failed to bind code %s: %w", code, err)
		}
		if created {
			s.logger.Debugw("Code bound", "code", code, "target", target)
			return code, nil
		}

		s.logger.Warnw("Allocated code already bound, discarding", "code", code, "attempt", attempt)
	}
	return "", ErrCodeCollision
}
