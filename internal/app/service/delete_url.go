package service

import (
	"context"
)

type StoreURLDeleter interface {
	Unbind(ctx context.Context, code string) error
}

type URLDeleter interface {
	DeleteURL(ctx context.Context, code string) error
}

type DeleteURLService struct {
	store StoreURLDeleter
	gate  *WriteGate
}

func NewURLDeleter(store StoreURLDeleter, gate *WriteGate) *DeleteURLService {
	return &DeleteURLService{store: store, gate: gate}
}

// DeleteURL удаляет связку. Код не возвращается в пул до следующего Prefill.
func (s *DeleteURLService) DeleteURL(ctx context.Context, code string) error {
	defer s.gate.Shared()()
	return s.store.Unbind(ctx, code)
}
