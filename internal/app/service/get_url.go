// Package service содержит бизнес-логику выдачи и разрешения коротких кодов.
package service

import (
	"context"
)

// StoreURLGetter описывает чтение связок из быстрого хранилища.
type StoreURLGetter interface {
	Lookup(ctx context.Context, code string) (string, error)
}

// URLResolver предоставляет разрешение кода для клиентского кода.
type URLResolver interface {
	Resolve(ctx context.Context, code string) (string, error)
}

// GetURLService реализует URLResolver через StoreURLGetter.
type GetURLService struct {
	store StoreURLGetter
}

// NewGetURLService создаёт новый GetURLService на основе переданного хранилища.
func NewGetURLService(store StoreURLGetter) *GetURLService {
	return &GetURLService{store: store}
}

// Resolve возвращает исходный URL или ErrURLNotFound.
// Форму кода (длина, алфавит) проверяет вызывающая сторона.
func (s *GetURLService) Resolve(ctx context.Context, code string) (string, error) {
	return s.store.Lookup(ctx, code)
}
