// Package store содержит быстрое локальное хранилище, основное (удалённое) хранилище
// и слой DualStore, который связывает их через асинхронную репликацию.
package store

import (
	"context"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
)

// Snapshotter отдаёт оба отношения целиком.
type Snapshotter interface {
	Mappings(ctx context.Context) ([]service.Mapping, error)
	Settings(ctx context.Context) ([]service.Setting, error)
}

// FastStore - локальное хранилище, которое обслуживает все чтения и записи запроса.
type FastStore interface {
	Snapshotter

	// Bind вставляет связку, если кода ещё нет. created=false означает, что код уже занят.
	Bind(ctx context.Context, code, target string) (created bool, err error)
	Unbind(ctx context.Context, code string) error
	// Lookup возвращает ok=false, если кода нет.
	Lookup(ctx context.Context, code string) (target string, ok bool, err error)

	GetSetting(ctx context.Context, name string) (int64, error)
	SetSetting(ctx context.Context, name string, value int64) error

	Codes(ctx context.Context) (map[string]struct{}, error)
	Count(ctx context.Context) (int, error)

	// ReplaceAll атомарно заменяет оба отношения переданным содержимым.
	ReplaceAll(ctx context.Context, mappings []service.Mapping, settings []service.Setting) error

	Ping(ctx context.Context) error
	Close() error
}

// Authoritative - основное хранилище. Пишется только задачами репликации,
// читается только при полной синхронизации.
type Authoritative interface {
	Snapshotter

	// InsertMapping не перезаписывает существующую связку.
	InsertMapping(ctx context.Context, code, target string) error
	DeleteMapping(ctx context.Context, code string) error
	UpsertSetting(ctx context.Context, name string, value int64) error

	Ping(ctx context.Context) error
	Close() error
}
