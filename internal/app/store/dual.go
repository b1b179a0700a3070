package store

import (
	"context"
	"errors"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/workers"
	"go.uber.org/zap"
)

// Tracker принимает задачи репликации. Реализуется workers.Replicator.
type Tracker interface {
	Track(name string, fn func(ctx context.Context) error) *workers.Task
}

// DualStore пишет в быстрое хранилище синхронно, а в основное - через Tracker.
// Задачи именуются по ключу записи ("urls/<code>", "settings/<name>"), и Tracker
// выполняет задачи одного ключа по порядку. Чтения обслуживаются только быстрым хранилищем.
type DualStore struct {
	fast    FastStore
	remote  Authoritative
	tracker Tracker
	logger  *zap.SugaredLogger
}

func NewDualStore(fast FastStore, remote Authoritative, tracker Tracker, logger *zap.SugaredLogger) *DualStore {
	return &DualStore{fast: fast, remote: remote, tracker: tracker, logger: logger}
}

// Bind реплицирует вставку только если локальная запись действительно создана:
// проигравший в гонке за код не должен попасть в основное хранилище.
func (d *DualStore) Bind(ctx context.Context, code, target string) (bool, error) {
	created, err := d.fast.Bind(ctx, code, target)
	if err != nil || !created {
		return created, err
	}

	d.tracker.Track("urls/"+code, func(ctx context.Context) error {
		return d.remote.InsertMapping(ctx, code, target)
	})
	return true, nil
}

func (d *DualStore) Unbind(ctx context.Context, code string) error {
	if err := d.fast.Unbind(ctx, code); err != nil {
		return err
	}

	d.tracker.Track("urls/"+code, func(ctx context.Context) error {
		return d.remote.DeleteMapping(ctx, code)
	})
	return nil
}

// SetSetting реплицирует не переданное значение, а то, что лежит в быстром хранилище
// в момент выполнения задачи.
func (d *DualStore) SetSetting(ctx context.Context, name string, value int64) error {
	if err := d.fast.SetSetting(ctx, name, value); err != nil {
		return err
	}

	d.tracker.Track("settings/"+name, func(ctx context.Context) error {
		current, err := d.fast.GetSetting(ctx, name)
		if err != nil {
			return err
		}
		return d.remote.UpsertSetting(ctx, name, current)
	})
	return nil
}

func (d *DualStore) Lookup(ctx context.Context, code string) (string, error) {
	target, ok, err := d.fast.Lookup(ctx, code)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", service.ErrURLNotFound
	}
	return target, nil
}

func (d *DualStore) GetSetting(ctx context.Context, name string) (int64, error) {
	return d.fast.GetSetting(ctx, name)
}

func (d *DualStore) Codes(ctx context.Context) (map[string]struct{}, error) {
	return d.fast.Codes(ctx)
}

func (d *DualStore) Count(ctx context.Context) (int, error) {
	return d.fast.Count(ctx)
}

// Ping проверяет оба хранилища.
func (d *DualStore) Ping(ctx context.Context) error {
	return errors.Join(d.fast.Ping(ctx), d.remote.Ping(ctx))
}
