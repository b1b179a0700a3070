package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/redis/go-redis/v9"
)

// RedisStore - быстрое хранилище в Redis. Оба отношения лежат в двух хешах.
type RedisStore struct {
	client      *redis.Client
	urlsKey     string
	settingsKey string
}

// NewRedisStore подключается к Redis по адресу addr. Ключи получают префикс prefix.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  config.DBTimeout,
		WriteTimeout: config.DBTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client:      client,
		urlsKey:     prefix + "urls",
		settingsKey: prefix + "settings",
	}
}

func (r *RedisStore) Bind(ctx context.Context, code, target string) (bool, error) {
	return r.client.HSetNX(ctx, r.urlsKey, code, target).Result()
}

func (r *RedisStore) Unbind(ctx context.Context, code string) error {
	return r.client.HDel(ctx, r.urlsKey, code).Err()
}

func (r *RedisStore) Lookup(ctx context.Context, code string) (string, bool, error) {
	target, err := r.client.HGet(ctx, r.urlsKey, code).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}

func (r *RedisStore) GetSetting(ctx context.Context, name string) (int64, error) {
	value, err := r.client.HGet(ctx, r.settingsKey, name).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return value, err
}

func (r *RedisStore) SetSetting(ctx context.Context, name string, value int64) error {
	return r.client.HSet(ctx, r.settingsKey, name, value).Err()
}

func (r *RedisStore) Codes(ctx context.Context) (map[string]struct{}, error) {
	keys, err := r.client.HKeys(ctx, r.urlsKey).Result()
	if err != nil {
		return nil, err
	}
	codes := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		codes[k] = struct{}{}
	}
	return codes, nil
}

func (r *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, r.urlsKey).Result()
	return int(n), err
}

func (r *RedisStore) Mappings(ctx context.Context) ([]service.Mapping, error) {
	all, err := r.client.HGetAll(ctx, r.urlsKey).Result()
	if err != nil {
		return nil, err
	}
	result := make([]service.Mapping, 0, len(all))
	for code, target := range all {
		result = append(result, service.Mapping{Code: code, Target: target})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *RedisStore) Settings(ctx context.Context) ([]service.Setting, error) {
	all, err := r.client.HGetAll(ctx, r.settingsKey).Result()
	if err != nil {
		return nil, err
	}
	result := make([]service.Setting, 0, len(all))
	for name, raw := range all {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		result = append(result, service.Setting{Name: name, Value: value})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ReplaceAll выполняет удаление и заполнение обоих хешей в одной транзакции MULTI/EXEC.
func (r *RedisStore) ReplaceAll(ctx context.Context, mappings []service.Mapping, settings []service.Setting) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.urlsKey, r.settingsKey)
		if len(mappings) > 0 {
			values := make(map[string]any, len(mappings))
			for _, m := range mappings {
				values[m.Code] = m.Target
			}
			pipe.HSet(ctx, r.urlsKey, values)
		}
		if len(settings) > 0 {
			values := make(map[string]any, len(settings))
			for _, st := range settings {
				values[st.Name] = st.Value
			}
			pipe.HSet(ctx, r.settingsKey, values)
		}
		return nil
	})
	return err
}

func (r *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
