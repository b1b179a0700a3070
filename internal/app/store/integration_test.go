//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startPostgres(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shortener"),
		tcpostgres.WithUsername("shortener"),
		tcpostgres.WithPassword("shortener"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	require.NoError(t, MigrateDB(dsn, logger))
	require.NoError(t, MigrateDB(dsn, logger), "migrations are idempotent")

	db, err := NewDB(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func startRedis(t *testing.T) *RedisStore {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rs, err := NewRedisStore(ctx, endpoint, "test:")
	require.NoError(t, err)
	t.Cleanup(func() { rs.Close() })
	return rs
}

func TestDatabase_Integration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.InsertMapping(ctx, "aaaaab", "https://first"))
	require.NoError(t, db.InsertMapping(ctx, "aaaaab", "https://second"))
	require.NoError(t, db.InsertMapping(ctx, "aaaaac", "https://c"))
	require.NoError(t, db.DeleteMapping(ctx, "aaaaac"))
	require.NoError(t, db.UpsertSetting(ctx, service.CounterSetting, 10))
	require.NoError(t, db.UpsertSetting(ctx, service.CounterSetting, 20))

	mappings, err := db.Mappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Mapping{{Code: "aaaaab", Target: "https://first"}}, mappings)

	settings, err := db.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Setting{{Name: service.CounterSetting, Value: 20}}, settings)
}

func TestRedisStore_Integration(t *testing.T) {
	rs := startRedis(t)
	ctx := context.Background()

	created, err := rs.Bind(ctx, "aaaaab", "https://first")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = rs.Bind(ctx, "aaaaab", "https://second")
	require.NoError(t, err)
	assert.False(t, created)

	target, ok, err := rs.Lookup(ctx, "aaaaab")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://first", target)

	v, err := rs.GetSetting(ctx, service.CounterSetting)
	require.NoError(t, err)
	assert.Zero(t, v)

	mappings := []service.Mapping{{Code: "aaaaac", Target: "https://c"}}
	settings := []service.Setting{{Name: service.CounterSetting, Value: 100}}
	require.NoError(t, rs.ReplaceAll(ctx, mappings, settings))

	gotMappings, err := rs.Mappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, mappings, gotMappings)
	gotSettings, err := rs.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, gotSettings)

	n, err := rs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDualStore_RedisPostgresIntegration(t *testing.T) {
	db := startPostgres(t)
	rs := startRedis(t)
	ctx := context.Background()
	logger := zap.NewNop().Sugar()

	replicator := workers.NewReplicator(workers.Config{Workers: 4, QueueSize: 100, Retries: 2, TaskTimeout: time.Second}, logger)
	replicator.Start()
	t.Cleanup(replicator.Close)

	dual := NewDualStore(rs, db, replicator, logger)
	pool := service.NewCodePool(dual, service.PoolConfig{BatchSize: 20, LowWatermark: 5, HighWatermark: 10}, logger)
	svc := service.NewURLService(pool, dual, service.NewWriteGate(), logger)

	require.NoError(t, pool.Prefill(ctx))
	for i := 0; i < 30; i++ {
		_, err := svc.AllocateAndBind(ctx, "https://example.com")
		require.NoError(t, err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, replicator.Drain(drainCtx))

	local, err := rs.Mappings(ctx)
	require.NoError(t, err)
	remote, err := db.Mappings(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, local, remote)

	counter, err := rs.GetSetting(ctx, service.CounterSetting)
	require.NoError(t, err)
	remoteSettings, err := db.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Setting{{Name: service.CounterSetting, Value: counter}}, remoteSettings)

	require.NoError(t, rs.ReplaceAll(ctx, nil, nil))
	result, err := NewSyncer(rs, db, logger).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, result.Mappings)
}
