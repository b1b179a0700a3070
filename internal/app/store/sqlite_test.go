package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "fast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_BindFirstWriterWins(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	created, err := s.Bind(ctx, "aaaaab", "https://first.example")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Bind(ctx, "aaaaab", "https://second.example")
	require.NoError(t, err)
	assert.False(t, created)

	target, ok, err := s.Lookup(ctx, "aaaaab")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://first.example", target)
}

func TestSQLiteStore_UnbindAndLookup(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, ok, err := s.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Bind(ctx, "aaaaab", "https://example.com")
	require.NoError(t, err)
	require.NoError(t, s.Unbind(ctx, "aaaaab"))
	require.NoError(t, s.Unbind(ctx, "aaaaab"), "unbinding an absent code is a no-op")

	_, ok, err = s.Lookup(ctx, "aaaaab")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_Settings(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	v, err := s.GetSetting(ctx, service.CounterSetting)
	require.NoError(t, err)
	assert.Zero(t, v, "absent setting reads as zero")

	require.NoError(t, s.SetSetting(ctx, service.CounterSetting, 100))
	require.NoError(t, s.SetSetting(ctx, service.CounterSetting, 200))

	v, err = s.GetSetting(ctx, service.CounterSetting)
	require.NoError(t, err)
	assert.Equal(t, int64(200), v)

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Setting{{Name: service.CounterSetting, Value: 200}}, settings)
}

func TestSQLiteStore_CodesCountMappings(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	for _, c := range []string{"aaaaac", "aaaaab"} {
		_, err := s.Bind(ctx, c, "https://"+c)
		require.NoError(t, err)
	}

	codes, err := s.Codes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"aaaaab": {}, "aaaaac": {}}, codes)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mappings, err := s.Mappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Mapping{
		{Code: "aaaaab", Target: "https://aaaaab"},
		{Code: "aaaaac", Target: "https://aaaaac"},
	}, mappings)
}

func TestSQLiteStore_ReplaceAll(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.Bind(ctx, "stale1", "https://stale")
	require.NoError(t, err)
	require.NoError(t, s.SetSetting(ctx, "obsolete", 1))

	mappings := []service.Mapping{{Code: "aaaaab", Target: "https://b"}, {Code: "aaaaac", Target: "https://c"}}
	settings := []service.Setting{{Name: service.CounterSetting, Value: 10}}
	require.NoError(t, s.ReplaceAll(ctx, mappings, settings))

	gotMappings, err := s.Mappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, mappings, gotMappings)

	gotSettings, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, gotSettings)

	require.NoError(t, s.ReplaceAll(ctx, nil, nil))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_ReplaceAllRollsBackOnError(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.Bind(ctx, "keep", "https://keep")
	require.NoError(t, err)

	dup := []service.Mapping{{Code: "aaaaab", Target: "https://1"}, {Code: "aaaaab", Target: "https://2"}}
	assert.Error(t, s.ReplaceAll(ctx, dup, nil))

	target, ok, err := s.Lookup(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://keep", target)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fast.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Bind(ctx, "aaaaab", "https://example.com")
	require.NoError(t, err)
	require.NoError(t, s.SetSetting(ctx, service.CounterSetting, 42))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	target, ok, err := s.Lookup(ctx, "aaaaab")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", target)

	v, err := s.GetSetting(ctx, service.CounterSetting)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}
