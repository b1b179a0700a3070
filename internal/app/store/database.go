package store

import (
	"context"
	"fmt"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Database - основное хранилище в PostgreSQL.
type Database struct {
	dbpool *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewDB(ctx context.Context, ps string, logger *zap.SugaredLogger) (*Database, error) {
	dbpool, err := pgxpool.New(ctx, ps)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Database{dbpool, logger}, nil
}

// NewDBFromPool оборачивает уже созданный пул соединений.
func NewDBFromPool(pool *pgxpool.Pool, logger *zap.SugaredLogger) *Database {
	return &Database{pool, logger}
}

func (db *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()
	return db.dbpool.Ping(ctx)
}

const InsertMappingQuery = `INSERT INTO urls (code, target)
         VALUES ($1, $2)
         ON CONFLICT (code) DO NOTHING`

func (db *Database) InsertMapping(ctx context.Context, code, target string) error {
	cmdTag, err := db.dbpool.Exec(ctx, InsertMappingQuery, code, target)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		db.logger.Debugw("Mapping already present in authoritative store", "code", code)
	}
	return nil
}

const DeleteMappingQuery = "DELETE FROM urls WHERE code = $1"

func (db *Database) DeleteMapping(ctx context.Context, code string) error {
	_, err := db.dbpool.Exec(ctx, DeleteMappingQuery, code)
	return err
}

const UpsertSettingQuery = `INSERT INTO settings (name, value)
         VALUES ($1, $2)
         ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`

func (db *Database) UpsertSetting(ctx context.Context, name string, value int64) error {
	_, err := db.dbpool.Exec(ctx, UpsertSettingQuery, name, value)
	return err
}

const GetMappingsQuery = "SELECT code, target FROM urls ORDER BY code COLLATE \"C\""

func (db *Database) Mappings(ctx context.Context) ([]service.Mapping, error) {
	rows, err := db.dbpool.Query(ctx, GetMappingsQuery)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[service.Mapping])
}

const GetSettingsQuery = "SELECT name, value FROM settings ORDER BY name"

func (db *Database) Settings(ctx context.Context) ([]service.Setting, error) {
	rows, err := db.dbpool.Query(ctx, GetSettingsQuery)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[service.Setting])
}

func (db *Database) Close() error {
	db.dbpool.Close()
	return nil
}
