package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore - быстрое хранилище в локальном файле SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает или создаёт файл базы, включает WAL и применяет схему.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// SQLite допускает одного писателя.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const (
	sqliteBindQuery       = "INSERT INTO urls (code, target) VALUES (?, ?) ON CONFLICT (code) DO NOTHING"
	sqliteUnbindQuery     = "DELETE FROM urls WHERE code = ?"
	sqliteLookupQuery     = "SELECT target FROM urls WHERE code = ?"
	sqliteGetSettingQuery = "SELECT value FROM settings WHERE name = ?"
	sqliteSetSettingQuery = `INSERT INTO settings (name, value) VALUES (?, ?)
         ON CONFLICT (name) DO UPDATE SET value = excluded.value`
)

func (s *SQLiteStore) Bind(ctx context.Context, code, target string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, sqliteBindQuery, code, target)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLiteStore) Unbind(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, sqliteUnbindQuery, code)
	return err
}

func (s *SQLiteStore) Lookup(ctx context.Context, code string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	var target string
	err := s.db.QueryRowContext(ctx, sqliteLookupQuery, code).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}

// GetSetting возвращает 0 для отсутствующей настройки.
func (s *SQLiteStore) GetSetting(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	var value int64
	err := s.db.QueryRowContext(ctx, sqliteGetSettingQuery, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return value, err
}

func (s *SQLiteStore) SetSetting(ctx context.Context, name string, value int64) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, sqliteSetSettingQuery, name, value)
	return err
}

func (s *SQLiteStore) Codes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code FROM urls")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = struct{}{}
	}
	return codes, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM urls").Scan(&n)
	return n, err
}

func (s *SQLiteStore) Mappings(ctx context.Context) ([]service.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code, target FROM urls ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []service.Mapping
	for rows.Next() {
		var m service.Mapping
		if err := rows.Scan(&m.Code, &m.Target); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Settings(ctx context.Context) ([]service.Setting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM settings ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []service.Setting
	for rows.Next() {
		var st service.Setting
		if err := rows.Scan(&st.Name, &st.Value); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// ReplaceAll очищает обе таблицы и вставляет новое содержимое в одной транзакции.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, mappings []service.Mapping, settings []service.Setting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM urls"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return err
	}

	insertURL, err := tx.PrepareContext(ctx, "INSERT INTO urls (code, target) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer insertURL.Close()
	for _, m := range mappings {
		if _, err := insertURL.ExecContext(ctx, m.Code, m.Target); err != nil {
			return fmt.Errorf("failed to insert mapping %s: %w", m.Code, err)
		}
	}

	insertSetting, err := tx.PrepareContext(ctx, "INSERT INTO settings (name, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer insertSetting.Close()
	for _, st := range settings {
		if _, err := insertSetting.ExecContext(ctx, st.Name, st.Value); err != nil {
			return fmt.Errorf("failed to insert setting %s: %w", st.Name, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
