package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite - локальное файловое хранилище снимков.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite открывает (или создаёт) файл базы и применяет к нему те же
// встроенные миграции, что и для PostgreSQL.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	if err := runMigrations("sqlite://" + path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Один писатель: SQLite не любит конкурентные записи.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &SQLite{db: db}, nil
}

func (s *SQLite) LoadSnapshot(ctx context.Context, key string) (string, error) {
	var payload string

	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM activation_snapshots WHERE key = ?`,
		key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSnapshotNotFound
		}
		return "", fmt.Errorf("ошибка чтения снимка: %w", err)
	}

	return payload, nil
}

func (s *SQLite) SaveSnapshot(ctx context.Context, key, payload string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO activation_snapshots(key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
`,
		key,
		payload,
		iso(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи снимка: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
