package database

import (
	"context"
	"strings"
)

// SnapshotBackend - долговременное хранилище снимков.
type SnapshotBackend interface {
	LoadSnapshot(ctx context.Context, key string) (string, error)
	SaveSnapshot(ctx context.Context, key, payload string) error
	Close() error
}

// Open выбирает хранилище по DSN: postgres:// - PostgreSQL с миграциями,
// всё остальное - путь к файлу SQLite.
func Open(ctx context.Context, dsn string) (SnapshotBackend, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	return OpenSQLite(dsn)
}
