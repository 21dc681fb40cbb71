package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Определение пользовательских ошибок
var (
	ErrSnapshotNotFound = errors.New("снимок не найден")
	ErrSchemaMissing    = errors.New("таблица снимков не создана")
)

// SQL-запросы для работы со снимками
const (
	SelectSnapshotQuery = `
		SELECT
			payload
		FROM
			activation_snapshots
		WHERE
			key = $1
	`
	UpsertSnapshotQuery = `
		INSERT INTO
			activation_snapshots (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
)

// Database - хранилище снимков в PostgreSQL.
type Database struct {
	db  *pgxpool.Pool
	dsn string
}

//go:embed migrations/*.sql
var migrationsFS embed.FS // Встраивание файлов миграций

// checkConnection проверяет доступность базы данных с использованием пула подключений.
func checkConnection(ctx context.Context, db *pgxpool.Pool) error {
	// Устанавливаем таймаут для проверки подключения
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	return nil
}

// New создает новый экземпляр Database, устанавливает соединение и проверяет его.
func New(ctx context.Context, dsn string) (*Database, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула подключений: %w", err)
	}

	if err := checkConnection(ctx, db); err != nil {
		db.Close() // Закрываем пул подключений в случае ошибки
		return nil, err
	}

	return &Database{db: db, dsn: dsn}, nil
}

// RunMigrations выполняет миграции базы данных с использованием встроенных файлов миграций.
func (d *Database) RunMigrations() error {
	return runMigrations(d.dsn)
}

// runMigrations применяет встроенные миграции к базе по URL драйвера
// golang-migrate (postgres:// или sqlite://). Схема у обоих хранилищ общая.
func runMigrations(databaseURL string) error {
	driver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("не удалось создать источник миграций: %w", err)
	}

	migrations, err := migrate.NewWithSourceInstance("iofs", driver, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать миграции: %w", err)
	}
	defer migrations.Close()

	if err := migrations.Up(); err != nil {
		// Обрабатываем ошибку отсутствия новых миграций отдельно
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Log.Info("Новых миграций не найдено")
			return nil
		}
		return fmt.Errorf("ошибка при выполнении миграций: %w", err)
	}

	logger.Log.Info("Миграции успешно применены")
	return nil
}

// LoadSnapshot читает снимок пространства имён.
func (d *Database) LoadSnapshot(ctx context.Context, key string) (string, error) {
	var payload string

	err := d.db.QueryRow(ctx, SelectSnapshotQuery, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSnapshotNotFound
		}

		var e *pgconn.PgError
		// Миграции ещё не применялись: снимков просто нет
		if errors.As(err, &e) && e.Code == pgerrcode.UndefinedTable {
			return "", fmt.Errorf("%w: %w", ErrSnapshotNotFound, ErrSchemaMissing)
		}

		return "", fmt.Errorf("ошибка чтения снимка: %w", err)
	}

	return payload, nil
}

// SaveSnapshot записывает снимок, перезаписывая прежний.
func (d *Database) SaveSnapshot(ctx context.Context, key, payload string) error {
	if _, err := d.db.Exec(ctx, UpsertSnapshotQuery, key, payload); err != nil {
		logger.Log.Debug("snapshot upsert failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("ошибка записи снимка: %w", err)
	}
	return nil
}

// Close закрывает пул подключений к базе данных.
func (d *Database) Close() error {
	if d.db != nil {
		d.db.Close()
	}
	return nil
}
