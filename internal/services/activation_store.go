package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Renal37/number-lifecycle/internal/database"
	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

const defaultFlushTimeout = 5 * time.Second

// SnapshotStorage - долговременное хранилище «ключ → строка».
// Для каждого пространства имён хранится один JSON-объект.
type SnapshotStorage interface {
	LoadSnapshot(ctx context.Context, key string) (string, error)
	SaveSnapshot(ctx context.Context, key, payload string) error
}

type flushQueue interface {
	Enqueue(job Job) error
}

// ActivationStore хранит моменты активации заказов (Unix, миллисекунды),
// по одному отображению на вариант услуги. Все чтения идут из памяти,
// каждая запись на лучшее усилие сбрасывается в SnapshotStorage.
// Ошибки хранилища никогда не доходят до вызывающего кода.
type ActivationStore struct {
	mu      sync.RWMutex
	data    map[string]map[string]int64
	pending map[string]bool
	storage SnapshotStorage
	queue   flushQueue
	timeout time.Duration
}

// NewActivationStore загружает все пространства имён один раз.
// storage и queue могут быть nil: без storage хранилище живёт только в памяти,
// без queue сброс выполняется синхронно.
func NewActivationStore(ctx context.Context, storage SnapshotStorage, queue flushQueue) *ActivationStore {
	s := &ActivationStore{
		data:    make(map[string]map[string]int64),
		pending: make(map[string]bool),
		storage: storage,
		queue:   queue,
		timeout: defaultFlushTimeout,
	}

	for _, ns := range Namespaces() {
		s.data[ns] = s.load(ctx, ns)
	}

	return s
}

func (s *ActivationStore) load(ctx context.Context, namespace string) map[string]int64 {
	empty := make(map[string]int64)
	if s.storage == nil {
		return empty
	}

	payload, err := s.storage.LoadSnapshot(ctx, namespace)
	if err != nil {
		if !errors.Is(err, database.ErrSnapshotNotFound) {
			logger.Log.Warn("activation snapshot is unreadable, starting empty",
				zap.String("namespace", namespace),
				zap.Error(err),
			)
		}
		return empty
	}

	entries, err := decodeSnapshot(payload)
	if err != nil {
		logger.Log.Warn("activation snapshot is corrupt, starting empty",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return empty
	}

	return entries
}

// decodeSnapshot пропускает отдельные нечисловые значения, а не весь снимок.
func decodeSnapshot(payload string) (map[string]int64, error) {
	out := make(map[string]int64)
	if payload == "" {
		return out, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}

	for key, value := range raw {
		var number float64
		if err := json.Unmarshal(value, &number); err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			continue
		}
		out[key] = int64(number)
	}

	return out, nil
}

// Get возвращает момент активации по ключу.
func (s *ActivationStore) Get(namespace, key string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.data[namespace][key]
	return ts, ok
}

// Set перезаписывает момент активации: одна запись на ключ в пространстве имён.
func (s *ActivationStore) Set(namespace, key string, ts int64) {
	s.mu.Lock()
	entries, ok := s.data[namespace]
	if !ok {
		entries = make(map[string]int64)
		s.data[namespace] = entries
	}
	entries[key] = ts
	s.mu.Unlock()

	s.flush(namespace)
}

// Delete удаляет запись. Отсутствующий ключ - не ошибка и не повод для сброса.
func (s *ActivationStore) Delete(namespace, key string) {
	s.mu.Lock()
	entries := s.data[namespace]
	_, existed := entries[key]
	delete(entries, key)
	s.mu.Unlock()

	if existed {
		s.flush(namespace)
	}
}

func (s *ActivationStore) flush(namespace string) {
	if s.storage == nil {
		return
	}

	if s.queue == nil {
		s.persistQuietly(context.Background(), namespace)
		return
	}

	// Задание сериализует состояние на момент выполнения, поэтому на
	// пространство имён в очереди достаточно одного сброса.
	s.mu.Lock()
	if s.pending[namespace] {
		s.mu.Unlock()
		return
	}
	s.pending[namespace] = true
	s.mu.Unlock()

	err := s.queue.Enqueue(func(ctx context.Context) {
		s.mu.Lock()
		delete(s.pending, namespace)
		s.mu.Unlock()

		s.persistQuietly(ctx, namespace)
	})
	if err != nil {
		logger.Log.Debug("activation flush was not enqueued, persisting inline",
			zap.String("namespace", namespace),
			zap.Error(err),
		)

		s.mu.Lock()
		delete(s.pending, namespace)
		s.mu.Unlock()

		s.persistQuietly(context.Background(), namespace)
	}
}

func (s *ActivationStore) persistQuietly(ctx context.Context, namespace string) {
	if err := s.persist(ctx, namespace); err != nil {
		logger.Log.Warn("failed to persist activation snapshot",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
	}
}

func (s *ActivationStore) persist(ctx context.Context, namespace string) error {
	s.mu.RLock()
	payload, err := json.Marshal(s.data[namespace])
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.storage.SaveSnapshot(ctx, namespace, string(payload))
}

// FlushAll синхронно сохраняет все пространства имён.
func (s *ActivationStore) FlushAll(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	var result *multierror.Error
	for _, ns := range s.namespaces() {
		if err := s.persist(ctx, ns); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func (s *ActivationStore) namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for ns := range s.data {
		out = append(out, ns)
	}
	return out
}

// Close сохраняет все пространства имён и закрывает хранилище, если оно это умеет.
func (s *ActivationStore) Close(ctx context.Context) error {
	var result *multierror.Error

	if err := s.FlushAll(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if closer, ok := s.storage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
