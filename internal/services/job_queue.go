package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"go.uber.org/zap"
)

// Определение пользовательских ошибок.
var (
	ErrJobQueueIsFull = errors.New("очередь заданий заполнена")
	ErrJobQueueClosed = errors.New("очередь заданий закрыта")
)

// Job представляет собой функцию, выполняющуюся в очереди заданий.
type Job func(ctx context.Context)

// JobQueueService выполняет фоновые задания (сброс снимков хранилища на диск).
type JobQueueService struct {
	jobs   chan Job       // Канал для очереди заданий.
	wg     sync.WaitGroup // Группа ожидания для отслеживания горутин.
	mu     sync.RWMutex   // Защищает канал от записи после закрытия.
	closed bool           // Очередь закрыта.
}

// NewJobQueueService создает новый экземпляр JobQueueService.
// Параметры:
// - ctx: контекст для управления временем жизни сервиса.
// - capacity: емкость очереди заданий.
// - workers: количество воркеров, обрабатывающих задания.
func NewJobQueueService(ctx context.Context, capacity, workers int) *JobQueueService {
	service := &JobQueueService{
		jobs: make(chan Job, capacity),
	}
	service.start(ctx, workers)

	return service
}

// start запускает заданное количество воркеров для обработки заданий.
func (jqs *JobQueueService) start(ctx context.Context, workers int) {
	for i := 0; i < workers; i++ {
		jqs.wg.Add(1)

		go func(workerID int) {
			defer jqs.wg.Done()

			for {
				select {
				case job, ok := <-jqs.jobs:
					if !ok {
						// Канал закрыт, оставшиеся задания выполнены.
						return
					}

					jqs.run(ctx, workerID, job)
				case <-ctx.Done():
					// Завершение при отмене контекста.
					return
				}
			}
		}(i + 1)
	}
}

// run выполняет задание; паника в задании не должна ронять воркер.
func (jqs *JobQueueService) run(ctx context.Context, workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("job panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()

	job(ctx)
}

// Enqueue добавляет новое задание в очередь.
// Возвращает ошибку, если очередь заполнена или закрыта.
func (jqs *JobQueueService) Enqueue(job Job) error {
	jqs.mu.RLock()
	defer jqs.mu.RUnlock()

	if jqs.closed {
		return ErrJobQueueClosed
	}

	select {
	case jqs.jobs <- job:
		return nil
	default:
		return ErrJobQueueIsFull
	}
}

// Shutdown корректно завершает работу очереди заданий.
// Закрывает канал заданий и ожидает, пока воркеры выполнят оставшиеся задания.
func (jqs *JobQueueService) Shutdown() {
	jqs.mu.Lock()
	if jqs.closed {
		jqs.mu.Unlock()
		return
	}
	jqs.closed = true
	close(jqs.jobs)
	jqs.mu.Unlock()

	jqs.wg.Wait()
}
