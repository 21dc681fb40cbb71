package services

import (
	"context"
	"time"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/Renal37/number-lifecycle/internal/models"
	"go.uber.org/zap"
)

// DefaultCountdownPeriod - период опроса живого отсчёта.
const DefaultCountdownPeriod = time.Second

type deriver interface {
	Derive(order models.Order, now time.Time) (models.Derivation, error)
}

// Projector гоняет по таймеру вычисление статуса для одного заказа
// и сообщает об истечении отсчёта.
type Projector struct {
	lifecycle deriver
	period    time.Duration
	now       func() time.Time
}

func NewProjector(lifecycle deriver, period time.Duration) *Projector {
	if period <= 0 {
		period = DefaultCountdownPeriod
	}
	return &Projector{lifecycle: lifecycle, period: period, now: time.Now}
}

// Countdown - запущенный отсчёт. Его нужно остановить при уходе со страницы
// (Stop или отмена контекста), иначе таймер утечёт.
type Countdown struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop останавливает отсчёт; повторный вызов безопасен. Не блокирует,
// поэтому его можно звать из колбэков.
func (c *Countdown) Stop() {
	c.cancel()
}

// Done закрывается, когда цикл отсчёта завершился.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Start вычисляет статус сразу и затем каждый период. onTick получает каждое
// вычисление с отсчётом. Как только отсчёта нет (в том числе с самого
// начала), onExpire вызывается ровно один раз и цикл останавливается.
// Stop и отмена контекста onExpire не вызывают.
func (p *Projector) Start(
	ctx context.Context,
	order models.Order,
	onTick func(models.Derivation),
	onExpire func(models.Derivation),
) models.Countdown {
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{cancel: cancel, done: make(chan struct{})}

	go p.run(ctx, c, order, onTick, onExpire)

	return c
}

func (p *Projector) run(
	ctx context.Context,
	c *Countdown,
	order models.Order,
	onTick func(models.Derivation),
	onExpire func(models.Derivation),
) {
	defer close(c.done)
	defer c.cancel()

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		derived, err := p.lifecycle.Derive(order, p.now())
		if err != nil {
			logger.Log.Error("countdown derivation failed",
				zap.String("orderID", order.PrimaryID()),
				zap.Error(err),
			)
			return
		}

		if !derived.HasCountdown {
			if onExpire != nil {
				onExpire(derived)
			}
			logger.Log.Debug("countdown finished",
				zap.String("orderID", order.PrimaryID()),
				zap.String("status", string(derived.Status)),
			)
			return
		}

		if onTick != nil {
			onTick(derived)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
