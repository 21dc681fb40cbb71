package services

import (
	"fmt"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
)

// Lifecycle выводит отображаемый статус и отсчёт из серверного статуса
// и локально сохранённых меток времени. Для одного и того же момента now
// результат всегда одинаков; единственный побочный эффект - дозапись
// метки активации и её очистка.
type Lifecycle struct {
	resolver *IdentifierResolver
}

func NewLifecycle(resolver *IdentifierResolver) *Lifecycle {
	return &Lifecycle{resolver: resolver}
}

// Derive вычисляет отображаемый статус заказа на момент now.
func (l *Lifecycle) Derive(order models.Order, now time.Time) (models.Derivation, error) {
	d, err := DescriptorFor(order.Variant)
	if err != nil {
		return models.Derivation{}, err
	}
	return l.derive(d, order, now), nil
}

func (l *Lifecycle) derive(d Descriptor, order models.Order, now time.Time) models.Derivation {
	if d.Rule == RulePendingTimeout {
		return derivePending(d, order, now)
	}
	return l.deriveWindow(d, order, now)
}

func (l *Lifecycle) deriveWindow(d Descriptor, order models.Order, now time.Time) models.Derivation {
	if order.Status != models.StatusActive {
		l.resolver.Clear(d.Namespace, order)
		return models.Derivation{Status: models.DisplayStatus(order.Status)}
	}

	// Метки хранятся с точностью до миллисекунды; now приводится к ней же,
	// иначе повторный вызов в тот же момент видел бы другой остаток.
	now = time.UnixMilli(now.UnixMilli())

	activatedAt, ok := l.resolver.ResolveActivationTime(d.Namespace, order)
	if !ok {
		// Страница перезагружена после активации: окно начинается сейчас.
		activatedAt = now
		l.resolver.RecordActivation(d.Namespace, order, now)
	}

	out := models.Derivation{
		Elapsed:     nonNegative(now.Sub(activatedAt)),
		ActivatedAt: activatedAt,
	}

	if out.Elapsed >= d.ActiveWindow {
		out.Status = models.DisplayInactive
		return out
	}

	out.Status = models.DisplayActive
	setCountdown(&out, d.ActiveWindow-out.Elapsed)

	return out
}

func derivePending(d Descriptor, order models.Order, now time.Time) models.Derivation {
	out := models.Derivation{Status: models.DisplayStatus(order.Status)}

	created, hasCreated := order.Created()
	if hasCreated {
		out.Elapsed = nonNegative(now.Sub(created))
	}

	// Отсчёт ведётся от createdAt, а не от времени обновления заказа.
	counting := order.Status == models.StatusPending && hasCreated && !order.HasSMS()
	if counting && out.Elapsed >= d.ActiveWindow {
		out.Status = models.DisplayTimedOut
		counting = false
	}

	// Окно пробуждения кода важнее отсчёта ожидания при отрисовке, но таймаут
	// ожидания остаётся в статусе и продолжает закрывать действия.
	if awake, ok := order.CodeAwake(); ok && d.CodeAwakeWindow > 0 {
		remaining := d.CodeAwakeWindow - now.Sub(awake)
		if remaining > d.CodeAwakeWindow {
			remaining = d.CodeAwakeWindow
		}
		if remaining > 0 {
			out.CodeAwake = true
			setCountdown(&out, remaining)
			return out
		}
	}

	if counting {
		setCountdown(&out, d.ActiveWindow-out.Elapsed)
	}

	return out
}

func setCountdown(out *models.Derivation, remaining time.Duration) {
	out.HasCountdown = true
	out.Remaining = remaining
	out.Countdown = FormatCountdown(remaining)
}

// FormatCountdown форматирует остаток как M:SS, секунды округляются вниз.
func FormatCountdown(remaining time.Duration) string {
	total := int64(nonNegative(remaining) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// View собирает представление заказа для UI.
func (l *Lifecycle) View(order models.Order, now time.Time, busy bool) (models.OrderView, error) {
	d, err := DescriptorFor(order.Variant)
	if err != nil {
		return models.OrderView{}, err
	}

	derived := l.derive(d, order, now)
	view := models.OrderView{
		Order:         order,
		DisplayStatus: derived.Status,
		CodeAwake:     derived.CodeAwake,
		Actions:       GateActions(d, order, derived),
		Busy:          busy,
	}
	if derived.HasCountdown {
		countdown := derived.Countdown
		view.Countdown = &countdown
	}

	return view, nil
}
