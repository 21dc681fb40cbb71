package services

import (
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
)

// Значения поля reuse, разрешающие повторное использование Short-заказа.
const (
	reuseEnabled       = 1
	reuseOptionEnabled = 10
)

// AvailableActions вычисляет статус на момент now и возвращает допустимые действия.
func (l *Lifecycle) AvailableActions(order models.Order, now time.Time) (models.ActionSet, error) {
	d, err := DescriptorFor(order.Variant)
	if err != nil {
		return nil, err
	}
	return GateActions(d, order, l.derive(d, order, now)), nil
}

// GateActions - чистая функция от серверного статуса, производного статуса,
// наличия SMS и прошедшего времени.
func GateActions(d Descriptor, order models.Order, derived models.Derivation) models.ActionSet {
	if d.Rule == RulePendingTimeout {
		return gatePending(d, order, derived)
	}
	return gateWindow(d, order, derived)
}

func gateWindow(d Descriptor, order models.Order, derived models.Derivation) models.ActionSet {
	switch order.Status {
	case models.StatusActive:
		// Клиент уже считает окно истёкшим, а сервер ещё нет: данные устарели.
		if derived.Status == models.DisplayInactive {
			return models.ActionSet{}
		}
		if order.HasSMS() {
			return models.ActionSet{}
		}
		if derived.Elapsed >= d.CancelGrace {
			return models.ActionSet{models.ActionCancel}
		}
		return models.ActionSet{}
	case models.StatusInactive:
		return models.ActionSet{models.ActionActivate}
	default:
		return models.ActionSet{}
	}
}

func gatePending(d Descriptor, order models.Order, derived models.Derivation) models.ActionSet {
	if derived.Status == models.DisplayTimedOut {
		return models.ActionSet{}
	}

	switch order.Status {
	case models.StatusPending:
		if _, ok := order.Created(); !ok || order.HasSMS() {
			return models.ActionSet{}
		}
		if derived.Elapsed >= d.CancelGrace {
			return models.ActionSet{models.ActionCancel}
		}
		return models.ActionSet{}
	case models.StatusCompleted:
		if !order.HasSMS() {
			return models.ActionSet{}
		}
		actions := models.ActionSet{}
		if order.Reuse == reuseEnabled || order.Reuse == reuseOptionEnabled {
			actions = append(actions, models.ActionReuse)
		}
		if order.MaySend {
			actions = append(actions, models.ActionSend)
		}
		return actions
	default:
		return models.ActionSet{}
	}
}
