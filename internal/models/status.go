package models

import "time"

// DisplayStatus - статус, который видит пользователь. Может отличаться от
// серверного, когда сработали локальные правила тайм-аута.
type DisplayStatus string

const (
	DisplayActive    DisplayStatus = "ACTIVE"
	DisplayInactive  DisplayStatus = "INACTIVE"
	DisplayPending   DisplayStatus = "PENDING"
	DisplayTimedOut  DisplayStatus = "TIMED_OUT"
	DisplayCompleted DisplayStatus = "COMPLETED"
	DisplayCancelled DisplayStatus = "CANCELLED"
	DisplayExpired   DisplayStatus = "EXPIRED"
)

// Action - действие пользователя над заказом.
type Action string

const (
	ActionCancel   Action = "cancel"
	ActionActivate Action = "activate"
	ActionReuse    Action = "reuse"
	ActionSend     Action = "send"
)

// ActionSet - набор доступных действий в каноничном порядке.
type ActionSet []Action

// Has сообщает, входит ли действие в набор.
func (s ActionSet) Has(action Action) bool {
	for _, a := range s {
		if a == action {
			return true
		}
	}
	return false
}

// Derivation - результат вычисления отображаемого статуса на момент now.
type Derivation struct {
	Status DisplayStatus

	// HasCountdown ложно, когда отсчёта нет или он дошёл до нуля.
	HasCountdown bool
	Remaining    time.Duration
	Countdown    string

	// Elapsed отсчитывается от активации (Middle/Long/EmptySim)
	// или от создания заказа (Short).
	Elapsed     time.Duration
	ActivatedAt time.Time

	CodeAwake bool
}

// OrderView - заказ вместе с производным состоянием для UI.
type OrderView struct {
	Order
	DisplayStatus DisplayStatus `json:"displayStatus"`
	Countdown     *string       `json:"countdown"`
	CodeAwake     bool          `json:"codeAwake,omitempty"`
	Actions       ActionSet     `json:"actions"`
	Busy          bool          `json:"busy"`
}

// CommandResult - тело ответа удалённых команд Cancel/Activate/Reuse.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CommandRequest - тело запроса удалённых команд.
type CommandRequest struct {
	OrderID string `json:"orderId"`
}
