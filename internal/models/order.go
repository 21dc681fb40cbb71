package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Renal37/number-lifecycle/internal/utils"
)

// Variant - вариант услуги «номер», у каждого свои пороги жизненного цикла.
type Variant string

const (
	VariantShort    Variant = "short"
	VariantMiddle   Variant = "middle"
	VariantLong     Variant = "long"
	VariantEmptySim Variant = "empty_sim"
)

// ServerStatus - статус заказа, каноничный для удалённого сервера.
type ServerStatus string

const (
	StatusPending   ServerStatus = "PENDING"
	StatusCancelled ServerStatus = "CANCELLED"
	StatusCompleted ServerStatus = "COMPLETED"
	StatusInactive  ServerStatus = "INACTIVE"
	StatusActive    ServerStatus = "ACTIVE"
	StatusExpired   ServerStatus = "EXPIRED"
	StatusTimedOut  ServerStatus = "TIMED_OUT"
)

// ParseServerStatus приводит статус из ответа сервера к каноничному виду.
// Статус «активная пустая сим-карта» считается разновидностью Active.
func ParseServerStatus(raw string) ServerStatus {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	switch normalized {
	case "ACTIVE", "EMPTY_SIMCARD_ACTIVE", "EMPTY_SIM_ACTIVE":
		return StatusActive
	case "CANCELED":
		return StatusCancelled
	case "TIMEDOUT", "TIMEOUT":
		return StatusTimedOut
	}

	return ServerStatus(normalized)
}

// UnmarshalText нормализует статус при декодировании JSON.
func (s *ServerStatus) UnmarshalText(text []byte) error {
	*s = ParseServerStatus(string(text))
	return nil
}

// ReuseOption - признак повторного использования Short-заказа. Сервис отдаёт
// его то булевым значением, то числовой опцией; true читается как 1.
type ReuseOption int

func (r *ReuseOption) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch string(data) {
	case "null", "false", `""`:
		*r = 0
		return nil
	case "true":
		*r = 1
		return nil
	}

	raw := strings.Trim(string(data), `"`)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("reuse must be boolean or integer, got %s", data)
	}

	*r = ReuseOption(value)
	return nil
}

// Order - запись о заказе, как её отдаёт сервис листинга. Для ядра только для чтения.
type Order struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"orderId,omitempty"`
	Variant     Variant          `json:"serviceVariant,omitempty"`
	Status      ServerStatus     `json:"status"`
	SMSCode     string           `json:"smsCode"`
	CreatedAt   *utils.Timestamp `json:"createdAt,omitempty"`
	CodeAwakeAt *utils.Timestamp `json:"codeAwakeAt,omitempty"`
	Reuse       ReuseOption      `json:"reuse,omitempty"`
	MaySend     bool             `json:"maySend,omitempty"`
}

// PrimaryID возвращает orderId, а при его отсутствии id.
func (o Order) PrimaryID() string {
	if o.OrderID != "" {
		return o.OrderID
	}
	return o.ID
}

// HasSMS сообщает, пришло ли содержимое SMS.
func (o Order) HasSMS() bool {
	return strings.TrimSpace(o.SMSCode) != ""
}

// Created возвращает время создания заказа, если оно известно.
func (o Order) Created() (time.Time, bool) {
	if o.CreatedAt == nil || o.CreatedAt.IsZero() {
		return time.Time{}, false
	}
	return o.CreatedAt.Time, true
}

// CodeAwake возвращает момент пробуждения кода (только Short).
func (o Order) CodeAwake() (time.Time, bool) {
	if o.CodeAwakeAt == nil || o.CodeAwakeAt.IsZero() {
		return time.Time{}, false
	}
	return o.CodeAwakeAt.Time, true
}
