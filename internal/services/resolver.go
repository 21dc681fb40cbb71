package services

import (
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
)

type timestampStore interface {
	Get(namespace, key string) (int64, bool)
	Set(namespace, key string, ts int64)
	Delete(namespace, key string)
}

// IdentifierResolver ищет время активации под любым из идентификаторов заказа:
// одни вызывающие используют id, другие orderId.
type IdentifierResolver struct {
	store timestampStore
}

func NewIdentifierResolver(store timestampStore) *IdentifierResolver {
	return &IdentifierResolver{store: store}
}

// CandidateKeys возвращает [orderId, id, orderId-или-id] без пустых и повторов.
func CandidateKeys(order models.Order) []string {
	keys := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)

	for _, key := range []string{order.OrderID, order.ID, order.PrimaryID()} {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys
}

// ResolveActivationTime возвращает первую найденную метку; orderId приоритетнее id.
func (r *IdentifierResolver) ResolveActivationTime(namespace string, order models.Order) (time.Time, bool) {
	for _, key := range CandidateKeys(order) {
		if ms, ok := r.store.Get(namespace, key); ok {
			return time.UnixMilli(ms), true
		}
	}
	return time.Time{}, false
}

// RecordActivation пишет now под каждым ключом-кандидатом.
func (r *IdentifierResolver) RecordActivation(namespace string, order models.Order, now time.Time) {
	ms := now.UnixMilli()
	for _, key := range CandidateKeys(order) {
		r.store.Set(namespace, key, ms)
	}
}

// Clear удаляет запись под основным идентификатором и под остальными
// кандидатами, чтобы следующий запрос отсчёта начал окно заново.
func (r *IdentifierResolver) Clear(namespace string, order models.Order) {
	for _, key := range CandidateKeys(order) {
		r.store.Delete(namespace, key)
	}
}
