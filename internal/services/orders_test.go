package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	orders []models.Order
	err    error
	token  string
}

func (f *fakeLister) ListOrders(ctx context.Context, variant models.Variant, token string) ([]models.Order, error) {
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Order, len(f.orders))
	for i, order := range f.orders {
		order.Variant = variant
		out[i] = order
	}
	return out, nil
}

type busySet map[string]bool

func (b busySet) IsBusy(order models.Order) bool {
	return b[order.PrimaryID()]
}

func newTestOrderService(lister *fakeLister, token string, busy busySet) *OrderService {
	lifecycle, _ := newTestLifecycle()
	service := NewOrderService(lister, staticCredentials(token), lifecycle, busy)
	service.now = func() time.Time { return baseTime }
	return service
}

func TestOrderServiceGetOrders(t *testing.T) {
	lister := &fakeLister{orders: []models.Order{
		{ID: "1", OrderID: "o-1", Status: models.StatusActive},
		{ID: "2", Status: models.StatusInactive},
	}}

	t.Run("Should return views with busy flags", func(t *testing.T) {
		service := newTestOrderService(lister, "token", busySet{"o-1": true})

		views, err := service.GetOrders(context.Background(), models.VariantMiddle)
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.Equal(t, "token", lister.token)
		assert.Equal(t, models.DisplayActive, views[0].DisplayStatus)
		require.NotNil(t, views[0].Countdown)
		assert.Equal(t, "3:00", *views[0].Countdown)
		assert.True(t, views[0].Busy)

		assert.Equal(t, models.DisplayInactive, views[1].DisplayStatus)
		assert.Equal(t, models.ActionSet{models.ActionActivate}, views[1].Actions)
		assert.False(t, views[1].Busy)
	})

	t.Run("Should require credential", func(t *testing.T) {
		service := newTestOrderService(lister, "", busySet{})

		_, err := service.GetOrders(context.Background(), models.VariantMiddle)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("Should reject unknown variant", func(t *testing.T) {
		service := newTestOrderService(lister, "token", busySet{})

		_, err := service.GetOrders(context.Background(), "huge")
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})

	t.Run("Should wrap remote failures", func(t *testing.T) {
		service := newTestOrderService(&fakeLister{err: ErrRemoteUnauthorized}, "token", busySet{})

		_, err := service.GetOrders(context.Background(), models.VariantLong)
		assert.ErrorIs(t, err, ErrRemoteUnauthorized)
	})
}

func TestOrderServiceFindOrder(t *testing.T) {
	lister := &fakeLister{orders: []models.Order{
		{ID: "1", OrderID: "o-1", Status: models.StatusActive},
		{ID: "2", Status: models.StatusInactive},
	}}
	service := newTestOrderService(lister, "token", busySet{})

	order, err := service.FindOrder(context.Background(), models.VariantLong, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "1", order.ID)
	assert.Equal(t, models.VariantLong, order.Variant)

	order, err = service.FindOrder(context.Background(), models.VariantLong, "2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, order.Status)

	_, err = service.FindOrder(context.Background(), models.VariantLong, "3")
	assert.True(t, errors.Is(err, ErrNotFound))
}
