package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
)

type orderLister interface {
	ListOrders(ctx context.Context, variant models.Variant, token string) ([]models.Order, error)
}

type busyChecker interface {
	IsBusy(order models.Order) bool
}

// OrderService отдаёт заказы из сервиса листинга вместе с производным состоянием.
type OrderService struct {
	remote      orderLister
	credentials credentialSource
	lifecycle   *Lifecycle
	busy        busyChecker
	now         func() time.Time
}

func NewOrderService(remote orderLister, credentials credentialSource, lifecycle *Lifecycle, busy busyChecker) *OrderService {
	return &OrderService{
		remote:      remote,
		credentials: credentials,
		lifecycle:   lifecycle,
		busy:        busy,
		now:         time.Now,
	}
}

// GetOrders возвращает представления всех заказов варианта на текущий момент.
func (o *OrderService) GetOrders(ctx context.Context, variant models.Variant) ([]models.OrderView, error) {
	if _, err := DescriptorFor(variant); err != nil {
		return nil, err
	}

	orders, err := o.list(ctx, variant)
	if err != nil {
		return nil, err
	}

	now := o.now()
	views := make([]models.OrderView, 0, len(orders))
	for _, order := range orders {
		view, err := o.lifecycle.View(order, now, o.busy.IsBusy(order))
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

// FindOrder ищет заказ варианта по id или orderId.
func (o *OrderService) FindOrder(ctx context.Context, variant models.Variant, id string) (models.Order, error) {
	orders, err := o.list(ctx, variant)
	if err != nil {
		return models.Order{}, err
	}

	for _, order := range orders {
		if order.ID == id || (order.OrderID != "" && order.OrderID == id) {
			return order, nil
		}
	}

	return models.Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (o *OrderService) list(ctx context.Context, variant models.Variant) ([]models.Order, error) {
	token, ok := o.credentials.Credential(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	orders, err := o.remote.ListOrders(ctx, variant, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", variant, err)
	}

	return orders, nil
}
