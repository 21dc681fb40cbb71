package models

import (
	"context"
)

// Countdown - запущенный живой отсчёт.
type Countdown interface {
	Stop()
	Done() <-chan struct{}
}

//go:generate mockgen -destination=mocks/mock_order.go . OrderService
type OrderService interface {
	GetOrders(ctx context.Context, variant Variant) ([]OrderView, error)

	FindOrder(ctx context.Context, variant Variant, id string) (Order, error)
}

//go:generate mockgen -destination=mocks/mock_command.go . CommandService
type CommandService interface {
	Cancel(ctx context.Context, order Order) error

	Activate(ctx context.Context, order Order) error

	Reuse(ctx context.Context, order Order) error
}

//go:generate mockgen -destination=mocks/mock_countdown.go . CountdownService
type CountdownService interface {
	Start(ctx context.Context, order Order, onTick func(Derivation), onExpire func(Derivation)) Countdown
}
