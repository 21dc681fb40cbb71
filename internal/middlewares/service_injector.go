package middlewares

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Renal37/number-lifecycle/internal/models"
)

type key int

const (
	OrderServiceKey key = iota
	CommandServiceKey
	CountdownServiceKey
)

func ServiceInjectorMiddleware(
	orderService models.OrderService,
	commandService models.CommandService,
	countdownService models.CountdownService,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), OrderServiceKey, orderService)
			ctx = context.WithValue(ctx, CommandServiceKey, commandService)
			ctx = context.WithValue(ctx, CountdownServiceKey, countdownService)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetServiceFromContext[Service interface{}](w http.ResponseWriter, r *http.Request, serviceKey key) *Service {
	foundService, ok := r.Context().Value(serviceKey).(Service)

	if !ok {
		http.Error(w, fmt.Sprintf("Service wasn't found in context by key %v", serviceKey), http.StatusInternalServerError)
		return nil
	}

	return &foundService
}
