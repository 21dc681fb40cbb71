package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Renal37/number-lifecycle/internal/middlewares"
	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/Renal37/number-lifecycle/internal/services"
	"github.com/go-chi/chi/v5"
)

func parseVariant(w http.ResponseWriter, r *http.Request) (models.Variant, bool) {
	variant := models.Variant(chi.URLParam(r, "variant"))

	if _, err := services.DescriptorFor(variant); err != nil {
		http.Error(w, fmt.Sprintf("Unknown service variant %s", variant), http.StatusNotFound)
		return "", false
	}

	return variant, true
}

func GetOrders(w http.ResponseWriter, r *http.Request) {
	variant, ok := parseVariant(w, r)
	if !ok {
		return
	}

	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}

	orders, err := (*orderService).GetOrders(r.Context(), variant)
	if err != nil {
		if isAuthError(err) {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		http.Error(w, fmt.Sprintf("Error occurred during getting orders: %s", err.Error()), http.StatusBadGateway)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, orders)
}

func CancelOrder(w http.ResponseWriter, r *http.Request) {
	runCommand(w, r, models.CommandService.Cancel)
}

func ActivateOrder(w http.ResponseWriter, r *http.Request) {
	runCommand(w, r, models.CommandService.Activate)
}

func ReuseOrder(w http.ResponseWriter, r *http.Request) {
	runCommand(w, r, models.CommandService.Reuse)
}

func runCommand(
	w http.ResponseWriter,
	r *http.Request,
	command func(models.CommandService, context.Context, models.Order) error,
) {
	variant, ok := parseVariant(w, r)
	if !ok {
		return
	}

	order, ok := middlewares.GetParsedJSONData[models.Order](w, r)
	if !ok {
		return
	}
	order.Variant = variant

	commandService := middlewares.GetServiceFromContext[models.CommandService](w, r, middlewares.CommandServiceKey)
	if commandService == nil {
		return
	}

	if err := command(*commandService, r.Context(), order); err != nil {
		middlewares.EncodeJSONResponse(w, commandStatus(err), models.CommandResult{
			Success: false,
			Message: services.UserMessage(err),
		})
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, models.CommandResult{Success: true})
}

func commandStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrPrecondition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, services.ErrNotAuthenticated) || errors.Is(err, services.ErrRemoteUnauthorized)
}
