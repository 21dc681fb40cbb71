package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/Renal37/number-lifecycle/internal/middlewares"
	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Config struct {
	// Endpoint адрес и порт, на которых сервер будет слушать входящие запросы.
	Endpoint string
}

type Router struct {
	config           Config
	orderService     models.OrderService
	commandService   models.CommandService
	countdownService models.CountdownService
}

func New(
	config Config,
	orderService models.OrderService,
	commandService models.CommandService,
	countdownService models.CountdownService,
) *Router {
	return &Router{
		config,
		orderService,
		commandService,
		countdownService,
	}
}

func (router *Router) get() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middlewares.RequestID,
		logger.RequestLogger,
	)

	r.Get("/health", Health)

	r.Route("/api/orders/{variant}", func(r chi.Router) {
		r.Use(
			middlewares.ServiceInjectorMiddleware(
				router.orderService,
				router.commandService,
				router.countdownService,
			),
			middlewares.BearerMiddleware,
		)

		r.Get("/", GetOrders)

		r.With(middlewares.JSONMiddleware[models.Order]).Post("/cancel", CancelOrder)
		r.With(middlewares.JSONMiddleware[models.Order]).Post("/activate", ActivateOrder)
		r.With(middlewares.JSONMiddleware[models.Order]).Post("/reuse", ReuseOrder)

		r.Get("/{id}/countdown", StreamCountdown)
	})

	return r
}

// Run слушает до отмены ctx, затем корректно останавливает сервер.
func (router *Router) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              router.config.Endpoint,
		Handler:           router.get(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("running server", zap.String("endpoint", router.config.Endpoint))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func Health(w http.ResponseWriter, r *http.Request) {
	middlewares.EncodeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
