package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Renal37/number-lifecycle/internal/database"
	router "github.com/Renal37/number-lifecycle/internal/http"
	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/Renal37/number-lifecycle/internal/services"
	"github.com/Renal37/number-lifecycle/internal/utils"
	"go.uber.org/zap"
)

func main() {
	config, err := NewConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Config wasn't loaded due to %s", err)
	}

	if err := logger.Initialize(config.LogLevel, config.Env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}
	defer logger.Log.Sync()

	ctx, stop := utils.HandleTerminationProcess(context.Background())
	defer stop()

	backend, err := database.Open(ctx, config.DSN)
	if err != nil {
		logger.Log.Fatal("storage wasn't initialized", zap.Error(err))
	}

	if config.AuthSecretKey == "" {
		logger.Log.Warn("AUTH_SECRET_KEY is not set, bearer tokens are not verified")
	}

	// Один обработчик сохраняет порядок сбросов.
	jobQueueService := services.NewJobQueueService(context.Background(), 100, 1)
	store := services.NewActivationStore(ctx, backend, jobQueueService)
	resolver := services.NewIdentifierResolver(store)
	lifecycle := services.NewLifecycle(resolver)

	remote := services.NewRemoteOrders(config.RemoteEndpoint, config.RemoteTimeout, config.Routes)
	credentials := services.NewJWTCredentials(config.AuthSecretKey)
	executor := services.NewCommandExecutor(remote, credentials, resolver)

	err = router.New(
		router.Config{Endpoint: config.Endpoint},
		services.NewOrderService(remote, credentials, lifecycle, executor),
		executor,
		services.NewProjector(lifecycle, services.DefaultCountdownPeriod),
	).Run(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("server stopped with error", zap.Error(err))
	}

	jobQueueService.Shutdown()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Close(closeCtx); err != nil {
		logger.Log.Error("activation store wasn't closed cleanly", zap.Error(err))
	}
}
