package router

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/Renal37/number-lifecycle/internal/middlewares"
	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/Renal37/number-lifecycle/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const countdownWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type countdownFrame struct {
	Status    models.DisplayStatus `json:"status"`
	Countdown string               `json:"countdown,omitempty"`
	CodeAwake bool                 `json:"codeAwake,omitempty"`
	Expired   bool                 `json:"expired,omitempty"`
}

// StreamCountdown отправляет клиенту тики отсчёта для одного заказа, пока
// отсчёт не истечёт или клиент не отключится.
func StreamCountdown(w http.ResponseWriter, r *http.Request) {
	variant, ok := parseVariant(w, r)
	if !ok {
		return
	}

	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}
	countdownService := middlewares.GetServiceFromContext[models.CountdownService](w, r, middlewares.CountdownServiceKey)
	if countdownService == nil {
		return
	}

	order, err := (*orderService).FindOrder(r.Context(), variant, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case isAuthError(err):
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
		case errors.Is(err, services.ErrNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		default:
			http.Error(w, "Error occurred during getting order: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(frame countdownFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()

		_ = conn.SetWriteDeadline(time.Now().Add(countdownWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			logger.Log.Debug("countdown frame was not delivered", zap.Error(err))
			cancel()
		}
	}

	countdown := (*countdownService).Start(ctx, order,
		func(d models.Derivation) {
			send(countdownFrame{Status: d.Status, Countdown: d.Countdown, CodeAwake: d.CodeAwake})
		},
		func(d models.Derivation) {
			send(countdownFrame{Status: d.Status, Expired: true})
		},
	)
	defer countdown.Stop()

	// Клиент ничего не шлёт; чтение нужно только чтобы заметить отключение.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	select {
	case <-countdown.Done():
	case <-ctx.Done():
		<-countdown.Done()
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(countdownWriteWait),
	)
}
