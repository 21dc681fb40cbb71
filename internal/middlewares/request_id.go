package middlewares

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID выставляет X-Request-Id, сохраняя пришедший от клиента.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}
