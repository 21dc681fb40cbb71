package middlewares

import (
	"net/http"
	"strings"

	"github.com/Renal37/number-lifecycle/internal/services"
)

// BearerMiddleware извлекает токен из заголовка Authorization и кладёт его в контекст.
// Проверка срока действия - забота провайдера учётных данных.
func BearerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" || tokenString == authHeader {
			http.Error(w, "Bearer token is empty", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(services.WithBearerToken(r.Context(), tokenString)))
	})
}
