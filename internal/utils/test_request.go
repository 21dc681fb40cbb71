package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testRequestTimeout = 5 * time.Second

// TestRequest выполняет запрос к тестовому серверу и возвращает ответ
// вместе с прочитанным телом. Тело ответа уже закрыто.
func TestRequest(t *testing.T, ts *httptest.Server, method, path string, headers map[string]string, body io.Reader) (*http.Response, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, ts.URL+path, body)
	require.NoError(t, err)

	req.Header.Set("Accept-Encoding", "identity")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(respBody)
}

// BearerHeaders собирает заголовки авторизованного запроса.
// Пустой contentType не выставляется.
func BearerHeaders(token, contentType string) map[string]string {
	headers := map[string]string{"Authorization": "Bearer " + token}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	return headers
}

// OrdersPath строит путь API заказов варианта: OrdersPath("short", "1", "countdown").
func OrdersPath(variant string, parts ...string) string {
	path := "/api/orders/" + variant
	if len(parts) > 0 {
		path += "/" + strings.Join(parts, "/")
	}
	return path
}
