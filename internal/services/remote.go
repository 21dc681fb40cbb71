package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
)

// Command - удалённая команда над заказом.
type Command string

const (
	CommandCancel   Command = "cancel"
	CommandActivate Command = "activate"
	CommandReuse    Command = "reuse"
)

var (
	ErrRemoteUnauthorized = errors.New("order service rejected credentials")
	ErrUnsupportedCommand = errors.New("command is not supported by variant")
)

// StatusError - ответ сервиса с кодом вне 2xx.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("order service responded with status %d", e.StatusCode)
}

// Routes - пути удалённого сервиса для одного варианта.
type Routes struct {
	List     string `yaml:"list"`
	Cancel   string `yaml:"cancel"`
	Activate string `yaml:"activate"`
	Reuse    string `yaml:"reuse"`
}

// DefaultRoutes возвращает пути из таблицы вариантов.
func DefaultRoutes() map[models.Variant]Routes {
	out := make(map[models.Variant]Routes, len(Descriptors))
	for variant, d := range Descriptors {
		out[variant] = Routes{
			List:     d.ListPath,
			Cancel:   d.CancelPath,
			Activate: d.ActivatePath,
			Reuse:    d.ReusePath,
		}
	}
	return out
}

// RemoteOrders - JSON-клиент удалённого сервиса заказов.
type RemoteOrders struct {
	client           *http.Client
	externalEndpoint string
	routes           map[models.Variant]Routes
}

// NewRemoteOrders создаёт клиент; непустые пути из overrides заменяют пути по умолчанию.
func NewRemoteOrders(externalEndpoint string, timeout time.Duration, overrides map[models.Variant]Routes) *RemoteOrders {
	routes := DefaultRoutes()
	for variant, o := range overrides {
		r := routes[variant]
		if o.List != "" {
			r.List = o.List
		}
		if o.Cancel != "" {
			r.Cancel = o.Cancel
		}
		if o.Activate != "" {
			r.Activate = o.Activate
		}
		if o.Reuse != "" {
			r.Reuse = o.Reuse
		}
		routes[variant] = r
	}

	return &RemoteOrders{
		client:           &http.Client{Timeout: timeout},
		externalEndpoint: strings.TrimRight(externalEndpoint, "/"),
		routes:           routes,
	}
}

func (ro *RemoteOrders) path(variant models.Variant, command Command) (string, error) {
	r, ok := ro.routes[variant]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	var path string
	switch command {
	case CommandCancel:
		path = r.Cancel
	case CommandActivate:
		path = r.Activate
	case CommandReuse:
		path = r.Reuse
	}
	if path == "" {
		return "", fmt.Errorf("%w: %s %s", ErrUnsupportedCommand, variant, command)
	}

	return path, nil
}

// ListOrders запрашивает заказы варианта; каждому проставляется Variant.
func (ro *RemoteOrders) ListOrders(ctx context.Context, variant models.Variant, token string) ([]models.Order, error) {
	r, ok := ro.routes[variant]
	if !ok || r.List == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	res, err := ro.do(ctx, http.MethodGet, r.List, token, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, ErrRemoteUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}

	var orders []models.Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	for i := range orders {
		orders[i].Variant = variant
	}

	return orders, nil
}

// Execute отправляет команду. Ошибка транспорта или декодирования возвращается
// как есть; ответ вне 2xx - как *StatusError вместе с разобранным телом, если оно есть.
func (ro *RemoteOrders) Execute(ctx context.Context, variant models.Variant, command Command, token, orderID string) (models.CommandResult, error) {
	path, err := ro.path(variant, command)
	if err != nil {
		return models.CommandResult{}, err
	}

	body, err := json.Marshal(models.CommandRequest{OrderID: orderID})
	if err != nil {
		return models.CommandResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	res, err := ro.do(ctx, http.MethodPost, path, token, bytes.NewReader(body))
	if err != nil {
		return models.CommandResult{}, err
	}
	defer res.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return models.CommandResult{}, fmt.Errorf("failed to read from response body: %w", err)
	}

	var result models.CommandResult
	decodeErr := json.Unmarshal(buf.Bytes(), &result)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if decodeErr != nil {
			result = models.CommandResult{}
		}
		return result, &StatusError{StatusCode: res.StatusCode}
	}

	if decodeErr != nil {
		return models.CommandResult{}, fmt.Errorf("failed to unmarshal data: %w", decodeErr)
	}

	return result, nil
}

func (ro *RemoteOrders) do(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, ro.externalEndpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ro.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", method, err)
	}

	return res, nil
}
