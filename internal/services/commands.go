package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/Renal37/number-lifecycle/internal/models"
	"go.uber.org/zap"
)

// Классы ошибок команд. Повторов нет: любая ошибка завершает действие пользователя.
var (
	ErrPrecondition     = errors.New("command precondition failed")
	ErrNotAuthenticated = errors.New("caller is not authenticated")
	ErrNotFound         = errors.New("order not found")
	ErrOperationFailed  = errors.New("remote operation failed")
	ErrUnexpected       = errors.New("unexpected command failure")
	ErrBusy             = errors.New("order is already being updated")
)

// Сообщения для пользователя.
const (
	MessageMissingOrder     = "Order identifier is missing. Refresh the page and try again."
	MessageSignIn           = "You are not signed in. Sign in and try again."
	MessageRefresh          = "The order was not found. Refresh the page and try again."
	MessageOperationFailed  = "The operation failed. Try again or contact support."
	MessageContactSupport   = "Something went wrong. Please contact support."
	MessageAlreadyInProcess = "This order is already being updated."
)

// CommandError несёт класс ошибки и фиксированное сообщение для пользователя.
type CommandError struct {
	Kind    error
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// UserMessage возвращает сообщение для пользователя для любой ошибки команды.
func UserMessage(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Message
	}
	return MessageContactSupport
}

type outcome struct {
	kind    error
	message string
}

var (
	outcomeSignIn    = outcome{ErrNotAuthenticated, MessageSignIn}
	outcomeRefresh   = outcome{ErrNotFound, MessageRefresh}
	outcomeOperation = outcome{ErrOperationFailed, MessageOperationFailed}
	outcomeSupport   = outcome{ErrUnexpected, MessageContactSupport}
)

// Известные сообщения сервиса для Cancel (и Reuse).
var cancelMessages = map[string]outcome{
	"Unauthorized":           outcomeSignIn,
	"Forbidden":              outcomeSignIn,
	"User not authenticated": outcomeSignIn,
	"Order not found":        outcomeRefresh,
	"Error cancelling order": outcomeOperation,
	"Failed to cancel order": outcomeOperation,
}

// Известные сообщения сервиса для Activate.
var activateMessages = map[string]outcome{
	"Invalid orderId":               outcomeRefresh,
	"Error waking up long":          outcomeOperation,
	"Error getting time of wake up": outcomeOperation,
	"Internal Server Error":         outcomeSupport,
}

type remoteCommands interface {
	Execute(ctx context.Context, variant models.Variant, command Command, token, orderID string) (models.CommandResult, error)
}

type credentialSource interface {
	Credential(ctx context.Context) (string, bool)
}

// CommandExecutor выполняет Cancel/Activate/Reuse и ведёт рекомендательный
// флаг занятости по каждому заказу отдельно.
type CommandExecutor struct {
	remote      remoteCommands
	credentials credentialSource
	resolver    *IdentifierResolver
	now         func() time.Time

	mu   sync.Mutex
	busy map[string]struct{}
}

func NewCommandExecutor(remote remoteCommands, credentials credentialSource, resolver *IdentifierResolver) *CommandExecutor {
	return &CommandExecutor{
		remote:      remote,
		credentials: credentials,
		resolver:    resolver,
		now:         time.Now,
		busy:        make(map[string]struct{}),
	}
}

// Cancel отменяет заказ. Локальные метки не меняются.
func (e *CommandExecutor) Cancel(ctx context.Context, order models.Order) error {
	return e.execute(ctx, order, CommandCancel, cancelMessages, nil)
}

// Activate активирует заказ и при успехе записывает момент активации
// под всеми идентификаторами заказа.
func (e *CommandExecutor) Activate(ctx context.Context, order models.Order) error {
	return e.execute(ctx, order, CommandActivate, activateMessages, func(d Descriptor) {
		e.resolver.RecordActivation(d.Namespace, order, e.now())
	})
}

// Reuse повторно использует завершённый Short-заказ.
func (e *CommandExecutor) Reuse(ctx context.Context, order models.Order) error {
	return e.execute(ctx, order, CommandReuse, cancelMessages, nil)
}

// IsBusy сообщает, выполняется ли сейчас команда над заказом.
func (e *CommandExecutor) IsBusy(order models.Order) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.busy[busyKey(order)]
	return ok
}

func (e *CommandExecutor) execute(
	ctx context.Context,
	order models.Order,
	command Command,
	messages map[string]outcome,
	onSuccess func(d Descriptor),
) error {
	d, err := DescriptorFor(order.Variant)
	if err != nil {
		return &CommandError{Kind: ErrPrecondition, Message: MessageContactSupport, Err: err}
	}

	if order.OrderID == "" {
		return &CommandError{Kind: ErrPrecondition, Message: MessageMissingOrder}
	}

	token, ok := e.credentials.Credential(ctx)
	if !ok {
		return &CommandError{Kind: ErrPrecondition, Message: MessageSignIn}
	}

	key := busyKey(order)
	if !e.acquire(key) {
		return &CommandError{Kind: ErrBusy, Message: MessageAlreadyInProcess}
	}
	defer e.release(key)

	// Начатый запрос доводится до конца, даже если вызывающий ушёл.
	result, err := e.remote.Execute(context.WithoutCancel(ctx), d.Variant, command, token, order.OrderID)
	if err == nil && result.Success {
		if onSuccess != nil {
			onSuccess(d)
		}
		logger.Log.Info("order command succeeded",
			zap.String("command", string(command)),
			zap.String("variant", string(d.Variant)),
			zap.String("orderID", order.OrderID),
		)
		return nil
	}

	cmdErr := classify(messages, result, err)
	logger.Log.Warn("order command failed",
		zap.String("command", string(command)),
		zap.String("variant", string(d.Variant)),
		zap.String("orderID", order.OrderID),
		zap.String("message", result.Message),
		zap.Error(cmdErr),
	)

	return cmdErr
}

// classify: известное сообщение сервиса важнее кода ответа.
func classify(messages map[string]outcome, result models.CommandResult, err error) *CommandError {
	if o, ok := messages[result.Message]; ok {
		return &CommandError{Kind: o.kind, Message: o.message, Err: err}
	}

	if errors.Is(err, ErrUnsupportedCommand) || errors.Is(err, ErrUnknownVariant) {
		return &CommandError{Kind: ErrPrecondition, Message: MessageContactSupport, Err: err}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &CommandError{Kind: outcomeSignIn.kind, Message: outcomeSignIn.message, Err: err}
		case http.StatusNotFound:
			return &CommandError{Kind: outcomeRefresh.kind, Message: outcomeRefresh.message, Err: err}
		}
	}

	if err == nil && result.Message != "" {
		err = errors.New(result.Message)
	}

	return &CommandError{Kind: outcomeSupport.kind, Message: outcomeSupport.message, Err: err}
}

func (e *CommandExecutor) acquire(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.busy[key]; ok {
		return false
	}
	e.busy[key] = struct{}{}
	return true
}

func (e *CommandExecutor) release(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.busy, key)
}

func busyKey(order models.Order) string {
	return string(order.Variant) + ":" + order.PrimaryID()
}
