package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executeCall struct {
	variant models.Variant
	command Command
	token   string
	orderID string
}

type fakeRemote struct {
	mu     sync.Mutex
	calls  []executeCall
	result models.CommandResult
	err    error
	block  chan struct{}
}

func (f *fakeRemote) Execute(ctx context.Context, variant models.Variant, command Command, token, orderID string) (models.CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, executeCall{variant, command, token, orderID})
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.result, f.err
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type staticCredentials string

func (s staticCredentials) Credential(ctx context.Context) (string, bool) {
	return string(s), s != ""
}

func newTestExecutor(remote *fakeRemote, token string) (*CommandExecutor, *Lifecycle) {
	store := NewActivationStore(context.Background(), nil, nil)
	resolver := NewIdentifierResolver(store)
	executor := NewCommandExecutor(remote, staticCredentials(token), resolver)
	executor.now = func() time.Time { return baseTime }
	return executor, NewLifecycle(resolver)
}

func TestCommandPreconditions(t *testing.T) {
	testCases := []struct {
		testName        string
		order           models.Order
		token           string
		expectedMessage string
	}{
		{
			testName:        "Should refuse cancel without orderId",
			order:           models.Order{ID: "1", Variant: models.VariantMiddle},
			token:           "token",
			expectedMessage: MessageMissingOrder,
		},
		{
			testName:        "Should refuse cancel without credential",
			order:           models.Order{ID: "1", OrderID: "o-1", Variant: models.VariantMiddle},
			expectedMessage: MessageSignIn,
		},
		{
			testName:        "Should refuse unknown variant",
			order:           models.Order{ID: "1", OrderID: "o-1", Variant: "huge"},
			token:           "token",
			expectedMessage: MessageContactSupport,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			remote := &fakeRemote{result: models.CommandResult{Success: true}}
			executor, _ := newTestExecutor(remote, tc.token)

			err := executor.Cancel(context.Background(), tc.order)

			assert.ErrorIs(t, err, ErrPrecondition)
			assert.Equal(t, tc.expectedMessage, UserMessage(err))
			assert.Equal(t, 0, remote.callCount())
		})
	}
}

func TestCommandSuccess(t *testing.T) {
	order := models.Order{ID: "1", OrderID: "o-1", Variant: models.VariantLong, Status: models.StatusInactive}

	t.Run("Should cancel without touching timestamps", func(t *testing.T) {
		remote := &fakeRemote{result: models.CommandResult{Success: true}}
		executor, _ := newTestExecutor(remote, "token")

		require.NoError(t, executor.Cancel(context.Background(), order))

		assert.Equal(t, []executeCall{{models.VariantLong, CommandCancel, "token", "o-1"}}, remote.calls)
		_, ok := executor.resolver.ResolveActivationTime(Descriptors[models.VariantLong].Namespace, order)
		assert.False(t, ok)
	})

	t.Run("Should record activation under every identifier", func(t *testing.T) {
		remote := &fakeRemote{result: models.CommandResult{Success: true}}
		executor, lifecycle := newTestExecutor(remote, "token")

		require.NoError(t, executor.Activate(context.Background(), order))

		namespace := Descriptors[models.VariantLong].Namespace
		for _, lookup := range []models.Order{{ID: "1"}, {OrderID: "o-1"}} {
			ts, ok := executor.resolver.ResolveActivationTime(namespace, lookup)
			require.True(t, ok)
			assert.True(t, baseTime.Equal(ts))
		}

		active := order
		active.Status = models.StatusActive
		derived, err := lifecycle.Derive(active, baseTime.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "2:00", derived.Countdown)
		assert.True(t, baseTime.Equal(derived.ActivatedAt))
	})

	t.Run("Should reuse short order", func(t *testing.T) {
		remote := &fakeRemote{result: models.CommandResult{Success: true}}
		executor, _ := newTestExecutor(remote, "token")

		short := models.Order{ID: "s", OrderID: "o-s", Variant: models.VariantShort}
		require.NoError(t, executor.Reuse(context.Background(), short))
		assert.Equal(t, CommandReuse, remote.calls[0].command)
	})
}

func TestCommandFailures(t *testing.T) {
	order := models.Order{ID: "1", OrderID: "o-1", Variant: models.VariantMiddle}

	testCases := []struct {
		testName        string
		activate        bool
		result          models.CommandResult
		err             error
		expectedKind    error
		expectedMessage string
	}{
		{
			testName:        "Should map unauthorized cancel message",
			result:          models.CommandResult{Message: "Unauthorized"},
			expectedKind:    ErrNotAuthenticated,
			expectedMessage: MessageSignIn,
		},
		{
			testName:        "Should map missing order on cancel",
			result:          models.CommandResult{Message: "Order not found"},
			expectedKind:    ErrNotFound,
			expectedMessage: MessageRefresh,
		},
		{
			testName:        "Should map provider cancel failure",
			result:          models.CommandResult{Message: "Failed to cancel order"},
			err:             &StatusError{StatusCode: http.StatusInternalServerError},
			expectedKind:    ErrOperationFailed,
			expectedMessage: MessageOperationFailed,
		},
		{
			testName:        "Should fall back on unknown cancel message",
			result:          models.CommandResult{Message: "Something odd"},
			expectedKind:    ErrUnexpected,
			expectedMessage: MessageContactSupport,
		},
		{
			testName:        "Should not reuse cancel messages for activate",
			activate:        true,
			result:          models.CommandResult{Message: "Order not found"},
			expectedKind:    ErrUnexpected,
			expectedMessage: MessageContactSupport,
		},
		{
			testName:        "Should map invalid order id on activate",
			activate:        true,
			result:          models.CommandResult{Message: "Invalid orderId"},
			expectedKind:    ErrNotFound,
			expectedMessage: MessageRefresh,
		},
		{
			testName:        "Should map wake up failure on activate",
			activate:        true,
			result:          models.CommandResult{Message: "Error waking up long"},
			expectedKind:    ErrOperationFailed,
			expectedMessage: MessageOperationFailed,
		},
		{
			testName:        "Should map internal error on activate",
			activate:        true,
			result:          models.CommandResult{Message: "Internal Server Error"},
			expectedKind:    ErrUnexpected,
			expectedMessage: MessageContactSupport,
		},
		{
			testName:        "Should map forbidden status",
			err:             &StatusError{StatusCode: http.StatusForbidden},
			expectedKind:    ErrNotAuthenticated,
			expectedMessage: MessageSignIn,
		},
		{
			testName:        "Should map not found status",
			activate:        true,
			err:             &StatusError{StatusCode: http.StatusNotFound},
			expectedKind:    ErrNotFound,
			expectedMessage: MessageRefresh,
		},
		{
			testName:        "Should fall back on transport failure",
			err:             errors.New("connection refused"),
			expectedKind:    ErrUnexpected,
			expectedMessage: MessageContactSupport,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			remote := &fakeRemote{result: tc.result, err: tc.err}
			executor, _ := newTestExecutor(remote, "token")

			var err error
			if tc.activate {
				err = executor.Activate(context.Background(), order)
			} else {
				err = executor.Cancel(context.Background(), order)
			}

			assert.ErrorIs(t, err, tc.expectedKind)
			assert.Equal(t, tc.expectedMessage, UserMessage(err))
			assert.Equal(t, 1, remote.callCount())

			if tc.activate {
				_, ok := executor.resolver.ResolveActivationTime(Descriptors[models.VariantMiddle].Namespace, order)
				assert.False(t, ok)
			}
		})
	}
}

func TestCommandBusy(t *testing.T) {
	remote := &fakeRemote{result: models.CommandResult{Success: true}, block: make(chan struct{})}
	executor, _ := newTestExecutor(remote, "token")

	order := models.Order{ID: "1", OrderID: "o-1", Variant: models.VariantMiddle}
	other := models.Order{ID: "2", OrderID: "o-2", Variant: models.VariantMiddle}

	done := make(chan error, 1)
	go func() {
		done <- executor.Cancel(context.Background(), order)
	}()

	require.Eventually(t, func() bool { return executor.IsBusy(order) }, time.Second, time.Millisecond)
	assert.False(t, executor.IsBusy(other))

	err := executor.Activate(context.Background(), order)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, MessageAlreadyInProcess, UserMessage(err))
	assert.Equal(t, 1, remote.callCount())

	close(remote.block)
	require.NoError(t, <-done)
	assert.False(t, executor.IsBusy(order))
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, MessageContactSupport, UserMessage(errors.New("plain")))
}
