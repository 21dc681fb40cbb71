package services

import (
	"context"
	"testing"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/Renal37/number-lifecycle/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestLifecycle() (*Lifecycle, *ActivationStore) {
	store := NewActivationStore(context.Background(), nil, nil)
	return NewLifecycle(NewIdentifierResolver(store)), store
}

func TestFormatCountdown(t *testing.T) {
	testCases := []struct {
		testName  string
		remaining time.Duration
		expected  string
	}{
		{"Should format full window", 3 * time.Minute, "3:00"},
		{"Should pad seconds", 61 * time.Second, "1:01"},
		{"Should floor fractional seconds", 59*time.Second + 999*time.Millisecond, "0:59"},
		{"Should clamp negative to zero", -time.Second, "0:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatCountdown(tc.remaining))
		})
	}
}

func TestDeriveWindowBackfill(t *testing.T) {
	for _, variant := range []models.Variant{models.VariantMiddle, models.VariantLong, models.VariantEmptySim} {
		t.Run(string(variant), func(t *testing.T) {
			lifecycle, store := newTestLifecycle()
			order := models.Order{ID: "1", OrderID: "o-1", Variant: variant, Status: models.StatusActive}

			derived, err := lifecycle.Derive(order, baseTime)
			require.NoError(t, err)

			assert.Equal(t, models.DisplayActive, derived.Status)
			assert.True(t, derived.HasCountdown)
			assert.Equal(t, "3:00", derived.Countdown)

			d, _ := DescriptorFor(variant)
			for _, key := range []string{"1", "o-1"} {
				ts, ok := store.Get(d.Namespace, key)
				require.True(t, ok)
				assert.Equal(t, baseTime.UnixMilli(), ts)
			}
		})
	}
}

func TestDeriveWindowCountdown(t *testing.T) {
	lifecycle, _ := newTestLifecycle()
	order := models.Order{ID: "1", Variant: models.VariantMiddle, Status: models.StatusActive}

	_, err := lifecycle.Derive(order, baseTime)
	require.NoError(t, err)

	previous := 3 * time.Minute
	for elapsed := time.Duration(0); elapsed < 3*time.Minute; elapsed += 7 * time.Second {
		derived, err := lifecycle.Derive(order, baseTime.Add(elapsed))
		require.NoError(t, err)

		require.True(t, derived.HasCountdown)
		assert.LessOrEqual(t, derived.Remaining, previous)
		assert.GreaterOrEqual(t, derived.Remaining, time.Duration(0))
		previous = derived.Remaining
	}

	derived, err := lifecycle.Derive(order, baseTime.Add(179*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "0:01", derived.Countdown)
	assert.Equal(t, models.DisplayActive, derived.Status)

	for _, elapsed := range []time.Duration{180 * time.Second, 10 * time.Minute} {
		derived, err = lifecycle.Derive(order, baseTime.Add(elapsed))
		require.NoError(t, err)
		assert.False(t, derived.HasCountdown)
		assert.Empty(t, derived.Countdown)
		assert.Equal(t, models.DisplayInactive, derived.Status)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	instants := []time.Time{
		baseTime.Add(42 * time.Second),
		baseTime.Add(500 * time.Microsecond),
		baseTime.Add(999*time.Millisecond + 999*time.Microsecond + 7),
	}

	for _, now := range instants {
		t.Run(now.Format(time.RFC3339Nano), func(t *testing.T) {
			lifecycle, _ := newTestLifecycle()
			order := models.Order{ID: "1", OrderID: "o-1", Variant: models.VariantLong, Status: models.StatusActive}

			first, err := lifecycle.Derive(order, now)
			require.NoError(t, err)
			second, err := lifecycle.Derive(order, now)
			require.NoError(t, err)

			assert.Equal(t, "3:00", first.Countdown)
			assert.Equal(t, 3*time.Minute, first.Remaining)
			assert.Equal(t, first.Status, second.Status)
			assert.Equal(t, first.Countdown, second.Countdown)
			assert.Equal(t, first.Remaining, second.Remaining)
			assert.Equal(t, first.Elapsed, second.Elapsed)
			assert.True(t, first.ActivatedAt.Equal(second.ActivatedAt))
		})
	}
}

func TestDeriveWindowSubMillisecondClock(t *testing.T) {
	lifecycle, _ := newTestLifecycle()
	order := models.Order{ID: "1", Variant: models.VariantMiddle, Status: models.StatusActive}
	start := baseTime.Add(500 * time.Microsecond)

	derived, err := lifecycle.Derive(order, start)
	require.NoError(t, err)
	assert.Equal(t, "3:00", derived.Countdown)

	derived, err = lifecycle.Derive(order, start.Add(178500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "0:01", derived.Countdown)

	derived, err = lifecycle.Derive(order, start.Add(180*time.Second))
	require.NoError(t, err)
	assert.False(t, derived.HasCountdown)
	assert.Equal(t, models.DisplayInactive, derived.Status)
}

func TestDeriveWindowClearsOnNonActive(t *testing.T) {
	lifecycle, store := newTestLifecycle()
	order := models.Order{ID: "1", OrderID: "o-1", Variant: models.VariantMiddle, Status: models.StatusActive}
	namespace := Descriptors[models.VariantMiddle].Namespace

	_, err := lifecycle.Derive(order, baseTime)
	require.NoError(t, err)

	order.Status = models.StatusCompleted
	derived, err := lifecycle.Derive(order, baseTime.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, models.DisplayCompleted, derived.Status)
	assert.False(t, derived.HasCountdown)
	_, ok := store.Get(namespace, "o-1")
	assert.False(t, ok)
	_, ok = store.Get(namespace, "1")
	assert.False(t, ok)

	order.Status = models.StatusActive
	later := baseTime.Add(10 * time.Minute)
	derived, err = lifecycle.Derive(order, later)
	require.NoError(t, err)

	assert.Equal(t, models.DisplayActive, derived.Status)
	assert.Equal(t, "3:00", derived.Countdown)
	assert.True(t, later.Equal(derived.ActivatedAt))
}

func TestDeriveKeepsVariantsApart(t *testing.T) {
	lifecycle, store := newTestLifecycle()

	store.Set(Descriptors[models.VariantLong].Namespace, "1", baseTime.Add(-5*time.Minute).UnixMilli())

	derived, err := lifecycle.Derive(models.Order{ID: "1", Variant: models.VariantMiddle, Status: models.StatusActive}, baseTime)
	require.NoError(t, err)
	assert.Equal(t, "3:00", derived.Countdown)

	derived, err = lifecycle.Derive(models.Order{ID: "1", Variant: models.VariantLong, Status: models.StatusActive}, baseTime)
	require.NoError(t, err)
	assert.Equal(t, models.DisplayInactive, derived.Status)
}

func TestDeriveShort(t *testing.T) {
	lifecycle, _ := newTestLifecycle()
	created := utils.NewTimestamp(baseTime)

	testCases := []struct {
		testName          string
		order             models.Order
		now               time.Time
		expectedStatus    models.DisplayStatus
		expectedCountdown string
		expectedCodeAwake bool
	}{
		{
			testName:          "Should count down pending order from createdAt",
			order:             models.Order{ID: "s", Status: models.StatusPending, CreatedAt: created},
			now:               baseTime.Add(2 * time.Minute),
			expectedStatus:    models.DisplayPending,
			expectedCountdown: "3:00",
		},
		{
			testName:       "Should time out pending order after five minutes",
			order:          models.Order{ID: "s", Status: models.StatusPending, CreatedAt: created},
			now:            baseTime.Add(5 * time.Minute),
			expectedStatus: models.DisplayTimedOut,
		},
		{
			testName:       "Should not count down pending order with SMS",
			order:          models.Order{ID: "s", Status: models.StatusPending, CreatedAt: created, SMSCode: "1234"},
			now:            baseTime.Add(6 * time.Minute),
			expectedStatus: models.DisplayPending,
		},
		{
			testName:       "Should not count down pending order without createdAt",
			order:          models.Order{ID: "s", Status: models.StatusPending},
			now:            baseTime,
			expectedStatus: models.DisplayPending,
		},
		{
			testName:       "Should pass completed status through",
			order:          models.Order{ID: "s", Status: models.StatusCompleted, CreatedAt: created, SMSCode: "1234"},
			now:            baseTime.Add(time.Hour),
			expectedStatus: models.DisplayCompleted,
		},
		{
			testName: "Should prefer code-awake window",
			order: models.Order{
				ID:          "s",
				Status:      models.StatusCompleted,
				CreatedAt:   created,
				CodeAwakeAt: utils.NewTimestamp(baseTime.Add(10 * time.Minute)),
			},
			now:               baseTime.Add(11 * time.Minute),
			expectedStatus:    models.DisplayCompleted,
			expectedCountdown: "4:00",
			expectedCodeAwake: true,
		},
		{
			testName: "Should keep timeout while code-awake window is open",
			order: models.Order{
				ID:          "s",
				Status:      models.StatusPending,
				CreatedAt:   created,
				CodeAwakeAt: utils.NewTimestamp(baseTime.Add(4 * time.Minute)),
			},
			now:               baseTime.Add(6 * time.Minute),
			expectedStatus:    models.DisplayTimedOut,
			expectedCountdown: "3:00",
			expectedCodeAwake: true,
		},
		{
			testName: "Should ignore expired code-awake window",
			order: models.Order{
				ID:          "s",
				Status:      models.StatusPending,
				CreatedAt:   created,
				CodeAwakeAt: utils.NewTimestamp(baseTime.Add(-10 * time.Minute)),
			},
			now:               baseTime.Add(time.Minute),
			expectedStatus:    models.DisplayPending,
			expectedCountdown: "4:00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			tc.order.Variant = models.VariantShort

			derived, err := lifecycle.Derive(tc.order, tc.now)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedStatus, derived.Status)
			assert.Equal(t, tc.expectedCountdown, derived.Countdown)
			assert.Equal(t, tc.expectedCountdown != "", derived.HasCountdown)
			assert.Equal(t, tc.expectedCodeAwake, derived.CodeAwake)
		})
	}
}

func TestDeriveUnknownVariant(t *testing.T) {
	lifecycle, _ := newTestLifecycle()

	_, err := lifecycle.Derive(models.Order{ID: "1", Variant: "huge"}, baseTime)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestView(t *testing.T) {
	lifecycle, _ := newTestLifecycle()
	order := models.Order{ID: "1", Variant: models.VariantMiddle, Status: models.StatusActive}

	view, err := lifecycle.View(order, baseTime, true)
	require.NoError(t, err)

	require.NotNil(t, view.Countdown)
	assert.Equal(t, "3:00", *view.Countdown)
	assert.Equal(t, models.DisplayActive, view.DisplayStatus)
	assert.Equal(t, models.ActionSet{}, view.Actions)
	assert.True(t, view.Busy)

	view, err = lifecycle.View(order, baseTime.Add(3*time.Minute), false)
	require.NoError(t, err)
	assert.Nil(t, view.Countdown)
	assert.Equal(t, models.DisplayInactive, view.DisplayStatus)
}
