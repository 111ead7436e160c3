package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cardtrack/internal/ledger/models"
	ledgerStore "cardtrack/internal/ledger/store"
	"cardtrack/internal/platform/logger"
	"cardtrack/internal/watch/mocks"
	"cardtrack/pkg/domain"
)

const testTarget = "TO BACKUP"

func appendOp(t *testing.T, ops *ledgerStore.MemoryOperationStore, card, offload string) models.Operation {
	t.Helper()
	op := models.Operation{
		Actor:         "operator",
		CardName:      card,
		GeoStatus:     "ON SITE",
		OffloadStatus: offload,
		Timestamp:     domain.NewTimestamp(time.Now()),
	}
	require.NoError(t, ops.Append(context.Background(), &op))
	return op
}

func newTestWatcher(ops *ledgerStore.MemoryOperationStore, notifier Notifier) *Watcher {
	return New(ops, notifier, testTarget, time.Second, logger.New(), nil)
}

func TestInitSkipsExistingEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := ledgerStore.NewMemoryOperationStore()
	existing := appendOp(t, ops, "alpha", testTarget)
	appendOp(t, ops, "beta", "In Progress")

	notifier := mocks.NewMockNotifier(ctrl)
	w := newTestWatcher(ops, notifier)
	require.NoError(t, w.Init(context.Background()))
	assert.Equal(t, existing.ID, w.LastNotifiedID())

	// No expectations set on the mock: existing entries must not fire.
	w.Poll(context.Background())
}

func TestPollNotifiesNewMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := ledgerStore.NewMemoryOperationStore()
	notifier := mocks.NewMockNotifier(ctrl)
	w := newTestWatcher(ops, notifier)
	require.NoError(t, w.Init(context.Background()))

	first := appendOp(t, ops, "alpha", testTarget)
	appendOp(t, ops, "beta", "In Progress")
	second := appendOp(t, ops, "gamma", testTarget)

	gomock.InOrder(
		notifier.EXPECT().Notify(gomock.Any(), first).Return(nil),
		notifier.EXPECT().Notify(gomock.Any(), second).Return(nil),
	)

	w.Poll(context.Background())
	assert.Equal(t, second.ID, w.LastNotifiedID())
}

func TestPollStopsBatchOnDeliveryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := ledgerStore.NewMemoryOperationStore()
	notifier := mocks.NewMockNotifier(ctrl)
	w := newTestWatcher(ops, notifier)
	require.NoError(t, w.Init(context.Background()))

	first := appendOp(t, ops, "alpha", testTarget)
	second := appendOp(t, ops, "beta", testTarget)

	notifier.EXPECT().Notify(gomock.Any(), first).Return(nil)
	notifier.EXPECT().Notify(gomock.Any(), second).Return(errors.New("webhook down"))

	w.Poll(context.Background())
	assert.Equal(t, first.ID, w.LastNotifiedID())

	// Next cycle retries only the failed entry.
	notifier.EXPECT().Notify(gomock.Any(), second).Return(nil)
	w.Poll(context.Background())
	assert.Equal(t, second.ID, w.LastNotifiedID())
}

func TestPollDoesNotAdvanceWhenFirstDeliveryFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := ledgerStore.NewMemoryOperationStore()
	notifier := mocks.NewMockNotifier(ctrl)
	w := newTestWatcher(ops, notifier)
	require.NoError(t, w.Init(context.Background()))

	first := appendOp(t, ops, "alpha", testTarget)
	appendOp(t, ops, "beta", testTarget)

	notifier.EXPECT().Notify(gomock.Any(), first).Return(errors.New("webhook down"))

	w.Poll(context.Background())
	assert.Zero(t, w.LastNotifiedID())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := ledgerStore.NewMemoryOperationStore()
	w := newTestWatcher(ops, mocks.NewMockNotifier(ctrl))
	require.NoError(t, w.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}
