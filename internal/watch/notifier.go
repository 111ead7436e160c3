package watch

import (
	"context"

	"cardtrack/internal/ledger/models"
)

// Notifier delivers one alert for a matching ledger entry. Delivery is
// at-least-once: the watcher only advances past an operation after Notify
// returns nil, so implementations must tolerate duplicates.
type Notifier interface {
	Notify(ctx context.Context, op models.Operation) error
}
