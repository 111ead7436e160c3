package service

import (
	"context"
	"errors"
	"time"

	cardmodels "cardtrack/internal/card/models"
	"cardtrack/internal/ledger/metrics"
	"cardtrack/internal/ledger/models"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
	"cardtrack/pkg/platform/sentinel"
)

// OperationStore is the live ledger. Append assigns a monotonic ID.
type OperationStore interface {
	Append(ctx context.Context, op *models.Operation) error
	FindByID(ctx context.Context, id int64) (models.Operation, error)
	DeleteByID(ctx context.Context, id int64) error
	LatestForCard(ctx context.Context, cardName string) (models.Operation, error)
	ListForCard(ctx context.Context, cardName string) ([]models.Operation, error)
	ListRecent(ctx context.Context, limit int) ([]models.Operation, error)
}

// CanceledStore is the append-only canceled ledger.
type CanceledStore interface {
	Append(ctx context.Context, op models.CanceledOperation) error
	ListRecent(ctx context.Context, limit int) ([]models.CanceledOperation, error)
}

// CardStore gives the engine its view of the registry. FindByNameForUpdate
// must lock the card for the duration of the surrounding transaction.
type CardStore interface {
	FindByName(ctx context.Context, name string) (cardmodels.Card, error)
	FindByNameForUpdate(ctx context.Context, name string) (cardmodels.Card, error)
	Update(ctx context.Context, card cardmodels.Card) error
}

// TxRunner provides the transactional boundary for apply/cancel/override.
// Implementations wrap a database transaction or, in memory, a coarse lock.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Engine is the transition engine: the only component allowed to mutate a
// card's status fields, usage counter and last-operation time. Every
// mutation appends to (or moves rows between) the ledgers in the same
// transaction, so the registry is always a projection of surviving history.
type Engine struct {
	ops         OperationStore
	canceled    CanceledStore
	cards       CardStore
	tx          TxRunner
	metrics     *metrics.Metrics
	recentLimit int
}

// NewEngine constructs the transition engine. recentLimit bounds the
// "most recent operations" read surface; zero falls back to 50.
func NewEngine(ops OperationStore, canceled CanceledStore, cards CardStore, tx TxRunner, m *metrics.Metrics, recentLimit int) *Engine {
	if recentLimit <= 0 {
		recentLimit = 50
	}
	return &Engine{
		ops:         ops,
		canceled:    canceled,
		cards:       cards,
		tx:          tx,
		metrics:     m,
		recentLimit: recentLimit,
	}
}

// ApplyMove validates and commits one transition: ledger append plus
// registry projection update, all or nothing. An empty status on either
// axis carries the card's current value forward.
func (e *Engine) ApplyMove(ctx context.Context, actor domain.Actor, req models.MoveRequest, now time.Time) (models.Operation, error) {
	if req.CardName == "" {
		return models.Operation{}, dErrors.New(dErrors.CodeValidation, "card name is required")
	}
	if req.GeoStatus == "" && req.OffloadStatus == "" {
		return models.Operation{}, dErrors.New(dErrors.CodeValidation, "at least one target status is required")
	}

	var created models.Operation
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		card, err := e.cards.FindByNameForUpdate(ctx, req.CardName)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "card not found: "+req.CardName)
			}
			return dErrors.Wrap(dErrors.CodeStorage, "load card", err)
		}
		if card.Quarantine {
			e.metrics.RecordQuarantineRejection()
			return dErrors.New(dErrors.CodeQuarantined, "card is quarantined: "+card.Name)
		}

		geo := req.GeoStatus
		if geo == "" {
			geo = card.GeoStatus
		}
		offload := req.OffloadStatus
		if offload == "" {
			offload = card.OffloadStatus
		}

		op := models.Operation{
			Actor:         actor.Name,
			CardName:      card.Name,
			GeoStatus:     geo,
			OffloadStatus: offload,
			Timestamp:     domain.NewTimestamp(now),
		}
		if err := e.ops.Append(ctx, &op); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "append operation", err)
		}

		card.GeoStatus = geo
		card.OffloadStatus = offload
		last := now.Truncate(time.Second)
		card.LastOperation = &last
		card.Usage++
		if err := e.cards.Update(ctx, card); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "update card projection", err)
		}

		created = op
		return nil
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeStorage) {
			e.metrics.RecordRollback()
		}
		return models.Operation{}, err
	}
	e.metrics.RecordMove()
	return created, nil
}

// Cancel undoes one operation by ID. The card's state is not rolled back to
// a fixed default but re-derived from whatever history survives: the
// remaining operation with the highest ID wins, and a card with no history
// left resets to the UNKNOWN sentinel. Canceling an operation that is not
// the most recent one therefore still leaves a consistent projection.
func (e *Engine) Cancel(ctx context.Context, actor domain.Actor, operationID int64) (cardmodels.Card, error) {
	var updated cardmodels.Card
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		op, err := e.ops.FindByID(ctx, operationID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "operation not found")
			}
			return dErrors.Wrap(dErrors.CodeStorage, "load operation", err)
		}

		// The card must still exist; the ledger entry stays put when it
		// does not, so history never loses a row to a failed cancel.
		card, err := e.cards.FindByNameForUpdate(ctx, op.CardName)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "card not found: "+op.CardName)
			}
			return dErrors.Wrap(dErrors.CodeStorage, "load card", err)
		}

		// Floor at zero: usage counts live operations and must never go
		// negative regardless of cancellation order.
		if card.Usage > 0 {
			card.Usage--
		}

		if err := e.canceled.Append(ctx, models.CanceledOperation{
			Operation:  op,
			CanceledBy: actor.Name,
		}); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "archive canceled operation", err)
		}
		if err := e.ops.DeleteByID(ctx, op.ID); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "remove operation", err)
		}

		latest, err := e.ops.LatestForCard(ctx, card.Name)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			card.GeoStatus = domain.StatusUnknown
			card.OffloadStatus = ""
			card.LastOperation = nil
		case err != nil:
			return dErrors.Wrap(dErrors.CodeStorage, "replay history", err)
		default:
			card.GeoStatus = latest.GeoStatus
			card.OffloadStatus = latest.OffloadStatus
			ts, tsErr := latest.Timestamp.Time()
			if tsErr != nil {
				return dErrors.Wrap(dErrors.CodeStorage, "parse surviving timestamp", tsErr)
			}
			card.LastOperation = &ts
		}

		if err := e.cards.Update(ctx, card); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "update card projection", err)
		}
		updated = card
		return nil
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeStorage) {
			e.metrics.RecordRollback()
		}
		return cardmodels.Card{}, err
	}
	e.metrics.RecordCancel()
	return updated, nil
}

// Override is the administrative direct-edit path. It replaces every mutable
// card field, ignores the quarantine gate (this is how quarantine itself is
// set and cleared), and still appends a ledger entry so the usage invariant
// and the projection's link to history both hold.
func (e *Engine) Override(ctx context.Context, actor domain.Actor, req models.OverrideRequest, now time.Time) (cardmodels.Card, error) {
	if req.CardName == "" {
		return cardmodels.Card{}, dErrors.New(dErrors.CodeValidation, "card name is required")
	}
	if req.GeoStatus == "" {
		return cardmodels.Card{}, dErrors.New(dErrors.CodeValidation, "geo status is required")
	}
	if req.Capacity < 0 {
		return cardmodels.Card{}, dErrors.New(dErrors.CodeValidation, "capacity must not be negative")
	}

	var updated cardmodels.Card
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		card, err := e.cards.FindByNameForUpdate(ctx, req.CardName)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "card not found: "+req.CardName)
			}
			return dErrors.Wrap(dErrors.CodeStorage, "load card", err)
		}

		op := models.Operation{
			Actor:         actor.Name,
			CardName:      card.Name,
			GeoStatus:     req.GeoStatus,
			OffloadStatus: req.OffloadStatus,
			Timestamp:     domain.NewTimestamp(now),
		}
		if err := e.ops.Append(ctx, &op); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "append operation", err)
		}

		card.GeoStatus = req.GeoStatus
		card.OffloadStatus = req.OffloadStatus
		card.Quarantine = req.Quarantine
		card.Capacity = req.Capacity
		card.Brand = req.Brand
		card.Type = req.Type
		last := now.Truncate(time.Second)
		card.LastOperation = &last
		card.Usage++
		if err := e.cards.Update(ctx, card); err != nil {
			return dErrors.Wrap(dErrors.CodeStorage, "update card projection", err)
		}
		updated = card
		return nil
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeStorage) {
			e.metrics.RecordRollback()
		}
		return cardmodels.Card{}, err
	}
	e.metrics.RecordOverride()
	return updated, nil
}

// History returns all operations for a card, oldest first.
func (e *Engine) History(ctx context.Context, cardName string) ([]models.Operation, error) {
	ops, err := e.ops.ListForCard(ctx, cardName)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list history", err)
	}
	return ops, nil
}

// Recent returns the newest operations, bounded by the configured limit.
func (e *Engine) Recent(ctx context.Context, limit int) ([]models.Operation, error) {
	if limit <= 0 || limit > e.recentLimit {
		limit = e.recentLimit
	}
	ops, err := e.ops.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list recent operations", err)
	}
	return ops, nil
}

// RecentCanceled returns the newest canceled entries, bounded like Recent.
func (e *Engine) RecentCanceled(ctx context.Context, limit int) ([]models.CanceledOperation, error) {
	if limit <= 0 || limit > e.recentLimit {
		limit = e.recentLimit
	}
	ops, err := e.canceled.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list canceled operations", err)
	}
	return ops, nil
}
