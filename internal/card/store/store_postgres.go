package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cardtrack/internal/card/models"
	"cardtrack/pkg/platform/sentinel"
	txcontext "cardtrack/pkg/platform/tx"
)

// PostgresStore persists cards in PostgreSQL. It is pure I/O; the engine
// owns all invariants linking card fields to the ledger.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier returns the transaction from context when the engine runs this
// store inside RunInTx, and the pool otherwise.
func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const cardColumns = `id, name, birth, quarantine, geo_status, offload_status, capacity, brand, card_type, usage, last_operation, created_at`

func (s *PostgresStore) Create(ctx context.Context, card models.Card) (models.Card, error) {
	query := `
		INSERT INTO cards (name, birth, quarantine, geo_status, offload_status, capacity, brand, card_type, usage, last_operation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + cardColumns
	row := s.querier(ctx).QueryRowContext(ctx, query,
		card.Name, card.Birth, card.Quarantine, card.GeoStatus, nullIfEmpty(card.OffloadStatus),
		card.Capacity, nullIfEmpty(card.Brand), nullIfEmpty(card.Type), card.Usage, card.LastOperation, card.CreatedAt,
	)
	created, err := scanCard(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.Card{}, sentinel.ErrConflict
		}
		return models.Card{}, fmt.Errorf("create card: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE name = $1`
	return s.findOne(ctx, query, name)
}

// FindByNameForUpdate takes a row lock so two concurrent moves against the
// same card serialize. Only meaningful inside a transaction.
func (s *PostgresStore) FindByNameForUpdate(ctx context.Context, name string) (models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE name = $1 FOR UPDATE`
	return s.findOne(ctx, query, name)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (models.Card, error) {
	card, err := scanCard(s.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Card{}, sentinel.ErrNotFound
		}
		return models.Card{}, fmt.Errorf("find card: %w", err)
	}
	return card, nil
}

func (s *PostgresStore) Update(ctx context.Context, card models.Card) error {
	query := `
		UPDATE cards
		SET birth = $2, quarantine = $3, geo_status = $4, offload_status = $5,
		    capacity = $6, brand = $7, card_type = $8, usage = $9, last_operation = $10
		WHERE name = $1
	`
	res, err := s.querier(ctx).ExecContext(ctx, query,
		card.Name, card.Birth, card.Quarantine, card.GeoStatus, nullIfEmpty(card.OffloadStatus),
		card.Capacity, nullIfEmpty(card.Brand), nullIfEmpty(card.Type), card.Usage, card.LastOperation,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	res, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM cards WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY name`
	return s.findMany(ctx, query)
}

func (s *PostgresStore) ListByGeoStatus(ctx context.Context, status string) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE geo_status = $1 ORDER BY name`
	return s.findMany(ctx, query, status)
}

func (s *PostgresStore) ListByOffloadStatus(ctx context.Context, status string) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE offload_status = $1 ORDER BY name`
	return s.findMany(ctx, query, status)
}

func (s *PostgresStore) SearchByPrefix(ctx context.Context, prefix string) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE name LIKE $1 || '%' ORDER BY name`
	return s.findMany(ctx, query, prefix)
}

func (s *PostgresStore) findMany(ctx context.Context, query string, args ...any) ([]models.Card, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// nullIfEmpty maps "no value" to SQL NULL so the projection's reset
// semantics survive the round trip through the database.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var (
		card          models.Card
		birth         sql.NullTime
		offload       sql.NullString
		brand         sql.NullString
		cardType      sql.NullString
		lastOperation sql.NullTime
	)
	err := row.Scan(
		&card.ID, &card.Name, &birth, &card.Quarantine, &card.GeoStatus,
		&offload, &card.Capacity, &brand, &cardType, &card.Usage,
		&lastOperation, &card.CreatedAt,
	)
	if err != nil {
		return models.Card{}, err
	}
	if birth.Valid {
		card.Birth = &birth.Time
	}
	card.OffloadStatus = offload.String
	card.Brand = brand.String
	card.Type = cardType.String
	if lastOperation.Valid {
		card.LastOperation = &lastOperation.Time
	}
	return card, nil
}
