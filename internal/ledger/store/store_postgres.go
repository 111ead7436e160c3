package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cardtrack/internal/ledger/models"
	"cardtrack/pkg/domain"
	"cardtrack/pkg/platform/sentinel"
	txcontext "cardtrack/pkg/platform/tx"
)

// PostgresOperationStore persists the live operation ledger. Timestamps are
// stored in the fixed textual encoding; IDs come from a BIGSERIAL sequence,
// which stays monotonic even across deletes.
type PostgresOperationStore struct {
	db *sql.DB
}

func NewPostgresOperationStore(db *sql.DB) *PostgresOperationStore {
	return &PostgresOperationStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func querier(ctx context.Context, db *sql.DB) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

const operationColumns = `id, actor, card_name, geo_status, offload_status, op_timestamp`

func (s *PostgresOperationStore) Append(ctx context.Context, op *models.Operation) error {
	query := `
		INSERT INTO operations (actor, card_name, geo_status, offload_status, op_timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := querier(ctx, s.db).QueryRowContext(ctx, query,
		op.Actor, op.CardName, op.GeoStatus, nullIfEmpty(op.OffloadStatus), op.Timestamp.String(),
	).Scan(&op.ID)
	if err != nil {
		return fmt.Errorf("append operation: %w", err)
	}
	return nil
}

func (s *PostgresOperationStore) FindByID(ctx context.Context, id int64) (models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE id = $1`
	op, err := scanOperation(querier(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Operation{}, sentinel.ErrNotFound
		}
		return models.Operation{}, fmt.Errorf("find operation: %w", err)
	}
	return op, nil
}

func (s *PostgresOperationStore) DeleteByID(ctx context.Context, id int64) error {
	res, err := querier(ctx, s.db).ExecContext(ctx, `DELETE FROM operations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresOperationStore) LatestForCard(ctx context.Context, cardName string) (models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE card_name = $1 ORDER BY id DESC LIMIT 1`
	op, err := scanOperation(querier(ctx, s.db).QueryRowContext(ctx, query, cardName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Operation{}, sentinel.ErrNotFound
		}
		return models.Operation{}, fmt.Errorf("latest operation: %w", err)
	}
	return op, nil
}

func (s *PostgresOperationStore) ListForCard(ctx context.Context, cardName string) ([]models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE card_name = $1 ORDER BY id ASC`
	return s.findMany(ctx, query, cardName)
}

func (s *PostgresOperationStore) ListRecent(ctx context.Context, limit int) ([]models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations ORDER BY id DESC LIMIT $1`
	return s.findMany(ctx, query, limit)
}

func (s *PostgresOperationStore) CountForCard(ctx context.Context, cardName string) (int, error) {
	var count int
	err := querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operations WHERE card_name = $1`, cardName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return count, nil
}

func (s *PostgresOperationStore) MatchingAfter(ctx context.Context, target string, afterID int64) ([]models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE offload_status = $1 AND id > $2 ORDER BY id ASC`
	return s.findMany(ctx, query, target, afterID)
}

func (s *PostgresOperationStore) MaxMatchingID(ctx context.Context, target string) (int64, error) {
	var max sql.NullInt64
	err := querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT MAX(id) FROM operations WHERE offload_status = $1`, target,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max matching operation id: %w", err)
	}
	return max.Int64, nil
}

func (s *PostgresOperationStore) findMany(ctx context.Context, query string, args ...any) ([]models.Operation, error) {
	rows, err := querier(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []models.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	return ops, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (models.Operation, error) {
	var (
		op      models.Operation
		offload sql.NullString
		ts      string
	)
	if err := row.Scan(&op.ID, &op.Actor, &op.CardName, &op.GeoStatus, &offload, &ts); err != nil {
		return models.Operation{}, err
	}
	op.OffloadStatus = offload.String
	op.Timestamp = domain.Timestamp(ts)
	return op, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// PostgresCanceledStore persists the canceled ledger. Rows keep the ID the
// operation had in the live ledger so history stays traceable.
type PostgresCanceledStore struct {
	db *sql.DB
}

func NewPostgresCanceledStore(db *sql.DB) *PostgresCanceledStore {
	return &PostgresCanceledStore{db: db}
}

func (s *PostgresCanceledStore) Append(ctx context.Context, op models.CanceledOperation) error {
	query := `
		INSERT INTO canceled_operations (operation_id, actor, card_name, geo_status, offload_status, op_timestamp, canceled_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := querier(ctx, s.db).ExecContext(ctx, query,
		op.ID, op.Actor, op.CardName, op.GeoStatus, nullIfEmpty(op.OffloadStatus),
		op.Timestamp.String(), op.CanceledBy,
	)
	if err != nil {
		return fmt.Errorf("append canceled operation: %w", err)
	}
	return nil
}

func (s *PostgresCanceledStore) ListRecent(ctx context.Context, limit int) ([]models.CanceledOperation, error) {
	query := `
		SELECT operation_id, actor, card_name, geo_status, offload_status, op_timestamp, canceled_by
		FROM canceled_operations ORDER BY operation_id DESC LIMIT $1
	`
	rows, err := querier(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list canceled operations: %w", err)
	}
	defer rows.Close()

	var ops []models.CanceledOperation
	for rows.Next() {
		var (
			op      models.CanceledOperation
			offload sql.NullString
			ts      string
		)
		if err := rows.Scan(&op.ID, &op.Actor, &op.CardName, &op.GeoStatus, &offload, &ts, &op.CanceledBy); err != nil {
			return nil, fmt.Errorf("scan canceled operation: %w", err)
		}
		op.OffloadStatus = offload.String
		op.Timestamp = domain.Timestamp(ts)
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list canceled operations: %w", err)
	}
	return ops, nil
}
