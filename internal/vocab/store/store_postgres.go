package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cardtrack/internal/vocab/models"
	"cardtrack/pkg/platform/sentinel"
)

// PostgresStore persists one vocabulary axis. The same type serves both
// tables; constructors pin the table name so no caller passes it around.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewGeoPostgres stores the geographic status vocabulary.
func NewGeoPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, table: "status_geo"}
}

// NewOffloadPostgres stores the offload status vocabulary.
func NewOffloadPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, table: "offload_statuses"}
}

func (s *PostgresStore) Create(ctx context.Context, name string) (models.Entry, error) {
	query := `INSERT INTO ` + s.table + ` (name) VALUES ($1) RETURNING id, name`
	var entry models.Entry
	err := s.db.QueryRowContext(ctx, query, name).Scan(&entry.ID, &entry.Name)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.Entry{}, sentinel.ErrConflict
		}
		return models.Entry{}, fmt.Errorf("create %s entry: %w", s.table, err)
	}
	return entry, nil
}

func (s *PostgresStore) Rename(ctx context.Context, id int64, name string) (models.Entry, error) {
	query := `UPDATE ` + s.table + ` SET name = $2 WHERE id = $1 RETURNING id, name`
	var entry models.Entry
	err := s.db.QueryRowContext(ctx, query, id, name).Scan(&entry.ID, &entry.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, sentinel.ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.Entry{}, sentinel.ErrConflict
		}
		return models.Entry{}, fmt.Errorf("rename %s entry: %w", s.table, err)
	}
	return entry, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s entry: %w", s.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s entry: %w", s.table, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", s.table, err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(&entry.ID, &entry.Name); err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", s.table, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s entries: %w", s.table, err)
	}
	return entries, nil
}
