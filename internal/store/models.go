// ABOUTME: AI model registry operations for the SQLite store
// ABOUTME: Maintains the single-active-model invariant via atomic clear-and-set transactions

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ListModels returns the full model registry ordered by id ascending.
func (s *SQLiteStore) ListModels(ctx context.Context) ([]*Model, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, label, active
		FROM models
		ORDER BY id
	`)
	if err != nil {
		return nil, &StorageError{Op: "querying models", Err: err}
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		var m Model
		if err := rows.Scan(&m.ID, &m.Key, &m.Label, &m.Active); err != nil {
			return nil, &StorageError{Op: "scanning model row", Err: err}
		}
		models = append(models, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterating model rows", Err: err}
	}

	return models, nil
}

// GetModelByID retrieves a model by id.
// Returns ErrNotFound if no such model exists.
func (s *SQLiteStore) GetModelByID(ctx context.Context, id int64) (*Model, error) {
	var m Model
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, label, active FROM models WHERE id = ?`, id,
	).Scan(&m.ID, &m.Key, &m.Label, &m.Active)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "querying model", Err: err}
	}

	return &m, nil
}

// GetActiveModel returns the single active model.
//
// This is a side-effecting read: if no row is marked active (fresh database,
// or the flag was cleared out of band), the lowest-id model is activated and
// returned, so the exactly-one-active invariant holds after every call.
// Returns ErrNotFound only when the registry is empty.
func (s *SQLiteStore) GetActiveModel(ctx context.Context) (*Model, error) {
	var m Model
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, label FROM models WHERE active = 1`,
	).Scan(&m.ID, &m.Key, &m.Label)
	if err == nil {
		m.Active = true
		return &m, nil
	}
	if err != sql.ErrNoRows {
		return nil, &StorageError{Op: "querying active model", Err: err}
	}

	// No active row: deterministically activate the lowest-id model.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT id, key, label FROM models ORDER BY id LIMIT 1`,
	).Scan(&m.ID, &m.Key, &m.Label)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "querying default model", Err: err}
	}

	if err := switchActive(ctx, tx, m.ID); err != nil {
		return nil, &StorageError{Op: "activating default model", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "committing default model", Err: err}
	}

	s.logger.Info("activated default model", "id", m.ID, "key", m.Key)
	m.Active = true
	return &m, nil
}

// switchActive moves the active flag to id inside tx. The old flag is
// cleared before the new one is set: the partial unique index checks each
// updated row immediately, so a single CASE update would trip it whenever
// the new id sorts before the currently active one.
func switchActive(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE models SET active = 0 WHERE active = 1`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE models SET active = 1 WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}

// SetActiveModel switches the active flag to the given model.
//
// The previous flag is cleared and the new one set inside a single
// transaction, so a concurrent reader never observes zero or two active
// rows. Returns a ValidationError if the id is unknown; the previously
// active model is left unchanged in that case.
func (s *SQLiteStore) SetActiveModel(ctx context.Context, id int64) (*Model, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback()

	var m Model
	err = tx.QueryRowContext(ctx,
		`SELECT id, key, label FROM models WHERE id = ?`, id,
	).Scan(&m.ID, &m.Key, &m.Label)
	if err == sql.ErrNoRows {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown model id %d", id)}
	}
	if err != nil {
		return nil, &StorageError{Op: "querying model", Err: err}
	}

	if err := switchActive(ctx, tx, id); err != nil {
		return nil, &StorageError{Op: "switching active model", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "committing active model", Err: err}
	}

	s.logger.Info("switched active model", "id", m.ID, "key", m.Key)
	m.Active = true
	return &m, nil
}
