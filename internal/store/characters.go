// ABOUTME: Character (persona) catalog and per-user selection operations
// ABOUTME: Selections are upserts; reads fall back to the lowest-id persona

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ListCharacters returns the full persona catalog ordered by id ascending.
func (s *SQLiteStore) ListCharacters(ctx context.Context) ([]*Character, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, prompt
		FROM characters
		ORDER BY id
	`)
	if err != nil {
		return nil, &StorageError{Op: "querying characters", Err: err}
	}
	defer rows.Close()

	var characters []*Character
	for rows.Next() {
		var c Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Prompt); err != nil {
			return nil, &StorageError{Op: "scanning character row", Err: err}
		}
		characters = append(characters, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterating character rows", Err: err}
	}

	return characters, nil
}

// GetCharacterByID retrieves a persona by id.
// Returns ErrNotFound if no such persona exists.
func (s *SQLiteStore) GetCharacterByID(ctx context.Context, id int64) (*Character, error) {
	var c Character
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, prompt FROM characters WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Prompt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "querying character", Err: err}
	}

	return &c, nil
}

// GetUserCharacter returns the user's selected persona. A user without a
// stored selection gets the lowest-id persona as a stable fallback.
// Returns ErrNotFound only when the persona catalog itself is empty.
func (s *SQLiteStore) GetUserCharacter(ctx context.Context, userID int64) (*Character, error) {
	var c Character
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.prompt
		FROM user_characters uc
		JOIN characters c ON c.id = uc.character_id
		WHERE uc.user_id = ?
	`, userID).Scan(&c.ID, &c.Name, &c.Prompt)
	if err == nil {
		return &c, nil
	}
	if err != sql.ErrNoRows {
		return nil, &StorageError{Op: "querying user character", Err: err}
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, prompt FROM characters ORDER BY id LIMIT 1`,
	).Scan(&c.ID, &c.Name, &c.Prompt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "querying fallback character", Err: err}
	}

	return &c, nil
}

// SetUserCharacter stores or overwrites the user's persona selection and
// returns the resolved persona. Returns a ValidationError if the id is not
// in the catalog; the prior selection is left unchanged in that case.
func (s *SQLiteStore) SetUserCharacter(ctx context.Context, userID, characterID int64) (*Character, error) {
	c, err := s.GetCharacterByID(ctx, characterID)
	if err == ErrNotFound {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown character id %d", characterID)}
	}
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_characters (user_id, character_id)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET character_id = excluded.character_id
	`, userID, characterID)
	if err != nil {
		return nil, &StorageError{Op: "upserting user character", Err: err}
	}

	s.logger.Debug("set user character", "user_id", userID, "character_id", characterID)
	return c, nil
}
