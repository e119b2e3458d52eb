// ABOUTME: Note CRUD operations for the SQLite store
// ABOUTME: Owner-scoped add/list/find/count/update/delete with pagination

package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AddNote appends a note for the user and returns its assigned id.
func (s *SQLiteStore) AddNote(ctx context.Context, userID int64, text string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (user_id, text, created_at) VALUES (?, ?, ?)`,
		userID, text, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, &StorageError{Op: "inserting note", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "reading note id", Err: err}
	}

	s.logger.Debug("added note", "id", id, "user_id", userID)
	return id, nil
}

// ListNotes returns the user's notes newest-first, paginated by limit/offset.
func (s *SQLiteStore) ListNotes(ctx context.Context, userID int64, limit, offset int) ([]*Note, error) {
	return s.queryNotes(ctx, `
		SELECT id, user_id, text, created_at
		FROM notes
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
}

// FindNotes returns the user's notes whose text contains substring,
// case-insensitively, with the same ordering and pagination as ListNotes.
func (s *SQLiteStore) FindNotes(ctx context.Context, userID int64, substring string, limit, offset int) ([]*Note, error) {
	return s.queryNotes(ctx, `
		SELECT id, user_id, text, created_at
		FROM notes
		WHERE user_id = ?
		AND text COLLATE NOCASE LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, escapeLike(substring), limit, offset)
}

// CountNotes counts the user's notes matching the FindNotes filter.
// An empty substring matches all notes.
func (s *SQLiteStore) CountNotes(ctx context.Context, userID int64, substring string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM notes
		WHERE user_id = ?
		AND text COLLATE NOCASE LIKE '%' || ? || '%' ESCAPE '\'
	`, userID, escapeLike(substring)).Scan(&count)
	if err != nil {
		return 0, &StorageError{Op: "counting notes", Err: err}
	}
	return count, nil
}

// UpdateNote replaces the text of the user's note. It returns false when no
// note with that id belongs to the user; absence is a normal outcome, not
// an error.
func (s *SQLiteStore) UpdateNote(ctx context.Context, userID, noteID int64, text string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET text = ? WHERE user_id = ? AND id = ?`,
		text, userID, noteID,
	)
	if err != nil {
		return false, &StorageError{Op: "updating note", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "updating note", Err: err}
	}

	if affected > 0 {
		s.logger.Debug("updated note", "id", noteID, "user_id", userID)
	}
	return affected > 0, nil
}

// DeleteNote removes the user's note, with the same existence-sensitive
// semantics as UpdateNote.
func (s *SQLiteStore) DeleteNote(ctx context.Context, userID, noteID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = ? AND id = ?`,
		userID, noteID,
	)
	if err != nil {
		return false, &StorageError{Op: "deleting note", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "deleting note", Err: err}
	}

	if affected > 0 {
		s.logger.Debug("deleted note", "id", noteID, "user_id", userID)
	}
	return affected > 0, nil
}

// escapeLike neutralizes LIKE metacharacters so user search text matches
// literally ("100%" must not match "100€").
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (s *SQLiteStore) queryNotes(ctx context.Context, query string, args ...any) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "querying notes", Err: err}
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var note Note
		var createdAtStr string

		if err := rows.Scan(&note.ID, &note.UserID, &note.Text, &createdAtStr); err != nil {
			return nil, &StorageError{Op: "scanning note row", Err: err}
		}

		note.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing note created_at: %w", err)
		}

		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterating note rows", Err: err}
	}

	return notes, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
