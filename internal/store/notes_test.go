// ABOUTME: Tests for note CRUD operations
// ABOUTME: Covers round-trip, owner scoping, substring search, and pagination

package store

import (
	"context"
	"testing"
)

func TestNoteRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddNote(ctx, 100, "hello")
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero note id")
	}

	notes, err := s.ListNotes(ctx, 100, 10, 0)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if notes[0].ID != id || notes[0].Text != "hello" {
		t.Errorf("unexpected note: id %d text %q", notes[0].ID, notes[0].Text)
	}
	if notes[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	updated, err := s.UpdateNote(ctx, 100, id, "bye")
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if !updated {
		t.Fatal("expected UpdateNote to report true")
	}

	notes, err = s.ListNotes(ctx, 100, 10, 0)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if notes[0].Text != "bye" {
		t.Errorf("expected updated text %q, got %q", "bye", notes[0].Text)
	}

	deleted, err := s.DeleteNote(ctx, 100, id)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected DeleteNote to report true")
	}

	notes, err = s.ListNotes(ctx, 100, 10, 0)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes after delete, got %d", len(notes))
	}
}

func TestUpdateNote_Absent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	updated, err := s.UpdateNote(ctx, 100, 42, "nope")
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated {
		t.Error("expected false for a note that does not exist")
	}
}

func TestDeleteNote_Absent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	deleted, err := s.DeleteNote(ctx, 100, 42)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if deleted {
		t.Error("expected false for a note that does not exist")
	}
}

func TestNotes_OwnerScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddNote(ctx, 100, "mine")
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	// Another user cannot see, update, or delete it.
	notes, err := s.ListNotes(ctx, 200, 10, 0)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes for other user, got %d", len(notes))
	}

	updated, err := s.UpdateNote(ctx, 200, id, "stolen")
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated {
		t.Error("other user must not be able to update the note")
	}

	deleted, err := s.DeleteNote(ctx, 200, id)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if deleted {
		t.Error("other user must not be able to delete the note")
	}
}

func TestFindNotes_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddNote(ctx, 100, "Hello"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if _, err := s.AddNote(ctx, 100, "world"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	notes, err := s.FindNotes(ctx, 100, "ell", 10, 0)
	if err != nil {
		t.Fatalf("FindNotes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 match, got %d", len(notes))
	}
	if notes[0].Text != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", notes[0].Text)
	}

	count, err := s.CountNotes(ctx, 100, "ELL")
	if err != nil {
		t.Fatalf("CountNotes failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1 for uppercase filter, got %d", count)
	}
}

func TestFindNotes_LiteralWildcards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"discount 100% off", "price 100€ total", "plan a_b", "plan axb"} {
		if _, err := s.AddNote(ctx, 1, text); err != nil {
			t.Fatalf("AddNote(%q) failed: %v", text, err)
		}
	}

	// % and _ in the search text match literally, not as LIKE wildcards.
	notes, err := s.FindNotes(ctx, 1, "100%", 10, 0)
	if err != nil {
		t.Fatalf("FindNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Text != "discount 100% off" {
		t.Errorf("expected only the literal %%-note, got %+v", notes)
	}

	notes, err = s.FindNotes(ctx, 1, "a_b", 10, 0)
	if err != nil {
		t.Fatalf("FindNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Text != "plan a_b" {
		t.Errorf("expected only the literal _-note, got %+v", notes)
	}

	count, err := s.CountNotes(ctx, 1, "100%")
	if err != nil {
		t.Fatalf("CountNotes failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1 for literal %%-filter, got %d", count)
	}
}

func TestCountNotes_EmptyFilterMatchesAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.AddNote(ctx, 100, text); err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
	}

	count, err := s.CountNotes(ctx, 100, "")
	if err != nil {
		t.Fatalf("CountNotes failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}

func TestListNotes_NewestFirstPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		id, err := s.AddNote(ctx, 100, text)
		if err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
		ids = append(ids, id)
	}

	page, err := s.ListNotes(ctx, 100, 2, 0)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].ID != ids[4] || page[1].ID != ids[3] {
		t.Errorf("expected newest-first order, got ids %d, %d", page[0].ID, page[1].ID)
	}

	page, err = s.ListNotes(ctx, 100, 2, 4)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected final page of 1, got %d", len(page))
	}
	if page[0].ID != ids[0] {
		t.Errorf("expected oldest note on final page, got id %d", page[0].ID)
	}
}
