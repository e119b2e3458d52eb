// ABOUTME: Tests for model/persona resolution policy
// ABOUTME: Uses a real SQLite store; covers overrides, random draws, and empty catalogs

package selector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArsKF/tg-bot-simple/internal/store"
)

func newSelector(t *testing.T, seed bool) (*Selector, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	if seed {
		ctx := context.Background()
		require.NoError(t, s.SeedModels(ctx, []*store.Model{
			{ID: 1, Key: "vendor/alpha", Label: "Alpha"},
			{ID: 2, Key: "vendor/beta", Label: "Beta"},
		}))
		require.NoError(t, s.SeedCharacters(ctx, []*store.Character{
			{ID: 1, Name: "Assistant", Prompt: "You answer briefly."},
			{ID: 2, Name: "Pirate", Prompt: "You answer like a sea captain."},
		}))
	}

	return New(s), s
}

func TestResolveModel_Active(t *testing.T) {
	sel, st := newSelector(t, true)
	ctx := context.Background()

	_, err := st.SetActiveModel(ctx, 2)
	require.NoError(t, err)

	m, err := sel.ResolveModel(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.ID)
	assert.Equal(t, "vendor/beta", m.Key)
}

func TestResolveModel_Explicit(t *testing.T) {
	sel, _ := newSelector(t, true)
	ctx := context.Background()

	id := int64(1)
	m, err := sel.ResolveModel(ctx, &id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
}

func TestResolveModel_ExplicitUnknown(t *testing.T) {
	sel, _ := newSelector(t, true)
	ctx := context.Background()

	id := int64(999)
	_, err := sel.ResolveModel(ctx, &id)
	var verr *store.ValidationError
	assert.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
}

func TestResolvePersona_UserSelection(t *testing.T) {
	sel, st := newSelector(t, true)
	ctx := context.Background()

	_, err := st.SetUserCharacter(ctx, 100, 2)
	require.NoError(t, err)

	c, err := sel.ResolvePersona(ctx, 100, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)
}

func TestResolvePersona_Explicit(t *testing.T) {
	sel, _ := newSelector(t, true)
	ctx := context.Background()

	id := int64(1)
	c, err := sel.ResolvePersona(ctx, 100, &id, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
}

func TestResolvePersona_Random(t *testing.T) {
	sel, _ := newSelector(t, true)
	ctx := context.Background()

	// Every draw lands in the catalog.
	for i := 0; i < 20; i++ {
		c, err := sel.ResolvePersona(ctx, 100, nil, true)
		require.NoError(t, err)
		assert.Contains(t, []int64{1, 2}, c.ID)
	}
}

func TestResolvePersona_RandomEmptyCatalog(t *testing.T) {
	sel, _ := newSelector(t, false)
	ctx := context.Background()

	_, err := sel.ResolvePersona(ctx, 100, nil, true)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}
