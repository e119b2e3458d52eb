// ABOUTME: Resolution policy for which model and persona an ask request should use
// ABOUTME: Thin wrapper over the store; supports explicit overrides and random personas

package selector

import (
	"context"
	"errors"
	"math/rand"

	"github.com/ArsKF/tg-bot-simple/internal/store"
)

// ErrEmptyCatalog is returned when a random persona is requested but the
// catalog has no entries.
var ErrEmptyCatalog = errors.New("character catalog is empty")

// Selector resolves the model key and persona prompt for an outgoing
// completion request.
type Selector struct {
	store store.Store
}

// New creates a Selector over the given store.
func New(s store.Store) *Selector {
	return &Selector{store: s}
}

// ResolveModel returns the model to send a request with: the explicitly
// requested model when explicitID is non-nil, otherwise the globally active
// one. An unknown explicit id is a ValidationError from the store.
func (s *Selector) ResolveModel(ctx context.Context, explicitID *int64) (*store.Model, error) {
	if explicitID != nil {
		m, err := s.store.GetModelByID(ctx, *explicitID)
		if err == store.ErrNotFound {
			return nil, &store.ValidationError{Reason: "unknown model id"}
		}
		return m, err
	}
	return s.store.GetActiveModel(ctx)
}

// ResolvePersona returns the persona whose prompt frames the request:
// an explicit override when explicitID is non-nil, a uniformly random
// persona when random is set, otherwise the user's stored selection (or
// its fallback).
func (s *Selector) ResolvePersona(ctx context.Context, userID int64, explicitID *int64, random bool) (*store.Character, error) {
	if explicitID != nil {
		c, err := s.store.GetCharacterByID(ctx, *explicitID)
		if err == store.ErrNotFound {
			return nil, &store.ValidationError{Reason: "unknown character id"}
		}
		return c, err
	}

	if random {
		characters, err := s.store.ListCharacters(ctx)
		if err != nil {
			return nil, err
		}
		if len(characters) == 0 {
			return nil, ErrEmptyCatalog
		}
		return characters[rand.Intn(len(characters))], nil
	}

	return s.store.GetUserCharacter(ctx, userID)
}
