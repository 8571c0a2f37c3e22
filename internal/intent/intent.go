// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent keeps the search-form inputs across the payment redirect.
package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

// ValidationError names a required search field that was left empty.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the product-level required fields: state, then lga.
func Validate(in types.SearchIntent) error {
	if strings.TrimSpace(in.State) == "" {
		return &ValidationError{Field: "state", Message: "state is required"}
	}
	if strings.TrimSpace(in.LGA) == "" {
		return &ValidationError{Field: "lga", Message: "LGA is required"}
	}
	return nil
}

// Store is the SearchIntentStore.
type Store struct {
	kv storage.KV
}

// NewStore returns a Store over kv.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Save validates in and writes it to pendingSearchParams. Surrounding
// whitespace is trimmed.
func (s *Store) Save(ctx context.Context, in types.SearchIntent) error {
	if err := Validate(in); err != nil {
		return err
	}
	in = types.SearchIntent{
		PropertyTitle: strings.TrimSpace(in.PropertyTitle),
		LGA:           strings.TrimSpace(in.LGA),
		State:         strings.TrimSpace(in.State),
	}
	return storage.SetJSON(ctx, s.kv, storage.KeyPendingSearch, in)
}

// Load returns the pending intent, or nil when none is stored or the stored
// value is malformed or incomplete. Callers treat nil as "start a new search".
func (s *Store) Load(ctx context.Context) (*types.SearchIntent, error) {
	var in types.SearchIntent
	ok, err := storage.GetJSON(ctx, s.kv, storage.KeyPendingSearch, &in)
	if errors.Is(err, storage.ErrMalformed) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !ok || Validate(in) != nil {
		return nil, nil
	}
	return &in, nil
}

// Clear removes the pending intent once it has been consumed.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Remove(ctx, storage.KeyPendingSearch)
}
