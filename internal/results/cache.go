// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results holds the session's search result set and normalizes
// the backend's search-history payloads.
package results

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

// Placeholders shown for fields the backend left out.
const (
	UntitledProperty = "Untitled Property"
	UnknownOwner     = "Unknown"
	NoSummary        = "No summary available"
)

// Candidate backend field names per display field, checked in order.
var (
	idPaths      = [][]string{{"id"}, {"pendens_id"}}
	titlePaths   = [][]string{{"title"}, {"property_title"}, {"title_type"}}
	ownerPaths   = [][]string{{"owner"}, {"owner_name"}, {"property_owner"}}
	summaryPaths = [][]string{{"summary"}, {"description"}, {"case_summary"}}
)

// Map converts one backend record into a SearchResult. The raw record is
// kept in Details.
func Map(raw map[string]any) types.SearchResult {
	r := types.SearchResult{
		ID:      portal.FirstString(raw, idPaths...),
		Title:   firstDisplay(raw, titlePaths),
		Owner:   firstDisplay(raw, ownerPaths),
		Summary: firstDisplay(raw, summaryPaths),
		Details: raw,
	}
	if r.Title == "" {
		r.Title = UntitledProperty
	}
	if r.Owner == "" {
		r.Owner = UnknownOwner
	}
	if r.Summary == "" {
		r.Summary = NoSummary
	}
	return r
}

// firstDisplay is portal.FirstString without trimming: a blank value falls
// through to the next path, a present one is returned exactly as sent.
func firstDisplay(raw map[string]any, paths [][]string) string {
	for _, p := range paths {
		v, ok := portal.Field(raw, p...)
		if !ok || portal.String(v) == "" {
			continue
		}
		if s, isString := v.(string); isString {
			return s
		}
		return portal.String(v)
	}
	return ""
}

// Cache is the ResultCache.
type Cache struct {
	kv storage.KV
}

// NewCache returns a Cache over kv.
func NewCache(kv storage.KV) *Cache {
	return &Cache{kv: kv}
}

// Populate maps raw records in backend order and replaces the cache.
func (c *Cache) Populate(ctx context.Context, raw []map[string]any) ([]types.SearchResult, error) {
	out := make([]types.SearchResult, 0, len(raw))
	for _, rec := range raw {
		out = append(out, Map(rec))
	}
	if err := storage.SetJSON(ctx, c.kv, storage.KeySearchResults, out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the cached results, or an empty slice when there are none.
func (c *Cache) List(ctx context.Context) ([]types.SearchResult, error) {
	var out []types.SearchResult
	_, err := storage.GetJSON(ctx, c.kv, storage.KeySearchResults, &out)
	if err != nil && !errors.Is(err, storage.ErrMalformed) {
		return nil, err
	}
	if out == nil || err != nil {
		return []types.SearchResult{}, nil
	}
	return out, nil
}

// Find returns the cached result with id. Records the backend sent
// without an id are never found.
func (c *Cache) Find(ctx context.Context, id string) (types.SearchResult, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.SearchResult{}, false, nil
	}
	list, err := c.List(ctx)
	if err != nil {
		return types.SearchResult{}, false, err
	}
	for _, r := range list {
		if r.ID == id {
			return r, true, nil
		}
	}
	return types.SearchResult{}, false, nil
}

// Clear empties the cache.
func (c *Cache) Clear(ctx context.Context) error {
	return c.kv.Remove(ctx, storage.KeySearchResults)
}
