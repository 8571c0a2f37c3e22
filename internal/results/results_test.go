// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

func testCache(t *testing.T) (*Cache, *storage.Store) {
	t.Helper()
	kv, err := storage.Open(types.StorageConfig{Path: filepath.Join(t.TempDir(), "storage.db")})
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewCache(kv), kv
}

func TestMap_PresentFieldsAreLossless(t *testing.T) {
	raw := map[string]any{
		"id":      json.Number("42"),
		"title":   "Plot 7, Independence Layout",
		"owner":   "Emeka Eze",
		"summary": "Suit E/123/2024 pending at Enugu High Court",
		"court":   "Enugu High Court",
	}
	got := Map(raw)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "Plot 7, Independence Layout", got.Title)
	assert.Equal(t, "Emeka Eze", got.Owner)
	assert.Equal(t, "Suit E/123/2024 pending at Enugu High Court", got.Summary)
	assert.Equal(t, raw, got.Details)
}

func TestMap_DisplayFieldsKeepWhitespace(t *testing.T) {
	got := Map(map[string]any{"id": " 42 ", "title": " Plot 7 ", "owner": "   ", "owner_name": "Ngozi\n", "summary": "  "})
	assert.Equal(t, "42", got.ID, "ids are trimmed")
	assert.Equal(t, " Plot 7 ", got.Title)
	assert.Equal(t, "Ngozi\n", got.Owner, "blank owner falls through to owner_name")
	assert.Equal(t, NoSummary, got.Summary)
}

func TestMap_Placeholders(t *testing.T) {
	got := Map(map[string]any{"id": "7"})
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, UntitledProperty, got.Title)
	assert.Equal(t, UnknownOwner, got.Owner)
	assert.Equal(t, NoSummary, got.Summary)

	got = Map(map[string]any{"pendens_id": float64(8), "property_title": "C of O", "owner_name": "Ngozi", "description": "d", "title": ""})
	assert.Equal(t, "8", got.ID)
	assert.Equal(t, "C of O", got.Title, "empty title falls through to property_title")
	assert.Equal(t, "Ngozi", got.Owner)
	assert.Equal(t, "d", got.Summary)
}

func TestCache_PopulatePreservesOrderAndOverwrites(t *testing.T) {
	ctx := context.Background()
	c, _ := testCache(t)

	_, err := c.Populate(ctx, []map[string]any{{"id": "3"}, {"id": "1"}, {"id": "2"}})
	require.NoError(t, err)
	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"3", "1", "2"}, ids(list))

	_, err = c.Populate(ctx, []map[string]any{{"id": "9"}})
	require.NoError(t, err)
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, ids(list))
}

func TestCache_EmptyStates(t *testing.T) {
	ctx := context.Background()
	c, kv := testCache(t)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	got, err := c.Populate(ctx, []map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, got)
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, kv.Set(ctx, storage.KeySearchResults, "not json"))
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCache_Find(t *testing.T) {
	ctx := context.Background()
	c, _ := testCache(t)
	_, err := c.Populate(ctx, []map[string]any{{"id": "42", "title": "Plot 7"}})
	require.NoError(t, err)

	r, ok, err := c.Find(ctx, " 42 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Plot 7", r.Title)

	_, ok, err = c.Find(ctx, "43")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok, err = c.Find(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_FindSkipsRecordsWithoutID(t *testing.T) {
	ctx := context.Background()
	c, _ := testCache(t)
	list, err := c.Populate(ctx, []map[string]any{{"title": "No id plot"}, {"id": "42"}})
	require.NoError(t, err)
	require.Len(t, list, 2, "id-less records are still listed")
	assert.Empty(t, list[0].ID)

	_, ok, err := c.Find(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Find(ctx, "  ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalizeHistory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"bare array", `[{"id":1},{"id":2}]`, []string{"1", "2"}},
		{"history wrapper", `{"history":[{"id":1}],"data":[{"id":9}]}`, []string{"1"}},
		{"data wrapper", `{"data":[{"id":2}],"results":[{"id":9}]}`, []string{"2"}},
		{"results wrapper", `{"results":[{"id":3}]}`, []string{"3"}},
		{"null history falls through", `{"history":null,"data":[{"id":4}]}`, []string{"4"}},
		{"unknown wrapper", `{"items":[{"id":5}]}`, []string{}},
		{"null", `null`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHistory(json.RawMessage(tt.raw))
			require.NoError(t, err)
			gotIDs := make([]string, 0, len(got))
			for _, e := range got {
				gotIDs = append(gotIDs, e.ID)
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}

	_, err := NormalizeHistory(json.RawMessage(`"oops"`))
	assert.Error(t, err)
}

func TestNormalizeHistory_Fields(t *testing.T) {
	got, err := NormalizeHistory(json.RawMessage(`[
		{"id":10,"pendens_id":42,"title":"Plot 7","created_at":"2026-10-01","downloaded":1},
		{"search_id":"11","pendens":{"id":"43","title":"Plot 8"},"date":"2026-10-02","is_downloaded":false}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.HistoryEntry{ID: "10", PendensID: "42", Title: "Plot 7", CreatedAt: "2026-10-01", Downloaded: true}, got[0])
	assert.Equal(t, types.HistoryEntry{ID: "11", PendensID: "43", Title: "Plot 8", CreatedAt: "2026-10-02", Downloaded: false}, got[1])
}

func ids(list []types.SearchResult) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}
