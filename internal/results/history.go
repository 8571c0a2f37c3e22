// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/pkg/types"
)

// historyWrappers lists the object keys a history array may be wrapped in,
// in priority order. A bare array is used as-is.
var historyWrappers = []string{"history", "data", "results"}

// NormalizeHistory decodes a search-history payload into entries.
func NormalizeHistory(raw json.RawMessage) ([]types.HistoryEntry, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("parsing search history: %w", err)
		}
		for _, key := range historyWrappers {
			inner, ok := wrapped[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(inner, &records); err == nil && records != nil {
				break
			}
			records = nil
		}
	}

	out := make([]types.HistoryEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, types.HistoryEntry{
			ID:         portal.FirstString(rec, []string{"id"}, []string{"search_id"}),
			PendensID:  portal.FirstString(rec, []string{"pendens_id"}, []string{"pendens", "id"}),
			Title:      orDefault(portal.FirstString(rec, []string{"title"}, []string{"pendens", "title"}, []string{"title_type"}), UntitledProperty),
			CreatedAt:  portal.FirstString(rec, []string{"created_at"}, []string{"date"}),
			Downloaded: downloaded(rec),
		})
	}
	return out, nil
}

func downloaded(rec map[string]any) bool {
	v, ok := portal.Field(rec, "downloaded")
	if !ok {
		v, ok = portal.Field(rec, "is_downloaded")
	}
	if !ok {
		return false
	}
	switch portal.String(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
