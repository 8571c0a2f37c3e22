// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf8"
)

// extractMessage pulls a human-readable message out of an error body.
// The backend answers with {"message": ...}, {"error": ...}, or a
// validation map {"errors": {"field": ["..."]}}.
func extractMessage(body []byte) string {
	var payload struct {
		Message string                     `json:"message"`
		Error   string                     `json:"error"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}

	fields := make([]string, 0, len(payload.Errors))
	for f := range payload.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		var msgs []string
		if err := json.Unmarshal(payload.Errors[f], &msgs); err == nil && len(msgs) > 0 {
			return msgs[0]
		}
		var msg string
		if err := json.Unmarshal(payload.Errors[f], &msg); err == nil && msg != "" {
			return msg
		}
	}
	return ""
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
