// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the Lis Pendens portal:
// the search intent captured before payment, payment state, cached search
// results, search history, and the authenticated session.
package types

// SearchIntent holds the search-form inputs captured before payment.
// The JSON field names are the pendingSearchParams storage contract.
type SearchIntent struct {
	// PropertyTitle is the title document type (e.g. "C of O"). Optional.
	PropertyTitle string `json:"propertyTitle,omitempty" yaml:"property_title,omitempty"`

	// LGA is the local government area. Required.
	LGA string `json:"lga" yaml:"lga"`

	// State is the Nigerian state. Required.
	State string `json:"state" yaml:"state"`
}

// SearchResult is the summary shape of one backend search record.
type SearchResult struct {
	// ID is the pendens id assigned by the backend.
	ID string `json:"id" yaml:"id"`

	// Title is the property title, or "Untitled Property".
	Title string `json:"title" yaml:"title"`

	// Owner is the registered owner, or "Unknown".
	Owner string `json:"owner" yaml:"owner"`

	// Summary is a one-line description of the litigation.
	Summary string `json:"summary" yaml:"summary"`

	// Details is the raw backend record, kept for the detail view.
	Details map[string]any `json:"details" yaml:"details"`
}

// HistoryEntry is one row of the user's search history.
type HistoryEntry struct {
	ID         string `json:"id" yaml:"id"`
	PendensID  string `json:"pendens_id" yaml:"pendens_id"`
	Title      string `json:"title" yaml:"title"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	Downloaded bool   `json:"downloaded" yaml:"downloaded"`
}
