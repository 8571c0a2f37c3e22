// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// printResults renders the result list, marking the claimed result.
func printResults(w io.Writer, list []types.SearchResult, claimedID string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-3s %-8s  %-30s  %-20s  %s\n", "", "ID", "Title", "Owner", "Summary")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range list {
		mark := ""
		if r.ID == claimedID && claimedID != "" {
			mark = "*"
		}
		fmt.Fprintf(w, "%-3s %-8s  %-30s  %-20s  %s\n",
			mark, clip(r.ID, 8), clip(r.Title, 30), clip(r.Owner, 20), clip(r.Summary, 33))
	}
	fmt.Fprintf(w, "\n%d results\n", len(list))
	if claimedID != "" {
		fmt.Fprintln(w, "* claimed with your payment")
	}
}

// printResult renders the detail view of one claimed result.
func printResult(w io.Writer, r types.SearchResult) {
	fmt.Fprintf(w, "Result %s\n", r.ID)
	fmt.Fprintf(w, "  Title:    %s\n", r.Title)
	fmt.Fprintf(w, "  Owner:    %s\n", r.Owner)
	fmt.Fprintf(w, "  Summary:  %s\n", r.Summary)
	if len(r.Details) == 0 {
		return
	}

	keys := make([]string, 0, len(r.Details))
	for k := range r.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "  Details:")
	for _, k := range keys {
		fmt.Fprintf(w, "    %-20s %v\n", k+":", r.Details[k])
	}
}

// printHistory renders the search history table.
func printHistory(w io.Writer, entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No searches yet.")
		return
	}
	fmt.Fprintf(w, "%-6s  %-8s  %-30s  %-20s  %s\n", "ID", "Pendens", "Title", "Date", "Downloaded")
	fmt.Fprintln(w, strings.Repeat("-", 82))
	for _, e := range entries {
		dl := "no"
		if e.Downloaded {
			dl = "yes"
		}
		fmt.Fprintf(w, "%-6s  %-8s  %-30s  %-20s  %s\n",
			clip(e.ID, 6), clip(e.PendensID, 8), clip(e.Title, 30), clip(e.CreatedAt, 20), dl)
	}
}

// printProfile renders the user profile, skipping empty fields.
func printProfile(w io.Writer, p types.Profile) {
	rows := []struct{ label, value string }{
		{"First name", p.FirstName},
		{"Last name", p.LastName},
		{"Company", p.CompanyName},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Address", p.Address},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Fprintf(w, "%-12s %s\n", r.label+":", r.value)
		}
	}
}

// printEntries renders stored keys. Access tokens are masked.
func printEntries(w io.Writer, entries []storage.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Storage is empty.")
		return
	}
	fmt.Fprintf(w, "%-8s  %-20s  %-20s  %s\n", "Scope", "Key", "Updated", "Value")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, e := range entries {
		value := e.Value
		if e.Key == storage.KeyAuth {
			value = "(hidden)"
		}
		fmt.Fprintf(w, "%-8s  %-20s  %-20s  %s\n", e.Scope, e.Key, clip(e.UpdatedAt, 20), clip(value, 36))
	}
}
