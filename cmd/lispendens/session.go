// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lispendens/internal/storage"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or end the stored browser session",
	Long: `Session shows the keys held in local storage. "session end" discards the
session scope (pending search, payment, and results) as closing the
browser would; your sign-in is kept.`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List stored keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			entries, err := a.store.Entries(ctx)
			if err != nil {
				return err
			}
			printEntries(out, entries)
			return nil
		})
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Discard the session scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.store.ClearScope(ctx, storage.ScopeSession); err != nil {
				return err
			}
			fmt.Fprintln(out, "Session ended.")
			return nil
		})
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd, sessionEndCmd)
	rootCmd.AddCommand(sessionCmd)
}
