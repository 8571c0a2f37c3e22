// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your past searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			entries, err := a.flow.History(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			printHistory(out, entries)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().Bool("json", false, "output history as JSON")
	rootCmd.AddCommand(historyCmd)
}
