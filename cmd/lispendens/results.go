// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List, view, and download search results",
	Long: `Results works on the result set of your last paid search. Every summary
can be listed; one result per payment can be viewed in full and downloaded.`,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List result summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			list, err := a.flow.Results(ctx)
			if err != nil {
				return err
			}
			claimed := ""
			if info, ok, err := a.bridge.Load(ctx); err == nil && ok {
				claimed = info.ClaimedID
			}
			printResults(out, list, claimed)
			return nil
		})
	},
}

var resultsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View one result in full (uses your payment's single claim)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			res, err := a.flow.ViewDetails(ctx, args[0])
			if err != nil {
				return err
			}
			printResult(out, res.Result)
			return nil
		})
	},
}

var resultsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download the claimed result as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("out")
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if path == "" || path == "-" {
				return a.flow.Download(ctx, args[0], out)
			}

			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			if err := a.flow.Download(ctx, args[0], file); err != nil {
				file.Close()
				os.Remove(path)
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(out, "Saved result %s to %s\n", args[0], path)
			return nil
		})
	},
}

func init() {
	resultsDownloadCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	resultsCmd.AddCommand(resultsListCmd, resultsViewCmd, resultsDownloadCmd)

	rootCmd.AddCommand(resultsCmd)
}
