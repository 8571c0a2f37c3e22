// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lispendens/internal/payment"
	"github.com/pdiddy/lispendens/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Submit a property search and pay for it",
	Long: `Search saves the search form and opens a checkout for the search fee.

With --wait (the default) the CLI serves the payment-success page locally,
waits for the provider to redirect there, then registers the payment and
loads the results. With --wait=false it prints the checkout URL and exits;
finish later with "lispendens payment callback".`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("title", "", "title document type, e.g. \"C of O\"")
	searchCmd.Flags().String("state", "", "state (required)")
	searchCmd.Flags().String("lga", "", "local government area (required)")
	searchCmd.Flags().Bool("wait", true, "wait for the payment redirect on the local listener")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	var in types.SearchIntent
	in.PropertyTitle, _ = cmd.Flags().GetString("title")
	in.State, _ = cmd.Flags().GetString("state")
	in.LGA, _ = cmd.Flags().GetString("lga")
	wait, _ := cmd.Flags().GetBool("wait")

	var widget payment.Widget
	if wait {
		widget = &payment.RedirectListener{
			Addr: cfg.Payment.RedirectAddr,
			Path: cfg.Payment.RedirectPath,
			Out:  cmd.OutOrStdout(),
		}
	}

	return withApp(cmd, widget, func(ctx context.Context, a *portalApp, out io.Writer) error {
		res, err := a.flow.StartSearch(ctx, in)
		if err != nil {
			return err
		}
		if !res.Paid {
			fmt.Fprintf(out, "Complete payment in your browser:\n\n  %s\n\n", res.Checkout.URL)
			fmt.Fprintln(out, `After paying, run "lispendens payment callback --url <redirect URL>".`)
			return nil
		}
		fmt.Fprintln(out, "Payment confirmed.")
		printResults(out, res.Results, "")
		if len(res.Results) > 0 {
			fmt.Fprintln(out, `View one result in full with "lispendens results view <id>".`)
		}
		return nil
	})
}
