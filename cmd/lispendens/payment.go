// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"
)

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Complete a pending payment",
}

var paymentCallbackCmd = &cobra.Command{
	Use:   "callback",
	Short: "Apply the payment provider's redirect",
	Long: `Callback applies the redirect the payment provider sent your browser to
after checkout. Pass the full redirect URL with --url, or the reference with
--reference (or --trxref). The payment is then registered with the backend
and the pending search is run.`,
	RunE: runPaymentCallback,
}

func init() {
	paymentCallbackCmd.Flags().String("url", "", "full payment-success redirect URL")
	paymentCallbackCmd.Flags().String("reference", "", "provider payment reference")
	paymentCallbackCmd.Flags().String("trxref", "", "provider transaction reference")
	paymentCallbackCmd.Flags().String("status", "", "provider status, e.g. cancelled")
	paymentCmd.AddCommand(paymentCallbackCmd)

	rootCmd.AddCommand(paymentCmd)
}

// callbackQuery builds the redirect query from the flags. Explicit flags
// override values in --url.
func callbackQuery(rawURL, reference, trxref, status string) (url.Values, error) {
	q := url.Values{}
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parsing --url: %w", err)
		}
		q = u.Query()
	}
	for k, v := range map[string]string{"reference": reference, "trxref": trxref, "status": status} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q, nil
}

func runPaymentCallback(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	rawURL, _ := f.GetString("url")
	reference, _ := f.GetString("reference")
	trxref, _ := f.GetString("trxref")
	status, _ := f.GetString("status")
	q, err := callbackQuery(rawURL, reference, trxref, status)
	if err != nil {
		return err
	}

	return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
		list, err := a.flow.CompletePayment(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Payment confirmed.")
		printResults(out, list, "")
		return nil
	})
}
