// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lispendens/internal/auth"
	"github.com/pdiddy/lispendens/internal/flow"
	"github.com/pdiddy/lispendens/internal/payment"
	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

// portalApp wires the components for one command invocation.
type portalApp struct {
	store    *storage.Store
	client   *portal.Client
	session  *auth.Session
	accounts *auth.Accounts
	bridge   *payment.Bridge
	flow     *flow.Flow
}

// openApp opens storage and restores the session and flow from it. A nil
// widget leaves checkouts to be completed by "payment callback".
func openApp(ctx context.Context, c types.PortalConfig, widget payment.Widget) (*portalApp, error) {
	store, err := storage.Open(c.Storage)
	if err != nil {
		return nil, err
	}

	client := portal.New(c.API)
	session := auth.NewSession(store, client, logger)
	if err := session.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}

	bridge := payment.NewBridge(store, client, c.Payment, widget, logger)
	f := flow.New(store, session, client, bridge, c.Payment.Amount, logger)
	if err := f.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &portalApp{
		store:    store,
		client:   client,
		session:  session,
		accounts: auth.NewAccounts(store, client, session, auth.DefaultResendCooldown),
		bridge:   bridge,
		flow:     f,
	}, nil
}

// Close releases the storage database.
func (a *portalApp) Close() error {
	return a.store.Close()
}

// withApp opens the app for cmd, runs fn, and closes it.
func withApp(cmd *cobra.Command, widget payment.Widget, fn func(ctx context.Context, a *portalApp, out io.Writer) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, cfg, widget)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a, cmd.OutOrStdout())
}
