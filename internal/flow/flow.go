// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flow threads a user from the search form through payment to the
// one result they may fully view. All state lives in browser storage; a
// Flow restores its position from storage at the start of each
// invocation and drives the components through one transition table.
package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lispendens/internal/auth"
	"github.com/pdiddy/lispendens/internal/claim"
	"github.com/pdiddy/lispendens/internal/intent"
	"github.com/pdiddy/lispendens/internal/payment"
	"github.com/pdiddy/lispendens/internal/results"
	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

var (
	// ErrRestart means the stored flow state is missing or stale and the
	// user must start a new search.
	ErrRestart = errors.New("no search in progress; start a new search")

	// ErrNotClaimed means a download was requested for a result that was
	// not claimed with the current payment.
	ErrNotClaimed = errors.New("only the claimed result can be downloaded")
)

// API is the set of backend calls the flow makes directly or through the
// claim gate.
type API interface {
	claim.StoreSearchAPI
	SearchProperty(ctx context.Context, token string, in types.SearchIntent) ([]map[string]any, error)
	SearchHistory(ctx context.Context, token, userID string) (json.RawMessage, error)
	UpdateDownload(ctx context.Context, token, searchID string) error
}

// Outcome reports what StartSearch accomplished. Without a checkout widget
// only Checkout is set and the payment completes later through
// CompletePayment.
type Outcome struct {
	Checkout payment.Checkout
	Paid     bool
	Results  []types.SearchResult
}

// Flow is the orchestrator.
type Flow struct {
	session  *auth.Session
	api      API
	payments *payment.Bridge
	intents  *intent.Store
	results  *results.Cache
	gate     *claim.Gate
	amount   float64
	log      *slog.Logger
	machine  *Machine
}

// New returns a Flow in Idle. Call Restore before driving it.
func New(kv storage.KV, session *auth.Session, api API, payments *payment.Bridge, amount float64, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.Default()
	}
	cache := results.NewCache(kv)
	return &Flow{
		session:  session,
		api:      api,
		payments: payments,
		intents:  intent.NewStore(kv),
		results:  cache,
		gate:     claim.NewGate(kv, api, cache, log),
		amount:   amount,
		log:      log,
		machine:  NewMachine(Idle),
	}
}

// State returns the current flow state.
func (f *Flow) State() State { return f.machine.State() }

// Cause returns the error that failed the flow, if any.
func (f *Flow) Cause() error { return f.machine.Cause() }

// Restore derives the flow position from storage: a pending intent with a
// payment record means a checkout is outstanding; otherwise cached results
// mean the user is viewing; otherwise the flow is idle.
func (f *Flow) Restore(ctx context.Context) error {
	pending, err := f.intents.Load(ctx)
	if err != nil {
		return err
	}
	_, paying, err := f.payments.Load(ctx)
	if err != nil {
		return err
	}
	if pending != nil && paying {
		f.machine = NewMachine(AwaitingPayment)
		return nil
	}

	list, err := f.results.List(ctx)
	if err != nil {
		return err
	}
	if len(list) > 0 {
		f.machine = NewMachine(Viewing)
	} else {
		f.machine = NewMachine(Idle)
	}
	return nil
}

// StartSearch captures the search form and opens a checkout for it. With a
// checkout widget attached the payment is completed and the results loaded
// before it returns.
func (f *Flow) StartSearch(ctx context.Context, in types.SearchIntent) (Outcome, error) {
	sess, err := f.session.Require(ctx, "search")
	if err != nil {
		return Outcome{}, err
	}
	if err := intent.Validate(in); err != nil {
		return Outcome{}, err
	}
	if f.machine.State() == Failed {
		f.machine.Fire(Reset)
	}
	if !f.machine.Can(SubmitSearch) {
		return Outcome{}, &TransitionError{From: f.machine.State(), Event: SubmitSearch}
	}
	if err := f.intents.Save(ctx, in); err != nil {
		return Outcome{}, err
	}
	f.machine.Fire(SubmitSearch)
	f.log.Info("search submitted", "state", in.State, "lga", in.LGA, "title", in.PropertyTitle)

	var out Outcome
	hooks := payment.Hooks{
		OnSuccess: func(ctx context.Context, _ string, q url.Values) error {
			list, err := f.CompletePayment(ctx, q)
			if err != nil {
				return err
			}
			out.Paid = true
			out.Results = list
			return nil
		},
		OnClose: func() {
			f.log.Info("checkout closed; search remains pending")
		},
	}
	customer := types.Customer{Email: sess.Email, Name: sess.FirstName}
	co, err := f.payments.InitiateCheckout(ctx, f.amount, customer, hooks)
	out.Checkout = co
	if err != nil {
		return out, err
	}
	return out, nil
}

// CompletePayment applies the provider redirect query, registers the
// payment unless it already was, runs the pending search and caches the
// results.
func (f *Flow) CompletePayment(ctx context.Context, q url.Values) ([]types.SearchResult, error) {
	sess, err := f.session.Require(ctx, "payment-update")
	if err != nil {
		return nil, err
	}
	if f.machine.State() != AwaitingPayment {
		return nil, ErrRestart
	}
	pending, err := f.intents.Load(ctx)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, f.machine.Failure(ErrRestart)
	}

	info, err := f.payments.HandleCallback(ctx, q)
	if errors.Is(err, payment.ErrCheckoutClosed) {
		return nil, err
	}
	if err != nil {
		return nil, f.machine.Failure(err)
	}
	if err := payment.Verify(info); err != nil {
		return nil, f.machine.Failure(err)
	}
	f.machine.Fire(PaymentConfirmed)

	// A payment_id already stored for this reference means an earlier
	// attempt registered it and only the search failed.
	if info.PaymentID == "" {
		amount := info.Amount
		if amount == 0 {
			amount = f.amount
		}
		info, err = f.payments.RegisterPayment(ctx, sess.AccessToken, sess.UserID, amount, info.SessionID(), "")
		if err != nil {
			return nil, f.machine.Failure(f.session.Observe(ctx, err))
		}
	}

	raw, err := f.api.SearchProperty(ctx, sess.AccessToken, *pending)
	if err != nil {
		return nil, f.machine.Failure(f.session.Observe(ctx, fmt.Errorf("searching: %w", err)))
	}
	list, err := f.results.Populate(ctx, raw)
	if err != nil {
		return nil, f.machine.Failure(err)
	}
	if err := f.intents.Clear(ctx); err != nil {
		return nil, f.machine.Failure(err)
	}
	f.machine.Fire(ResultsLoaded)
	f.log.Info("search results loaded", "count", len(list), "payment_id", info.PaymentID)
	return list, nil
}

// Results returns the cached result set, empty when there is none.
func (f *Flow) Results(ctx context.Context) ([]types.SearchResult, error) {
	return f.results.List(ctx)
}

// ViewDetails claims resultID for the current payment and returns it. The
// flow returns to Viewing whether or not the claim succeeds.
func (f *Flow) ViewDetails(ctx context.Context, resultID string) (claim.Result, error) {
	sess, err := f.session.Require(ctx, "store-search")
	if err != nil {
		return claim.Result{}, err
	}
	if f.machine.State() == Idle {
		return claim.Result{}, ErrRestart
	}
	if _, err := f.machine.Fire(SelectResult); err != nil {
		return claim.Result{}, err
	}

	info, _, err := f.payments.Load(ctx)
	if err != nil {
		f.machine.Fire(ClaimRejected)
		return claim.Result{}, err
	}
	res, err := f.gate.Claim(ctx, resultID, info, sess.UserID, sess.AccessToken)
	if err != nil {
		f.machine.Fire(ClaimRejected)
		return claim.Result{}, f.session.Observe(ctx, err)
	}
	f.machine.Fire(ClaimSucceeded)
	return res, nil
}

// Download records the download of the claimed result and writes it to w
// as YAML.
func (f *Flow) Download(ctx context.Context, resultID string, w io.Writer) error {
	sess, err := f.session.Require(ctx, "update-download")
	if err != nil {
		return err
	}
	info, _, err := f.payments.Load(ctx)
	if err != nil {
		return err
	}
	if info.ClaimedID == "" || info.ClaimedID != resultID {
		return ErrNotClaimed
	}
	res, ok, err := f.results.Find(ctx, resultID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRestart
	}

	if err := f.api.UpdateDownload(ctx, sess.AccessToken, resultID); err != nil {
		return f.session.Observe(ctx, err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing result %s: %w", resultID, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writing result %s: %w", resultID, err)
	}
	f.log.Info("result downloaded", "pendens_id", resultID)
	return nil
}

// History returns the signed-in user's search history.
func (f *Flow) History(ctx context.Context) ([]types.HistoryEntry, error) {
	sess, err := f.session.Require(ctx, "search-history")
	if err != nil {
		return nil, err
	}
	raw, err := f.api.SearchHistory(ctx, sess.AccessToken, sess.UserID)
	if err != nil {
		return nil, f.session.Observe(ctx, err)
	}
	return results.NormalizeHistory(raw)
}
