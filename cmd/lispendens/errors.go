// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/lispendens/internal/auth"
	"github.com/pdiddy/lispendens/internal/claim"
	"github.com/pdiddy/lispendens/internal/flow"
	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/internal/intent"
	"github.com/pdiddy/lispendens/internal/payment"
)

// userMessage converts an error into the one line shown to the user.
func userMessage(err error) string {
	var (
		validation *intent.ValidationError
		network    *httputil.NetworkError
		status     *httputil.StatusError
		cooldown   *auth.CooldownError
		claimErr   *claim.ClaimError
		regErr     *payment.PaymentRegistrationError
		transition *flow.TransitionError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &validation):
		return fmt.Sprintf("%s: %s", validation.Field, validation.Message)
	case errors.Is(err, httputil.ErrUnauthorized):
		return "you are not signed in or your session has expired; run \"lispendens login\""
	case errors.As(err, &network) && network.Refused:
		return "could not connect to the Lis Pendens server; check that it is running and the API URL is correct"
	case errors.As(err, &network):
		return "network error: " + network.Err.Error()
	case errors.Is(err, claim.ErrMissingPaymentID):
		return "payment was not registered with the server; no result can be opened. Start a new search"
	case errors.Is(err, claim.ErrAlreadyClaimed):
		return "your payment already covers another result; start a new search to view a different one"
	case errors.Is(err, claim.ErrUnknownResult):
		return "no such result in your current search; run \"lispendens results list\""
	case errors.As(err, &claimErr):
		return fmt.Sprintf("could not open result %s (%s); try again", claimErr.ResultID, cause(claimErr.Err))
	case errors.As(err, &regErr):
		return fmt.Sprintf("payment could not be registered (%s); contact support with your payment reference", cause(regErr.Err))
	case errors.Is(err, payment.ErrMissingReference):
		return "no payment reference was received; the payment cannot be verified"
	case errors.Is(err, payment.ErrCheckoutClosed):
		return "checkout was closed before payment; your search is still pending"
	case errors.Is(err, flow.ErrRestart):
		return "no search in progress; start a new search with \"lispendens search\""
	case errors.As(err, &transition):
		return transition.Error()
	case errors.As(err, &cooldown):
		return cooldown.Error()
	case errors.As(err, &status):
		return cause(status)
	default:
		return err.Error()
	}
}

// cause prefers the backend's own message over the wrapped error text.
func cause(err error) string {
	var status *httputil.StatusError
	if errors.As(err, &status) && status.Message != "" {
		return status.Message
	}
	var network *httputil.NetworkError
	if errors.As(err, &network) {
		return "network error"
	}
	return err.Error()
}
