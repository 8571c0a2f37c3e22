// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/lispendens/internal/auth"
	"github.com/pdiddy/lispendens/internal/claim"
	"github.com/pdiddy/lispendens/internal/flow"
	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/internal/intent"
	"github.com/pdiddy/lispendens/internal/payment"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  &intent.ValidationError{Field: "lga", Message: "is required"},
			want: "lga: is required",
		},
		{
			name: "connection refused",
			err:  fmt.Errorf("searching: %w", &httputil.NetworkError{Op: "search-property", Refused: true, Err: syscall.ECONNREFUSED}),
			want: "could not connect to the Lis Pendens server; check that it is running and the API URL is correct",
		},
		{
			name: "generic network",
			err:  &httputil.NetworkError{Op: "login", Err: errors.New("i/o timeout")},
			want: "network error: i/o timeout",
		},
		{
			name: "unauthorized",
			err:  &httputil.AuthError{Op: "store-search"},
			want: `you are not signed in or your session has expired; run "lispendens login"`,
		},
		{
			name: "missing payment id",
			err:  claim.ErrMissingPaymentID,
			want: "payment was not registered with the server; no result can be opened. Start a new search",
		},
		{
			name: "claim failure uses backend message",
			err:  &claim.ClaimError{ResultID: "42", Err: &httputil.StatusError{Op: "store-search", StatusCode: 422, Message: "payment already used"}},
			want: "could not open result 42 (payment already used); try again",
		},
		{
			name: "registration failure",
			err:  &payment.PaymentRegistrationError{Err: payment.ErrNoPaymentID},
			want: "payment could not be registered (payment-update response carries no payment_id); contact support with your payment reference",
		},
		{
			name: "restart",
			err:  flow.ErrRestart,
			want: `no search in progress; start a new search with "lispendens search"`,
		},
		{
			name: "cooldown",
			err:  &auth.CooldownError{Wait: 41 * time.Second},
			want: "please wait 41s before requesting another code",
		},
		{
			name: "status without message",
			err:  &httputil.StatusError{Op: "update-download", StatusCode: 500},
			want: "update-download returned HTTP 500",
		},
		{
			name: "cancelled",
			err:  fmt.Errorf("search: %w", context.Canceled),
			want: "cancelled",
		},
		{
			name: "other",
			err:  errors.New("--email is required"),
			want: "--email is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
