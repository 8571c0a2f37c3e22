// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package payment

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectListener_ReturnsQuery(t *testing.T) {
	ready := make(chan string, 1)
	var out bytes.Buffer
	l := &RedirectListener{Addr: "127.0.0.1:0", Path: "/payment-success", Out: &out, ready: ready}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		addr := <-ready
		resp, err := http.Get("http://" + addr + "/payment-success?reference=PSK-1&trxref=PSK-1")
		if err == nil {
			resp.Body.Close()
		}
	}()

	q, err := l.Open(ctx, "https://checkout.example/pay?tx_ref=LP-1")
	require.NoError(t, err)
	assert.Equal(t, "PSK-1", CallbackReference(q))
	assert.Contains(t, out.String(), "https://checkout.example/pay?tx_ref=LP-1")
}

func TestRedirectListener_Cancelled(t *testing.T) {
	ready := make(chan string, 1)
	l := &RedirectListener{Addr: "127.0.0.1:0", Path: "/payment-success", ready: ready}

	go func() {
		addr := <-ready
		resp, err := http.Get("http://" + addr + "/payment-success?status=cancelled&tx_ref=LP-1")
		if err == nil {
			resp.Body.Close()
		}
	}()

	_, err := l.Open(context.Background(), "https://checkout.example/pay")
	assert.ErrorIs(t, err, ErrCheckoutClosed)
}

func TestRedirectListener_CancelledWithReferenceIsPaid(t *testing.T) {
	ready := make(chan string, 1)
	l := &RedirectListener{Addr: "127.0.0.1:0", Path: "/payment-success", ready: ready}

	go func() {
		addr := <-ready
		resp, err := http.Get("http://" + addr + "/payment-success?status=cancelled&reference=PSK-1")
		if err == nil {
			resp.Body.Close()
		}
	}()

	q, err := l.Open(context.Background(), "https://checkout.example/pay")
	require.NoError(t, err)
	assert.Equal(t, "PSK-1", CallbackReference(q))
}

func TestRedirectListener_ContextCancelled(t *testing.T) {
	l := &RedirectListener{Addr: "127.0.0.1:0", Path: "/payment-success"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Open(ctx, "https://checkout.example/pay")
	assert.ErrorIs(t, err, ErrCheckoutClosed)
}
