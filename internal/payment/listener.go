// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const successPage = `<!doctype html><title>Payment received</title>
<p>Payment received. You can close this tab and return to the terminal.</p>`

const cancelledPage = `<!doctype html><title>Payment cancelled</title>
<p>Payment was cancelled. Return to the terminal to start again.</p>`

// RedirectListener is a Widget that prints the checkout URL and serves the
// payment-success page locally, returning the first redirect it receives.
type RedirectListener struct {
	// Addr is the host:port to bind, e.g. "127.0.0.1:8765".
	Addr string

	// Path is the payment-success path, e.g. "/payment-success".
	Path string

	// Out receives the checkout URL prompt.
	Out io.Writer

	// ready, when set, receives the bound address once listening.
	ready chan<- string
}

// Open implements Widget.
func (l *RedirectListener) Open(ctx context.Context, checkoutURL string) (url.Values, error) {
	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening for payment redirect on %s: %w", l.Addr, err)
	}

	path := l.Path
	if path == "" {
		path = "/"
	}

	got := make(chan url.Values, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if closedWithoutPayment(q) {
			io.WriteString(w, cancelledPage)
		} else {
			io.WriteString(w, successPage)
		}
		select {
		case got <- q:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if l.Out != nil {
		fmt.Fprintf(l.Out, "Complete payment in your browser:\n\n  %s\n\nWaiting for the payment redirect on http://%s%s ...\n", checkoutURL, ln.Addr(), path)
	}
	if l.ready != nil {
		l.ready <- ln.Addr().String()
	}

	select {
	case q := <-got:
		if closedWithoutPayment(q) {
			return nil, ErrCheckoutClosed
		}
		return q, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrCheckoutClosed
		}
		return nil, fmt.Errorf("waiting for payment redirect: %w", ctx.Err())
	}
}
