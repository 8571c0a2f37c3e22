// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the secret name and the trimmed contents are its value.
//
// Recognised names: payment-public-key, payment-checkout-url.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/lispendens/pkg/types"
)

// Secret file names.
const (
	PaymentPublicKey   = "payment-public-key"
	PaymentCheckoutURL = "payment-checkout-url"
)

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error. Unreadable files are logged and skipped.
func Load(dir string, log *slog.Logger) (map[string]string, error) {
	if log == nil {
		log = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("skipping unreadable secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Apply fills payment settings that the configuration left empty.
// Configured values win over secret files.
func Apply(cfg *types.PaymentConfig, secrets map[string]string) {
	if cfg.PublicKey == "" {
		cfg.PublicKey = secrets[PaymentPublicKey]
	}
	if cfg.CheckoutURL == "" {
		cfg.CheckoutURL = secrets[PaymentCheckoutURL]
	}
}
