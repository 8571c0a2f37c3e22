// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/lispendens/pkg/types"
)

const (
	defaultBaseURL      = "http://localhost:8000/api"
	defaultTimeout      = 30 * time.Second
	defaultCheckoutURL  = "https://checkout.flutterwave.com/v3/hosted/pay"
	defaultCurrency     = "NGN"
	defaultAmount       = 5000
	defaultRedirectAddr = "127.0.0.1:8765"
	defaultRedirectPath = "/payment-success"
)

// setDefaults registers every configuration key so that environment
// overrides apply to keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", defaultBaseURL)
	v.SetDefault("api.timeout", defaultTimeout)
	v.SetDefault("api.user_agent", "lispendens/"+version)
	v.SetDefault("storage.path", filepath.Join("~", ".local", "state", "lispendens", "storage.db"))
	v.SetDefault("payment.checkout_url", "")
	v.SetDefault("payment.public_key", "")
	v.SetDefault("payment.currency", defaultCurrency)
	v.SetDefault("payment.amount", defaultAmount)
	v.SetDefault("payment.redirect_addr", defaultRedirectAddr)
	v.SetDefault("payment.redirect_path", defaultRedirectPath)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

// loadConfig resolves the global viper configuration.
func loadConfig() (types.PortalConfig, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.PortalConfig, error) {
	var c types.PortalConfig
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}
	path, err := expandHome(c.Storage.Path)
	if err != nil {
		return c, err
	}
	c.Storage.Path = path
	if c.API.BaseURL == "" {
		return c, fmt.Errorf("api.base_url is not set")
	}
	return c, nil
}

// finishPaymentConfig fills the checkout URL after secrets have been
// applied, so a secret file can still supply it.
func finishPaymentConfig(c *types.PaymentConfig) {
	if c.CheckoutURL == "" {
		c.CheckoutURL = defaultCheckoutURL
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory for %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
