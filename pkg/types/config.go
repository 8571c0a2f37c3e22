// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// APIConfig holds settings for calls to the Lis Pendens backend.
type APIConfig struct {
	// BaseURL is the backend API root (e.g. "https://portal.example.ng/api").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lispendens/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// StorageConfig locates the persisted browser storage.
type StorageConfig struct {
	// Path is the SQLite file holding session and local storage.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PaymentConfig holds settings for the hosted checkout.
type PaymentConfig struct {
	// CheckoutURL is the provider's hosted checkout page.
	CheckoutURL string `json:"checkout_url" yaml:"checkout_url" mapstructure:"checkout_url"`

	// PublicKey is the provider public key sent with every checkout.
	PublicKey string `json:"public_key,omitempty" yaml:"public_key,omitempty" mapstructure:"public_key"`

	// Currency is the ISO currency code (default NGN).
	Currency string `json:"currency" yaml:"currency" mapstructure:"currency"`

	// Amount is the search fee charged per checkout.
	Amount float64 `json:"amount" yaml:"amount" mapstructure:"amount"`

	// RedirectAddr is the local address the payment-success listener binds to.
	RedirectAddr string `json:"redirect_addr" yaml:"redirect_addr" mapstructure:"redirect_addr"`

	// RedirectPath is the path of the payment-success page.
	RedirectPath string `json:"redirect_path" yaml:"redirect_path" mapstructure:"redirect_path"`
}

// RedirectURL returns the full payment-success URL handed to the provider.
func (c PaymentConfig) RedirectURL() string {
	return "http://" + c.RedirectAddr + c.RedirectPath
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PortalConfig groups all configuration for the portal.
type PortalConfig struct {
	API     APIConfig     `json:"api" yaml:"api" mapstructure:"api"`
	Storage StorageConfig `json:"storage" yaml:"storage" mapstructure:"storage"`
	Payment PaymentConfig `json:"payment" yaml:"payment" mapstructure:"payment"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}
