// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaymentStatus is the lifecycle state of a checkout.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// PaymentInfo tracks one checkout from initiation to backend registration.
// The JSON field names are the paymentInfo storage contract.
type PaymentInfo struct {
	// PaymentStatus is pending until the provider redirect arrives.
	PaymentStatus PaymentStatus `json:"payment_status"`

	// Reference is the provider transaction reference from the redirect.
	Reference string `json:"reference,omitempty"`

	// PaymentID is assigned by the backend's payment-update response and is
	// the only value a claim may be made against.
	PaymentID string `json:"payment_id,omitempty"`

	// CompletedAt is stamped when the redirect is handled.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// TxRef is the reference generated at checkout initiation.
	TxRef string `json:"tx_ref,omitempty"`

	// PaymentSessionID is the provider session identifier, when it differs
	// from the transaction reference.
	PaymentSessionID string `json:"payment_session_id,omitempty"`

	// Amount is the amount charged.
	Amount float64 `json:"amount,omitempty"`

	// ClaimedID is the single result claimed against this payment.
	ClaimedID string `json:"claimed_id,omitempty"`
}

// SessionID returns the identifier sent to the backend as
// payment_session_id: the explicit session id, else the provider
// reference, else the initiation tx_ref.
func (p PaymentInfo) SessionID() string {
	switch {
	case p.PaymentSessionID != "":
		return p.PaymentSessionID
	case p.Reference != "":
		return p.Reference
	default:
		return p.TxRef
	}
}

// Customer identifies the payer to the checkout provider.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone_number,omitempty"`
}
