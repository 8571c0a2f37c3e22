// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

// Scope separates values that live for one browser session from values that
// survive it.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeLocal   Scope = "local"
)

// Key names a storage slot. The names are shared with the web portal and
// must not change.
type Key string

const (
	KeyAuth               Key = "auth"
	KeyUser               Key = "user"
	KeySessionID          Key = "session_id"
	KeyUserID             Key = "user_id"
	KeyPendingSearch      Key = "pendingSearchParams"
	KeySearchResults      Key = "searchResults"
	KeyPaymentInfo        Key = "paymentInfo"
	KeyPaymentReference   Key = "paymentReference"
	KeyUserEmail          Key = "userEmail"
	KeyResetPasswordToken Key = "resetPasswordToken"
)

var keyScopes = map[Key]Scope{
	KeyAuth:               ScopeLocal,
	KeyUser:               ScopeLocal,
	KeyUserID:             ScopeLocal,
	KeyUserEmail:          ScopeLocal,
	KeyResetPasswordToken: ScopeLocal,
	KeySessionID:          ScopeSession,
	KeyPendingSearch:      ScopeSession,
	KeySearchResults:      ScopeSession,
	KeyPaymentInfo:        ScopeSession,
	KeyPaymentReference:   ScopeSession,
}

// Scope returns the storage scope of k. Unknown keys are session-scoped.
func (k Key) Scope() Scope {
	if s, ok := keyScopes[k]; ok {
		return s
	}
	return ScopeSession
}

// AuthKeys lists every key cleared at logout.
var AuthKeys = []Key{KeyAuth, KeyUser, KeyUserID, KeySessionID}

// Keys returns all known keys.
func Keys() []Key {
	return []Key{
		KeyAuth, KeyUser, KeySessionID, KeyUserID,
		KeyPendingSearch, KeySearchResults, KeyPaymentInfo, KeyPaymentReference,
		KeyUserEmail, KeyResetPasswordToken,
	}
}
