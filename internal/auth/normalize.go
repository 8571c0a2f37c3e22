// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"errors"
	"strings"

	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/pkg/types"
)

// Login responses differ by account type. Each attribute is read from the
// first path in its list that holds a non-empty value.
var (
	rolePaths = [][]string{
		{"data", "type"},
		{"data", "user_type"},
		{"role"},
		{"type"},
	}
	tokenPaths = [][]string{
		{"token"},
		{"data", "token"},
	}
	emailPaths = [][]string{
		{"data", "email"},
		{"user", "email"},
		{"email"},
	}
	firstNamePaths = [][]string{
		{"data", "first_name"},
		{"user", "first_name"},
		{"first_name"},
		{"data", "company_name"},
	}
	userIDPaths = [][]string{
		{"data", "id"},
		{"data", "user_id"},
		{"user", "id"},
		{"user_id"},
	}
)

var (
	ErrNoToken = errors.New("login response carries no token")
	ErrNoRole  = errors.New("login response carries no role")
)

// NormalizeLogin extracts the session from a login response.
func NormalizeLogin(resp map[string]any) (types.AuthSessionData, error) {
	token := portal.FirstString(resp, tokenPaths...)
	if token == "" {
		return types.AuthSessionData{}, ErrNoToken
	}
	role := NormalizeRole(portal.FirstString(resp, rolePaths...))
	if role == "" {
		return types.AuthSessionData{}, ErrNoRole
	}
	return types.AuthSessionData{
		Role:        role,
		AccessToken: token,
		Email:       portal.FirstString(resp, emailPaths...),
		FirstName:   portal.FirstString(resp, firstNamePaths...),
		UserID:      portal.FirstString(resp, userIDPaths...),
	}, nil
}

// NormalizeRole folds the spellings the backend uses onto the canonical roles.
// Unrecognised roles are kept lower-cased.
func NormalizeRole(raw string) types.Role {
	r := strings.ToLower(strings.TrimSpace(raw))
	r = strings.NewReplacer("-", "_", " ", "_").Replace(r)
	switch r {
	case "superadmin", "super_admin", "admin":
		return types.RoleSuperAdmin
	case "registrar", "court_registrar":
		return types.RoleRegistrar
	case "individual", "user":
		return types.RoleIndividual
	case "company", "corporate":
		return types.RoleCompany
	}
	return types.Role(r)
}

// LandingRoute returns the page a role lands on after login.
func LandingRoute(role types.Role) string {
	switch role {
	case types.RoleSuperAdmin:
		return "/admin/dashboard"
	case types.RoleRegistrar:
		return "/registrar/dashboard"
	default:
		return "/dashboard"
	}
}
