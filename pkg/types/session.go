// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role is the account type returned at login.
type Role string

const (
	RoleIndividual Role = "individual"
	RoleCompany    Role = "company"
	RoleRegistrar  Role = "registrar"
	RoleSuperAdmin Role = "super_admin"
)

// AuthSessionData is the authenticated session held between commands.
type AuthSessionData struct {
	Role        Role   `json:"role" yaml:"role"`
	AccessToken string `json:"accessToken" yaml:"access_token"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty" yaml:"first_name,omitempty"`
	UserID      string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// Profile is the user record read and written through update-details.
type Profile struct {
	FirstName   string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
}
