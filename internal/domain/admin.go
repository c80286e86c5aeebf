package domain

import "time"

// AdminStatus tracks the authorization lifecycle of an admin account.
type AdminStatus string

const (
	AdminStatusPendingAuthorization AdminStatus = "pending_authorization"
	AdminStatusAuthorized           AdminStatus = "authorized"
	AdminStatusRevoked              AdminStatus = "revoked"
)

// AdminRole enumerates back-office roles.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "super_admin"
)

// AdminAccount is a back-office operator.
type AdminAccount struct {
	ID                  string      `json:"id,omitempty"`
	Username            string      `json:"username"`
	Email               string      `json:"email"`
	Name                string      `json:"name"`
	Role                AdminRole   `json:"role,omitempty"`
	PasswordHash        string      `json:"passwordHash,omitempty"`
	LegacyPassword      string      `json:"password,omitempty"`
	IsActive            bool        `json:"isActive"`
	IsAuthorized        bool        `json:"isAuthorized"`
	Status              AdminStatus `json:"status"`
	LoginCount          int         `json:"loginCount"`
	LastLogin           *time.Time  `json:"lastLogin,omitempty"`
	PasswordLastChanged *time.Time  `json:"passwordLastChanged,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           *time.Time  `json:"updatedAt,omitempty"`
	AuthorizedAt        *time.Time  `json:"authorizedAt,omitempty"`
	AuthorizedBy        string      `json:"authorizedBy,omitempty"`
	RevokedAt           *time.Time  `json:"revokedAt,omitempty"`
	RevokedBy           string      `json:"revokedBy,omitempty"`
	DeactivatedAt       *time.Time  `json:"deactivatedAt,omitempty"`
}

// CanLogin reports whether the account may open a session.
func (a *AdminAccount) CanLogin() bool {
	return a != nil && a.IsActive && a.IsAuthorized
}

// IsSuperAdmin reports whether the account carries the super_admin role.
func (a *AdminAccount) IsSuperAdmin() bool {
	return a != nil && a.Role == AdminRoleSuperAdmin
}

// WithoutSecrets returns a copy with every password field cleared.
func (a AdminAccount) WithoutSecrets() AdminAccount {
	a.PasswordHash = ""
	a.LegacyPassword = ""
	return a
}
