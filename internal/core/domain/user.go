package domain

import "time"

// Identity models a registered user and the roles assigned to it.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PrimaryRole is the role embedded in access tokens: the first assigned role,
// or RoleUser when none are assigned.
func (i *Identity) PrimaryRole() Role {
	for _, r := range i.Roles {
		if r.Valid() {
			return r
		}
	}
	return RoleUser
}

// HasRole reports whether r is in the identity's role set.
func (i *Identity) HasRole(r Role) bool {
	for _, held := range i.Roles {
		if held == r {
			return true
		}
	}
	return false
}
