package models

import (
	"encoding/json"
	"time"
)

// User represents a login account. Role and ProfileID together form the
// account's Profile; build them with NewUser or SetProfile.
type User struct {
	ID           int64      `bson:"_id" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	ProfileID    int64      `bson:"profile_id" json:"-"`
	LastLogin    *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// NewUser creates a user account linked to the given profile.
func NewUser(email, passwordHash string, profile Profile) User {
	u := User{Email: email, PasswordHash: passwordHash}
	u.SetProfile(profile)
	return u
}

// SetProfile replaces the account's role and linked record.
func (u *User) SetProfile(p Profile) {
	u.Role = p.Role()
	u.ProfileID = p.ID()
}

// Profile returns the account's linked record.
func (u *User) Profile() Profile {
	return Profile{role: u.Role, id: u.ProfileID}
}

// MarshalJSON renders the profile link as the customer_id/admin_id/mechanic_id
// triple clients expect, with exactly one populated.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	out := struct {
		plain
		CustomerID *int64 `json:"customer_id"`
		AdminID    *int64 `json:"admin_id"`
		MechanicID *int64 `json:"mechanic_id"`
	}{plain: plain(u)}

	id := u.ProfileID
	switch u.Role {
	case RoleCustomer:
		out.CustomerID = &id
	case RoleAdmin:
		out.AdminID = &id
	case RoleMechanic:
		out.MechanicID = &id
	}
	return json.Marshal(out)
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role"`
	UserID      int64  `json:"user_id"`
}

// Claims represents JWT claims
type Claims struct {
	UserID    int64  `json:"user_id"`
	Role      Role   `json:"role"`
	ProfileID int64  `json:"profile_id"`
	TokenID   string `json:"jti"`
	Exp       int64  `json:"exp"`
}

// Principal converts the claims into the caller identity.
func (c *Claims) Principal() (Principal, error) {
	p, err := NewProfile(c.Role, c.ProfileID)
	if err != nil {
		return nil, err
	}
	return NewPrincipal(c.UserID, p)
}

// ExpiresAt returns the token expiry as a time.
func (c *Claims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}
