package models

import "fmt"

// Role represents user roles in the system
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleMechanic Role = "mechanic"
)

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleCustomer, RoleAdmin, RoleMechanic:
		return true
	default:
		return false
	}
}

// Profile links a user account to exactly one role-specific record
// (a customer, an admin or a mechanic). The zero value links to nothing.
type Profile struct {
	role Role
	id   int64
}

// CustomerProfile links a user to a customer record.
func CustomerProfile(customerID int64) Profile {
	return Profile{role: RoleCustomer, id: customerID}
}

// AdminProfile links a user to an admin record.
func AdminProfile(adminID int64) Profile {
	return Profile{role: RoleAdmin, id: adminID}
}

// MechanicProfile links a user to a mechanic record.
func MechanicProfile(mechanicID int64) Profile {
	return Profile{role: RoleMechanic, id: mechanicID}
}

// NewProfile builds a profile from a stored role and id.
func NewProfile(role Role, id int64) (Profile, error) {
	if !IsValidRole(role) {
		return Profile{}, fmt.Errorf("invalid role %q", role)
	}
	if id <= 0 {
		return Profile{}, fmt.Errorf("invalid %s id %d", role, id)
	}
	return Profile{role: role, id: id}, nil
}

func (p Profile) Role() Role { return p.role }

func (p Profile) ID() int64 { return p.id }

// IsZero reports whether the profile links to nothing.
func (p Profile) IsZero() bool { return p.role == "" }

// Principal is the authenticated caller. The concrete type is one of
// CustomerPrincipal, AdminPrincipal or MechanicPrincipal; callers switch on it.
type Principal interface {
	UserID() int64
	Role() Role
	Profile() Profile
	principal()
}

// CustomerPrincipal is a caller holding a customer account.
type CustomerPrincipal struct {
	User       int64
	CustomerID int64
}

// AdminPrincipal is a caller holding an admin account.
type AdminPrincipal struct {
	User    int64
	AdminID int64
}

// MechanicPrincipal is a caller holding a mechanic account.
type MechanicPrincipal struct {
	User       int64
	MechanicID int64
}

func (p CustomerPrincipal) UserID() int64    { return p.User }
func (p CustomerPrincipal) Role() Role       { return RoleCustomer }
func (p CustomerPrincipal) Profile() Profile { return CustomerProfile(p.CustomerID) }
func (CustomerPrincipal) principal()         {}

func (p AdminPrincipal) UserID() int64    { return p.User }
func (p AdminPrincipal) Role() Role       { return RoleAdmin }
func (p AdminPrincipal) Profile() Profile { return AdminProfile(p.AdminID) }
func (AdminPrincipal) principal()         {}

func (p MechanicPrincipal) UserID() int64    { return p.User }
func (p MechanicPrincipal) Role() Role       { return RoleMechanic }
func (p MechanicPrincipal) Profile() Profile { return MechanicProfile(p.MechanicID) }
func (MechanicPrincipal) principal()         {}

// NewPrincipal builds the principal variant matching the profile's role.
func NewPrincipal(userID int64, profile Profile) (Principal, error) {
	switch profile.Role() {
	case RoleCustomer:
		return CustomerPrincipal{User: userID, CustomerID: profile.ID()}, nil
	case RoleAdmin:
		return AdminPrincipal{User: userID, AdminID: profile.ID()}, nil
	case RoleMechanic:
		return MechanicPrincipal{User: userID, MechanicID: profile.ID()}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", profile.Role())
	}
}

// HasRole reports whether the principal holds one of the given roles.
func HasRole(p Principal, roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role() == r {
			return true
		}
	}
	return false
}
