package models

import (
	"sort"
	"strings"
	"time"
)

// Well-known service request statuses. Status is free text; only Completed
// changes behaviour.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// ServiceRequest represents a repair job raised by a customer.
type ServiceRequest struct {
	ID          int64      `bson:"_id" json:"id"`
	Issue       string     `bson:"issue" json:"issue"`
	Location    string     `bson:"location" json:"location"`
	Status      string     `bson:"status" json:"status"`
	RequestedAt time.Time  `bson:"requested_at" json:"requested_at"`
	CompletedAt *time.Time `bson:"completed_at" json:"completed_at"`
	CustomerID  int64      `bson:"customer_id" json:"customer_id"`
	VehicleID   int64      `bson:"vehicle_id" json:"vehicle_id"`
	MechanicID  *int64     `bson:"mechanic_id" json:"mechanic_id"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsCompletedStatus reports whether status means the job is done.
func IsCompletedStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusCompleted)
}

// SetStatus changes the status and stamps CompletedAt the first time the
// request becomes Completed. An existing CompletedAt is never overwritten.
func (r *ServiceRequest) SetStatus(status string, now time.Time) {
	r.Status = status
	if IsCompletedStatus(status) && r.CompletedAt == nil {
		t := now.UTC()
		r.CompletedAt = &t
	}
}

// OwnedBy reports whether the request belongs to the customer.
func (r *ServiceRequest) OwnedBy(customerID int64) bool {
	return r.CustomerID == customerID
}

// AssignedTo reports whether the request is assigned to the mechanic.
func (r *ServiceRequest) AssignedTo(mechanicID int64) bool {
	return r.MechanicID != nil && *r.MechanicID == mechanicID
}

var (
	adminWritableFields    = []string{"mechanic_id", "status"}
	customerWritableFields = []string{"issue", "location", "vehicle_id", "requested_at", "completed_at"}
)

// WritableServiceRequestFields returns the fields the principal may change
// on a service request. Roles without update rights get nil.
func WritableServiceRequestFields(p Principal) []string {
	switch p.(type) {
	case AdminPrincipal:
		return adminWritableFields
	case CustomerPrincipal:
		return customerWritableFields
	default:
		return nil
	}
}

// HasServiceRequestField reports whether any key names a field a service
// request update can carry, for any role.
func HasServiceRequestField(keys []string) bool {
	for _, k := range keys {
		for _, f := range [][]string{adminWritableFields, customerWritableFields} {
			for _, name := range f {
				if k == name {
					return true
				}
			}
		}
	}
	return false
}

// DisallowedFields returns, sorted, the keys not present in allowed.
func DisallowedFields(keys []string, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		ok[f] = true
	}
	var out []string
	for _, k := range keys {
		if !ok[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
