package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRequest_SetStatus(t *testing.T) {
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	r := &ServiceRequest{Status: StatusPending}

	r.SetStatus(StatusInProgress, first)
	assert.Nil(t, r.CompletedAt)

	r.SetStatus("completed", first)
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, first, *r.CompletedAt)

	// Leaving and re-entering Completed keeps the original stamp.
	r.SetStatus(StatusInProgress, later)
	r.SetStatus(StatusCompleted, later)
	assert.Equal(t, first, *r.CompletedAt)
	assert.Equal(t, StatusCompleted, r.Status)
}

func TestIsCompletedStatus(t *testing.T) {
	assert.True(t, IsCompletedStatus("Completed"))
	assert.True(t, IsCompletedStatus(" COMPLETED "))
	assert.False(t, IsCompletedStatus("Complete"))
	assert.False(t, IsCompletedStatus(StatusPending))
}

func TestWritableServiceRequestFields(t *testing.T) {
	assert.ElementsMatch(t, []string{"mechanic_id", "status"},
		WritableServiceRequestFields(AdminPrincipal{User: 1, AdminID: 1}))
	assert.ElementsMatch(t, []string{"issue", "location", "vehicle_id", "requested_at", "completed_at"},
		WritableServiceRequestFields(CustomerPrincipal{User: 2, CustomerID: 2}))
	assert.Nil(t, WritableServiceRequestFields(MechanicPrincipal{User: 3, MechanicID: 3}))
}

func TestDisallowedFields(t *testing.T) {
	allowed := WritableServiceRequestFields(CustomerPrincipal{User: 2, CustomerID: 2})
	assert.Empty(t, DisallowedFields([]string{"issue", "location"}, allowed))
	assert.Equal(t, []string{"mechanic_id", "status"},
		DisallowedFields([]string{"status", "issue", "mechanic_id"}, allowed))
}

func TestHasServiceRequestField(t *testing.T) {
	assert.True(t, HasServiceRequestField([]string{"foo", "status"}))
	assert.True(t, HasServiceRequestField([]string{"completed_at"}))
	assert.False(t, HasServiceRequestField([]string{"foo", "bar"}))
	assert.False(t, HasServiceRequestField(nil))
}

func TestServiceRequest_Ownership(t *testing.T) {
	mech := int64(4)
	r := &ServiceRequest{CustomerID: 9, MechanicID: &mech}
	assert.True(t, r.OwnedBy(9))
	assert.False(t, r.OwnedBy(10))
	assert.True(t, r.AssignedTo(4))
	assert.False(t, r.AssignedTo(5))
	assert.False(t, (&ServiceRequest{}).AssignedTo(4))
}
