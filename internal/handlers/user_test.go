package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
)

const userRoute = "/users/:user_id"

func customerUser() *models.User {
	u := models.NewUser("jane@garage.com", "hash", models.CustomerProfile(7))
	u.ID = 2
	return &u
}

func TestUserHandler_Update_Profile(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]interface{}
		want  string
		field string
	}{
		{"role without id", map[string]interface{}{"role": "mechanic"}, "A mechanic_id is required for role mechanic", "mechanic_id"},
		{"id of another role", map[string]interface{}{"role": "mechanic", "mechanic_id": 4, "customer_id": 7}, "customer_id does not match role mechanic", "customer_id"},
		{"unknown role", map[string]interface{}{"role": "owner"}, "Invalid role", "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockStores()
			h := NewUserHandler(newTestAuthService(), m.stores())
			m.users.On("FindUserByID", mock.Anything, int64(2)).Return(customerUser(), nil)

			w := serve(t, h.Update, adminCaller, http.MethodPut, userRoute, "/users/2", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorMessage(t, w))
			assert.Equal(t, []string{tt.field}, errorFields(t, w))
			m.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestUserHandler_Update_ChangeRole(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.users.On("FindUserByID", mock.Anything, int64(2)).Return(customerUser(), nil)
	m.mechanics.On("FindMechanicByID", mock.Anything, int64(4)).Return(&models.Mechanic{ID: 4}, nil)
	m.users.On("FindUserByProfile", mock.Anything, models.MechanicProfile(4)).Return(nil, db.ErrNotFound)
	m.users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Profile() == models.MechanicProfile(4)
	})).Return(nil)

	w := serve(t, h.Update, adminCaller, http.MethodPut, userRoute, "/users/2",
		map[string]interface{}{"role": "mechanic", "mechanic_id": 4, "customer_id": nil})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "mechanic", body["role"])
	assert.Equal(t, float64(4), body["mechanic_id"])
	assert.Nil(t, body["customer_id"])
}

func TestUserHandler_Update_ProfileTaken(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.users.On("FindUserByID", mock.Anything, int64(2)).Return(customerUser(), nil)
	m.customers.On("FindCustomerByID", mock.Anything, int64(8)).Return(&models.Customer{ID: 8}, nil)
	other := models.NewUser("other@garage.com", "hash", models.CustomerProfile(8))
	m.users.On("FindUserByProfile", mock.Anything, models.CustomerProfile(8)).Return(&other, nil)

	w := serve(t, h.Update, adminCaller, http.MethodPut, userRoute, "/users/2",
		map[string]interface{}{"customer_id": 8})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_Update_NoValidFields(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.users.On("FindUserByID", mock.Anything, int64(2)).Return(customerUser(), nil)

	w := serve(t, h.Update, adminCaller, http.MethodPut, userRoute, "/users/2",
		map[string]interface{}{"nickname": "jw"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No valid fields to update", errorMessage(t, w))
	m.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestUserHandler_Create(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.admins.On("FindAdminByID", mock.Anything, int64(3)).Return(&models.Admin{ID: 3}, nil)
	m.users.On("FindUserByProfile", mock.Anything, models.AdminProfile(3)).Return(nil, db.ErrNotFound)
	m.users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Profile() == models.AdminProfile(3) && u.Email == "ops@garage.com"
	})).Return(nil)

	w := serve(t, h.Create, adminCaller, http.MethodPost, "/users", "/users",
		map[string]interface{}{"email": "ops@garage.com", "password": "secret123", "role": "admin", "admin_id": 3})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestUserHandler_Create_UnknownProfile(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.admins.On("FindAdminByID", mock.Anything, int64(3)).Return(nil, db.ErrNotFound)

	w := serve(t, h.Create, adminCaller, http.MethodPost, "/users", "/users",
		map[string]interface{}{"email": "ops@garage.com", "password": "secret123", "role": "admin", "admin_id": 3})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid admin_id", errorMessage(t, w))
	m.users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
}

func TestUserHandler_Delete_Cascades(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	mechanicUser := models.NewUser("otieno@garage.com", "hash", models.MechanicProfile(4))
	mechanicUser.ID = 3
	m.users.On("FindUserByID", mock.Anything, int64(3)).Return(&mechanicUser, nil)
	m.mechanics.On("DeleteMechanic", mock.Anything, int64(4)).Return(nil)
	m.serviceRequests.On("UnassignMechanic", mock.Anything, int64(4)).Return(nil)
	m.users.On("DeleteUserByProfile", mock.Anything, models.MechanicProfile(4)).Return(nil)
	m.users.On("DeleteUser", mock.Anything, int64(3)).Return(db.ErrNotFound)

	w := serve(t, h.Delete, adminCaller, http.MethodDelete, userRoute, "/users/3", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "User and related records deleted successfully", decode(t, w)["message"])
	m.mechanics.AssertExpectations(t)
	m.serviceRequests.AssertExpectations(t)
	assert.Equal(t, 1, m.tx.calls)
}

func TestUserHandler_Delete_CustomerWithRequests(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.users.On("FindUserByID", mock.Anything, int64(2)).Return(customerUser(), nil)
	m.serviceRequests.On("CountServiceRequests", mock.Anything, db.ServiceRequestFilter{CustomerID: int64Ptr(7)}).
		Return(int64(1), nil)

	w := serve(t, h.Delete, adminCaller, http.MethodDelete, userRoute, "/users/2", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.customers.AssertNotCalled(t, "DeleteCustomer", mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestUserHandler_List_Empty(t *testing.T) {
	m := newMockStores()
	h := NewUserHandler(newTestAuthService(), m.stores())
	m.users.On("FindUsers", mock.Anything).Return([]models.User{}, nil)

	w := serve(t, h.List, adminCaller, http.MethodGet, "/users", "/users", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No users found", decode(t, w)["message"])
}
