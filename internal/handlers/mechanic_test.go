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

const mechanicRoute = "/mechanics/:mechanic_id"

func newMechanicBody() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Otieno",
		"specialty":    "Electrical",
		"location":     "Westlands",
		"phone_number": "0712345678",
		"email":        "Otieno@Garage.com",
		"password":     "spanner1",
	}
}

func TestMechanicHandler_Create(t *testing.T) {
	m := newMockStores()
	authService := newTestAuthService()
	h := NewMechanicHandler(authService, m.stores())
	m.mechanics.On("InsertMechanic", mock.Anything, mock.MatchedBy(func(mech *models.Mechanic) bool {
		return mech.Email == "otieno@garage.com" && mech.Status == models.MechanicAvailable
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Mechanic).ID = 4
	}).Return(nil)
	m.users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Profile() == models.MechanicProfile(4) &&
			u.Email == "otieno@garage.com" &&
			authService.CheckPassword("spanner1", u.PasswordHash)
	})).Return(nil)

	w := serve(t, h.Create, adminCaller, http.MethodPost, "/mechanics", "/mechanics", newMechanicBody())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(4), decode(t, w)["id"])
	assert.Equal(t, 1, m.tx.calls)
	m.users.AssertExpectations(t)
}

func TestMechanicHandler_Create_SpecialityAlias(t *testing.T) {
	m := newMockStores()
	h := NewMechanicHandler(newTestAuthService(), m.stores())
	m.mechanics.On("InsertMechanic", mock.Anything, mock.MatchedBy(func(mech *models.Mechanic) bool {
		return mech.Specialty == "Suspension"
	})).Return(nil)
	m.users.On("InsertUser", mock.Anything, mock.Anything).Return(nil)

	body := newMechanicBody()
	delete(body, "specialty")
	body["speciality"] = "Suspension"
	w := serve(t, h.Create, adminCaller, http.MethodPost, "/mechanics", "/mechanics", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestMechanicHandler_Create_Duplicate(t *testing.T) {
	for _, field := range []string{"email", "phone_number", "name"} {
		t.Run(field, func(t *testing.T) {
			m := newMockStores()
			h := NewMechanicHandler(newTestAuthService(), m.stores())
			m.mechanics.On("InsertMechanic", mock.Anything, mock.Anything).
				Return(&db.DuplicateKeyError{Collection: "mechanics", Field: field})

			w := serve(t, h.Create, adminCaller, http.MethodPost, "/mechanics", "/mechanics", newMechanicBody())

			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, []string{field}, errorFields(t, w))
			m.users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
		})
	}
}

func TestMechanicHandler_Create_InvalidRating(t *testing.T) {
	m := newMockStores()
	h := NewMechanicHandler(newTestAuthService(), m.stores())

	body := newMechanicBody()
	body["rating"] = 7
	w := serve(t, h.Create, adminCaller, http.MethodPost, "/mechanics", "/mechanics", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"rating"}, errorFields(t, w))
}

func TestMechanicHandler_Update_NoValidFields(t *testing.T) {
	m := newMockStores()
	h := NewMechanicHandler(newTestAuthService(), m.stores())
	m.mechanics.On("FindMechanicByID", mock.Anything, int64(4)).Return(&models.Mechanic{ID: 4, Name: "Otieno"}, nil)

	w := serve(t, h.Update, adminCaller, http.MethodPut, mechanicRoute, "/mechanics/4",
		map[string]interface{}{"favourite_tool": "spanner"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No valid fields to update", errorMessage(t, w))
	m.mechanics.AssertNotCalled(t, "UpdateMechanic", mock.Anything, mock.Anything)
}

func TestMechanicHandler_Update_EmailFollowsLogin(t *testing.T) {
	m := newMockStores()
	h := NewMechanicHandler(newTestAuthService(), m.stores())
	m.mechanics.On("FindMechanicByID", mock.Anything, int64(4)).
		Return(&models.Mechanic{ID: 4, Name: "Otieno", Email: "old@garage.com"}, nil)
	m.mechanics.On("UpdateMechanic", mock.Anything, mock.MatchedBy(func(mech models.Mechanic) bool {
		return mech.Email == "new@garage.com" && mech.Status == models.MechanicUnavailable
	})).Return(nil)
	user := models.NewUser("old@garage.com", "hash", models.MechanicProfile(4))
	user.ID = 3
	m.users.On("FindUserByProfile", mock.Anything, models.MechanicProfile(4)).Return(&user, nil)
	m.users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.ID == 3 && u.Email == "new@garage.com"
	})).Return(nil)

	w := serve(t, h.Update, adminCaller, http.MethodPut, mechanicRoute, "/mechanics/4",
		map[string]interface{}{"email": "new@garage.com", "status": models.MechanicUnavailable})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m.users.AssertExpectations(t)
}

func TestMechanicHandler_Delete(t *testing.T) {
	m := newMockStores()
	h := NewMechanicHandler(newTestAuthService(), m.stores())
	m.mechanics.On("DeleteMechanic", mock.Anything, int64(4)).Return(nil)
	m.serviceRequests.On("UnassignMechanic", mock.Anything, int64(4)).Return(nil)
	m.users.On("DeleteUserByProfile", mock.Anything, models.MechanicProfile(4)).Return(nil)

	w := serve(t, h.Delete, adminCaller, http.MethodDelete, mechanicRoute, "/mechanics/4", nil)

	require.Equal(t, http.StatusOK, w.Code)
	m.serviceRequests.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

func TestMechanicHandler_Get(t *testing.T) {
	tests := []struct {
		name   string
		caller models.Principal
		status int
	}{
		{"admin", adminCaller, http.StatusOK},
		{"self", mechanicCaller, http.StatusOK},
		{"other mechanic", models.MechanicPrincipal{User: 9, MechanicID: 5}, http.StatusForbidden},
		{"customer", customerCaller, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockStores()
			h := NewMechanicHandler(newTestAuthService(), m.stores())
			m.mechanics.On("FindMechanicByID", mock.Anything, int64(4)).Return(&models.Mechanic{ID: 4}, nil)

			w := serve(t, h.Get, tt.caller, http.MethodGet, mechanicRoute, "/mechanics/4", nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
