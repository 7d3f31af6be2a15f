package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
)

var roles = []models.Role{models.RoleCustomer, models.RoleAdmin, models.RoleMechanic}

func profileKey(role models.Role) string { return string(role) + "_id" }

// UserHandler handles login accounts.
type UserHandler struct {
	authService *auth.Service
	stores      Stores
}

func NewUserHandler(authService *auth.Service, stores Stores) *UserHandler {
	return &UserHandler{authService: authService, stores: stores}
}

// resolveProfile works out the (role, profile) pair an update or create
// leaves the account with. current is zero for new accounts.
func (h *UserHandler) resolveProfile(ctx context.Context, p Payload, current models.Profile) (models.Profile, error) {
	role := current.Role()
	if p.Has("role") {
		s, err := p.String("role")
		if err != nil || !models.IsValidRole(models.Role(s)) {
			return models.Profile{}, invalidField("role", "Invalid role")
		}
		role = models.Role(s)
	}

	for _, other := range roles {
		if other != role && !p.isNull(profileKey(other)) {
			key := profileKey(other)
			return models.Profile{}, invalidField(key, key+" does not match role "+string(role))
		}
	}

	key := profileKey(role)
	if p.isNull(key) {
		if role == current.Role() && !current.IsZero() {
			return current, nil
		}
		return models.Profile{}, invalidField(key, "A "+key+" is required for role "+string(role))
	}
	id, err := p.ID(key)
	if err != nil {
		return models.Profile{}, err
	}
	profile, err := models.NewProfile(role, id)
	if err != nil {
		return models.Profile{}, invalidField(key, "Invalid "+key)
	}
	if profile == current {
		return profile, nil
	}

	if err := h.stores.profileExists(ctx, profile); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Profile{}, invalidField(key, "Invalid "+key)
		}
		return models.Profile{}, err
	}
	if _, err := h.stores.Users.FindUserByProfile(ctx, profile); err == nil {
		return models.Profile{}, apperr.Conflict("Another user is already linked to this " + string(role)).WithFields(key)
	} else if !errors.Is(err, db.ErrNotFound) {
		return models.Profile{}, err
	}
	return profile, nil
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.stores.Users.FindUsers(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	respondList(c, users, "No users found")
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c, "user_id")
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.stores.Users.FindUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create adds a login for an existing customer, admin or mechanic record.
func (h *UserHandler) Create(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := p.Require("email", "password", "role"); err != nil {
		respondError(c, err)
		return
	}
	email, err := p.Email("email")
	if err != nil {
		respondError(c, err)
		return
	}
	password, err := p.Password("password")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.resolveProfile(ctx, p, models.Profile{})
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	hash, err := h.authService.HashPassword(password)
	if err != nil {
		respondError(c, apperr.Internal("Failed to hash password", err))
		return
	}

	user := models.NewUser(email, hash, profile)
	if err := h.stores.Users.InsertUser(ctx, &user); err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c, "user_id")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.stores.Users.FindUserByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}

	updated := false
	if p.Has("email") {
		if user.Email, err = p.Email("email"); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("password") {
		password, err := p.Password("password")
		if err != nil {
			respondError(c, err)
			return
		}
		if user.PasswordHash, err = h.authService.HashPassword(password); err != nil {
			respondError(c, apperr.Internal("Failed to hash password", err))
			return
		}
		updated = true
	}
	profileFields := p.Has("role")
	for _, r := range roles {
		profileFields = profileFields || p.Has(profileKey(r))
	}
	if profileFields {
		profile, err := h.resolveProfile(ctx, p, user.Profile())
		if err != nil {
			respondError(c, storeError(err, "User"))
			return
		}
		user.SetProfile(profile)
		updated = true
	}
	if !updated {
		respondError(c, noValidFields())
		return
	}

	if err := h.stores.Users.UpdateUser(ctx, *user); err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a login together with the record it is linked to.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "user_id")
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		user, err := h.stores.Users.FindUserByID(ctx, id)
		if err != nil {
			return err
		}
		profile := user.Profile()
		switch profile.Role() {
		case models.RoleCustomer:
			err = h.stores.deleteCustomerRecords(ctx, profile.ID())
		case models.RoleMechanic:
			err = h.stores.deleteMechanicRecords(ctx, profile.ID())
		case models.RoleAdmin:
			err = h.stores.deleteAdminRecords(ctx, profile.ID())
		}
		if err := ignoreNotFound(err); err != nil {
			return err
		}
		return ignoreNotFound(h.stores.Users.DeleteUser(ctx, id))
	})
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User and related records deleted successfully"})
}
