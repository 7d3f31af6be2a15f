package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/models"
)

// AdminHandler handles administrator records and their logins.
type AdminHandler struct {
	authService *auth.Service
	stores      Stores
}

func NewAdminHandler(authService *auth.Service, stores Stores) *AdminHandler {
	return &AdminHandler{authService: authService, stores: stores}
}

type adminView struct {
	models.Admin
	Email string `json:"email,omitempty"`
}

// self checks that the caller is the admin identified by the path.
func (h *AdminHandler) self(c *gin.Context) (int64, error) {
	id, err := parseID(c, "admin_id")
	if err != nil {
		return 0, err
	}
	p, err := principal(c)
	if err != nil {
		return 0, err
	}
	if ap, ok := p.(models.AdminPrincipal); !ok || ap.AdminID != id {
		return 0, unauthorized()
	}
	return id, nil
}

func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.stores.Admins.FindAdmins(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Admin"))
		return
	}
	respondList(c, admins, "No admins found")
}

// Get returns the caller's own admin record.
func (h *AdminHandler) Get(c *gin.Context) {
	id, err := h.self(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	admin, err := h.stores.Admins.FindAdminByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Admin"))
		return
	}
	view := adminView{Admin: *admin}
	if user, err := h.stores.Users.FindUserByProfile(ctx, models.AdminProfile(id)); err == nil {
		view.Email = user.Email
	}
	c.JSON(http.StatusOK, view)
}

// Create adds an admin and its login in one transaction.
func (h *AdminHandler) Create(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := p.Require("name", "phone_number", "email", "password"); err != nil {
		respondError(c, err)
		return
	}

	admin := &models.Admin{}
	if admin.Name, err = p.String("name"); err != nil {
		respondError(c, err)
		return
	}
	if admin.PhoneNumber, err = p.Phone("phone_number"); err != nil {
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
	hash, err := h.authService.HashPassword(password)
	if err != nil {
		respondError(c, apperr.Internal("Failed to hash password", err))
		return
	}

	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.stores.Admins.InsertAdmin(ctx, admin); err != nil {
			return err
		}
		user := models.NewUser(email, hash, models.AdminProfile(admin.ID))
		return h.stores.Users.InsertUser(ctx, &user)
	})
	if err != nil {
		respondError(c, storeError(err, "Admin"))
		return
	}
	c.JSON(http.StatusCreated, adminView{Admin: *admin, Email: email})
}

// Update changes the caller's admin record and, for email or password, the
// linked login. role is accepted only when it stays "admin".
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := h.self(c)
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
	admin, err := h.stores.Admins.FindAdminByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Admin"))
		return
	}

	recognized := false
	if p.Has("name") {
		if admin.Name, err = p.NonEmptyString("name", "Name"); err != nil {
			respondError(c, err)
			return
		}
		recognized = true
	}
	if p.Has("phone_number") {
		if admin.PhoneNumber, err = p.Phone("phone_number"); err != nil {
			respondError(c, err)
			return
		}
		recognized = true
	}
	if p.Has("role") {
		role, err := p.String("role")
		if err != nil || models.Role(role) != models.RoleAdmin {
			respondError(c, invalidField("role", "Invalid role"))
			return
		}
		recognized = true
	}

	var email, hash string
	if p.Has("email") {
		if email, err = p.Email("email"); err != nil {
			respondError(c, err)
			return
		}
		recognized = true
	}
	if p.Has("password") {
		password, err := p.Password("password")
		if err != nil {
			respondError(c, err)
			return
		}
		if hash, err = h.authService.HashPassword(password); err != nil {
			respondError(c, apperr.Internal("Failed to hash password", err))
			return
		}
		recognized = true
	}
	if !recognized {
		respondError(c, noValidFields())
		return
	}

	err = h.stores.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.stores.Admins.UpdateAdmin(ctx, *admin); err != nil {
			return err
		}
		if email == "" && hash == "" {
			return nil
		}
		user, err := h.stores.Users.FindUserByProfile(ctx, models.AdminProfile(id))
		if err != nil {
			return storeError(err, "User")
		}
		if email != "" {
			user.Email = email
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		return h.stores.Users.UpdateUser(ctx, *user)
	})
	if err != nil {
		respondError(c, storeError(err, "Admin"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin updated successfully", "admin": admin})
}

// Delete removes the caller's admin record and login.
func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := h.self(c)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.stores.deleteAdminRecords(ctx, id)
	})
	if err != nil {
		respondError(c, storeError(err, "Admin"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully"})
}
