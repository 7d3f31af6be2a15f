package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/middleware"
	"github.com/ukydev/mobile-garage/internal/models"
	"github.com/ukydev/mobile-garage/internal/notify"
)

// AuthHandler handles signup, login, logout and the caller's own account.
type AuthHandler struct {
	authService *auth.Service
	stores      Stores
	notifier    notify.Notifier
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, stores Stores, notifier notify.Notifier) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stores:      stores,
		notifier:    notifier,
	}
}

// Signup registers a customer and its login in one transaction.
func (h *AuthHandler) Signup(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := p.Require("name", "phone_number", "location", "email", "password"); err != nil {
		respondError(c, err)
		return
	}

	req := models.SignupRequest{}
	if req.Name, err = p.String("name"); err != nil {
		respondError(c, err)
		return
	}
	if req.Location, err = p.String("location"); err != nil {
		respondError(c, err)
		return
	}
	if req.PhoneNumber, err = p.Phone("phone_number"); err != nil {
		respondError(c, err)
		return
	}
	if req.Email, err = p.Email("email"); err != nil {
		respondError(c, err)
		return
	}
	if req.Password, err = p.Password("password"); err != nil {
		respondError(c, err)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondError(c, apperr.Internal("Failed to hash password", err))
		return
	}

	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		customer := &models.Customer{
			Name:        req.Name,
			PhoneNumber: req.PhoneNumber,
			Location:    req.Location,
		}
		if err := h.stores.Customers.InsertCustomer(ctx, customer); err != nil {
			return err
		}
		user := models.NewUser(req.Email, hash, models.CustomerProfile(customer.ID))
		return h.stores.Users.InsertUser(ctx, &user)
	})
	if err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}

	h.notifier.NotifyWelcome(req.Email, req.Name)
	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully. Please log in."})
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid JSON"))
		return
	}
	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		respondError(c, apperr.Validation("Email and password required"))
		return
	}

	user, err := h.stores.Users.FindUserByEmail(c.Request.Context(), email)
	if errors.Is(err, db.ErrNotFound) {
		respondError(c, apperr.Unauthenticated("Invalid email or password"))
		return
	}
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		respondError(c, apperr.Unauthenticated("Invalid email or password"))
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(c, apperr.Internal("Failed to generate token", err))
		return
	}

	if err := h.stores.Users.UpdateLastLogin(c.Request.Context(), user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("failed to update last login")
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		Role:        user.Role,
		UserID:      user.ID,
	})
}

// Logout revokes the presented token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, apperr.Unauthenticated("User context not found"))
		return
	}
	if err := h.authService.Revoke(c.Request.Context(), claims); err != nil {
		respondError(c, apperr.Internal("Failed to revoke token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Me returns the caller's account merged with its profile name.
func (h *AuthHandler) Me(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	user, err := h.stores.Users.FindUserByID(ctx, p.UserID())
	if err != nil {
		respondError(c, storeError(err, "User"))
		return
	}
	name, err := h.stores.profileName(ctx, user.Profile())
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		respondError(c, storeError(err, "Profile"))
		return
	}

	out, err := userView(user)
	if err != nil {
		respondError(c, apperr.Internal("Failed to encode user", err))
		return
	}
	out["name"] = name
	c.JSON(http.StatusOK, out)
}

// userView renders a user as a mutable JSON object.
func userView(u *models.User) (map[string]interface{}, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
