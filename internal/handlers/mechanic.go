package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/models"
)

// MechanicHandler handles mechanic records and their logins.
type MechanicHandler struct {
	authService *auth.Service
	stores      Stores
}

func NewMechanicHandler(authService *auth.Service, stores Stores) *MechanicHandler {
	return &MechanicHandler{authService: authService, stores: stores}
}

// specialtyKey returns the payload key carrying the specialty. Older
// clients send "speciality".
func specialtyKey(p Payload) string {
	if !p.Has("specialty") && p.Has("speciality") {
		return "speciality"
	}
	return "specialty"
}

// applyMechanicFields copies the optional mechanic attributes present in p.
// It reports whether any were present.
func applyMechanicFields(p Payload, m *models.Mechanic) (bool, error) {
	var err error
	applied := false
	if p.Has("experience_years") {
		if m.ExperienceYears, err = p.Int("experience_years"); err != nil || m.ExperienceYears < 0 {
			return false, invalidField("experience_years", "Experience years must be a non-negative integer")
		}
		applied = true
	}
	if p.Has("status") {
		status, err := p.String("status")
		if err != nil || !models.IsValidMechanicStatus(status) {
			return false, invalidField("status", "Status must be Available or Unavailable")
		}
		m.Status = status
		applied = true
	}
	if p.Has("rating") {
		rating, err := p.NullFloat("rating")
		if err != nil || (rating.Valid && (rating.Float64 < 0 || rating.Float64 > 5)) {
			return false, invalidField("rating", "Rating must be between 0 and 5")
		}
		m.Rating = rating.Ptr()
		applied = true
	}
	return applied, nil
}

func (h *MechanicHandler) List(c *gin.Context) {
	mechanics, err := h.stores.Mechanics.FindMechanics(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}
	respondList(c, mechanics, "No mechanics found")
}

// Get returns a mechanic to admins or to the mechanic themself.
func (h *MechanicHandler) Get(c *gin.Context) {
	id, err := parseID(c, "mechanic_id")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	switch p := p.(type) {
	case models.AdminPrincipal:
	case models.MechanicPrincipal:
		if p.MechanicID != id {
			respondError(c, unauthorized())
			return
		}
	default:
		respondError(c, unauthorized())
		return
	}

	mechanic, err := h.stores.Mechanics.FindMechanicByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}
	c.JSON(http.StatusOK, mechanic)
}

// Create adds a mechanic and its login in one transaction.
func (h *MechanicHandler) Create(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	specKey := specialtyKey(p)
	if err := p.Require("name", specKey, "location", "phone_number", "email", "password"); err != nil {
		respondError(c, err)
		return
	}

	mechanic := &models.Mechanic{Status: models.MechanicAvailable}
	if mechanic.Name, err = p.String("name"); err != nil {
		respondError(c, err)
		return
	}
	if mechanic.Specialty, err = p.String(specKey); err != nil {
		respondError(c, err)
		return
	}
	if mechanic.Location, err = p.String("location"); err != nil {
		respondError(c, err)
		return
	}
	if mechanic.PhoneNumber, err = p.Phone("phone_number"); err != nil {
		respondError(c, err)
		return
	}
	if mechanic.Email, err = p.Email("email"); err != nil {
		respondError(c, err)
		return
	}
	if _, err := applyMechanicFields(p, mechanic); err != nil {
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
		if err := h.stores.Mechanics.InsertMechanic(ctx, mechanic); err != nil {
			return err
		}
		user := models.NewUser(mechanic.Email, hash, models.MechanicProfile(mechanic.ID))
		return h.stores.Users.InsertUser(ctx, &user)
	})
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}
	c.JSON(http.StatusCreated, mechanic)
}

// Update changes a mechanic. A new email is applied to the login as well.
func (h *MechanicHandler) Update(c *gin.Context) {
	id, err := parseID(c, "mechanic_id")
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
	mechanic, err := h.stores.Mechanics.FindMechanicByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}

	updated := false
	text := []struct {
		key, label string
		dst        *string
	}{
		{"name", "Name", &mechanic.Name},
		{specialtyKey(p), "Specialty", &mechanic.Specialty},
		{"location", "Location", &mechanic.Location},
	}
	for _, f := range text {
		if !p.Has(f.key) {
			continue
		}
		if *f.dst, err = p.NonEmptyString(f.key, f.label); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("phone_number") {
		if mechanic.PhoneNumber, err = p.Phone("phone_number"); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	emailChanged := false
	if p.Has("email") {
		email, err := p.Email("email")
		if err != nil {
			respondError(c, err)
			return
		}
		emailChanged = email != mechanic.Email
		mechanic.Email = email
		updated = true
	}
	applied, err := applyMechanicFields(p, mechanic)
	if err != nil {
		respondError(c, err)
		return
	}
	if !updated && !applied {
		respondError(c, noValidFields())
		return
	}

	err = h.stores.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.stores.Mechanics.UpdateMechanic(ctx, *mechanic); err != nil {
			return err
		}
		if !emailChanged {
			return nil
		}
		user, err := h.stores.Users.FindUserByProfile(ctx, models.MechanicProfile(id))
		if err != nil {
			return ignoreNotFound(err)
		}
		user.Email = mechanic.Email
		return h.stores.Users.UpdateUser(ctx, *user)
	})
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}
	c.JSON(http.StatusOK, mechanic)
}

// Delete removes a mechanic and its login and unassigns its requests.
func (h *MechanicHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "mechanic_id")
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.stores.deleteMechanicRecords(ctx, id)
	})
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mechanic deleted successfully"})
}
