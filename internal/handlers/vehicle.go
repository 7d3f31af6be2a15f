package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
)

// Earliest accepted year_of_manufacture.
const minVehicleYear = 1886

// VehicleHandler handles customer vehicles.
type VehicleHandler struct {
	stores Stores
	now    func() time.Time
}

func NewVehicleHandler(stores Stores) *VehicleHandler {
	return &VehicleHandler{stores: stores, now: time.Now}
}

// Year reads a year of manufacture given as a number or a digit string.
func (p Payload) Year(key string, now time.Time) (int, error) {
	year, err := p.Int(key)
	if err != nil {
		s, serr := p.String(key)
		if serr != nil {
			return 0, invalidField(key, "Invalid year format")
		}
		if year, err = strconv.Atoi(s); err != nil {
			return 0, invalidField(key, "Invalid year format")
		}
	}
	if year < minVehicleYear || year > now.Year()+1 {
		return 0, invalidField(key, "Invalid year format")
	}
	return year, nil
}

// vehicleDetails reads make, model and year_of_manufacture from p.
func vehicleDetails(p Payload, now time.Time) (models.VehicleDetails, error) {
	var d models.VehicleDetails
	if err := p.Require("make", "model", "year_of_manufacture"); err != nil {
		return d, err
	}
	var err error
	if d.Make, err = p.String("make"); err != nil {
		return d, err
	}
	if d.Model, err = p.String("model"); err != nil {
		return d, err
	}
	if d.YearOfManufacture, err = p.Year("year_of_manufacture", now); err != nil {
		return d, err
	}
	d.Make = models.CanonicalName(d.Make)
	d.Model = models.CanonicalName(d.Model)
	return d, nil
}

func (h *VehicleHandler) List(c *gin.Context) {
	vehicles, err := h.stores.Vehicles.FindVehicles(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	respondList(c, vehicles, "No vehicles found")
}

// ListByCustomer lists the caller's own vehicles.
func (h *VehicleHandler) ListByCustomer(c *gin.Context) {
	id, err := parseID(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if cp, ok := p.(models.CustomerPrincipal); !ok || cp.CustomerID != id {
		respondError(c, apperr.Forbidden("You can only access your own vehicles"))
		return
	}

	vehicles, err := h.stores.Vehicles.FindVehiclesByCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	respondList(c, vehicles, "No vehicles found for this customer")
}

func (h *VehicleHandler) Get(c *gin.Context) {
	id, err := parseID(c, "vehicle_id")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	vehicle, err := h.stores.Vehicles.FindVehicleByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	if !canAccessCustomer(p, vehicle.CustomerID) {
		respondError(c, unauthorized())
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// Create adds a vehicle for the calling customer, returning the existing
// record when the same make, model and year is already registered.
func (h *VehicleHandler) Create(c *gin.Context) {
	pr, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cp, ok := pr.(models.CustomerPrincipal)
	if !ok {
		respondError(c, unauthorized())
		return
	}
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := vehicleDetails(p, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, err := h.stores.Vehicles.FindMatchingVehicle(ctx, cp.CustomerID, d.Make, d.Model, d.YearOfManufacture)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"exists": true, "message": "Vehicle already exists", "vehicle": existing})
		return
	case !errors.Is(err, db.ErrNotFound):
		respondError(c, storeError(err, "Vehicle"))
		return
	}

	vehicle := &models.Vehicle{
		Make:              d.Make,
		Model:             d.Model,
		YearOfManufacture: d.YearOfManufacture,
		CustomerID:        cp.CustomerID,
	}
	if err := h.stores.Vehicles.InsertVehicle(ctx, vehicle); err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exists": false, "message": "Vehicle added successfully", "vehicle": vehicle})
}

// Update changes a vehicle owned by the calling customer.
func (h *VehicleHandler) Update(c *gin.Context) {
	id, err := parseID(c, "vehicle_id")
	if err != nil {
		respondError(c, err)
		return
	}
	pr, err := principal(c)
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
	vehicle, err := h.stores.Vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	if cp, ok := pr.(models.CustomerPrincipal); !ok || vehicle.CustomerID != cp.CustomerID {
		respondError(c, unauthorized())
		return
	}

	updated := false
	if p.Has("make") {
		s, err := p.NonEmptyString("make", "Make")
		if err != nil {
			respondError(c, err)
			return
		}
		vehicle.Make = models.CanonicalName(s)
		updated = true
	}
	if p.Has("model") {
		s, err := p.NonEmptyString("model", "Model")
		if err != nil {
			respondError(c, err)
			return
		}
		vehicle.Model = models.CanonicalName(s)
		updated = true
	}
	if p.Has("year_of_manufacture") {
		if vehicle.YearOfManufacture, err = p.Year("year_of_manufacture", h.now()); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if !updated {
		respondError(c, noValidFields())
		return
	}

	if err := h.stores.Vehicles.UpdateVehicle(ctx, *vehicle); err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// Delete removes a vehicle no service request refers to.
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "vehicle_id")
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	n, err := h.stores.ServiceRequests.CountServiceRequests(ctx, db.ServiceRequestFilter{VehicleID: &id})
	if err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	if n > 0 {
		respondError(c, apperr.Validation("Cannot delete: vehicle is linked to service requests"))
		return
	}
	if err := h.stores.Vehicles.DeleteVehicle(ctx, id); err != nil {
		respondError(c, storeError(err, "Vehicle"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}
