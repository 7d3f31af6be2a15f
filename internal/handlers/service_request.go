package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
	"github.com/ukydev/mobile-garage/internal/notify"
)

// ServiceRequestHandler handles repair jobs.
type ServiceRequestHandler struct {
	stores   Stores
	notifier notify.Notifier
	now      func() time.Time
}

func NewServiceRequestHandler(stores Stores, notifier notify.Notifier) *ServiceRequestHandler {
	return &ServiceRequestHandler{stores: stores, notifier: notifier, now: time.Now}
}

// scope limits a listing to what the caller may see.
func scope(p models.Principal) (db.ServiceRequestFilter, bool) {
	switch p := p.(type) {
	case models.AdminPrincipal:
		return db.ServiceRequestFilter{}, true
	case models.CustomerPrincipal:
		return db.ServiceRequestFilter{CustomerID: &p.CustomerID}, true
	case models.MechanicPrincipal:
		return db.ServiceRequestFilter{MechanicID: &p.MechanicID}, true
	}
	return db.ServiceRequestFilter{}, false
}

func canViewServiceRequest(p models.Principal, r *models.ServiceRequest) bool {
	switch p := p.(type) {
	case models.AdminPrincipal:
		return true
	case models.CustomerPrincipal:
		return r.OwnedBy(p.CustomerID)
	case models.MechanicPrincipal:
		return r.AssignedTo(p.MechanicID)
	}
	return false
}

func (h *ServiceRequestHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	filter, ok := scope(p)
	if !ok {
		respondError(c, unauthorized())
		return
	}
	requests, err := h.stores.ServiceRequests.FindServiceRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}
	respondList(c, requests, "No service requests found")
}

func (h *ServiceRequestHandler) Get(c *gin.Context) {
	id, err := parseID(c, "request_id")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	req, err := h.stores.ServiceRequests.FindServiceRequestByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}
	if !canViewServiceRequest(p, req) {
		respondError(c, unauthorized())
		return
	}
	c.JSON(http.StatusOK, req)
}

// Create raises a request for the calling customer. The described vehicle
// is reused when the customer already has it on file.
func (h *ServiceRequestHandler) Create(c *gin.Context) {
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
	if err := p.Require("issue", "location", "vehicle_details"); err != nil {
		respondError(c, err)
		return
	}

	now := h.now().UTC()
	req := &models.ServiceRequest{
		Status:      models.StatusPending,
		RequestedAt: now,
		CustomerID:  cp.CustomerID,
	}
	if req.Issue, err = p.String("issue"); err != nil {
		respondError(c, err)
		return
	}
	if req.Location, err = p.String("location"); err != nil {
		respondError(c, err)
		return
	}
	details, err := p.Object("vehicle_details")
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := vehicleDetails(details, now)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		vehicle, err := h.stores.Vehicles.FindMatchingVehicle(ctx, cp.CustomerID, d.Make, d.Model, d.YearOfManufacture)
		if errors.Is(err, db.ErrNotFound) {
			vehicle = &models.Vehicle{
				Make:              d.Make,
				Model:             d.Model,
				YearOfManufacture: d.YearOfManufacture,
				CustomerID:        cp.CustomerID,
			}
			err = h.stores.Vehicles.InsertVehicle(ctx, vehicle)
		}
		if err != nil {
			return err
		}
		req.VehicleID = vehicle.ID
		return h.stores.ServiceRequests.InsertServiceRequest(ctx, req)
	})
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}
	c.JSON(http.StatusCreated, req)
}

// Update applies the fields the caller's role may write. A body with no
// service request field at all is a validation error; otherwise any field
// outside the role's set refuses the update as a whole.
func (h *ServiceRequestHandler) Update(c *gin.Context) {
	id, err := parseID(c, "request_id")
	if err != nil {
		respondError(c, err)
		return
	}
	pr, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	req, err := h.stores.ServiceRequests.FindServiceRequestByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}
	switch pr := pr.(type) {
	case models.AdminPrincipal:
	case models.CustomerPrincipal:
		if !req.OwnedBy(pr.CustomerID) {
			respondError(c, apperr.Forbidden("Unauthorized to update this request"))
			return
		}
	default:
		respondError(c, unauthorized())
		return
	}

	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.HasServiceRequestField(p.Keys()) {
		respondError(c, noValidFields())
		return
	}
	if bad := models.DisallowedFields(p.Keys(), models.WritableServiceRequestFields(pr)); len(bad) > 0 {
		respondError(c, apperr.Forbidden("Fields not permitted: "+strings.Join(bad, ", ")).WithFields(bad...))
		return
	}

	updated := *req
	changed, mechanic, err := h.apply(ctx, p, &updated)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.stores.ServiceRequests.UpdateServiceRequest(ctx, updated); err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}

	h.notify(ctx, notify.ServiceRequestUpdate{
		Request:        updated,
		Mechanic:       mechanic,
		Changed:        changed,
		PreviousStatus: req.Status,
		ChangedBy:      pr.Role(),
	})
	c.JSON(http.StatusOK, updated)
}

// apply copies the payload onto r in a fixed order so that an explicit
// completed_at wins over the stamp set by a status change. It returns the
// changed fields and, when mechanic_id was set, the assigned mechanic.
func (h *ServiceRequestHandler) apply(ctx context.Context, p Payload, r *models.ServiceRequest) ([]string, *models.Mechanic, error) {
	var changed []string
	var mechanic *models.Mechanic

	if p.Has("mechanic_id") {
		id, err := p.NullID("mechanic_id")
		if err != nil {
			return nil, nil, invalidField("mechanic_id", "Invalid mechanic_id")
		}
		r.MechanicID = id.Ptr()
		if id.Valid {
			mechanic, err = h.stores.Mechanics.FindMechanicByID(ctx, id.Int64)
			if errors.Is(err, db.ErrNotFound) {
				return nil, nil, invalidField("mechanic_id", "Invalid mechanic_id")
			}
			if err != nil {
				return nil, nil, storeError(err, "Mechanic")
			}
		}
		changed = append(changed, "mechanic_id")
	}
	if p.Has("status") {
		status, err := p.NonEmptyString("status", "Status")
		if err != nil {
			return nil, nil, err
		}
		r.SetStatus(status, h.now())
		changed = append(changed, "status")
	}
	if p.Has("issue") {
		issue, err := p.NonEmptyString("issue", "Issue")
		if err != nil {
			return nil, nil, err
		}
		r.Issue = issue
		changed = append(changed, "issue")
	}
	if p.Has("location") {
		location, err := p.NonEmptyString("location", "Location")
		if err != nil {
			return nil, nil, err
		}
		r.Location = location
		changed = append(changed, "location")
	}
	if p.Has("vehicle_id") {
		id, err := p.ID("vehicle_id")
		if err != nil {
			return nil, nil, err
		}
		vehicle, err := h.stores.Vehicles.FindVehicleByID(ctx, id)
		if errors.Is(err, db.ErrNotFound) || (err == nil && vehicle.CustomerID != r.CustomerID) {
			return nil, nil, invalidField("vehicle_id", "Invalid vehicle_id")
		}
		if err != nil {
			return nil, nil, storeError(err, "Vehicle")
		}
		r.VehicleID = id
		changed = append(changed, "vehicle_id")
	}
	if p.Has("requested_at") {
		t, err := p.NullTime("requested_at")
		if err != nil {
			return nil, nil, err
		}
		if !t.Valid {
			return nil, nil, invalidField("requested_at", "requested_at cannot be null")
		}
		r.RequestedAt = t.Time
		changed = append(changed, "requested_at")
	}
	if p.Has("completed_at") {
		t, err := p.NullTime("completed_at")
		if err != nil {
			return nil, nil, err
		}
		r.CompletedAt = t.Ptr()
		changed = append(changed, "completed_at")
	}
	return changed, mechanic, nil
}

// notify looks up the customer's contact details and hands the update to
// the notifier. Lookup failures only cost the e-mail.
func (h *ServiceRequestHandler) notify(ctx context.Context, u notify.ServiceRequestUpdate) {
	logger := log.WithField("service_request_id", u.Request.ID)
	if customer, err := h.stores.Customers.FindCustomerByID(ctx, u.Request.CustomerID); err == nil {
		u.Customer = *customer
	} else {
		logger.WithError(err).Warn("notification: customer lookup failed")
	}
	if user, err := h.stores.Users.FindUserByProfile(ctx, models.CustomerProfile(u.Request.CustomerID)); err == nil {
		u.CustomerEmail = user.Email
	} else {
		logger.WithError(err).Warn("notification: customer login lookup failed")
	}
	h.notifier.NotifyServiceRequestUpdate(u)
}

// Delete removes a request and its ledger rows.
func (h *ServiceRequestHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "request_id")
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.stores.Ledger.DeleteUsagesByServiceRequest(ctx, id); err != nil {
			return err
		}
		return h.stores.ServiceRequests.DeleteServiceRequest(ctx, id)
	})
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service request deleted successfully"})
}
