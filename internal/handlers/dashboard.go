package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
)

// DashboardHandler serves aggregate counts for the admin and mechanic
// dashboards.
type DashboardHandler struct {
	stores Stores
}

func NewDashboardHandler(stores Stores) *DashboardHandler {
	return &DashboardHandler{stores: stores}
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalCustomers       int64            `json:"total_customers"`
	TotalVehicles        int64            `json:"total_vehicles"`
	TotalMechanics       int64            `json:"total_mechanics"`
	AvailableMechanics   int64            `json:"available_mechanics"`
	TotalServiceRequests int64            `json:"total_service_requests"`
	RequestsByStatus     map[string]int64 `json:"service_requests_by_status"`
	PendingRequests      int64            `json:"pending_requests"`
	InProgressRequests   int64            `json:"in_progress_requests"`
	CompletedRequests    int64            `json:"completed_requests"`
	TotalInventoryItems  int64            `json:"total_inventory_items"`
	LowStockItems        int64            `json:"low_stock_items"`
}

// MechanicDashboard is a mechanic's own overview.
type MechanicDashboard struct {
	Mechanic         *models.Mechanic        `json:"mechanic"`
	AssignedRequests int64                   `json:"assigned_requests"`
	RequestsByStatus map[string]int64        `json:"service_requests_by_status"`
	OpenRequests     []models.ServiceRequest `json:"open_requests"`
}

// statusCount totals the counts whose status matches name, ignoring case.
func statusCount(byStatus map[string]int64, name string) int64 {
	var n int64
	for status, count := range byStatus {
		if strings.EqualFold(strings.TrimSpace(status), name) {
			n += count
		}
	}
	return n
}

func (h *DashboardHandler) collectStats(ctx context.Context) (*DashboardStats, error) {
	var (
		s   DashboardStats
		err error
	)
	if s.TotalCustomers, err = h.stores.Customers.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if s.TotalVehicles, err = h.stores.Vehicles.CountVehicles(ctx); err != nil {
		return nil, err
	}
	if s.TotalMechanics, err = h.stores.Mechanics.CountMechanics(ctx, ""); err != nil {
		return nil, err
	}
	if s.AvailableMechanics, err = h.stores.Mechanics.CountMechanics(ctx, models.MechanicAvailable); err != nil {
		return nil, err
	}
	if s.RequestsByStatus, err = h.stores.ServiceRequests.CountServiceRequestsByStatus(ctx, db.ServiceRequestFilter{}); err != nil {
		return nil, err
	}
	for _, n := range s.RequestsByStatus {
		s.TotalServiceRequests += n
	}
	s.PendingRequests = statusCount(s.RequestsByStatus, models.StatusPending)
	s.InProgressRequests = statusCount(s.RequestsByStatus, models.StatusInProgress)
	s.CompletedRequests = statusCount(s.RequestsByStatus, models.StatusCompleted)
	if s.TotalInventoryItems, err = h.stores.Inventories.CountInventories(ctx); err != nil {
		return nil, err
	}
	if s.LowStockItems, err = h.stores.Inventories.CountLowStock(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

// Stats returns the admin overview.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.collectStats(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Mechanic returns the calling mechanic's profile and workload.
func (h *DashboardHandler) Mechanic(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	mp, ok := p.(models.MechanicPrincipal)
	if !ok {
		respondError(c, unauthorized())
		return
	}

	ctx := c.Request.Context()
	mechanic, err := h.stores.Mechanics.FindMechanicByID(ctx, mp.MechanicID)
	if err != nil {
		respondError(c, storeError(err, "Mechanic"))
		return
	}
	filter := db.ServiceRequestFilter{MechanicID: &mp.MechanicID}
	byStatus, err := h.stores.ServiceRequests.CountServiceRequestsByStatus(ctx, filter)
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}
	requests, err := h.stores.ServiceRequests.FindServiceRequests(ctx, filter)
	if err != nil {
		respondError(c, storeError(err, "Service request"))
		return
	}

	out := MechanicDashboard{
		Mechanic:         mechanic,
		RequestsByStatus: byStatus,
		OpenRequests:     []models.ServiceRequest{},
	}
	for _, n := range byStatus {
		out.AssignedRequests += n
	}
	for _, r := range requests {
		if !models.IsCompletedStatus(r.Status) {
			out.OpenRequests = append(out.OpenRequests, r)
		}
	}
	c.JSON(http.StatusOK, out)
}
