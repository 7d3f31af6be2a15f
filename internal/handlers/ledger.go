package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LedgerHandler records inventory consumed by service requests.
type LedgerHandler struct {
	stores Stores
}

func NewLedgerHandler(stores Stores) *LedgerHandler {
	return &LedgerHandler{stores: stores}
}

func usedQuantity(p Payload) (int, error) {
	n, err := p.Int("used_quantity")
	if err != nil || n <= 0 {
		return 0, invalidField("used_quantity", "Used quantity must be a positive integer")
	}
	return n, nil
}

// checkRefs verifies that the service request and inventory item exist.
func (h *LedgerHandler) checkRefs(ctx context.Context, serviceRequestID, inventoryID int64) error {
	if _, err := h.stores.ServiceRequests.FindServiceRequestByID(ctx, serviceRequestID); err != nil {
		return storeError(err, "Service request")
	}
	if _, err := h.stores.Inventories.FindInventoryByID(ctx, inventoryID); err != nil {
		return storeError(err, "Inventory item")
	}
	return nil
}

// Create adds used quantity to the (service request, inventory) row,
// inserting it on first use.
func (h *LedgerHandler) Create(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := p.Require("service_request_id", "inventory_id", "used_quantity"); err != nil {
		respondError(c, err)
		return
	}
	srID, err := p.ID("service_request_id")
	if err != nil {
		respondError(c, err)
		return
	}
	invID, err := p.ID("inventory_id")
	if err != nil {
		respondError(c, err)
		return
	}
	qty, err := usedQuantity(p)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.checkRefs(ctx, srID, invID); err != nil {
		respondError(c, err)
		return
	}
	row, created, err := h.stores.Ledger.AddUsage(ctx, srID, invID, qty)
	if err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, row)
}

func (h *LedgerHandler) List(c *gin.Context) {
	rows, err := h.stores.Ledger.FindUsages(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}
	respondList(c, rows, "No service request inventory records found")
}

func (h *LedgerHandler) Get(c *gin.Context) {
	id, err := parseID(c, "sri_id")
	if err != nil {
		respondError(c, err)
		return
	}
	row, err := h.stores.Ledger.FindUsageByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *LedgerHandler) Update(c *gin.Context) {
	id, err := parseID(c, "sri_id")
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
	row, err := h.stores.Ledger.FindUsageByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}

	updated := *row
	if p.Has("service_request_id") {
		if updated.ServiceRequestID, err = p.ID("service_request_id"); err != nil {
			respondError(c, err)
			return
		}
	}
	if p.Has("inventory_id") {
		if updated.InventoryID, err = p.ID("inventory_id"); err != nil {
			respondError(c, err)
			return
		}
	}
	if p.Has("used_quantity") {
		if updated.UsedQuantity, err = usedQuantity(p); err != nil {
			respondError(c, err)
			return
		}
	}
	if !p.Has("service_request_id") && !p.Has("inventory_id") && !p.Has("used_quantity") {
		respondError(c, noValidFields())
		return
	}
	if updated.ServiceRequestID != row.ServiceRequestID || updated.InventoryID != row.InventoryID {
		if err := h.checkRefs(ctx, updated.ServiceRequestID, updated.InventoryID); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.stores.Ledger.UpdateUsage(ctx, updated); err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *LedgerHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "sri_id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.stores.Ledger.DeleteUsage(c.Request.Context(), id); err != nil {
		respondError(c, storeError(err, "Record"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}
