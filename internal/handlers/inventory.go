package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/models"
)

// InventoryHandler handles stocked parts. Create and update bodies wrap the
// fields in an "inventory" object.
type InventoryHandler struct {
	stores Stores
}

func NewInventoryHandler(stores Stores) *InventoryHandler {
	return &InventoryHandler{stores: stores}
}

func inventoryQuantity(p Payload) (int, error) {
	n, err := p.Int("quantity")
	if err != nil || n < 0 {
		return 0, invalidField("quantity", "Quantity must be a non-negative integer")
	}
	return n, nil
}

func inventoryPrice(p Payload) (float64, error) {
	f, err := p.Float("price")
	if err != nil || f < 0 {
		return 0, invalidField("price", "Price must be a non-negative number")
	}
	return f, nil
}

func inventoryThreshold(p Payload) (int, error) {
	n, err := p.Int("threshold")
	if err != nil || n < 0 {
		return 0, invalidField("threshold", "Threshold must be a non-negative integer")
	}
	return n, nil
}

// changeAmount reads the positive quantity of a restock or reduce request.
func changeAmount(c *gin.Context) (int, error) {
	p, err := bindPayload(c)
	if err != nil {
		return 0, err
	}
	if p.isNull("quantity") {
		return 0, apperr.Validation("Missing required fields").WithFields("quantity")
	}
	n, err := p.Int("quantity")
	if err != nil || n <= 0 {
		return 0, invalidField("quantity", "Amount must be a positive integer")
	}
	return n, nil
}

func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.stores.Inventories.FindInventories(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	respondList(c, items, "No inventory items found")
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := parseID(c, "inventory_id")
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := h.stores.Inventories.FindInventoryByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) Create(c *gin.Context) {
	body, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := body.Object("inventory")
	if err != nil {
		respondError(c, err)
		return
	}
	if len(p) == 0 {
		respondError(c, apperr.Validation(`Missing "inventory" data`))
		return
	}
	if err := p.Require("name", "quantity", "price"); err != nil {
		respondError(c, err)
		return
	}

	item := &models.Inventory{Threshold: models.DefaultThreshold}
	if item.Name, err = p.String("name"); err != nil {
		respondError(c, err)
		return
	}
	if item.Quantity, err = inventoryQuantity(p); err != nil {
		respondError(c, err)
		return
	}
	if item.Price, err = inventoryPrice(p); err != nil {
		respondError(c, err)
		return
	}
	if !p.isNull("threshold") {
		if item.Threshold, err = inventoryThreshold(p); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.stores.Inventories.InsertInventory(c.Request.Context(), item); err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	id, err := parseID(c, "inventory_id")
	if err != nil {
		respondError(c, err)
		return
	}
	body, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := body.Object("inventory")
	if err != nil {
		respondError(c, err)
		return
	}
	if len(p) == 0 {
		respondError(c, apperr.Validation("No inventory data provided"))
		return
	}

	ctx := c.Request.Context()
	item, err := h.stores.Inventories.FindInventoryByID(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}

	updated := false
	if p.Has("name") {
		if item.Name, err = p.NonEmptyString("name", "Name"); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("quantity") {
		if item.Quantity, err = inventoryQuantity(p); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("price") {
		if item.Price, err = inventoryPrice(p); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("threshold") {
		if item.Threshold, err = inventoryThreshold(p); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if !updated {
		respondError(c, noValidFields())
		return
	}

	if err := h.stores.Inventories.UpdateInventory(ctx, *item); err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete removes an item no ledger row refers to.
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "inventory_id")
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	n, err := h.stores.Ledger.CountUsagesByInventory(ctx, id)
	if err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	if n > 0 {
		respondError(c, apperr.Validation("Cannot delete: inventory is linked to service requests"))
		return
	}
	if err := h.stores.Inventories.DeleteInventory(ctx, id); err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}

// Restock adds stock to an item.
func (h *InventoryHandler) Restock(c *gin.Context) {
	h.adjust(c, 1)
}

// Reduce removes stock from an item, refusing to go below zero.
func (h *InventoryHandler) Reduce(c *gin.Context) {
	h.adjust(c, -1)
}

func (h *InventoryHandler) adjust(c *gin.Context, sign int) {
	id, err := parseID(c, "inventory_id")
	if err != nil {
		respondError(c, err)
		return
	}
	amount, err := changeAmount(c)
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := h.stores.Inventories.AdjustQuantity(c.Request.Context(), id, sign*amount)
	if err != nil {
		respondError(c, storeError(err, "Inventory item"))
		return
	}
	if sign < 0 && item.LowStock() {
		log.WithFields(log.Fields{
			"inventory_id": item.ID,
			"quantity":     item.Quantity,
			"threshold":    item.Threshold,
		}).Warn("inventory item at or below threshold")
	}
	c.JSON(http.StatusOK, item)
}
