package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/models"
)

// CustomerHandler handles customer records.
type CustomerHandler struct {
	stores Stores
}

func NewCustomerHandler(stores Stores) *CustomerHandler {
	return &CustomerHandler{stores: stores}
}

// canAccessCustomer allows admins and the customer themself.
func canAccessCustomer(p models.Principal, customerID int64) bool {
	switch p := p.(type) {
	case models.AdminPrincipal:
		return true
	case models.CustomerPrincipal:
		return p.CustomerID == customerID
	}
	return false
}

func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.stores.Customers.FindCustomers(c.Request.Context())
	if err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}
	respondList(c, customers, "No customers found")
}

func (h *CustomerHandler) Get(c *gin.Context) {
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
	if !canAccessCustomer(p, id) {
		respondError(c, unauthorized())
		return
	}

	customer, err := h.stores.Customers.FindCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Create adds a customer record without a login.
func (h *CustomerHandler) Create(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := p.Require("name", "phone_number", "location"); err != nil {
		respondError(c, err)
		return
	}

	customer := &models.Customer{}
	if customer.Name, err = p.String("name"); err != nil {
		respondError(c, err)
		return
	}
	if customer.Location, err = p.String("location"); err != nil {
		respondError(c, err)
		return
	}
	if customer.PhoneNumber, err = p.Phone("phone_number"); err != nil {
		respondError(c, err)
		return
	}

	if err := h.stores.Customers.InsertCustomer(c.Request.Context(), customer); err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := parseID(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	pr, err := principal(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canAccessCustomer(pr, id) {
		respondError(c, unauthorized())
		return
	}
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	customer, err := h.stores.Customers.FindCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}

	updated := false
	if p.Has("name") {
		if customer.Name, err = p.NonEmptyString("name", "Name"); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("location") {
		if customer.Location, err = p.NonEmptyString("location", "Location"); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if p.Has("phone_number") {
		if customer.PhoneNumber, err = p.Phone("phone_number"); err != nil {
			respondError(c, err)
			return
		}
		updated = true
	}
	if !updated {
		respondError(c, noValidFields())
		return
	}

	if err := h.stores.Customers.UpdateCustomer(c.Request.Context(), *customer); err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete removes the customer with its vehicles and login.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.stores.Tx.WithTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.stores.deleteCustomerRecords(ctx, id)
	})
	if err != nil {
		respondError(c, storeError(err, "Customer"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
