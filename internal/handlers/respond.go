package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/middleware"
	"github.com/ukydev/mobile-garage/internal/models"
)

var collectionEntities = map[string]string{
	"customers":                   "Customer",
	"admins":                      "Admin",
	"mechanics":                   "Mechanic",
	"inventories":                 "Inventory item",
	"vehicles":                    "Vehicle",
	"service_requests":            "Service request",
	"service_request_inventories": "Record",
}

// storeError translates persistence errors into client errors. entity names
// the record in not-found messages.
func storeError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var dup *db.DuplicateKeyError
	switch {
	case errors.Is(err, db.ErrNotFound):
		return apperr.NotFound(entity + " not found")
	case errors.As(err, &dup):
		return apperr.Conflict(conflictMessage(dup)).WithFields(dup.Field)
	case errors.Is(err, db.ErrInsufficientQuantity):
		return apperr.Validation("Insufficient inventory quantity")
	}
	return apperr.Internal("An internal error occurred", err)
}

func conflictMessage(dup *db.DuplicateKeyError) string {
	field := strings.ReplaceAll(dup.Field, "_", " ")
	switch {
	case dup.Collection == "users" && dup.Field == "email":
		return "Email already exists"
	case dup.Collection == "service_request_inventories":
		return "A record for this service request and inventory item already exists"
	}
	entity, ok := collectionEntities[dup.Collection]
	if !ok || field == "" {
		return "Record already exists"
	}
	return fmt.Sprintf("%s with this %s already exists", entity, field)
}

// respondError writes err as a JSON error. Internal errors are logged with
// their cause and reported generically.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		log.WithError(appErr.Err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}
	middleware.Abort(c, appErr)
}

// respondList writes items, or a 404 with emptyMsg when there are none.
func respondList[T any](c *gin.Context, items []T, emptyMsg string) {
	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": emptyMsg})
		return
	}
	c.JSON(http.StatusOK, items)
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name).WithFields(name)
	}
	return id, nil
}

func principal(c *gin.Context) (models.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, apperr.Unauthenticated("User context not found")
	}
	return p, nil
}

func noValidFields() error { return apperr.Validation("No valid fields to update") }

func unauthorized() error { return apperr.Forbidden("Unauthorized access") }

func errCustomerHasRequests() error {
	return apperr.Validation("Cannot delete: customer has service requests")
}
