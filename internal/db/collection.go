package db

import (
	"context"

	"github.com/ukydev/mobile-garage/internal/models"
)

// TxRunner runs fn inside a transaction. The context passed to fn must be
// used for every write that belongs to the transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CustomerCollection defines the interface for customer data operations.
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomers(ctx context.Context) ([]models.Customer, error)
	FindCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	CountCustomers(ctx context.Context) (int64, error)
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	// FindMatchingVehicle looks up a customer's vehicle by make, model and
	// year, ignoring case. It returns ErrNotFound when there is none.
	FindMatchingVehicle(ctx context.Context, customerID int64, make, model string, year int) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int64) error
	DeleteVehiclesByCustomer(ctx context.Context, customerID int64) error
	CountVehicles(ctx context.Context) (int64, error)
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUsers(ctx context.Context) ([]models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByProfile(ctx context.Context, profile models.Profile) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id int64) error
	DeleteUserByProfile(ctx context.Context, profile models.Profile) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

// AdminCollection defines the interface for admin data operations.
type AdminCollection interface {
	InsertAdmin(ctx context.Context, admin *models.Admin) error
	FindAdmins(ctx context.Context) ([]models.Admin, error)
	FindAdminByID(ctx context.Context, id int64) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, admin models.Admin) error
	DeleteAdmin(ctx context.Context, id int64) error
}

// MechanicCollection defines the interface for mechanic data operations.
type MechanicCollection interface {
	InsertMechanic(ctx context.Context, mechanic *models.Mechanic) error
	FindMechanics(ctx context.Context) ([]models.Mechanic, error)
	FindMechanicByID(ctx context.Context, id int64) (*models.Mechanic, error)
	UpdateMechanic(ctx context.Context, mechanic models.Mechanic) error
	DeleteMechanic(ctx context.Context, id int64) error
	// CountMechanics counts mechanics with the given status, or all of them
	// when status is empty.
	CountMechanics(ctx context.Context, status string) (int64, error)
}

// ServiceRequestFilter narrows service request queries. Nil fields match all.
type ServiceRequestFilter struct {
	CustomerID *int64
	MechanicID *int64
	VehicleID  *int64
}

// ServiceRequestCollection defines the interface for service request data operations.
type ServiceRequestCollection interface {
	InsertServiceRequest(ctx context.Context, req *models.ServiceRequest) error
	FindServiceRequests(ctx context.Context, filter ServiceRequestFilter) ([]models.ServiceRequest, error)
	FindServiceRequestByID(ctx context.Context, id int64) (*models.ServiceRequest, error)
	UpdateServiceRequest(ctx context.Context, req models.ServiceRequest) error
	DeleteServiceRequest(ctx context.Context, id int64) error
	// UnassignMechanic clears mechanic_id on every request assigned to the mechanic.
	UnassignMechanic(ctx context.Context, mechanicID int64) error
	CountServiceRequests(ctx context.Context, filter ServiceRequestFilter) (int64, error)
	CountServiceRequestsByStatus(ctx context.Context, filter ServiceRequestFilter) (map[string]int64, error)
}

// InventoryCollection defines the interface for inventory data operations.
type InventoryCollection interface {
	InsertInventory(ctx context.Context, item *models.Inventory) error
	FindInventories(ctx context.Context) ([]models.Inventory, error)
	FindInventoryByID(ctx context.Context, id int64) (*models.Inventory, error)
	UpdateInventory(ctx context.Context, item models.Inventory) error
	DeleteInventory(ctx context.Context, id int64) error
	// AdjustQuantity adds delta to the stocked quantity in one conditional
	// update. A negative delta that would take the quantity below zero
	// returns ErrInsufficientQuantity and changes nothing.
	AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Inventory, error)
	CountInventories(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// LedgerCollection defines the interface for service request inventory
// (consumption ledger) operations.
type LedgerCollection interface {
	// AddUsage accumulates used quantity for the (service request, inventory)
	// pair. created reports whether a new row was inserted.
	AddUsage(ctx context.Context, serviceRequestID, inventoryID int64, quantity int) (row *models.ServiceRequestInventory, created bool, err error)
	FindUsages(ctx context.Context) ([]models.ServiceRequestInventory, error)
	FindUsageByID(ctx context.Context, id int64) (*models.ServiceRequestInventory, error)
	UpdateUsage(ctx context.Context, row models.ServiceRequestInventory) error
	DeleteUsage(ctx context.Context, id int64) error
	DeleteUsagesByServiceRequest(ctx context.Context, serviceRequestID int64) error
	CountUsagesByInventory(ctx context.Context, inventoryID int64) (int64, error)
}

var (
	_ CustomerCollection       = (*MongoCustomerCollection)(nil)
	_ VehicleCollection        = (*MongoVehicleCollection)(nil)
	_ UserCollection           = (*MongoUserCollection)(nil)
	_ AdminCollection          = (*MongoAdminCollection)(nil)
	_ MechanicCollection       = (*MongoMechanicCollection)(nil)
	_ ServiceRequestCollection = (*MongoServiceRequestCollection)(nil)
	_ InventoryCollection      = (*MongoInventoryCollection)(nil)
	_ LedgerCollection         = (*MongoLedgerCollection)(nil)
	_ TxRunner                 = (*Store)(nil)
)
