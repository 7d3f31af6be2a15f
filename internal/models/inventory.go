package models

import "time"

// DefaultThreshold is the low-stock threshold applied when none is given.
const DefaultThreshold = 5

// Inventory represents a stocked part or consumable.
type Inventory struct {
	ID        int64     `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Price     float64   `bson:"price" json:"price"`
	Threshold int       `bson:"threshold" json:"threshold"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LowStock reports whether the item is at or below its threshold.
func (i *Inventory) LowStock() bool {
	return i.Quantity <= i.Threshold
}

// ServiceRequestInventory records inventory consumed by a service request.
// There is at most one row per (service request, inventory) pair.
type ServiceRequestInventory struct {
	ID               int64     `bson:"_id" json:"id"`
	ServiceRequestID int64     `bson:"service_request_id" json:"service_request_id"`
	InventoryID      int64     `bson:"inventory_id" json:"inventory_id"`
	UsedQuantity     int       `bson:"used_quantity" json:"used_quantity"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

