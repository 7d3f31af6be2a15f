package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vehicle represents a customer's vehicle.
type Vehicle struct {
	ID                int64     `bson:"_id" json:"id"`
	Make              string    `bson:"make" json:"make"`
	Model             string    `bson:"model" json:"model"`
	YearOfManufacture int       `bson:"year_of_manufacture" json:"year_of_manufacture"`
	CustomerID        int64     `bson:"customer_id" json:"customer_id"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// VehicleDetails is the vehicle description embedded in a new service request.
type VehicleDetails struct {
	Make              string `json:"make"`
	Model             string `json:"model"`
	YearOfManufacture int    `json:"year_of_manufacture"`
}

// CanonicalName normalises a make or model to title case with single spaces,
// so "toyota  COROLLA" and "Toyota Corolla" compare equal.
func CanonicalName(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
