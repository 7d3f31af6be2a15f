package models

import "time"

// Mechanic availability values.
const (
	MechanicAvailable   = "Available"
	MechanicUnavailable = "Unavailable"
)

// Mechanic represents a field mechanic. Rating is nil until rated.
type Mechanic struct {
	ID              int64     `bson:"_id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Specialty       string    `bson:"specialty" json:"specialty"`
	Location        string    `bson:"location" json:"location"`
	PhoneNumber     string    `bson:"phone_number" json:"phone_number"`
	Email           string    `bson:"email" json:"email"`
	ExperienceYears int       `bson:"experience_years" json:"experience_years"`
	Status          string    `bson:"status" json:"status"`
	Rating          *float64  `bson:"rating,omitempty" json:"rating"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// IsValidMechanicStatus checks if a mechanic status is valid
func IsValidMechanicStatus(status string) bool {
	return status == MechanicAvailable || status == MechanicUnavailable
}
