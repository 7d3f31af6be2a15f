package models

import "time"

// Admin represents a back-office administrator.
type Admin struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	PhoneNumber string    `bson:"phone_number" json:"phone_number"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
