package models

import "time"

// Customer represents a person requesting repairs.
type Customer struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	PhoneNumber string    `bson:"phone_number" json:"phone_number"`
	Location    string    `bson:"location" json:"location"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// SignupRequest represents a customer self-registration.
type SignupRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}
