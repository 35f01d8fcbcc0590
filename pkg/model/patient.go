package model

import "time"

type Patient struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Email     string    `json:"email" bson:"email"`
	Balance   float64   `json:"balance" bson:"balance"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// PatientInfo identifies the patient on whose behalf a booking is made.
type PatientInfo struct {
	ID    string `json:"id" validate:"required,max=128"`
	Name  string `json:"name" validate:"omitempty,max=200"`
	Email string `json:"email" validate:"required,email"`
}
