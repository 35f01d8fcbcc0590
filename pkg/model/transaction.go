package model

import "time"

const (
	TransactionStatusCompleted = "completed"
	TransactionTypeAppointment = "appointment"
)

// Transaction is an append-only ledger entry for a completed payment.
type Transaction struct {
	ID            string    `json:"id" bson:"_id"`
	UserID        string    `json:"userId" bson:"userId"`
	Amount        float64   `json:"amount" bson:"amount"`
	BalanceAfter  float64   `json:"balanceAfter" bson:"balanceAfter"`
	Description   string    `json:"description" bson:"description"`
	AppointmentID string    `json:"appointmentId" bson:"appointmentId"`
	Type          string    `json:"type" bson:"type"`
	Status        string    `json:"status" bson:"status"`
	OTP           string    `json:"-" bson:"otp"`
	PatientEmail  string    `json:"patientEmail" bson:"patientEmail"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}

type PaymentRequest struct {
	PatientEmail  string  `json:"patient_email" validate:"required,email"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	AppointmentID string  `json:"appointment_id" validate:"required,max=128"`
	OTP           string  `json:"otp" validate:"required"`
}

type PaymentResult struct {
	Success       bool    `json:"success"`
	TransactionID string  `json:"transactionId"`
	NewBalance    float64 `json:"newBalance"`
	Message       string  `json:"message"`
}
