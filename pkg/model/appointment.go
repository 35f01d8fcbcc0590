package model

import "time"

const (
	AppointmentStatusPendingPayment = "pending_payment"
	AppointmentStatusConfirmed      = "confirmed"
)

const (
	ConsultationInPerson     = "in-person"
	ConsultationTelemedicine = "telemedicine"
)

type Appointment struct {
	ID            string     `json:"id" bson:"_id"`
	DoctorID      string     `json:"doctorId" bson:"doctorId"`
	DoctorName    string     `json:"doctorName" bson:"doctorName"`
	Specialty     string     `json:"specialty" bson:"specialty"`
	PatientID     string     `json:"patientId" bson:"patientId"`
	PatientName   string     `json:"patientName,omitempty" bson:"patientName,omitempty"`
	PatientEmail  string     `json:"patientEmail" bson:"patientEmail"`
	Date          string     `json:"date" bson:"date"`
	StartTime     string     `json:"startTime" bson:"startTime"`
	EndTime       string     `json:"endTime" bson:"endTime"`
	Reason        string     `json:"reason,omitempty" bson:"reason,omitempty"`
	Type          string     `json:"type" bson:"type"`
	Notes         string     `json:"notes" bson:"notes"`
	Cost          float64    `json:"cost" bson:"cost"`
	Status        string     `json:"status" bson:"status"`
	IsPaid        bool       `json:"isPaid" bson:"isPaid"`
	OTPHash       string     `json:"-" bson:"otpHash,omitempty"`
	TransactionID string     `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty" bson:"paymentDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

func (a *Appointment) PendingPayment() bool {
	return a.Status == AppointmentStatusPendingPayment && !a.IsPaid
}

// BookingResult is returned to the conversational layer after a successful booking.
type BookingResult struct {
	AppointmentID      string  `json:"appointmentId"`
	DoctorName         string  `json:"doctorName"`
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	Cost               float64 `json:"cost"`
	OTP                string  `json:"otp"`
	ConfirmationNumber string  `json:"confirmationNumber"`
}
