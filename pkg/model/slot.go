package model

import "time"

// TimeSlot is identified by (DoctorID, Date, StartTime).
type TimeSlot struct {
	ID            string     `json:"id,omitempty" bson:"_id,omitempty"`
	DoctorID      string     `json:"doctorId" bson:"doctorId"`
	Date          string     `json:"date" bson:"date"`
	StartTime     string     `json:"startTime" bson:"startTime"`
	IsBooked      bool       `json:"isBooked" bson:"isBooked"`
	AppointmentID string     `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	BookedAt      *time.Time `json:"bookedAt,omitempty" bson:"bookedAt,omitempty"`
}

type SlotKey struct {
	DoctorID  string
	Date      string
	StartTime string
}
