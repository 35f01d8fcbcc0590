package model

// BookIntent is a booking request extracted from assistant text or supplied by an API caller.
// EndTime is empty when StartTime could not be parsed.
type BookIntent struct {
	Specialty  string `json:"specialty,omitempty"`
	DoctorID   string `json:"doctorId" validate:"required,max=128"`
	DoctorName string `json:"doctorName,omitempty"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime    string `json:"endTime" validate:"required,datetime=15:04"`
	Reason     string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Type       string `json:"type,omitempty" validate:"omitempty,oneof=in-person telemedicine"`
}

// ConsultationType returns the requested type, in-person when unspecified.
func (b *BookIntent) ConsultationType() string {
	if b.Type == "" {
		return ConsultationInPerson
	}
	return b.Type
}

// Complete reports whether the intent carries every field booking needs.
func (b *BookIntent) Complete() bool {
	return b != nil &&
		b.DoctorID != "" &&
		b.Date != "" &&
		b.StartTime != "" &&
		b.EndTime != ""
}

// Missing lists the names of required fields that are empty.
func (b *BookIntent) Missing() []string {
	if b == nil {
		return []string{"doctorId", "date", "startTime", "endTime"}
	}
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"doctorId", b.DoctorID},
		{"date", b.Date},
		{"startTime", b.StartTime},
		{"endTime", b.EndTime},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// PaymentIntent is a payment request extracted from assistant text. Amount is nil when absent or unparsable.
type PaymentIntent struct {
	Amount        *float64 `json:"amount,omitempty"`
	AppointmentID string   `json:"appointmentId,omitempty"`
}
