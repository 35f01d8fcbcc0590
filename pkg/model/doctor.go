package model

// ConsultationFees holds the price of a consultation per consultation type.
type ConsultationFees struct {
	InPerson     *float64 `json:"inPerson,omitempty" bson:"inPerson,omitempty"`
	Telemedicine *float64 `json:"telemedicine,omitempty" bson:"telemedicine,omitempty"`
}

type Doctor struct {
	ID               string           `json:"id" bson:"_id"`
	Name             string           `json:"name" bson:"name"`
	Specialty        string           `json:"specialty" bson:"specialty"`
	ConsultationFees ConsultationFees `json:"consultationFees" bson:"consultationFees"`
}

// Fee returns the fee for the consultation type and whether one is configured.
func (d *Doctor) Fee(consultationType string) (float64, bool) {
	var fee *float64
	switch consultationType {
	case "telemedicine":
		fee = d.ConsultationFees.Telemedicine
	default:
		fee = d.ConsultationFees.InPerson
	}
	if fee == nil {
		return 0, false
	}
	return *fee, true
}

// SpecialtyCatalog groups doctor names under their specialty.
type SpecialtyCatalog struct {
	Specialty string   `json:"specialty"`
	Doctors   []string `json:"doctors"`
}
