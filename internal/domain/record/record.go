package record

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("medical record not found")

// Record is one employee checkup entry. Vitals are stored as free-form text
// the way the clinic forms capture them ("120/80", "98", ...).
type Record struct {
	ID             string     `json:"id"`
	PatientName    string     `json:"patient_name"`
	BirthPlace     string     `json:"birth_place,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Department     string     `json:"department"`
	PIC            string     `json:"pic,omitempty"`
	MedicalHistory string     `json:"medical_history,omitempty"`
	Subjective     string     `json:"subjective,omitempty"`
	BloodPressure  string     `json:"blood_pressure,omitempty"`
	SpO2           string     `json:"spo2,omitempty"`
	Pulse          string     `json:"pulse,omitempty"`
	Respiration    string     `json:"respiration,omitempty"`
	Therapy        string     `json:"therapy,omitempty"`
	Examiner       string     `json:"examiner"`
	CreatedAt      time.Time  `json:"created_at"`
}

type UpsertRequest struct {
	PatientName    string     `json:"patient_name" binding:"required,max=200"`
	BirthPlace     string     `json:"birth_place" binding:"omitempty,max=120"`
	BirthDate      *time.Time `json:"birth_date"`
	Department     string     `json:"department" binding:"required,max=120"`
	PIC            string     `json:"pic" binding:"omitempty,max=120"`
	MedicalHistory string     `json:"medical_history"`
	Subjective     string     `json:"subjective"`
	BloodPressure  string     `json:"blood_pressure" binding:"omitempty,max=20"`
	SpO2           string     `json:"spo2" binding:"omitempty,max=10"`
	Pulse          string     `json:"pulse" binding:"omitempty,max=10"`
	Respiration    string     `json:"respiration" binding:"omitempty,max=10"`
	Therapy        string     `json:"therapy"`
}

// ListFilter narrows the record list; nil fields are ignored. From/To bound
// created_at and serve the printable report's date range.
type ListFilter struct {
	Search *string
	From   *time.Time
	To     *time.Time
}

// Summary is the dashboard aggregate over all records.
type Summary struct {
	TotalPatients    int
	TodayCheckups    int
	BloodPressureAvg float64
	SpO2Avg          float64
	PulseAvg         float64
	RespirationAvg   float64
}
