package outcome

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionPending   PrescriptionStatus = "pending"
	PrescriptionDispensed PrescriptionStatus = "dispensed"
)

type BillingStatus string

const (
	BillingUnpaid BillingStatus = "unpaid"
	BillingPaid   BillingStatus = "paid"
)

// Outcome is the clinical and billing record of one completed appointment.
// It exists if and only if its appointment is completed. MedicationFees is
// parallel to MedicationIDs.
type Outcome struct {
	AppointmentID      int64              `json:"appointment_id"`
	ServiceType        string             `json:"service_type"`
	MedicationIDs      []uuid.UUID        `json:"medication_ids"`
	ConsultationNotes  string             `json:"consultation_notes"`
	PrescriptionStatus PrescriptionStatus `json:"prescription_status"`
	BillingStatus      BillingStatus      `json:"billing_status"`
	ConsultationFee    float64            `json:"consultation_fee"`
	MedicationFees     []float64          `json:"medication_fees"`
	TotalAmount        float64            `json:"total_amount"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
