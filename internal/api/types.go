package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/clinicops/clinic-scheduling/internal/outcome"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

type SetAvailabilityRequest struct {
	StartDate       string `json:"start_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	IntervalMinutes int    `json:"interval_minutes"`
}

func (r SetAvailabilityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StartDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.StartTime, validation.Required, validation.Date("15:04")),
		validation.Field(&r.EndTime, validation.Required, validation.Date("15:04")),
		validation.Field(&r.IntervalMinutes, validation.Required, validation.Min(1)),
	)
}

type ScheduleAppointmentRequest struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	DateTime  string `json:"date_time"`
}

func (r ScheduleAppointmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DoctorID, validation.Required, is.UUID),
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.DateTime, validation.Required, validation.Date(time.RFC3339)),
	)
}

type RescheduleAppointmentRequest struct {
	DateTime string `json:"date_time"`
}

func (r RescheduleAppointmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DateTime, validation.Required, validation.Date(time.RFC3339)),
	)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			string(scheduling.StatusConfirmed),
			string(scheduling.StatusDeclined),
			string(scheduling.StatusCanceled),
		)),
	)
}

type RecordOutcomeRequest struct {
	ServiceType       string   `json:"service_type"`
	MedicationIDs     []string `json:"medication_ids"`
	ConsultationNotes string   `json:"consultation_notes"`
}

func (r RecordOutcomeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ServiceType, validation.Required),
		validation.Field(&r.MedicationIDs, validation.Each(is.UUID)),
	)
}

type UpdatePrescriptionRequest struct {
	Status string `json:"status"`
}

func (r UpdatePrescriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			string(outcome.PrescriptionPending),
			string(outcome.PrescriptionDispensed),
		)),
	)
}

type UpdateBillingRequest struct {
	Status string `json:"status"`
}

func (r UpdateBillingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			string(outcome.BillingUnpaid),
			string(outcome.BillingPaid),
		)),
	)
}

type AppointmentResponse struct {
	ID        int64     `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	DateTime  time.Time `json:"date_time"`
	Status    string    `json:"status"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		DateTime:  a.DateTime,
		Status:    string(a.Status),
	}
}

func toAppointmentResponses(appts []scheduling.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type DayAvailabilityResponse struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

func toDayAvailability(date scheduling.Date, times []scheduling.TimeOfDay) DayAvailabilityResponse {
	out := DayAvailabilityResponse{Date: date.String(), Times: make([]string, 0, len(times))}
	for _, t := range times {
		out.Times = append(out.Times, t.String())
	}
	return out
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
