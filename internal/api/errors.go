package api

import (
	"errors"
	"net/http"

	"github.com/clinicops/clinic-scheduling/internal/directory"
	"github.com/clinicops/clinic-scheduling/internal/outcome"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

// handleDomainError maps engine errors onto HTTP statuses: not-found 404,
// conflicts 409, invalid input 422, everything else 500.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, directory.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, outcome.ErrOutcomeNotFound):
		writeError(w, http.StatusNotFound, "outcome_not_found", err.Error())
	case errors.Is(err, scheduling.ErrNoAvailability):
		writeError(w, http.StatusConflict, "no_availability", err.Error())
	case errors.Is(err, scheduling.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "slot no longer available, please pick another")
	case errors.Is(err, scheduling.ErrCalendarBusy):
		writeError(w, http.StatusConflict, "calendar_busy", "calendar is being updated, please retry shortly")
	case errors.Is(err, scheduling.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, outcome.ErrOutcomeExists):
		writeError(w, http.StatusConflict, "outcome_already_recorded", err.Error())
	case errors.Is(err, outcome.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, "already_paid", err.Error())
	case errors.Is(err, scheduling.ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, "invalid_range", err.Error())
	case errors.Is(err, outcome.ErrUnknownMedication):
		writeError(w, http.StatusUnprocessableEntity, "unknown_medication", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
