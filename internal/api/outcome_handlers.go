package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicops/clinic-scheduling/internal/outcome"
)

func recordOutcomeHandler(svc *outcome.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		req := &RecordOutcomeRequest{}
		if !decodeValid(w, r, req) {
			return
		}

		medicationIDs := make([]uuid.UUID, 0, len(req.MedicationIDs))
		for _, s := range req.MedicationIDs {
			medID, _ := uuid.Parse(s)
			medicationIDs = append(medicationIDs, medID)
		}

		o, err := svc.RecordOutcome(r.Context(), id, req.ServiceType, medicationIDs, req.ConsultationNotes)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, o)
	}
}

func getOutcomeHandler(svc *outcome.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		o, err := svc.GetOutcome(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, o)
	}
}

func updatePrescriptionHandler(svc *outcome.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		req := &UpdatePrescriptionRequest{}
		if !decodeValid(w, r, req) {
			return
		}

		o, err := svc.UpdatePrescriptionStatus(r.Context(), id, outcome.PrescriptionStatus(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, o)
	}
}

func updateBillingHandler(svc *outcome.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		req := &UpdateBillingRequest{}
		if !decodeValid(w, r, req) {
			return
		}

		o, err := svc.UpdateBillingStatus(r.Context(), id, outcome.BillingStatus(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, o)
	}
}

func listOutcomesHandler(svc *outcome.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := r.URL.Query().Get("billing_status"); s != "" {
			if s != string(outcome.BillingUnpaid) && s != string(outcome.BillingPaid) {
				writeError(w, http.StatusBadRequest, "invalid_billing_status", "billing_status must be unpaid or paid")
				return
			}
			outcomes, err := svc.ListByBillingStatus(r.Context(), outcome.BillingStatus(s))
			if err != nil {
				handleDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, outcomes)
			return
		}

		if s := r.URL.Query().Get("prescription_status"); s != "" {
			if s != string(outcome.PrescriptionPending) && s != string(outcome.PrescriptionDispensed) {
				writeError(w, http.StatusBadRequest, "invalid_prescription_status", "prescription_status must be pending or dispensed")
				return
			}
			outcomes, err := svc.ListByPrescriptionStatus(r.Context(), outcome.PrescriptionStatus(s))
			if err != nil {
				handleDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, outcomes)
			return
		}

		outcomes, err := svc.ListOutcomes(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, outcomes)
	}
}
