package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func parseAppointmentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decodeValid(w http.ResponseWriter, r *http.Request, req interface {
	Validate() error
}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return false
	}
	return true
}

func setAvailabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(r, "doctorID")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		req := &SetAvailabilityRequest{}
		if !decodeValid(w, r, req) {
			return
		}

		// Formats were validated above.
		startDate, _ := scheduling.ParseDate(req.StartDate)
		startTime, _ := scheduling.ParseTimeOfDay(req.StartTime)
		endTime, _ := scheduling.ParseTimeOfDay(req.EndTime)

		if err := svc.SetMonthlyAvailability(r.Context(), doctorID, startDate, startTime, endTime, req.IntervalMinutes); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getAvailabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(r, "doctorID")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			date, err := scheduling.ParseDate(dateStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
				return
			}
			times, err := svc.Availability(r.Context(), doctorID, date)
			if err != nil {
				handleDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toDayAvailability(date, times))
			return
		}

		year, month := time.Now().UTC().Year(), int(time.Now().UTC().Month())
		if monthStr := r.URL.Query().Get("month"); monthStr != "" {
			t, err := time.Parse("2006-01", monthStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_month", "month must be YYYY-MM")
				return
			}
			year, month = t.Year(), int(t.Month())
		}

		days, err := svc.MonthlyAvailability(r.Context(), doctorID, year, month)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]DayAvailabilityResponse, 0, len(days))
		for date, times := range days {
			resp = append(resp, toDayAvailability(date, times))
		}
		sort.Slice(resp, func(i, j int) bool { return resp[i].Date < resp[j].Date })
		writeJSON(w, http.StatusOK, resp)
	}
}

func scheduleAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &ScheduleAppointmentRequest{}
		if !decodeValid(w, r, req) {
			return
		}

		doctorID, _ := uuid.Parse(req.DoctorID)
		patientID, _ := uuid.Parse(req.PatientID)
		dateTime, _ := time.Parse(time.RFC3339, req.DateTime)

		appt, err := svc.ScheduleAppointment(r.Context(), doctorID, patientID, dateTime.UTC())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		req := &RescheduleAppointmentRequest{}
		if !decodeValid(w, r, req) {
			return
		}
		dateTime, _ := time.Parse(time.RFC3339, req.DateTime)

		appt, err := svc.RescheduleAppointment(r.Context(), id, dateTime.UTC())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		appt, err := svc.CancelAppointment(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func updateStatusHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}

		req := &UpdateStatusRequest{}
		if !decodeValid(w, r, req) {
			return
		}

		appt, err := svc.UpdateAppointmentStatus(r.Context(), id, scheduling.AppointmentStatus(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func acceptAllHandler(svc *scheduling.Service) http.HandlerFunc {
	return bulkHandler(svc.AcceptAll)
}

func declineAllHandler(svc *scheduling.Service) http.HandlerFunc {
	return bulkHandler(svc.DeclineAll)
}

func bulkHandler(run func(ctx context.Context, doctorID uuid.UUID) (scheduling.BulkResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(r, "doctorID")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		result, err := run(r.Context(), doctorID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func listByPatientHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := parseUUIDParam(r, "patientID")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient id must be a valid UUID")
			return
		}

		filter, err := scheduling.ParseQueryFilter(r.URL.Query().Get("filter"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
			return
		}

		appts, err := svc.AppointmentsByPatient(r.Context(), patientID, filter)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func listByDoctorHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(r, "doctorID")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		filter, err := scheduling.ParseQueryFilter(r.URL.Query().Get("filter"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
			return
		}

		appts, err := svc.AppointmentsByDoctor(r.Context(), doctorID, filter)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}
