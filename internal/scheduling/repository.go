package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNoAvailability      = errors.New("no availability set for that date")
	ErrSlotUnavailable     = errors.New("slot is not available")
	ErrInvalidRange        = errors.New("invalid slot range")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrCalendarBusy        = errors.New("doctor calendar is busy, please retry")
)

// Repository holds appointments. Appointment ids are assigned by the
// repository, unique and monotonically increasing.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)

	// FindActiveByDoctorAt is the double-booking probe: it returns the
	// non-canceled, non-declined appointment holding (doctorID, at), if any.
	FindActiveByDoctorAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error)
}
