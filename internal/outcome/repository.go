package outcome

import (
	"context"
	"errors"
)

var (
	ErrOutcomeNotFound = errors.New("outcome not found")
	ErrOutcomeExists   = errors.New("outcome already recorded for appointment")
)

// Repository stores outcomes keyed by appointment id (1:1).
type Repository interface {
	Create(ctx context.Context, o *Outcome) error
	GetByAppointment(ctx context.Context, appointmentID int64) (*Outcome, error)
	Update(ctx context.Context, o *Outcome) error

	ListAll(ctx context.Context) ([]Outcome, error)
	ListByBillingStatus(ctx context.Context, status BillingStatus) ([]Outcome, error)
	ListByPrescriptionStatus(ctx context.Context, status PrescriptionStatus) ([]Outcome, error)
}
