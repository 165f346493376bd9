package outcome

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinic-scheduling/internal/pharmacy"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

// CollectionOutcomes is the snapshot collection name for the journal.
const CollectionOutcomes = "outcomes"

var (
	ErrUnknownMedication = errors.New("unknown medication")
	ErrAlreadyPaid       = errors.New("bill is already paid")
)

// Scheduler is the slice of the scheduling service this package drives:
// it reads appointments and moves them to completed.
type Scheduler interface {
	GetAppointment(ctx context.Context, id int64) (*scheduling.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, status scheduling.AppointmentStatus) (*scheduling.Appointment, error)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

// Service records outcomes and drives the completed transition. It exclusively
// owns outcome records; prescription and billing sub-status updates come from
// the pharmacist and patient-payment callers.
type Service struct {
	repo      Repository
	scheduler Scheduler
	catalog   pharmacy.Catalog
	notifier  scheduling.ChangeNotifier
	log       zerolog.Logger

	// consultationFee is the clinic's flat consultation price, set from
	// configuration. Pricing policy beyond a flat fee is external.
	consultationFee float64
}

func NewService(repo Repository, scheduler Scheduler, catalog pharmacy.Catalog, consultationFee float64, notifier scheduling.ChangeNotifier, log zerolog.Logger) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		repo:            repo,
		scheduler:       scheduler,
		catalog:         catalog,
		notifier:        notifier,
		log:             log,
		consultationFee: consultationFee,
	}
}

// RecordOutcome creates the outcome for a confirmed appointment and marks the
// appointment completed. The status transition runs before the outcome insert
// so a failure can never leave an outcome attached to a non-completed
// appointment.
func (s *Service) RecordOutcome(ctx context.Context, appointmentID int64, serviceType string, medicationIDs []uuid.UUID, notes string) (*Outcome, error) {
	appt, err := s.scheduler.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByAppointment(ctx, appt.ID); err == nil {
		return nil, ErrOutcomeExists
	} else if !errors.Is(err, ErrOutcomeNotFound) {
		return nil, fmt.Errorf("check existing outcome: %w", err)
	}

	fees := make([]float64, 0, len(medicationIDs))
	total := s.consultationFee
	for _, medID := range medicationIDs {
		ok, err := s.catalog.Exists(ctx, medID)
		if err != nil {
			return nil, fmt.Errorf("check medication %s: %w", medID, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMedication, medID)
		}
		price, err := s.catalog.PriceOf(ctx, medID)
		if err != nil {
			return nil, fmt.Errorf("price medication %s: %w", medID, err)
		}
		fees = append(fees, price)
		total += price
	}

	if _, err := s.scheduler.UpdateAppointmentStatus(ctx, appt.ID, scheduling.StatusCompleted); err != nil {
		return nil, err
	}

	o := &Outcome{
		AppointmentID:      appt.ID,
		ServiceType:        serviceType,
		MedicationIDs:      medicationIDs,
		ConsultationNotes:  notes,
		PrescriptionStatus: PrescriptionPending,
		BillingStatus:      BillingUnpaid,
		ConsultationFee:    s.consultationFee,
		MedicationFees:     fees,
		TotalAmount:        total,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create outcome: %w", err)
	}

	s.notifier.Notify(CollectionOutcomes)
	s.log.Info().
		Int64("appointment_id", appt.ID).
		Str("service_type", serviceType).
		Float64("total_amount", total).
		Msg("appointment outcome recorded")
	return o, nil
}

// UpdatePrescriptionStatus is the pharmacist flow: pending -> dispensed.
func (s *Service) UpdatePrescriptionStatus(ctx context.Context, appointmentID int64, status PrescriptionStatus) (*Outcome, error) {
	o, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	o.PrescriptionStatus = status
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("update outcome: %w", err)
	}

	s.notifier.Notify(CollectionOutcomes)
	s.log.Info().
		Int64("appointment_id", appointmentID).
		Str("prescription_status", string(status)).
		Msg("prescription status updated")
	return o, nil
}

// UpdateBillingStatus is the patient-payment flow. Paying an already-paid
// bill fails with ErrAlreadyPaid.
func (s *Service) UpdateBillingStatus(ctx context.Context, appointmentID int64, status BillingStatus) (*Outcome, error) {
	o, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if status == BillingPaid && o.BillingStatus == BillingPaid {
		return nil, ErrAlreadyPaid
	}

	o.BillingStatus = status
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("update outcome: %w", err)
	}

	s.notifier.Notify(CollectionOutcomes)
	s.log.Info().
		Int64("appointment_id", appointmentID).
		Str("billing_status", string(status)).
		Msg("billing status updated")
	return o, nil
}

// GetOutcome returns the outcome of one appointment.
func (s *Service) GetOutcome(ctx context.Context, appointmentID int64) (*Outcome, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}

// ListOutcomes returns every recorded outcome.
func (s *Service) ListOutcomes(ctx context.Context) ([]Outcome, error) {
	return s.repo.ListAll(ctx)
}

// ListByBillingStatus returns outcomes filtered by billing status.
func (s *Service) ListByBillingStatus(ctx context.Context, status BillingStatus) ([]Outcome, error) {
	return s.repo.ListByBillingStatus(ctx, status)
}

// ListByPrescriptionStatus returns outcomes filtered by prescription status.
func (s *Service) ListByPrescriptionStatus(ctx context.Context, status PrescriptionStatus) ([]Outcome, error) {
	return s.repo.ListByPrescriptionStatus(ctx, status)
}
