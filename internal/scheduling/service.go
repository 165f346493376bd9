package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinic-scheduling/internal/directory"
)

// Snapshot collection names used with the persistence journal.
const (
	CollectionAvailability = "availability"
	CollectionAppointments = "appointments"
)

// ChangeNotifier receives the name of a collection whose state changed.
// The persistence journal implements it; saves happen asynchronously.
type ChangeNotifier interface {
	Notify(collection string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

// QueryFilter selects which appointments a listing returns.
type QueryFilter string

const (
	FilterAll       QueryFilter = "all"
	FilterScheduled QueryFilter = "scheduled" // pending or confirmed
	FilterPast      QueryFilter = "past"      // completed, regardless of clock
	FilterUpcoming  QueryFilter = "upcoming"  // pending or confirmed, in the future
)

func ParseQueryFilter(s string) (QueryFilter, error) {
	switch QueryFilter(s) {
	case FilterAll, FilterScheduled, FilterPast, FilterUpcoming:
		return QueryFilter(s), nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown appointment filter %q", s)
}

type BulkFailure struct {
	AppointmentID int64  `json:"appointment_id"`
	Reason        string `json:"reason"`
}

// BulkResult reports a best-effort batch: failed items do not roll back
// the ones already updated.
type BulkResult struct {
	Updated []int64       `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
}

// Service owns the availability/appointment invariant pair: a free slot never
// coincides with a live appointment, and booking a slot and persisting its
// appointment happen atomically under the doctor's lock.
type Service struct {
	repo         Repository
	availability AvailabilityStore
	users        directory.Directory
	locker       Locker
	notifier     ChangeNotifier
	log          zerolog.Logger

	now func() time.Time
}

func NewService(repo Repository, availability AvailabilityStore, users directory.Directory, locker Locker, notifier ChangeNotifier, log zerolog.Logger) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		repo:         repo,
		availability: availability,
		users:        users,
		locker:       locker,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

// SetMonthlyAvailability wholesale-sets the doctor's calendar for every day
// from startDate to the end of its month. A candidate slot coinciding with a
// pending or confirmed appointment is left out.
func (s *Service) SetMonthlyAvailability(ctx context.Context, doctorID uuid.UUID, startDate Date, startTime, endTime TimeOfDay, intervalMinutes int) error {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return err
	}
	if endTime < startTime {
		return fmt.Errorf("end %s before start %s: %w", endTime, startTime, ErrInvalidRange)
	}
	if intervalMinutes <= 0 {
		return fmt.Errorf("interval %d minutes: %w", intervalMinutes, ErrInvalidRange)
	}

	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		appts, err := s.repo.ListByDoctor(lockCtx, doctorID)
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}

		occupied := make(map[Slot]bool)
		for _, a := range appts {
			if a.Status == StatusPending || a.Status == StatusConfirmed {
				occupied[a.Slot()] = true
			}
		}

		for _, day := range daysOfMonthFrom(startDate) {
			candidates := GenerateSlots(startTime, endTime, intervalMinutes)
			free := candidates[:0]
			for _, t := range candidates {
				if !occupied[Slot{Date: day, Time: t}] {
					free = append(free, t)
				}
			}
			s.availability.ReplaceDay(doctorID, day, free)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(CollectionAvailability)
	s.log.Info().
		Str("doctor_id", doctorID.String()).
		Str("from", startDate.String()).
		Str("window", startTime.String()+"-"+endTime.String()).
		Int("interval_minutes", intervalMinutes).
		Msg("monthly availability set")
	return nil
}

// Availability returns the free times for one day, ascending.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date Date) ([]TimeOfDay, error) {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.availability.Get(doctorID, date), nil
}

// MonthlyAvailability returns every day of the month that still has an
// availability entry, with its free times.
func (s *Service) MonthlyAvailability(ctx context.Context, doctorID uuid.UUID, year int, month int) (map[Date][]TimeOfDay, error) {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.availability.GetMonth(doctorID, year, month), nil
}

// BookSlot removes a free slot from the doctor's calendar.
func (s *Service) BookSlot(ctx context.Context, doctorID uuid.UUID, date Date, t TimeOfDay) error {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return err
	}

	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		return s.bookLocked(lockCtx, doctorID, Slot{Date: date, Time: t})
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(CollectionAvailability)
	return nil
}

// UnbookSlot re-inserts a slot into the doctor's calendar. Idempotent: a slot
// that is already free is left alone, guarding against double-free.
func (s *Service) UnbookSlot(ctx context.Context, doctorID uuid.UUID, date Date, t TimeOfDay) error {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return err
	}

	err := s.locker.WithDoctorLock(ctx, doctorID, func(context.Context) error {
		s.availability.InsertSorted(doctorID, date, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(CollectionAvailability)
	return nil
}

// ScheduleAppointment books the slot derived from dateTime and creates a
// pending appointment in the same critical section. On any booking failure no
// appointment is created.
func (s *Service) ScheduleAppointment(ctx context.Context, doctorID, patientID uuid.UUID, dateTime time.Time) (*Appointment, error) {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}
	if _, err := s.users.PatientByID(ctx, patientID); err != nil {
		return nil, err
	}

	slot := SlotOf(dateTime)
	var created *Appointment

	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		if err := s.bookLocked(lockCtx, doctorID, slot); err != nil {
			return err
		}

		appt := &Appointment{
			DoctorID:  doctorID,
			PatientID: patientID,
			DateTime:  slot.DateTime(),
			Status:    StatusPending,
		}
		if err := s.repo.Create(lockCtx, appt); err != nil {
			// Put the slot back so a storage failure cannot leak it.
			s.availability.InsertSorted(doctorID, slot.Date, slot.Time)
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(CollectionAvailability)
	s.notifier.Notify(CollectionAppointments)
	s.log.Info().
		Int64("appointment_id", created.ID).
		Str("doctor_id", doctorID.String()).
		Str("patient_id", patientID.String()).
		Time("date_time", created.DateTime).
		Msg("appointment scheduled")
	return created, nil
}

// RescheduleAppointment moves an appointment to a new slot. The new slot is
// validated and consumed before the old one is released, all under the doctor
// lock, so a failed reschedule leaves calendar and appointment untouched.
func (s *Service) RescheduleAppointment(ctx context.Context, id int64, newDateTime time.Time) (*Appointment, error) {
	// The pre-lock read only locates the doctor. Status is checked again
	// under the lock: a cancel landing in between must not be overwritten.
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newSlot := SlotOf(newDateTime)
	var (
		updated *Appointment
		moved   bool
	)
	err = s.locker.WithDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		cur, err := s.repo.GetByID(lockCtx, id)
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			return fmt.Errorf("appointment %d is %s: %w", id, cur.Status, ErrInvalidTransition)
		}

		oldSlot := cur.Slot()
		if newSlot == oldSlot {
			updated = cur
			return nil
		}
		if err := s.bookLocked(lockCtx, cur.DoctorID, newSlot); err != nil {
			return err
		}

		s.availability.InsertSorted(cur.DoctorID, oldSlot.Date, oldSlot.Time)
		cur.DateTime = newSlot.DateTime()
		if err := s.repo.Update(lockCtx, cur); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		updated = cur
		moved = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !moved {
		return updated, nil
	}

	s.notifier.Notify(CollectionAvailability)
	s.notifier.Notify(CollectionAppointments)
	s.log.Info().
		Int64("appointment_id", updated.ID).
		Time("date_time", updated.DateTime).
		Msg("appointment rescheduled")
	return updated, nil
}

// CancelAppointment frees the slot and marks the appointment canceled.
// Canceling an already-canceled appointment is a no-op, not an error, and
// never frees the slot a second time.
func (s *Service) CancelAppointment(ctx context.Context, id int64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		updated  *Appointment
		canceled bool
	)
	err = s.locker.WithDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		cur, err := s.repo.GetByID(lockCtx, id)
		if err != nil {
			return err
		}
		if cur.Status == StatusCanceled {
			updated = cur
			return nil
		}
		if !CanTransition(cur.Status, StatusCanceled) {
			return fmt.Errorf("appointment %d is %s: %w", id, cur.Status, ErrInvalidTransition)
		}

		slot := cur.Slot()
		s.availability.InsertSorted(cur.DoctorID, slot.Date, slot.Time)
		cur.Status = StatusCanceled
		if err := s.repo.Update(lockCtx, cur); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		updated = cur
		canceled = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !canceled {
		return updated, nil
	}

	s.notifier.Notify(CollectionAvailability)
	s.notifier.Notify(CollectionAppointments)
	s.log.Info().Int64("appointment_id", id).Msg("appointment canceled")
	return updated, nil
}

// UpdateAppointmentStatus performs one state-machine transition. Declining
// releases the slot back to the calendar; cancellation is routed through
// CancelAppointment so the slot bookkeeping stays in one place.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id int64, to AppointmentStatus) (*Appointment, error) {
	if to == StatusCanceled {
		return s.CancelAppointment(ctx, id)
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *Appointment
	err = s.locker.WithDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		cur, err := s.repo.GetByID(lockCtx, id)
		if err != nil {
			return err
		}
		if !CanTransition(cur.Status, to) {
			return fmt.Errorf("%s -> %s: %w", cur.Status, to, ErrInvalidTransition)
		}

		if to == StatusDeclined {
			slot := cur.Slot()
			s.availability.InsertSorted(cur.DoctorID, slot.Date, slot.Time)
		}
		cur.Status = to
		if err := s.repo.Update(lockCtx, cur); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == StatusDeclined {
		s.notifier.Notify(CollectionAvailability)
	}
	s.notifier.Notify(CollectionAppointments)
	s.log.Info().
		Int64("appointment_id", id).
		Str("status", string(to)).
		Msg("appointment status updated")
	return updated, nil
}

// AcceptAll confirms every future pending appointment for the doctor.
// Best-effort: failures are reported per item and earlier updates stand.
func (s *Service) AcceptAll(ctx context.Context, doctorID uuid.UUID) (BulkResult, error) {
	return s.bulkTransition(ctx, doctorID, StatusConfirmed)
}

// DeclineAll declines the doctor's future pending and confirmed appointments,
// releasing each declined slot. Confirmed ones cannot legally move to declined
// and surface as per-item failures. Same best-effort semantics as AcceptAll.
func (s *Service) DeclineAll(ctx context.Context, doctorID uuid.UUID) (BulkResult, error) {
	return s.bulkTransition(ctx, doctorID, StatusDeclined)
}

func (s *Service) bulkTransition(ctx context.Context, doctorID uuid.UUID, to AppointmentStatus) (BulkResult, error) {
	if _, err := s.users.DoctorByID(ctx, doctorID); err != nil {
		return BulkResult{}, err
	}

	appts, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list appointments: %w", err)
	}

	now := s.now()
	// Non-nil slices so an empty batch serializes as [] rather than null.
	result := BulkResult{Updated: []int64{}, Failed: []BulkFailure{}}
	for _, a := range appts {
		if a.Status != StatusPending && a.Status != StatusConfirmed {
			continue
		}
		if a.Status == to || !a.DateTime.After(now) {
			continue
		}
		if _, err := s.UpdateAppointmentStatus(ctx, a.ID, to); err != nil {
			result.Failed = append(result.Failed, BulkFailure{AppointmentID: a.ID, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, a.ID)
	}
	return result, nil
}

// GetAppointment returns one appointment by id.
func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// AppointmentsByPatient lists a patient's appointments through the filter.
func (s *Service) AppointmentsByPatient(ctx context.Context, patientID uuid.UUID, filter QueryFilter) ([]Appointment, error) {
	appts, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.filtered(appts, filter), nil
}

// AppointmentsByDoctor lists a doctor's appointments through the filter.
func (s *Service) AppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID, filter QueryFilter) ([]Appointment, error) {
	appts, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.filtered(appts, filter), nil
}

func (s *Service) filtered(appts []Appointment, filter QueryFilter) []Appointment {
	now := s.now()
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		switch filter {
		case FilterScheduled:
			if a.Status == StatusPending || a.Status == StatusConfirmed {
				out = append(out, a)
			}
		case FilterPast:
			// Past is a status classification, not a wall-clock one.
			if a.Status == StatusCompleted {
				out = append(out, a)
			}
		case FilterUpcoming:
			if (a.Status == StatusPending || a.Status == StatusConfirmed) && a.DateTime.After(now) {
				out = append(out, a)
			}
		default:
			out = append(out, a)
		}
	}
	return out
}

// bookLocked validates and consumes a slot. Callers must hold the doctor lock.
func (s *Service) bookLocked(ctx context.Context, doctorID uuid.UUID, slot Slot) error {
	if !s.availability.HasDay(doctorID, slot.Date) {
		return ErrNoAvailability
	}

	existing, err := s.repo.FindActiveByDoctorAt(ctx, doctorID, slot.DateTime())
	if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
		return fmt.Errorf("check active appointment: %w", err)
	}
	if existing != nil {
		return ErrSlotUnavailable
	}

	if !s.availability.Remove(doctorID, slot.Date, slot.Time) {
		return ErrSlotUnavailable
	}
	return nil
}
