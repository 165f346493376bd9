package outcome

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinic-scheduling/internal/pharmacy"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

// fakeScheduler holds appointments in a map and enforces the same state
// machine the real scheduling service does.
type fakeScheduler struct {
	appointments map[int64]*scheduling.Appointment
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{appointments: make(map[int64]*scheduling.Appointment)}
}

func (f *fakeScheduler) add(id int64, status scheduling.AppointmentStatus) {
	f.appointments[id] = &scheduling.Appointment{
		ID:        id,
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		DateTime:  time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func (f *fakeScheduler) GetAppointment(_ context.Context, id int64) (*scheduling.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, scheduling.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeScheduler) UpdateAppointmentStatus(_ context.Context, id int64, status scheduling.AppointmentStatus) (*scheduling.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, scheduling.ErrAppointmentNotFound
	}
	if !scheduling.CanTransition(a.Status, status) {
		return nil, fmt.Errorf("%s -> %s: %w", a.Status, status, scheduling.ErrInvalidTransition)
	}
	a.Status = status
	copied := *a
	return &copied, nil
}

type outcomeEnv struct {
	svc       *Service
	repo      *MemoryRepository
	scheduler *fakeScheduler
	catalog   *pharmacy.MemoryCatalog
	medID     uuid.UUID
}

const testConsultationFee = 150.0

func newOutcomeEnv(t *testing.T) *outcomeEnv {
	t.Helper()

	repo := NewMemoryRepository()
	scheduler := newFakeScheduler()
	catalog := pharmacy.NewMemoryCatalog()

	medID := uuid.New()
	catalog.Put(pharmacy.Medication{ID: medID, Name: "Amoxicillin", Price: 25.5})

	svc := NewService(repo, scheduler, catalog, testConsultationFee, nil, zerolog.Nop())

	return &outcomeEnv{svc: svc, repo: repo, scheduler: scheduler, catalog: catalog, medID: medID}
}

func TestRecordOutcome(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()
	env.scheduler.add(1, scheduling.StatusConfirmed)

	o, err := env.svc.RecordOutcome(ctx, 1, "consultation", []uuid.UUID{env.medID}, "rest and fluids")
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	if o.TotalAmount != testConsultationFee+25.5 {
		t.Errorf("total = %.2f, want %.2f", o.TotalAmount, testConsultationFee+25.5)
	}
	if len(o.MedicationFees) != 1 || o.MedicationFees[0] != 25.5 {
		t.Errorf("medication fees = %v", o.MedicationFees)
	}
	if o.PrescriptionStatus != PrescriptionPending {
		t.Errorf("prescription status = %s, want pending", o.PrescriptionStatus)
	}
	if o.BillingStatus != BillingUnpaid {
		t.Errorf("billing status = %s, want unpaid", o.BillingStatus)
	}

	appt, _ := env.scheduler.GetAppointment(ctx, 1)
	if appt.Status != scheduling.StatusCompleted {
		t.Errorf("appointment status = %s, want completed", appt.Status)
	}
}

func TestRecordOutcome_NoMedications(t *testing.T) {
	env := newOutcomeEnv(t)
	env.scheduler.add(1, scheduling.StatusConfirmed)

	o, err := env.svc.RecordOutcome(context.Background(), 1, "checkup", nil, "")
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if o.TotalAmount != testConsultationFee {
		t.Errorf("total = %.2f, want flat consultation fee", o.TotalAmount)
	}
}

func TestRecordOutcome_UnknownMedication(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()
	env.scheduler.add(1, scheduling.StatusConfirmed)

	_, err := env.svc.RecordOutcome(ctx, 1, "consultation", []uuid.UUID{uuid.New()}, "")
	if !errors.Is(err, ErrUnknownMedication) {
		t.Fatalf("got %v, want ErrUnknownMedication", err)
	}

	// Validation failure must leave the appointment and repository untouched.
	appt, _ := env.scheduler.GetAppointment(ctx, 1)
	if appt.Status != scheduling.StatusConfirmed {
		t.Errorf("appointment status = %s, should be unchanged", appt.Status)
	}
	if _, err := env.repo.GetByAppointment(ctx, 1); !errors.Is(err, ErrOutcomeNotFound) {
		t.Error("no outcome should exist after a failed record")
	}
}

func TestRecordOutcome_Duplicate(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()
	env.scheduler.add(1, scheduling.StatusConfirmed)

	if _, err := env.svc.RecordOutcome(ctx, 1, "consultation", nil, ""); err != nil {
		t.Fatalf("first record: %v", err)
	}
	_, err := env.svc.RecordOutcome(ctx, 1, "consultation", nil, "")
	if !errors.Is(err, ErrOutcomeExists) {
		t.Errorf("got %v, want ErrOutcomeExists", err)
	}
}

func TestRecordOutcome_PendingAppointment(t *testing.T) {
	env := newOutcomeEnv(t)
	env.scheduler.add(1, scheduling.StatusPending)

	// Pending cannot jump straight to completed.
	_, err := env.svc.RecordOutcome(context.Background(), 1, "consultation", nil, "")
	if !errors.Is(err, scheduling.ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestRecordOutcome_AppointmentNotFound(t *testing.T) {
	env := newOutcomeEnv(t)

	_, err := env.svc.RecordOutcome(context.Background(), 99, "consultation", nil, "")
	if !errors.Is(err, scheduling.ErrAppointmentNotFound) {
		t.Errorf("got %v, want ErrAppointmentNotFound", err)
	}
}

func TestUpdatePrescriptionStatus(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()
	env.scheduler.add(1, scheduling.StatusConfirmed)

	if _, err := env.svc.RecordOutcome(ctx, 1, "consultation", []uuid.UUID{env.medID}, ""); err != nil {
		t.Fatal(err)
	}

	o, err := env.svc.UpdatePrescriptionStatus(ctx, 1, PrescriptionDispensed)
	if err != nil {
		t.Fatalf("update prescription: %v", err)
	}
	if o.PrescriptionStatus != PrescriptionDispensed {
		t.Errorf("status = %s, want dispensed", o.PrescriptionStatus)
	}
}

func TestUpdateBillingStatus(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()
	env.scheduler.add(1, scheduling.StatusConfirmed)

	if _, err := env.svc.RecordOutcome(ctx, 1, "consultation", nil, ""); err != nil {
		t.Fatal(err)
	}

	o, err := env.svc.UpdateBillingStatus(ctx, 1, BillingPaid)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if o.BillingStatus != BillingPaid {
		t.Errorf("status = %s, want paid", o.BillingStatus)
	}

	if _, err := env.svc.UpdateBillingStatus(ctx, 1, BillingPaid); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("second payment: got %v, want ErrAlreadyPaid", err)
	}
}

func TestUpdateStatuses_OutcomeNotFound(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()

	if _, err := env.svc.UpdatePrescriptionStatus(ctx, 7, PrescriptionDispensed); !errors.Is(err, ErrOutcomeNotFound) {
		t.Errorf("prescription: got %v", err)
	}
	if _, err := env.svc.UpdateBillingStatus(ctx, 7, BillingPaid); !errors.Is(err, ErrOutcomeNotFound) {
		t.Errorf("billing: got %v", err)
	}
}

func TestListOutcomesByStatus(t *testing.T) {
	env := newOutcomeEnv(t)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		env.scheduler.add(id, scheduling.StatusConfirmed)
		if _, err := env.svc.RecordOutcome(ctx, id, "consultation", nil, ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.svc.UpdateBillingStatus(ctx, 2, BillingPaid); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.UpdatePrescriptionStatus(ctx, 3, PrescriptionDispensed); err != nil {
		t.Fatal(err)
	}

	unpaid, err := env.svc.ListByBillingStatus(ctx, BillingUnpaid)
	if err != nil {
		t.Fatal(err)
	}
	if len(unpaid) != 2 {
		t.Errorf("unpaid = %d, want 2", len(unpaid))
	}

	dispensed, err := env.svc.ListByPrescriptionStatus(ctx, PrescriptionDispensed)
	if err != nil {
		t.Fatal(err)
	}
	if len(dispensed) != 1 || dispensed[0].AppointmentID != 3 {
		t.Errorf("dispensed = %v", dispensed)
	}

	all, err := env.svc.ListOutcomes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}
