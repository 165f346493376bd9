package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryRepository_CreateAssignsSequentialIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		a := &Appointment{DoctorID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
		if a.ID != want {
			t.Errorf("id = %d, want %d", a.ID, want)
		}
		if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
			t.Error("timestamps not set on create")
		}
	}
}

func TestMemoryRepository_GetByIDReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := &Appointment{DoctorID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Status = StatusCanceled

	again, _ := repo.GetByID(ctx, a.ID)
	if again.Status != StatusPending {
		t.Error("caller mutation leaked into the repository")
	}
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 42); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("get: got %v", err)
	}
	if err := repo.Update(ctx, &Appointment{ID: 42}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("update: got %v", err)
	}
}

func TestMemoryRepository_FindActiveByDoctorAt(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	doctorID := uuid.New()
	at := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	canceled := &Appointment{DoctorID: doctorID, PatientID: uuid.New(), DateTime: at, Status: StatusCanceled}
	if err := repo.Create(ctx, canceled); err != nil {
		t.Fatal(err)
	}

	// A canceled appointment does not occupy the slot.
	if _, err := repo.FindActiveByDoctorAt(ctx, doctorID, at); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("canceled should not be active, got %v", err)
	}

	active := &Appointment{DoctorID: doctorID, PatientID: uuid.New(), DateTime: at, Status: StatusConfirmed}
	if err := repo.Create(ctx, active); err != nil {
		t.Fatal(err)
	}

	found, err := repo.FindActiveByDoctorAt(ctx, doctorID, at)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if found.ID != active.ID {
		t.Errorf("found %d, want %d", found.ID, active.ID)
	}

	if _, err := repo.FindActiveByDoctorAt(ctx, uuid.New(), at); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("other doctor should not match, got %v", err)
	}
}

func TestMemoryRepository_ListByDoctorSorted(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	doctorID := uuid.New()

	for i := 0; i < 3; i++ {
		a := &Appointment{DoctorID: doctorID, PatientID: uuid.New(), Status: StatusPending}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	other := &Appointment{DoctorID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	appts, err := repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 3 {
		t.Fatalf("got %d appointments, want 3", len(appts))
	}
	for i := 1; i < len(appts); i++ {
		if appts[i].ID <= appts[i-1].ID {
			t.Error("list not sorted by id")
		}
	}
}

func TestMemoryRepository_SnapshotRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := &Appointment{
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		DateTime:  time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		Status:    StatusConfirmed,
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	payload, err := repo.MarshalSnapshot()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewMemoryRepository()
	if err := restored.RestoreSnapshot(payload); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, err := restored.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get after restore: %v", err)
	}
	if got.Status != StatusConfirmed || !got.DateTime.Equal(a.DateTime) {
		t.Errorf("restored appointment mismatch: %+v", got)
	}

	// The id sequence continues past the restored rows.
	next := &Appointment{DoctorID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
	if err := restored.Create(ctx, next); err != nil {
		t.Fatal(err)
	}
	if next.ID != a.ID+1 {
		t.Errorf("next id = %d, want %d", next.ID, a.ID+1)
	}
}
