package scheduling

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-process appointment table. All reads return
// copies so callers never alias repository state.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments map[int64]Appointment
	nextID       int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments: make(map[int64]Appointment),
		nextID:       1,
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = now
	a.UpdatedAt = now
	r.appointments[a.ID] = *a
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	r.appointments[a.ID] = *a
	return nil
}

func (r *MemoryRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *MemoryRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Appointment, error) {
	return r.list(func(Appointment) bool { return true }), nil
}

func (r *MemoryRepository) FindActiveByDoctorAt(_ context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.appointments {
		if a.DoctorID != doctorID || !a.DateTime.Equal(at) {
			continue
		}
		if a.Status == StatusCanceled || a.Status == StatusDeclined {
			continue
		}
		found := a
		return &found, nil
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) list(keep func(Appointment) bool) []Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type repositorySnapshot struct {
	NextID       int64         `json:"next_id"`
	Appointments []Appointment `json:"appointments"`
}

// MarshalSnapshot serializes the appointment table for the persistence sink.
func (r *MemoryRepository) MarshalSnapshot() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := repositorySnapshot{NextID: r.nextID}
	for _, a := range r.appointments {
		snap.Appointments = append(snap.Appointments, a)
	}
	sort.Slice(snap.Appointments, func(i, j int) bool {
		return snap.Appointments[i].ID < snap.Appointments[j].ID
	})
	return json.Marshal(snap)
}

// RestoreSnapshot replaces the appointment table with a saved snapshot.
func (r *MemoryRepository) RestoreSnapshot(data []byte) error {
	var snap repositorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.appointments = make(map[int64]Appointment, len(snap.Appointments))
	r.nextID = snap.NextID
	for _, a := range snap.Appointments {
		r.appointments[a.ID] = a
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return nil
}
