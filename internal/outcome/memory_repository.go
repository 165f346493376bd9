package outcome

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	outcomes map[int64]Outcome
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{outcomes: make(map[int64]Outcome)}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, o *Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.outcomes[o.AppointmentID]; ok {
		return ErrOutcomeExists
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.outcomes[o.AppointmentID] = *o
	return nil
}

func (r *MemoryRepository) GetByAppointment(_ context.Context, appointmentID int64) (*Outcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.outcomes[appointmentID]
	if !ok {
		return nil, ErrOutcomeNotFound
	}
	return &o, nil
}

func (r *MemoryRepository) Update(_ context.Context, o *Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.outcomes[o.AppointmentID]; !ok {
		return ErrOutcomeNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	r.outcomes[o.AppointmentID] = *o
	return nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Outcome, error) {
	return r.list(func(Outcome) bool { return true }), nil
}

func (r *MemoryRepository) ListByBillingStatus(_ context.Context, status BillingStatus) ([]Outcome, error) {
	return r.list(func(o Outcome) bool { return o.BillingStatus == status }), nil
}

func (r *MemoryRepository) ListByPrescriptionStatus(_ context.Context, status PrescriptionStatus) ([]Outcome, error) {
	return r.list(func(o Outcome) bool { return o.PrescriptionStatus == status }), nil
}

func (r *MemoryRepository) list(keep func(Outcome) bool) []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Outcome
	for _, o := range r.outcomes {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentID < out[j].AppointmentID })
	return out
}

// MarshalSnapshot serializes all outcomes for the persistence sink.
func (r *MemoryRepository) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(r.list(func(Outcome) bool { return true }))
}

// RestoreSnapshot replaces the outcome table with a saved snapshot.
func (r *MemoryRepository) RestoreSnapshot(data []byte) error {
	var outcomes []Outcome
	if err := json.Unmarshal(data, &outcomes); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.outcomes = make(map[int64]Outcome, len(outcomes))
	for _, o := range outcomes {
		r.outcomes[o.AppointmentID] = o
	}
	return nil
}
