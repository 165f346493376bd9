// Package pharmacy is the medication-catalog collaborator used when recording
// appointment outcomes. Inventory and replenishment live elsewhere.
package pharmacy

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// CollectionMedications is the snapshot collection name for the journal.
const CollectionMedications = "medications"

var ErrMedicationNotFound = errors.New("medication not found")

type Medication struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
}

type Catalog interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	PriceOf(ctx context.Context, id uuid.UUID) (float64, error)
}

type MemoryCatalog struct {
	mu   sync.RWMutex
	meds map[uuid.UUID]Medication
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{meds: make(map[uuid.UUID]Medication)}
}

var _ Catalog = (*MemoryCatalog)(nil)

func (c *MemoryCatalog) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.meds[id]
	return ok, nil
}

func (c *MemoryCatalog) PriceOf(_ context.Context, id uuid.UUID) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	med, ok := c.meds[id]
	if !ok {
		return 0, ErrMedicationNotFound
	}
	return med.Price, nil
}

func (c *MemoryCatalog) Put(med Medication) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meds[med.ID] = med
}

func (c *MemoryCatalog) Medications() []Medication {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Medication, 0, len(c.meds))
	for _, m := range c.meds {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// MarshalSnapshot serializes the catalog for the persistence sink.
func (c *MemoryCatalog) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(c.Medications())
}

// RestoreSnapshot replaces the catalog with a saved snapshot.
func (c *MemoryCatalog) RestoreSnapshot(data []byte) error {
	var meds []Medication
	if err := json.Unmarshal(data, &meds); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.meds = make(map[uuid.UUID]Medication, len(meds))
	for _, m := range meds {
		c.meds[m.ID] = m
	}
	return nil
}
