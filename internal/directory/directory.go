// Package directory is the user-identity collaborator: it answers whether a
// doctor or patient exists. Registration and authentication live elsewhere.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// CollectionDirectory is the snapshot collection name for the journal.
const CollectionDirectory = "directory"

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
)

type Doctor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
}

type Patient struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type Directory interface {
	DoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	PatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
}

// MemoryDirectory is a seedable in-process directory.
type MemoryDirectory struct {
	mu       sync.RWMutex
	doctors  map[uuid.UUID]Doctor
	patients map[uuid.UUID]Patient
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		doctors:  make(map[uuid.UUID]Doctor),
		patients: make(map[uuid.UUID]Patient),
	}
}

var _ Directory = (*MemoryDirectory)(nil)

func (d *MemoryDirectory) DoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &doc, nil
}

func (d *MemoryDirectory) PatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (d *MemoryDirectory) PutDoctor(doc Doctor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doctors[doc.ID] = doc
}

func (d *MemoryDirectory) PutPatient(p Patient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients[p.ID] = p
}

func (d *MemoryDirectory) Doctors() []Doctor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Doctor, 0, len(d.doctors))
	for _, doc := range d.doctors {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

type directorySnapshot struct {
	Doctors  []Doctor  `json:"doctors"`
	Patients []Patient `json:"patients"`
}

// MarshalSnapshot serializes the directory for the persistence sink.
func (d *MemoryDirectory) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(directorySnapshot{Doctors: d.Doctors(), Patients: d.Patients()})
}

// RestoreSnapshot replaces the directory with a saved snapshot.
func (d *MemoryDirectory) RestoreSnapshot(data []byte) error {
	var snap directorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.doctors = make(map[uuid.UUID]Doctor, len(snap.Doctors))
	for _, doc := range snap.Doctors {
		d.doctors[doc.ID] = doc
	}
	d.patients = make(map[uuid.UUID]Patient, len(snap.Patients))
	for _, p := range snap.Patients {
		d.patients[p.ID] = p
	}
	return nil
}

func (d *MemoryDirectory) Patients() []Patient {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Patient, 0, len(d.patients))
	for _, p := range d.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
