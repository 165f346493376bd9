package scheduling

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// AvailabilityStore is the per-doctor calendar of free slots. Times for a day
// are kept ascending with no duplicates.
type AvailabilityStore interface {
	// Get returns the free times for the day, ascending. Empty if none set.
	Get(doctorID uuid.UUID, date Date) []TimeOfDay
	// GetMonth returns every day with free times for the doctor.
	GetMonth(doctorID uuid.UUID, year int, month int) map[Date][]TimeOfDay
	// ReplaceDay wholesale-sets the free times for one day.
	ReplaceDay(doctorID uuid.UUID, date Date, times []TimeOfDay)
	// Remove books a slot. Returns false if the time is not free.
	Remove(doctorID uuid.UUID, date Date, t TimeOfDay) bool
	// InsertSorted frees a slot, preserving ascending order.
	// Returns false if the time is already free.
	InsertSorted(doctorID uuid.UUID, date Date, t TimeOfDay) bool
	// HasDay reports whether any availability entry exists for the day,
	// even an empty one.
	HasDay(doctorID uuid.UUID, date Date) bool
}

type dayKey struct {
	doctor uuid.UUID
	date   Date
}

// MemoryAvailabilityStore keeps the calendar in process memory. Durable state
// flows through snapshot save/load on the persistence sink.
type MemoryAvailabilityStore struct {
	mu   sync.RWMutex
	days map[dayKey][]TimeOfDay
}

func NewMemoryAvailabilityStore() *MemoryAvailabilityStore {
	return &MemoryAvailabilityStore{days: make(map[dayKey][]TimeOfDay)}
}

var _ AvailabilityStore = (*MemoryAvailabilityStore)(nil)

func (s *MemoryAvailabilityStore) Get(doctorID uuid.UUID, date Date) []TimeOfDay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	times := s.days[dayKey{doctor: doctorID, date: date}]
	out := make([]TimeOfDay, len(times))
	copy(out, times)
	return out
}

func (s *MemoryAvailabilityStore) GetMonth(doctorID uuid.UUID, year int, month int) map[Date][]TimeOfDay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Date][]TimeOfDay)
	for k, times := range s.days {
		if k.doctor != doctorID || k.date.Year != year || int(k.date.Month) != month {
			continue
		}
		day := make([]TimeOfDay, len(times))
		copy(day, times)
		out[k.date] = day
	}
	return out
}

func (s *MemoryAvailabilityStore) ReplaceDay(doctorID uuid.UUID, date Date, times []TimeOfDay) {
	day := make([]TimeOfDay, len(times))
	copy(day, times)
	sort.Slice(day, func(i, j int) bool { return day[i] < day[j] })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayKey{doctor: doctorID, date: date}] = day
}

func (s *MemoryAvailabilityStore) Remove(doctorID uuid.UUID, date Date, t TimeOfDay) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{doctor: doctorID, date: date}
	times := s.days[key]
	for i, existing := range times {
		if existing == t {
			s.days[key] = append(times[:i], times[i+1:]...)
			return true
		}
	}
	return false
}

func (s *MemoryAvailabilityStore) InsertSorted(doctorID uuid.UUID, date Date, t TimeOfDay) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{doctor: doctorID, date: date}
	times := s.days[key]
	i := sort.Search(len(times), func(i int) bool { return times[i] >= t })
	if i < len(times) && times[i] == t {
		return false
	}

	times = append(times, 0)
	copy(times[i+1:], times[i:])
	times[i] = t
	s.days[key] = times
	return true
}

func (s *MemoryAvailabilityStore) HasDay(doctorID uuid.UUID, date Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.days[dayKey{doctor: doctorID, date: date}]
	return ok
}

type availabilityRecord struct {
	DoctorID uuid.UUID   `json:"doctor_id"`
	Date     Date        `json:"date"`
	Times    []TimeOfDay `json:"times"`
}

// MarshalSnapshot serializes the full calendar for the persistence sink.
func (s *MemoryAvailabilityStore) MarshalSnapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]availabilityRecord, 0, len(s.days))
	for k, times := range s.days {
		day := make([]TimeOfDay, len(times))
		copy(day, times)
		records = append(records, availabilityRecord{DoctorID: k.doctor, Date: k.date, Times: day})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].DoctorID != records[j].DoctorID {
			return records[i].DoctorID.String() < records[j].DoctorID.String()
		}
		return records[j].Date.After(records[i].Date)
	})
	return json.Marshal(records)
}

// RestoreSnapshot replaces the calendar with a previously saved snapshot.
func (s *MemoryAvailabilityStore) RestoreSnapshot(data []byte) error {
	var records []availabilityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.days = make(map[dayKey][]TimeOfDay, len(records))
	for _, rec := range records {
		times := make([]TimeOfDay, len(rec.Times))
		copy(times, rec.Times)
		sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
		s.days[dayKey{doctor: rec.DoctorID, date: rec.Date}] = times
	}
	return nil
}
