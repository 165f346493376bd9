package scheduling

import (
	"testing"

	"github.com/google/uuid"
)

func TestAvailabilityStore_InsertSortedKeepsOrder(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	day := Date{Year: 2026, Month: 9, Day: 1}

	for _, tod := range []TimeOfDay{NewTimeOfDay(14, 0), NewTimeOfDay(9, 0), NewTimeOfDay(11, 0)} {
		if !store.InsertSorted(doctorID, day, tod) {
			t.Fatalf("insert %s returned false", tod)
		}
	}

	times := store.Get(doctorID, day)
	want := []string{"09:00", "11:00", "14:00"}
	if len(times) != len(want) {
		t.Fatalf("got %d times, want %d", len(times), len(want))
	}
	for i, w := range want {
		if times[i].String() != w {
			t.Errorf("times[%d] = %s, want %s", i, times[i], w)
		}
	}
}

func TestAvailabilityStore_InsertSortedRejectsDuplicate(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	day := Date{Year: 2026, Month: 9, Day: 1}

	store.InsertSorted(doctorID, day, NewTimeOfDay(10, 0))
	if store.InsertSorted(doctorID, day, NewTimeOfDay(10, 0)) {
		t.Error("duplicate insert should return false")
	}
	if got := len(store.Get(doctorID, day)); got != 1 {
		t.Errorf("expected 1 time, got %d", got)
	}
}

func TestAvailabilityStore_Remove(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	day := Date{Year: 2026, Month: 9, Day: 1}

	store.ReplaceDay(doctorID, day, GenerateSlots(NewTimeOfDay(9, 0), NewTimeOfDay(11, 0), 60))

	if !store.Remove(doctorID, day, NewTimeOfDay(10, 0)) {
		t.Fatal("remove of a free slot should succeed")
	}
	if store.Remove(doctorID, day, NewTimeOfDay(10, 0)) {
		t.Error("second remove of the same slot should fail")
	}

	times := store.Get(doctorID, day)
	if len(times) != 2 || times[0].String() != "09:00" || times[1].String() != "11:00" {
		t.Errorf("unexpected remaining times %v", times)
	}
}

func TestAvailabilityStore_HasDay(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	day := Date{Year: 2026, Month: 9, Day: 1}

	if store.HasDay(doctorID, day) {
		t.Error("unset day should report false")
	}

	// A day set to an empty list still exists, all its slots are just taken.
	store.ReplaceDay(doctorID, day, nil)
	if !store.HasDay(doctorID, day) {
		t.Error("day with empty entry should report true")
	}
}

func TestAvailabilityStore_GetMonth(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	other := uuid.New()

	store.ReplaceDay(doctorID, Date{Year: 2026, Month: 9, Day: 1}, []TimeOfDay{NewTimeOfDay(9, 0)})
	store.ReplaceDay(doctorID, Date{Year: 2026, Month: 9, Day: 2}, []TimeOfDay{NewTimeOfDay(9, 0)})
	store.ReplaceDay(doctorID, Date{Year: 2026, Month: 10, Day: 1}, []TimeOfDay{NewTimeOfDay(9, 0)})
	store.ReplaceDay(other, Date{Year: 2026, Month: 9, Day: 1}, []TimeOfDay{NewTimeOfDay(9, 0)})

	month := store.GetMonth(doctorID, 2026, 9)
	if len(month) != 2 {
		t.Fatalf("expected 2 September days, got %d", len(month))
	}
	if _, ok := month[Date{Year: 2026, Month: 10, Day: 1}]; ok {
		t.Error("October day leaked into September query")
	}
}

func TestAvailabilityStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	day := Date{Year: 2026, Month: 9, Day: 1}

	store.ReplaceDay(doctorID, day, []TimeOfDay{NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)})

	times := store.Get(doctorID, day)
	times[0] = NewTimeOfDay(23, 59)

	if got := store.Get(doctorID, day)[0]; got != NewTimeOfDay(9, 0) {
		t.Errorf("caller mutation leaked into the store: %s", got)
	}
}

func TestAvailabilityStore_SnapshotRoundTrip(t *testing.T) {
	store := NewMemoryAvailabilityStore()
	doctorID := uuid.New()
	day1 := Date{Year: 2026, Month: 9, Day: 1}
	day2 := Date{Year: 2026, Month: 9, Day: 15}

	store.ReplaceDay(doctorID, day1, GenerateSlots(NewTimeOfDay(9, 0), NewTimeOfDay(12, 0), 60))
	store.ReplaceDay(doctorID, day2, nil)

	payload, err := store.MarshalSnapshot()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewMemoryAvailabilityStore()
	if err := restored.RestoreSnapshot(payload); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got := restored.Get(doctorID, day1); len(got) != 4 {
		t.Errorf("day1 times = %v", got)
	}
	if !restored.HasDay(doctorID, day2) {
		t.Error("empty day entry lost in round trip")
	}
}
