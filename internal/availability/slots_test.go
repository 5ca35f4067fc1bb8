package availability

import "testing"

func TestDefaultSlots(t *testing.T) {
	slots := DefaultSlots()
	if len(slots) != 8 {
		t.Fatalf("expected 8 default slots, got %d", len(slots))
	}
	if slots[0].StartTime != "06:00" || slots[0].EndTime != "08:00" {
		t.Fatalf("unexpected first slot %+v", slots[0])
	}
	if slots[7].StartTime != "20:00" || slots[7].EndTime != "22:00" {
		t.Fatalf("unexpected last slot %+v", slots[7])
	}
}

func TestGenerateSlotsDropsTrailingPartial(t *testing.T) {
	// 06:00-21:00 with 2h slots: the 20:00-22:00 slot would pass closing time.
	slots, err := GenerateSlots("06:00", "21:00", 2)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}
	if slots[len(slots)-1].EndTime != "20:00" {
		t.Fatalf("expected last slot to end at 20:00, got %s", slots[len(slots)-1].EndTime)
	}
}

func TestGenerateSlotsRejectsBadClock(t *testing.T) {
	if _, err := GenerateSlots("6:00", "22:00", 2); err == nil {
		t.Fatal("expected error for malformed opening time")
	}
}

func TestAvailableSlotsExactMatchOnly(t *testing.T) {
	slots := DefaultSlots()

	// A booking exactly on a slot boundary hides that slot.
	avail := AvailableSlots(slots, []Slot{{StartTime: "08:00", EndTime: "10:00"}})
	if len(avail) != 7 {
		t.Fatalf("expected 7 available slots, got %d", len(avail))
	}
	for _, s := range avail {
		if s.StartTime == "08:00" {
			t.Fatal("08:00-10:00 should have been removed")
		}
	}

	// An off-grid booking matches no slot exactly and removes nothing.
	avail = AvailableSlots(slots, []Slot{{StartTime: "09:00", EndTime: "11:00"}})
	if len(avail) != 8 {
		t.Fatalf("expected 8 available slots for off-grid booking, got %d", len(avail))
	}
}

func TestHasConflict(t *testing.T) {
	booked := []Slot{{StartTime: "09:00", EndTime: "11:00"}}

	req, err := ParseInterval("10:00", "12:00")
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	if !HasConflict(req, booked) {
		t.Fatal("expected 10:00-12:00 to conflict with 09:00-11:00")
	}

	req, err = ParseInterval("11:00", "13:00")
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	if HasConflict(req, booked) {
		t.Fatal("expected 11:00-13:00 to be free next to 09:00-11:00")
	}
}
