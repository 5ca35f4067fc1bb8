package availability

// Slot is a bookable time range rendered as HH:MM strings.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

const (
	DefaultOpeningTime     = "06:00"
	DefaultClosingTime     = "22:00"
	DefaultSlotDurationHrs = 2
	minutesPerHour         = 60
)

// GenerateSlots produces consecutive fixed-length slots between opening and
// closing. A trailing slot that would run past closing is dropped. With the
// defaults (06:00-22:00, 2h) this yields exactly 8 slots.
func GenerateSlots(opening, closing string, slotDurationHours int) ([]Slot, error) {
	openMin, err := ParseClock(opening)
	if err != nil {
		return nil, err
	}
	closeMin, err := ParseClock(closing)
	if err != nil {
		return nil, err
	}
	if slotDurationHours <= 0 {
		slotDurationHours = DefaultSlotDurationHrs
	}
	step := slotDurationHours * minutesPerHour

	var slots []Slot
	for t := openMin; t+step <= closeMin; t += step {
		slots = append(slots, Slot{
			StartTime: FormatClock(t),
			EndTime:   FormatClock(t + step),
		})
	}
	return slots, nil
}

// DefaultSlots returns the canonical daily slot set.
func DefaultSlots() []Slot {
	slots, _ := GenerateSlots(DefaultOpeningTime, DefaultClosingTime, DefaultSlotDurationHrs)
	return slots
}

// AvailableSlots filters the canonical slots against booked ranges by exact
// start/end string match. A booking only hides a slot when its startTime and
// endTime both equal the slot boundaries; off-grid bookings do not remove
// slots here, overlap enforcement happens at booking time via HasConflict.
func AvailableSlots(slots []Slot, booked []Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		taken := false
		for _, b := range booked {
			if b.StartTime == s.StartTime && b.EndTime == s.EndTime {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, s)
		}
	}
	return out
}

// HasConflict reports whether the requested interval overlaps any booked range.
// Booked ranges that fail to parse are skipped.
func HasConflict(requested Interval, booked []Slot) bool {
	for _, b := range booked {
		iv, err := ParseInterval(b.StartTime, b.EndTime)
		if err != nil {
			continue
		}
		if Overlaps(requested, iv) {
			return true
		}
	}
	return false
}
