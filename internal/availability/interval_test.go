package availability

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:00", 360, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:00", 0, true},
		{"09:60", 0, true},
		{"", 0, true},
		{"banana", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	a := Interval{Start: 9 * 60, End: 11 * 60}
	b := Interval{Start: 10 * 60, End: 12 * 60}
	if !Overlaps(a, b) || !Overlaps(b, a) {
		t.Fatal("expected 09-11 and 10-12 to overlap both ways")
	}
}

func TestOverlapsAdjacentIntervals(t *testing.T) {
	a := Interval{Start: 10 * 60, End: 12 * 60}
	b := Interval{Start: 12 * 60, End: 14 * 60}
	if Overlaps(a, b) || Overlaps(b, a) {
		t.Fatal("half-open intervals sharing only a boundary must not overlap")
	}
}

func TestParseIntervalRejectsInvertedRange(t *testing.T) {
	if _, err := ParseInterval("11:00", "09:00"); err == nil {
		t.Fatal("expected error for end before start")
	}
	if _, err := ParseInterval("10:00", "10:00"); err == nil {
		t.Fatal("expected error for zero-length interval")
	}
}

func TestDurationHours(t *testing.T) {
	iv, err := ParseInterval("09:00", "11:00")
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	if got := iv.DurationHours(); got != 2.0 {
		t.Fatalf("expected 2.0 hours, got %v", got)
	}
	iv, err = ParseInterval("09:00", "10:30")
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	if got := iv.DurationHours(); got != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", got)
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2026-08-28", "2026-01-01", "2026-12-31"}
	for _, d := range valid {
		if !ValidDate(d) {
			t.Fatalf("expected %q to be valid", d)
		}
	}
	invalid := []string{"2026-13-01", "2026-00-10", "26-08-28", "2026/08/28", ""}
	for _, d := range invalid {
		if ValidDate(d) {
			t.Fatalf("expected %q to be invalid", d)
		}
	}
}
