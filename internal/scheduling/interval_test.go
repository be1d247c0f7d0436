package scheduling

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustInterval(t *testing.T, d time.Time, start, end string) Interval {
	t.Helper()
	s, err := ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("bad start %q: %v", start, err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("bad end %q: %v", end, err)
	}
	iv, err := NewInterval(d, s, e)
	if err != nil {
		t.Fatalf("NewInterval(%s, %s): %v", start, end, err)
	}
	return iv
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  TimeOfDay
		wantError bool
	}{
		{"morning", "08:00", 480, false},
		{"midnight", "00:00", 0, false},
		{"end of day", "23:59", 1439, false},
		{"no leading zero", "9:30", 570, false},
		{"hour out of range", "25:00", 0, true},
		{"minute out of range", "10:60", 0, true},
		{"wrong separator", "10-30", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if (err != nil) != tt.wantError {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
			if err == nil && got != tt.expected {
				t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := TimeOfDay(480).String(); got != "08:00" {
		t.Errorf("String() = %q, want %q", got, "08:00")
	}
	if got := TimeOfDay(1439).String(); got != "23:59" {
		t.Errorf("String() = %q, want %q", got, "23:59")
	}
}

func TestNewInterval_Rejections(t *testing.T) {
	d := date(2026, time.September, 14)

	tests := []struct {
		name  string
		start TimeOfDay
		end   TimeOfDay
	}{
		{"start equals end", 480, 480},
		{"start after end", 600, 480},
		{"negative start", -10, 480},
		{"end past midnight", 480, MinutesPerDay + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInterval(d, tt.start, tt.end)
			if !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("NewInterval(%d, %d) error = %v, want ErrInvalidInterval", tt.start, tt.end, err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	d := date(2026, time.September, 14)
	other := date(2026, time.September, 15)

	tests := []struct {
		name     string
		a        Interval
		b        Interval
		expected bool
	}{
		{
			name:     "identical intervals",
			a:        mustInterval(t, d, "08:00", "10:00"),
			b:        mustInterval(t, d, "08:00", "10:00"),
			expected: true,
		},
		{
			name:     "partial overlap",
			a:        mustInterval(t, d, "08:00", "11:00"),
			b:        mustInterval(t, d, "10:00", "12:00"),
			expected: true,
		},
		{
			name:     "containment",
			a:        mustInterval(t, d, "08:00", "18:00"),
			b:        mustInterval(t, d, "10:00", "12:00"),
			expected: true,
		},
		{
			name:     "touching endpoints do not conflict",
			a:        mustInterval(t, d, "08:00", "10:00"),
			b:        mustInterval(t, d, "10:00", "12:00"),
			expected: false,
		},
		{
			name:     "disjoint",
			a:        mustInterval(t, d, "08:00", "10:00"),
			b:        mustInterval(t, d, "14:00", "16:00"),
			expected: false,
		},
		{
			name:     "same times on different dates",
			a:        mustInterval(t, d, "08:00", "10:00"),
			b:        mustInterval(t, other, "08:00", "10:00"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.expected {
				t.Errorf("Overlaps(a, b) = %v, want %v", got, tt.expected)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.b, tt.a); got != tt.expected {
				t.Errorf("Overlaps(b, a) = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	d := date(2026, time.September, 14)
	winStart := TimeOfDay(8 * 60)
	winEnd := TimeOfDay(18 * 60)

	tests := []struct {
		name     string
		iv       Interval
		expected bool
	}{
		{"inside", mustInterval(t, d, "10:00", "12:00"), true},
		{"exact window", mustInterval(t, d, "08:00", "18:00"), true},
		{"starts before window", mustInterval(t, d, "07:00", "09:00"), false},
		{"ends after window", mustInterval(t, d, "16:00", "19:00"), false},
		{"fully outside", mustInterval(t, d, "19:00", "20:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Within(tt.iv, winStart, winEnd); got != tt.expected {
				t.Errorf("Within() = %v, want %v", got, tt.expected)
			}
		})
	}
}
