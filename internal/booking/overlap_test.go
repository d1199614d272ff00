package booking

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"identical ranges", "09:00", "10:00", "09:00", "10:00", true},
		{"contained range", "09:00", "12:00", "10:00", "11:00", true},
		{"partial overlap at start", "09:00", "10:00", "09:30", "10:30", true},
		{"partial overlap at end", "09:30", "10:30", "09:00", "10:00", true},
		{"adjacent, a before b", "09:00", "10:00", "10:00", "11:00", false},
		{"adjacent, b before a", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
		{"one minute overlap", "09:00", "10:01", "10:00", "11:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%s-%s, %s-%s) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestOverlaps_Symmetry(t *testing.T) {
	ranges := [][2]string{
		{"08:00", "09:00"},
		{"08:30", "09:30"},
		{"09:00", "10:00"},
		{"09:00", "17:00"},
		{"16:59", "17:00"},
	}

	for _, a := range ranges {
		for _, b := range ranges {
			ab := Overlaps(a[0], a[1], b[0], b[1])
			ba := Overlaps(b[0], b[1], a[0], a[1])
			if ab != ba {
				t.Errorf("asymmetric: Overlaps(%v, %v) = %v but Overlaps(%v, %v) = %v", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestOverlaps_SelfOverlap(t *testing.T) {
	// Any non-empty range overlaps itself
	for _, r := range [][2]string{{"00:00", "00:01"}, {"09:00", "10:00"}, {"23:00", "23:59"}} {
		if !Overlaps(r[0], r[1], r[0], r[1]) {
			t.Errorf("range %v should overlap itself", r)
		}
	}
}
