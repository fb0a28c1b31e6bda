package month

import (
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want [4]time.Time
	}{
		{
			name: "middle of month",
			in:   d(2025, 8, 15),
			want: [4]time.Time{d(2025, 8, 1), d(2025, 8, 31), d(2025, 9, 1), d(2025, 7, 1)},
		},
		{
			name: "leap february",
			in:   d(2024, 2, 10),
			want: [4]time.Time{d(2024, 2, 1), d(2024, 2, 29), d(2024, 3, 1), d(2024, 1, 1)},
		},
		{
			name: "year transition",
			in:   d(2025, 1, 31),
			want: [4]time.Time{d(2025, 1, 1), d(2025, 1, 31), d(2025, 2, 1), d(2024, 12, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := [4]time.Time{FirstDay(tt.in), LastDay(tt.in), Next(tt.in), Previous(tt.in)}
			if got != tt.want {
				t.Errorf("boundaries(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsFullyCovered_TableTests(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		month      time.Time
		want       bool
	}{
		{"range spans whole year", d(2025, 1, 1), d(2025, 12, 31), d(2025, 6, 1), true},
		{"starts on first day", d(2025, 6, 1), d(2025, 12, 31), d(2025, 6, 1), true},
		{"ends on last day", d(2025, 1, 1), d(2025, 6, 30), d(2025, 6, 1), true},
		{"starts mid month", d(2025, 6, 2), d(2025, 12, 31), d(2025, 6, 1), false},
		{"ends mid month", d(2025, 1, 1), d(2025, 6, 29), d(2025, 6, 1), false},
		{"starts and ends inside month", d(2025, 8, 10), d(2025, 8, 24), d(2025, 8, 1), false},
		{"other month is unaffected by mid-month start", d(2025, 6, 15), d(2025, 12, 31), d(2025, 7, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFullyCovered(tt.start, tt.end, tt.month); got != tt.want {
				t.Errorf("IsFullyCovered(%v, %v, %v) = %v, want %v", tt.start, tt.end, tt.month, got, tt.want)
			}
		})
	}
}
