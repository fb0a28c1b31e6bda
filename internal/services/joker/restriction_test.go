package joker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRestrictions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Restriction
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{
			name:  "single",
			input: "01.08.-31.08.[2]",
			want:  []Restriction{{StartDay: 1, StartMonth: time.August, EndDay: 31, EndMonth: time.August, MaxJokers: 2}},
		},
		{
			name:  "several with spaces",
			input: "01.08.-31.08.[2]; 15.12.-31.12.[1]",
			want: []Restriction{
				{StartDay: 1, StartMonth: time.August, EndDay: 31, EndMonth: time.August, MaxJokers: 2},
				{StartDay: 15, StartMonth: time.December, EndDay: 31, EndMonth: time.December, MaxJokers: 1},
			},
		},
		{
			name:  "leap day",
			input: "29.02.-31.03.[1]",
			want:  []Restriction{{StartDay: 29, StartMonth: time.February, EndDay: 31, EndMonth: time.March, MaxJokers: 1}},
		},
		{name: "missing brackets", input: "01.08.-31.08.2", wantErr: true},
		{name: "single digit day", input: "1.08.-31.08.[2]", wantErr: true},
		{name: "month 13", input: "01.13.-31.12.[2]", wantErr: true},
		{name: "31 april", input: "01.04.-31.04.[2]", wantErr: true},
		{name: "one bad entry invalidates all", input: "01.08.-31.08.[2];garbage", wantErr: true},
		{name: "trailing separator", input: "01.08.-31.08.[2];", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRestrictions(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRestriction)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestriction_Applies(t *testing.T) {
	r := Restriction{StartDay: 1, StartMonth: time.August, EndDay: 31, EndMonth: time.August, MaxJokers: 2}

	assert.True(t, r.Applies(date(2025, 8, 1)))
	assert.True(t, r.Applies(date(2025, 8, 31)))
	assert.True(t, r.Applies(date(2024, 8, 15)))
	assert.False(t, r.Applies(date(2025, 7, 31)))
	assert.False(t, r.Applies(date(2025, 9, 1)))

	start, end := r.Window(date(2026, 8, 10))
	assert.Equal(t, date(2026, 8, 1), start)
	assert.Equal(t, date(2026, 8, 31), end)
	assert.Equal(t, "01.08.-31.08.[2]", r.String())
}

func TestRestriction_WindowLeapDay(t *testing.T) {
	rs, err := ParseRestrictions("29.02.-10.03.[1]")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	r := rs[0]

	start, end := r.Window(date(2025, 3, 5))
	assert.Equal(t, date(2025, 2, 28), start)
	assert.Equal(t, date(2025, 3, 10), end)
	assert.False(t, r.Applies(date(2025, 2, 27)))
	assert.True(t, r.Applies(date(2025, 2, 28)))
	assert.True(t, r.Applies(date(2025, 3, 1)))

	start, _ = r.Window(date(2024, 3, 5))
	assert.Equal(t, date(2024, 2, 29), start)
	assert.False(t, r.Applies(date(2024, 2, 28)))

	r = Restriction{StartDay: 20, StartMonth: time.February, EndDay: 29, EndMonth: time.February, MaxJokers: 1}
	_, end = r.Window(date(2025, 2, 21))
	assert.Equal(t, date(2025, 2, 28), end)
	assert.False(t, r.Applies(date(2025, 3, 1)))
}
