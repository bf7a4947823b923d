package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2025, time.January, 15, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"half-contained", at(10, 30), at(11, 30), at(10, 0), at(11, 0), true},
		{"disjoint after", at(12, 0), at(13, 0), at(10, 0), at(11, 0), false},
		{"disjoint before", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"touching end-to-start does not conflict", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"touching start-to-end does not conflict", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"contained", at(10, 15), at(10, 45), at(10, 0), at(11, 0), true},
		{"containing", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestValidHHMM(t *testing.T) {
	assert.True(t, validHHMM("09:00"))
	assert.True(t, validHHMM("23:59"))
	assert.False(t, validHHMM("9:00"), "must be zero-padded")
	assert.False(t, validHHMM("09:00:00"), "seconds break fixed-width comparison")
	assert.False(t, validHHMM("24:00"))
	assert.False(t, validHHMM("09-00"))
	assert.False(t, validHHMM(""))
}

func TestAtTimeOfDay(t *testing.T) {
	day := time.Date(2025, time.January, 6, 17, 42, 3, 0, time.UTC)

	got, err := atTimeOfDay(day, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC), got)

	_, err = atTimeOfDay(day, "bad")
	assert.Error(t, err)
}
