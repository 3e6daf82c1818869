package openhours

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutes(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"23:59", 1439, false},
		{"09:05", 545, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := Minutes(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestIsOpen_AllDay(t *testing.T) {
	// 00:00–23:59 is open at every minute of the day.
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 29, 59} {
			current := fmt.Sprintf("%02d:%02d", h, m)
			open, err := IsOpen(current, "00:00", "23:59")
			require.NoError(t, err)
			assert.True(t, open, current)
		}
	}
}

func TestIsOpen_NormalWindow(t *testing.T) {
	cases := []struct {
		current string
		want    bool
	}{
		{"08:00", true},  // opening boundary inclusive
		{"22:00", true},  // closing boundary inclusive
		{"15:00", true},
		{"07:59", false}, // one minute before open
		{"22:01", false}, // one minute after close
		{"00:00", false},
		{"23:59", false},
	}

	for _, tc := range cases {
		got, err := IsOpen(tc.current, "08:00", "22:00")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.current)
	}
}

func TestIsOpen_OvernightWindow(t *testing.T) {
	cases := []struct {
		current string
		want    bool
	}{
		{"23:30", true},
		{"01:00", true},
		{"10:00", false},
		{"21:00", true}, // opening boundary inclusive
		{"02:00", true}, // closing boundary inclusive
		{"02:01", false},
		{"20:59", false},
	}

	for _, tc := range cases {
		got, err := IsOpen(tc.current, "21:00", "02:00")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.current)
	}
}

func TestIsOpen_DegenerateSingleMinute(t *testing.T) {
	// open == close (not the 24h pair) is open only at exactly that minute.
	got, err := IsOpen("12:00", "12:00", "12:00")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = IsOpen("12:01", "12:00", "12:00")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsOpen_InvalidInput(t *testing.T) {
	_, err := IsOpen("25:00", "08:00", "22:00")
	assert.Error(t, err)

	_, err = IsOpen("12:00", "8am", "22:00")
	assert.Error(t, err)

	_, err = IsOpen("12:00", "08:00", "22pm")
	assert.Error(t, err)
}
