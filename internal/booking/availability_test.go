package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantNil bool
		wantErr bool
	}{
		{name: "both absent", wantNil: true},
		{name: "only from", from: "2021-01-20 00:00:00", wantNil: true},
		{name: "only to", to: "2021-01-21 00:00:00", wantNil: true},
		{name: "valid", from: "2021-01-20 00:00:00", to: "2021-01-21T00:00:00Z"},
		{name: "malformed from", from: "20/01/2021", to: "2021-01-21 00:00:00", wantErr: true},
		{name: "malformed lone to", to: "tomorrow", wantErr: true},
		{name: "inverted", from: "2021-01-21 00:00", to: "2021-01-20 00:00", wantErr: true},
		{name: "empty window", from: "2021-01-21 00:00", to: "2021-01-21 00:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindow(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadWindow)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, w)
			} else {
				assert.NotNil(t, w)
			}
		})
	}
}

func TestFreeRooms_ContainmentOnly(t *testing.T) {
	w, err := ParseWindow("2021-01-20 00:00", "2021-01-21 00:00")
	require.NoError(t, err)

	reservations := []RoomInterval{
		{RoomID: 1, Interval: iv("2021-01-20 10:00", "2021-01-20 12:00")}, // contained
		{RoomID: 2, Interval: iv("2021-01-19 23:00", "2021-01-20 10:00")}, // overlaps the start only
		{RoomID: 3, Interval: iv("2021-01-20 00:00", "2021-01-21 00:00")}, // equals the window
		{RoomID: 4, Interval: iv("2021-01-20 23:00", "2021-01-21 01:00")}, // overlaps the end only
	}

	free := FreeRooms([]uint64{1, 2, 3, 4, 5}, reservations, w)

	assert.Equal(t, []uint64{2, 4, 5}, free)
}

func TestFreeRooms_NoWindow(t *testing.T) {
	rooms := []uint64{3, 1, 2}
	assert.Equal(t, rooms, FreeRooms(rooms, []RoomInterval{{RoomID: 1, Interval: iv("2021-01-20 10:00", "2021-01-20 12:00")}}, nil))
}

// The availability query and the validator intentionally disagree about a
// reservation that straddles the window start.
func TestAvailabilityAndValidatorDiverge(t *testing.T) {
	w, err := ParseWindow("2021-01-20 00:00", "2021-01-21 00:00")
	require.NoError(t, err)
	straddling := iv("2021-01-19 23:00", "2021-01-20 10:00")

	assert.False(t, Occupies(straddling, *w))
	assert.Error(t, Validate(candidate("2021-01-20 00:00", "2021-01-21 00:00"), []Interval{straddling}))
}

func TestParseDateTime(t *testing.T) {
	valid := map[string]string{
		"2021-01-20 23:00:00":        "2021-01-20T23:00:00Z",
		"2021-01-20T23:00:00":        "2021-01-20T23:00:00Z",
		"2021-01-20T23:00:00+03:00":  "2021-01-20T20:00:00Z",
		"2021-01-20T23:00:00.5Z":     "2021-01-20T23:00:00.5Z",
		"2021-01-20 23:00":           "2021-01-20T23:00:00Z",
		"2021-01-20":                 "2021-01-20T00:00:00Z",
		"2021-01-20T23:00+03:00":     "2021-01-20T20:00:00Z",
		"2021-01-20 23:00Z":          "2021-01-20T23:00:00Z",
		"2021-01-20T23":              "2021-01-20T23:00:00Z",
		"2021-01-20 23":              "2021-01-20T23:00:00Z",
		"2021-01-20T23:00:00.123456": "2021-01-20T23:00:00.123456Z",
	}
	for in, want := range valid {
		got, err := ParseDateTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.Format("2006-01-02T15:04:05.999999999Z07:00"), in)
	}

	for _, in := range []string{
		"", "  ", "20.01.2021", "2021-13-01 00:00", "now",
		"2021-01-20T12:00:00.0000004Z", "2021-01-20 12:00:00.1234567",
	} {
		_, err := ParseDateTime(in)
		assert.ErrorIs(t, err, ErrBadDateTime, in)
	}
}
