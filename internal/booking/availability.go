package booking

import (
	"errors"
	"strings"
)

// ErrBadWindow is returned when availability query parameters are malformed
// or describe an empty or inverted window.
var ErrBadWindow = errors.New("invalid datetime_from/datetime_to window")

// Window is the time span an availability query asks about.
type Window = Interval

// ParseWindow reads the optional datetime_from and datetime_to query values.
// It returns a nil window when either value is absent, meaning "no
// availability filtering".  A malformed value or to <= from fails with
// ErrBadWindow regardless of the other value.
func ParseWindow(from, to string) (*Window, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	var w Window
	var err error
	if from != "" {
		if w.From, err = ParseDateTime(from); err != nil {
			return nil, ErrBadWindow
		}
	}
	if to != "" {
		if w.To, err = ParseDateTime(to); err != nil {
			return nil, ErrBadWindow
		}
	}
	if from == "" || to == "" {
		return nil, nil
	}
	if !w.To.After(w.From) {
		return nil, ErrBadWindow
	}
	return &w, nil
}

// Occupies reports whether reservation r makes its room unavailable for w.
// Only reservations wholly contained in the window count; a reservation that
// merely overlaps a window boundary does not.  This is intentionally looser
// than Validate's overlap rules.
func Occupies(r Interval, w Window) bool {
	return Contains(w, r)
}

// RoomInterval is a reservation interval tagged with its room.
type RoomInterval struct {
	RoomID uint64
	Interval
}

// FreeRooms returns the ids in rooms, in their original order, that have no
// reservation contained in w.  A nil window returns rooms unchanged.
func FreeRooms(rooms []uint64, reservations []RoomInterval, w *Window) []uint64 {
	if w == nil {
		return rooms
	}
	busy := make(map[uint64]struct{})
	for _, r := range reservations {
		if Occupies(r.Interval, *w) {
			busy[r.RoomID] = struct{}{}
		}
	}
	out := make([]uint64, 0, len(rooms))
	for _, id := range rooms {
		if _, ok := busy[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
