package model

import (
	"time"

	"github.com/iliyamo/room-reservation/internal/booking"
)

// Reservation records that a user holds a room for [DatetimeFrom,
// DatetimeTo].  Both bounds are inclusive.  Created is assigned by the
// database on insert and never changes afterwards.
//
// Fields:
//  ID           - primary key identifier.
//  RoomID       - reserved room.
//  DatetimeFrom - start of the reservation (UTC).
//  DatetimeTo   - end of the reservation (UTC), strictly after DatetimeFrom.
//  Created      - insertion timestamp.
//  AuthorID     - user who made the reservation.
//  Author       - the author's username, filled by joined reads.
//  RoomName     - the room's name, filled by joined reads.
//  RoomSlug     - the room's slug, filled by joined reads.
type Reservation struct {
	ID           uint64    `json:"id"`            // reservations.id
	RoomID       uint64    `json:"room"`          // reservations.room_id
	DatetimeFrom time.Time `json:"datetime_from"` // reservations.datetime_from
	DatetimeTo   time.Time `json:"datetime_to"`   // reservations.datetime_to
	Created      time.Time `json:"created"`       // reservations.created
	AuthorID     uint64    `json:"-"`             // reservations.author_id
	Author       string    `json:"author"`        // users.username
	RoomName     string    `json:"room_name,omitempty"`
	RoomSlug     string    `json:"room_slug,omitempty"`
}

// Interval returns the reserved span.
func (r *Reservation) Interval() booking.Interval {
	return booking.Interval{From: r.DatetimeFrom, To: r.DatetimeTo}
}
