// Package queue defines the reservation event payload exchanged over the
// message broker and the consumer that keeps an audit log of them.
package queue

import (
	"fmt"
	"time"
)

// QueueName is the durable queue reservation events are published to.
const QueueName = "reservation.events"

// Event types.
const (
	EventCreated = "reservation.created"
	EventUpdated = "reservation.updated"
	EventDeleted = "reservation.deleted"
)

// ReservationEvent is published after a reservation write commits.  It
// carries enough for downstream consumers to log or notify without
// querying the primary database.  Times are RFC3339 in UTC.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	AuthorID      uint64 `json:"author_id"`
	Author        string `json:"author"`
	DatetimeFrom  string `json:"datetime_from"`
	DatetimeTo    string `json:"datetime_to"`
	OccurredAt    string `json:"occurred_at"`
}

// FormatTime renders t the way event payloads carry timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// LogLine renders the event as one line of the audit log.
func (ev ReservationEvent) LogLine() string {
	return fmt.Sprintf("[%s] %s | reservation_id=%d | room_id=%d | room=%q | author_id=%d | author=%q | from=%s | to=%s\n",
		ev.OccurredAt, ev.Type, ev.ReservationID, ev.RoomID, ev.RoomName, ev.AuthorID, ev.Author, ev.DatetimeFrom, ev.DatetimeTo)
}
