package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() ReservationEvent {
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return ReservationEvent{
		Type:          EventCreated,
		ReservationID: 12,
		RoomID:        3,
		RoomName:      "Blue",
		AuthorID:      5,
		Author:        "ann",
		DatetimeFrom:  FormatTime(from),
		DatetimeTo:    FormatTime(from.Add(time.Hour)),
		OccurredAt:    "2024-01-01T09:00:00Z",
	}
}

func TestLogLine(t *testing.T) {
	line := sampleEvent().LogLine()
	assert.Equal(t,
		"[2024-01-01T09:00:00Z] reservation.created | reservation_id=12 | room_id=3 | room=\"Blue\" | author_id=5 | author=\"ann\" | from=2024-01-01T10:00:00Z | to=2024-01-01T11:00:00Z\n",
		line)
}

func TestHandle_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused", "", dir)
	assert.Equal(t, QueueName, c.Queue)

	ev := sampleEvent()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, c.Handle(body))

	ev.Type = EventDeleted
	body, err = json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, c.Handle(body))

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], EventCreated)
	assert.Contains(t, lines[1], EventDeleted)
}

func TestHandle_RejectsBadPayloads(t *testing.T) {
	c := NewConsumer("amqp://unused", QueueName, t.TempDir())

	assert.Error(t, c.Handle([]byte("{not json")))
	assert.Error(t, c.Handle([]byte(`{"type":"reservation.created"}`)))

	_, err := os.Stat(filepath.Join(c.LogDir, LogFile))
	assert.True(t, os.IsNotExist(err))
}
