package booking

import (
	"sort"
	"strings"
)

// Field names used to tag validation messages.  They match the request and
// response JSON keys.
const (
	FieldFrom = "datetime_from"
	FieldTo   = "datetime_to"
)

// Messages reported by Validate.
const (
	MsgBadFormat     = "Date-time is not in ISO format."
	MsgStartTaken    = "The selected time is taken. Choose a later start time for the booking."
	MsgEndTaken      = "The selected time is taken. Choose an earlier end time for the booking."
	MsgIntervalTaken = "The selected time is taken."
	MsgInverted      = "Invalid booking interval. The end time is not after the start time."
)

// ValidationError carries every rule a candidate reservation broke, keyed by
// the request field each message belongs to.
type ValidationError struct {
	Fields map[string][]string
}

// Add appends msg to field unless the field already carries it.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	for _, m := range e.Fields[field] {
		if m == msg {
			return
		}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field carries msg.
func (e *ValidationError) Has(field, msg string) bool {
	for _, m := range e.Fields[field] {
		if m == msg {
			return true
		}
	}
	return false
}

// Error joins all messages as "field: msg; field: msg" with fields sorted.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		for _, m := range e.Fields[k] {
			parts = append(parts, k+": "+m)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }
