package booking

import "time"

// Candidate is the interval a client asks to reserve.  A nil bound means
// the value was missing or could not be parsed.
type Candidate struct {
	From *time.Time
	To   *time.Time
}

// NewCandidate parses both raw bounds.  Unparseable values become nil and
// are reported by Validate, not here.
func NewCandidate(from, to string) Candidate {
	var c Candidate
	if t, err := ParseDateTime(from); err == nil {
		c.From = &t
	}
	if t, err := ParseDateTime(to); err == nil {
		c.To = &t
	}
	return c
}

// Interval returns the candidate as an Interval.  It must only be called
// once both bounds are known to be present.
func (c Candidate) Interval() Interval {
	return Interval{From: *c.From, To: *c.To}
}

// Validate checks a candidate against the existing reservations of the same
// room.  The caller scopes existing to the target room and leaves out the
// reservation being edited.
//
// Four rules are evaluated, all of them, with closed-interval semantics:
//
//   - start conflict: an existing [ef, et] has ef <= from <= et
//   - end conflict: an existing [ef, et] has ef <= to <= et
//   - containment: an existing [ef, et] has from <= ef and et <= to
//   - inverted interval: to <= from
//
// Validate returns nil when the candidate is acceptable, or a
// *ValidationError listing every broken rule.
func Validate(c Candidate, existing []Interval) error {
	verr := &ValidationError{}
	if c.From == nil {
		verr.Add(FieldFrom, MsgBadFormat)
	}
	if c.To == nil {
		verr.Add(FieldTo, MsgBadFormat)
	}
	if !verr.empty() {
		return verr
	}

	from, to := *c.From, *c.To
	var startHit, endHit, containsHit bool
	for _, e := range existing {
		if within(from, e) {
			startHit = true
		}
		if within(to, e) {
			endHit = true
		}
		if !e.From.Before(from) && !e.To.After(to) {
			containsHit = true
		}
	}

	if startHit {
		verr.Add(FieldFrom, MsgStartTaken)
	}
	if endHit {
		verr.Add(FieldTo, MsgEndTaken)
	}
	if containsHit {
		verr.Add(FieldTo, MsgIntervalTaken)
	}
	if !to.After(from) {
		verr.Add(FieldFrom, MsgInverted)
		verr.Add(FieldTo, MsgInverted)
	}

	if verr.empty() {
		return nil
	}
	return verr
}

// within reports ef <= t <= et.
func within(t time.Time, e Interval) bool {
	return !t.Before(e.From) && !t.After(e.To)
}

// SearchBounds returns the smallest span that any interval able to trip one
// of the three conflict rules must touch.  Storage layers use it to narrow
// the rows they load before calling Validate.  It tolerates inverted
// candidates by ordering the bounds.
func SearchBounds(c Candidate) Interval {
	lo, hi := *c.From, *c.To
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	return Interval{From: lo, To: hi}
}
