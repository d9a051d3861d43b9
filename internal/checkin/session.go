package checkin

import (
	"errors"
	"strings"
	"time"
)

// AudienceRule restricts which students may check in to a session. The zero
// value allows nobody; an All rule allows everyone.
type AudienceRule struct {
	All    bool
	Grades []string
}

// AudienceAll allows every grade level.
func AudienceAll() AudienceRule { return AudienceRule{All: true} }

// AudienceGrades allows only the listed grade levels.
func AudienceGrades(grades ...string) AudienceRule {
	return AudienceRule{Grades: grades}
}

// ParseAudience reads the stored form: "all" or a comma-separated grade list.
func ParseAudience(s string) AudienceRule {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return AudienceAll()
	}
	var grades []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			grades = append(grades, g)
		}
	}
	return AudienceRule{Grades: grades}
}

// Allows reports whether a student of the given grade level is in scope.
// An unknown grade label is simply not allowed, never an error.
func (r AudienceRule) Allows(gradeLevel string) bool {
	if r.All {
		return true
	}
	for _, g := range r.Grades {
		if strings.EqualFold(g, gradeLevel) {
			return true
		}
	}
	return false
}

func (r AudienceRule) String() string {
	if r.All {
		return "all"
	}
	return strings.Join(r.Grades, ",")
}

// Classification buckets a scan timestamp against session boundaries.
type Classification string

const (
	TooEarly Classification = "too_early"
	OnTime   Classification = "on_time"
	Late     Classification = "late"
	Closed   Classification = "closed"
)

var errSessionWindow = errors.New("session window must satisfy open < late threshold < close")

// Session is one schedulable slot of an event at a venue. Boundaries are
// wall-clock readings on the session's calendar date and are immutable once
// any check-in exists; a reschedule gets a new session id.
type Session struct {
	ID       string
	EventID  string
	VenueID  string
	Title    string
	Date     time.Time
	Period   string
	OpensAt  TimeOfDay
	LateAt   TimeOfDay // zero disables the late bucket
	ClosesAt TimeOfDay
	Audience AudienceRule
	Expected int // expected headcount, for remaining tallies
}

// Validate enforces boundary ordering at construction time so classification
// never has to deal with a malformed window. An absent late threshold is
// treated as equal to close, which makes every in-window scan on time.
func (s Session) Validate() error {
	if !s.OpensAt.Before(s.ClosesAt) {
		return errSessionWindow
	}
	if !s.LateAt.IsZero() && (!s.OpensAt.Before(s.LateAt) || !s.LateAt.Before(s.ClosesAt)) {
		return errSessionWindow
	}
	return nil
}

// lateBoundary resolves the effective late threshold.
func (s Session) lateBoundary() TimeOfDay {
	if s.LateAt.IsZero() {
		return s.ClosesAt
	}
	return s.LateAt
}

// Classify buckets a scan timestamp. Equality to the open boundary is on
// time; equality to the close boundary is closed. A scan on the wrong
// calendar day falls out as too early or closed.
func (s Session) Classify(at time.Time) Classification {
	opens := s.OpensAt.On(s.Date)
	late := s.lateBoundary().On(s.Date)
	closes := s.ClosesAt.On(s.Date)

	switch {
	case at.Before(opens):
		return TooEarly
	case at.Before(late):
		return OnTime
	case at.Before(closes):
		return Late
	default:
		return Closed
	}
}
