package checkin

import (
	"testing"
	"time"
)

func mustTod(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tod
}

func assemblySession(t *testing.T) Session {
	t.Helper()
	return Session{
		ID:       "ses-1",
		EventID:  "evt-1",
		VenueID:  "ven-1",
		Title:    "Morning Assembly",
		Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Period:   "Morning Assembly",
		OpensAt:  mustTod(t, "07:00"),
		LateAt:   mustTod(t, "07:30"),
		ClosesAt: mustTod(t, "08:00"),
		Audience: AudienceGrades("Grade 10"),
		Expected: 500,
	}
}

func TestSessionValidate(t *testing.T) {
	tests := []struct {
		name    string
		opens   string
		late    string
		closes  string
		wantErr bool
	}{
		{name: "ordered", opens: "07:00", late: "07:30", closes: "08:00"},
		{name: "no late threshold", opens: "07:00", late: "00:00", closes: "08:00"},
		{name: "late equals open", opens: "07:00", late: "07:00", closes: "08:00", wantErr: true},
		{name: "late equals close", opens: "07:00", late: "08:00", closes: "08:00", wantErr: true},
		{name: "late after close", opens: "07:00", late: "08:30", closes: "08:00", wantErr: true},
		{name: "open equals close", opens: "08:00", late: "00:00", closes: "08:00", wantErr: true},
		{name: "open after close", opens: "09:00", late: "00:00", closes: "08:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := assemblySession(t)
			s.OpensAt = mustTod(t, tt.opens)
			s.LateAt = mustTod(t, tt.late)
			s.ClosesAt = mustTod(t, tt.closes)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionClassify(t *testing.T) {
	sess := assemblySession(t)
	at := func(clock string) time.Time {
		tod := mustTod(t, clock)
		return tod.On(sess.Date)
	}

	tests := []struct {
		name string
		at   time.Time
		want Classification
	}{
		{name: "before open", at: at("06:59"), want: TooEarly},
		{name: "at open", at: at("07:00"), want: OnTime},
		{name: "mid window", at: at("07:15"), want: OnTime},
		{name: "just before late", at: at("07:29"), want: OnTime},
		{name: "at late threshold", at: at("07:30"), want: Late},
		{name: "one minute before close", at: at("07:59"), want: Late},
		{name: "at close", at: at("08:00"), want: Closed},
		{name: "after close", at: at("08:05"), want: Closed},
		{name: "previous day", at: at("07:15").AddDate(0, 0, -1), want: TooEarly},
		{name: "next day", at: at("07:15").AddDate(0, 0, 1), want: Closed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sess.Classify(tt.at); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestSessionClassifyNoLateThreshold(t *testing.T) {
	sess := assemblySession(t)
	sess.LateAt = 0

	// Without a late threshold every in-window scan is on time.
	for _, clock := range []string{"07:00", "07:30", "07:59"} {
		if got := sess.Classify(mustTod(t, clock).On(sess.Date)); got != OnTime {
			t.Errorf("Classify(%s) = %v, want %v", clock, got, OnTime)
		}
	}
	if got := sess.Classify(mustTod(t, "08:00").On(sess.Date)); got != Closed {
		t.Errorf("Classify(08:00) = %v, want %v", got, Closed)
	}
}
