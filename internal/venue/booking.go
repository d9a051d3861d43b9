package venue

import (
	"time"

	"sems/internal/checkin"
)

// Slot is one requested reservation interval for a proposed session.
type Slot struct {
	Date     time.Time         `json:"date"`
	Period   string            `json:"period"`
	OpensAt  checkin.TimeOfDay `json:"opens_at"`
	ClosesAt checkin.TimeOfDay `json:"closes_at"`
}

// Booking is a committed reservation of a venue for a session's interval.
// Seq is the booking's creation order, used to order conflict entries.
type Booking struct {
	ID         string            `json:"id"`
	VenueID    string            `json:"venue_id"`
	SessionID  string            `json:"session_id"`
	EventTitle string            `json:"event_title"`
	Date       time.Time         `json:"date"`
	Period     string            `json:"period"`
	OpensAt    checkin.TimeOfDay `json:"opens_at"`
	ClosesAt   checkin.TimeOfDay `json:"closes_at"`
	Seq        int64             `json:"-"`
}

// AvailabilityStatus summarizes how a venue fits a set of requested slots.
type AvailabilityStatus string

const (
	Available   AvailabilityStatus = "available"
	Partial     AvailabilityStatus = "partial"
	Unavailable AvailabilityStatus = "unavailable"
)

// Conflict pairs a requested slot with a booking it overlaps.
type Conflict struct {
	Slot    Slot    `json:"slot"`
	Booking Booking `json:"booking"`
}

// Availability is the advisory result of one resolve call. It is computed
// on demand and never persisted; the authoring workflow decides what to do
// with a partial or unavailable venue.
type Availability struct {
	VenueID   string             `json:"venue_id"`
	Status    AvailabilityStatus `json:"status"`
	Conflicts []Conflict         `json:"conflicts"`
}
