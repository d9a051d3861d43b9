package venue

import (
	"sort"
	"time"

	"sems/internal/checkin"
)

// sameDay compares calendar dates; bookings on different days never
// conflict no matter the clock readings.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// overlaps is the half-open interval test shared with session windows:
// [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2.
func overlaps(aOpen, aClose, bOpen, bClose checkin.TimeOfDay) bool {
	return aOpen.Before(bClose) && bOpen.Before(aClose)
}

// Resolve computes a venue's availability for a set of requested slots
// against its existing bookings. Pure and idempotent; callable in parallel.
//
// Status: available when no slot conflicts, unavailable when every slot
// conflicts, partial otherwise. Conflicts list every overlapping
// (slot, booking) pair, ordered by slot date and open time ascending, then
// by booking creation order.
func Resolve(venueID string, slots []Slot, bookings []Booking) Availability {
	conflicted := 0
	var conflicts []Conflict

	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !sameDay(ordered[i].Date, ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].OpensAt.Before(ordered[j].OpensAt)
	})

	for _, slot := range ordered {
		hits := make([]Booking, 0, len(bookings))
		for _, b := range bookings {
			if sameDay(slot.Date, b.Date) && overlaps(slot.OpensAt, slot.ClosesAt, b.OpensAt, b.ClosesAt) {
				hits = append(hits, b)
			}
		}
		if len(hits) == 0 {
			continue
		}
		conflicted++
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Seq < hits[j].Seq })
		for _, b := range hits {
			conflicts = append(conflicts, Conflict{Slot: slot, Booking: b})
		}
	}

	status := Available
	switch {
	case len(slots) > 0 && conflicted == len(slots):
		status = Unavailable
	case conflicted > 0:
		status = Partial
	}
	return Availability{VenueID: venueID, Status: status, Conflicts: conflicts}
}
