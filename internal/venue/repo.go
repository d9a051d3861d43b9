package venue

import (
	"context"
	"database/sql"
	"time"
)

// Repository reads committed bookings from Postgres. Bookings are owned by
// the event-authoring workflow; this side only lists them.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListBookings returns a venue's bookings within [from, to], in creation
// order so conflict entries come out stable.
func (r *Repository) ListBookings(ctx context.Context, venueID string, from, to time.Time) ([]Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, venue_id, session_id, event_title, date, period, opens_at, closes_at, seq
		FROM venue_bookings
		WHERE venue_id = $1 AND date >= $2 AND date <= $3
		ORDER BY seq
	`, venueID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.VenueID, &b.SessionID, &b.EventTitle,
			&b.Date, &b.Period, &b.OpensAt, &b.ClosesAt, &b.Seq); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
