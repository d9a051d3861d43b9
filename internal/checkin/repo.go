package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists the ledger and directory data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RegisterScanner ensures a scanner device record exists.
func (r *Repository) RegisterScanner(ctx context.Context, scannerID string) error {
	if scannerID == "" {
		return errors.New("scanner id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scanners (scanner_id)
		VALUES ($1)
		ON CONFLICT (scanner_id) DO NOTHING
	`, scannerID)
	return err
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, scannerID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (scanner_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, scannerID, token, expiresAt)
	return err
}

// Session loads one session with its audience rule.
func (r *Repository) Session(ctx context.Context, sessionID string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, venue_id, title, date, period, opens_at, late_at, closes_at, audience, expected
		FROM sessions WHERE id = $1
	`, sessionID)
	var (
		sess     Session
		audience string
	)
	err := row.Scan(&sess.ID, &sess.EventID, &sess.VenueID, &sess.Title, &sess.Date,
		&sess.Period, &sess.OpensAt, &sess.LateAt, &sess.ClosesAt, &audience, &sess.Expected)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	sess.Audience = ParseAudience(audience)
	return sess, nil
}

// StudentGrade resolves a student's grade level from the roster.
func (r *Repository) StudentGrade(ctx context.Context, studentID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT grade_level FROM students WHERE id = $1`, studentID)
	var grade string
	if err := row.Scan(&grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrStudentNotFound
		}
		return "", err
	}
	return grade, nil
}

// TryRecord inserts the record unless one already exists for the pair. The
// unique index on (session_id, student_id) is the arbiter: of N concurrent
// inserts Postgres lets exactly one through, and the losers re-read the
// winning row. Records are append-only, so the re-read always finds it.
func (r *Repository) TryRecord(ctx context.Context, rec CheckInRecord) (CheckInRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO checkin_records (id, session_id, student_id, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, student_id) DO NOTHING
	`, rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.RecordedAt)
	if err != nil {
		return CheckInRecord{}, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return CheckInRecord{}, err
	}
	if inserted > 0 {
		return rec, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, student_id, status, recorded_at
		FROM checkin_records
		WHERE session_id = $1 AND student_id = $2
	`, rec.SessionID, rec.StudentID)
	var existing CheckInRecord
	if err := row.Scan(&existing.ID, &existing.SessionID, &existing.StudentID,
		&existing.Status, &existing.RecordedAt); err != nil {
		return CheckInRecord{}, fmt.Errorf("load winning record: %w", err)
	}
	return CheckInRecord{}, &AlreadyRecordedError{Existing: existing}
}

// ListBySession returns a session's records ordered by recorded time.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]CheckInRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, student_id, status, recorded_at
		FROM checkin_records
		WHERE session_id = $1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CheckInRecord
	for rows.Next() {
		var rec CheckInRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
