package checkin

import (
	"context"
	"fmt"
	"time"
)

// RecordStatus is the durable status of an accepted scan.
type RecordStatus string

const (
	StatusRecorded RecordStatus = "recorded"
	StatusLate     RecordStatus = "late"
)

// CheckInRecord is the durable outcome of one accepted scan. At most one
// record exists per (session, student); the ledger guarantees it.
type CheckInRecord struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"session_id"`
	StudentID  string       `json:"student_id"`
	Status     RecordStatus `json:"status"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// AlreadyRecordedError reports a losing tryRecord attempt. It carries the
// winning record so the scanner can show when the original check-in happened.
// It is a terminal outcome of that attempt, never retried.
type AlreadyRecordedError struct {
	Existing CheckInRecord
}

func (e *AlreadyRecordedError) Error() string {
	return fmt.Sprintf("student %s already checked in to session %s at %s",
		e.Existing.StudentID, e.Existing.SessionID, e.Existing.RecordedAt.Format("15:04"))
}

// Store is the attendance ledger: the only writer of check-in records.
//
// TryRecord is atomic with respect to all other TryRecord calls for the same
// (session, student) pair: of N concurrent attempts exactly one succeeds and
// the rest get *AlreadyRecordedError carrying the winner. Attempts for
// different pairs never block one another. Any other error is an
// infrastructure fault; the caller may retry the whole call.
type Store interface {
	TryRecord(ctx context.Context, rec CheckInRecord) (CheckInRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]CheckInRecord, error)
}
