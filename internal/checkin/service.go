package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ScanStatus is the terminal outcome of one scan attempt.
type ScanStatus string

const (
	ScanRecorded       ScanStatus = "recorded"
	ScanLate           ScanStatus = "late"
	ScanAlreadyScanned ScanStatus = "already_scanned"
	ScanNotAllowed     ScanStatus = "not_allowed"
	ScanTooEarly       ScanStatus = "too_early"
	ScanClosed         ScanStatus = "closed"
)

// Directory resolves sessions and student grade levels. Both are owned by
// external workflows and handed to the engine read-only.
type Directory interface {
	Session(ctx context.Context, sessionID string) (Session, error)
	StudentGrade(ctx context.Context, studentID string) (string, error)
}

var (
	// ErrSessionNotFound is reported distinctly from an audience denial.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStudentNotFound means the roster has no entry for the scanned id.
	ErrStudentNotFound = errors.New("student not found")
)

// Result is what the scanner operator sees after one scan.
type Result struct {
	Status ScanStatus `json:"status"`
	// Record is set when the scan was accepted (recorded or late).
	Record *CheckInRecord `json:"record,omitempty"`
	// Existing is set on already_scanned, carrying the winning record.
	Existing *CheckInRecord `json:"existing_record,omitempty"`
}

// Service runs the scan state machine. It is stateless per call; the ledger
// is the only shared state.
type Service struct {
	dir    Directory
	ledger Store
}

// NewService wires the directory and ledger collaborators.
func NewService(dir Directory, ledger Store) *Service {
	return &Service{dir: dir, ledger: ledger}
}

// Scan classifies one scan attempt end to end. Audience and timing checks
// run before the ledger write so a rejected scan never consumes the
// at-most-once slot, and an out-of-scope student is denied even while the
// window is open. Every rejection is a terminal outcome, not a fault;
// only lookup and storage failures surface as errors.
func (s *Service) Scan(ctx context.Context, sessionID, studentID string, observedAt time.Time) (Result, error) {
	sess, err := s.dir.Session(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("scan session %s: %w", sessionID, err)
	}

	grade, err := s.dir.StudentGrade(ctx, studentID)
	if err != nil {
		return Result{}, fmt.Errorf("scan student %s: %w", studentID, err)
	}
	if !sess.Audience.Allows(grade) {
		return Result{Status: ScanNotAllowed}, nil
	}

	var status RecordStatus
	switch sess.Classify(observedAt) {
	case TooEarly:
		return Result{Status: ScanTooEarly}, nil
	case Closed:
		return Result{Status: ScanClosed}, nil
	case Late:
		status = StatusLate
	default:
		status = StatusRecorded
	}

	rec, err := s.ledger.TryRecord(ctx, CheckInRecord{
		SessionID:  sessionID,
		StudentID:  studentID,
		Status:     status,
		RecordedAt: observedAt,
	})
	if err != nil {
		var dup *AlreadyRecordedError
		if errors.As(err, &dup) {
			existing := dup.Existing
			return Result{Status: ScanAlreadyScanned, Existing: &existing}, nil
		}
		return Result{}, fmt.Errorf("record check-in: %w", err)
	}

	if status == StatusLate {
		return Result{Status: ScanLate, Record: &rec}, nil
	}
	return Result{Status: ScanRecorded, Record: &rec}, nil
}
