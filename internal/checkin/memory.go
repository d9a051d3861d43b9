package checkin

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type pairKey struct {
	sessionID string
	studentID string
}

// MemoryStore is a process-local ledger for dev and tests. Insert-if-absent
// rides on sync.Map.LoadOrStore, which gives the per-pair atomicity the
// Store contract asks for without any global lock.
type MemoryStore struct {
	records sync.Map // pairKey -> CheckInRecord
}

// NewMemoryStore creates an empty ledger.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// TryRecord stores rec unless a record already exists for its pair.
func (s *MemoryStore) TryRecord(ctx context.Context, rec CheckInRecord) (CheckInRecord, error) {
	if err := ctx.Err(); err != nil {
		return CheckInRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	key := pairKey{sessionID: rec.SessionID, studentID: rec.StudentID}
	existing, loaded := s.records.LoadOrStore(key, rec)
	if loaded {
		return CheckInRecord{}, &AlreadyRecordedError{Existing: existing.(CheckInRecord)}
	}
	return rec, nil
}

// ListBySession returns the session's records ordered by recorded time.
func (s *MemoryStore) ListBySession(ctx context.Context, sessionID string) ([]CheckInRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []CheckInRecord
	s.records.Range(func(k, v any) bool {
		if k.(pairKey).sessionID == sessionID {
			out = append(out, v.(CheckInRecord))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}
