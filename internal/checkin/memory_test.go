package checkin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreTryRecord(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore()
	at := time.Date(2025, 6, 1, 7, 15, 0, 0, time.UTC)

	rec, err := ledger.TryRecord(ctx, CheckInRecord{
		SessionID: "ses-1", StudentID: "stu-1", Status: StatusRecorded, RecordedAt: at,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)

	_, err = ledger.TryRecord(ctx, CheckInRecord{
		SessionID: "ses-1", StudentID: "stu-1", Status: StatusLate, RecordedAt: at.Add(25 * time.Minute),
	})
	var dup *AlreadyRecordedError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, rec, dup.Existing, "losers must see the winning record")

	// A different pair is unaffected.
	_, err = ledger.TryRecord(ctx, CheckInRecord{
		SessionID: "ses-1", StudentID: "stu-2", Status: StatusRecorded, RecordedAt: at,
	})
	require.NoError(t, err)

	// Same student, different session is a fresh pair.
	_, err = ledger.TryRecord(ctx, CheckInRecord{
		SessionID: "ses-2", StudentID: "stu-1", Status: StatusRecorded, RecordedAt: at,
	})
	require.NoError(t, err)
}

func TestMemoryStoreAbandonedAttemptLeavesNoRecord(t *testing.T) {
	ledger := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ledger.TryRecord(ctx, CheckInRecord{
		SessionID: "ses-1", StudentID: "stu-1", Status: StatusRecorded,
		RecordedAt: time.Date(2025, 6, 1, 7, 15, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, context.Canceled)

	// The abandoned attempt must not have half-applied anything.
	records, err := ledger.ListBySession(context.Background(), "ses-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStoreConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore()
	at := time.Date(2025, 6, 1, 7, 15, 0, 0, time.UTC)

	const attempts = 64
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []CheckInRecord
		losers  []CheckInRecord
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := ledger.TryRecord(ctx, CheckInRecord{
				SessionID: "ses-1", StudentID: "stu-1", Status: StatusRecorded, RecordedAt: at,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, rec)
				return
			}
			var dup *AlreadyRecordedError
			if errors.As(err, &dup) {
				losers = append(losers, dup.Existing)
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1, "exactly one attempt may win")
	require.Len(t, losers, attempts-1)
	for _, existing := range losers {
		assert.Equal(t, winners[0].ID, existing.ID, "every loser sees the same winner")
	}
}

func TestMemoryStoreListBySession(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore()
	base := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := ledger.TryRecord(ctx, CheckInRecord{
			SessionID:  "ses-1",
			StudentID:  fmt.Sprintf("stu-%d", i),
			Status:     StatusRecorded,
			RecordedAt: base.Add(time.Duration(5-i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := ledger.TryRecord(ctx, CheckInRecord{
		SessionID: "ses-other", StudentID: "stu-9", Status: StatusRecorded, RecordedAt: base,
	})
	require.NoError(t, err)

	records, err := ledger.ListBySession(ctx, "ses-1")
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].RecordedAt.Before(records[i-1].RecordedAt), "records must be ordered by recorded time")
	}
}
