package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Tally keeps per-session check-in counters in redis for the scanner
// dashboard. The ledger in Postgres stays the source of truth; these
// counters only feed the live scanned/late numbers.
type Tally struct {
	client *redis.Client
}

// NewTally creates a tally over an existing redis client.
func NewTally(client *redis.Client) *Tally {
	return &Tally{client: client}
}

func scannedKey(sessionID string) string { return "sems:tally:" + sessionID + ":scanned" }
func lateKey(sessionID string) string    { return "sems:tally:" + sessionID + ":late" }

// Bump counts one accepted check-in, and the late counter too when the
// record landed late.
func (t *Tally) Bump(ctx context.Context, sessionID string, late bool) error {
	if err := t.client.Incr(ctx, scannedKey(sessionID)).Err(); err != nil {
		return err
	}
	if late {
		return t.client.Incr(ctx, lateKey(sessionID)).Err()
	}
	return nil
}

// Read returns the session's scanned and late counters; missing keys read
// as zero.
func (t *Tally) Read(ctx context.Context, sessionID string) (scanned, late int64, err error) {
	scanned, err = t.client.Get(ctx, scannedKey(sessionID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, err
	}
	late, err = t.client.Get(ctx, lateKey(sessionID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, err
	}
	return scanned, late, nil
}
