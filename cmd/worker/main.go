package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sems/internal/config"
	"sems/internal/queue"
	"sems/internal/store"
)

// Worker consumes accepted check-ins and keeps per-session tallies in redis
// for the scanner dashboard's scanned/late/remaining counters.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	tally := store.NewTally(redisClient.Client)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "sems:checkins")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for check-ins...")
	for msg := range messages {
		if msg.Type != "checkin" {
			continue
		}

		var c queue.CheckIn
		if err := json.Unmarshal(msg.Body, &c); err != nil {
			log.Printf("bad check-in payload: %v", err)
			continue
		}

		if err := tally.Bump(ctx, c.SessionID, c.Late); err != nil {
			log.Printf("tally bump failed for record %s: %v", c.RecordID, err)
			continue
		}
		log.Printf("tallied record %s for session %s (late=%v)", c.RecordID, c.SessionID, c.Late)
	}

	log.Println("worker stopped")
}
