package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"canteen/internal/config"
	"canteen/internal/device"
	"canteen/internal/queue"
	"canteen/internal/store"
)

// Worker consumes device-seen messages and stamps last_seen timestamps.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		// Process-local only; the api binary consumes its own memory queue,
		// so this worker would sit idle. Kept for parity in dev setups.
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "canteen:device-seen")
	}

	devices := device.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeDeviceSeen {
			continue
		}

		id := string(msg.Body)
		if err := devices.TouchLastSeen(ctx, id); err != nil {
			log.Printf("lastSeen stamp failed for %s: %v", id, err)
			continue
		}
	}

	log.Println("worker stopped")
}
