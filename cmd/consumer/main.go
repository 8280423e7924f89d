package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/queue"
)

// The consumer appends every reservation event to <QUEUE_LOG_DIR>/reservations.log.
// It runs apart from the server when QUEUE_CONSUMER_ENABLED is off there.
func main() {
	_ = godotenv.Load()
	qcfg := config.LoadQueueConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(qcfg.URL, qcfg.Queue, qcfg.LogDir)
	log.Printf("reservation-consumer: consuming %q into %s", c.Queue, qcfg.LogDir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("reservation-consumer: %v", err)
	}
}
