package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/saviobatista/launch-dashboard/internal/config"
	"github.com/saviobatista/launch-dashboard/internal/nats"
	"github.com/saviobatista/launch-dashboard/internal/storage"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

// Subscriber delivers selection events
type Subscriber interface {
	SubscribeSelections(handler func(*types.SelectionEvent)) error
}

// EventWriter persists selection events
type EventWriter interface {
	WriteEvent(event *types.SelectionEvent) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("Event log failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.NATSURL == "" {
		return errors.New("NATS_URL is required")
	}

	store := storage.New(cfg.OutputDir)
	if err := store.Start(); err != nil {
		return fmt.Errorf("failed to start storage: %w", err)
	}
	defer func() {
		if err := store.Stop(); err != nil {
			log.Printf("Failed to stop storage: %v", err)
		}
	}()

	client, err := nats.New(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}
	defer client.Close()

	archiver := &archiver{writer: store}
	if err := archiver.attach(client); err != nil {
		return err
	}
	log.Printf("Archiving selection events to %s", cfg.OutputDir)

	<-ctx.Done()
	log.Printf("Shutting down after %d events (%d failed)", archiver.written.Load(), archiver.failed.Load())
	return nil
}

// archiver copies every received event to the writer
type archiver struct {
	writer  EventWriter
	written atomic.Uint64
	failed  atomic.Uint64
}

func (a *archiver) attach(sub Subscriber) error {
	if err := sub.SubscribeSelections(a.handle); err != nil {
		return fmt.Errorf("failed to subscribe to selection events: %w", err)
	}
	return nil
}

func (a *archiver) handle(event *types.SelectionEvent) {
	if err := a.writer.WriteEvent(event); err != nil {
		a.failed.Add(1)
		log.Printf("Failed to write event %s: %v", event.ID, err)
		return
	}
	a.written.Add(1)
}
