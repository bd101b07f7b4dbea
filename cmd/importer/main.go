package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saviobatista/launch-dashboard/internal/config"
	"github.com/saviobatista/launch-dashboard/internal/dataset"
	"github.com/saviobatista/launch-dashboard/internal/db"
	"github.com/saviobatista/launch-dashboard/internal/redis"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

// RecordWriter stores launch records in Postgres
type RecordWriter interface {
	StoreLaunchRecords(ctx context.Context, records []types.LaunchRecord, replace bool) error
}

// SnapshotWriter stores the launch record snapshot in Redis
type SnapshotWriter interface {
	StoreRecords(ctx context.Context, records []types.LaunchRecord, ttl time.Duration) error
}

// SnapshotDeleter removes the launch record snapshot from Redis
type SnapshotDeleter interface {
	DeleteRecords(ctx context.Context) error
}

type options struct {
	path     string
	postgres bool
	redis    bool
	appendDB bool
	ttl      time.Duration
	clear    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Printf("Import failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, output io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := parseFlags(args, cfg, output)
	if err != nil {
		return err
	}

	if opts.clear {
		client, err := redis.New(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		return clearSnapshot(ctx, client)
	}

	store, err := dataset.LoadFile(opts.path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	log.Printf("Loaded %d launch records from %s", store.Len(), opts.path)

	var (
		pg   RecordWriter
		snap SnapshotWriter
	)
	if opts.postgres {
		client, err := db.New(cfg.DBConnStr)
		if err != nil {
			return fmt.Errorf("failed to create database client: %w", err)
		}
		defer client.Close()
		pg = client
	}
	if opts.redis {
		client, err := redis.New(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		snap = client
	}

	return importRecords(ctx, store.Records(), opts, pg, snap)
}

// parseFlags resolves targets; a target is enabled when its connection
// setting is present unless flags say otherwise
func parseFlags(args []string, cfg *config.Config, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	fs.StringVar(&opts.path, "csv", cfg.DatasetPath, "CSV file to import")
	fs.BoolVar(&opts.postgres, "postgres", cfg.DBConnStr != "", "Write records to the launch_records table")
	fs.BoolVar(&opts.redis, "redis", cfg.RedisAddr != "", "Write the Redis dataset snapshot")
	fs.BoolVar(&opts.appendDB, "append", false, "Append to launch_records instead of replacing its contents")
	fs.DurationVar(&opts.ttl, "ttl", 0, "Snapshot expiry, 0 keeps it forever")
	fs.BoolVar(&opts.clear, "clear-snapshot", false, "Delete the Redis dataset snapshot and import nothing")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.clear {
		if cfg.RedisAddr == "" {
			return options{}, errors.New("-clear-snapshot requires REDIS_ADDR")
		}
		return options{redis: true, clear: true}, nil
	}

	if opts.postgres && cfg.DBConnStr == "" {
		return options{}, errors.New("-postgres requires DB_CONN_STR")
	}
	if opts.redis && cfg.RedisAddr == "" {
		return options{}, errors.New("-redis requires REDIS_ADDR")
	}
	if !opts.postgres && !opts.redis {
		return options{}, errors.New("nothing to import into: configure DB_CONN_STR or REDIS_ADDR")
	}
	if opts.ttl < 0 {
		return options{}, fmt.Errorf("ttl must not be negative, got %s", opts.ttl)
	}
	return opts, nil
}

func importRecords(ctx context.Context, records []types.LaunchRecord, opts options, pg RecordWriter, snap SnapshotWriter) error {
	if pg != nil {
		if err := pg.StoreLaunchRecords(ctx, records, !opts.appendDB); err != nil {
			return fmt.Errorf("failed to store launch records: %w", err)
		}
		log.Printf("Stored %d launch records in Postgres", len(records))
	}
	if snap != nil {
		if err := snap.StoreRecords(ctx, records, opts.ttl); err != nil {
			return fmt.Errorf("failed to store snapshot: %w", err)
		}
		log.Printf("Stored snapshot of %d launch records in Redis", len(records))
	}
	return nil
}

// clearSnapshot deletes the snapshot so a redis-sourced dashboard refuses
// to start until the next import
func clearSnapshot(ctx context.Context, snap SnapshotDeleter) error {
	if err := snap.DeleteRecords(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	log.Printf("Deleted Redis snapshot")
	return nil
}
