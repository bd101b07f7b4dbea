package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saviobatista/launch-dashboard/internal/config"
	"github.com/saviobatista/launch-dashboard/internal/dashboard"
	"github.com/saviobatista/launch-dashboard/internal/dataset"
	"github.com/saviobatista/launch-dashboard/internal/db"
	"github.com/saviobatista/launch-dashboard/internal/nats"
	"github.com/saviobatista/launch-dashboard/internal/redis"
	"github.com/saviobatista/launch-dashboard/internal/stats"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

const shutdownTimeout = 10 * time.Second

// LaunchRecordReader reads launch records from Postgres
type LaunchRecordReader interface {
	GetLaunchRecords(ctx context.Context) ([]types.LaunchRecord, error)
}

// SnapshotReader reads the launch record snapshot from Redis
type SnapshotReader interface {
	GetRecords(ctx context.Context) ([]types.LaunchRecord, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("Dashboard failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var dbClient *db.Client
	if cfg.DBConnStr != "" {
		dbClient, err = connectDB(ctx, cfg.DBConnStr)
		if err != nil {
			if cfg.DatasetSource == config.SourcePostgres {
				return err
			}
			log.Printf("Warning: statistics persistence disabled: %v", err)
		} else {
			defer dbClient.Close()
		}
	}

	var pg LaunchRecordReader
	if dbClient != nil {
		pg = dbClient
	}
	store, err := loadDataset(ctx, cfg, pg)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	st := stats.New()
	if dbClient != nil {
		st.SetStore(dbClient)
		go st.StartPersistence(ctx, cfg.StatsInterval)
	} else {
		go logStats(ctx, st, cfg.StatsInterval)
	}

	var publisher dashboard.Publisher
	if cfg.NATSURL != "" {
		client, err := nats.New(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: selection events disabled: %v", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	srv := dashboard.New(store, st, publisher)
	if dbClient != nil {
		srv.SetHistory(dbClient)
	}
	log.Printf("Loaded %s from %s source", srv, cfg.DatasetSource)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}
	return serve(ctx, ln, srv)
}

func connectDB(ctx context.Context, connStr string) (*db.Client, error) {
	client, err := db.New(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return client, nil
}

// loadDataset builds the store from the configured source
func loadDataset(ctx context.Context, cfg *config.Config, pg LaunchRecordReader) (*dataset.Store, error) {
	switch cfg.DatasetSource {
	case config.SourceCSV:
		return dataset.LoadFile(cfg.DatasetPath)
	case config.SourcePostgres:
		if pg == nil {
			return nil, errors.New("postgres source selected without a database connection")
		}
		return fromPostgres(ctx, pg)
	case config.SourceRedis:
		client, err := redis.New(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		return fromSnapshot(ctx, client)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.DatasetSource)
	}
}

func fromPostgres(ctx context.Context, pg LaunchRecordReader) (*dataset.Store, error) {
	records, err := pg.GetLaunchRecords(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.New(records)
}

func fromSnapshot(ctx context.Context, snap SnapshotReader) (*dataset.Store, error) {
	records, err := snap.GetRecords(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.New(records)
}

// serve runs the HTTP server on ln until ctx is done, then shuts it down
func serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Dashboard listening on http://%s", ln.Addr())
		errChan <- server.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// logStats prints the counters periodically when they are not persisted
func logStats(ctx context.Context, st *stats.Stats, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("Statistics:\n%s", st)
		}
	}
}
