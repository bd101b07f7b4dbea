package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/saviobatista/launch-dashboard/internal/config"
	"github.com/saviobatista/launch-dashboard/internal/testutils"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

type recordingWriter struct {
	records []types.LaunchRecord
	replace bool
	ttl     time.Duration
	deleted bool
	err     error
}

func (w *recordingWriter) StoreLaunchRecords(ctx context.Context, records []types.LaunchRecord, replace bool) error {
	w.records, w.replace = records, replace
	return w.err
}

func (w *recordingWriter) DeleteRecords(ctx context.Context) error {
	if w.err == nil {
		w.deleted = true
	}
	return w.err
}

func (w *recordingWriter) StoreRecords(ctx context.Context, records []types.LaunchRecord, ttl time.Duration) error {
	w.records, w.ttl = records, ttl
	return w.err
}

func TestParseFlags(t *testing.T) {
	full := &config.Config{DatasetPath: "launches.csv", DBConnStr: "postgres://x", RedisAddr: "localhost:6379"}

	tests := []struct {
		name    string
		cfg     *config.Config
		args    []string
		want    options
		wantErr string
	}{
		{
			name: "targets follow configuration",
			cfg:  full,
			want: options{path: "launches.csv", postgres: true, redis: true},
		},
		{
			name: "redis only with ttl",
			cfg:  full,
			args: []string{"-postgres=false", "-ttl", "1h", "-csv", "other.csv"},
			want: options{path: "other.csv", redis: true, ttl: time.Hour},
		},
		{
			name:    "postgres without connection string",
			cfg:     &config.Config{DatasetPath: "launches.csv"},
			args:    []string{"-postgres"},
			wantErr: "-postgres requires DB_CONN_STR",
		},
		{
			name:    "no targets",
			cfg:     &config.Config{DatasetPath: "launches.csv"},
			wantErr: "nothing to import into",
		},
		{
			name: "clear snapshot skips import targets",
			cfg:  full,
			args: []string{"-clear-snapshot"},
			want: options{redis: true, clear: true},
		},
		{
			name:    "clear snapshot without redis",
			cfg:     &config.Config{DatasetPath: "launches.csv", DBConnStr: "postgres://x"},
			args:    []string{"-clear-snapshot"},
			wantErr: "-clear-snapshot requires REDIS_ADDR",
		},
		{
			name:    "negative ttl",
			cfg:     full,
			args:    []string{"-ttl", "-1m"},
			wantErr: "ttl must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, tt.cfg, io.Discard)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestImportRecords(t *testing.T) {
	records := testutils.TwoSiteRecords()
	pg := &recordingWriter{}
	snap := &recordingWriter{}

	err := importRecords(context.Background(), records, options{ttl: time.Minute}, pg, snap)
	if err != nil {
		t.Fatalf("importRecords() failed: %v", err)
	}
	if len(pg.records) != len(records) || !pg.replace {
		t.Errorf("Expected Postgres to replace %d records, got %d replace=%v", len(records), len(pg.records), pg.replace)
	}
	if len(snap.records) != len(records) || snap.ttl != time.Minute {
		t.Errorf("Unexpected snapshot write: %d records ttl %s", len(snap.records), snap.ttl)
	}
}

func TestImportRecords_Append(t *testing.T) {
	pg := &recordingWriter{}
	if err := importRecords(context.Background(), testutils.TwoSiteRecords(), options{appendDB: true}, pg, nil); err != nil {
		t.Fatalf("importRecords() failed: %v", err)
	}
	if pg.replace {
		t.Error("Expected append mode not to replace")
	}
}

func TestImportRecords_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	pg := &recordingWriter{err: boom}
	snap := &recordingWriter{}

	err := importRecords(context.Background(), testutils.TwoSiteRecords(), options{}, pg, snap)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped error, got %v", err)
	}
	if snap.records != nil {
		t.Error("Snapshot should not be written after a Postgres failure")
	}
}

func TestClearSnapshot(t *testing.T) {
	snap := &recordingWriter{}
	if err := clearSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("clearSnapshot() failed: %v", err)
	}
	if !snap.deleted {
		t.Error("Expected the snapshot to be deleted")
	}

	boom := errors.New("boom")
	if err := clearSnapshot(context.Background(), &recordingWriter{err: boom}); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped error, got %v", err)
	}
}
