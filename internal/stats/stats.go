package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saviobatista/launch-dashboard/internal/types"
)

// Store persists statistics snapshots
type Store interface {
	StoreDashboardStats(ctx context.Context, s *types.DashboardStats) error
}

// Stats tracks dashboard request statistics
type Stats struct {
	// Request counts
	TotalRequests      uint64
	OutcomeRenders     uint64
	CorrelationRenders uint64
	EmptyResults       uint64
	InvalidRequests    uint64

	// Selection event counts
	PublishedEvents uint64
	FailedEvents    uint64

	// Timing
	LastRequestTime time.Time
	RenderTime      time.Duration
	startedAt       time.Time

	// Store for persistence
	store Store

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	now := time.Now()
	return &Stats{
		LastRequestTime: now,
		startedAt:       now,
	}
}

// SetStore sets the store used for persistence
func (s *Stats) SetStore(store Store) {
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
}

// Persist stores the current statistics
func (s *Stats) Persist(ctx context.Context) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return fmt.Errorf("stats store not set")
	}
	return store.StoreDashboardStats(ctx, s.Snapshot())
}

// IncrementTotalRequests increments the total requests counter
func (s *Stats) IncrementTotalRequests() {
	atomic.AddUint64(&s.TotalRequests, 1)
}

// IncrementOutcomeRenders increments the outcome chart counter
func (s *Stats) IncrementOutcomeRenders() {
	atomic.AddUint64(&s.OutcomeRenders, 1)
}

// IncrementCorrelationRenders increments the correlation chart counter
func (s *Stats) IncrementCorrelationRenders() {
	atomic.AddUint64(&s.CorrelationRenders, 1)
}

// IncrementEmptyResults counts a selection that matched no records
func (s *Stats) IncrementEmptyResults() {
	atomic.AddUint64(&s.EmptyResults, 1)
}

// IncrementInvalidRequests counts a rejected control value
func (s *Stats) IncrementInvalidRequests() {
	atomic.AddUint64(&s.InvalidRequests, 1)
}

// IncrementPublishedEvents increments the published events counter
func (s *Stats) IncrementPublishedEvents() {
	atomic.AddUint64(&s.PublishedEvents, 1)
}

// IncrementFailedEvents increments the failed events counter
func (s *Stats) IncrementFailedEvents() {
	atomic.AddUint64(&s.FailedEvents, 1)
}

// UpdateLastRequestTime updates the last request time
func (s *Stats) UpdateLastRequestTime() {
	s.mu.Lock()
	s.LastRequestTime = time.Now()
	s.mu.Unlock()
}

// AddRenderTime adds to the total render time
func (s *Stats) AddRenderTime(duration time.Duration) {
	s.mu.Lock()
	s.RenderTime += duration
	s.mu.Unlock()
}

// Snapshot returns a copy of the current statistics
func (s *Stats) Snapshot() *types.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &types.DashboardStats{
		Time:               time.Now(),
		TotalRequests:      atomic.LoadUint64(&s.TotalRequests),
		OutcomeRenders:     atomic.LoadUint64(&s.OutcomeRenders),
		CorrelationRenders: atomic.LoadUint64(&s.CorrelationRenders),
		EmptyResults:       atomic.LoadUint64(&s.EmptyResults),
		InvalidRequests:    atomic.LoadUint64(&s.InvalidRequests),
		PublishedEvents:    atomic.LoadUint64(&s.PublishedEvents),
		FailedEvents:       atomic.LoadUint64(&s.FailedEvents),
		LastRequestTime:    s.LastRequestTime,
		RenderTime:         s.RenderTime,
		Uptime:             time.Since(s.startedAt),
	}
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf(
		"Total Requests: %d\n"+
			"Outcome Renders: %d\n"+
			"Correlation Renders: %d\n"+
			"Empty Results: %d\n"+
			"Invalid Requests: %d\n"+
			"Published Events: %d\n"+
			"Failed Events: %d\n"+
			"Last Request Time: %s\n"+
			"Render Time: %s\n"+
			"Uptime: %s",
		snap.TotalRequests,
		snap.OutcomeRenders,
		snap.CorrelationRenders,
		snap.EmptyResults,
		snap.InvalidRequests,
		snap.PublishedEvents,
		snap.FailedEvents,
		snap.LastRequestTime.Format(time.RFC3339),
		snap.RenderTime,
		snap.Uptime.Round(time.Second),
	)
}

// StartPersistence starts periodic persistence of statistics
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final persistence before shutdown, on a fresh context
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Persist(final); err != nil {
				log.Printf("Failed to persist final statistics: %v", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := s.Persist(ctx); err != nil {
				log.Printf("Failed to persist statistics: %v", err)
			}
		}
	}
}
