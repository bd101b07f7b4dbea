package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection is usable
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// GetLaunchRecords retrieves every launch record in flight order
func (c *Client) GetLaunchRecords(ctx context.Context) ([]types.LaunchRecord, error) {
	query := `
		SELECT flight_number, launch_site, payload_mass_kg, class,
			booster_version, booster_category
		FROM launch_records
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query launch records: %w", err)
	}
	defer rows.Close()

	var records []types.LaunchRecord
	for rows.Next() {
		var (
			r        types.LaunchRecord
			category sql.NullString
		)
		if err := rows.Scan(
			&r.FlightNumber, &r.LaunchSite, &r.PayloadMassKG, &r.Class,
			&r.BoosterVersion, &category,
		); err != nil {
			return nil, fmt.Errorf("failed to scan launch record: %w", err)
		}
		r.BoosterCategory = category.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// StoreLaunchRecords writes records in one transaction. When replace is set
// the table is emptied first.
func (c *Client) StoreLaunchRecords(ctx context.Context, records []types.LaunchRecord, replace bool) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM launch_records`); err != nil {
			return fmt.Errorf("failed to clear launch records: %w", err)
		}
	}

	query := `
		INSERT INTO launch_records (
			flight_number, launch_site, payload_mass_kg, class,
			booster_version, booster_category
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, r := range records {
		var category sql.NullString
		if r.BoosterCategory != "" {
			category = sql.NullString{String: r.BoosterCategory, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query,
			r.FlightNumber, r.LaunchSite, r.PayloadMassKG, r.Class,
			r.BoosterVersion, category,
		); err != nil {
			return fmt.Errorf("failed to insert launch record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// StoreDashboardStats stores a statistics snapshot
func (c *Client) StoreDashboardStats(ctx context.Context, stats *types.DashboardStats) error {
	query := `
		INSERT INTO dashboard_stats (
			time, total_requests, outcome_renders, correlation_renders,
			empty_results, invalid_requests, published_events, failed_events,
			render_time_ms, uptime_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := c.db.ExecContext(ctx, query,
		stats.Time,
		int64(stats.TotalRequests),
		int64(stats.OutcomeRenders),
		int64(stats.CorrelationRenders),
		int64(stats.EmptyResults),
		int64(stats.InvalidRequests),
		int64(stats.PublishedEvents),
		int64(stats.FailedEvents),
		stats.RenderTime.Milliseconds(),
		int64(stats.Uptime.Seconds()),
	)
	return err
}

// GetDashboardStats retrieves statistics for a time range, newest first
func (c *Client) GetDashboardStats(ctx context.Context, start, end time.Time) ([]*types.DashboardStats, error) {
	query := `
		SELECT
			time, total_requests, outcome_renders, correlation_renders,
			empty_results, invalid_requests, published_events, failed_events,
			render_time_ms, uptime_seconds
		FROM dashboard_stats
		WHERE time BETWEEN $1 AND $2
		ORDER BY time DESC
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*types.DashboardStats
	for rows.Next() {
		var (
			s                  types.DashboardStats
			totalRequests      int64
			outcomeRenders     int64
			correlationRenders int64
			emptyResults       int64
			invalidRequests    int64
			publishedEvents    int64
			failedEvents       int64
			renderTimeMs       int64
			uptimeSeconds      int64
		)

		if err := rows.Scan(
			&s.Time,
			&totalRequests,
			&outcomeRenders,
			&correlationRenders,
			&emptyResults,
			&invalidRequests,
			&publishedEvents,
			&failedEvents,
			&renderTimeMs,
			&uptimeSeconds,
		); err != nil {
			return nil, err
		}

		s.TotalRequests = uint64(totalRequests)
		s.OutcomeRenders = uint64(outcomeRenders)
		s.CorrelationRenders = uint64(correlationRenders)
		s.EmptyResults = uint64(emptyResults)
		s.InvalidRequests = uint64(invalidRequests)
		s.PublishedEvents = uint64(publishedEvents)
		s.FailedEvents = uint64(failedEvents)
		s.RenderTime = time.Duration(renderTimeMs) * time.Millisecond
		s.Uptime = time.Duration(uptimeSeconds) * time.Second

		stats = append(stats, &s)
	}

	return stats, rows.Err()
}
