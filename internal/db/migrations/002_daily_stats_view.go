package migrations

// DailyStatsView adds a per-day rollup of the persisted dashboard counters.
// Counters are cumulative per process, so the rollup keeps the peak value.
var DailyStatsView = &Migration{
	Name: "002_daily_stats_view",
	UpSQL: `
		CREATE OR REPLACE VIEW dashboard_stats_daily AS
		SELECT
			date_trunc('day', time) AS day,
			MAX(total_requests) AS total_requests,
			MAX(outcome_renders) AS outcome_renders,
			MAX(correlation_renders) AS correlation_renders,
			MAX(empty_results) AS empty_results,
			MAX(invalid_requests) AS invalid_requests,
			MAX(published_events) AS published_events,
			MAX(failed_events) AS failed_events
		FROM dashboard_stats
		GROUP BY day;
	`,
	DownSQL: `
		DROP VIEW IF EXISTS dashboard_stats_daily;
	`,
}
