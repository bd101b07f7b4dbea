package migrations

// InitialSchema creates the launch records and dashboard statistics tables
var InitialSchema = &Migration{
	Name: "001_initial_schema",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS launch_records (
			id BIGSERIAL PRIMARY KEY,
			flight_number INTEGER NOT NULL DEFAULT 0,
			launch_site TEXT NOT NULL,
			payload_mass_kg DOUBLE PRECISION NOT NULL CHECK (payload_mass_kg >= 0),
			class SMALLINT NOT NULL CHECK (class IN (0, 1)),
			booster_version TEXT NOT NULL,
			booster_category TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_launch_records_site ON launch_records (launch_site);

		CREATE TABLE IF NOT EXISTS dashboard_stats (
			time TIMESTAMPTZ NOT NULL,
			total_requests BIGINT NOT NULL,
			outcome_renders BIGINT NOT NULL,
			correlation_renders BIGINT NOT NULL,
			empty_results BIGINT NOT NULL,
			invalid_requests BIGINT NOT NULL,
			published_events BIGINT NOT NULL,
			failed_events BIGINT NOT NULL,
			render_time_ms BIGINT NOT NULL,
			uptime_seconds BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_dashboard_stats_time ON dashboard_stats (time DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS dashboard_stats;
		DROP TABLE IF EXISTS launch_records;
	`,
}
