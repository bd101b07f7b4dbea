package types

import (
	"time"
)

// AllSites is the site selection that covers every launch site
const AllSites = "ALL"

// LaunchRecord represents one row of the launch records table
type LaunchRecord struct {
	FlightNumber    int     `json:"flight_number,omitempty"`
	LaunchSite      string  `json:"launch_site"`
	PayloadMassKG   float64 `json:"payload_mass_kg"`
	Class           int     `json:"class"`
	BoosterVersion  string  `json:"booster_version"`
	BoosterCategory string  `json:"booster_category,omitempty"`
}

// PayloadRange is a payload mass window in kilograms
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether mass lies strictly inside the range.
// Values equal to Low or High are outside.
func (r PayloadRange) Contains(mass float64) bool {
	return mass > r.Low && mass < r.High
}

// Mode tells which branch produced a chart
type Mode string

const (
	ModeAllSites   Mode = "all_sites"
	ModeSingleSite Mode = "single_site"
)

// ModeFor returns the chart mode for a site selection
func ModeFor(site string) Mode {
	if site == AllSites {
		return ModeAllSites
	}
	return ModeSingleSite
}

// Slice is one labeled value of a proportion chart
type Slice struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// OutcomeChart is the input of the launch outcome pie chart
type OutcomeChart struct {
	Title  string  `json:"title"`
	Mode   Mode    `json:"mode"`
	Site   string  `json:"site"`
	Slices []Slice `json:"slices"`
}

// ScatterPoint is one point of the payload correlation chart
type ScatterPoint struct {
	PayloadMassKG   float64 `json:"payload_mass_kg"`
	Class           int     `json:"class"`
	BoosterVersion  string  `json:"booster_version"`
	LaunchSite      string  `json:"launch_site"`
	BoosterCategory string  `json:"booster_category,omitempty"`
}

// CorrelationChart is the input of the payload/outcome scatter chart
type CorrelationChart struct {
	Title  string         `json:"title"`
	Mode   Mode           `json:"mode"`
	Site   string         `json:"site"`
	Range  PayloadRange   `json:"range"`
	Points []ScatterPoint `json:"points"`
}

// SelectionEvent records a control change on the dashboard
type SelectionEvent struct {
	ID        string       `json:"id"`
	Chart     string       `json:"chart"`
	Site      string       `json:"site"`
	Range     PayloadRange `json:"range"`
	Timestamp time.Time    `json:"timestamp"`
}

// DashboardStats is a point-in-time copy of the dashboard counters
type DashboardStats struct {
	Time               time.Time     `json:"time"`
	TotalRequests      uint64        `json:"total_requests"`
	OutcomeRenders     uint64        `json:"outcome_renders"`
	CorrelationRenders uint64        `json:"correlation_renders"`
	EmptyResults       uint64        `json:"empty_results"`
	InvalidRequests    uint64        `json:"invalid_requests"`
	PublishedEvents    uint64        `json:"published_events"`
	FailedEvents       uint64        `json:"failed_events"`
	LastRequestTime    time.Time     `json:"last_request_time"`
	RenderTime         time.Duration `json:"render_time"`
	Uptime             time.Duration `json:"uptime"`
}
