// Package dashboard serves the launch records dashboard over HTTP. The pie
// chart is bound to the site control only; the scatter chart is bound to the
// site and payload range controls. Each chart request is computed from its
// query values alone.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/saviobatista/launch-dashboard/internal/analytics"
	"github.com/saviobatista/launch-dashboard/internal/dataset"
	"github.com/saviobatista/launch-dashboard/internal/render"
	"github.com/saviobatista/launch-dashboard/internal/stats"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

const (
	Title = "SpaceX Launch Records Dashboard"

	ChartOutcome     = "outcome"
	ChartCorrelation = "correlation"

	defaultHistoryWindow = 24 * time.Hour
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Publisher receives an event for every accepted chart request
type Publisher interface {
	PublishSelection(event *types.SelectionEvent) error
}

// StatsHistory returns persisted statistics snapshots, newest first
type StatsHistory interface {
	GetDashboardStats(ctx context.Context, start, end time.Time) ([]*types.DashboardStats, error)
}

// Server is the dashboard HTTP handler
type Server struct {
	store     *dataset.Store
	stats     *stats.Stats
	publisher Publisher
	history   StatsHistory
	slider    Slider
	mux       *http.ServeMux
}

// New creates a dashboard server over a loaded dataset. publisher may be nil.
func New(store *dataset.Store, st *stats.Stats, publisher Publisher) *Server {
	if st == nil {
		st = stats.New()
	}
	s := &Server{
		store:     store,
		stats:     st,
		publisher: publisher,
		slider:    NewSlider(store),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /charts/outcome.svg", s.handleOutcomeChart)
	s.mux.HandleFunc("GET /charts/correlation.svg", s.handleCorrelationChart)
	s.mux.HandleFunc("GET /api/outcome", s.handleOutcomeAPI)
	s.mux.HandleFunc("GET /api/correlation", s.handleCorrelationAPI)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	return s
}

// SetHistory enables persisted statistics on /api/stats
func (s *Server) SetHistory(h StatsHistory) {
	s.history = h
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.stats.IncrementTotalRequests()
	s.stats.UpdateLastRequestTime()
	s.mux.ServeHTTP(w, r)
}

type pageData struct {
	Title          string
	AllSites       string
	Sites          []string
	Slider         Slider
	Range          types.PayloadRange
	OutcomeURL     string
	CorrelationURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	def := s.slider.DefaultRange()
	data := pageData{
		Title:          Title,
		AllSites:       types.AllSites,
		Sites:          s.store.Sites(),
		Slider:         s.slider,
		Range:          def,
		OutcomeURL:     "/charts/outcome.svg?" + url.Values{"site": {types.AllSites}}.Encode(),
		CorrelationURL: "/charts/correlation.svg?" + controlsQuery(Controls{Site: types.AllSites, Range: def}).Encode(),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleOutcomeChart(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	c, ok := s.outcome(w, r)
	if !ok {
		return
	}
	s.writeChart(w, format, func(buf *bytes.Buffer) error {
		return render.Outcome(buf, c, format)
	})
}

func (s *Server) handleCorrelationChart(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	c, ok := s.correlation(w, r)
	if !ok {
		return
	}
	s.writeChart(w, format, func(buf *bytes.Buffer) error {
		return render.Correlation(buf, c, format)
	})
}

func (s *Server) handleOutcomeAPI(w http.ResponseWriter, r *http.Request) {
	if c, ok := s.outcome(w, r); ok {
		writeJSON(w, c)
	}
}

func (s *Server) handleCorrelationAPI(w http.ResponseWriter, r *http.Request) {
	if c, ok := s.correlation(w, r); ok {
		writeJSON(w, c)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"records": s.store.Len(),
		"sites":   len(s.store.Sites()),
	})
}

type statsResponse struct {
	Current *types.DashboardStats   `json:"current"`
	History []*types.DashboardStats `json:"history"`
}

// handleStats reports the live counters and, when history is configured,
// the snapshots persisted within ?window= (default 24h)
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	window := defaultHistoryWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			s.badRequest(w, r, fmt.Errorf("invalid window %q", raw))
			return
		}
		window = d
	}

	resp := statsResponse{
		Current: s.stats.Snapshot(),
		History: []*types.DashboardStats{},
	}
	if s.history != nil {
		end := time.Now().UTC()
		history, err := s.history.GetDashboardStats(r.Context(), end.Add(-window), end)
		if err != nil {
			log.Printf("Error loading stats history: %v", err)
			http.Error(w, "failed to load stats history", http.StatusInternalServerError)
			return
		}
		if history != nil {
			resp.History = history
		}
	}
	writeJSON(w, resp)
}

// outcome runs the aggregator for the request's site control
func (s *Server) outcome(w http.ResponseWriter, r *http.Request) (types.OutcomeChart, bool) {
	site, err := parseSite(r.URL.Query(), s.store)
	if err != nil {
		s.badRequest(w, r, err)
		return types.OutcomeChart{}, false
	}

	c := analytics.Outcomes(s.store, site)
	s.stats.IncrementOutcomeRenders()
	if len(c.Slices) == 0 {
		s.stats.IncrementEmptyResults()
	}
	s.publish(ChartOutcome, Controls{Site: site})
	return c, true
}

// correlation runs the correlator for the request's site and range controls
func (s *Server) correlation(w http.ResponseWriter, r *http.Request) (types.CorrelationChart, bool) {
	q := r.URL.Query()
	site, err := parseSite(q, s.store)
	if err != nil {
		s.badRequest(w, r, err)
		return types.CorrelationChart{}, false
	}
	payload, err := parseRange(q, s.slider)
	if err != nil {
		s.badRequest(w, r, err)
		return types.CorrelationChart{}, false
	}

	c := analytics.Correlate(s.store, site, payload)
	s.stats.IncrementCorrelationRenders()
	if len(c.Points) == 0 {
		s.stats.IncrementEmptyResults()
	}
	s.publish(ChartCorrelation, Controls{Site: site, Range: payload})
	return c, true
}

func (s *Server) writeChart(w http.ResponseWriter, format render.Format, draw func(*bytes.Buffer) error) {
	start := time.Now()
	var buf bytes.Buffer
	err := draw(&buf)
	s.stats.AddRenderTime(time.Since(start))
	if err != nil {
		log.Printf("Error rendering chart: %v", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// publish emits a selection event. Failures never fail the request.
func (s *Server) publish(chart string, c Controls) {
	if s.publisher == nil {
		return
	}
	event := &types.SelectionEvent{
		ID:        uuid.New().String(),
		Chart:     chart,
		Site:      c.Site,
		Range:     c.Range,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishSelection(event); err != nil {
		s.stats.IncrementFailedEvents()
		log.Printf("Warning: failed to publish selection event: %v", err)
		return
	}
	s.stats.IncrementPublishedEvents()
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.stats.IncrementInvalidRequests()
	if errors.Is(err, ErrInvalidControl) {
		log.Printf("Error: rejected control value on %s: %v", r.URL.Path, err)
	} else {
		log.Printf("Error: bad request on %s: %v", r.URL.Path, err)
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func controlsQuery(c Controls) url.Values {
	return url.Values{
		"site": {c.Site},
		"low":  {strconv.FormatFloat(c.Range.Low, 'f', -1, 64)},
		"high": {strconv.FormatFloat(c.Range.High, 'f', -1, 64)},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// String summarizes the server for startup logs
func (s *Server) String() string {
	return fmt.Sprintf("%d launch records across %d sites, payload slider [%g, %g]",
		s.store.Len(), len(s.store.Sites()), s.slider.Min, s.slider.Max)
}
