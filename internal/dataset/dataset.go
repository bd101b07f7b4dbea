package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/saviobatista/launch-dashboard/internal/types"
)

// Normalized column names
const (
	ColFlightNumber    = "Flight_Number"
	ColLaunchSite      = "Launch_Site"
	ColPayloadMass     = "Payload_Mass_(kg)"
	ColClass           = "class"
	ColBoosterVersion  = "Booster_Version"
	ColBoosterCategory = "Booster_Version_Category"
)

var requiredColumns = []string{ColLaunchSite, ColPayloadMass, ColClass, ColBoosterVersion}

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("dataset has no records")
)

// Store holds the launch records table. It is never modified after construction.
type Store struct {
	records    []types.LaunchRecord
	sites      []string
	siteIndex  map[string]struct{}
	minPayload float64
	maxPayload float64
}

// NormalizeColumn replaces spaces with underscores so a column name is a single token
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// LoadFile reads the dataset from a CSV file
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	store, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return store, nil
}

// Load reads the dataset from CSV. The first row must be the header.
func Load(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[NormalizeColumn(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var records []types.LaunchRecord
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		record, err := parseRecord(fields, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return New(records)
}

func parseRecord(fields []string, columns map[string]int) (types.LaunchRecord, error) {
	field := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}

	var record types.LaunchRecord

	site, _ := field(ColLaunchSite)
	record.LaunchSite = site

	raw, _ := field(ColPayloadMass)
	mass, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return record, fmt.Errorf("invalid payload mass %q: %w", raw, err)
	}
	record.PayloadMassKG = mass

	raw, _ = field(ColClass)
	class, err := strconv.Atoi(raw)
	if err != nil {
		return record, fmt.Errorf("invalid class %q: %w", raw, err)
	}
	record.Class = class

	record.BoosterVersion, _ = field(ColBoosterVersion)

	if raw, ok := field(ColFlightNumber); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return record, fmt.Errorf("invalid flight number %q: %w", raw, err)
		}
		record.FlightNumber = n
	}
	record.BoosterCategory, _ = field(ColBoosterCategory)

	return record, nil
}

// New builds a store from typed records
func New(records []types.LaunchRecord) (*Store, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	s := &Store{
		records:    make([]types.LaunchRecord, len(records)),
		siteIndex:  make(map[string]struct{}),
		minPayload: math.Inf(1),
		maxPayload: math.Inf(-1),
	}
	copy(s.records, records)

	for i, r := range s.records {
		if err := validate(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, seen := s.siteIndex[r.LaunchSite]; !seen {
			s.siteIndex[r.LaunchSite] = struct{}{}
			s.sites = append(s.sites, r.LaunchSite)
		}
		s.minPayload = math.Min(s.minPayload, r.PayloadMassKG)
		s.maxPayload = math.Max(s.maxPayload, r.PayloadMassKG)
	}

	return s, nil
}

func validate(r types.LaunchRecord) error {
	if r.LaunchSite == "" {
		return errors.New("empty launch site")
	}
	if r.LaunchSite == types.AllSites {
		return fmt.Errorf("launch site %q is reserved", r.LaunchSite)
	}
	if math.IsNaN(r.PayloadMassKG) || r.PayloadMassKG < 0 {
		return fmt.Errorf("invalid payload mass %v", r.PayloadMassKG)
	}
	if r.Class != 0 && r.Class != 1 {
		return fmt.Errorf("invalid class %d", r.Class)
	}
	return nil
}

// Records returns a copy of every record in load order
func (s *Store) Records() []types.LaunchRecord {
	out := make([]types.LaunchRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Each calls fn for every record in load order without copying the table
func (s *Store) Each(fn func(types.LaunchRecord)) {
	for _, r := range s.records {
		fn(r)
	}
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Sites returns the distinct launch sites in order of first appearance
func (s *Store) Sites() []string {
	out := make([]string, len(s.sites))
	copy(out, s.sites)
	return out
}

// HasSite reports whether the dataset contains the given site
func (s *Store) HasSite(site string) bool {
	_, ok := s.siteIndex[site]
	return ok
}

// MinPayload returns the smallest observed payload mass
func (s *Store) MinPayload() float64 {
	return s.minPayload
}

// MaxPayload returns the largest observed payload mass
func (s *Store) MaxPayload() float64 {
	return s.maxPayload
}

// SliderBounds returns the observed payload span widened to multiples of step
func (s *Store) SliderBounds(step float64) (float64, float64) {
	if step <= 0 {
		return s.minPayload, s.maxPayload
	}
	low := math.Floor(s.minPayload/step) * step
	high := math.Ceil(s.maxPayload/step) * step
	if high == low {
		high += step
	}
	return low, high
}
