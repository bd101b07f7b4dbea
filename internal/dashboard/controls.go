package dashboard

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/saviobatista/launch-dashboard/internal/dataset"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

const (
	// SliderStep is the payload selector granularity in kilograms
	SliderStep = 1000
	// MarkStep is the spacing of labeled payload marks
	MarkStep = 2000

	defaultLow  = 1000
	defaultHigh = 5000
)

// ErrInvalidControl marks a control value the page never offers
var ErrInvalidControl = errors.New("invalid control value")

// Controls is the current value of every dashboard control
type Controls struct {
	Site  string
	Range types.PayloadRange
}

// Slider describes the payload range selector
type Slider struct {
	Min   float64
	Max   float64
	Step  float64
	Marks []float64
}

// NewSlider derives the payload selector from the observed payloads
func NewSlider(store *dataset.Store) Slider {
	low, high := store.SliderBounds(SliderStep)
	slider := Slider{Min: low, Max: high, Step: SliderStep}
	for m := low; m <= high; m += MarkStep {
		slider.Marks = append(slider.Marks, m)
	}
	return slider
}

// DefaultRange is [1000, 5000] clamped to the slider bounds
func (s Slider) DefaultRange() types.PayloadRange {
	r := types.PayloadRange{
		Low:  math.Max(defaultLow, s.Min),
		High: math.Min(defaultHigh, s.Max),
	}
	if r.Low > r.High {
		r = types.PayloadRange{Low: s.Min, High: s.Max}
	}
	return r
}

// parseSite reads the site control. Missing means all sites.
func parseSite(q url.Values, store *dataset.Store) (string, error) {
	site := strings.TrimSpace(q.Get("site"))
	if site == "" || site == types.AllSites {
		return types.AllSites, nil
	}
	if !store.HasSite(site) {
		return "", fmt.Errorf("%w: unknown site %q", ErrInvalidControl, site)
	}
	return site, nil
}

// parseRange reads the payload bounds, falling back to the slider default per
// bound. Both bounds must lie on the slider.
func parseRange(q url.Values, slider Slider) (types.PayloadRange, error) {
	def := slider.DefaultRange()
	r := def
	var err error
	if r.Low, err = parseBound(q, "low", def.Low); err != nil {
		return types.PayloadRange{}, err
	}
	if r.High, err = parseBound(q, "high", def.High); err != nil {
		return types.PayloadRange{}, err
	}
	if r.Low > r.High {
		return types.PayloadRange{}, fmt.Errorf("%w: low %g is above high %g", ErrInvalidControl, r.Low, r.High)
	}
	if r.Low < slider.Min || r.High > slider.Max {
		return types.PayloadRange{}, fmt.Errorf("%w: range [%g, %g] is outside [%g, %g]",
			ErrInvalidControl, r.Low, r.High, slider.Min, slider.Max)
	}
	return r, nil
}

func parseBound(q url.Values, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidControl, name, raw)
	}
	return v, nil
}
