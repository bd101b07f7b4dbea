package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/saviobatista/launch-dashboard/internal/analytics"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

const (
	Width  = 800
	Height = 480

	noDataLabel = "No data"
)

// Format is an output image format
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat maps a request value to a format; empty means SVG
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatSVG):
		return FormatSVG, nil
	case string(FormatPNG):
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

// ContentType returns the MIME type for a format
func (f Format) ContentType() string {
	if f == FormatPNG {
		return chart.ContentTypePNG
	}
	return chart.ContentTypeSVG
}

// text escapes chart text for SVG, which go-chart writes verbatim
func (f Format) text(s string) string {
	if f == FormatSVG {
		return html.EscapeString(s)
	}
	return s
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

var (
	colorFailure = drawing.Color{R: 214, G: 39, B: 40, A: 255}
	colorSuccess = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	colorNoData  = drawing.Color{R: 220, G: 220, B: 220, A: 255}
)

// Outcome renders the launch outcome pie chart.
// Zero-valued slices are not drawn; a chart with nothing to draw gets a
// single "No data" placeholder slice.
func Outcome(w io.Writer, c types.OutcomeChart, f Format) error {
	values := make([]chart.Value, 0, len(c.Slices))
	for i, s := range c.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: f.text(fmt.Sprintf("%s (%s)", s.Label, formatValue(s.Value))),
			Value: s.Value,
			Style: chart.Style{FillColor: sliceColor(c.Mode, s, i)},
		})
	}

	pie := chart.PieChart{
		Title:  f.text(c.Title),
		Width:  Width,
		Height: Height,
		Values: values,
	}
	if len(values) == 0 {
		pie.Values = []chart.Value{{Label: noDataLabel, Value: 1}}
		pie.SliceStyle = chart.Style{FillColor: colorNoData}
	}

	if err := pie.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render outcome chart: %w", err)
	}
	return nil
}

func sliceColor(mode types.Mode, s types.Slice, index int) drawing.Color {
	if mode == types.ModeSingleSite {
		switch s.Key {
		case "0":
			return colorFailure
		case "1":
			return colorSuccess
		}
	}
	return chart.GetDefaultColor(index)
}

// Correlation renders the payload/outcome scatter chart with one series per
// booster version. An empty point set still renders the axes and title.
func Correlation(w io.Writer, c types.CorrelationChart, f Format) error {
	series := scatterSeries(c.Points, f)

	xmin, xmax := xBounds(c)
	ch := chart.Chart{
		Title:  f.text(c.Title),
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 12},
		},
		XAxis: chart.XAxis{
			Name:  "Payload Mass (kg)",
			Range: &chart.ContinuousRange{Min: xmin, Max: xmax},
		},
		YAxis: chart.YAxis{
			Name: "class",
			Ticks: []chart.Tick{
				{Value: -0.25, Label: ""},
				{Value: 0, Label: analytics.ClassLabel(0)},
				{Value: 1, Label: analytics.ClassLabel(1)},
				{Value: 1.25, Label: ""},
			},
		},
		YAxisSecondary: chart.YAxis{Style: chart.Hidden()},
	}

	if len(series) == 0 {
		ch.Series = []chart.Series{chart.ContinuousSeries{
			Style:   chart.Style{StrokeWidth: chart.Disabled},
			XValues: []float64{xmin, xmax},
			YValues: []float64{0, 1},
		}}
	} else {
		ch.Series = series
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render correlation chart: %w", err)
	}
	return nil
}

// scatterSeries groups points by booster version, keeping first-seen order
func scatterSeries(points []types.ScatterPoint, f Format) []chart.Series {
	index := make(map[string]int)
	var groups []chart.ContinuousSeries

	for _, p := range points {
		i, ok := index[p.BoosterVersion]
		if !ok {
			i = len(groups)
			index[p.BoosterVersion] = i
			groups = append(groups, chart.ContinuousSeries{
				Name:  f.text(p.BoosterVersion),
				Style: pointStyle(chart.GetDefaultColor(i)),
			})
		}
		groups[i].XValues = append(groups[i].XValues, p.PayloadMassKG)
		groups[i].YValues = append(groups[i].YValues, float64(p.Class))
	}

	series := make([]chart.Series, 0, len(groups))
	for _, g := range groups {
		series = append(series, g)
	}
	return series
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// xBounds covers the selected range and every point, which can exceed it
// when single-site payloads are summed
func xBounds(c types.CorrelationChart) (float64, float64) {
	xmin, xmax := c.Range.Low, c.Range.High
	for _, p := range c.Points {
		xmin = math.Min(xmin, p.PayloadMassKG)
		xmax = math.Max(xmax, p.PayloadMassKG)
	}
	if xmax <= xmin {
		xmax = xmin + 1
	}
	return xmin, xmax
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
