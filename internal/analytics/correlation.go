package analytics

import (
	"fmt"
	"sort"

	"github.com/saviobatista/launch-dashboard/internal/dataset"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

type groupKey struct {
	site    string
	class   int
	booster string
}

// Correlate builds the payload/outcome scatter chart for a site selection and
// payload range. Only records with Low < payload < High are considered.
//
// For AllSites every matching record is one point, in dataset order. For a
// single site the matching records are grouped by (site, class, booster
// version) and each group becomes one point whose payload is the group sum.
// The two branches disagree on what a point is, and summed payloads can land
// outside the selected range. Both are kept as-is; see DESIGN.md.
func Correlate(store *dataset.Store, site string, payload types.PayloadRange) types.CorrelationChart {
	chart := types.CorrelationChart{
		Mode:  types.ModeFor(site),
		Site:  site,
		Range: payload,
	}

	if site == types.AllSites {
		chart.Title = "Payload vs. Outcome for All Sites"
		chart.Points = rawPoints(store, payload)
		return chart
	}

	chart.Title = fmt.Sprintf("Payload vs. Outcome for %s", site)
	chart.Points = groupedPoints(store, site, payload)
	return chart
}

func rawPoints(store *dataset.Store, payload types.PayloadRange) []types.ScatterPoint {
	points := []types.ScatterPoint{}
	store.Each(func(r types.LaunchRecord) {
		if !payload.Contains(r.PayloadMassKG) {
			return
		}
		points = append(points, types.ScatterPoint{
			PayloadMassKG:   r.PayloadMassKG,
			Class:           r.Class,
			BoosterVersion:  r.BoosterVersion,
			LaunchSite:      r.LaunchSite,
			BoosterCategory: r.BoosterCategory,
		})
	})
	return points
}

func groupedPoints(store *dataset.Store, site string, payload types.PayloadRange) []types.ScatterPoint {
	sums := make(map[groupKey]float64)
	categories := make(map[groupKey]string)
	var keys []groupKey

	store.Each(func(r types.LaunchRecord) {
		if r.LaunchSite != site || !payload.Contains(r.PayloadMassKG) {
			return
		}
		key := groupKey{site: r.LaunchSite, class: r.Class, booster: r.BoosterVersion}
		if _, ok := sums[key]; !ok {
			keys = append(keys, key)
			categories[key] = r.BoosterCategory
		}
		sums[key] += r.PayloadMassKG
	})

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.site != b.site {
			return a.site < b.site
		}
		if a.class != b.class {
			return a.class < b.class
		}
		return a.booster < b.booster
	})

	points := make([]types.ScatterPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, types.ScatterPoint{
			PayloadMassKG:   sums[key],
			Class:           key.class,
			BoosterVersion:  key.booster,
			LaunchSite:      key.site,
			BoosterCategory: categories[key],
		})
	}
	return points
}
