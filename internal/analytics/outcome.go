// Package analytics turns the launch records table into chart inputs.
// Every function here is a pure function of the store and the control values.
package analytics

import (
	"fmt"
	"strconv"

	"github.com/saviobatista/launch-dashboard/internal/dataset"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

const allSitesOutcomeTitle = "Total Successful Launches by Site"

// ClassLabel returns the display label for an outcome class
func ClassLabel(class int) string {
	switch class {
	case 0:
		return "Failure (0)"
	case 1:
		return "Success (1)"
	default:
		return strconv.Itoa(class)
	}
}

// Outcomes builds the launch outcome proportion chart for a site selection.
//
// For AllSites there is one slice per site, in dataset order, valued at the
// number of successful launches from that site. For a single site there is one
// slice per outcome class present, class 0 first, valued at the record count.
// A site without records yields a chart with no slices.
func Outcomes(store *dataset.Store, site string) types.OutcomeChart {
	if site == types.AllSites {
		return allSitesOutcomes(store)
	}
	return siteOutcomes(store, site)
}

func allSitesOutcomes(store *dataset.Store) types.OutcomeChart {
	successes := make(map[string]int)
	store.Each(func(r types.LaunchRecord) {
		successes[r.LaunchSite] += r.Class
	})

	sites := store.Sites()
	slices := make([]types.Slice, 0, len(sites))
	for _, site := range sites {
		slices = append(slices, types.Slice{
			Key:   site,
			Label: site,
			Value: float64(successes[site]),
		})
	}

	return types.OutcomeChart{
		Title:  allSitesOutcomeTitle,
		Mode:   types.ModeAllSites,
		Site:   types.AllSites,
		Slices: slices,
	}
}

func siteOutcomes(store *dataset.Store, site string) types.OutcomeChart {
	var counts [2]int
	store.Each(func(r types.LaunchRecord) {
		if r.LaunchSite == site {
			counts[r.Class]++
		}
	})

	slices := make([]types.Slice, 0, len(counts))
	for class, count := range counts {
		if count == 0 {
			continue
		}
		slices = append(slices, types.Slice{
			Key:   strconv.Itoa(class),
			Label: ClassLabel(class),
			Value: float64(count),
		})
	}

	return types.OutcomeChart{
		Title:  fmt.Sprintf("Success vs. Failure for %s", site),
		Mode:   types.ModeSingleSite,
		Site:   site,
		Slices: slices,
	}
}
