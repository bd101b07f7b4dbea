package testutils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saviobatista/launch-dashboard/internal/types"
)

// SampleCSV is a small launch table in the layout of the published dataset,
// including the unnamed leading index column.
const SampleCSV = `,Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
0,1,CCAFS LC-40,0,0.0,F9 v1.0  B0003,v1.0
1,2,CCAFS LC-40,0,0.0,F9 v1.0  B0004,v1.0
2,3,CCAFS LC-40,0,525.0,F9 v1.0  B0005,v1.0
3,4,CCAFS LC-40,0,500.0,F9 v1.0  B0006,v1.0
4,5,CCAFS LC-40,0,677.0,F9 v1.0  B0007,v1.0
5,7,CCAFS LC-40,0,3170.0,F9 v1.1,v1.1
6,8,CCAFS LC-40,0,3325.0,F9 v1.1,v1.1
7,6,VAFB SLC-4E,0,500.0,F9 v1.1  B1003,v1.1
8,10,VAFB SLC-4E,1,9600.0,F9 FT B1029.1,FT
9,11,KSC LC-39A,1,2490.0,F9 FT B1031.1,FT
10,12,KSC LC-39A,0,5600.0,F9 FT B1030,FT
11,13,KSC LC-39A,1,5300.0,F9 FT B1021.2,FT
12,14,CCAFS SLC-40,1,3669.0,F9 FT B1042.1,FT
13,15,CCAFS SLC-40,1,6761.0,F9 B4 B1045.1,B4
`

// TwoSiteRecords returns the fixture with sites A (classes 1,1,0) and B (classes 0,0)
func TwoSiteRecords() []types.LaunchRecord {
	return []types.LaunchRecord{
		{FlightNumber: 1, LaunchSite: "A", PayloadMassKG: 500, Class: 1, BoosterVersion: "v1.0"},
		{FlightNumber: 2, LaunchSite: "A", PayloadMassKG: 1000, Class: 1, BoosterVersion: "v1.1"},
		{FlightNumber: 3, LaunchSite: "B", PayloadMassKG: 1500, Class: 0, BoosterVersion: "FT"},
		{FlightNumber: 4, LaunchSite: "A", PayloadMassKG: 5000, Class: 0, BoosterVersion: "v1.1"},
		{FlightNumber: 5, LaunchSite: "B", PayloadMassKG: 2500, Class: 0, BoosterVersion: "FT"},
	}
}

// MockRecord creates a launch record with the given site, payload and class
func MockRecord(site string, payload float64, class int) types.LaunchRecord {
	return types.LaunchRecord{
		LaunchSite:     site,
		PayloadMassKG:  payload,
		Class:          class,
		BoosterVersion: "F9 FT",
	}
}

// RecordsCSV renders records in the published dataset layout
func RecordsCSV(records []types.LaunchRecord) string {
	var b strings.Builder
	b.WriteString(",Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category\n")
	for i, r := range records {
		fmt.Fprintf(&b, "%d,%d,%s,%d,%g,%s,%s\n", i, r.FlightNumber, r.LaunchSite, r.Class, r.PayloadMassKG, r.BoosterVersion, r.BoosterCategory)
	}
	return b.String()
}

// MockSelectionEvent creates a selection event for testing
func MockSelectionEvent(chart, site string) *types.SelectionEvent {
	return &types.SelectionEvent{
		ID:        uuid.New().String(),
		Chart:     chart,
		Site:      site,
		Range:     types.PayloadRange{Low: 1000, High: 5000},
		Timestamp: time.Now().UTC(),
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
