// Package routing orders delivery stops for a route.
//
// The ordering is a lexicographic sort of the stop's location string. It
// is a placeholder heuristic inherited from production behavior, not a
// shortest-path or clustering computation; it only gives drivers a stable,
// reproducible visit order.
package routing

import (
	"sort"
	"time"
)

type Stop struct {
	OrderID         int64     `json:"order_id"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	SortLocation    string    `json:"-"`
	ScheduledTime   time.Time `json:"scheduled_time"`
}

// PlanRoute returns the stops sorted by location (alphabetically), ties
// broken by order id so the result is deterministic. The input slice is
// not modified.
func PlanRoute(stops []Stop) []Stop {
	planned := make([]Stop, len(stops))
	copy(planned, stops)

	sort.SliceStable(planned, func(i, j int) bool {
		if planned[i].SortLocation != planned[j].SortLocation {
			return planned[i].SortLocation < planned[j].SortLocation
		}
		return planned[i].OrderID < planned[j].OrderID
	})

	return planned
}
