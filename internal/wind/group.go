package wind

import (
	"sort"
)

// Group holds the row indices of one sensor's readings, in input order
type Group struct {
	Sensor  string
	Indices []int
}

// GroupBySensor partitions readings by sensor id. Groups are ordered by
// sensor id so per-sensor loops are reproducible regardless of input order.
func GroupBySensor(readings []Reading) []Group {
	bySensor := make(map[string][]int)
	for i, r := range readings {
		bySensor[r.Sensor] = append(bySensor[r.Sensor], i)
	}

	groups := make([]Group, 0, len(bySensor))
	for sensor, indices := range bySensor {
		groups = append(groups, Group{Sensor: sensor, Indices: indices})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Sensor < groups[j].Sensor
	})
	return groups
}

// SortByTime returns the group's indices ordered by reading time.
// Equal timestamps keep their input order.
func (g Group) SortByTime(readings []Reading) []int {
	sorted := make([]int, len(g.Indices))
	copy(sorted, g.Indices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return readings[sorted[i]].Time.Before(readings[sorted[j]].Time)
	})
	return sorted
}

// Sensors returns the distinct sensor ids in sorted order
func Sensors(readings []Reading) []string {
	groups := GroupBySensor(readings)
	sensors := make([]string, len(groups))
	for i, g := range groups {
		sensors[i] = g.Sensor
	}
	return sensors
}

// Clone returns an independent copy of readings
func Clone(readings []Reading) []Reading {
	if readings == nil {
		return nil
	}
	out := make([]Reading, len(readings))
	copy(out, readings)
	return out
}
