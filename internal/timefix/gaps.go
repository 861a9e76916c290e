package timefix

import (
	"time"

	"github.com/planbiir/windclean/internal/wind"
)

// Config controls gap detection and the DST correction.
type Config struct {
	// GapThreshold is the longest silence between two consecutive readings
	// of a sensor that is still considered continuous. If zero,
	// DefaultConfig().GapThreshold is used.
	GapThreshold time.Duration

	// DSTShift is the amount ShiftDST moves every timestamp by. If zero,
	// DefaultDSTShift is used.
	DSTShift time.Duration
}

// DefaultDSTShift is one hour, the usual daylight saving offset.
const DefaultDSTShift = time.Hour

// DefaultConfig returns the recommended configuration for 10 minute loggers.
func DefaultConfig() Config {
	return Config{
		GapThreshold: 30 * time.Minute,
		DSTShift:     DefaultDSTShift,
	}
}

// FindGaps reports every silence longer than threshold, per sensor. Sensors
// are visited in sensor id order and gaps within a sensor in time order.
// Differences are never taken across sensors. The result is never nil.
func FindGaps(readings []wind.Reading, threshold time.Duration) []wind.Gap {
	if threshold <= 0 {
		threshold = DefaultConfig().GapThreshold
	}

	gaps := make([]wind.Gap, 0)
	for _, group := range wind.GroupBySensor(readings) {
		if len(group.Indices) < 2 {
			continue
		}

		order := group.SortByTime(readings)
		for i := 1; i < len(order); i++ {
			current := readings[order[i-1]]
			next := readings[order[i]]

			gap := next.Time.Sub(current.Time)
			if gap <= threshold {
				continue
			}

			gaps = append(gaps, wind.Gap{
				Sensor:          group.Sensor,
				Start:           current.Time,
				End:             next.Time,
				DurationMinutes: gap.Minutes(),
			})
		}
	}

	return gaps
}

// GapStats summarises a gap list for one sensor
type GapStats struct {
	Sensor       string        `json:"sensor"`
	Gaps         int           `json:"gaps"`
	Missing      time.Duration `json:"missing"`
	LongestStart time.Time     `json:"longest_start"`
	Longest      time.Duration `json:"longest"`
}

// SummarizeGaps groups gaps by sensor, keeping the order of the input
func SummarizeGaps(gaps []wind.Gap) []GapStats {
	var stats []GapStats
	index := make(map[string]int)

	for _, g := range gaps {
		i, ok := index[g.Sensor]
		if !ok {
			i = len(stats)
			index[g.Sensor] = i
			stats = append(stats, GapStats{Sensor: g.Sensor})
		}

		d := g.End.Sub(g.Start)
		stats[i].Gaps++
		stats[i].Missing += d
		if d > stats[i].Longest {
			stats[i].Longest = d
			stats[i].LongestStart = g.Start
		}
	}
	return stats
}
