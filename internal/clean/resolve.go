package clean

import (
	"fmt"
	"math"

	"github.com/planbiir/windclean/internal/wind"
)

// ResolveOutliers removes or repairs flagged readings according to cfg.Mode.
// The input slice is never modified. Per-sensor problems are collected in
// Resolution.Problems and do not stop other sensors from being processed.
func ResolveOutliers(readings []wind.Reading, cfg Config) (Resolution, error) {
	if err := cfg.validateResolution(); err != nil {
		return Resolution{}, err
	}

	if cfg.Mode == ModeRemove {
		return removeOutliers(readings), nil
	}

	res := Resolution{Readings: wind.Clone(readings)}
	for _, group := range wind.GroupBySensor(res.Readings) {
		var (
			repairs    map[int]float64
			unresolved []int
			problem    *SensorProblem
		)

		switch cfg.Replacement {
		case ReplaceMedian:
			repairs, unresolved, problem = replaceWithStatistic(res.Readings, group, cfg, medianFloat)
		case ReplaceMean:
			repairs, unresolved, problem = replaceWithStatistic(res.Readings, group, cfg, mean)
		case ReplaceInterpolate:
			repairs, unresolved, problem = interpolateByTime(res.Readings, group, cfg)
		}

		if problem != nil {
			res.Problems = append(res.Problems, *problem)
		}

		// Commit only after the whole sensor has been computed
		for idx, v := range repairs {
			cfg.setValue(&res.Readings[idx], v)
			res.Readings[idx].Repaired = true
		}
		res.Repaired += len(repairs)

		// Unresolved rows stay flagged with no value
		for _, idx := range unresolved {
			cfg.setValue(&res.Readings[idx], math.NaN())
		}
	}

	return res, nil
}

func removeOutliers(readings []wind.Reading) Resolution {
	kept := make([]wind.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.IsOutlier {
			kept = append(kept, r)
		}
	}
	return Resolution{
		Readings: kept,
		Removed:  len(readings) - len(kept),
	}
}

// replaceWithStatistic assigns stat(non-flagged values) to every flagged row.
// When the statistic is undefined every flagged row is returned as unresolved.
func replaceWithStatistic(readings []wind.Reading, group wind.Group, cfg Config, stat func([]float64) float64) (map[int]float64, []int, *SensorProblem) {
	var (
		good    []float64
		flagged []int
	)
	for _, idx := range group.Indices {
		if readings[idx].IsOutlier {
			flagged = append(flagged, idx)
			continue
		}
		good = append(good, cfg.value(readings[idx]))
	}
	if len(flagged) == 0 {
		return nil, nil, nil
	}

	replacement := stat(finite(good))
	if math.IsNaN(replacement) {
		return nil, flagged, &SensorProblem{
			Sensor: group.Sensor,
			Count:  len(flagged),
			Err:    fmt.Errorf("%w: no unflagged %s values", ErrUndefinedStatistic, cfg.Column),
		}
	}

	repairs := make(map[int]float64, len(flagged))
	for _, idx := range flagged {
		repairs[idx] = replacement
	}
	return repairs, nil, nil
}

// interpolateByTime repairs flagged values by linear interpolation against
// timestamps. Values after the last valid reading take that reading's value;
// values before the first valid reading are left unresolved. Missing values
// that were never flagged are not filled, unlike pandas time interpolation.
func interpolateByTime(readings []wind.Reading, group wind.Group, cfg Config) (map[int]float64, []int, *SensorProblem) {
	order := group.SortByTime(readings)
	n := len(order)

	missing := make([]bool, n)
	anyMissing, anyValid := false, false
	for pos, idx := range order {
		v := cfg.value(readings[idx])
		missing[pos] = readings[idx].IsOutlier || math.IsNaN(v)
		if readings[idx].IsOutlier {
			anyMissing = true
		}
		if !missing[pos] {
			anyValid = true
		}
	}
	if !anyMissing {
		return nil, nil, nil
	}
	if !anyValid {
		unresolved := flaggedIndices(readings, order)
		return nil, unresolved, &SensorProblem{
			Sensor: group.Sensor,
			Count:  len(unresolved),
			Err:    fmt.Errorf("%w: no unflagged %s values to interpolate from", ErrUndefinedStatistic, cfg.Column),
		}
	}

	// next[pos] is the position of the first valid value at or after pos
	next := make([]int, n)
	nextValid := -1
	for pos := n - 1; pos >= 0; pos-- {
		if !missing[pos] {
			nextValid = pos
		}
		next[pos] = nextValid
	}

	repairs := make(map[int]float64)
	var unresolved []int
	prevValid := -1
	for pos, idx := range order {
		if !missing[pos] {
			prevValid = pos
			continue
		}
		if !readings[idx].IsOutlier {
			continue // missing data that was never flagged stays as is
		}

		switch {
		case prevValid < 0:
			unresolved = append(unresolved, idx)
		case next[pos] < 0:
			repairs[idx] = cfg.value(readings[order[prevValid]])
		default:
			before := readings[order[prevValid]]
			after := readings[order[next[pos]]]
			repairs[idx] = interpolate(before, after, readings[idx], cfg)
		}
	}

	if len(unresolved) > 0 {
		return repairs, unresolved, &SensorProblem{
			Sensor: group.Sensor,
			Count:  len(unresolved),
			Err:    ErrUnresolvedEdge,
		}
	}
	return repairs, nil, nil
}

// interpolate weighs by elapsed time, not by row position
func interpolate(before, after, at wind.Reading, cfg Config) float64 {
	v0 := cfg.value(before)
	v1 := cfg.value(after)

	span := float64(after.Time.Sub(before.Time))
	if span == 0 {
		return v0
	}
	weight := float64(at.Time.Sub(before.Time)) / span
	return v0 + (v1-v0)*weight
}

func flaggedIndices(readings []wind.Reading, indices []int) []int {
	var flagged []int
	for _, idx := range indices {
		if readings[idx].IsOutlier {
			flagged = append(flagged, idx)
		}
	}
	return flagged
}
