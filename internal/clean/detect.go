package clean

import (
	"math"

	"github.com/planbiir/windclean/internal/wind"
)

// DetectOutliers flags anomalous values of cfg.Column. Statistics are
// computed per sensor, never across sensors. The result is a copy of
// readings in the same order with IsOutlier set on every row.
func DetectOutliers(readings []wind.Reading, cfg Config) ([]wind.Reading, error) {
	if err := cfg.validateDetection(); err != nil {
		return nil, err
	}

	out := wind.Clone(readings)
	for _, group := range wind.GroupBySensor(out) {
		values := make([]float64, len(group.Indices))
		for i, idx := range group.Indices {
			values[i] = cfg.value(out[idx])
		}

		flags := flagValues(values, cfg)
		for i, idx := range group.Indices {
			out[idx].IsOutlier = flags[i]
		}
	}

	return out, nil
}

// flagValues applies the statistical test to one sensor's values
func flagValues(values []float64, cfg Config) []bool {
	flags := make([]bool, len(values))
	valid := finite(values)

	var outside func(v float64) bool
	switch cfg.Method {
	case MethodIQR:
		q1 := percentile(valid, 25)
		q3 := percentile(valid, 75)
		iqr := q3 - q1
		lower := q1 - cfg.Threshold*iqr
		upper := q3 + cfg.Threshold*iqr
		outside = func(v float64) bool {
			return v < lower || v > upper
		}
	case MethodZScore:
		m := mean(valid)
		sd := sampleStdDev(valid)
		outside = func(v float64) bool {
			// Constant or single-value series have no defined z-score
			if math.IsNaN(sd) || sd == 0 {
				return false
			}
			return math.Abs(v-m)/sd > cfg.Threshold
		}
	}

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		flags[i] = outside(v)
		if cfg.AbsMax != nil && v > *cfg.AbsMax {
			flags[i] = true
		}
	}
	return flags
}

// CountOutliers summarises flags per sensor, ordered by sensor id
func CountOutliers(readings []wind.Reading) []SensorCount {
	groups := wind.GroupBySensor(readings)
	counts := make([]SensorCount, 0, len(groups))
	for _, group := range groups {
		c := SensorCount{Sensor: group.Sensor, Total: len(group.Indices)}
		for _, idx := range group.Indices {
			if readings[idx].IsOutlier {
				c.Outliers++
			}
		}
		counts = append(counts, c)
	}
	return counts
}
