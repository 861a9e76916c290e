package clean

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/planbiir/windclean/internal/wind"
)

func flagged(readings []wind.Reading, idx ...int) []wind.Reading {
	out := wind.Clone(readings)
	for _, i := range idx {
		out[i].IsOutlier = true
	}
	return out
}

func TestResolveRemove(t *testing.T) {
	readings := flagged(series("A", 1, 2, 3, 4, 100), 4)
	readings = append(readings, flagged(series("B", 5, 50, 6), 1)...)

	cfg := DefaultConfig()
	cfg.Mode = ModeRemove
	res, err := ResolveOutliers(readings, cfg)
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}

	if len(res.Readings) != len(readings)-2 {
		t.Fatalf("expected %d rows, got %d", len(readings)-2, len(res.Readings))
	}
	if res.Removed != 2 {
		t.Errorf("expected 2 removed rows, got %d", res.Removed)
	}

	expected := []float64{1, 2, 3, 4, 5, 6}
	for i, r := range res.Readings {
		if r.SpeedMPH != expected[i] || r.IsOutlier || r.Repaired {
			t.Errorf("row %d altered: %+v", i, r)
		}
	}
}

func TestResolveReplaceMedian(t *testing.T) {
	readings := flagged(series("A", 1, 2, 3, 4, 100, 90), 4, 5)
	readings = append(readings, flagged(series("B", 10, 20, 500), 2)...)

	cfg := DefaultConfig()
	cfg.Replacement = ReplaceMedian
	res, err := ResolveOutliers(readings, cfg)
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}
	if len(res.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", res.Problems)
	}

	expected := []float64{1, 2, 3, 4, 2.5, 2.5, 10, 20, 15}
	for i, r := range res.Readings {
		if r.SpeedMPH != expected[i] {
			t.Errorf("row %d: expected %.2f, got %.2f", i, expected[i], r.SpeedMPH)
		}
		if r.Repaired != r.IsOutlier {
			t.Errorf("row %d: repaired=%v but outlier=%v", i, r.Repaired, r.IsOutlier)
		}
	}
	if res.Repaired != 3 {
		t.Errorf("expected 3 repaired values, got %d", res.Repaired)
	}

	if readings[4].SpeedMPH != 100 {
		t.Errorf("ResolveOutliers mutated its input")
	}
}

func TestResolveReplaceMean(t *testing.T) {
	readings := flagged(series("A", 1, 2, 6, 99), 3)

	cfg := DefaultConfig()
	cfg.Replacement = ReplaceMean
	res, err := ResolveOutliers(readings, cfg)
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}
	if res.Readings[3].SpeedMPH != 3 {
		t.Errorf("expected mean 3, got %.2f", res.Readings[3].SpeedMPH)
	}
}

func TestResolveUndefinedStatisticIsPerSensor(t *testing.T) {
	readings := flagged(series("A", 40, 50), 0, 1)
	readings = append(readings, flagged(series("B", 1, 9, 3), 1)...)

	cfg := DefaultConfig()
	cfg.Replacement = ReplaceMedian
	res, err := ResolveOutliers(readings, cfg)
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}

	if len(res.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(res.Problems))
	}
	p := res.Problems[0]
	if p.Sensor != "A" || p.Count != 2 || !errors.Is(p, ErrUndefinedStatistic) {
		t.Errorf("unexpected problem: %v", p)
	}

	// Sensor A stays flagged, unrepaired and blanked
	for i := 0; i < 2; i++ {
		r := res.Readings[i]
		if !math.IsNaN(r.SpeedMPH) || r.Repaired || !r.IsOutlier {
			t.Errorf("sensor A row %d should be flagged, unrepaired and NaN: %+v", i, r)
		}
	}
	if readings[0].SpeedMPH != 40 {
		t.Errorf("input slice modified: %+v", readings[0])
	}
	// Sensor B processed normally
	if res.Readings[3].SpeedMPH != 2 || !res.Readings[3].Repaired {
		t.Errorf("sensor B not repaired: %+v", res.Readings[3])
	}
}

func TestResolveInterpolateUsesTimestamps(t *testing.T) {
	// Irregular spacing: 0, 10, 40 minutes. Index interpolation would give 20,
	// time interpolation gives 10 + (40-10)*(10/40) = 17.5
	readings := []wind.Reading{
		{Sensor: "A", Time: base, SpeedMPH: 10},
		{Sensor: "A", Time: base.Add(10 * time.Minute), SpeedMPH: 999, IsOutlier: true},
		{Sensor: "A", Time: base.Add(40 * time.Minute), SpeedMPH: 40},
	}

	res, err := ResolveOutliers(readings, DefaultConfig())
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}
	if got := res.Readings[1].SpeedMPH; math.Abs(got-17.5) > 1e-9 {
		t.Errorf("expected 17.5, got %v", got)
	}
}

func TestResolveInterpolateRestoresRowPositions(t *testing.T) {
	// Rows arrive out of time order; repaired value must land on its own row
	readings := []wind.Reading{
		{Sensor: "A", Time: base.Add(20 * time.Minute), SpeedMPH: 30},
		{Sensor: "B", Time: base, SpeedMPH: 7},
		{Sensor: "A", Time: base.Add(10 * time.Minute), SpeedMPH: 500, IsOutlier: true},
		{Sensor: "A", Time: base, SpeedMPH: 10},
	}

	res, err := ResolveOutliers(readings, DefaultConfig())
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}

	expected := []float64{30, 7, 20, 10}
	for i, r := range res.Readings {
		if r.SpeedMPH != expected[i] {
			t.Errorf("row %d: expected %.1f, got %.1f", i, expected[i], r.SpeedMPH)
		}
	}
}

func TestResolveInterpolateEdges(t *testing.T) {
	readings := flagged(series("A", 80, 1, 2, 3, 90, 95), 0, 4, 5)

	res, err := ResolveOutliers(readings, DefaultConfig())
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}

	// Trailing values carry the last valid value
	if res.Readings[4].SpeedMPH != 3 || res.Readings[5].SpeedMPH != 3 {
		t.Errorf("expected trailing values filled with 3, got %.1f, %.1f",
			res.Readings[4].SpeedMPH, res.Readings[5].SpeedMPH)
	}

	// Leading value cannot be interpolated
	if res.Readings[0].Repaired || !res.Readings[0].IsOutlier || !math.IsNaN(res.Readings[0].SpeedMPH) {
		t.Errorf("leading value should be left unresolved: %+v", res.Readings[0])
	}
	if len(res.Problems) != 1 || !errors.Is(res.Problems[0], ErrUnresolvedEdge) || res.Problems[0].Count != 1 {
		t.Errorf("expected one unresolved edge problem, got %v", res.Problems)
	}
	if res.Repaired != 2 {
		t.Errorf("expected 2 repaired values, got %d", res.Repaired)
	}
}

func TestResolveInvalidConfiguration(t *testing.T) {
	readings := flagged(series("A", 1, 2, 3), 1)

	cfg := DefaultConfig()
	cfg.Mode = "clip"
	if _, err := ResolveOutliers(readings, cfg); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for unknown mode, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Replacement = "spline"
	if _, err := ResolveOutliers(readings, cfg); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for unknown replacement, got %v", err)
	}
}

func TestResolveNoValidValuesBlanksFlaggedRows(t *testing.T) {
	readings := flagged(series("A", 70, 80), 0, 1)

	res, err := ResolveOutliers(readings, DefaultConfig())
	if err != nil {
		t.Fatalf("ResolveOutliers failed: %v", err)
	}
	if len(res.Problems) != 1 || !errors.Is(res.Problems[0], ErrUndefinedStatistic) || res.Problems[0].Count != 2 {
		t.Fatalf("expected one undefined statistic problem for 2 rows, got %v", res.Problems)
	}
	for i, r := range res.Readings {
		if !math.IsNaN(r.SpeedMPH) || r.Repaired {
			t.Errorf("row %d: expected NaN and unrepaired, got %+v", i, r)
		}
	}
}
