package wind

import (
	"math"
	"testing"
	"time"
)

func TestDirectionCategoryWrapsAroundNorth(t *testing.T) {
	tests := []struct {
		direction float64
		expected  float64
	}{
		{0, 360},
		{5, 360},
		{355, 360},
		{360, 360},
		{20, 22.5},
		{90, 90},
		{100, 90},
		{105, 112.5},
		{348, 337.5},
		{11.25, 22.5}, // tie between 360 and 22.5, first category wins
	}

	for _, tt := range tests {
		got := DirectionCategory(tt.direction, nil)
		if got != tt.expected {
			t.Errorf("DirectionCategory(%.2f): expected %.1f, got %.1f", tt.direction, tt.expected, got)
		}
	}
}

func TestDirectionCategoryMissing(t *testing.T) {
	if got := DirectionCategory(math.NaN(), nil); !math.IsNaN(got) {
		t.Errorf("expected NaN category for missing direction, got %.1f", got)
	}
}

func TestToMPH(t *testing.T) {
	if got := ToMPH(10); got != 22.4 {
		t.Errorf("expected 22.4 mph, got %.2f", got)
	}
	if got := ToMPH(0); got != 0 {
		t.Errorf("expected 0 mph, got %.2f", got)
	}

	r := Reading{Speed: 1, Gust: 2}
	ConvertUnits(&r)
	if r.SpeedMPH != 2.2 || r.GustMPH != 4.5 {
		t.Errorf("unexpected conversion: speed=%.1f gust=%.1f", r.SpeedMPH, r.GustMPH)
	}
}

func TestGroupBySensorOrdersBySensorID(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := []Reading{
		{Sensor: "B", Time: base},
		{Sensor: "A", Time: base.Add(time.Minute)},
		{Sensor: "B", Time: base.Add(2 * time.Minute)},
		{Sensor: "A", Time: base},
	}

	groups := GroupBySensor(readings)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Sensor != "A" || groups[1].Sensor != "B" {
		t.Fatalf("expected groups A,B, got %s,%s", groups[0].Sensor, groups[1].Sensor)
	}
	if len(groups[0].Indices) != 2 || groups[0].Indices[0] != 1 || groups[0].Indices[1] != 3 {
		t.Errorf("unexpected indices for A: %v", groups[0].Indices)
	}

	sorted := groups[0].SortByTime(readings)
	if sorted[0] != 3 || sorted[1] != 1 {
		t.Errorf("expected time order [3 1], got %v", sorted)
	}
	// SortByTime must not reorder the group itself
	if groups[0].Indices[0] != 1 {
		t.Errorf("SortByTime mutated group indices: %v", groups[0].Indices)
	}
}

func TestDeploymentContainsIsInclusive(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	d := Deployment{ID: "1", Sensor: "A", Start: start, End: end}

	if !d.Contains(start) || !d.Contains(end) {
		t.Errorf("expected bounds to be inclusive")
	}
	if d.Contains(start.Add(-time.Second)) || d.Contains(end.Add(time.Second)) {
		t.Errorf("expected times outside window to be excluded")
	}

	if (Deployment{Start: start}).Contains(start) {
		t.Errorf("deployment without end time should never match")
	}
}
