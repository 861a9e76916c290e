package wind

import (
	"math"
)

// MPHPerMS converts metres per second to miles per hour
const MPHPerMS = 2.23694

// DefaultDirectionCategories is the 16-point compass rose. Due north is 360.
var DefaultDirectionCategories = []float64{
	22.5, 45.0, 67.5, 90.0, 112.5, 135.0, 157.5, 180.0,
	202.5, 225.0, 247.5, 270.0, 292.5, 315.0, 337.5, 360.0,
}

// ToMPH converts m/s to mph rounded to one decimal
func ToMPH(ms float64) float64 {
	return math.Round(ms*MPHPerMS*10) / 10
}

// ConvertUnits fills SpeedMPH and GustMPH from the native values
func ConvertUnits(r *Reading) {
	r.SpeedMPH = ToMPH(r.Speed)
	r.GustMPH = ToMPH(r.Gust)
}

// DirectionCategory returns the category nearest to direction by circular
// distance, so 355° and 5° both land on 360. The first category wins ties.
// A missing direction has no category.
func DirectionCategory(direction float64, categories []float64) float64 {
	if math.IsNaN(direction) {
		return math.NaN()
	}
	if len(categories) == 0 {
		categories = DefaultDirectionCategories
	}

	best := categories[0]
	bestDist := math.Inf(1)
	for _, c := range categories {
		d := circularDistance(c, direction)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// circularDistance is the smallest angle between a and b, in [0, 180]
func circularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
