package timefix

import (
	"time"

	"github.com/planbiir/windclean/internal/wind"
)

// ShiftDST moves every timestamp by amount: forward adds, backward
// subtracts. It is a blunt correction for loggers left on the wrong clock and
// does not look for DST boundaries. A zero amount means DefaultDSTShift.
func ShiftDST(readings []wind.Reading, forward bool, amount time.Duration) []wind.Reading {
	if amount == 0 {
		amount = DefaultDSTShift
	}
	if !forward {
		amount = -amount
	}

	shifted := wind.Clone(readings)
	for i := range shifted {
		shifted[i].Time = shifted[i].Time.Add(amount)
	}
	return shifted
}
