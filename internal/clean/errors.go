package clean

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned for unknown methods, modes or
	// thresholds. Nothing is processed when it is returned.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUndefinedStatistic means a sensor has no valid readings to compute a
	// replacement from.
	ErrUndefinedStatistic = errors.New("undefined replacement statistic")

	// ErrUnresolvedEdge means flagged readings precede the first valid
	// reading of a sensor and cannot be interpolated.
	ErrUnresolvedEdge = errors.New("flagged values before first valid reading")
)

// SensorProblem is a per-sensor data quality condition. The affected rows are
// left flagged and unrepaired with a NaN value; other sensors are processed normally.
type SensorProblem struct {
	Sensor string
	Count  int // affected rows
	Err    error
}

func (p SensorProblem) Error() string {
	return fmt.Sprintf("sensor %s: %d rows: %v", p.Sensor, p.Count, p.Err)
}

func (p SensorProblem) Unwrap() error {
	return p.Err
}
