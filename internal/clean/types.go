package clean

import (
	"fmt"
	"math"

	"github.com/planbiir/windclean/internal/wind"
)

// Method selects the statistical outlier test
type Method string

const (
	MethodIQR    Method = "iqr"
	MethodZScore Method = "zscore"
)

// Mode selects what happens to flagged readings
type Mode string

const (
	ModeRemove  Mode = "remove"
	ModeReplace Mode = "replace"
)

// Replacement selects how flagged values are repaired in replace mode
type Replacement string

const (
	ReplaceMedian      Replacement = "median"
	ReplaceMean        Replacement = "mean"
	ReplaceInterpolate Replacement = "interpolate"
)

// Column names the reading field the cleaner works on
type Column string

const (
	ColumnSpeed    Column = "speed"
	ColumnSpeedMPH Column = "speed_mph"
	ColumnGust     Column = "gust"
	ColumnGustMPH  Column = "gust_mph"
)

// Config holds outlier detection and resolution parameters
type Config struct {
	Column Column

	// Detection
	Method    Method
	Threshold float64  // IQR multiplier or z-score limit
	AbsMax    *float64 // flag anything above this regardless of method

	// Resolution
	Mode        Mode
	Replacement Replacement
}

// DefaultConfig returns the settings used for the deployment season runs
func DefaultConfig() Config {
	return Config{
		Column:      ColumnSpeedMPH,
		Method:      MethodIQR,
		Threshold:   1.5, // Tukey fences
		Mode:        ModeReplace,
		Replacement: ReplaceInterpolate,
	}
}

func (c Config) validateDetection() error {
	switch c.Method {
	case MethodIQR, MethodZScore:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfiguration, c.Method)
	}
	if !(c.Threshold > 0) {
		return fmt.Errorf("%w: threshold must be > 0, got %v", ErrInvalidConfiguration, c.Threshold)
	}
	if c.AbsMax != nil && math.IsNaN(*c.AbsMax) {
		return fmt.Errorf("%w: absolute maximum is NaN", ErrInvalidConfiguration)
	}
	return c.validateColumn()
}

func (c Config) validateResolution() error {
	switch c.Mode {
	case ModeRemove:
		return nil
	case ModeReplace:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, c.Mode)
	}
	switch c.Replacement {
	case ReplaceMedian, ReplaceMean, ReplaceInterpolate:
	default:
		return fmt.Errorf("%w: unknown replacement method %q", ErrInvalidConfiguration, c.Replacement)
	}
	return c.validateColumn()
}

func (c Config) validateColumn() error {
	switch c.Column {
	case ColumnSpeed, ColumnSpeedMPH, ColumnGust, ColumnGustMPH:
		return nil
	}
	return fmt.Errorf("%w: unknown column %q", ErrInvalidConfiguration, c.Column)
}

// value reads the configured column
func (c Config) value(r wind.Reading) float64 {
	switch c.Column {
	case ColumnSpeed:
		return r.Speed
	case ColumnGust:
		return r.Gust
	case ColumnGustMPH:
		return r.GustMPH
	default:
		return r.SpeedMPH
	}
}

// setValue writes the configured column
func (c Config) setValue(r *wind.Reading, v float64) {
	switch c.Column {
	case ColumnSpeed:
		r.Speed = v
	case ColumnGust:
		r.Gust = v
	case ColumnGustMPH:
		r.GustMPH = v
	default:
		r.SpeedMPH = v
	}
}

// SensorCount is the number of flagged readings for one sensor
type SensorCount struct {
	Sensor   string `json:"sensor"`
	Total    int    `json:"total"`
	Outliers int    `json:"outliers"`
}

// Resolution is the outcome of ResolveOutliers
type Resolution struct {
	Readings []wind.Reading
	Problems []SensorProblem

	Removed  int // rows dropped in remove mode
	Repaired int // values replaced in replace mode
}
