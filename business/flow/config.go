package flow

import "time"

type Config struct {
	WindowDays int
	// end of the trailing window; zero means now
	AsOf time.Time

	// a zone is a bottleneck when its congestion is this many times the store mean
	// and its dwell coefficient of variation exceeds DwellCVThreshold
	BottleneckThreshold float64
	DwellCVThreshold    float64

	// a zone is dead when its visits fall below this fraction of the mean per zone
	DeadZoneFraction float64

	MaxPathLength int
	TopKPaths     int

	// below this many transitions the analysis is computed but flagged as sparse
	MinTransitions int
}

const (
	defaultWindowDays          = 30
	defaultBottleneckThreshold = 1.5
	defaultDwellCVThreshold    = 0.5
	defaultDeadZoneFraction    = 0.2
	defaultMaxPathLength       = 8
	defaultTopKPaths           = 5
	defaultMinTransitions      = 50
)

func DefaultConfig() Config {
	return Config{
		WindowDays:          defaultWindowDays,
		BottleneckThreshold: defaultBottleneckThreshold,
		DwellCVThreshold:    defaultDwellCVThreshold,
		DeadZoneFraction:    defaultDeadZoneFraction,
		MaxPathLength:       defaultMaxPathLength,
		TopKPaths:           defaultTopKPaths,
		MinTransitions:      defaultMinTransitions,
	}
}

// withDefaults fills any non-positive field from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowDays <= 0 {
		c.WindowDays = d.WindowDays
	}
	if c.BottleneckThreshold <= 0 {
		c.BottleneckThreshold = d.BottleneckThreshold
	}
	if c.DwellCVThreshold <= 0 {
		c.DwellCVThreshold = d.DwellCVThreshold
	}
	if c.DeadZoneFraction <= 0 {
		c.DeadZoneFraction = d.DeadZoneFraction
	}
	if c.MaxPathLength <= 1 {
		c.MaxPathLength = d.MaxPathLength
	}
	if c.TopKPaths <= 0 {
		c.TopKPaths = d.TopKPaths
	}
	if c.MinTransitions <= 0 {
		c.MinTransitions = d.MinTransitions
	}
	return c
}
