package association

import (
	"time"

	"storeOptimizer/domain"
)

type Config struct {
	WindowDays int
	// end of the trailing window; zero means now
	AsOf time.Time

	MinSupport      float64
	MinPairCount    int
	MinTransactions int
	MaxRules        int

	// lift tier cutoffs
	VeryStrongLift float64
	StrongLift     float64
	WeakLift       float64

	// affinity cutoffs for placement advice
	CoLocateAffinity float64
	SeparateAffinity float64
}

const (
	defaultWindowDays       = 90
	defaultMinSupport       = 0.01
	defaultMinPairCount     = 2
	defaultMinTransactions  = 30
	defaultMaxRules         = 200
	defaultVeryStrongLift   = 2.5
	defaultStrongLift       = 1.5
	defaultWeakLift         = 1.0
	defaultCoLocateAffinity = 0.6
	defaultSeparateAffinity = 0.45
)

func DefaultConfig() Config {
	return Config{
		WindowDays:       defaultWindowDays,
		MinSupport:       defaultMinSupport,
		MinPairCount:     defaultMinPairCount,
		MinTransactions:  defaultMinTransactions,
		MaxRules:         defaultMaxRules,
		VeryStrongLift:   defaultVeryStrongLift,
		StrongLift:       defaultStrongLift,
		WeakLift:         defaultWeakLift,
		CoLocateAffinity: defaultCoLocateAffinity,
		SeparateAffinity: defaultSeparateAffinity,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowDays <= 0 {
		c.WindowDays = d.WindowDays
	}
	if c.MinSupport <= 0 {
		c.MinSupport = d.MinSupport
	}
	if c.MinPairCount <= 0 {
		c.MinPairCount = d.MinPairCount
	}
	if c.MinTransactions <= 0 {
		c.MinTransactions = d.MinTransactions
	}
	if c.MaxRules <= 0 {
		c.MaxRules = d.MaxRules
	}
	if c.VeryStrongLift <= 0 {
		c.VeryStrongLift = d.VeryStrongLift
	}
	if c.StrongLift <= 0 {
		c.StrongLift = d.StrongLift
	}
	if c.WeakLift <= 0 {
		c.WeakLift = d.WeakLift
	}
	if c.CoLocateAffinity <= 0 {
		c.CoLocateAffinity = d.CoLocateAffinity
	}
	if c.SeparateAffinity <= 0 {
		c.SeparateAffinity = d.SeparateAffinity
	}
	return c
}

// Strength tiers a lift value.
func (c Config) Strength(lift float64) domain.RuleStrength {
	switch {
	case lift >= c.VeryStrongLift:
		return domain.StrengthVeryStrong
	case lift >= c.StrongLift:
		return domain.StrengthStrong
	case lift >= c.WeakLift:
		return domain.StrengthWeak
	default:
		return domain.StrengthNegative
	}
}

func (c Config) Advice(affinity float64) domain.PlacementAdvice {
	switch {
	case affinity >= c.CoLocateAffinity:
		return domain.AdviceCoLocate
	case affinity < c.SeparateAffinity:
		return domain.AdviceKeepSeparate
	default:
		return domain.AdviceNeutral
	}
}

// Proximity maps affinity to how close the two categories should sit.
func Proximity(affinity float64) domain.ProximityTier {
	switch {
	case affinity >= 0.75:
		return domain.ProximityAdjacent
	case affinity >= 0.6:
		return domain.ProximitySameZone
	case affinity >= 0.5:
		return domain.ProximityNearby
	default:
		return domain.ProximityDistant
	}
}

// Affinity maps a lift in (0,inf) onto (0,1); independence (lift 1) is 0.5.
func Affinity(lift float64) float64 {
	if lift <= 0 {
		return 0
	}
	return lift / (lift + 1)
}
