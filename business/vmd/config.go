package vmd

import "storeOptimizer/domain"

type Config struct {
	Weights map[domain.VMDRule]float64

	// products at or above this quantile of margin or revenue count as high value
	HighValueQuantile float64

	MaxZonesPerCategory int
	// categories with fewer products are not checked for fragmentation
	MinProductsForFragmentation int

	// farthest allowed zone distance per proximity tier, in floor-plan units
	MaxDistance map[domain.ProximityTier]float64
}

var ruleOrder = []domain.VMDRule{
	domain.RuleGoldenZoneMargin,
	domain.RuleAffinityProximity,
	domain.RuleDeadZonePriority,
	domain.RuleBottleneckBrowsing,
	domain.RuleCategoryFragmentation,
}

func DefaultConfig() Config {
	return Config{
		Weights: map[domain.VMDRule]float64{
			domain.RuleGoldenZoneMargin:      0.25,
			domain.RuleAffinityProximity:     0.25,
			domain.RuleDeadZonePriority:      0.20,
			domain.RuleBottleneckBrowsing:    0.15,
			domain.RuleCategoryFragmentation: 0.15,
		},
		HighValueQuantile:           0.75,
		MaxZonesPerCategory:         2,
		MinProductsForFragmentation: 3,
		MaxDistance: map[domain.ProximityTier]float64{
			domain.ProximityAdjacent: 5,
			domain.ProximitySameZone: 10,
			domain.ProximityNearby:   20,
		},
	}
}
