package main

import (
	"storeOptimizer/business/optimization"
	"storeOptimizer/pkg/config"
)

// optimizerConfig lays the process-wide env tuning over the built-in defaults.
// Per-store rows in store_tuning are applied later, per request.
func optimizerConfig(o config.OptimizerConfig) optimization.Config {
	cfg := optimization.DefaultConfig()

	if o.FlowWindowDays > 0 {
		cfg.Flow.WindowDays = o.FlowWindowDays
	}
	if o.BottleneckThreshold > 0 {
		cfg.Flow.BottleneckThreshold = o.BottleneckThreshold
	}
	if o.DwellCVThreshold > 0 {
		cfg.Flow.DwellCVThreshold = o.DwellCVThreshold
	}
	if o.DeadZoneFraction > 0 {
		cfg.Flow.DeadZoneFraction = o.DeadZoneFraction
	}
	if o.MaxPathLength > 1 {
		cfg.Flow.MaxPathLength = o.MaxPathLength
	}
	if o.TopKPaths > 0 {
		cfg.Flow.TopKPaths = o.TopKPaths
	}
	if o.MinTransitions > 0 {
		cfg.Flow.MinTransitions = o.MinTransitions
	}

	if o.AssociationWindowDays > 0 {
		cfg.Association.WindowDays = o.AssociationWindowDays
	}
	if o.MinSupport > 0 {
		cfg.Association.MinSupport = o.MinSupport
	}
	if o.MinTransactions > 0 {
		cfg.Association.MinTransactions = o.MinTransactions
	}
	if o.VeryStrongLift > 0 {
		cfg.Association.VeryStrongLift = o.VeryStrongLift
	}
	if o.StrongLift > 0 {
		cfg.Association.StrongLift = o.StrongLift
	}

	if o.MaxRevenueDeltaPct > 0 {
		cfg.Impact.MaxRevenueDeltaPct = o.MaxRevenueDeltaPct
	}
	if o.MaxConversionDeltaPct > 0 {
		cfg.Impact.MaxConversionDeltaPct = o.MaxConversionDeltaPct
	}

	if o.JoinTimeout > 0 {
		cfg.JoinTimeout = o.JoinTimeout
	}
	if o.DefaultMaxChanges > 0 {
		cfg.DefaultMaxChanges = o.DefaultMaxChanges
	}
	cfg.NarrativeEnabled = o.NarrativeEnabled

	return cfg
}
