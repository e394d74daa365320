package optimization

import (
	"context"

	"storeOptimizer/pkg/logger"
)

// loadConfig overlays the store's tuning row on the default config. Any zero column
// keeps the default, and a missing or unreadable row means defaults only.
func (s *Service) loadConfig(ctx context.Context, storeID uint64) Config {
	cfg := s.defaultCfg
	if s.tuningRepo == nil {
		return cfg
	}

	t, ok, err := s.tuningRepo.GetTuning(ctx, storeID)
	if err != nil {
		logger.Warn("store tuning unavailable, using defaults", "store_id", storeID, "error", err)
		return cfg
	}
	if !ok {
		return cfg
	}

	// flow
	if t.FlowWindowDays > 0 {
		cfg.Flow.WindowDays = t.FlowWindowDays
	}
	if t.BottleneckThreshold > 0 {
		cfg.Flow.BottleneckThreshold = t.BottleneckThreshold
	}
	if t.DwellCVThreshold > 0 {
		cfg.Flow.DwellCVThreshold = t.DwellCVThreshold
	}
	if t.DeadZoneFraction > 0 {
		cfg.Flow.DeadZoneFraction = t.DeadZoneFraction
	}

	// association
	if t.AssociationWindowDays > 0 {
		cfg.Association.WindowDays = t.AssociationWindowDays
	}
	if t.MinSupport > 0 {
		cfg.Association.MinSupport = t.MinSupport
	}
	if t.MinTransactions > 0 {
		cfg.Association.MinTransactions = t.MinTransactions
	}

	// prediction bounds
	if t.MaxRevenueDeltaPct > 0 {
		cfg.Impact.MaxRevenueDeltaPct = t.MaxRevenueDeltaPct
	}
	if t.MaxConversionDeltaPct > 0 {
		cfg.Impact.MaxConversionDeltaPct = t.MaxConversionDeltaPct
	}

	if t.DefaultMaxChanges > 0 {
		cfg.DefaultMaxChanges = t.DefaultMaxChanges
	}

	return cfg
}
