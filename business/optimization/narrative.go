package optimization

import (
	"context"
	"fmt"
	"strings"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

// applyTemplates writes the deterministic rationale for every candidate.
func applyTemplates(layout domain.Layout, cands []domain.OptimizationCandidate) {
	for i := range cands {
		cands[i].Rationale = templateRationale(layout, cands[i])
	}
}

func templateRationale(layout domain.Layout, c domain.OptimizationCandidate) string {
	from, to := zoneName(layout, c.Current.ZoneID), zoneName(layout, c.Suggested.ZoneID)
	var what string
	switch c.EntityType {
	case domain.EntityProduct:
		if p, ok := layout.ProductByID(c.EntityID); ok {
			what = fmt.Sprintf("product %s (%s)", p.Name, p.SKU)
		} else {
			what = fmt.Sprintf("product %d", c.EntityID)
		}
	default:
		if f, ok := layout.FurnitureByID(c.EntityID); ok {
			what = fmt.Sprintf("%s %d", f.Type, f.ID)
		} else {
			what = fmt.Sprintf("fixture %d", c.EntityID)
		}
	}

	var reason string
	switch c.RationaleTag {
	case tagGoldenSlot:
		reason = fmt.Sprintf("Move %s to an eye-level slot in %s so a high-value item gets prime shelf space", what, to)
	case tagAffinityColocate:
		reason = fmt.Sprintf("Move %s from %s to %s, next to the category it is most often bought with", what, from, to)
	case tagHighValueFixture:
		reason = fmt.Sprintf("Move %s from low-visibility %s to %s where shoppers will see its high-value stock", what, from, to)
	case tagDeadZoneRescue:
		reason = fmt.Sprintf("Move %s out of rarely visited %s into %s", what, from, to)
	case tagConnectDeadZone:
		reason = fmt.Sprintf("Move %s from %s to the edge of %s to draw shoppers toward the dead zone", what, from, to)
	case tagRelieveBottleneck:
		reason = fmt.Sprintf("Move %s out of congested %s into %s to ease the bottleneck", what, from, to)
	default:
		reason = fmt.Sprintf("Move %s from %s to %s", what, from, to)
	}

	pred := c.Prediction
	return fmt.Sprintf("%s. Expected revenue change %+.1f%% (conversion %+.1f%%) at %.0f%% confidence.",
		reason, pred.RevenueDeltaPct, pred.ConversionDeltaPct, pred.Confidence*100)
}

func zoneName(layout domain.Layout, id uint64) string {
	if z, ok := layout.ZoneByID(id); ok && z.Name != "" {
		return z.Name
	}
	return fmt.Sprintf("zone %d", id)
}

// refine lets the narrative refiner rewrite rationales. Templates stay wherever the
// refiner returns nothing usable.
func (s *Service) refine(ctx context.Context, storeID uint64, cfg Config, cands []domain.OptimizationCandidate) domain.Outcome {
	if !cfg.NarrativeEnabled {
		return domain.Degraded("narrative refinement disabled")
	}
	if s.refiner == nil {
		return domain.Degraded("narrative refiner not configured")
	}
	if len(cands) == 0 {
		return domain.Ok()
	}

	texts, outcome := s.refiner.Refine(ctx, storeID, cands)
	if !outcome.IsOK() {
		logger.Warn("narrative refinement degraded, keeping templates",
			"trace_id", TraceIDFromContext(ctx),
			"store_id", storeID,
			"status", outcome.Status,
			"reason", outcome.Reason,
		)
	}
	for i := range cands {
		if t, ok := texts[cands[i].ID]; ok && strings.TrimSpace(t) != "" {
			cands[i].Rationale = strings.TrimSpace(t)
		}
	}
	return outcome
}
