package vmd

import (
	"fmt"
	"math"
	"sort"

	"storeOptimizer/domain"
)

func (e *Engine) goldenZoneMargin(layout domain.Layout, highValue map[uint64]bool) ruleResult {
	var r ruleResult
	hasGolden := false
	for _, s := range layout.Slots {
		if s.IsGolden() {
			hasGolden = true
			break
		}
	}
	if !hasGolden {
		return r
	}

	for _, p := range layout.Products {
		if !highValue[p.ID] || p.SlotID == nil {
			continue
		}
		slot, ok := layout.SlotByID(*p.SlotID)
		if !ok {
			continue
		}
		r.checked++
		if slot.IsGolden() {
			continue
		}
		r.violations = append(r.violations, domain.VMDViolation{
			Rule:        domain.RuleGoldenZoneMargin,
			Severity:    domain.SeverityMedium,
			ZoneID:      p.ZoneID,
			FurnitureID: p.FurnitureID,
			ProductID:   p.ID,
			SlotID:      slot.ID,
			Message:     fmt.Sprintf("high-value product %s sits on a %s-level slot instead of eye level", p.SKU, slot.Level),
		})
	}
	return r
}

func (e *Engine) affinityProximity(layout domain.Layout, assoc domain.AssociationAnalysis) ruleResult {
	var r ruleResult
	zonesByCategory := categoryZones(layout.Products)

	for _, a := range assoc.CategoryAffinities {
		za, zb := zonesByCategory[a.CategoryA], zonesByCategory[a.CategoryB]
		if len(za) == 0 || len(zb) == 0 {
			continue
		}

		switch a.Advice {
		case domain.AdviceCoLocate:
			maxD, ok := e.cfg.MaxDistance[a.Proximity]
			if !ok || maxD <= 0 {
				continue
			}
			r.checked++
			d, from := minZoneDistance(layout, za, zb)
			if d <= maxD {
				continue
			}
			r.violations = append(r.violations, domain.VMDViolation{
				Rule:     domain.RuleAffinityProximity,
				Severity: distanceSeverity(d / maxD),
				ZoneID:   from,
				Message: fmt.Sprintf("%s and %s sell together (affinity %.2f) but sit %.1f apart, want %s (<= %.1f)",
					a.CategoryA, a.CategoryB, a.Affinity, d, a.Proximity, maxD),
			})

		case domain.AdviceKeepSeparate:
			r.checked++
			shared, ok := sharedZone(za, zb)
			if !ok {
				continue
			}
			r.violations = append(r.violations, domain.VMDViolation{
				Rule:     domain.RuleAffinityProximity,
				Severity: domain.SeverityLow,
				ZoneID:   shared,
				Message:  fmt.Sprintf("%s and %s rarely sell together but share zone %d", a.CategoryA, a.CategoryB, shared),
			})
		}
	}
	return r
}

func (e *Engine) deadZonePriority(layout domain.Layout, flow domain.FlowAnalysis, highValue map[uint64]bool) ruleResult {
	var r ruleResult
	for _, p := range layout.Products {
		if !highValue[p.ID] || p.ZoneID == 0 {
			continue
		}
		r.checked++
		if !flow.IsDeadZone(p.ZoneID) {
			continue
		}
		r.violations = append(r.violations, domain.VMDViolation{
			Rule:        domain.RuleDeadZonePriority,
			Severity:    domain.SeverityHigh,
			ZoneID:      p.ZoneID,
			FurnitureID: p.FurnitureID,
			ProductID:   p.ID,
			Message:     fmt.Sprintf("high-value product %s is placed in dead zone %d", p.SKU, p.ZoneID),
		})
	}
	return r
}

func (e *Engine) bottleneckBrowsing(layout domain.Layout, flow domain.FlowAnalysis) ruleResult {
	var r ruleResult
	for _, f := range layout.Furniture {
		if !f.IsBrowsingDisplay() {
			continue
		}
		r.checked++
		b, ok := flow.BottleneckFor(f.ZoneID)
		if !ok {
			continue
		}
		r.violations = append(r.violations, domain.VMDViolation{
			Rule:        domain.RuleBottleneckBrowsing,
			Severity:    b.Severity,
			ZoneID:      f.ZoneID,
			FurnitureID: f.ID,
			Message:     fmt.Sprintf("browsing %s %d stands in bottleneck zone %d", f.Type, f.ID, f.ZoneID),
		})
	}
	return r
}

func (e *Engine) categoryFragmentation(layout domain.Layout) ruleResult {
	var r ruleResult
	counts := make(map[string]int)
	for _, p := range layout.Products {
		if p.Category != "" && p.ZoneID != 0 {
			counts[p.Category]++
		}
	}
	zonesByCategory := categoryZones(layout.Products)

	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	for _, c := range cats {
		if counts[c] < e.cfg.MinProductsForFragmentation {
			continue
		}
		r.checked++
		zones := zonesByCategory[c]
		excess := len(zones) - e.cfg.MaxZonesPerCategory
		if excess <= 0 {
			continue
		}
		sev := domain.SeverityLow
		switch {
		case excess >= 3:
			sev = domain.SeverityHigh
		case excess == 2:
			sev = domain.SeverityMedium
		}
		r.violations = append(r.violations, domain.VMDViolation{
			Rule:     domain.RuleCategoryFragmentation,
			Severity: sev,
			ZoneID:   zones[0],
			Message:  fmt.Sprintf("category %s is spread over %d zones", c, len(zones)),
		})
	}
	return r
}

// categoryZones returns the sorted distinct zones hosting each category.
func categoryZones(products []domain.Product) map[string][]uint64 {
	seen := make(map[string]map[uint64]bool)
	for _, p := range products {
		if p.Category == "" || p.ZoneID == 0 {
			continue
		}
		if seen[p.Category] == nil {
			seen[p.Category] = make(map[uint64]bool)
		}
		seen[p.Category][p.ZoneID] = true
	}
	out := make(map[string][]uint64, len(seen))
	for c, set := range seen {
		ids := make([]uint64, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[c] = ids
	}
	return out
}

func minZoneDistance(layout domain.Layout, a, b []uint64) (float64, uint64) {
	best := math.Inf(1)
	var from uint64
	for _, za := range a {
		for _, zb := range b {
			if d := layout.ZoneDistance(za, zb); d < best {
				best, from = d, za
			}
		}
	}
	return best, from
}

func sharedZone(a, b []uint64) (uint64, bool) {
	for _, za := range a {
		for _, zb := range b {
			if za == zb {
				return za, true
			}
		}
	}
	return 0, false
}

func distanceSeverity(ratio float64) domain.Severity {
	switch {
	case ratio < 1.5:
		return domain.SeverityLow
	case ratio < 2:
		return domain.SeverityMedium
	case ratio < 3:
		return domain.SeverityHigh
	default:
		return domain.SeverityCritical
	}
}
