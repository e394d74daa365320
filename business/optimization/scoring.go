package optimization

import (
	"math"
	"sort"

	"storeOptimizer/business/impact"
	"storeOptimizer/business/vmd"
	"storeOptimizer/domain"
)

const (
	// visibility change of a product moving into or out of an eye-level slot
	eyeLevelEffect = 0.15
	// effect of a browsing display leaving a bottleneck, scaled by the bottleneck's severity
	bottleneckReliefEffect = 0.3
)

// score predicts each candidate's impact, projects its VMD score and nudges priority by
// the VMD change. With prioritize_revenue set, candidates without revenue upside are dropped.
func (s *Service) score(
	in pipelineInputs,
	cands []domain.OptimizationCandidate,
	predictor *impact.Predictor,
	engine *vmd.Engine,
	vmdIn vmd.Inputs,
	current domain.VMDReport,
	params domain.OptimizationParameters,
	cfg Config,
) ([]domain.OptimizationCandidate, int) {
	out := make([]domain.OptimizationCandidate, 0, len(cands))
	dropped := 0
	for _, c := range cands {
		pred := predictor.Predict(impact.Input{
			Candidate:             c,
			Origin:                in.zonePerf[c.Current.ZoneID],
			Destination:           in.zonePerf[c.Suggested.ZoneID],
			OriginFlow:            in.flow.ZoneStats[c.Current.ZoneID],
			DestinationFlow:       in.flow.ZoneStats[c.Suggested.ZoneID],
			FlowSufficient:        in.flow.DataQuality.Sufficient,
			Environment:           in.env,
			AssociationEffect:     associationEffect(in.layout, in.assoc, c),
			AssociationSufficient: in.assoc.DataQuality.Sufficient,
			PlacementEffect:       placementEffect(in.layout, in.flow, c),
		})

		c.VMDScoreBefore = current.Score
		c.VMDScoreAfter = engine.Evaluate(in.layout.Apply(c), vmdIn).Score
		switch delta := c.VMDScoreDelta(); {
		case delta >= cfg.VMDPriorityDelta:
			pred.Priority = pred.Priority.Shift(1)
		case delta <= -cfg.VMDPriorityDelta:
			pred.Priority = pred.Priority.Shift(-1)
		}
		c.Prediction = pred

		if params.PrioritizeRevenue && pred.RevenueDeltaPct <= 0 {
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}

// rank orders candidates best first, keeps one candidate per entity and per target
// slot, then applies the cap. It returns the kept list, how many were superseded and
// how many were cut by the cap.
func rank(cands []domain.OptimizationCandidate, maxChanges int) ([]domain.OptimizationCandidate, int, int) {
	sorted := append([]domain.OptimizationCandidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Prediction, sorted[j].Prediction
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if ra, rb := math.Abs(a.RevenueDeltaPct), math.Abs(b.RevenueDeltaPct); ra != rb {
			return ra > rb
		}
		return sorted[i].ID < sorted[j].ID
	})

	type entityKey struct {
		kind domain.EntityType
		id   uint64
	}
	seen := make(map[entityKey]bool)
	slots := make(map[uint64]bool)
	kept := make([]domain.OptimizationCandidate, 0, len(sorted))
	superseded := 0
	for _, c := range sorted {
		k := entityKey{c.EntityType, c.EntityID}
		if seen[k] {
			superseded++
			continue
		}
		if c.Suggested.SlotID != nil && slots[*c.Suggested.SlotID] {
			superseded++
			continue
		}
		seen[k] = true
		if c.Suggested.SlotID != nil {
			slots[*c.Suggested.SlotID] = true
		}
		kept = append(kept, c)
	}

	truncated := 0
	if maxChanges >= 0 && len(kept) > maxChanges {
		truncated = len(kept) - maxChanges
		kept = kept[:maxChanges]
	}
	return kept, superseded, truncated
}

// associationEffect sums (mean lift - 1) over the moved products' affinity partners,
// signed by whether the move gains (+1) or loses (-1) the partner category's company.
// Furniture averages over the products it carries.
func associationEffect(layout domain.Layout, assoc domain.AssociationAnalysis, c domain.OptimizationCandidate) float64 {
	if len(assoc.CategoryAffinities) == 0 || c.Current.ZoneID == c.Suggested.ZoneID {
		return 0
	}

	var moving []domain.Product
	switch c.EntityType {
	case domain.EntityProduct:
		if p, ok := layout.ProductByID(c.EntityID); ok {
			moving = append(moving, p)
		}
	case domain.EntityFurniture:
		for _, p := range layout.Products {
			if p.FurnitureID == c.EntityID {
				moving = append(moving, p)
			}
		}
	}
	if len(moving) == 0 {
		return 0
	}

	isMoving := make(map[uint64]bool, len(moving))
	for _, p := range moving {
		isMoving[p.ID] = true
	}
	present := func(zoneID uint64, category string) float64 {
		for _, p := range layout.Products {
			if !isMoving[p.ID] && p.ZoneID == zoneID && p.Category == category {
				return 1
			}
		}
		return 0
	}

	var total float64
	for _, p := range moving {
		for _, a := range assoc.CategoryAffinities {
			var partner string
			switch p.Category {
			case a.CategoryA:
				partner = a.CategoryB
			case a.CategoryB:
				partner = a.CategoryA
			default:
				continue
			}
			total += (a.MeanLift - 1) * (present(c.Suggested.ZoneID, partner) - present(c.Current.ZoneID, partner))
		}
	}
	return total / float64(len(moving))
}

func placementEffect(layout domain.Layout, flow domain.FlowAnalysis, c domain.OptimizationCandidate) float64 {
	switch c.EntityType {
	case domain.EntityProduct:
		effect := 0.0
		if isEyeSlot(layout, c.Suggested.SlotID) {
			effect += eyeLevelEffect
		}
		if isEyeSlot(layout, c.Current.SlotID) {
			effect -= eyeLevelEffect
		}
		return effect
	case domain.EntityFurniture:
		f, ok := layout.FurnitureByID(c.EntityID)
		if !ok || !f.IsBrowsingDisplay() {
			return 0
		}
		effect := 0.0
		if b, ok := flow.BottleneckFor(c.Current.ZoneID); ok {
			effect += bottleneckReliefEffect * b.Severity.Weight()
		}
		if b, ok := flow.BottleneckFor(c.Suggested.ZoneID); ok {
			effect -= bottleneckReliefEffect * b.Severity.Weight()
		}
		return effect
	}
	return 0
}

func isEyeSlot(layout domain.Layout, slotID *uint64) bool {
	if slotID == nil {
		return false
	}
	s, ok := layout.SlotByID(*slotID)
	return ok && s.IsGolden()
}
