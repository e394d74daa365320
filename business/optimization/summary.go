package optimization

import (
	"storeOptimizer/domain"
)

const (
	topPaths      = 5
	topRules      = 5
	topViolations = 10
)

func buildResultSummary(
	final []domain.OptimizationCandidate,
	counts candidateCounts,
	current domain.VMDReport,
	degraded []string,
	narrative domain.Outcome,
) domain.ResultSummary {
	sum := domain.ResultSummary{
		GeneratedCandidates: counts.generated,
		SkippedCandidates:   counts.skipped,
		FilteredCandidates:  counts.filtered,
		TruncatedCandidates: counts.truncated,
		ReturnedCandidates:  len(final),
		VMDScoreBefore:      current.Score,
		DegradedComponents:  append([]string{}, degraded...),
		Narrative:           narrative,
	}
	for _, c := range final {
		sum.TotalRevenueDeltaPct += c.Prediction.RevenueDeltaPct
		sum.AvgConfidence += c.Prediction.Confidence
	}
	if len(final) > 0 {
		sum.AvgConfidence /= float64(len(final))
	}
	return sum
}

func buildResponse(result domain.OptimizationResult, in pipelineInputs, current domain.VMDReport) domain.OptimizationResponse {
	cands := result.Candidates()
	return domain.OptimizationResponse{
		Success:                     true,
		Result:                      result,
		DataSummary:                 dataSummary(in),
		EnvironmentSummary:          environmentSummary(in.env),
		FlowAnalysisSummary:         flowSummary(in.flow),
		AssociationSummary:          associationSummary(in.assoc),
		PredictionSummary:           predictionSummary(cands),
		ConversionPredictionSummary: conversionSummary(cands),
		VMDAnalysis:                 vmdAnalysis(current),
	}
}

func dataSummary(in pipelineInputs) domain.DataSummary {
	l := in.layout
	ds := domain.DataSummary{
		ZoneCount:          len(l.Zones),
		FurnitureCount:     len(l.Furniture),
		SlotCount:          len(l.Slots),
		ProductCount:       len(l.Products),
		DegradedComponents: append([]string{}, in.degraded...),
	}
	for _, f := range l.Furniture {
		if f.Movable {
			ds.MovableFurnitureCount++
		}
	}
	for _, s := range l.Slots {
		if s.ProductID == nil {
			ds.FreeSlotCount++
		}
	}
	for _, p := range l.Products {
		if perf, ok := in.productPerf[p.ID]; ok && (perf.UnitsSold > 0 || perf.Revenue > 0) {
			ds.ProductsWithSales++
		}
	}
	return ds
}

func environmentSummary(env domain.EnvironmentSnapshot) domain.EnvironmentSummary {
	es := domain.EnvironmentSummary{
		Date:        env.Date,
		TimeBucket:  env.TimeBucket,
		IsWeekend:   env.IsWeekend,
		Events:      make([]string, 0, len(env.Events)),
		Combined:    env.Combined,
		DataQuality: env.DataQuality,
	}
	if env.Weather != nil {
		es.Weather = env.Weather.Condition
	}
	for _, e := range env.Events {
		es.Events = append(es.Events, e.Name)
	}
	return es
}

func flowSummary(f domain.FlowAnalysis) domain.FlowAnalysisSummary {
	paths := f.KeyPaths
	if len(paths) > topPaths {
		paths = paths[:topPaths]
	}
	return domain.FlowAnalysisSummary{
		Summary:         f.Summary,
		HealthScore:     f.HealthScore,
		BottleneckCount: len(f.Bottlenecks),
		DeadZoneCount:   len(f.DeadZones),
		TopPaths:        append([]domain.FlowPath{}, paths...),
		DataQuality:     f.DataQuality,
	}
}

func associationSummary(a domain.AssociationAnalysis) domain.AssociationSummary {
	as := domain.AssociationSummary{
		TotalTransactions: a.TotalTransactions,
		ItemRuleCount:     len(a.ItemRules),
		CategoryRuleCount: len(a.CategoryRules),
		TopRules:          []domain.AssociationRule{},
		DataQuality:       a.DataQuality,
	}
	for _, r := range a.ItemRules {
		if r.Positive {
			as.PositiveRuleCount++
		}
	}
	for _, r := range a.CategoryRules {
		if r.Positive {
			as.PositiveRuleCount++
		}
	}
	rules := a.ItemRules
	if len(rules) > topRules {
		rules = rules[:topRules]
	}
	as.TopRules = append(as.TopRules, rules...)
	return as
}

func predictionSummary(cands []domain.OptimizationCandidate) domain.PredictionSummary {
	ps := domain.PredictionSummary{
		CandidateCount: len(cands),
		ByPriority: map[domain.Priority]int{
			domain.PriorityLow:      0,
			domain.PriorityMedium:   0,
			domain.PriorityHigh:     0,
			domain.PriorityCritical: 0,
		},
	}
	for _, c := range cands {
		ps.TotalRevenueDeltaPct += c.Prediction.RevenueDeltaPct
		ps.AvgConfidence += c.Prediction.Confidence
		ps.ByPriority[c.Prediction.Priority]++
	}
	if n := float64(len(cands)); n > 0 {
		ps.AvgRevenueDeltaPct = ps.TotalRevenueDeltaPct / n
		ps.AvgConfidence /= n
	}
	return ps
}

func conversionSummary(cands []domain.OptimizationCandidate) domain.ConversionPredictionSummary {
	var cs domain.ConversionPredictionSummary
	for i, c := range cands {
		d := c.Prediction.ConversionDeltaPct
		cs.AvgConversionDeltaPct += d
		if i == 0 || d > cs.MaxConversionDeltaPct {
			cs.MaxConversionDeltaPct = d
		}
		if d > 0 {
			cs.PositiveCount++
		}
	}
	if n := float64(len(cands)); n > 0 {
		cs.AvgConversionDeltaPct /= n
	}
	return cs
}

func vmdAnalysis(r domain.VMDReport) domain.VMDAnalysis {
	va := domain.VMDAnalysis{
		Score:          r.Score,
		Grade:          r.Grade,
		ViolationCount: len(r.Violations),
		BySeverity: map[domain.Severity]int{
			domain.SeverityLow:      0,
			domain.SeverityMedium:   0,
			domain.SeverityHigh:     0,
			domain.SeverityCritical: 0,
		},
		RuleScores: append([]domain.VMDRuleScore{}, r.RuleScores...),
	}
	for _, v := range r.Violations {
		va.BySeverity[v.Severity]++
	}
	top := r.Violations
	if len(top) > topViolations {
		top = top[:topViolations]
	}
	va.TopViolations = append([]domain.VMDViolation{}, top...)
	return va
}
