package vmd

import (
	"math"
	"sort"

	"storeOptimizer/domain"
)

// Inputs are the analyses the rules read next to the layout itself.
type Inputs struct {
	Flow        domain.FlowAnalysis
	Association domain.AssociationAnalysis
	Performance map[uint64]domain.ProductPerformance
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	d := DefaultConfig()
	if cfg.Weights == nil {
		cfg.Weights = d.Weights
	}
	if cfg.MaxDistance == nil {
		cfg.MaxDistance = d.MaxDistance
	}
	if cfg.HighValueQuantile <= 0 || cfg.HighValueQuantile >= 1 {
		cfg.HighValueQuantile = d.HighValueQuantile
	}
	if cfg.MaxZonesPerCategory <= 0 {
		cfg.MaxZonesPerCategory = d.MaxZonesPerCategory
	}
	if cfg.MinProductsForFragmentation <= 0 {
		cfg.MinProductsForFragmentation = d.MinProductsForFragmentation
	}
	return &Engine{cfg: cfg}
}

// HighValue applies the engine's quantile to HighValueProducts.
func (e *Engine) HighValue(products []domain.Product, perf map[uint64]domain.ProductPerformance) map[uint64]bool {
	return HighValueProducts(products, perf, e.cfg.HighValueQuantile)
}

type ruleResult struct {
	checked    int
	violations []domain.VMDViolation
}

// Evaluate scores a layout. It never mutates its arguments and is safe to call on
// projected layouts.
func (e *Engine) Evaluate(layout domain.Layout, in Inputs) domain.VMDReport {
	highValue := HighValueProducts(layout.Products, in.Performance, e.cfg.HighValueQuantile)

	results := map[domain.VMDRule]ruleResult{
		domain.RuleGoldenZoneMargin:      e.goldenZoneMargin(layout, highValue),
		domain.RuleAffinityProximity:     e.affinityProximity(layout, in.Association),
		domain.RuleDeadZonePriority:      e.deadZonePriority(layout, in.Flow, highValue),
		domain.RuleBottleneckBrowsing:    e.bottleneckBrowsing(layout, in.Flow),
		domain.RuleCategoryFragmentation: e.categoryFragmentation(layout),
	}

	report := domain.VMDReport{
		RuleScores: make([]domain.VMDRuleScore, 0, len(ruleOrder)),
		Violations: []domain.VMDViolation{},
	}
	var weighted, weights float64
	for _, rule := range ruleOrder {
		r := results[rule]
		score := ruleScore(r)
		w := e.cfg.Weights[rule]
		weighted += score * w
		weights += w
		report.RuleScores = append(report.RuleScores, domain.VMDRuleScore{
			Rule:       rule,
			Score:      score,
			Weight:     w,
			Checked:    r.checked,
			Violations: len(r.violations),
		})
		report.Violations = append(report.Violations, r.violations...)
	}

	report.Score = 100
	if weights > 0 {
		report.Score = domain.Clamp(weighted/weights, 0, 100)
	}
	report.Grade = domain.GradeForScore(report.Score)

	sort.SliceStable(report.Violations, func(i, j int) bool {
		return report.Violations[i].Severity.Weight() > report.Violations[j].Severity.Weight()
	})
	return report
}

// ruleScore is 100 minus the severity-weighted violation share of what was checked.
func ruleScore(r ruleResult) float64 {
	if r.checked == 0 {
		return 100
	}
	var penalty float64
	for _, v := range r.violations {
		penalty += v.Severity.Weight()
	}
	return domain.Clamp(100*(1-penalty/float64(r.checked)), 0, 100)
}

// HighValueProducts marks products at or above the q-quantile of margin or of revenue.
func HighValueProducts(products []domain.Product, perf map[uint64]domain.ProductPerformance, q float64) map[uint64]bool {
	var margins, revenues []float64
	for _, p := range products {
		if p.Margin > 0 {
			margins = append(margins, p.Margin)
		}
		if r := perf[p.ID].Revenue; r > 0 {
			revenues = append(revenues, r)
		}
	}
	marginCut, hasMargin := quantile(margins, q)
	revenueCut, hasRevenue := quantile(revenues, q)

	out := make(map[uint64]bool)
	for _, p := range products {
		if hasMargin && p.Margin > 0 && p.Margin >= marginCut {
			out[p.ID] = true
		}
		if r := perf[p.ID].Revenue; hasRevenue && r > 0 && r >= revenueCut {
			out[p.ID] = true
		}
	}
	return out
}

// quantile uses the nearest-rank method.
func quantile(xs []float64, q float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	idx := int(math.Ceil(q*float64(len(s)))) - 1
	if idx < 0 {
		idx = 0
	}
	return s[idx], true
}
