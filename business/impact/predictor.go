package impact

import (
	"math"

	"storeOptimizer/domain"
)

const (
	signalFlow        = "flow"
	signalAssociation = "association"
	signalBaseline    = "zone_baseline"
	signalEnvironment = "environment"

	minTrafficEffect = -1.0
	maxTrafficEffect = 3.0
	baseConfidence   = 0.35
	sampleConfidence = 0.6
)

// Input carries every signal for one candidate. The orchestrator fills it;
// the predictor never reaches back into the analyses.
type Input struct {
	Candidate domain.OptimizationCandidate

	Origin      domain.ZonePerformance
	Destination domain.ZonePerformance

	OriginFlow      domain.ZoneFlowStats
	DestinationFlow domain.ZoneFlowStats
	FlowSufficient  bool

	Environment domain.EnvironmentSnapshot

	// signed fractional effect of moving toward (+) or away from (-) affinity partners
	AssociationEffect     float64
	AssociationSufficient bool

	// fractional visibility change from the slot level, e.g. +0.15 into eye level
	PlacementEffect float64
}

type Predictor struct {
	cfg Config
}

func NewPredictor(cfg Config) *Predictor {
	return &Predictor{cfg: cfg.withDefaults()}
}

func (p *Predictor) Config() Config {
	return p.cfg
}

// Predict blends traffic ratio, zone baselines and association into revenue and
// conversion deltas, scales them by the environment and discounts weak signals.
func (p *Predictor) Predict(in Input) domain.PredictionResult {
	cfg := p.cfg
	var weak []string

	s := cfg.SmoothingVisits
	originVisits := math.Max(0, float64(in.OriginFlow.Visits))
	destVisits := math.Max(0, float64(in.DestinationFlow.Visits))
	trafficRatio := (destVisits + s) / (originVisits + s)
	trafficEffect := domain.Clamp(trafficRatio-1, minTrafficEffect, maxTrafficEffect)
	if !in.FlowSufficient {
		weak = append(weak, signalFlow)
	}

	revenueBaseline, conversionBaseline := 0.0, 0.0
	originRPV, destRPV := in.Origin.RevenuePerVisitor(), in.Destination.RevenuePerVisitor()
	if originRPV > 0 && destRPV > 0 {
		revenueBaseline = destRPV/originRPV - 1
		if oc, dc := in.Origin.ConversionRate(), in.Destination.ConversionRate(); oc > 0 {
			conversionBaseline = dc/oc - 1
		}
	} else {
		weak = append(weak, signalBaseline)
	}
	revenueBaseline = domain.Clamp(revenueBaseline, -1, maxTrafficEffect)
	conversionBaseline = domain.Clamp(conversionBaseline, -1, maxTrafficEffect)

	assoc := domain.Clamp(finite(in.AssociationEffect), -1, 1)
	if !in.AssociationSufficient {
		weak = append(weak, signalAssociation)
	}

	if !in.Environment.DataQuality.Complete() {
		weak = append(weak, signalEnvironment)
	}
	env := in.Environment.Combined
	revenueEnv := finiteOr(env.Traffic*env.Conversion, 1)
	conversionEnv := finiteOr(env.Conversion, 1)

	placement := domain.Clamp(finite(in.PlacementEffect), -1, 1)

	rawRevenue := cfg.TrafficWeight*trafficEffect +
		cfg.BaselineWeight*revenueBaseline +
		cfg.AssociationWeight*assoc +
		placement
	rawConversion := cfg.BaselineWeight*conversionBaseline +
		cfg.AssociationWeight*assoc +
		0.5*placement

	deltaDiscount := math.Pow(1-cfg.WeakSignalDeltaDiscount, float64(len(weak)))
	revenuePct := domain.Clamp(finite(rawRevenue*revenueEnv*deltaDiscount*100), -cfg.MaxRevenueDeltaPct, cfg.MaxRevenueDeltaPct)
	conversionPct := domain.Clamp(finite(rawConversion*conversionEnv*deltaDiscount*100), -cfg.MaxConversionDeltaPct, cfg.MaxConversionDeltaPct)

	sample := math.Min(1, (originVisits+destVisits)/cfg.FullConfidenceVisits)
	confidence := (baseConfidence + sampleConfidence*sample) *
		math.Pow(1-cfg.WeakSignalConfidenceDiscount, float64(len(weak)))
	confidence = domain.Clamp(confidence, 0, 1)

	ev := revenuePct * confidence
	return domain.PredictionResult{
		RevenueDeltaPct:    revenuePct,
		ConversionDeltaPct: conversionPct,
		Confidence:         confidence,
		ExpectedValue:      ev,
		Priority:           p.priority(ev),
		TrafficRatio:       trafficRatio,
		AssociationEffect:  assoc,
		EnvironmentFactor:  revenueEnv,
		WeakSignals:        weak,
	}
}

func (p *Predictor) priority(ev float64) domain.Priority {
	switch {
	case ev >= p.cfg.CriticalEV:
		return domain.PriorityCritical
	case ev >= p.cfg.HighEV:
		return domain.PriorityHigh
	case ev >= p.cfg.MediumEV:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func finite(v float64) float64 {
	return finiteOr(v, 0)
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
