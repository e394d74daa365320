//go:build !integration

package impact

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeOptimizer/domain"
)

func completeEnvironment(f domain.ImpactFactors) domain.EnvironmentSnapshot {
	env := domain.NeutralEnvironment(1, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC))
	env.Combined = f
	env.DataQuality = domain.EnvironmentDataQuality{Weather: true, Events: true, Temporal: true}
	return env
}

func baseInput() Input {
	return Input{
		Candidate:             domain.OptimizationCandidate{EntityType: domain.EntityProduct, EntityID: 1},
		Origin:                domain.ZonePerformance{ZoneID: 1, Visitors: 100, Transactions: 10, Revenue: 500},
		Destination:           domain.ZonePerformance{ZoneID: 2, Visitors: 120, Transactions: 12, Revenue: 600},
		OriginFlow:            domain.ZoneFlowStats{ZoneID: 1, Visits: 100},
		DestinationFlow:       domain.ZoneFlowStats{ZoneID: 2, Visits: 120},
		FlowSufficient:        true,
		AssociationSufficient: true,
		Environment:           completeEnvironment(domain.NeutralFactors()),
	}
}

func TestPredict_DeadZoneToHighTrafficIsHighPriority(t *testing.T) {
	in := Input{
		Candidate:             domain.OptimizationCandidate{EntityType: domain.EntityProduct, EntityID: 7},
		Origin:                domain.ZonePerformance{ZoneID: 5, Visitors: 10, Transactions: 1, Revenue: 20},
		Destination:           domain.ZonePerformance{ZoneID: 2, Visitors: 400, Transactions: 60, Revenue: 1200},
		OriginFlow:            domain.ZoneFlowStats{ZoneID: 5, Visits: 10, Visibility: 0.025},
		DestinationFlow:       domain.ZoneFlowStats{ZoneID: 2, Visits: 400, Visibility: 1},
		FlowSufficient:        true,
		AssociationSufficient: true,
		Environment:           completeEnvironment(domain.NeutralFactors()),
	}

	res := NewPredictor(DefaultConfig()).Predict(in)

	assert.Greater(t, res.RevenueDeltaPct, 0.0)
	assert.LessOrEqual(t, res.RevenueDeltaPct, DefaultConfig().MaxRevenueDeltaPct)
	assert.Contains(t, []domain.Priority{domain.PriorityHigh, domain.PriorityCritical}, res.Priority)
	assert.Greater(t, res.Confidence, 0.5)
	assert.LessOrEqual(t, res.Confidence, 1.0)
	assert.Empty(t, res.WeakSignals)
}

func TestPredict_NeutralMoveIsLowPriority(t *testing.T) {
	in := baseInput()
	in.Destination = in.Origin
	in.DestinationFlow = in.OriginFlow

	res := NewPredictor(DefaultConfig()).Predict(in)

	assert.InDelta(t, 0.0, res.RevenueDeltaPct, 1e-9)
	assert.InDelta(t, 0.0, res.ConversionDeltaPct, 1e-9)
	assert.Equal(t, domain.PriorityLow, res.Priority)
}

func TestPredict_EnvironmentScalesRevenue(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	neutral := p.Predict(baseInput())

	busy := baseInput()
	busy.Environment = completeEnvironment(domain.ImpactFactors{Traffic: 1.2, Conversion: 1, Dwell: 1})
	boosted := p.Predict(busy)

	require.Greater(t, neutral.RevenueDeltaPct, 0.0)
	assert.InDelta(t, neutral.RevenueDeltaPct*1.2, boosted.RevenueDeltaPct, 1e-9)
	assert.InDelta(t, 1.2, boosted.EnvironmentFactor, 1e-9)
}

func TestPredict_WeakSignalsDiscountConfidence(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	strong := p.Predict(baseInput())

	in := baseInput()
	in.FlowSufficient = false
	in.AssociationSufficient = false
	in.Origin = domain.ZonePerformance{}
	in.Environment = domain.NeutralEnvironment(1, time.Now())
	weak := p.Predict(in)

	assert.Less(t, weak.Confidence, strong.Confidence)
	assert.ElementsMatch(t, []string{signalFlow, signalAssociation, signalBaseline, signalEnvironment}, weak.WeakSignals)
	assert.Less(t, math.Abs(weak.RevenueDeltaPct), math.Abs(strong.RevenueDeltaPct)+1e-9)
}

func TestPredict_AssociationEffectSign(t *testing.T) {
	p := NewPredictor(DefaultConfig())

	toward := baseInput()
	toward.AssociationEffect = 0.5
	away := baseInput()
	away.AssociationEffect = -0.5

	assert.Greater(t, p.Predict(toward).RevenueDeltaPct, p.Predict(away).RevenueDeltaPct)
}

func TestPredict_BoundsHoldForArbitraryInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	p := NewPredictor(DefaultConfig())
	cfg := p.Config()

	for i := 0; i < 1000; i++ {
		in := Input{
			Origin:                domain.ZonePerformance{Visitors: rng.Intn(1000), Transactions: rng.Intn(1500), Revenue: rng.Float64() * 1e5},
			Destination:           domain.ZonePerformance{Visitors: rng.Intn(1000), Transactions: rng.Intn(1500), Revenue: rng.Float64() * 1e5},
			OriginFlow:            domain.ZoneFlowStats{Visits: rng.Intn(5000)},
			DestinationFlow:       domain.ZoneFlowStats{Visits: rng.Intn(5000)},
			FlowSufficient:        rng.Intn(2) == 0,
			AssociationSufficient: rng.Intn(2) == 0,
			AssociationEffect:     rng.NormFloat64() * 3,
			PlacementEffect:       rng.NormFloat64(),
			Environment: completeEnvironment(domain.ImpactFactors{
				Traffic:    rng.Float64() * 3,
				Conversion: rng.Float64() * 3,
				Dwell:      1,
			}),
		}
		if i%50 == 0 {
			in.AssociationEffect = math.NaN()
			in.Environment.Combined.Traffic = math.Inf(1)
		}

		res := p.Predict(in)

		require.False(t, math.IsNaN(res.RevenueDeltaPct))
		require.False(t, math.IsNaN(res.Confidence))
		require.GreaterOrEqual(t, res.Confidence, 0.0)
		require.LessOrEqual(t, res.Confidence, 1.0)
		require.LessOrEqual(t, math.Abs(res.RevenueDeltaPct), cfg.MaxRevenueDeltaPct)
		require.LessOrEqual(t, math.Abs(res.ConversionDeltaPct), cfg.MaxConversionDeltaPct)
	}
}
