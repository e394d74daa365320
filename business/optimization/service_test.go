//go:build !integration

package optimization

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeOptimizer/business/association"
	"storeOptimizer/business/flow"
	"storeOptimizer/domain"
)

var fixedNow = time.Date(2026, 5, 16, 15, 0, 0, 0, time.UTC)

// ---- fakes ----

type fakeLayoutRepo struct {
	store     domain.Store
	storeErr  error
	layout    domain.Layout
	layoutErr error
}

func (f *fakeLayoutRepo) GetStore(_ context.Context, id uint64) (domain.Store, error) {
	if f.storeErr != nil {
		return domain.Store{}, f.storeErr
	}
	return f.store, nil
}

func (f *fakeLayoutRepo) GetLayout(_ context.Context, _ uint64) (domain.Layout, error) {
	if f.layoutErr != nil {
		return domain.Layout{}, f.layoutErr
	}
	return f.layout.Clone(), nil
}

type fakePerfRepo struct {
	zones    []domain.ZonePerformance
	products []domain.ProductPerformance
	err      error
}

func (f *fakePerfRepo) ZonePerformance(_ context.Context, _ uint64, _ time.Time) ([]domain.ZonePerformance, error) {
	return f.zones, f.err
}

func (f *fakePerfRepo) ProductPerformance(_ context.Context, _ uint64, _ time.Time) ([]domain.ProductPerformance, error) {
	return f.products, f.err
}

type fakeEnvLoader struct {
	snap domain.EnvironmentSnapshot
}

func (f *fakeEnvLoader) Load(_ context.Context, _ uint64, _ *time.Time) (domain.EnvironmentSnapshot, error) {
	return f.snap, nil
}

type fakeFlow struct {
	analysis domain.FlowAnalysis
	err      error
	block    bool
	gotCfg   flow.Config
}

func (f *fakeFlow) Analyze(ctx context.Context, _ uint64, cfg flow.Config) (domain.FlowAnalysis, error) {
	f.gotCfg = cfg
	if f.block {
		<-ctx.Done()
		return domain.FlowAnalysis{}, ctx.Err()
	}
	return f.analysis, f.err
}

type fakeMiner struct {
	analysis domain.AssociationAnalysis
	err      error
	gotCfg   association.Config
}

func (f *fakeMiner) Mine(_ context.Context, _ uint64, cfg association.Config) (domain.AssociationAnalysis, error) {
	f.gotCfg = cfg
	return f.analysis, f.err
}

type fakeResults struct {
	mu    sync.Mutex
	saved []domain.OptimizationResultRecord
	err   error
}

func (f *fakeResults) SaveResult(_ context.Context, rec domain.OptimizationResultRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeResults) LatestResult(_ context.Context, storeID uint64) (domain.OptimizationResultRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].StoreID == storeID {
			return f.saved[i], true, nil
		}
	}
	return domain.OptimizationResultRecord{}, false, nil
}

type fakeTuning struct {
	tuning domain.StoreTuning
	ok     bool
	err    error
}

func (f *fakeTuning) GetTuning(_ context.Context, _ uint64) (domain.StoreTuning, bool, error) {
	return f.tuning, f.ok, f.err
}

type fakeRefiner struct {
	texts   func([]domain.OptimizationCandidate) map[string]string
	outcome domain.Outcome
	calls   int
}

func (f *fakeRefiner) Refine(_ context.Context, _ uint64, cands []domain.OptimizationCandidate) (map[string]string, domain.Outcome) {
	f.calls++
	if f.texts == nil {
		return nil, f.outcome
	}
	return f.texts(cands), f.outcome
}

// ---- fixture ----

func ptr(v uint64) *uint64 { return &v }

func fixtureLayout() domain.Layout {
	return domain.Layout{
		StoreID: 1,
		Zones: []domain.Zone{
			{ID: 1, Name: "Entrance", Type: domain.ZoneEntrance, CenterX: 0, CenterY: 0},
			{ID: 2, Name: "Main Display", Type: domain.ZoneDisplay, CenterX: 10, CenterY: 0},
			{ID: 3, Name: "Back Corner", Type: domain.ZoneDisplay, CenterX: 40, CenterY: 40},
			{ID: 4, Name: "Checkout", Type: domain.ZoneCheckout, CenterX: 10, CenterY: 10},
			{ID: 5, Name: "Stockroom", Type: domain.ZoneStorage, CenterX: 50, CenterY: 0},
			{ID: 6, Name: "Promo Aisle", Type: domain.ZoneAisle, CenterX: 20, CenterY: 0},
		},
		Furniture: []domain.Furniture{
			{ID: 10, ZoneID: 2, Type: "shelf", Movable: true},
			{ID: 11, ZoneID: 3, Type: "shelf", Movable: true},
			{ID: 13, ZoneID: 6, Type: "table", Movable: true},
			{ID: 14, ZoneID: 6, Type: "mannequin", Movable: false},
		},
		Slots: []domain.Slot{
			{ID: 100, FurnitureID: 10, Level: domain.SlotEye},
			{ID: 101, FurnitureID: 10, Level: domain.SlotLow, ProductID: ptr(1)},
			{ID: 102, FurnitureID: 11, Level: domain.SlotLow, ProductID: ptr(2)},
			{ID: 103, FurnitureID: 10, Level: domain.SlotEye},
			{ID: 104, FurnitureID: 13, Level: domain.SlotEye, ProductID: ptr(3)},
		},
		Products: []domain.Product{
			{ID: 1, SKU: "WINE-1", Name: "Rioja", Category: "wine", Margin: 0.5, ZoneID: 2, FurnitureID: 10, SlotID: ptr(101)},
			{ID: 2, SKU: "CHS-1", Name: "Manchego", Category: "cheese", Margin: 0.1, ZoneID: 3, FurnitureID: 11, SlotID: ptr(102)},
			{ID: 3, SKU: "WINE-2", Name: "Cava", Category: "wine", Margin: 0.1, ZoneID: 6, FurnitureID: 13, SlotID: ptr(104)},
			{ID: 4, SKU: "BRD-1", Name: "Baguette", Category: "bread", Margin: 0.2, ZoneID: 2, FurnitureID: 10},
		},
	}
}

func fixtureFlow() domain.FlowAnalysis {
	return domain.FlowAnalysis{
		StoreID:    1,
		WindowDays: 30,
		Summary:    domain.FlowSummary{ZoneCount: 6, TransitionCount: 900, VisitCount: 300, EntryCount: 300},
		Matrix:     domain.ProbabilityMatrix{},
		KeyPaths:   []domain.FlowPath{{ZoneIDs: []uint64{1, 2, 4}, Frequency: 120, Probability: 0.4, Type: domain.PathDirect}},
		Bottlenecks: []domain.Bottleneck{
			{ZoneID: 6, CongestionRatio: 2.4, DwellCV: 0.9, Severity: domain.SeverityHigh},
		},
		DeadZones: []domain.DeadZone{{ZoneID: 3, Visits: 2, RelativeVisit: 0.01}},
		Opportunities: []domain.LayoutOpportunity{
			{Type: domain.OpportunityConnectDeadZone, ZoneID: 3, TargetZoneID: 2},
			{Type: domain.OpportunityRelieveBottleneck, ZoneID: 6, TargetZoneID: 2},
		},
		ZoneStats: map[uint64]domain.ZoneFlowStats{
			1: {ZoneID: 1, Visits: 100, Visibility: 0.5},
			2: {ZoneID: 2, Visits: 300, Visibility: 0.9},
			3: {ZoneID: 3, Visits: 2, Visibility: 0.05},
			4: {ZoneID: 4, Visits: 90, Visibility: 0.4},
			6: {ZoneID: 6, Visits: 250, Visibility: 0.8},
		},
		HealthScore: 62,
		DataQuality: domain.DataQuality{Sufficient: true},
	}
}

func fixtureAssociation() domain.AssociationAnalysis {
	return domain.AssociationAnalysis{
		StoreID:           1,
		WindowDays:        90,
		TotalTransactions: 400,
		ItemRules: []domain.AssociationRule{
			{Level: domain.RuleLevelItem, AntecedentProductID: 2, ConsequentProductID: 1, PairCount: 80, Support: 0.2, Confidence: 0.6, Lift: 2, Strength: domain.StrengthStrong, Positive: true},
		},
		CategoryRules: []domain.AssociationRule{},
		CategoryAffinities: []domain.CategoryAffinity{
			{CategoryA: "cheese", CategoryB: "wine", MeanLift: 2, Affinity: 0.667, PairCount: 80, Advice: domain.AdviceCoLocate, Proximity: domain.ProximitySameZone},
		},
		DataQuality: domain.DataQuality{Sufficient: true},
	}
}

func fixtureEnvironment() domain.EnvironmentSnapshot {
	env := domain.NeutralEnvironment(1, fixedNow)
	env.TimeBucket = "afternoon"
	env.Weather = &domain.WeatherRecord{Condition: domain.WeatherSunny}
	env.DataQuality = domain.EnvironmentDataQuality{Weather: true, Events: true, Temporal: true}
	return env
}

type fixture struct {
	layout  *fakeLayoutRepo
	perf    *fakePerfRepo
	env     *fakeEnvLoader
	flow    *fakeFlow
	miner   *fakeMiner
	results *fakeResults
	tuning  *fakeTuning
	refiner *fakeRefiner
	cfg     Config
}

func newFixture() *fixture {
	return &fixture{
		layout: &fakeLayoutRepo{store: domain.Store{ID: 1, Name: "Downtown"}, layout: fixtureLayout()},
		perf: &fakePerfRepo{
			zones: []domain.ZonePerformance{
				{ZoneID: 2, Visitors: 300, Transactions: 60, Revenue: 3000},
				{ZoneID: 3, Visitors: 2, Transactions: 0, Revenue: 10},
				{ZoneID: 6, Visitors: 250, Transactions: 40, Revenue: 2000},
			},
			products: []domain.ProductPerformance{
				{ProductID: 1, UnitsSold: 50, Revenue: 500},
				{ProductID: 2, UnitsSold: 5, Revenue: 50},
				{ProductID: 3, UnitsSold: 10, Revenue: 100},
				{ProductID: 4, UnitsSold: 40, Revenue: 80},
			},
		},
		env:     &fakeEnvLoader{snap: fixtureEnvironment()},
		flow:    &fakeFlow{analysis: fixtureFlow()},
		miner:   &fakeMiner{analysis: fixtureAssociation()},
		results: &fakeResults{},
		tuning:  &fakeTuning{},
		cfg:     DefaultConfig(),
	}
}

func (f *fixture) service() *Service {
	var refiner Refiner
	if f.refiner != nil {
		refiner = f.refiner
	}
	s := NewService(f.layout, f.perf, f.env, f.flow, f.miner, f.results, f.tuning, refiner, nil, f.cfg)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "result-1" }
	return s
}

func request(t domain.OptimizationType) domain.OptimizationRequest {
	return domain.OptimizationRequest{StoreID: 1, OptimizationType: string(t)}
}

func intPtr(v int) *int { return &v }

// ---- tests ----

func TestOptimize_ReturnsRankedCandidates(t *testing.T) {
	f := newFixture()

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)

	res := resp.Result
	assert.Equal(t, "result-1", res.ID)
	assert.Equal(t, domain.ResultPending, res.Status)
	assert.Len(t, res.FurnitureChanges, 2)
	assert.Len(t, res.ProductChanges, 2)

	sum := res.Summary
	assert.Equal(t, 8, sum.GeneratedCandidates)
	assert.Equal(t, 4, sum.ReturnedCandidates)
	assert.Equal(t, sum.GeneratedCandidates, sum.ReturnedCandidates+sum.FilteredCandidates+sum.TruncatedCandidates)
	assert.Empty(t, sum.DegradedComponents)
	assert.Equal(t, domain.OutcomeOK, sum.Persistence.Status)
	require.Len(t, f.results.saved, 1)
	assert.Equal(t, 4, f.results.saved[0].CandidateCount)

	entities := map[string]bool{}
	slots := map[uint64]bool{}
	for _, c := range res.Candidates() {
		key := fmt.Sprintf("%s-%d", c.EntityType, c.EntityID)
		assert.False(t, entities[key], "duplicate entity %s", key)
		entities[key] = true
		if c.Suggested.SlotID != nil {
			assert.False(t, slots[*c.Suggested.SlotID], "slot %d claimed twice", *c.Suggested.SlotID)
			slots[*c.Suggested.SlotID] = true
		}
		assert.NotEmpty(t, c.Rationale)
		assert.InDelta(t, 0.5, c.Prediction.Confidence, 0.5)
		assert.LessOrEqual(t, c.Prediction.RevenueDeltaPct, 100.0)
		assert.GreaterOrEqual(t, c.Prediction.RevenueDeltaPct, -100.0)
		assert.LessOrEqual(t, c.Prediction.ConversionDeltaPct, 50.0)
		assert.GreaterOrEqual(t, c.Prediction.ConversionDeltaPct, -50.0)
	}
	assert.True(t, entities["furniture-11"], "dead zone fixture should be bridged")
	assert.True(t, entities["furniture-13"], "browsing table should leave the bottleneck")
	assert.True(t, entities["product-1"])
	assert.True(t, entities["product-2"])

	for i := 1; i < len(res.ProductChanges); i++ {
		assert.GreaterOrEqual(t, res.ProductChanges[i-1].Prediction.Priority.Rank(), res.ProductChanges[i].Prediction.Priority.Rank())
	}

	assert.Equal(t, 6, resp.DataSummary.ZoneCount)
	assert.Equal(t, 3, resp.DataSummary.MovableFurnitureCount)
	assert.Equal(t, 2, resp.DataSummary.FreeSlotCount)
	assert.Equal(t, 4, resp.DataSummary.ProductsWithSales)
	assert.Equal(t, domain.WeatherSunny, resp.EnvironmentSummary.Weather)
	assert.Equal(t, 1, resp.FlowAnalysisSummary.DeadZoneCount)
	assert.Equal(t, 1, resp.AssociationSummary.PositiveRuleCount)
	assert.Equal(t, 4, resp.PredictionSummary.CandidateCount)
	assert.NotEmpty(t, resp.VMDAnalysis.Grade)
	assert.Greater(t, resp.VMDAnalysis.ViolationCount, 0)
}

func TestOptimize_NeverMovesFixedFurniture(t *testing.T) {
	f := newFixture()
	// make every fixture a browsing display stuck in the bottleneck
	for i := range f.layout.layout.Furniture {
		f.layout.layout.Furniture[i].ZoneID = 6
		f.layout.layout.Furniture[i].Type = "display"
	}
	f.layout.layout.Furniture[0].Movable = false

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeFurniture))
	require.NoError(t, err)

	for _, c := range resp.Result.FurnitureChanges {
		assert.NotEqual(t, uint64(10), c.EntityID)
		assert.NotEqual(t, uint64(14), c.EntityID)
	}
	assert.Empty(t, resp.Result.ProductChanges)
}

func TestOptimize_MaxChangesCapsResult(t *testing.T) {
	f := newFixture()
	req := request(domain.OptimizeBoth)
	req.Parameters = &domain.OptimizationParameters{MaxChanges: intPtr(2)}

	resp, err := f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Result.Candidates(), 2)
	assert.Equal(t, 2, resp.Result.Summary.TruncatedCandidates)

	req.Parameters.MaxChanges = intPtr(0)
	resp, err = f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Result.Candidates())
	assert.Equal(t, 4, resp.Result.Summary.TruncatedCandidates)
}

func TestOptimize_NoCapUnlessSuppliedOrConfigured(t *testing.T) {
	f := newFixture()
	require.Zero(t, DefaultConfig().DefaultMaxChanges)

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Len(t, resp.Result.Candidates(), 4)
	assert.Zero(t, resp.Result.Summary.TruncatedCandidates)

	f.cfg.DefaultMaxChanges = 3
	resp, err = f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Len(t, resp.Result.Candidates(), 3)
	assert.Equal(t, 1, resp.Result.Summary.TruncatedCandidates)
}

func TestRank_NegativeCapKeepsEverything(t *testing.T) {
	cands := []domain.OptimizationCandidate{
		{ID: "a", EntityType: domain.EntityFurniture, EntityID: 1},
		{ID: "b", EntityType: domain.EntityFurniture, EntityID: 2},
		{ID: "c", EntityType: domain.EntityFurniture, EntityID: 3},
	}

	kept, superseded, truncated := rank(cands, -1)
	assert.Len(t, kept, 3)
	assert.Zero(t, superseded)
	assert.Zero(t, truncated)
}

func TestOptimize_PinnedDateAnchorsEveryWindow(t *testing.T) {
	f := newFixture()
	pinned := time.Date(2025, 12, 20, 15, 0, 0, 0, time.UTC)
	req := request(domain.OptimizeBoth)
	req.Date = &pinned

	_, err := f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, pinned, f.flow.gotCfg.AsOf)
	assert.Equal(t, pinned, f.miner.gotCfg.AsOf)

	_, err = f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Equal(t, fixedNow, f.flow.gotCfg.AsOf)
	assert.Equal(t, fixedNow, f.miner.gotCfg.AsOf)
}

func TestOptimize_RejectsNegativeMaxChanges(t *testing.T) {
	f := newFixture()
	req := request(domain.OptimizeBoth)
	req.Parameters = &domain.OptimizationParameters{MaxChanges: intPtr(-1)}

	_, err := f.service().Optimize(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestOptimize_IsDeterministic(t *testing.T) {
	f := newFixture()

	first, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	second, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimize_TypeSelectsEntities(t *testing.T) {
	f := newFixture()

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeFurniture))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result.FurnitureChanges)
	assert.Empty(t, resp.Result.ProductChanges)

	resp, err = f.service().Optimize(context.Background(), request(domain.OptimizeProduct))
	require.NoError(t, err)
	assert.Empty(t, resp.Result.FurnitureChanges)
	assert.NotEmpty(t, resp.Result.ProductChanges)
}

func TestOptimize_ParameterFilters(t *testing.T) {
	f := newFixture()

	req := request(domain.OptimizeBoth)
	req.Parameters = &domain.OptimizationParameters{FurnitureIDs: []uint64{13}, ProductIDs: []uint64{1}}
	resp, err := f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Result.FurnitureChanges, 1)
	assert.Equal(t, uint64(13), resp.Result.FurnitureChanges[0].EntityID)
	require.Len(t, resp.Result.ProductChanges, 1)
	assert.Equal(t, uint64(1), resp.Result.ProductChanges[0].EntityID)
	assert.Positive(t, resp.Result.Summary.FilteredCandidates)

	req.Parameters = &domain.OptimizationParameters{ZoneIDs: []uint64{6}}
	resp, err = f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Result.Candidates(), 1)
	assert.Equal(t, uint64(13), resp.Result.Candidates()[0].EntityID)
}

func TestOptimize_AccessibilityOnlyRelievesBottlenecks(t *testing.T) {
	f := newFixture()
	req := request(domain.OptimizeBoth)
	req.Parameters = &domain.OptimizationParameters{PrioritizeAccessibility: true}

	resp, err := f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Result.Candidates(), 1)
	c := resp.Result.Candidates()[0]
	assert.Equal(t, tagRelieveBottleneck, c.RationaleTag)
	assert.Equal(t, uint64(2), c.Suggested.ZoneID)
	assert.Positive(t, c.Prediction.RevenueDeltaPct)
}

func TestOptimize_ZeroHistory(t *testing.T) {
	f := newFixture()
	for i := range f.layout.layout.Products {
		f.layout.layout.Products[i].Margin = 0
	}
	f.perf.zones, f.perf.products = nil, nil
	f.flow.analysis = domain.EmptyFlowAnalysis(1, 30, "no transitions in window")
	f.miner.analysis = domain.EmptyAssociationAnalysis(1, 90, "no transactions in window")

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Result.Candidates())
	assert.Equal(t, 0, resp.Result.Summary.ReturnedCandidates)
	assert.Equal(t, 0, resp.PredictionSummary.CandidateCount)
	assert.Equal(t, 0, resp.DataSummary.ProductsWithSales)
	assert.False(t, resp.FlowAnalysisSummary.DataQuality.Sufficient)
	assert.False(t, resp.AssociationSummary.DataQuality.Sufficient)
	assert.Zero(t, resp.FlowAnalysisSummary.HealthScore)
	assert.NotNil(t, resp.Result.FurnitureChanges)
	assert.NotNil(t, resp.Result.ProductChanges)
}

func TestOptimize_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture)
		req     domain.OptimizationRequest
		wantErr error
	}{
		{
			name:    "unknown store",
			mutate:  func(f *fixture) { f.layout.storeErr = domain.ErrStoreNotFound },
			req:     request(domain.OptimizeBoth),
			wantErr: domain.ErrStoreNotFound,
		},
		{
			name:    "layout query fails",
			mutate:  func(f *fixture) { f.layout.layoutErr = errors.New("connection reset") },
			req:     request(domain.OptimizeBoth),
			wantErr: domain.ErrLayoutUnavailable,
		},
		{
			name:    "store without zones",
			mutate:  func(f *fixture) { f.layout.layout.Zones = nil },
			req:     request(domain.OptimizeBoth),
			wantErr: domain.ErrLayoutUnavailable,
		},
		{
			name:    "unknown optimization type",
			mutate:  func(f *fixture) {},
			req:     domain.OptimizationRequest{StoreID: 1, OptimizationType: "lighting"},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "missing store id",
			mutate:  func(f *fixture) {},
			req:     domain.OptimizationRequest{OptimizationType: "both"},
			wantErr: domain.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.mutate(f)

			resp, err := f.service().Optimize(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.results.saved)
		})
	}
}

func TestOptimize_CancelledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service().Optimize(ctx, request(domain.OptimizeBoth))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimize_DegradesSlowAndFailingComponents(t *testing.T) {
	f := newFixture()
	f.cfg.JoinTimeout = 50 * time.Millisecond
	f.flow.block = true
	f.miner.err = errors.New("line items unavailable")

	start := time.Now()
	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.ElementsMatch(t, []string{componentFlow, componentAssociation}, resp.Result.Summary.DegradedComponents)
	assert.ElementsMatch(t, []string{componentFlow, componentAssociation}, resp.DataSummary.DegradedComponents)
	assert.False(t, resp.FlowAnalysisSummary.DataQuality.Sufficient)
	assert.False(t, resp.AssociationSummary.DataQuality.Sufficient)

	for _, c := range resp.Result.Candidates() {
		assert.Contains(t, c.Prediction.WeakSignals, "flow")
		assert.Contains(t, c.Prediction.WeakSignals, "association")
	}
}

func TestOptimize_PerformanceFailureDegrades(t *testing.T) {
	f := newFixture()
	f.perf.err = errors.New("timeout")

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Contains(t, resp.Result.Summary.DegradedComponents, componentPerformance)
}

func TestOptimize_NarrativeRefinement(t *testing.T) {
	t.Run("refined text replaces templates", func(t *testing.T) {
		f := newFixture()
		f.refiner = &fakeRefiner{
			outcome: domain.Ok(),
			texts: func(cands []domain.OptimizationCandidate) map[string]string {
				out := map[string]string{}
				for _, c := range cands {
					out[c.ID] = "refined " + c.ID
				}
				return out
			},
		}

		resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
		require.NoError(t, err)
		assert.Equal(t, 1, f.refiner.calls)
		assert.Equal(t, domain.OutcomeOK, resp.Result.Summary.Narrative.Status)
		for _, c := range resp.Result.Candidates() {
			assert.Equal(t, "refined "+c.ID, c.Rationale)
		}
	})

	t.Run("refiner failure keeps templates", func(t *testing.T) {
		f := newFixture()
		f.refiner = &fakeRefiner{outcome: domain.Failed("upstream timeout")}

		resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeFailed, resp.Result.Summary.Narrative.Status)
		for _, c := range resp.Result.Candidates() {
			assert.Contains(t, c.Rationale, "Expected revenue change")
		}
	})

	t.Run("no refiner", func(t *testing.T) {
		f := newFixture()

		resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeDegraded, resp.Result.Summary.Narrative.Status)
	})
}

func TestOptimize_PersistenceFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.results.err = errors.New("db down")

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, resp.Result.Summary.Persistence.Status)
	assert.Len(t, resp.Result.Candidates(), 4)
}

func TestOptimize_StoreTuningOverlay(t *testing.T) {
	f := newFixture()
	f.tuning.tuning = domain.StoreTuning{StoreID: 1, DefaultMaxChanges: 1, FlowWindowDays: 14, BottleneckThreshold: 2.0}
	f.tuning.ok = true

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Len(t, resp.Result.Candidates(), 1)
	assert.Equal(t, 14, f.flow.gotCfg.WindowDays)
	assert.Equal(t, 2.0, f.flow.gotCfg.BottleneckThreshold)
	assert.Equal(t, DefaultConfig().Flow.DwellCVThreshold, f.flow.gotCfg.DwellCVThreshold)

	// request max_changes wins over the store default
	req := request(domain.OptimizeBoth)
	req.Parameters = &domain.OptimizationParameters{MaxChanges: intPtr(3)}
	resp, err = f.service().Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Result.Candidates(), 3)
}

func TestOptimize_TuningErrorFallsBackToDefaults(t *testing.T) {
	f := newFixture()
	f.tuning.err = errors.New("relation store_tuning does not exist")

	resp, err := f.service().Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)
	assert.Len(t, resp.Result.Candidates(), 4)
	assert.Equal(t, DefaultConfig().Flow.WindowDays, f.flow.gotCfg.WindowDays)
}

func TestLatest(t *testing.T) {
	f := newFixture()
	svc := f.service()

	_, err := svc.Latest(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)

	resp, err := svc.Optimize(context.Background(), request(domain.OptimizeBoth))
	require.NoError(t, err)

	got, err := svc.Latest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, resp.Result.ID, got.ID)
	assert.Equal(t, domain.ResultPending, got.Status)
	assert.Len(t, got.Candidates(), len(resp.Result.Candidates()))
	assert.Equal(t, domain.OutcomeOK, got.Summary.Persistence.Status)
}

func TestRank_KeepsOneCandidatePerEntityAndSlot(t *testing.T) {
	mk := func(id string, entity uint64, slot uint64, prio domain.Priority, conf float64) domain.OptimizationCandidate {
		return domain.OptimizationCandidate{
			ID:         id,
			EntityType: domain.EntityProduct,
			EntityID:   entity,
			Suggested:  domain.Placement{ZoneID: 1, SlotID: ptr(slot)},
			Prediction: domain.PredictionResult{Priority: prio, Confidence: conf},
		}
	}
	cands := []domain.OptimizationCandidate{
		mk("a", 1, 100, domain.PriorityLow, 0.9),
		mk("b", 1, 101, domain.PriorityHigh, 0.5),
		mk("c", 2, 101, domain.PriorityMedium, 0.9),
		mk("d", 2, 102, domain.PriorityMedium, 0.4),
		mk("e", 3, 103, domain.PriorityCritical, 0.1),
	}

	kept, superseded, truncated := rank(cands, 10)
	ids := make([]string, 0, len(kept))
	for _, c := range kept {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"e", "b", "d"}, ids)
	assert.Equal(t, 2, superseded)
	assert.Zero(t, truncated)

	kept, _, truncated = rank(cands, 1)
	require.Len(t, kept, 1)
	assert.Equal(t, "e", kept[0].ID)
	assert.Equal(t, 2, truncated)
}
