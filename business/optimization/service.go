package optimization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"storeOptimizer/business/association"
	"storeOptimizer/business/flow"
	"storeOptimizer/business/impact"
	"storeOptimizer/business/vmd"
	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

// ---- Repository / collaborator interfaces ----

type LayoutRepository interface {
	GetStore(ctx context.Context, storeID uint64) (domain.Store, error)
	GetLayout(ctx context.Context, storeID uint64) (domain.Layout, error)
}

type PerformanceRepository interface {
	ZonePerformance(ctx context.Context, storeID uint64, since time.Time) ([]domain.ZonePerformance, error)
	ProductPerformance(ctx context.Context, storeID uint64, since time.Time) ([]domain.ProductPerformance, error)
}

type EnvironmentLoader interface {
	Load(ctx context.Context, storeID uint64, date *time.Time) (domain.EnvironmentSnapshot, error)
}

type FlowAnalyzer interface {
	Analyze(ctx context.Context, storeID uint64, cfg flow.Config) (domain.FlowAnalysis, error)
}

type AssociationMiner interface {
	Mine(ctx context.Context, storeID uint64, cfg association.Config) (domain.AssociationAnalysis, error)
}

type ResultRepository interface {
	SaveResult(ctx context.Context, rec domain.OptimizationResultRecord) error
	LatestResult(ctx context.Context, storeID uint64) (domain.OptimizationResultRecord, bool, error)
}

// Refiner rewrites rationales; keys of the returned map are candidate ids.
type Refiner interface {
	Refine(ctx context.Context, storeID uint64, candidates []domain.OptimizationCandidate) (map[string]string, domain.Outcome)
}

const (
	stageLoading             = "loading"
	stageAnalyzing           = "analyzing"
	stageCandidateGeneration = "candidate_generation"
	stageScoring             = "scoring"
	stageNarrative           = "narrative_refinement"
	stagePersisting          = "persisting"
)

// ---- Service ----

type Service struct {
	layoutRepo   LayoutRepository
	perfRepo     PerformanceRepository
	envLoader    EnvironmentLoader
	flowAnalyzer FlowAnalyzer
	assocMiner   AssociationMiner
	resultRepo   ResultRepository
	tuningRepo   TuningRepository
	refiner      Refiner
	validate     *validator.Validate
	defaultCfg   Config

	now   func() time.Time
	newID func() string
}

func NewService(
	layoutRepo LayoutRepository,
	perfRepo PerformanceRepository,
	envLoader EnvironmentLoader,
	flowAnalyzer FlowAnalyzer,
	assocMiner AssociationMiner,
	resultRepo ResultRepository,
	tuningRepo TuningRepository,
	refiner Refiner,
	validate *validator.Validate,
	defaultCfg Config,
) *Service {
	if validate == nil {
		validate = validator.New()
	}
	return &Service{
		layoutRepo:   layoutRepo,
		perfRepo:     perfRepo,
		envLoader:    envLoader,
		flowAnalyzer: flowAnalyzer,
		assocMiner:   assocMiner,
		resultRepo:   resultRepo,
		tuningRepo:   tuningRepo,
		refiner:      refiner,
		validate:     validate,
		defaultCfg:   defaultCfg,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

// Optimize runs one full pass for a store. Only invalid requests, unknown stores and
// an unloadable layout are errors; everything else degrades into the summaries.
func (s *Service) Optimize(ctx context.Context, req domain.OptimizationRequest) (*domain.OptimizationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	optType, params, err := s.validateRequest(req)
	if err != nil {
		OptimizationRunsTotal.WithLabelValues("unknown", "invalid").Inc()
		return nil, err
	}

	traceID := TraceIDFromContext(ctx)
	storeID := req.StoreID

	store, err := s.layoutRepo.GetStore(ctx, storeID)
	if err != nil {
		OptimizationRunsTotal.WithLabelValues(string(optType), "failed").Inc()
		if errors.Is(err, domain.ErrStoreNotFound) {
			return nil, fmt.Errorf("store %d: %w", storeID, domain.ErrStoreNotFound)
		}
		return nil, fmt.Errorf("%w: failed to load store: %v", domain.ErrLayoutUnavailable, err)
	}

	cfg := s.loadConfig(ctx, storeID)
	// negative means no cap
	maxChanges := -1
	if cfg.DefaultMaxChanges > 0 {
		maxChanges = cfg.DefaultMaxChanges
	}
	if params.MaxChanges != nil {
		maxChanges = *params.MaxChanges
	}

	logger.Info("optimization started",
		"trace_id", traceID,
		"store_id", storeID,
		"store", store.Name,
		"optimization_type", optType,
		"max_changes", maxChanges,
	)

	done := s.stage(ctx, storeID, stageLoading)
	in, err := s.load(ctx, req, cfg)
	done()
	if err != nil {
		OptimizationRunsTotal.WithLabelValues(string(optType), "failed").Inc()
		logger.Error("optimization aborted", "trace_id", traceID, "store_id", storeID, "error", err)
		return nil, err
	}

	done = s.stage(ctx, storeID, stageAnalyzing)
	engine := vmd.NewEngine(cfg.VMD)
	vmdIn := vmd.Inputs{Flow: in.flow, Association: in.assoc, Performance: in.productPerf}
	current := engine.Evaluate(in.layout, vmdIn)
	done()

	done = s.stage(ctx, storeID, stageCandidateGeneration)
	gen := newGenerator(cfg, in, engine.HighValue(in.layout.Products, in.productPerf), params)
	cands, counts := gen.generate(optType)
	done()

	done = s.stage(ctx, storeID, stageScoring)
	predictor := impact.NewPredictor(cfg.Impact)
	scored, dropped := s.score(in, cands, predictor, engine, vmdIn, current, params, cfg)
	counts.filtered += dropped
	final, superseded, truncated := rank(scored, maxChanges)
	counts.filtered += superseded
	counts.truncated = truncated
	done()

	done = s.stage(ctx, storeID, stageNarrative)
	applyTemplates(in.layout, final)
	narrativeOutcome := s.refine(ctx, storeID, cfg, final)
	done()

	result := domain.OptimizationResult{
		ID:               s.newID(),
		StoreID:          storeID,
		CreatedAt:        s.now().UTC(),
		OptimizationType: optType,
		FurnitureChanges: []domain.OptimizationCandidate{},
		ProductChanges:   []domain.OptimizationCandidate{},
		Status:           domain.ResultPending,
	}
	for _, c := range final {
		if c.EntityType == domain.EntityFurniture {
			result.FurnitureChanges = append(result.FurnitureChanges, c)
		} else {
			result.ProductChanges = append(result.ProductChanges, c)
		}
	}
	result.Summary = buildResultSummary(final, counts, current, in.degraded, narrativeOutcome)

	done = s.stage(ctx, storeID, stagePersisting)
	result.Summary.Persistence = s.persist(ctx, result)
	done()

	counts.record(final)
	status := "success"
	if len(in.degraded) > 0 {
		status = "degraded"
	}
	OptimizationRunsTotal.WithLabelValues(string(optType), status).Inc()

	logger.Info("optimization completed",
		"trace_id", traceID,
		"store_id", storeID,
		"result_id", result.ID,
		"candidates", len(final),
		"skipped", counts.skipped,
		"truncated", counts.truncated,
		"degraded", in.degraded,
		"vmd_score", current.Score,
	)

	resp := buildResponse(result, in, current)
	return &resp, nil
}

// Latest returns the most recently persisted result for a store.
func (s *Service) Latest(ctx context.Context, storeID uint64) (*domain.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if s.resultRepo == nil {
		return nil, domain.ErrResultNotFound
	}

	rec, ok, err := s.resultRepo.LatestResult(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest result: %w", err)
	}
	if !ok {
		return nil, domain.ErrResultNotFound
	}

	var result domain.OptimizationResult
	if err := json.Unmarshal(rec.Payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result payload: %w", err)
	}
	// lifecycle is owned outside the pipeline; the column wins over the payload
	result.Status = domain.ResultStatus(rec.Status)
	return &result, nil
}

func (s *Service) validateRequest(req domain.OptimizationRequest) (domain.OptimizationType, domain.OptimizationParameters, error) {
	var params domain.OptimizationParameters
	if err := s.validate.Struct(req); err != nil {
		return "", params, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	optType, err := domain.ParseOptimizationType(req.OptimizationType)
	if err != nil {
		return "", params, err
	}
	if req.Parameters != nil {
		params = *req.Parameters
	}
	if params.MaxChanges != nil && *params.MaxChanges < 0 {
		return "", params, fmt.Errorf("%w: max_changes must not be negative", domain.ErrInvalidRequest)
	}
	return optType, params, nil
}

// stage logs the start of a pipeline stage and returns the func that records its duration.
func (s *Service) stage(ctx context.Context, storeID uint64, name string) func() {
	start := time.Now()
	logger.Debug("optimization stage",
		"trace_id", TraceIDFromContext(ctx),
		"store_id", storeID,
		"stage", name,
	)
	return func() {
		OptimizationStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

func (s *Service) persist(ctx context.Context, result domain.OptimizationResult) domain.Outcome {
	if s.resultRepo == nil {
		return domain.Degraded("result store not configured")
	}

	result.Summary.Persistence = domain.Ok()
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Error("failed to encode optimization result", "store_id", result.StoreID, "error", err)
		return domain.Failed(err.Error())
	}

	rec := domain.OptimizationResultRecord{
		ID:               result.ID,
		StoreID:          result.StoreID,
		OptimizationType: string(result.OptimizationType),
		Status:           string(result.Status),
		CandidateCount:   len(result.FurnitureChanges) + len(result.ProductChanges),
		Payload:          payload,
		CreatedAt:        result.CreatedAt,
	}
	if err := s.resultRepo.SaveResult(ctx, rec); err != nil {
		logger.Error("failed to persist optimization result",
			"trace_id", TraceIDFromContext(ctx),
			"store_id", result.StoreID,
			"result_id", result.ID,
			"error", err,
		)
		return domain.Failed(err.Error())
	}
	return domain.Ok()
}
