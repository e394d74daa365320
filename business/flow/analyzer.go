package flow

import (
	"context"
	"fmt"
	"time"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

type ZoneRepository interface {
	ListZones(ctx context.Context, storeID uint64) ([]domain.Zone, error)
}

type TransitionRepository interface {
	ListTransitions(ctx context.Context, storeID uint64, since time.Time) ([]domain.ZoneTransition, error)
	CountTransactions(ctx context.Context, storeID uint64, since time.Time) (int, error)
}

type Analyzer struct {
	zoneRepo       ZoneRepository
	transitionRepo TransitionRepository
	now            func() time.Time
}

func NewAnalyzer(zoneRepo ZoneRepository, transitionRepo TransitionRepository) *Analyzer {
	return &Analyzer{
		zoneRepo:       zoneRepo,
		transitionRepo: transitionRepo,
		now:            time.Now,
	}
}

// Analyze loads the trailing window and runs Compute. Missing or failed sources give
// the empty analysis with Sufficient=false; only a cancelled context is an error.
func (a *Analyzer) Analyze(ctx context.Context, storeID uint64, cfg Config) (domain.FlowAnalysis, error) {
	cfg = cfg.withDefaults()
	if err := ctx.Err(); err != nil {
		return domain.EmptyFlowAnalysis(storeID, cfg.WindowDays, "cancelled"), fmt.Errorf("context error: %w", err)
	}

	end := cfg.AsOf
	if end.IsZero() {
		end = a.now()
	}
	since := end.AddDate(0, 0, -cfg.WindowDays)

	zones, err := a.zoneRepo.ListZones(ctx, storeID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.EmptyFlowAnalysis(storeID, cfg.WindowDays, "cancelled"), fmt.Errorf("context error: %w", ctxErr)
		}
		logger.Warn("flow: zones unavailable", "store_id", storeID, "error", err)
		return domain.EmptyFlowAnalysis(storeID, cfg.WindowDays, "zones unavailable"), nil
	}

	transitions, err := a.transitionRepo.ListTransitions(ctx, storeID, since)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.EmptyFlowAnalysis(storeID, cfg.WindowDays, "cancelled"), fmt.Errorf("context error: %w", ctxErr)
		}
		logger.Warn("flow: transitions unavailable", "store_id", storeID, "error", err)
		transitions = nil
	}

	txCount, err := a.transitionRepo.CountTransactions(ctx, storeID, since)
	if err != nil {
		logger.Warn("flow: transaction count unavailable", "store_id", storeID, "error", err)
		txCount = 0
	}

	res := Compute(storeID, cfg, zones, transitions, txCount)
	logger.Debug("flow analysis computed",
		"store_id", storeID,
		"transitions", res.Summary.TransitionCount,
		"bottlenecks", len(res.Bottlenecks),
		"dead_zones", len(res.DeadZones),
		"health_score", res.HealthScore,
	)
	return res, nil
}

// Compute is the pure analysis over already-loaded zones and transitions.
func Compute(storeID uint64, cfg Config, zones []domain.Zone, transitions []domain.ZoneTransition, transactions int) domain.FlowAnalysis {
	cfg = cfg.withDefaults()

	g := buildGraph(zones, transitions)
	if len(g.used) == 0 {
		res := domain.EmptyFlowAnalysis(storeID, cfg.WindowDays, "no zone transitions in window")
		res.Summary.ZoneCount = len(zones)
		return res
	}

	matrix := g.probabilityMatrix()
	stats := g.zoneStats()
	paths := keyPaths(g, matrix, cfg)
	bottlenecks := findBottlenecks(zones, stats, cfg)
	dead := findDeadZones(zones, stats, cfg)

	visitCount, avgLen, avgDur := g.visitStats()
	entries := g.totalEntries()
	if entries == 0 {
		entries = visitCount
	}
	conversion := 0.0
	if entries > 0 {
		conversion = domain.Clamp(float64(transactions)/float64(entries), 0, 1)
	}

	quality := domain.DataQuality{Sufficient: true}
	if len(g.used) < cfg.MinTransitions {
		quality = domain.DataQuality{
			Sufficient: false,
			Reason:     fmt.Sprintf("only %d transitions in window", len(g.used)),
		}
	}

	return domain.FlowAnalysis{
		StoreID:    storeID,
		WindowDays: cfg.WindowDays,
		Summary: domain.FlowSummary{
			ZoneCount:          len(zones),
			TransitionCount:    len(g.used),
			VisitCount:         visitCount,
			EntryCount:         g.totalEntries(),
			AvgPathLength:      avgLen,
			AvgPathDurationSec: avgDur,
			ConversionRate:     conversion,
		},
		Matrix:        matrix,
		KeyPaths:      paths,
		Bottlenecks:   bottlenecks,
		DeadZones:     dead,
		Opportunities: findOpportunities(zones, stats, paths, bottlenecks, dead),
		ZoneStats:     stats,
		HealthScore:   healthScore(zones, bottlenecks, dead),
		DataQuality:   quality,
	}
}
