package optimization

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

const (
	componentLayout      = "layout"
	componentPerformance = "performance"
	componentEnvironment = "environment"
	componentFlow        = "flow"
	componentAssociation = "association"
)

var optionalComponents = []string{componentPerformance, componentEnvironment, componentFlow, componentAssociation}

// pipelineInputs is everything the pipeline reads after the join.
type pipelineInputs struct {
	layout      domain.Layout
	zonePerf    map[uint64]domain.ZonePerformance
	productPerf map[uint64]domain.ProductPerformance
	env         domain.EnvironmentSnapshot
	flow        domain.FlowAnalysis
	assoc       domain.AssociationAnalysis
	degraded    []string
}

// load runs the layout, environment, flow and association loads concurrently and
// joins them within cfg.JoinTimeout. Components that fail or miss the join keep their
// neutral default; writes that arrive after the join are discarded. Only the layout
// is required.
func (s *Service) load(ctx context.Context, req domain.OptimizationRequest, cfg Config) (pipelineInputs, error) {
	storeID := req.StoreID
	at := s.now()
	if req.Date != nil {
		at = *req.Date
	}
	traceID := TraceIDFromContext(ctx)

	joinCtx, cancel := context.WithTimeout(ctx, cfg.JoinTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(joinCtx)

	var (
		mu        sync.Mutex
		joined    bool
		layoutErr error
		finished  = make(map[string]bool)
		out       = pipelineInputs{
			zonePerf:    make(map[uint64]domain.ZonePerformance),
			productPerf: make(map[uint64]domain.ProductPerformance),
			env:         domain.NeutralEnvironment(storeID, at),
			flow:        domain.EmptyFlowAnalysis(storeID, cfg.Flow.WindowDays, "flow analysis did not complete"),
			assoc:       domain.EmptyAssociationAnalysis(storeID, cfg.Association.WindowDays, "association mining did not complete"),
		}
	)

	publish := func(component string, write func()) {
		mu.Lock()
		defer mu.Unlock()
		if joined {
			logger.Debug("discarding late component result", "trace_id", traceID, "store_id", storeID, "component", component)
			return
		}
		write()
		finished[component] = true
	}

	g.Go(func() error {
		layout, err := s.layoutRepo.GetLayout(gctx, storeID)
		if err == nil && len(layout.Zones) == 0 {
			err = errors.New("store has no zones")
		}
		if err != nil {
			mu.Lock()
			layoutErr = err
			mu.Unlock()
			return fmt.Errorf("failed to load layout: %w", err)
		}
		publish(componentLayout, func() { out.layout = layout })

		since := at.AddDate(0, 0, -cfg.PerformanceWindowDays)
		zp, zerr := s.perfRepo.ZonePerformance(gctx, storeID, since)
		pp, perr := s.perfRepo.ProductPerformance(gctx, storeID, since)
		if zerr != nil || perr != nil {
			logger.Warn("performance baselines unavailable",
				"trace_id", traceID, "store_id", storeID, "zone_error", zerr, "product_error", perr)
			return nil
		}
		publish(componentPerformance, func() {
			for _, z := range zp {
				out.zonePerf[z.ZoneID] = z
			}
			for _, p := range pp {
				out.productPerf[p.ProductID] = p
			}
		})
		return nil
	})

	g.Go(func() error {
		snap, err := s.envLoader.Load(gctx, storeID, &at)
		if err != nil {
			logger.Warn("environment context unavailable", "trace_id", traceID, "store_id", storeID, "error", err)
			return nil
		}
		publish(componentEnvironment, func() { out.env = snap })
		return nil
	})

	g.Go(func() error {
		flowCfg := cfg.Flow
		flowCfg.AsOf = at
		fa, err := s.flowAnalyzer.Analyze(gctx, storeID, flowCfg)
		if err != nil {
			logger.Warn("flow analysis unavailable", "trace_id", traceID, "store_id", storeID, "error", err)
			return nil
		}
		publish(componentFlow, func() { out.flow = fa })
		return nil
	})

	g.Go(func() error {
		assocCfg := cfg.Association
		assocCfg.AsOf = at
		aa, err := s.assocMiner.Mine(gctx, storeID, assocCfg)
		if err != nil {
			logger.Warn("association mining unavailable", "trace_id", traceID, "store_id", storeID, "error", err)
			return nil
		}
		publish(componentAssociation, func() { out.assoc = aa })
		return nil
	})

	waitDone := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-joinCtx.Done():
	}

	mu.Lock()
	joined = true
	res := out
	lErr := layoutErr
	layoutDone := finished[componentLayout]
	for _, c := range optionalComponents {
		if !finished[c] {
			res.degraded = append(res.degraded, c)
		}
	}
	mu.Unlock()

	if !layoutDone {
		if lErr != nil {
			if errors.Is(lErr, domain.ErrStoreNotFound) {
				return res, fmt.Errorf("store %d: %w", storeID, domain.ErrStoreNotFound)
			}
			return res, fmt.Errorf("%w: %v", domain.ErrLayoutUnavailable, lErr)
		}
		return res, fmt.Errorf("%w: layout load did not finish: %v", domain.ErrLayoutUnavailable, joinCtx.Err())
	}

	for _, c := range res.degraded {
		OptimizationDegradedComponentsTotal.WithLabelValues(c).Inc()
		logger.Warn("component degraded to default", "trace_id", traceID, "store_id", storeID, "component", c)
	}
	return res, nil
}
