//go:build !integration

package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storeOptimizer/business/environment"
	"storeOptimizer/business/layout"
	"storeOptimizer/domain"
	"storeOptimizer/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOptimizationService struct {
	lastReq domain.OptimizationRequest
	resp    *domain.OptimizationResponse
	latest  *domain.OptimizationResult
	err     error
}

func (f *fakeOptimizationService) Optimize(_ context.Context, req domain.OptimizationRequest) (*domain.OptimizationResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeOptimizationService) Latest(_ context.Context, storeID uint64) (*domain.OptimizationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

type fakeLayoutService struct {
	view *layout.View
	err  error
}

func (f *fakeLayoutService) GetLayout(_ context.Context, _ uint64) (*layout.View, error) {
	return f.view, f.err
}

type fakeTuningRepo struct {
	stored map[uint64]domain.StoreTuning
	err    error
}

func (f *fakeTuningRepo) GetTuning(_ context.Context, storeID uint64) (domain.StoreTuning, bool, error) {
	if f.err != nil {
		return domain.StoreTuning{}, false, f.err
	}
	t, ok := f.stored[storeID]
	return t, ok, nil
}

func (f *fakeTuningRepo) UpsertTuning(_ context.Context, t domain.StoreTuning) error {
	if f.err != nil {
		return f.err
	}
	f.stored[t.StoreID] = t
	return nil
}

type fakeInvalidator struct {
	removed int
	calls   []uint64
}

func (f *fakeInvalidator) Invalidate(_ context.Context, storeID uint64) (int, error) {
	f.calls = append(f.calls, storeID)
	return f.removed, nil
}

func newServer(opt *OptimizationHandler, lay *LayoutHandler, admin *TuningAdminHandler) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	api := e.Group("/api/v1")
	if opt != nil {
		api.POST("/stores/:store_id/optimizations", opt.Optimize)
		api.GET("/stores/:store_id/optimizations/latest", opt.Latest)
	}
	if lay != nil {
		api.GET("/stores/:store_id/layout", lay.GetLayout)
	}
	if admin != nil {
		api.GET("/admin/stores/:store_id/tuning", admin.GetTuning)
		api.PUT("/admin/stores/:store_id/tuning", admin.UpsertTuning)
		api.DELETE("/admin/stores/:store_id/environment-cache", admin.InvalidateEnvironment)
	}
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOptimize_Created(t *testing.T) {
	svc := &fakeOptimizationService{resp: &domain.OptimizationResponse{
		Success: true,
		Result:  domain.OptimizationResult{ID: "res-1", StoreID: 7},
	}}
	e := newServer(NewOptimizationHandler(svc, time.Second), nil, nil)

	rec := do(e, http.MethodPost, "/api/v1/stores/7/optimizations",
		`{"optimization_type":"both","parameters":{"max_changes":3,"prioritize_revenue":true},"date":"2024-12-21"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "res-1")
	assert.Equal(t, uint64(7), svc.lastReq.StoreID)
	assert.Equal(t, "both", svc.lastReq.OptimizationType)
	require.NotNil(t, svc.lastReq.Parameters)
	require.NotNil(t, svc.lastReq.Parameters.MaxChanges)
	assert.Equal(t, 3, *svc.lastReq.Parameters.MaxChanges)
	assert.True(t, svc.lastReq.Parameters.PrioritizeRevenue)
	require.NotNil(t, svc.lastReq.Date)
	assert.Equal(t, "2024-12-21", svc.lastReq.Date.Format(time.DateOnly))
}

func TestOptimize_PinnedDateKeepsTimeOfDay(t *testing.T) {
	svc := &fakeOptimizationService{resp: &domain.OptimizationResponse{Success: true}}
	h := NewOptimizationHandler(svc, time.Second)
	h.now = func() time.Time { return time.Date(2026, 5, 16, 15, 30, 0, 0, time.UTC) }
	e := newServer(h, nil, nil)

	rec := do(e, http.MethodPost, "/api/v1/stores/7/optimizations",
		`{"optimization_type":"product","date":"2024-12-21"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, svc.lastReq.Date)
	assert.Equal(t, time.Date(2024, 12, 21, 15, 30, 0, 0, time.UTC), *svc.lastReq.Date)
	assert.Equal(t, "afternoon", environment.TimeBucket(*svc.lastReq.Date))
	assert.Equal(t, environment.TemporalImpact(time.Date(2024, 12, 21, 15, 0, 0, 0, time.UTC)),
		environment.TemporalImpact(*svc.lastReq.Date))
}

func TestOptimize_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"non numeric store", "/api/v1/stores/abc/optimizations", `{"optimization_type":"both"}`},
		{"zero store", "/api/v1/stores/0/optimizations", `{"optimization_type":"both"}`},
		{"unknown type", "/api/v1/stores/1/optimizations", `{"optimization_type":"lighting"}`},
		{"missing type", "/api/v1/stores/1/optimizations", `{}`},
		{"bad date", "/api/v1/stores/1/optimizations", `{"optimization_type":"product","date":"21/12/2024"}`},
		{"malformed json", "/api/v1/stores/1/optimizations", `{"optimization_type":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeOptimizationService{}
			e := newServer(NewOptimizationHandler(svc, time.Second), nil, nil)

			rec := do(e, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, svc.lastReq.StoreID, "service must not be called")
		})
	}
}

func TestOptimize_ServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("store 7: %w", domain.ErrStoreNotFound), http.StatusNotFound},
		{fmt.Errorf("no zones: %w", domain.ErrLayoutUnavailable), http.StatusUnprocessableEntity},
		{fmt.Errorf("max_changes: %w", domain.ErrInvalidRequest), http.StatusBadRequest},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &fakeOptimizationService{err: tt.err}
			e := newServer(NewOptimizationHandler(svc, time.Second), nil, nil)

			rec := do(e, http.MethodPost, "/api/v1/stores/7/optimizations", `{"optimization_type":"furniture"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLatest(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeOptimizationService{latest: &domain.OptimizationResult{ID: "res-9", Status: domain.ResultApplied}}
		e := newServer(NewOptimizationHandler(svc, 0), nil, nil)

		rec := do(e, http.MethodGet, "/api/v1/stores/3/optimizations/latest", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "res-9")
	})

	t.Run("none stored", func(t *testing.T) {
		svc := &fakeOptimizationService{err: domain.ErrResultNotFound}
		e := newServer(NewOptimizationHandler(svc, 0), nil, nil)

		rec := do(e, http.MethodGet, "/api/v1/stores/3/optimizations/latest", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetLayout(t *testing.T) {
	view := &layout.View{
		Store:  domain.Store{ID: 2, Name: "Downtown"},
		Counts: layout.Counts{Zones: 4, Furniture: 9},
	}
	e := newServer(nil, NewLayoutHandler(&fakeLayoutService{view: view}), nil)

	rec := do(e, http.MethodGet, "/api/v1/stores/2/layout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Downtown")

	e = newServer(nil, NewLayoutHandler(&fakeLayoutService{err: domain.ErrStoreNotFound}), nil)
	rec = do(e, http.MethodGet, "/api/v1/stores/2/layout", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTuningAdmin(t *testing.T) {
	repo := &fakeTuningRepo{stored: map[uint64]domain.StoreTuning{}}
	cache := &fakeInvalidator{removed: 3}
	e := newServer(nil, nil, NewTuningAdminHandler(repo, cache))

	rec := do(e, http.MethodGet, "/api/v1/admin/stores/5/tuning", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, "/api/v1/admin/stores/5/tuning", `{"flow_window_days":14,"default_max_changes":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 14, repo.stored[5].FlowWindowDays)
	assert.Equal(t, 5, repo.stored[5].DefaultMaxChanges)

	rec = do(e, http.MethodGet, "/api/v1/admin/stores/5/tuning", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"flow_window_days":14`)

	rec = do(e, http.MethodPut, "/api/v1/admin/stores/5/tuning", `{"dead_zone_fraction":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/api/v1/admin/stores/5/environment-cache", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"removed":3`)
	assert.Equal(t, []uint64{5}, cache.calls)
}

func TestTuningAdmin_NoCache(t *testing.T) {
	repo := &fakeTuningRepo{stored: map[uint64]domain.StoreTuning{}}
	e := newServer(nil, nil, NewTuningAdminHandler(repo, nil))

	rec := do(e, http.MethodDelete, "/api/v1/admin/stores/5/environment-cache", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"removed":0`)
}
