package rest

import (
	"context"
	"net/http"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TuningRepository interface {
	GetTuning(ctx context.Context, storeID uint64) (domain.StoreTuning, bool, error)
	UpsertTuning(ctx context.Context, t domain.StoreTuning) error
}

type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, storeID uint64) (int, error)
}

type TuningAdminHandler struct {
	tuningRepo TuningRepository
	// nil when redis caching is disabled
	cache    SnapshotInvalidator
	validate *validator.Validate
}

func NewTuningAdminHandler(tuningRepo TuningRepository, cache SnapshotInvalidator) *TuningAdminHandler {
	return &TuningAdminHandler{
		tuningRepo: tuningRepo,
		cache:      cache,
		validate:   validator.New(),
	}
}

type upsertTuningRequest struct {
	FlowWindowDays        int     `json:"flow_window_days" validate:"min=0,max=365"`
	AssociationWindowDays int     `json:"association_window_days" validate:"min=0,max=730"`
	BottleneckThreshold   float64 `json:"bottleneck_threshold" validate:"min=0"`
	DwellCVThreshold      float64 `json:"dwell_cv_threshold" validate:"min=0"`
	DeadZoneFraction      float64 `json:"dead_zone_fraction" validate:"min=0,max=1"`
	MinSupport            float64 `json:"min_support" validate:"min=0,max=1"`
	MinTransactions       int     `json:"min_transactions" validate:"min=0"`
	MaxRevenueDeltaPct    float64 `json:"max_revenue_delta_pct" validate:"min=0"`
	MaxConversionDeltaPct float64 `json:"max_conversion_delta_pct" validate:"min=0"`
	DefaultMaxChanges     int     `json:"default_max_changes" validate:"min=0,max=1000"`
}

// GET /api/v1/admin/stores/:store_id/tuning
func (h *TuningAdminHandler) GetTuning(c echo.Context) error {
	storeID, err := storeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	t, ok, err := h.tuningRepo.GetTuning(c.Request().Context(), storeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "tuning not found"})
	}

	return c.JSON(http.StatusOK, t)
}

// PUT /api/v1/admin/stores/:store_id/tuning
// zero fields fall back to the optimizer defaults
func (h *TuningAdminHandler) UpsertTuning(c echo.Context) error {
	storeID, err := storeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var body upsertTuningRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid body: " + err.Error()})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	t := domain.StoreTuning{
		StoreID:               storeID,
		FlowWindowDays:        body.FlowWindowDays,
		AssociationWindowDays: body.AssociationWindowDays,
		BottleneckThreshold:   body.BottleneckThreshold,
		DwellCVThreshold:      body.DwellCVThreshold,
		DeadZoneFraction:      body.DeadZoneFraction,
		MinSupport:            body.MinSupport,
		MinTransactions:       body.MinTransactions,
		MaxRevenueDeltaPct:    body.MaxRevenueDeltaPct,
		MaxConversionDeltaPct: body.MaxConversionDeltaPct,
		DefaultMaxChanges:     body.DefaultMaxChanges,
	}
	if err := h.tuningRepo.UpsertTuning(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	logger.Info("store tuning updated", "store_id", storeID)

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}

// DELETE /api/v1/admin/stores/:store_id/environment-cache
func (h *TuningAdminHandler) InvalidateEnvironment(c echo.Context) error {
	storeID, err := storeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if h.cache == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "ok",
			"removed": 0,
		})
	}

	n, err := h.cache.Invalidate(c.Request().Context(), storeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"removed": n,
	})
}
