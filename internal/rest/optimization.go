package rest

import (
	"context"
	"net/http"
	"time"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OptimizationHandler struct {
		validate *validator.Validate
		svc      OptimizationService
		timeout  time.Duration
		now      func() time.Time
	}

	OptimizationService interface {
		Optimize(ctx context.Context, req domain.OptimizationRequest) (*domain.OptimizationResponse, error)
		Latest(ctx context.Context, storeID uint64) (*domain.OptimizationResult, error)
	}

	OptimizeRequest struct {
		OptimizationType string                         `json:"optimization_type" validate:"required,oneof=furniture product both"`
		Parameters       *domain.OptimizationParameters `json:"parameters"`
		// YYYY-MM-DD; pins the day, the time of day stays the current one
		Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	}
)

func NewOptimizationHandler(svc OptimizationService, timeout time.Duration) *OptimizationHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OptimizationHandler{
		validate: validator.New(),
		svc:      svc,
		timeout:  timeout,
		now:      time.Now,
	}
}

// atTimeOfDay puts day on the clock of now so a pinned day keeps a realistic time bucket.
func atTimeOfDay(day, now time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}

// POST /api/v1/stores/:store_id/optimizations
func (h *OptimizationHandler) Optimize(c echo.Context) error {
	storeID, err := storeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var body OptimizeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	req := domain.OptimizationRequest{
		StoreID:          storeID,
		OptimizationType: body.OptimizationType,
		Parameters:       body.Parameters,
	}
	if body.Date != "" {
		d, err := time.Parse(time.DateOnly, body.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		d = atTimeOfDay(d, h.now())
		req.Date = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, err := h.svc.Optimize(ctx, req)
	if err != nil {
		logger.Warn("optimization rejected", "store_id", storeID, "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(resp))
}

// GET /api/v1/stores/:store_id/optimizations/latest
func (h *OptimizationHandler) Latest(c echo.Context) error {
	storeID, err := storeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.svc.Latest(ctx, storeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
