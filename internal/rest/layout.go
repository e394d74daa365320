package rest

import (
	"context"
	"net/http"

	"storeOptimizer/business/layout"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type LayoutService interface {
	GetLayout(ctx context.Context, storeID uint64) (*layout.View, error)
}

type LayoutHandler struct {
	svc LayoutService
}

func NewLayoutHandler(svc LayoutService) *LayoutHandler {
	return &LayoutHandler{svc: svc}
}

// GET /api/v1/stores/:store_id/layout
func (h *LayoutHandler) GetLayout(c echo.Context) error {
	storeID, err := storeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	view, err := h.svc.GetLayout(c.Request().Context(), storeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}
