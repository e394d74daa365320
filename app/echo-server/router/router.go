package router

import (
	"net/http"

	"storeOptimizer/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupOptimizationRoutes(api *echo.Group, handler *rest.OptimizationHandler) {
	stores := api.Group("/stores/:store_id/optimizations")

	stores.POST("", handler.Optimize)
	stores.GET("/latest", handler.Latest)
}

func SetupLayoutRoutes(api *echo.Group, handler *rest.LayoutHandler) {
	api.GET("/stores/:store_id/layout", handler.GetLayout)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.TuningAdminHandler) {
	admin := api.Group("/admin/stores/:store_id")

	admin.GET("/tuning", handler.GetTuning)
	admin.PUT("/tuning", handler.UpsertTuning)
	admin.DELETE("/environment-cache", handler.InvalidateEnvironment)
}

func SetupMetricsRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}
