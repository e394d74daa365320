package rest

import (
	"fmt"
	"strconv"

	"storeOptimizer/domain"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func storeIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("store_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid store_id %q: %w", c.Param("store_id"), domain.ErrInvalidRequest)
	}
	return id, nil
}
