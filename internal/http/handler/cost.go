package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

type costListResponse struct {
	Success bool               `json:"success"`
	Records []model.CostRecord `json:"records"`
}

type costSummaryResponse struct {
	Success bool              `json:"success"`
	Summary model.CostSummary `json:"summary"`
}

// ListCosts godoc
// @Summary List cost ledger records
// @Tags costs
// @Param start query string false "RFC3339 lower bound"
// @Param end query string false "RFC3339 upper bound"
// @Success 200 {object} costListResponse
// @Router /costs [get]
func ListCosts(costSvc service.CostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, ok := timeRange(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_RANGE", "start and end must be RFC3339 timestamps")
		}
		recs, err := costSvc.List(c.UserContext(), start, end)
		if err != nil {
			return writeServiceError(c, err)
		}
		if recs == nil {
			recs = []model.CostRecord{}
		}
		return c.JSON(costListResponse{Success: true, Records: recs})
	}
}

// CostSummary godoc
// @Summary Aggregate cost ledger records
// @Tags costs
// @Param start query string false "RFC3339 lower bound"
// @Param end query string false "RFC3339 upper bound"
// @Success 200 {object} costSummaryResponse
// @Router /costs/summary [get]
func CostSummary(costSvc service.CostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, ok := timeRange(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_RANGE", "start and end must be RFC3339 timestamps")
		}
		sum, err := costSvc.Summary(c.UserContext(), start, end)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(costSummaryResponse{Success: true, Summary: *sum})
	}
}

func timeRange(c *fiber.Ctx) (start, end *time.Time, ok bool) {
	parse := func(key string) (*time.Time, bool) {
		v := c.Query(key)
		if v == "" {
			return nil, true
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, false
		}
		return &t, true
	}
	if start, ok = parse("start"); !ok {
		return nil, nil, false
	}
	if end, ok = parse("end"); !ok {
		return nil, nil, false
	}
	return start, end, true
}
