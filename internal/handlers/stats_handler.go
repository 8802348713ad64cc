package handlers

import (
	"net/http"

	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/labstack/echo/v4"
)

// StatsHandler serves posting statistics
type StatsHandler struct {
	blastRepository repositories.BlastRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(blastRepo repositories.BlastRepository) *StatsHandler {
	return &StatsHandler{blastRepository: blastRepo}
}

// RegisterStatsRoutes registers the stats endpoint
func (h *StatsHandler) RegisterStatsRoutes(g *echo.Group) {
	g.GET("/stats", h.GetStats)
}

// GetStats returns the most prolific authors and the per-day posting
// histogram.
func (h *StatsHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	topAuthors, err := h.blastRepository.TopAuthors(ctx, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	byDay, err := h.blastRepository.CountByDay(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"top_authors": topAuthors,
			"by_day":      byDay,
		},
	})
}
