package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/dogapi/db"
	"github.com/padraicbc/dogapi/pipeline"
	"github.com/padraicbc/dogapi/stats"
)

type dailyRacesResponse struct {
	Date       string          `json:"date"`
	ComputedAt string          `json:"computedAt"`
	Data       json.RawMessage `json:"data"`
}

// DailyRaces returns the most recently computed enriched document. 404 until
// a compute has run.
func (h *Handler) DailyRaces(c echo.Context) error {
	latest, err := db.LatestDailyRaces(c.Request().Context(), h.db)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if latest == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no daily races computed yet")
	}

	return c.JSON(http.StatusOK, dailyRacesResponse{
		Date:       latest.RaceDate,
		ComputedAt: latest.ComputedAt.Format("2006-01-02T15:04:05Z07:00"),
		Data:       latest.Data,
	})
}

// TodayAll computes today's enriched document live, without storing it.
// Slow: it hits the upstream API for every meeting.
func (h *Handler) TodayAll(c echo.Context) error {
	res, err := pipeline.Compute(c.Request().Context(), h.deps)
	if err != nil {
		zap.L().Error("live compute failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch all race data")
	}
	return c.JSON(http.StatusOK, res.Data)
}

// RankRace re-runs the presentation layer over a posted enriched race. The
// dashboard uses it to recompute badges and tags after a manual scratch
// toggle; the computation is stateless and idempotent.
func (h *Handler) RankRace(c echo.Context) error {
	var race stats.Race
	if err := c.Bind(&race); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stats.RankRace(&race)
	return c.JSON(http.StatusOK, race)
}

// TriggerCompute starts a full daily compute in the background and returns
// immediately. The finished document replaces the stored one for today.
func (h *Handler) TriggerCompute(c echo.Context) error {
	go func() {
		// Detached from the request: the compute outlives the HTTP call.
		if _, err := pipeline.Daily(context.Background(), h.deps); err != nil {
			zap.L().Error("triggered compute failed", zap.Error(err))
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]string{"status": "compute started"})
}
