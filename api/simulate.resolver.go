package api

import (
	"context"
	"errors"
	"time"

	"driftbacktest/internal"
	"driftbacktest/internal/app"
	"driftbacktest/internal/calculator"
	"driftbacktest/internal/domain"

	"github.com/gin-gonic/gin"
)

type ScheduleEntryInput struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type SimulateRequest struct {
	Schedule       []ScheduleEntryInput `json:"schedule"`
	InitialCapital float64              `json:"initialCapital"`
}

type SimulateResponse struct {
	RunID          string                          `json:"runId"`
	CapitalHistory domain.CapitalHistory           `json:"capitalHistory"`
	ReportsByYear  map[int][]domain.DriftReportRow `json:"reportsByYear"`
	Metrics        *calculator.MetricsSummary      `json:"metrics"`
}

func (m ApiHandler) simulate(c *gin.Context) {
	profile, endProfile := domain.NewProfile()
	ctx := context.WithValue(c.Request.Context(), domain.ContextProfileKey, profile)
	defer func() {
		endProfile()
		profile.Print()
	}()

	var requestBody SimulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	schedule := domain.Schedule{}
	for _, entry := range requestBody.Schedule {
		date, err := time.Parse(time.DateOnly, entry.Date)
		if err != nil {
			returnErrorJsonCode(internal.DataValidationError{
				Reason: "unparseable date " + entry.Date,
			}, c, 400)
			return
		}
		schedule = append(schedule, domain.ScheduleEntry{
			Ticker: entry.Ticker,
			Date:   date,
			Weight: entry.Weight,
		})
	}
	schedule = schedule.NormalizeWeights().Sorted()

	result, err := m.SimulationHandler.Simulate(ctx, app.SimulationInput{
		Schedule:       schedule,
		InitialCapital: requestBody.InitialCapital,
	})
	var aborted app.SimulationAbortedError
	if errors.As(err, &aborted) {
		returnErrorJsonCode(err, c, 422)
		return
	} else if err != nil {
		returnErrorJson(err, c)
		return
	}
	profile.Add("simulation finished")

	summary, err := calculator.CalculateMetrics(result.History)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	profile.Add("metrics calculated")

	c.JSON(200, SimulateResponse{
		RunID:          result.RunID.String(),
		CapitalHistory: result.History,
		ReportsByYear:  result.ReportsByYear,
		Metrics:        summary,
	})
}
