// Package health classifies pipeline freshness from the audit trail
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/snak3gh0st/projetustgov/internal/repositories/extractionlog"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// One missed daily run plus an hour of slack before degrading
const (
	healthyWindow  = 25 * time.Hour
	degradedWindow = 48 * time.Hour
)

// Report is the health-check surface
type Report struct {
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastStatus string     `json:"last_status,omitempty"`
}

// Checker derives pipeline health from the most recent audit row
type Checker struct {
	logs   *extractionlog.Repository
	logger ectologger.Logger
	now    func() time.Time
}

func NewChecker(logs *extractionlog.Repository, logger ectologger.Logger) *Checker {
	return &Checker{logs: logs, logger: logger, now: time.Now}
}

// Check classifies freshness: healthy when the last successful-ish run is
// under 25 hours old, degraded under 48, unhealthy otherwise or when no
// run exists or the last run failed.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "health.Checker.Check")
	defer span.End()

	last, err := c.logs.MostRecent(ctx)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return &Report{
			Status:  StatusUnhealthy,
			Message: "no pipeline run has ever been recorded",
		}, nil
	}

	report := Classify(last, c.now())
	c.logger.WithContext(ctx).WithFields(map[string]any{"status": report.Status, "last_run": last.RunDate}).Info("Health check")
	return report, nil
}

// Classify applies the freshness windows to one audit row
func Classify(last *models.ExtractionLog, now time.Time) *Report {
	report := &Report{
		LastRun:    &last.RunDate,
		LastStatus: last.Status,
	}

	if last.Status == models.StatusFailed {
		report.Status = StatusUnhealthy
		report.Message = fmt.Sprintf("last run at %s failed", last.RunDate.Format("2006-01-02 15:04"))
		return report
	}

	age := now.Sub(last.RunDate)
	switch {
	case age < healthyWindow:
		report.Status = StatusHealthy
		report.Message = fmt.Sprintf("last run at %s", last.RunDate.Format("2006-01-02 15:04"))
	case age < degradedWindow:
		report.Status = StatusDegraded
		report.Message = fmt.Sprintf("last run at %s is %.0f hours old", last.RunDate.Format("2006-01-02 15:04"), age.Hours())
	default:
		report.Status = StatusUnhealthy
		report.Message = fmt.Sprintf("no run in the last %.0f hours", age.Hours())
	}
	return report
}
