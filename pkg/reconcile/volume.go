package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/internal/repositories/extractionlog"
	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/events"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

// volumeTables are the entity tables whose counts feed the volume check
var volumeTables = []string{"programas", "propostas", "apoiadores", "emendas"}

// VolumeReport compares the current landed volume against the previous
// recorded run.
type VolumeReport struct {
	Normal        bool           `json:"normal"`
	Summary       string         `json:"summary"`
	Counts        map[string]int `json:"counts"`
	CurrentTotal  int            `json:"current_total"`
	PreviousTotal *int           `json:"previous_total,omitempty"`
	ChangePercent *float64       `json:"change_percent,omitempty"`
}

// VolumeChecker flags extraction runs whose landed volume swings beyond a
// tolerance against the previous run's recorded total. Only run totals are
// kept in the audit log, so the comparison is total-level; per-table counts
// ride along in the report for the operator.
type VolumeChecker struct {
	db               database.DB
	logs             *extractionlog.Repository
	emitter          *events.Emitter
	logger           ectologger.Logger
	tolerancePercent int
}

func NewVolumeChecker(db database.DB, logs *extractionlog.Repository, emitter *events.Emitter, tolerancePercent int, logger ectologger.Logger) *VolumeChecker {
	if tolerancePercent <= 0 {
		tolerancePercent = 10
	}
	return &VolumeChecker{
		db:               db,
		logs:             logs,
		emitter:          emitter,
		logger:           logger,
		tolerancePercent: tolerancePercent,
	}
}

// Check counts every entity table, compares the total against the previous
// audit row, and emits a volume.anomaly event when the change exceeds the
// tolerance.
func (c *VolumeChecker) Check(ctx context.Context) (*VolumeReport, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.VolumeChecker.Check")
	defer span.End()

	counts := make(map[string]int, len(volumeTables))
	for _, table := range volumeTables {
		var n int
		if err := c.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", table)
		}
		counts[table] = n
	}

	last, err := c.logs.MostRecent(ctx)
	if err != nil {
		return nil, err
	}
	var previousTotal *int
	if last != nil && last.TotalRecords != nil {
		previousTotal = last.TotalRecords
	}

	report := ClassifyVolume(counts, previousTotal, c.tolerancePercent)

	if !report.Normal {
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"current":  report.CurrentTotal,
			"previous": *report.PreviousTotal,
			"summary":  report.Summary,
		}).Warn("Extraction volume anomaly")
		c.emitter.EmitVolumeAnomaly(ctx, report)
	} else {
		c.logger.WithContext(ctx).WithFields(map[string]any{"summary": report.Summary}).Info("Extraction volume checked")
	}

	return report, nil
}

// ClassifyVolume applies the tolerance to the current counts. With no
// previous total (first run) the volume is always normal.
func ClassifyVolume(counts map[string]int, previousTotal *int, tolerancePercent int) *VolumeReport {
	report := &VolumeReport{
		Normal:        true,
		Counts:        counts,
		PreviousTotal: previousTotal,
	}
	for _, n := range counts {
		report.CurrentTotal += n
	}

	if previousTotal == nil {
		report.Summary = fmt.Sprintf("volume normal: first recorded run, %s", formatCounts(counts))
		return report
	}
	if *previousTotal <= 0 {
		report.Summary = "volume normal: previous run landed no records"
		return report
	}

	change := float64(report.CurrentTotal-*previousTotal) / float64(*previousTotal) * 100
	report.ChangePercent = &change

	if abs(report.CurrentTotal-*previousTotal)*100 > tolerancePercent*(*previousTotal) {
		report.Normal = false
		report.Summary = fmt.Sprintf("volume anomaly: %+.1f%% change (%d -> %d total records)", change, *previousTotal, report.CurrentTotal)
		return report
	}

	report.Summary = fmt.Sprintf("volume normal: %+.1f%% change", change)
	return report
}

func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}
