// Package reconcile verifies zero data loss by comparing source file row
// counts against the lineage rows the pipeline recorded for each file.
package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/snak3gh0st/projetustgov/internal/repositories/lineage"
	"github.com/snak3gh0st/projetustgov/pkg/events"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/parser"
	"github.com/snak3gh0st/projetustgov/pkg/pipeline"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

// failedCount marks a result whose file could not be read
const failedCount = -1

// Result is one file's reconciliation outcome
type Result struct {
	FilePath    string `json:"file_path"`
	EntityType  string `json:"entity_type"`
	SourceCount int    `json:"source_count"`
	DBCount     int    `json:"db_count"`
	Match       bool   `json:"match"`
	Discrepancy int    `json:"discrepancy"`
}

// AlertFunc is invoked once per mismatch when alerting is enabled
type AlertFunc func(ctx context.Context, result Result)

// Checker compares source files against recorded lineage
type Checker struct {
	reader          *parser.Reader
	lineage         *lineage.Repository
	emitter         *events.Emitter
	logger          ectologger.Logger
	alert           AlertFunc
	alertOnMismatch bool
}

func NewChecker(reader *parser.Reader, lineageRepo *lineage.Repository, emitter *events.Emitter, alert AlertFunc, alertOnMismatch bool, logger ectologger.Logger) *Checker {
	return &Checker{
		reader:          reader,
		lineage:         lineageRepo,
		emitter:         emitter,
		logger:          logger,
		alert:           alert,
		alertOnMismatch: alertOnMismatch,
	}
}

// ReconcileFile compares one source file's row count with the lineage rows
// tagged with that exact path and entity type.
func (c *Checker) ReconcileFile(ctx context.Context, filePath string, entity models.EntityType) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Checker.ReconcileFile")
	defer span.End()

	table, err := c.reader.ReadFile(filePath, entity)
	if err != nil {
		return Result{}, err
	}
	sourceCount := table.RowCount()

	dbCount, err := c.lineage.CountBySourceFile(ctx, filePath, string(entity))
	if err != nil {
		return Result{}, err
	}

	result := Result{
		FilePath:    filePath,
		EntityType:  string(entity),
		SourceCount: sourceCount,
		DBCount:     dbCount,
		Match:       sourceCount == dbCount,
	}
	if !result.Match {
		result.Discrepancy = abs(sourceCount - dbCount)
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"file":   filePath,
			"source": sourceCount,
			"db":     dbCount,
		}).Warn("Reconciliation mismatch")
	}
	return result, nil
}

// Run reconciles every source file in the latest dated directory. A file
// that cannot be read produces a failed result with sentinel counts instead
// of aborting the scan.
func (c *Checker) Run(ctx context.Context, rawDataDir string) ([]Result, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Checker.Run")
	defer span.End()

	dir, err := pipeline.LatestDataDir(rawDataDir)
	if err != nil {
		return nil, err
	}
	files, err := pipeline.ListSourceFiles(dir)
	if err != nil {
		return nil, err
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{"dir": dir, "files": len(files)}).Info("Starting reconciliation")

	var results []Result
	for _, file := range files {
		entity := pipeline.InferEntityType(filepath.Base(file))
		if entity == "" {
			c.logger.WithContext(ctx).WithFields(map[string]any{"file": file}).Warn("Unknown entity type, skipping")
			continue
		}

		result, err := c.ReconcileFile(ctx, file, entity)
		if err != nil {
			c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"file": file}).Error("Failed to reconcile file")
			results = append(results, Result{
				FilePath:    file,
				EntityType:  string(entity),
				SourceCount: failedCount,
				DBCount:     failedCount,
				Match:       false,
			})
			continue
		}

		results = append(results, result)
		if !result.Match && c.alertOnMismatch {
			if c.alert != nil {
				c.alert(ctx, result)
			}
			c.emitter.EmitReconciliationMismatch(ctx, result)
		}
	}

	matched := 0
	for _, r := range results {
		if r.Match {
			matched++
		}
	}
	c.logger.WithContext(ctx).WithFields(map[string]any{"files": len(results), "matched": matched}).Info("Reconciliation complete")

	return results, nil
}

// Summary formats results into a human-readable report
func Summary(results []Result) string {
	if len(results) == 0 {
		return "No files were processed for reconciliation."
	}

	passed := 0
	totalDiscrepancy := 0
	for _, r := range results {
		if r.Match {
			passed++
		} else {
			totalDiscrepancy += r.Discrepancy
		}
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "RECONCILIATION SUMMARY")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Files processed: %d\n", len(results))
	fmt.Fprintf(&b, "Passed: %d\n", passed)
	fmt.Fprintf(&b, "Failed: %d\n", len(results)-passed)
	fmt.Fprintf(&b, "Total discrepancy: %d records\n", totalDiscrepancy)
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	fmt.Fprintln(&b, "Details:")
	for _, r := range results {
		mark := "OK"
		if !r.Match {
			mark = "MISMATCH"
		}
		fmt.Fprintf(&b, "  [%s] %s (%s): source=%d db=%d\n", mark, filepath.Base(r.FilePath), r.EntityType, r.SourceCount, r.DBCount)
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
