// Package loader lands validated records in Postgres through a generic
// batched upsert engine. Every table write is an INSERT ... ON CONFLICT DO
// UPDATE on the natural key, so re-running a load is idempotent.
package loader

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

// maxParameters is the Postgres wire-protocol bind parameter ceiling
const maxParameters = 65535

// TableSpec describes one upsert target
type TableSpec struct {
	Table      string
	Columns    []string
	KeyColumns []string
	// UpdatedAtColumn, when set, is stamped with the load time on conflict
	UpdatedAtColumn string
}

// Stats reports what one table upsert did
type Stats struct {
	Processed int `json:"processed"`
	Upserted  int `json:"upserted"`
	Deduped   int `json:"deduped"`
	Batches   int `json:"batches"`
}

func (s Stats) Add(other Stats) Stats {
	return Stats{
		Processed: s.Processed + other.Processed,
		Upserted:  s.Upserted + other.Upserted,
		Deduped:   s.Deduped + other.Deduped,
		Batches:   s.Batches + other.Batches,
	}
}

// Engine batches column-keyed rows into upsert statements
type Engine struct {
	logger    ectologger.Logger
	batchSize int
}

func NewEngine(batchSize int, logger ectologger.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Engine{logger: logger, batchSize: batchSize}
}

// Upsert lands rows into spec.Table inside the caller's transaction.
// Rows sharing a natural key collapse before writing, last write wins, so a
// single statement never touches the same key twice (Postgres rejects
// that inside ON CONFLICT DO UPDATE).
func (e *Engine) Upsert(ctx context.Context, tx database.Tx, spec TableSpec, rows []map[string]any) (Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "loader.Engine.Upsert")
	defer span.End()

	stats := Stats{Processed: len(rows)}
	if len(rows) == 0 {
		return stats, nil
	}

	deduped := dedupe(spec.KeyColumns, rows)
	stats.Deduped = len(rows) - len(deduped)

	batchSize := e.batchSize
	if ceiling := maxParameters / len(spec.Columns); ceiling < batchSize {
		batchSize = ceiling
	}

	now := time.Now().UTC()
	for start := 0; start < len(deduped); start += batchSize {
		end := start + batchSize
		if end > len(deduped) {
			end = len(deduped)
		}

		if err := e.upsertBatch(ctx, tx, spec, deduped[start:end], now); err != nil {
			return stats, errors.Wrapf(err, "failed to upsert batch into %s", spec.Table)
		}
		stats.Upserted += end - start
		stats.Batches++
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"table":    spec.Table,
		"rows":     stats.Processed,
		"upserted": stats.Upserted,
		"deduped":  stats.Deduped,
		"batches":  stats.Batches,
	}).Info("Upserted rows")

	return stats, nil
}

func (e *Engine) upsertBatch(ctx context.Context, tx database.Tx, spec TableSpec, batch []map[string]any, now time.Time) error {
	ib := database.NewInsertBuilder().InsertInto(spec.Table).Cols(spec.Columns...)
	for _, row := range batch {
		values := make([]any, len(spec.Columns))
		for i, col := range spec.Columns {
			values[i] = row[col]
		}
		ib.Values(values...)
	}

	keys := make(map[string]struct{}, len(spec.KeyColumns))
	for _, col := range spec.KeyColumns {
		keys[col] = struct{}{}
	}

	ub := ib.OnConflict(spec.KeyColumns...)
	assignments := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		if _, isKey := keys[col]; isKey {
			continue
		}
		assignments = append(assignments, ub.Assign(col, database.Excluded(col)))
	}
	if spec.UpdatedAtColumn != "" {
		assignments = append(assignments, ub.Assign(spec.UpdatedAtColumn, now))
	}
	ub.Set(assignments...)

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// dedupe collapses rows with the same natural key, keeping the position of
// the first occurrence and the fields of the last.
func dedupe(keyColumns []string, rows []map[string]any) []map[string]any {
	index := make(map[string]int, len(rows))
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		key := rowKey(keyColumns, row)
		if i, ok := index[key]; ok {
			out[i] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

func rowKey(keyColumns []string, row map[string]any) string {
	key := ""
	for _, col := range keyColumns {
		if v, ok := row[col].(string); ok {
			key += v
		}
		key += "\x1f"
	}
	return key
}
