// Package lineage records the provenance of every landed record: which
// source file produced it, when, under which pipeline version, and the
// hash of its payload at load time.
package lineage

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

const table = "data_lineage"

// insertBatchSize keeps each bulk insert comfortably under the bind
// parameter ceiling.
const insertBatchSize = 1000

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// BulkInsert appends lineage rows inside the caller's transaction,
// assigning ids as it goes.
func (r *Repository) BulkInsert(ctx context.Context, tx database.Tx, records []models.DataLineage) error {
	ctx, span := tracing.StartSpan(ctx, "lineage.Repository.BulkInsert")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto(table)
		ib.Cols("id", "entity_type", "entity_id", "source_file", "extraction_date", "pipeline_version", "record_hash", "created_at")
		for i := start; i < end; i++ {
			rec := &records[i]
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = now
			}
			ib.Values(rec.ID, rec.EntityType, rec.EntityID, rec.SourceFile, rec.ExtractionDate, rec.PipelineVersion, rec.RecordHash, rec.CreatedAt)
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"rows": end - start}).Error("Failed to insert lineage rows")
			return errors.Wrap(err, "failed to insert lineage rows")
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"rows": len(records)}).Debug("Recorded lineage")
	return nil
}

// CountBySourceFile returns how many landed records of the entity type
// trace back to the file.
func (r *Repository) CountBySourceFile(ctx context.Context, sourceFile, entityType string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "lineage.Repository.CountBySourceFile")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)
	sb.Where(sb.Equal("source_file", sourceFile), sb.Equal("entity_type", entityType))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_file": sourceFile}).Error("Failed to count lineage rows")
		return 0, errors.Wrap(err, "failed to count lineage rows")
	}
	return count, nil
}

// ByEntity returns the provenance trail of one record, newest first
func (r *Repository) ByEntity(ctx context.Context, entityType, entityID string) ([]models.DataLineage, error) {
	ctx, span := tracing.StartSpan(ctx, "lineage.Repository.ByEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_type", "entity_id", "source_file", "extraction_date", "pipeline_version", "record_hash", "created_at")
	sb.From(table)
	sb.Where(sb.Equal("entity_type", entityType), sb.Equal("entity_id", entityID))
	sb.OrderBy("extraction_date DESC")

	query, args := sb.Build()
	var recs []models.DataLineage
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"entity_type": entityType, "entity_id": entityID}).Error("Failed to fetch lineage")
		return nil, errors.Wrap(err, "failed to fetch lineage")
	}
	return recs, nil
}

// EntityCount is one row of the lineage summary
type EntityCount struct {
	EntityType string `db:"entity_type" json:"entity_type"`
	Records    int    `db:"records" json:"records"`
}

// Summary returns landed record counts per entity type
func (r *Repository) Summary(ctx context.Context) ([]EntityCount, error) {
	ctx, span := tracing.StartSpan(ctx, "lineage.Repository.Summary")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("entity_type", "COUNT(*) AS records")
	sb.From(table)
	sb.GroupBy("entity_type")
	sb.OrderBy("entity_type")

	query, args := sb.Build()
	var counts []EntityCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to summarize lineage")
		return nil, errors.Wrap(err, "failed to summarize lineage")
	}
	return counts, nil
}
