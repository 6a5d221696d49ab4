// Package extractionlog persists the append-only audit trail of pipeline
// runs.
package extractionlog

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

const table = "extraction_logs"

var columns = []string{"run_date", "status", "files_processed", "total_records", "records_inserted", "records_updated", "records_skipped", "duration_seconds", "error_message"}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Create inserts the run's audit row inside the caller's transaction and
// returns its id.
func (r *Repository) Create(ctx context.Context, tx database.Tx, rec *models.ExtractionLog) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "extractionlog.Repository.Create")
	defer span.End()

	query, args := insertQuery(rec)

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"status": rec.Status}).Error("Failed to create extraction log")
		return 0, errors.Wrap(err, "failed to create extraction log")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id, "status": rec.Status}).Info("Created extraction log")
	return id, nil
}

// CreateFailed writes a failed audit row on its own connection. It is the
// fallback path after a run's transaction has rolled back, so it must not
// depend on any transaction state.
func (r *Repository) CreateFailed(ctx context.Context, rec *models.ExtractionLog) error {
	ctx, span := tracing.StartSpan(ctx, "extractionlog.Repository.CreateFailed")
	defer span.End()

	rec.Status = models.StatusFailed
	query, args := insertQuery(rec)

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to record failed run")
		return errors.Wrap(err, "failed to record failed run")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Warn("Recorded failed run")
	return nil
}

// MostRecent returns the latest audit row, or nil when no run has ever
// been recorded.
func (r *Repository) MostRecent(ctx context.Context) (*models.ExtractionLog, error) {
	ctx, span := tracing.StartSpan(ctx, "extractionlog.Repository.MostRecent")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "run_date", "status", "files_processed", "total_records", "records_inserted", "records_updated", "records_skipped", "duration_seconds", "error_message")
	sb.From(table)
	sb.OrderBy("run_date DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var rec models.ExtractionLog
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to fetch most recent extraction log")
		return nil, errors.Wrap(err, "failed to fetch most recent extraction log")
	}
	return &rec, nil
}

// Recent returns the latest n audit rows, newest first
func (r *Repository) Recent(ctx context.Context, n int) ([]models.ExtractionLog, error) {
	ctx, span := tracing.StartSpan(ctx, "extractionlog.Repository.Recent")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "run_date", "status", "files_processed", "total_records", "records_inserted", "records_updated", "records_skipped", "duration_seconds", "error_message")
	sb.From(table)
	sb.OrderBy("run_date DESC")
	sb.Limit(n)

	query, args := sb.Build()
	var recs []models.ExtractionLog
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list extraction logs")
		return nil, errors.Wrap(err, "failed to list extraction logs")
	}
	return recs, nil
}

func insertQuery(rec *models.ExtractionLog) (string, []any) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(columns...)
	ib.Values(rec.RunDate, rec.Status, rec.FilesProcessed, rec.TotalRecords, rec.RecordsInserted, rec.RecordsUpdated, rec.RecordsSkipped, rec.DurationSeconds, rec.ErrorMessage)
	ib.SQL("RETURNING id")
	return ib.Build()
}
