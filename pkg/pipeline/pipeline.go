// Package pipeline runs one end-to-end extraction: discover the latest
// dated source directory, parse and validate every file, extract derived
// entities, and land everything in one transaction with an audit row.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/internal/repositories/extractionlog"
	"github.com/snak3gh0st/projetustgov/internal/repositories/lineage"
	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/events"
	"github.com/snak3gh0st/projetustgov/pkg/extractor"
	"github.com/snak3gh0st/projetustgov/pkg/fingerprint"
	"github.com/snak3gh0st/projetustgov/pkg/loader"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/parser"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
	"github.com/snak3gh0st/projetustgov/pkg/validator"
)

// maxErrorMessages caps how many error texts land in the audit row
const maxErrorMessages = 5

// Result summarizes one finished pipeline run
type Result struct {
	LogID          int64                   `json:"log_id"`
	Status         string                  `json:"status"`
	FilesProcessed int                     `json:"files_processed"`
	TotalRecords   int                     `json:"total_records"`
	Stats          map[string]loader.Stats `json:"stats,omitempty"`
	Errors         []string                `json:"errors,omitempty"`
	Duration       time.Duration           `json:"duration"`
}

// Pipeline wires the parser, validator, extractors, and loader into one
// run. All collaborators are constructed by the caller and passed in.
type Pipeline struct {
	db         database.DB
	reader     *parser.Reader
	validate   *validator.Validator
	loader     *loader.Loader
	logs       *extractionlog.Repository
	lineage    *lineage.Repository
	emitter    *events.Emitter
	logger     ectologger.Logger
	rawDataDir string
	version    string
}

func New(
	db database.DB,
	reader *parser.Reader,
	validate *validator.Validator,
	load *loader.Loader,
	logs *extractionlog.Repository,
	lineageRepo *lineage.Repository,
	emitter *events.Emitter,
	rawDataDir string,
	version string,
	logger ectologger.Logger,
) *Pipeline {
	return &Pipeline{
		db:         db,
		reader:     reader,
		validate:   validate,
		loader:     load,
		logs:       logs,
		lineage:    lineageRepo,
		emitter:    emitter,
		logger:     logger,
		rawDataDir: rawDataDir,
		version:    version,
	}
}

// run carries the mutable state accumulated while walking the files
type run struct {
	batch          loader.Batch
	lineageRows    []models.DataLineage
	errors         []string
	filesProcessed int
	proponentIndex map[string]int
	programaLinks  map[string]string
	extractionDate time.Time
}

// Run executes one full extraction. Files are processed sequentially in
// sorted order; every upsert and the audit row share a single transaction,
// committed only after all entities have loaded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	start := time.Now()

	dir, err := LatestDataDir(p.rawDataDir)
	if err != nil {
		return nil, err
	}
	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no source files found in %s", dir)
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{"dir": dir, "files": len(files)}).Info("Starting pipeline run")

	st := &run{
		proponentIndex: make(map[string]int),
		programaLinks:  make(map[string]string),
		extractionDate: ExtractionDateFor(dir),
	}

	for _, file := range files {
		p.processFile(ctx, st, file)
	}

	p.applyProgramaLinks(ctx, st)

	totalValid := len(st.batch.Programas) + len(st.batch.Proponentes) + len(st.batch.Propostas) +
		len(st.batch.Apoiadores) + len(st.batch.Emendas) +
		len(st.batch.PropostaApoiadores) + len(st.batch.PropostaEmendas)

	status := models.StatusSuccess
	switch {
	case totalValid == 0:
		status = models.StatusFailed
	case len(st.errors) > 0:
		status = models.StatusPartial
	}

	result := &Result{
		Status:         status,
		FilesProcessed: st.filesProcessed,
		TotalRecords:   totalValid,
		Errors:         st.errors,
	}

	if status == models.StatusFailed {
		result.Duration = time.Since(start)
		rec := p.auditRow(result, "no valid records found in any file", start)
		if err := p.logs.CreateFailed(ctx, rec); err != nil {
			p.logger.WithContext(ctx).WithError(err).Error("Failed to record empty run")
		}
		p.logger.WithContext(ctx).Warn("Pipeline run produced no valid records")
		return result, nil
	}

	stats, logID, err := p.load(ctx, st, result, start)
	if err != nil {
		result.Status = models.StatusFailed
		result.Duration = time.Since(start)
		rec := p.auditRow(result, err.Error(), start)
		if ferr := p.logs.CreateFailed(ctx, rec); ferr != nil {
			p.logger.WithContext(ctx).WithError(ferr).Error("Failed to record failed run")
		}
		return result, err
	}

	result.Stats = stats
	result.LogID = logID
	result.Duration = time.Since(start)

	p.emitter.EmitRunCompleted(ctx, logID, result.Status, stats)

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"status":   result.Status,
		"records":  result.TotalRecords,
		"duration": result.Duration.Seconds(),
		"log_id":   logID,
	}).Info("Pipeline run completed")

	return result, nil
}

// processFile parses and validates one source file, extending the run
// state. Every failure is recovered locally so one bad file never blocks
// the rest of the run.
func (p *Pipeline) processFile(ctx context.Context, st *run, file string) {
	name := filepath.Base(file)
	log := p.logger.WithContext(ctx).WithFields(map[string]any{"file": name})

	entity := InferEntityType(name)
	if entity == "" {
		log.Warn("Could not determine entity type, skipping file")
		return
	}
	st.filesProcessed++

	table, err := p.reader.ReadFile(file, entity)
	if err != nil {
		st.errors = append(st.errors, fmt.Sprintf("%s: %v", name, err))
		log.WithError(err).Warn("Failed to parse source file")
		return
	}

	switch entity {
	case models.EntityProgramas:
		valid, rejected := p.validate.Programas(table.Rows, st.extractionDate)
		st.batch.Programas = append(st.batch.Programas, valid...)
		p.collectRowErrors(st, name, rejected)
		for _, rec := range valid {
			st.lineageRows = append(st.lineageRows, p.lineageRow("programas", rec.TransferGovID, file, rec.Row(), st.extractionDate))
		}

	case models.EntityPropostas:
		valid, rejected := p.validate.Propostas(table.Rows, st.extractionDate)
		st.batch.Propostas = append(st.batch.Propostas, valid...)
		p.collectRowErrors(st, name, rejected)
		for _, rec := range valid {
			st.lineageRows = append(st.lineageRows, p.lineageRow("propostas", rec.TransferGovID, file, rec.Row(), st.extractionDate))
		}

		proponentes := extractor.ExtractProponentes(table.Rows, st.extractionDate, p.logger)
		p.mergeProponentes(st, file, proponentes)

	case models.EntityApoiadores:
		p.extractRelationships(ctx, st, name, file, table)

	case models.EntityEmendas:
		valid, rejected := p.validate.Emendas(table.Rows, st.extractionDate)
		st.batch.Emendas = append(st.batch.Emendas, valid...)
		p.collectRowErrors(st, name, rejected)
		for _, rec := range valid {
			st.lineageRows = append(st.lineageRows, p.lineageRow("emendas", rec.TransferGovID, file, rec.Row(), st.extractionDate))
		}
	}
}

// extractRelationships handles the combined supporters/amendments export.
// Rows missing the proposal key cannot anchor any relationship and count as
// validation errors.
func (p *Pipeline) extractRelationships(ctx context.Context, st *run, name, file string, table *parser.Table) {
	missing := 0
	for _, row := range table.Rows {
		if strings.TrimSpace(row["transfer_gov_id"]) == "" {
			missing++
		}
	}
	if missing > 0 {
		st.errors = append(st.errors, fmt.Sprintf("%s: %d rows missing transfer_gov_id", name, missing))
	}

	rels := extractor.ExtractRelationships(table.Rows, st.extractionDate, p.logger)

	st.batch.Apoiadores = append(st.batch.Apoiadores, rels.Apoiadores...)
	st.batch.Emendas = append(st.batch.Emendas, rels.Emendas...)
	st.batch.PropostaApoiadores = append(st.batch.PropostaApoiadores, rels.PropostaApoiador...)
	st.batch.PropostaEmendas = append(st.batch.PropostaEmendas, rels.PropostaEmenda...)

	for propostaID, programaID := range rels.ProgramaLinks {
		if _, ok := st.programaLinks[propostaID]; !ok {
			st.programaLinks[propostaID] = programaID
		}
	}

	for _, rec := range rels.Apoiadores {
		st.lineageRows = append(st.lineageRows, p.lineageRow("apoiadores", rec.TransferGovID, file, rec.Row(), st.extractionDate))
	}
	for _, rec := range rels.Emendas {
		st.lineageRows = append(st.lineageRows, p.lineageRow("emendas", rec.TransferGovID, file, rec.Row(), st.extractionDate))
	}
	for _, rec := range rels.PropostaApoiador {
		id := rec.PropostaTransferGovID + "|" + rec.ApoiadorTransferGovID
		st.lineageRows = append(st.lineageRows, p.lineageRow("proposta_apoiadores", id, file, rec.Row(), st.extractionDate))
	}
	for _, rec := range rels.PropostaEmenda {
		id := rec.PropostaTransferGovID + "|" + rec.EmendaTransferGovID
		st.lineageRows = append(st.lineageRows, p.lineageRow("proposta_emendas", id, file, rec.Row(), st.extractionDate))
	}
}

// mergeProponentes folds the file's proponents into the run-wide dimension,
// first occurrence wins, proposal counts accumulate.
func (p *Pipeline) mergeProponentes(st *run, file string, proponentes []models.Proponente) {
	for _, prop := range proponentes {
		if i, ok := st.proponentIndex[prop.CNPJ]; ok {
			st.batch.Proponentes[i].TotalProposals += prop.TotalProposals
			continue
		}
		st.proponentIndex[prop.CNPJ] = len(st.batch.Proponentes)
		st.batch.Proponentes = append(st.batch.Proponentes, prop)
		st.lineageRows = append(st.lineageRows, p.lineageRow("proponentes", prop.CNPJ, file, prop.Row(), st.extractionDate))
	}
}

// applyProgramaLinks fills programa_id on proposals that arrived without
// one, using links accumulated from the relationship files.
func (p *Pipeline) applyProgramaLinks(ctx context.Context, st *run) {
	if len(st.programaLinks) == 0 {
		return
	}
	linked := 0
	for i := range st.batch.Propostas {
		if st.batch.Propostas[i].ProgramaID != nil {
			continue
		}
		if programaID, ok := st.programaLinks[st.batch.Propostas[i].TransferGovID]; ok {
			st.batch.Propostas[i].ProgramaID = &programaID
			linked++
		}
	}
	p.logger.WithContext(ctx).WithFields(map[string]any{"linked": linked}).Info("Linked proposals to programs from relationship data")
}

// load lands the batch, lineage, and audit row inside one transaction.
// Rollback must run against the pre-transaction context: the context
// returned by GetTx marks the transaction open, which turns Rollback into a
// no-op for nested callers.
func (p *Pipeline) load(ctx context.Context, st *run, result *Result, start time.Time) (map[string]loader.Stats, int64, error) {
	txCtx, tx, err := p.db.GetTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if rerr := tx.Rollback(ctx); rerr != nil {
			p.logger.WithContext(ctx).WithError(rerr).Error("Failed to roll back pipeline transaction")
		}
	}()

	stats, err := p.loader.Load(txCtx, tx, &st.batch)
	if err != nil {
		return nil, 0, err
	}

	if err := p.lineage.BulkInsert(txCtx, tx, st.lineageRows); err != nil {
		return nil, 0, err
	}

	result.Duration = time.Since(start)
	rec := p.auditRow(result, joinErrors(st.errors), start)
	upserted := 0
	skipped := 0
	for _, s := range stats {
		upserted += s.Upserted
		skipped += s.Deduped
	}
	rec.RecordsInserted = &upserted
	rec.RecordsSkipped = &skipped

	logID, err := p.logs.Create(txCtx, tx, rec)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, 0, err
	}

	return stats, logID, nil
}

func (p *Pipeline) auditRow(result *Result, errorMessage string, start time.Time) *models.ExtractionLog {
	duration := time.Since(start).Seconds()
	rec := &models.ExtractionLog{
		RunDate:         time.Now().UTC(),
		Status:          result.Status,
		FilesProcessed:  &result.FilesProcessed,
		TotalRecords:    &result.TotalRecords,
		DurationSeconds: &duration,
	}
	if errorMessage != "" {
		rec.ErrorMessage = &errorMessage
	}
	return rec
}

func (p *Pipeline) lineageRow(entityType, entityID, file string, row map[string]any, extracted time.Time) models.DataLineage {
	return models.DataLineage{
		EntityType:      entityType,
		EntityID:        entityID,
		SourceFile:      file,
		ExtractionDate:  extracted,
		PipelineVersion: p.version,
		RecordHash:      fingerprint.RecordHash(row),
	}
}

func (p *Pipeline) collectRowErrors(st *run, name string, rejected []validator.RowError) {
	for _, rerr := range rejected {
		st.errors = append(st.errors, fmt.Sprintf("%s: %s", name, rerr.Error()))
	}
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) > maxErrorMessages {
		errs = errs[:maxErrorMessages]
	}
	return strings.Join(errs, "; ")
}
