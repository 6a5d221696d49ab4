package loader

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

// Table specs for every upsert target. Junction tables conflict on the
// compound pair; everything else conflicts on its natural key.
var (
	ProgramasSpec = TableSpec{
		Table:           "programas",
		Columns:         []string{"transfer_gov_id", "nome", "orgao_superior", "orgao_vinculado", "modalidade", "acao_orcamentaria", "natureza_juridica", "extraction_date"},
		KeyColumns:      []string{"transfer_gov_id"},
		UpdatedAtColumn: "updated_at",
	}
	ProponentesSpec = TableSpec{
		Table:           "proponentes",
		Columns:         []string{"cnpj", "nome", "natureza_juridica", "is_non_profit", "estado", "municipio", "endereco", "cep", "total_proposals", "total_amendments", "total_amendment_value", "extraction_date"},
		KeyColumns:      []string{"cnpj"},
		UpdatedAtColumn: "updated_at",
	}
	PropostasSpec = TableSpec{
		Table:           "propostas",
		Columns:         []string{"transfer_gov_id", "titulo", "valor_global", "valor_repasse", "valor_contrapartida", "data_publicacao", "data_inicio_vigencia", "data_fim_vigencia", "situacao", "estado", "municipio", "proponente", "programa_id", "proponente_cnpj", "extraction_date"},
		KeyColumns:      []string{"transfer_gov_id"},
		UpdatedAtColumn: "updated_at",
	}
	ApoiadoresSpec = TableSpec{
		Table:           "apoiadores",
		Columns:         []string{"transfer_gov_id", "nome", "tipo", "orgao", "extraction_date"},
		KeyColumns:      []string{"transfer_gov_id"},
		UpdatedAtColumn: "updated_at",
	}
	EmendasSpec = TableSpec{
		Table:           "emendas",
		Columns:         []string{"transfer_gov_id", "numero", "autor", "valor", "tipo", "ano", "extraction_date"},
		KeyColumns:      []string{"transfer_gov_id"},
		UpdatedAtColumn: "updated_at",
	}
	PropostaApoiadoresSpec = TableSpec{
		Table:      "proposta_apoiadores",
		Columns:    []string{"proposta_transfer_gov_id", "apoiador_transfer_gov_id", "extraction_date"},
		KeyColumns: []string{"proposta_transfer_gov_id", "apoiador_transfer_gov_id"},
	}
	PropostaEmendasSpec = TableSpec{
		Table:      "proposta_emendas",
		Columns:    []string{"proposta_transfer_gov_id", "emenda_transfer_gov_id", "extraction_date"},
		KeyColumns: []string{"proposta_transfer_gov_id", "emenda_transfer_gov_id"},
	}
)

// Batch is everything bound for one load, already validated and deduped
// upstream where it matters.
type Batch struct {
	Programas          []models.Programa
	Proponentes        []models.Proponente
	Propostas          []models.Proposta
	Apoiadores         []models.Apoiador
	Emendas            []models.Emenda
	PropostaApoiadores []models.PropostaApoiador
	PropostaEmendas    []models.PropostaEmenda
}

// Loader writes a Batch in dependency order inside one transaction
type Loader struct {
	engine *Engine
	logger ectologger.Logger
}

func NewLoader(engine *Engine, logger ectologger.Logger) *Loader {
	return &Loader{engine: engine, logger: logger}
}

// Load upserts every table of the batch, dimensions before facts before
// junctions, then recomputes proponent aggregates. It never commits; the
// caller owns the transaction.
func (l *Loader) Load(ctx context.Context, tx database.Tx, batch *Batch) (map[string]Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "loader.Loader.Load")
	defer span.End()

	stats := make(map[string]Stats)

	steps := []struct {
		spec TableSpec
		rows []map[string]any
	}{
		{ProgramasSpec, programaRows(batch.Programas)},
		{ProponentesSpec, proponenteRows(batch.Proponentes)},
		{PropostasSpec, propostaRows(batch.Propostas)},
		{ApoiadoresSpec, apoiadorRows(batch.Apoiadores)},
		{EmendasSpec, emendaRows(batch.Emendas)},
		{PropostaApoiadoresSpec, propostaApoiadorRows(batch.PropostaApoiadores)},
		{PropostaEmendasSpec, propostaEmendaRows(batch.PropostaEmendas)},
	}

	for _, step := range steps {
		tableStats, err := l.engine.Upsert(ctx, tx, step.spec, step.rows)
		stats[step.spec.Table] = stats[step.spec.Table].Add(tableStats)
		if err != nil {
			return stats, err
		}
	}

	if err := l.RefreshProponenteAggregates(ctx, tx); err != nil {
		return stats, err
	}

	return stats, nil
}

// RefreshProponenteAggregates recomputes the proponent rollup columns from
// the landed facts so they survive partial loads and re-runs.
func (l *Loader) RefreshProponenteAggregates(ctx context.Context, tx database.Tx) error {
	ctx, span := tracing.StartSpan(ctx, "loader.Loader.RefreshProponenteAggregates")
	defer span.End()

	// Amendments are deduped per proponent before summing since one
	// amendment can back several proposals of the same applicant.
	query := `
		UPDATE proponentes p SET
			total_proposals = (
				SELECT COUNT(*) FROM propostas pr
				WHERE pr.proponente_cnpj = p.cnpj
			),
			total_amendments = (
				SELECT COUNT(DISTINCT pe.emenda_transfer_gov_id)
				FROM propostas pr
				JOIN proposta_emendas pe ON pe.proposta_transfer_gov_id = pr.transfer_gov_id
				WHERE pr.proponente_cnpj = p.cnpj
			),
			total_amendment_value = (
				SELECT COALESCE(SUM(d.valor), 0) FROM (
					SELECT DISTINCT e.transfer_gov_id, e.valor
					FROM propostas pr
					JOIN proposta_emendas pe ON pe.proposta_transfer_gov_id = pr.transfer_gov_id
					JOIN emendas e ON e.transfer_gov_id = pe.emenda_transfer_gov_id
					WHERE pr.proponente_cnpj = p.cnpj
				) d
			)`

	if _, err := tx.ExecContext(ctx, query); err != nil {
		l.logger.WithContext(ctx).WithError(err).Error("Failed to refresh proponent aggregates")
		return errors.Wrap(err, "failed to refresh proponent aggregates")
	}

	l.logger.WithContext(ctx).Debug("Refreshed proponent aggregates")
	return nil
}

func programaRows(records []models.Programa) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func proponenteRows(records []models.Proponente) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func propostaRows(records []models.Proposta) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func apoiadorRows(records []models.Apoiador) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func emendaRows(records []models.Emenda) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func propostaApoiadorRows(records []models.PropostaApoiador) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func propostaEmendaRows(records []models.PropostaEmenda) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}
