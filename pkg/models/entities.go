// Package models defines the Transfer Gov entity records loaded by the
// pipeline. Column names stay in Portuguese to match the source schema.
// Every column except the natural key is optional so partial extractions
// can still land.
package models

import "time"

// EntityType identifies which source file family a table came from
type EntityType string

const (
	EntityPropostas  EntityType = "propostas"
	EntityApoiadores EntityType = "apoiadores"
	EntityEmendas    EntityType = "emendas"
	EntityProgramas  EntityType = "programas"
)

// Programa is a government transfer program
type Programa struct {
	ID               int64      `json:"id" db:"id"`
	TransferGovID    string     `json:"transfer_gov_id" db:"transfer_gov_id" validate:"required"`
	Nome             *string    `json:"nome,omitempty" db:"nome"`
	OrgaoSuperior    *string    `json:"orgao_superior,omitempty" db:"orgao_superior"`
	OrgaoVinculado   *string    `json:"orgao_vinculado,omitempty" db:"orgao_vinculado"`
	Modalidade       *string    `json:"modalidade,omitempty" db:"modalidade"`
	AcaoOrcamentaria *string    `json:"acao_orcamentaria,omitempty" db:"acao_orcamentaria"`
	NaturezaJuridica *string    `json:"natureza_juridica,omitempty" db:"natureza_juridica"`
	ExtractionDate   *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// Proposta is a transfer proposal/application submitted by an entity
type Proposta struct {
	ID                 int64      `json:"id" db:"id"`
	TransferGovID      string     `json:"transfer_gov_id" db:"transfer_gov_id" validate:"required"`
	Titulo             *string    `json:"titulo,omitempty" db:"titulo"`
	ValorGlobal        *float64   `json:"valor_global,omitempty" db:"valor_global" validate:"omitempty,gte=0"`
	ValorRepasse       *float64   `json:"valor_repasse,omitempty" db:"valor_repasse" validate:"omitempty,gte=0"`
	ValorContrapartida *float64   `json:"valor_contrapartida,omitempty" db:"valor_contrapartida" validate:"omitempty,gte=0"`
	DataPublicacao     *time.Time `json:"data_publicacao,omitempty" db:"data_publicacao"`
	DataInicioVigencia *time.Time `json:"data_inicio_vigencia,omitempty" db:"data_inicio_vigencia"`
	DataFimVigencia    *time.Time `json:"data_fim_vigencia,omitempty" db:"data_fim_vigencia"`
	Situacao           *string    `json:"situacao,omitempty" db:"situacao"`
	Estado             *string    `json:"estado,omitempty" db:"estado" validate:"omitempty,uf"`
	Municipio          *string    `json:"municipio,omitempty" db:"municipio"`
	Proponente         *string    `json:"proponente,omitempty" db:"proponente"`

	// App-level reference to programas.transfer_gov_id; no FK constraint so
	// partial extractions can land propostas before their programa.
	ProgramaID     *string    `json:"programa_id,omitempty" db:"programa_id"`
	ProponenteCNPJ *string    `json:"proponente_cnpj,omitempty" db:"proponente_cnpj"`
	ExtractionDate *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// Apoiador is a supporter (parliamentarian or organ) backing proposals
type Apoiador struct {
	ID             int64      `json:"id" db:"id"`
	TransferGovID  string     `json:"transfer_gov_id" db:"transfer_gov_id" validate:"required"`
	Nome           *string    `json:"nome,omitempty" db:"nome"`
	Tipo           *string    `json:"tipo,omitempty" db:"tipo"`
	Orgao          *string    `json:"orgao,omitempty" db:"orgao"`
	ExtractionDate *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// Emenda is a budget amendment linked to proposals
type Emenda struct {
	ID             int64      `json:"id" db:"id"`
	TransferGovID  string     `json:"transfer_gov_id" db:"transfer_gov_id" validate:"required"`
	Numero         *string    `json:"numero,omitempty" db:"numero"`
	Autor          *string    `json:"autor,omitempty" db:"autor"`
	Valor          *float64   `json:"valor,omitempty" db:"valor" validate:"omitempty,gte=0"`
	Tipo           *string    `json:"tipo,omitempty" db:"tipo"`
	Ano            *int       `json:"ano,omitempty" db:"ano" validate:"omitempty,gte=2000,lte=2100"`
	ExtractionDate *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// Proponente is the applicant organization dimension, keyed by normalized
// 14-digit CNPJ. Aggregate columns are recomputed after every load.
type Proponente struct {
	ID                  int64      `json:"id" db:"id"`
	CNPJ                string     `json:"cnpj" db:"cnpj" validate:"required,len=14"`
	Nome                *string    `json:"nome,omitempty" db:"nome"`
	NaturezaJuridica    *string    `json:"natureza_juridica,omitempty" db:"natureza_juridica"`
	IsNonProfit         bool       `json:"is_non_profit" db:"is_non_profit"`
	Estado              *string    `json:"estado,omitempty" db:"estado"`
	Municipio           *string    `json:"municipio,omitempty" db:"municipio"`
	Endereco            *string    `json:"endereco,omitempty" db:"endereco"`
	CEP                 *string    `json:"cep,omitempty" db:"cep"`
	TotalProposals      int        `json:"total_proposals" db:"total_proposals"`
	TotalAmendments     int        `json:"total_amendments" db:"total_amendments"`
	TotalAmendmentValue float64    `json:"total_amendment_value" db:"total_amendment_value"`
	ExtractionDate      *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// PropostaApoiador is the proposal/supporter junction; the compound pair of
// natural keys is unique.
type PropostaApoiador struct {
	ID                    int64      `json:"id" db:"id"`
	PropostaTransferGovID string     `json:"proposta_transfer_gov_id" db:"proposta_transfer_gov_id" validate:"required"`
	ApoiadorTransferGovID string     `json:"apoiador_transfer_gov_id" db:"apoiador_transfer_gov_id" validate:"required"`
	ExtractionDate        *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// PropostaEmenda is the proposal/amendment junction; the compound pair of
// natural keys is unique.
type PropostaEmenda struct {
	ID                    int64      `json:"id" db:"id"`
	PropostaTransferGovID string     `json:"proposta_transfer_gov_id" db:"proposta_transfer_gov_id" validate:"required"`
	EmendaTransferGovID   string     `json:"emenda_transfer_gov_id" db:"emenda_transfer_gov_id" validate:"required"`
	ExtractionDate        *time.Time `json:"extraction_date,omitempty" db:"extraction_date"`
}

// ExtractionLog is the append-only audit row for a pipeline run
type ExtractionLog struct {
	ID              int64     `json:"id" db:"id"`
	RunDate         time.Time `json:"run_date" db:"run_date"`
	Status          string    `json:"status" db:"status"` // success, partial, failed
	FilesProcessed  *int      `json:"files_processed,omitempty" db:"files_processed"`
	TotalRecords    *int      `json:"total_records,omitempty" db:"total_records"`
	RecordsInserted *int      `json:"records_inserted,omitempty" db:"records_inserted"`
	RecordsUpdated  *int      `json:"records_updated,omitempty" db:"records_updated"`
	RecordsSkipped  *int      `json:"records_skipped,omitempty" db:"records_skipped"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty" db:"duration_seconds"`
	ErrorMessage    *string   `json:"error_message,omitempty" db:"error_message"`
}

// Run statuses recorded on ExtractionLog
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// DataLineage tracks the provenance of a single landed record
type DataLineage struct {
	ID              string    `json:"id" db:"id"`
	EntityType      string    `json:"entity_type" db:"entity_type"`
	EntityID        string    `json:"entity_id" db:"entity_id"`
	SourceFile      string    `json:"source_file" db:"source_file"`
	ExtractionDate  time.Time `json:"extraction_date" db:"extraction_date"`
	PipelineVersion string    `json:"pipeline_version" db:"pipeline_version"`
	RecordHash      string    `json:"record_hash" db:"record_hash"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
