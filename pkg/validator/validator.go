// Package validator coerces raw string rows into typed entity records and
// enforces the record-level constraints before anything reaches Postgres.
// Rows that fail coercion or validation are rejected individually so one
// bad row never sinks a file.
package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/normalizers"
	"github.com/snak3gh0st/projetustgov/pkg/parser"
)

// ufCodes is the full set of Brazilian federative unit codes
var ufCodes = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// dateLayouts covers the formats seen across Transfer Gov exports
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// RowError describes why a single source row was rejected
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d: field %s: %s", e.Row, e.Field, e.Message)
}

// Validator builds and validates typed entity records from raw rows
type Validator struct {
	validate *validator.Validate
	logger   ectologger.Logger
}

func New(logger ectologger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
		_, ok := ufCodes[fl.Field().String()]
		return ok
	})
	return &Validator{validate: v, logger: logger}
}

// Struct validates any entity record against its declared constraints
func (v *Validator) Struct(rec any) error {
	return v.validate.Struct(rec)
}

// Programas coerces raw programa rows. Returns the valid records and one
// RowError per rejected row.
func (v *Validator) Programas(rows []map[string]string, extracted time.Time) ([]models.Programa, []RowError) {
	valid := make([]models.Programa, 0, len(rows))
	var rejected []RowError
	for i, row := range rows {
		row = parser.ResolveRowKeys(models.EntityProgramas, row)
		rec := models.Programa{
			TransferGovID:    normalizers.Trim(row["transfer_gov_id"]),
			Nome:             strPtr(row, "nome"),
			OrgaoSuperior:    strPtr(row, "orgao_superior"),
			OrgaoVinculado:   strPtr(row, "orgao_vinculado"),
			Modalidade:       strPtr(row, "modalidade"),
			AcaoOrcamentaria: strPtr(row, "acao_orcamentaria"),
			NaturezaJuridica: strPtr(row, "natureza_juridica"),
			ExtractionDate:   &extracted,
		}
		if errs := v.check(i, rec); len(errs) > 0 {
			rejected = append(rejected, errs...)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejected
}

// Propostas coerces raw proposta rows, parsing Brazilian-formatted money
// and dates along the way.
func (v *Validator) Propostas(rows []map[string]string, extracted time.Time) ([]models.Proposta, []RowError) {
	valid := make([]models.Proposta, 0, len(rows))
	var rejected []RowError
	for i, row := range rows {
		row = parser.ResolveRowKeys(models.EntityPropostas, row)
		var errs []RowError
		rec := models.Proposta{
			TransferGovID:      normalizers.Trim(row["transfer_gov_id"]),
			Titulo:             strPtr(row, "titulo"),
			ValorGlobal:        floatPtr(i, row, "valor_global", &errs),
			ValorRepasse:       floatPtr(i, row, "valor_repasse", &errs),
			ValorContrapartida: floatPtr(i, row, "valor_contrapartida", &errs),
			DataPublicacao:     datePtr(i, row, "data_publicacao", &errs),
			DataInicioVigencia: datePtr(i, row, "data_inicio_vigencia", &errs),
			DataFimVigencia:    datePtr(i, row, "data_fim_vigencia", &errs),
			Situacao:           strPtr(row, "situacao"),
			Estado:             ufPtr(row, "estado"),
			Municipio:          strPtr(row, "municipio"),
			Proponente:         strPtr(row, "proponente"),
			ProgramaID:         strPtr(row, "programa_id"),
			ExtractionDate:     &extracted,
		}
		if cnpj := normalizers.CNPJ(row["identif_proponente"]); cnpj != "" {
			rec.ProponenteCNPJ = &cnpj
		}
		errs = append(errs, v.check(i, rec)...)
		if len(errs) > 0 {
			rejected = append(rejected, errs...)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejected
}

// Apoiadores coerces raw supporter rows
func (v *Validator) Apoiadores(rows []map[string]string, extracted time.Time) ([]models.Apoiador, []RowError) {
	valid := make([]models.Apoiador, 0, len(rows))
	var rejected []RowError
	for i, row := range rows {
		row = parser.ResolveRowKeys(models.EntityApoiadores, row)
		rec := models.Apoiador{
			TransferGovID:  normalizers.Trim(row["transfer_gov_id"]),
			Nome:           strPtr(row, "nome"),
			Tipo:           strPtr(row, "tipo"),
			Orgao:          strPtr(row, "orgao"),
			ExtractionDate: &extracted,
		}
		if errs := v.check(i, rec); len(errs) > 0 {
			rejected = append(rejected, errs...)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejected
}

// Emendas coerces raw amendment rows
func (v *Validator) Emendas(rows []map[string]string, extracted time.Time) ([]models.Emenda, []RowError) {
	valid := make([]models.Emenda, 0, len(rows))
	var rejected []RowError
	for i, row := range rows {
		row = parser.ResolveRowKeys(models.EntityEmendas, row)
		var errs []RowError
		rec := models.Emenda{
			TransferGovID:  normalizers.Trim(row["transfer_gov_id"]),
			Numero:         strPtr(row, "numero"),
			Autor:          strPtr(row, "autor"),
			Valor:          floatPtr(i, row, "valor", &errs),
			Tipo:           strPtr(row, "tipo"),
			Ano:            intPtr(i, row, "ano", &errs),
			ExtractionDate: &extracted,
		}
		errs = append(errs, v.check(i, rec)...)
		if len(errs) > 0 {
			rejected = append(rejected, errs...)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejected
}

// check runs struct validation and flattens the result into RowErrors
func (v *Validator) check(row int, rec any) []RowError {
	err := v.validate.Struct(rec)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []RowError{{Row: row, Message: err.Error()}}
	}
	out := make([]RowError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, RowError{
			Row:     row,
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %s constraint", fe.Tag()),
		})
	}
	return out
}

func strPtr(row map[string]string, col string) *string {
	s := normalizers.Trim(row[col])
	if s == "" {
		return nil
	}
	return &s
}

func ufPtr(row map[string]string, col string) *string {
	s := normalizers.UF(row[col])
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(rowIdx int, row map[string]string, col string, errs *[]RowError) *float64 {
	s := normalizers.Trim(row[col])
	if s == "" {
		return nil
	}
	f, err := ParseDecimal(s)
	if err != nil {
		*errs = append(*errs, RowError{Row: rowIdx, Field: col, Message: "not a valid number"})
		return nil
	}
	return &f
}

func intPtr(rowIdx int, row map[string]string, col string, errs *[]RowError) *int {
	s := normalizers.Trim(row[col])
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*errs = append(*errs, RowError{Row: rowIdx, Field: col, Message: "not a valid integer"})
		return nil
	}
	return &n
}

func datePtr(rowIdx int, row map[string]string, col string, errs *[]RowError) *time.Time {
	s := normalizers.Trim(row[col])
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	*errs = append(*errs, RowError{Row: rowIdx, Field: col, Message: "not a valid date"})
	return nil
}

// ParseDecimal parses a money value in either Brazilian ("1.234,56") or
// plain ("1234.56") notation, tolerating a currency prefix.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}
