package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

var extracted = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestPropostasValid(t *testing.T) {
	rows := []map[string]string{
		{
			"transfer_gov_id":    "100",
			"titulo":             "Reforma da escola",
			"valor_global":       "1.234,56",
			"valor_repasse":      "1000.00",
			"estado":             "sp",
			"identif_proponente": "12.345.678/0001-99",
			"data_publicacao":    "2026-01-15",
		},
	}

	v := New(noopLogger())
	valid, rejected := v.Propostas(rows, extracted)

	require.Len(t, valid, 1)
	assert.Empty(t, rejected)

	rec := valid[0]
	assert.Equal(t, "100", rec.TransferGovID)
	require.NotNil(t, rec.ValorGlobal)
	assert.InDelta(t, 1234.56, *rec.ValorGlobal, 0.001)
	require.NotNil(t, rec.Estado)
	assert.Equal(t, "SP", *rec.Estado)
	require.NotNil(t, rec.ProponenteCNPJ)
	assert.Equal(t, "12345678000199", *rec.ProponenteCNPJ)
	require.NotNil(t, rec.DataPublicacao)
	assert.Equal(t, 2026, rec.DataPublicacao.Year())
}

func TestPropostasRejections(t *testing.T) {
	tests := []struct {
		name  string
		row   map[string]string
		field string
	}{
		{
			name:  "missing natural key",
			row:   map[string]string{"titulo": "Obra"},
			field: "TransferGovID",
		},
		{
			name:  "negative money",
			row:   map[string]string{"transfer_gov_id": "1", "valor_repasse": "-10"},
			field: "ValorRepasse",
		},
		{
			name:  "invalid state code",
			row:   map[string]string{"transfer_gov_id": "1", "estado": "XX"},
			field: "Estado",
		},
		{
			name:  "unparseable number",
			row:   map[string]string{"transfer_gov_id": "1", "valor_global": "dez mil"},
			field: "valor_global",
		},
		{
			name:  "unparseable date",
			row:   map[string]string{"transfer_gov_id": "1", "data_publicacao": "ontem"},
			field: "data_publicacao",
		},
	}

	v := New(noopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, rejected := v.Propostas([]map[string]string{tt.row}, extracted)

			assert.Empty(t, valid)
			require.NotEmpty(t, rejected)
			assert.Equal(t, tt.field, rejected[0].Field)
		})
	}
}

func TestPropostasAcceptsEveryStateCode(t *testing.T) {
	require.Len(t, ufCodes, 27)

	v := New(noopLogger())
	for code := range ufCodes {
		t.Run(code, func(t *testing.T) {
			rows := []map[string]string{
				{"transfer_gov_id": "1", "estado": " " + strings.ToLower(code) + " "},
			}
			valid, rejected := v.Propostas(rows, extracted)

			require.Len(t, valid, 1)
			assert.Empty(t, rejected)
			require.NotNil(t, valid[0].Estado)
			assert.Equal(t, code, *valid[0].Estado)
		})
	}
}

func TestPropostasResolvesRawHeaders(t *testing.T) {
	rows := []map[string]string{
		{
			"id_proposta":     "77",
			"vl_global_prop":  "1.000,00",
			"uf_proponente":   "mg",
			"cnpj_proponente": "12.345.678/0001-99",
		},
	}

	v := New(noopLogger())
	valid, rejected := v.Propostas(rows, extracted)

	require.Len(t, valid, 1)
	assert.Empty(t, rejected)

	rec := valid[0]
	assert.Equal(t, "77", rec.TransferGovID)
	require.NotNil(t, rec.ValorGlobal)
	assert.InDelta(t, 1000.0, *rec.ValorGlobal, 0.001)
	require.NotNil(t, rec.Estado)
	assert.Equal(t, "MG", *rec.Estado)
	require.NotNil(t, rec.ProponenteCNPJ)
	assert.Equal(t, "12345678000199", *rec.ProponenteCNPJ)
}

func TestPropostasPartialRejection(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "1", "titulo": "ok"},
		{"titulo": "sem chave"},
		{"transfer_gov_id": "3", "titulo": "tambem ok"},
	}

	v := New(noopLogger())
	valid, rejected := v.Propostas(rows, extracted)

	assert.Len(t, valid, 2)
	assert.Len(t, rejected, 1)
	assert.Equal(t, 1, rejected[0].Row)
}

func TestEmendasYearBounds(t *testing.T) {
	tests := []struct {
		name  string
		ano   string
		valid bool
	}{
		{name: "in range", ano: "2024", valid: true},
		{name: "lower bound", ano: "2000", valid: true},
		{name: "upper bound", ano: "2100", valid: true},
		{name: "too old", ano: "1999", valid: false},
		{name: "too far out", ano: "2101", valid: false},
		{name: "absent", ano: "", valid: true},
	}

	v := New(noopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []map[string]string{{"transfer_gov_id": "9", "ano": tt.ano}}
			valid, rejected := v.Emendas(rows, extracted)

			if tt.valid {
				assert.Len(t, valid, 1)
				assert.Empty(t, rejected)
			} else {
				assert.Empty(t, valid)
				assert.NotEmpty(t, rejected)
			}
		})
	}
}

func TestApoiadores(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "abc", "nome": "Fulano"},
		{"nome": "Sem Chave"},
	}

	v := New(noopLogger())
	valid, rejected := v.Apoiadores(rows, extracted)

	require.Len(t, valid, 1)
	assert.Equal(t, "abc", valid[0].TransferGovID)
	assert.Len(t, rejected, 1)
}

func TestProgramas(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "P1", "nome": "Saneamento", "orgao_superior": "Ministerio"},
	}

	v := New(noopLogger())
	valid, rejected := v.Programas(rows, extracted)

	require.Len(t, valid, 1)
	assert.Empty(t, rejected)
	require.NotNil(t, valid[0].Nome)
	assert.Equal(t, "Saneamento", *valid[0].Nome)
	require.NotNil(t, valid[0].ExtractionDate)
	assert.Equal(t, extracted, *valid[0].ExtractionDate)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{input: "1.234,56", expected: 1234.56},
		{input: "1234.56", expected: 1234.56},
		{input: "1234", expected: 1234},
		{input: "R$ 2.500,00", expected: 2500},
		{input: "0,5", expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}

	_, err := ParseDecimal("dez")
	assert.Error(t, err)
}
