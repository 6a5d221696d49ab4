package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProponentes(t *testing.T) {
	rows := []map[string]string{
		{
			"identif_proponente":           "12.345.678/0001-99",
			"proponente":                   "Prefeitura de Campinas",
			"natureza_juridica_proponente": "1244-4 Municipio",
			"estado":                       "sp",
			"municipio":                    "Campinas",
			"cep_proponente":               "13010-000",
		},
		{"identif_proponente": "12345678000199", "proponente": "Nome Divergente"},
		{"identif_proponente": "98.765.432/0001-10", "proponente": "Associacao Beneficente", "natureza_juridica_proponente": "399-9 Associação Privada"},
		{"identif_proponente": "", "proponente": "Sem CNPJ"},
		{"identif_proponente": "0", "proponente": "CNPJ Zerado"},
	}

	proponentes := ExtractProponentes(rows, extracted, noopLogger())

	require.Len(t, proponentes, 2)

	first := proponentes[0]
	assert.Equal(t, "12345678000199", first.CNPJ)
	require.NotNil(t, first.Nome)
	assert.Equal(t, "Prefeitura de Campinas", *first.Nome, "first occurrence wins")
	assert.Equal(t, 2, first.TotalProposals, "later occurrences only count")
	assert.False(t, first.IsNonProfit)
	require.NotNil(t, first.Estado)
	assert.Equal(t, "SP", *first.Estado)
	require.NotNil(t, first.CEP)
	assert.Equal(t, "13010000", *first.CEP)

	second := proponentes[1]
	assert.Equal(t, "98765432000110", second.CNPJ)
	assert.True(t, second.IsNonProfit)
	assert.Equal(t, 1, second.TotalProposals)
}

func TestIsNonProfit(t *testing.T) {
	tests := []struct {
		name     string
		natureza string
		expected bool
	}{
		{name: "code family 3", natureza: "306-9 Fundação Privada", expected: true},
		{name: "textual marker", natureza: "Entidade sem fins lucrativos", expected: true},
		{name: "marker with accents", natureza: "Organização da Sociedade Civil", expected: true},
		{name: "municipality", natureza: "1244-4 Municipio", expected: false},
		{name: "empty", natureza: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isNonProfit(tt.natureza))
		})
	}
}
