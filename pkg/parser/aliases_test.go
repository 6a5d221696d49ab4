package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snak3gh0st/projetustgov/pkg/models"
)

func TestResolveAliases(t *testing.T) {
	table := &Table{
		Entity:  models.EntityPropostas,
		Columns: []string{"id_proposta", "objeto", "uf_proponente"},
		Rows: []map[string]string{
			{"id_proposta": "100", "objeto": "Obra", "uf_proponente": "SP"},
		},
	}

	ResolveAliases(table)

	assert.Equal(t, []string{"transfer_gov_id", "titulo", "estado"}, table.Columns)
	assert.Equal(t, "100", table.Rows[0]["transfer_gov_id"])
	assert.Equal(t, "Obra", table.Rows[0]["titulo"])
	assert.Equal(t, "SP", table.Rows[0]["estado"])
}

func TestResolveAliasesIdempotent(t *testing.T) {
	table := &Table{
		Entity:  models.EntityProgramas,
		Columns: []string{"id_programa", "nome_programa"},
		Rows:    []map[string]string{{"id_programa": "7", "nome_programa": "Saneamento"}},
	}

	ResolveAliases(table)
	first := append([]string(nil), table.Columns...)
	ResolveAliases(table)

	assert.Equal(t, first, table.Columns)
	assert.Equal(t, "7", table.Rows[0]["transfer_gov_id"])
}

func TestResolveAliasesNeverOverwritesCanonical(t *testing.T) {
	table := &Table{
		Entity:  models.EntityPropostas,
		Columns: []string{"transfer_gov_id", "id_proposta"},
		Rows:    []map[string]string{{"transfer_gov_id": "canon", "id_proposta": "raw"}},
	}

	ResolveAliases(table)

	assert.Equal(t, "canon", table.Rows[0]["transfer_gov_id"])
	assert.True(t, table.HasColumn("id_proposta"), "losing alias stays under its raw name")
}

func TestResolveAliasesAccentedHeaders(t *testing.T) {
	table := &Table{
		Entity:  models.EntityPropostas,
		Columns: []string{"ID_Proposta", "Situação_Proposta"},
		Rows:    []map[string]string{{"ID_Proposta": "1", "Situação_Proposta": "Aprovada"}},
	}

	ResolveAliases(table)

	assert.True(t, table.HasColumn("transfer_gov_id"))
	assert.True(t, table.HasColumn("situacao"))
	assert.Equal(t, "Aprovada", table.Rows[0]["situacao"])
}

func TestResolveRowKeys(t *testing.T) {
	row := map[string]string{
		"id_cnpj_programa_emenda_apoiadores_emendas": "55",
		"nome_parlamentar_apoiadores_emendas":        "Fulano",
	}

	out := ResolveRowKeys(models.EntityApoiadores, row)

	assert.Equal(t, "55", out["transfer_gov_id"])
	assert.Equal(t, "Fulano", out["nome"])
}
