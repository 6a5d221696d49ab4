package extractor

import (
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snak3gh0st/projetustgov/pkg/fingerprint"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

var extracted = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestExtractRelationshipsDedup(t *testing.T) {
	// one parliamentarian backing three amendments across two proposals
	rows := []map[string]string{
		{"transfer_gov_id": "P1", "nome": "Deputado Fulano", "tipo": "individual", "numero_emenda": "E1", "valor_repasse": "1000"},
		{"transfer_gov_id": "P1", "nome": "Deputado Fulano", "tipo": "bancada", "numero_emenda": "E2", "valor_repasse": "2000"},
		{"transfer_gov_id": "P2", "nome": "Deputado Fulano", "numero_emenda": "E3", "valor_repasse": "3000"},
	}

	rels := ExtractRelationships(rows, extracted, noopLogger())

	require.Len(t, rels.Apoiadores, 1)
	assert.Len(t, rels.Emendas, 3)
	assert.Len(t, rels.PropostaApoiador, 2, "one edge per distinct proposal")
	assert.Len(t, rels.PropostaEmenda, 3)

	supporter := rels.Apoiadores[0]
	assert.Equal(t, fingerprint.SupporterKey("Deputado Fulano"), supporter.TransferGovID)
	require.NotNil(t, supporter.Tipo)
	assert.Equal(t, "individual", *supporter.Tipo, "first occurrence wins descriptive fields")
}

func TestExtractRelationshipsSkipsRowsWithoutProposal(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "", "nome": "Fantasma", "numero_emenda": "E9"},
		{"nome": "Outro Fantasma"},
	}

	rels := ExtractRelationships(rows, extracted, noopLogger())

	assert.Empty(t, rels.Apoiadores)
	assert.Empty(t, rels.Emendas)
	assert.Empty(t, rels.PropostaApoiador)
	assert.Empty(t, rels.PropostaEmenda)
}

func TestExtractRelationshipsJunctionUniqueness(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "P1", "nome": "Fulano", "numero_emenda": "E1"},
		{"transfer_gov_id": "P1", "nome": "Fulano", "numero_emenda": "E1"},
	}

	rels := ExtractRelationships(rows, extracted, noopLogger())

	assert.Len(t, rels.PropostaApoiador, 1)
	assert.Len(t, rels.PropostaEmenda, 1)
}

func TestExtractRelationshipsProgramaLinks(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "P1", "programa_id": "PRG1", "nome": "Fulano"},
		{"transfer_gov_id": "P1", "programa_id": "PRG2", "nome": "Fulano"},
		{"transfer_gov_id": "P2", "programa_id": "PRG3"},
	}

	rels := ExtractRelationships(rows, extracted, noopLogger())

	assert.Equal(t, "PRG1", rels.ProgramaLinks["P1"], "first link wins")
	assert.Equal(t, "PRG3", rels.ProgramaLinks["P2"])
}

func TestExtractRelationshipsAmendmentValue(t *testing.T) {
	rows := []map[string]string{
		{"transfer_gov_id": "P1", "numero_emenda": "E1", "valor_repasse": "1.500,50"},
		{"transfer_gov_id": "P2", "numero_emenda": "E2", "valor_repasse": "not a number"},
	}

	rels := ExtractRelationships(rows, extracted, noopLogger())

	require.Len(t, rels.Emendas, 2)
	require.NotNil(t, rels.Emendas[0].Valor)
	assert.InDelta(t, 1500.50, *rels.Emendas[0].Valor, 0.001)
	assert.Nil(t, rels.Emendas[1].Valor, "unparseable value is dropped, not fatal")
}
