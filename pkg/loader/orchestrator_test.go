package loader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snak3gh0st/projetustgov/pkg/models"
)

func strp(s string) *string { return &s }

func TestLoadDependencyOrder(t *testing.T) {
	tx := &fakeTx{}
	loader := NewLoader(NewEngine(500, noopLogger()), noopLogger())

	batch := &Batch{
		Programas:          []models.Programa{{TransferGovID: "p1"}},
		Proponentes:        []models.Proponente{{CNPJ: "12345678000199"}},
		Propostas:          []models.Proposta{{TransferGovID: "pr1"}},
		Apoiadores:         []models.Apoiador{{TransferGovID: "a1", Nome: strp("Deputado X")}},
		Emendas:            []models.Emenda{{TransferGovID: "e1"}},
		PropostaApoiadores: []models.PropostaApoiador{{PropostaTransferGovID: "pr1", ApoiadorTransferGovID: "a1"}},
		PropostaEmendas:    []models.PropostaEmenda{{PropostaTransferGovID: "pr1", EmendaTransferGovID: "e1"}},
	}

	stats, err := loader.Load(context.Background(), tx, batch)
	require.NoError(t, err)

	// seven upserts plus the aggregate refresh
	require.Len(t, tx.queries, 8)

	wantOrder := []string{
		"programas", "proponentes", "propostas", "apoiadores", "emendas",
		"proposta_apoiadores", "proposta_emendas",
	}
	for i, table := range wantOrder {
		assert.Contains(t, tx.queries[i], "INSERT INTO "+table+" ", "step %d", i)
		assert.Equal(t, 1, stats[table].Upserted, table)
	}
	assert.Contains(t, tx.queries[7], "UPDATE proponentes")
	assert.Contains(t, tx.queries[7], "total_amendment_value")
}

func TestLoadEmptyTablesSkipStatements(t *testing.T) {
	tx := &fakeTx{}
	loader := NewLoader(NewEngine(500, noopLogger()), noopLogger())

	batch := &Batch{Programas: []models.Programa{{TransferGovID: "p1"}}}
	stats, err := loader.Load(context.Background(), tx, batch)
	require.NoError(t, err)

	// one insert plus the aggregate refresh; empty tables issue nothing
	require.Len(t, tx.queries, 2)
	assert.Equal(t, 1, stats["programas"].Upserted)
	assert.Equal(t, 0, stats["propostas"].Processed)
}

func TestLoadStopsOnFailure(t *testing.T) {
	tx := &fakeTx{failOn: "propostas"}
	loader := NewLoader(NewEngine(500, noopLogger()), noopLogger())

	batch := &Batch{
		Programas: []models.Programa{{TransferGovID: "p1"}},
		Propostas: []models.Proposta{{TransferGovID: "pr1"}},
		Emendas:   []models.Emenda{{TransferGovID: "e1"}},
	}

	stats, err := loader.Load(context.Background(), tx, batch)
	require.Error(t, err)

	assert.Equal(t, 1, stats["programas"].Upserted)
	assert.Equal(t, 0, stats["emendas"].Upserted, "later tables never run")
	for _, q := range tx.queries {
		assert.False(t, strings.Contains(q, "INSERT INTO emendas"))
	}
}

func TestJunctionSpecsHaveNoUpdatedAt(t *testing.T) {
	assert.Empty(t, PropostaApoiadoresSpec.UpdatedAtColumn)
	assert.Empty(t, PropostaEmendasSpec.UpdatedAtColumn)
	assert.Len(t, PropostaApoiadoresSpec.KeyColumns, 2)
	assert.Len(t, PropostaEmendasSpec.KeyColumns, 2)
}
