package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snak3gh0st/projetustgov/pkg/parser"
	"github.com/snak3gh0st/projetustgov/pkg/validator"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testPipeline() *Pipeline {
	logger := noopLogger()
	return New(
		nil,
		parser.NewReader(parser.SchemaPolicyWarn, logger),
		validator.New(logger),
		nil, nil, nil, nil,
		"", "test", logger,
	)
}

func newRun() *run {
	return &run{
		proponentIndex: make(map[string]int),
		programaLinks:  make(map[string]string),
		extractionDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessFilePropostas(t *testing.T) {
	p := testPipeline()
	st := newRun()

	content := strings.Join([]string{
		"transfer_gov_id;titulo;valor_global;estado;identif_proponente;proponente;natureza_juridica_proponente",
		"1001;Reforma da Escola;1.234,56;sp;12.345.678/0001-99;Prefeitura de Itu;1244-4 Municipio",
		"1002;Posto de Saude;500,00;RJ;12345678000199;Prefeitura de Itu;1244-4 Municipio",
		";Sem identificador;100,00;MG;;;",
	}, "\n")
	file := writeFile(t, t.TempDir(), "propostas.csv", content)

	p.processFile(context.Background(), st, file)

	require.Len(t, st.batch.Propostas, 2)
	assert.Equal(t, "1001", st.batch.Propostas[0].TransferGovID)
	assert.Equal(t, 1234.56, *st.batch.Propostas[0].ValorGlobal)
	assert.Equal(t, "SP", *st.batch.Propostas[0].Estado)
	require.NotNil(t, st.batch.Propostas[0].ProponenteCNPJ)
	assert.Equal(t, "12345678000199", *st.batch.Propostas[0].ProponenteCNPJ)

	// both valid rows name the same applicant
	require.Len(t, st.batch.Proponentes, 1)
	assert.Equal(t, "12345678000199", st.batch.Proponentes[0].CNPJ)
	assert.Equal(t, 2, st.batch.Proponentes[0].TotalProposals)

	assert.Equal(t, 1, st.filesProcessed)
	require.Len(t, st.errors, 1)
	assert.Contains(t, st.errors[0], "propostas.csv")

	// two proposals plus one proponent
	assert.Len(t, st.lineageRows, 3)
}

func TestProcessFileRelationships(t *testing.T) {
	p := testPipeline()
	st := newRun()

	content := strings.Join([]string{
		"transfer_gov_id;nome;tipo;orgao;numero_emenda;valor_repasse;programa_id",
		"1001;Dep. Silva;individual;;E100;R$ 2.000,00;PG1",
		"1001;Dep. Silva;bancada;;E100;;PG2",
		"1002;Dep. Souza;individual;;E200;1000,00;PG1",
		";Dep. Fantasma;individual;;E300;;",
	}, "\n")
	file := writeFile(t, t.TempDir(), "apoiadores_emendas.csv", content)

	p.processFile(context.Background(), st, file)

	assert.Len(t, st.batch.Apoiadores, 2)
	assert.Len(t, st.batch.Emendas, 2)
	assert.Len(t, st.batch.PropostaApoiadores, 2)
	assert.Len(t, st.batch.PropostaEmendas, 2)

	assert.Equal(t, map[string]string{"1001": "PG1", "1002": "PG1"}, st.programaLinks)

	require.Len(t, st.errors, 1)
	assert.Contains(t, st.errors[0], "1 rows missing transfer_gov_id")

	// 2 supporters + 2 amendments + 2 + 2 junction edges
	assert.Len(t, st.lineageRows, 8)
}

func TestProcessFileUnknownEntitySkips(t *testing.T) {
	p := testPipeline()
	st := newRun()

	file := writeFile(t, t.TempDir(), "notas.csv", "a;b\n1;2\n")
	p.processFile(context.Background(), st, file)

	assert.Equal(t, 0, st.filesProcessed)
	assert.Empty(t, st.errors)
}

func TestProcessFileUnreadableFileIsAnError(t *testing.T) {
	p := testPipeline()
	st := newRun()

	file := writeFile(t, t.TempDir(), "programas.csv", "")
	p.processFile(context.Background(), st, file)

	assert.Equal(t, 1, st.filesProcessed)
	require.Len(t, st.errors, 1)
	assert.Empty(t, st.batch.Programas)
}

func TestApplyProgramaLinks(t *testing.T) {
	p := testPipeline()
	st := newRun()

	existing := "PGX"
	valid, _ := p.validate.Propostas([]map[string]string{
		{"transfer_gov_id": "1001"},
		{"transfer_gov_id": "1002", "programa_id": existing},
		{"transfer_gov_id": "1003"},
	}, st.extractionDate)
	st.batch.Propostas = valid
	st.programaLinks = map[string]string{"1001": "PG1", "1002": "PG9"}

	p.applyProgramaLinks(context.Background(), st)

	require.NotNil(t, st.batch.Propostas[0].ProgramaID)
	assert.Equal(t, "PG1", *st.batch.Propostas[0].ProgramaID)
	// links never overwrite a program id that came with the proposal
	assert.Equal(t, existing, *st.batch.Propostas[1].ProgramaID)
	assert.Nil(t, st.batch.Propostas[2].ProgramaID)
}

func TestJoinErrors(t *testing.T) {
	assert.Equal(t, "", joinErrors(nil))
	assert.Equal(t, "a; b", joinErrors([]string{"a", "b"}))

	many := []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7"}
	joined := joinErrors(many)
	assert.Contains(t, joined, "e5")
	assert.NotContains(t, joined, "e6")
}
