package parser

import (
	"github.com/Gobusters/ectologger"

	"github.com/snak3gh0st/projetustgov/pkg/models"
)

// SchemaPolicy controls how a missing required column is handled. The
// source files change shape without notice, so the default is to warn and
// let the run continue.
type SchemaPolicy string

const (
	SchemaPolicyWarn   SchemaPolicy = "warn"
	SchemaPolicyStrict SchemaPolicy = "strict"
)

// expectedColumns documents the full column set we want per entity type.
// Absence of an expected (but not required) column is informational only.
var expectedColumns = map[models.EntityType][]string{
	models.EntityPropostas: {
		ColTransferGovID, "titulo", "valor_global", ColValorRepasse,
		"valor_contrapartida", "situacao", "estado", "municipio",
		"proponente", ColProgramaID,
	},
	models.EntityApoiadores: {ColTransferGovID, "nome", "tipo", "orgao"},
	models.EntityEmendas:    {ColTransferGovID, "numero", "autor", "valor", "tipo", "ano"},
	models.EntityProgramas: {
		ColTransferGovID, "nome", "orgao_superior", "orgao_vinculado",
		"modalidade", "acao_orcamentaria", "natureza_juridica",
	},
}

// requiredColumns is the minimum set a file must expose, after alias
// resolution, for its rows to be loadable at all.
var requiredColumns = map[models.EntityType][]string{
	models.EntityPropostas:  {ColTransferGovID},
	models.EntityApoiadores: {ColTransferGovID},
	models.EntityEmendas:    {ColTransferGovID},
	models.EntityProgramas:  {ColTransferGovID},
}

// ValidateSchema checks the required column set for the table's entity type.
// Under the warn policy a missing column is logged and nil is returned;
// under strict a *SchemaError is returned so the caller drops the file.
func ValidateSchema(t *Table, policy SchemaPolicy, logger ectologger.Logger) error {
	required, ok := requiredColumns[t.Entity]
	if !ok {
		logger.WithField("entity", string(t.Entity)).Warn("Unknown entity type, skipping schema validation")
		return nil
	}

	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}

	if len(missing) == 0 {
		if expected, ok := expectedColumns[t.Entity]; ok {
			var absent []string
			for _, col := range expected {
				if !t.HasColumn(col) {
					absent = append(absent, col)
				}
			}
			if len(absent) > 0 {
				logger.WithFields(map[string]any{"entity": string(t.Entity), "columns": absent}).Debug("Expected columns absent from source file")
			}
		}
		return nil
	}

	schemaErr := &SchemaError{Entity: string(t.Entity), Missing: missing}
	if policy == SchemaPolicyStrict {
		return schemaErr
	}

	logger.WithFields(map[string]any{"entity": string(t.Entity), "missing": missing, "path": t.Path}).Warnf("Schema incomplete: %s", schemaErr.Error())
	return nil
}
