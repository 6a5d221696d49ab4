package parser

import (
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/normalizers"
)

// Canonical column names shared across entity types
const (
	ColTransferGovID = "transfer_gov_id"
	ColProgramaID    = "programa_id"
	ColNumeroEmenda  = "numero_emenda"
	ColValorRepasse  = "valor_repasse"
)

// aliasTable maps each canonical column to the raw headers it is known to
// appear under in Transfer Gov exports. Order matters: the first alias found
// in the table wins. Aliases are stored pre-normalized (see normalizers.Header).
var aliasTable = map[models.EntityType]map[string][]string{
	models.EntityPropostas: {
		ColTransferGovID:               {"id_proposta", "numero_proposta", "codigo_proposta", "id"},
		"titulo":                       {"titulo_proposta", "objeto_proposta", "objeto"},
		"valor_global":                 {"valor_global_proposta", "vl_global_prop", "valor_total"},
		ColValorRepasse:                {"valor_repasse_proposta", "vl_repasse_prop"},
		"valor_contrapartida":          {"valor_contrapartida_proposta", "vl_contrapartida_prop"},
		"data_publicacao":              {"data_publicacao_dou", "dt_publicacao"},
		"data_inicio_vigencia":         {"data_inicio_vigencia_proposta", "dt_inicio_vigencia"},
		"data_fim_vigencia":            {"data_fim_vigencia_proposta", "dt_fim_vigencia"},
		"situacao":                     {"situacao_proposta", "status_proposta"},
		"estado":                       {"uf_proponente", "sigla_uf", "uf"},
		"municipio":                    {"municipio_proponente", "cidade"},
		"proponente":                   {"nome_proponente", "proponente_nome"},
		ColProgramaID:                  {"id_programa", "codigo_programa"},
		"identif_proponente":           {"cnpj_proponente", "cnpj"},
		"natureza_juridica_proponente": {"natureza_juridica", "cod_natureza_juridica"},
		"endereco_proponente":          {"endereco", "logradouro_proponente"},
		"cep_proponente":               {"cep"},
	},
	models.EntityApoiadores: {
		ColTransferGovID: {"id_cnpj_programa_emenda_apoiadores_emendas", "id_proposta"},
		"nome":           {"nome_parlamentar_apoiadores_emendas", "nome_parlamentar"},
		"tipo":           {"indicacao_apoiadores_emendas", "tipo_apoiador"},
		"orgao":          {"nome_proponente_apoiadores_emendas", "orgao_apoiador"},
		ColNumeroEmenda:  {"numero_emenda_apoiadores_emendas"},
		ColProgramaID:    {"id_programa", "codigo_programa"},
		ColValorRepasse:  {"valor_repasse_proposta_apoiadores_emendas", "valor_repasse_proposta"},
	},
	models.EntityEmendas: {
		ColTransferGovID: {"id_cnpj_programa_emenda_apoiadores_emendas", "id_proposta"},
		"numero":         {"numero_emenda_apoiadores_emendas", "numero_emenda"},
		"autor":          {"nome_parlamentar_apoiadores_emendas", "nome_parlamentar", "autor_emenda"},
		"valor":          {"valor_repasse_emenda", "valor_emenda"},
		"tipo":           {"indicacao_apoiadores_emendas", "tipo_emenda"},
		"ano":            {"ano_emenda", "exercicio"},
	},
	models.EntityProgramas: {
		ColTransferGovID:    {"id_programa", "codigo_programa", "id"},
		"nome":              {"nome_programa"},
		"orgao_superior":    {"desc_orgao_sup_programa", "orgao_superior_programa"},
		"orgao_vinculado":   {"desc_orgao_programa", "orgao_vinculado_programa"},
		"modalidade":        {"modalidade_programa"},
		"acao_orcamentaria": {"acao_orcamentaria_programa", "cod_acao_orcamentaria"},
		"natureza_juridica": {"natureza_juridica_programa"},
	},
}

// ResolveAliases renames raw source headers onto the canonical vocabulary
// for the entity type. Matching is on normalized headers; canonical columns
// already present are never overwritten; the first alias found wins.
// Idempotent: a second pass changes nothing.
func ResolveAliases(t *Table) {
	aliases, ok := aliasTable[t.Entity]
	if !ok {
		return
	}

	normalized := make(map[string]string, len(t.Columns))
	for _, col := range t.Columns {
		key := normalizers.Header(col)
		if _, exists := normalized[key]; !exists {
			normalized[key] = col
		}
	}

	for canonical, rawHeaders := range aliases {
		if t.HasColumn(canonical) {
			continue
		}
		// the canonical name itself may appear with different casing or accents
		if raw, ok := normalized[normalizers.Header(canonical)]; ok {
			t.RenameColumn(raw, canonical)
			continue
		}
		for _, alias := range rawHeaders {
			if raw, ok := normalized[alias]; ok {
				t.RenameColumn(raw, canonical)
				break
			}
		}
	}
}

// ResolveRowKeys applies the same alias mapping to a single row's keys.
// Covers raw keys that were never normalized as table columns, so the
// record validator and the table reader can never diverge on naming.
func ResolveRowKeys(entity models.EntityType, row map[string]string) map[string]string {
	aliases, ok := aliasTable[entity]
	if !ok {
		return row
	}

	normalized := make(map[string]string, len(row))
	for key := range row {
		nk := normalizers.Header(key)
		if _, exists := normalized[nk]; !exists {
			normalized[nk] = key
		}
	}

	out := make(map[string]string, len(row))
	for key, value := range row {
		out[key] = value
	}

	for canonical, rawHeaders := range aliases {
		if _, ok := out[canonical]; ok {
			continue
		}
		if raw, ok := normalized[normalizers.Header(canonical)]; ok {
			out[canonical] = out[raw]
			delete(out, raw)
			continue
		}
		for _, alias := range rawHeaders {
			if raw, ok := normalized[alias]; ok {
				out[canonical] = out[raw]
				delete(out, raw)
				break
			}
		}
	}
	return out
}
