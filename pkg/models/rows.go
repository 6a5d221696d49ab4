package models

// Row conversions feed the generic upsert engine, which works on column
// keyed maps. Surrogate ids are never included; the store assigns them.

func (p Programa) Row() map[string]any {
	return map[string]any{
		"transfer_gov_id":   p.TransferGovID,
		"nome":              p.Nome,
		"orgao_superior":    p.OrgaoSuperior,
		"orgao_vinculado":   p.OrgaoVinculado,
		"modalidade":        p.Modalidade,
		"acao_orcamentaria": p.AcaoOrcamentaria,
		"natureza_juridica": p.NaturezaJuridica,
		"extraction_date":   p.ExtractionDate,
	}
}

func (p Proposta) Row() map[string]any {
	return map[string]any{
		"transfer_gov_id":      p.TransferGovID,
		"titulo":               p.Titulo,
		"valor_global":         p.ValorGlobal,
		"valor_repasse":        p.ValorRepasse,
		"valor_contrapartida":  p.ValorContrapartida,
		"data_publicacao":      p.DataPublicacao,
		"data_inicio_vigencia": p.DataInicioVigencia,
		"data_fim_vigencia":    p.DataFimVigencia,
		"situacao":             p.Situacao,
		"estado":               p.Estado,
		"municipio":            p.Municipio,
		"proponente":           p.Proponente,
		"programa_id":          p.ProgramaID,
		"proponente_cnpj":      p.ProponenteCNPJ,
		"extraction_date":      p.ExtractionDate,
	}
}

func (a Apoiador) Row() map[string]any {
	return map[string]any{
		"transfer_gov_id": a.TransferGovID,
		"nome":            a.Nome,
		"tipo":            a.Tipo,
		"orgao":           a.Orgao,
		"extraction_date": a.ExtractionDate,
	}
}

func (e Emenda) Row() map[string]any {
	return map[string]any{
		"transfer_gov_id": e.TransferGovID,
		"numero":          e.Numero,
		"autor":           e.Autor,
		"valor":           e.Valor,
		"tipo":            e.Tipo,
		"ano":             e.Ano,
		"extraction_date": e.ExtractionDate,
	}
}

func (p Proponente) Row() map[string]any {
	return map[string]any{
		"cnpj":                  p.CNPJ,
		"nome":                  p.Nome,
		"natureza_juridica":     p.NaturezaJuridica,
		"is_non_profit":         p.IsNonProfit,
		"estado":                p.Estado,
		"municipio":             p.Municipio,
		"endereco":              p.Endereco,
		"cep":                   p.CEP,
		"total_proposals":       p.TotalProposals,
		"total_amendments":      p.TotalAmendments,
		"total_amendment_value": p.TotalAmendmentValue,
		"extraction_date":       p.ExtractionDate,
	}
}

func (j PropostaApoiador) Row() map[string]any {
	return map[string]any{
		"proposta_transfer_gov_id": j.PropostaTransferGovID,
		"apoiador_transfer_gov_id": j.ApoiadorTransferGovID,
		"extraction_date":          j.ExtractionDate,
	}
}

func (j PropostaEmenda) Row() map[string]any {
	return map[string]any{
		"proposta_transfer_gov_id": j.PropostaTransferGovID,
		"emenda_transfer_gov_id":   j.EmendaTransferGovID,
		"extraction_date":          j.ExtractionDate,
	}
}
