// Package extractor derives secondary entities from the combined
// apoiadores/emendas export: supporter and amendment dimensions, the
// proposal junction edges between them, and the proposal to program links.
package extractor

import (
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/snak3gh0st/projetustgov/pkg/fingerprint"
	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/normalizers"
	"github.com/snak3gh0st/projetustgov/pkg/validator"
)

// Relationships holds everything extracted from one supporters/amendments
// table. Slices preserve first-occurrence order.
type Relationships struct {
	Apoiadores       []models.Apoiador
	Emendas          []models.Emenda
	PropostaApoiador []models.PropostaApoiador
	PropostaEmenda   []models.PropostaEmenda

	// ProgramaLinks maps proposta transfer_gov_id to programa transfer_gov_id.
	// The first link seen for a proposal wins.
	ProgramaLinks map[string]string
}

// ExtractRelationships walks the combined export once. Supporters are keyed
// by a hash of their name since the source carries no supporter id;
// amendments are keyed by their number. Duplicate rows collapse with
// first-occurrence-wins descriptive fields, and junction edges are unique
// per pair.
func ExtractRelationships(rows []map[string]string, extracted time.Time, logger ectologger.Logger) *Relationships {
	out := &Relationships{ProgramaLinks: make(map[string]string)}

	seenApoiadores := make(map[string]struct{})
	seenEmendas := make(map[string]struct{})
	seenApoiadorEdges := make(map[[2]string]struct{})
	seenEmendaEdges := make(map[[2]string]struct{})

	for _, row := range rows {
		propostaID := normalizers.Trim(row["transfer_gov_id"])
		if propostaID == "" {
			continue
		}

		if programaID := normalizers.Trim(row["programa_id"]); programaID != "" {
			if _, ok := out.ProgramaLinks[propostaID]; !ok {
				out.ProgramaLinks[propostaID] = programaID
			}
		}

		if nome := normalizers.Trim(row["nome"]); nome != "" {
			key := fingerprint.SupporterKey(nome)
			if _, ok := seenApoiadores[key]; !ok {
				seenApoiadores[key] = struct{}{}
				out.Apoiadores = append(out.Apoiadores, models.Apoiador{
					TransferGovID:  key,
					Nome:           &nome,
					Tipo:           strPtr(row["tipo"]),
					Orgao:          strPtr(row["orgao"]),
					ExtractionDate: &extracted,
				})
			}
			edge := [2]string{propostaID, key}
			if _, ok := seenApoiadorEdges[edge]; !ok {
				seenApoiadorEdges[edge] = struct{}{}
				out.PropostaApoiador = append(out.PropostaApoiador, models.PropostaApoiador{
					PropostaTransferGovID: propostaID,
					ApoiadorTransferGovID: key,
					ExtractionDate:        &extracted,
				})
			}
		}

		if numero := normalizers.Trim(row["numero_emenda"]); numero != "" {
			if _, ok := seenEmendas[numero]; !ok {
				seenEmendas[numero] = struct{}{}
				emenda := models.Emenda{
					TransferGovID:  numero,
					Numero:         &numero,
					Autor:          strPtr(row["nome"]),
					Tipo:           strPtr(row["tipo"]),
					ExtractionDate: &extracted,
				}
				if raw := normalizers.Trim(row["valor_repasse"]); raw != "" {
					if valor, err := validator.ParseDecimal(raw); err == nil && valor >= 0 {
						emenda.Valor = &valor
					} else {
						logger.WithFields(map[string]any{"numero_emenda": numero, "valor": raw}).Debug("Skipping unparseable amendment value")
					}
				}
				out.Emendas = append(out.Emendas, emenda)
			}
			edge := [2]string{propostaID, numero}
			if _, ok := seenEmendaEdges[edge]; !ok {
				seenEmendaEdges[edge] = struct{}{}
				out.PropostaEmenda = append(out.PropostaEmenda, models.PropostaEmenda{
					PropostaTransferGovID: propostaID,
					EmendaTransferGovID:   numero,
					ExtractionDate:        &extracted,
				})
			}
		}
	}

	logger.WithFields(map[string]any{
		"apoiadores":     len(out.Apoiadores),
		"emendas":        len(out.Emendas),
		"apoiador_edges": len(out.PropostaApoiador),
		"emenda_edges":   len(out.PropostaEmenda),
		"programa_links": len(out.ProgramaLinks),
	}).Info("Extracted relationships")

	return out
}

func strPtr(s string) *string {
	s = normalizers.Trim(s)
	if s == "" {
		return nil
	}
	return &s
}
