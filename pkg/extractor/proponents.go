package extractor

import (
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/snak3gh0st/projetustgov/pkg/models"
	"github.com/snak3gh0st/projetustgov/pkg/normalizers"
)

// nonProfitMarkers flags legal-nature descriptions of civil-society
// organizations when the numeric code is absent.
var nonProfitMarkers = []string{
	"sem fins lucrativos",
	"organizacao da sociedade civil",
	"organização da sociedade civil",
	"associacao privada",
	"associação privada",
	"fundacao privada",
	"fundação privada",
}

// ExtractProponentes builds the applicant dimension from raw proposta rows.
// Proponents are keyed by normalized CNPJ with first-occurrence-wins
// descriptive fields; TotalProposals counts every row carrying the CNPJ.
func ExtractProponentes(rows []map[string]string, extracted time.Time, logger ectologger.Logger) []models.Proponente {
	index := make(map[string]int)
	var out []models.Proponente

	skipped := 0
	for _, row := range rows {
		cnpj := normalizers.CNPJ(row["identif_proponente"])
		if cnpj == "" {
			skipped++
			continue
		}

		if i, ok := index[cnpj]; ok {
			out[i].TotalProposals++
			continue
		}

		natureza := normalizers.Trim(row["natureza_juridica_proponente"])
		p := models.Proponente{
			CNPJ:             cnpj,
			Nome:             strPtr(row["proponente"]),
			NaturezaJuridica: strPtr(natureza),
			IsNonProfit:      isNonProfit(natureza),
			Estado:           strPtr(normalizers.UF(row["estado"])),
			Municipio:        strPtr(row["municipio"]),
			Endereco:         strPtr(row["endereco_proponente"]),
			CEP:              strPtr(normalizers.DigitsOnly(row["cep_proponente"])),
			TotalProposals:   1,
			ExtractionDate:   &extracted,
		}
		index[cnpj] = len(out)
		out = append(out, p)
	}

	logger.WithFields(map[string]any{"proponentes": len(out), "rows_without_cnpj": skipped}).Info("Extracted proponents")
	return out
}

// isNonProfit classifies by IBGE legal-nature code family 3 (private
// non-profit entities) or by a textual marker.
func isNonProfit(natureza string) bool {
	if natureza == "" {
		return false
	}
	digits := normalizers.DigitsOnly(natureza)
	if digits != "" && digits[0] == '3' {
		return true
	}
	lower := strings.ToLower(natureza)
	for _, marker := range nonProfitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
