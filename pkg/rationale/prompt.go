package rationale

import (
	"fmt"
	"strings"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/slate"
)

const systemPrompt = "Tu es un expert en paris sportifs."

var instructions = []string{
	"Pour chacune des rencontres ci-dessous, rédige une analyse courte (2-3 phrases) en français qui justifie le pronostic proposé.",
	"Structure ton analyse avec des arguments concrets : dynamique récente, facteurs tactiques, contexte (repos, blessures, surface, etc.).",
	"Si une cote de marché est fournie, compare-la à notre estimation et explique l'écart sans promettre de gain.",
	"Sois factuel, sans garantie de résultat, et évite les propos trop agressifs ou sensationnalistes.",
	"Renvoie uniquement un objet JSON du format suivant :",
	`{"picks": [{"id": "<id>", "analysis": "<texte>"}, ...]}`,
}

const fallbackNotice = "Attention : aucune rencontre du jour n'a passé nos filtres. Les pronostics ci-dessous viennent de notre sélection de secours, présente-les comme tels."

// BuildPrompt lists every pick with the facts the model may use, followed
// by the per-sport coverage of the scan. A nil summaries map omits the
// coverage block.
func BuildPrompt(picks []slate.Pick, summaries map[fixtures.Sport]*slate.SportSummary, fallback bool) string {
	blocks := make([]string, 0, len(picks))
	for i, p := range picks {
		lines := []string{
			fmt.Sprintf("%d. id: %s", i+1, p.ID),
			"   sport: " + string(p.Sport),
			"   league: " + p.League,
			"   match: " + p.Match,
			"   marche: " + p.Market,
			"   pronostic: " + p.PickLabel,
			fmt.Sprintf("   confiance: %d%%", p.Confidence),
			fmt.Sprintf("   cote: %.2f", p.ModelOdds),
		}
		if p.KickoffISO != "" {
			lines = append(lines, "   coup_denvoi: "+p.KickoffISO)
		}
		if p.MarketOdds != nil {
			lines = append(lines, fmt.Sprintf("   cote_marche: %.2f", *p.MarketOdds))
		}
		if len(p.MarketProviders) > 0 {
			lines = append(lines, "   bookmaker: "+strings.Join(p.MarketProviders, ", "))
		}
		if prob := p.MarketProbability(); prob > 0 {
			lines = append(lines, fmt.Sprintf("   proba_marche: %.0f%%", prob*100))
		}
		if p.Context != "" {
			lines = append(lines, "   contexte: "+p.Context)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	parts := append([]string(nil), instructions...)
	if fallback {
		parts = append(parts, fallbackNotice)
	}
	parts = append(parts, "Matches :", strings.Join(blocks, "\n\n"))
	if cov := coverage(summaries); cov != "" {
		parts = append(parts, "Couverture du jour :", cov)
	}
	return strings.Join(parts, "\n\n")
}

func coverage(summaries map[fixtures.Sport]*slate.SportSummary) string {
	var lines []string
	for _, sport := range fixtures.Sports() {
		sum, ok := summaries[sport]
		if !ok || sum == nil {
			continue
		}
		line := fmt.Sprintf("- %s: %d confirmés, %d candidats, %d retenus", sport, sum.Confirmed, sum.Candidates, sum.Selected)
		if sum.CoverageNote != "" {
			line += " (" + sum.CoverageNote + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
