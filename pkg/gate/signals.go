package gate

import (
	"fmt"
	"strings"

	"github.com/moisenya/pronoai/pkg/fixtures"
)

// SignalKind is a category of corroborating evidence.
type SignalKind string

const (
	SignalForm      SignalKind = "form"
	SignalStrength  SignalKind = "strength"
	SignalRanking   SignalKind = "ranking"
	SignalContext   SignalKind = "context"
	SignalStability SignalKind = "stability"
)

// sportSignals lists the signal kinds that count for each sport.
var sportSignals = map[fixtures.Sport][]SignalKind{
	fixtures.Football: {SignalForm, SignalStrength, SignalContext, SignalStability},
	fixtures.Tennis:   {SignalForm, SignalStrength, SignalRanking, SignalStability},
	fixtures.Basket:   {SignalForm, SignalStrength, SignalRanking, SignalContext, SignalStability},
}

// DetectSignals returns one label per signal kind the candidate exhibits,
// in a fixed order.
func DetectSignals(c Candidate, t *Thresholds) []string {
	kinds, ok := sportSignals[c.Fixture.Sport]
	if !ok {
		kinds = sportSignals[fixtures.Football]
	}

	var out []string
	for _, kind := range kinds {
		if label, ok := detect(kind, c, t); ok {
			out = append(out, label)
		}
	}
	return out
}

func detect(kind SignalKind, c Candidate, t *Thresholds) (string, bool) {
	f := c.Fixture
	switch kind {
	case SignalForm:
		if !c.Estimate.HasForm {
			return "", false
		}
		return fmt.Sprintf("Forme récente %s / %s", f.Home.Form, f.Away.Form), true
	case SignalStrength:
		if !c.Estimate.Decisive() {
			return "", false
		}
		return fmt.Sprintf("Écart de force %.0f%%", c.Estimate.StrengthDiff()*100), true
	case SignalRanking:
		if !c.Estimate.HasRank {
			return "", false
		}
		return "Classement " + rankLabel(f), true
	case SignalContext:
		if !f.HasContextNotes() {
			return "", false
		}
		notes := append(append(append([]string(nil), f.Notes...), f.Home.Notes...), f.Away.Notes...)
		return "Contexte: " + strings.Join(notes, "; "), true
	case SignalStability:
		if c.Market.ProviderCount < 2 || c.Market.Dispersion >= t.DispersionFlag {
			return "", false
		}
		return fmt.Sprintf("Marché stable (dispersion %.1f%%)", c.Market.Dispersion*100), true
	}
	return "", false
}

func rankLabel(f fixtures.Fixture) string {
	r := func(rank int) string {
		if rank <= 0 {
			return "NC"
		}
		return fmt.Sprintf("#%d", rank)
	}
	return r(f.Home.Rank) + " vs " + r(f.Away.Rank)
}
