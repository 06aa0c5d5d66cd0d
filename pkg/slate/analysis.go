package slate

import (
	"fmt"
	"math"
	"strings"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
)

func percent(p float64) int {
	return int(math.Round(p * 100))
}

func describeBlueprint(b Blueprint, p float64) string {
	pct := percent(p)
	fav, out := b.favourite()
	switch b.Sport {
	case fixtures.Football:
		return fmt.Sprintf("%s profite de %s Probabilité estimée à %d%%. %s montre des signes de fatigue récemment.",
			fav.Name, b.Angle, pct, out.Name)
	case fixtures.Tennis:
		if b.Preferred == PreferOver {
			return fmt.Sprintf("Le scénario over s'impose : %s La probabilité que l'on dépasse la ligne est estimée à %d%%.",
				b.Angle, pct)
		}
		return fmt.Sprintf("%s part avec l'avantage sur %s. %s Probabilité estimée à %d%%. %s devra hausser son %% de première balle.",
			fav.Name, b.Surface, b.Angle, pct, out.Name)
	default:
		if b.Preferred == PreferOver {
			return fmt.Sprintf("Pace élevé attendu : %s Probabilité d'un total supérieur estimée à %d%%.", b.Angle, pct)
		}
		return fmt.Sprintf("%s possède un edge sur 48 minutes. %s Probabilité estimée à %d%%. %s souffre défensivement sur les dernières sorties.",
			fav.Name, b.Angle, pct, out.Name)
	}
}

func describeLive(c gate.Candidate) string {
	f := c.Fixture
	side := c.Side()
	fav, out := f.Name(side), f.Name(side.Opposite())
	pct := percent(c.Estimate.Probability)
	implied := percent(1 / c.Market.Median)

	var lead string
	switch f.Sport {
	case fixtures.Tennis:
		lead = fmt.Sprintf("%s aborde ce duel face à %s avec un meilleur niveau récent.", fav, out)
	case fixtures.Basket:
		lead = fmt.Sprintf("%s possède un edge sur 48 minutes face à %s.", fav, out)
	default:
		if side == fixtures.SideHome {
			lead = fmt.Sprintf("%s profite de l'avantage du terrain face à %s.", fav, out)
		} else {
			lead = fmt.Sprintf("%s s'impose comme favori à l'extérieur face à %s.", fav, out)
		}
	}

	var b strings.Builder
	b.WriteString(lead)
	fmt.Fprintf(&b, " Probabilité estimée à %d%% contre %d%% implicite (cote médiane %.2f sur %d bookmakers).",
		pct, implied, c.Market.Median, c.Market.ProviderCount)
	if len(c.Signals) > 0 {
		fmt.Fprintf(&b, " Signaux : %s.", strings.Join(c.Signals, ", "))
	}
	if c.HasFlag(gate.FlagRecheck) {
		b.WriteString(" Cotes dispersées entre bookmakers, à revérifier avant de jouer.")
	}
	return b.String()
}

func liveContext(c gate.Candidate) string {
	f := c.Fixture
	var parts []string
	if f.Venue != "" {
		parts = append(parts, "Lieu: "+f.Venue)
	}
	if f.Home.Record != "" || f.Away.Record != "" {
		parts = append(parts, fmt.Sprintf("Bilans %s / %s", orDash(f.Home.Record), orDash(f.Away.Record)))
	}
	parts = append(parts, f.Notes...)
	parts = append(parts, f.Home.Notes...)
	parts = append(parts, f.Away.Notes...)
	return strings.Join(parts, ". ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
