package gate

import (
	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/market"
	"github.com/moisenya/pronoai/pkg/model"
)

// FlagRecheck marks a pick whose bookmaker prices disagree widely.
const FlagRecheck = "re-check"

// Candidate is a fixture carried through qualification.
type Candidate struct {
	Fixture            fixtures.Fixture
	Confirmed          bool
	ConfirmationReason string // set when not confirmed
	Estimate           model.Estimate
	Market             market.Snapshot // quotes on the picked side
	Edge               float64
	Signals            []string
	Flags              []string
}

// Analyse runs the model on a fixture and aggregates the quotes on the
// side it picks.
func Analyse(f fixtures.Fixture, confirmed bool, reason string, m *model.Model) Candidate {
	est := m.Estimate(f)
	return Candidate{
		Fixture:            f,
		Confirmed:          confirmed,
		ConfirmationReason: reason,
		Estimate:           est,
		Market:             market.Aggregate(f.Quotes(est.Side)),
	}
}

// Side is the picked side.
func (c Candidate) Side() fixtures.Side {
	return c.Estimate.Side
}

// PickLabel is the user-facing selection, e.g. "Arsenal gagne".
func (c Candidate) PickLabel() string {
	return c.Fixture.Name(c.Side()) + " gagne"
}

// MarketLabel names the market the pick is placed on.
func (c Candidate) MarketLabel() string {
	switch c.Fixture.Sport {
	case fixtures.Tennis:
		return "Vainqueur du match"
	case fixtures.Basket:
		return "Vainqueur"
	default:
		return "1X2"
	}
}

// HasFlag reports whether the candidate carries flag.
func (c Candidate) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func (c Candidate) withFlag(flag string) Candidate {
	if c.HasFlag(flag) {
		return c
	}
	c.Flags = append(append([]string(nil), c.Flags...), flag)
	return c
}
