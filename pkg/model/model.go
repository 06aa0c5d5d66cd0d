package model

import (
	"math"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/market"
)

const (
	rawFloor     = 0.38
	rawCeiling   = 0.82
	pickFloor    = 0.52
	pickCeiling  = 0.82
	strengthEdge = 0.05
)

// Params tunes the probability curve for one sport.
type Params struct {
	HomeAdvantage  float64
	DiffMultiplier float64
	RankCap        int
}

// DefaultParams returns the tuned parameters per sport.
func DefaultParams() map[fixtures.Sport]Params {
	return map[fixtures.Sport]Params{
		fixtures.Football: {HomeAdvantage: 0.04, DiffMultiplier: 2.4, RankCap: TeamRankCap},
		fixtures.Basket:   {HomeAdvantage: 0.03, DiffMultiplier: 3.0, RankCap: TeamRankCap},
		fixtures.Tennis:   {HomeAdvantage: 0, DiffMultiplier: 3.5, RankCap: IndividualRankCap},
	}
}

// Estimate is the model's view of one fixture.
type Estimate struct {
	Side         fixtures.Side
	Probability  float64
	ModelOdds    float64
	HomeStrength float64
	AwayStrength float64
	HasForm      bool
	HasRank      bool
}

// StrengthDiff is the absolute strength gap between the competitors.
func (e Estimate) StrengthDiff() float64 {
	return math.Abs(e.HomeStrength - e.AwayStrength)
}

// Decisive reports whether the strength gap is at least 5 points.
func (e Estimate) Decisive() bool {
	return e.StrengthDiff() >= strengthEdge
}

// Model turns competitor stats into a pick side and probability.
type Model struct {
	params map[fixtures.Sport]Params
}

// New creates a model. Sports missing from params use the defaults.
func New(params map[fixtures.Sport]Params) *Model {
	merged := DefaultParams()
	for sport, p := range params {
		merged[sport] = p
	}
	return &Model{params: merged}
}

// Estimate computes both strengths, the favoured side and its probability.
// The raw probability is clamped to [0.38, 0.82]; below 0.5 the pick flips
// to the away side. The reported probability is always in [0.52, 0.82].
func (m *Model) Estimate(f fixtures.Fixture) Estimate {
	p, ok := m.params[f.Sport]
	if !ok {
		p = Params{DiffMultiplier: 2.5, RankCap: TeamRankCap}
	}

	est := Estimate{
		HomeStrength: Strength(f.Home.Record, f.Home.Form, f.Home.Rank, p.RankCap),
		AwayStrength: Strength(f.Away.Record, f.Away.Form, f.Away.Rank, p.RankCap),
	}
	_, homeForm := FormBoost(f.Home.Form)
	_, awayForm := FormBoost(f.Away.Form)
	est.HasForm = homeForm && awayForm
	est.HasRank = f.Home.Rank > 0 || f.Away.Rank > 0

	raw := clamp(Logistic((est.HomeStrength-est.AwayStrength+p.HomeAdvantage)*p.DiffMultiplier), rawFloor, rawCeiling)
	if raw < 0.5 {
		est.Side = fixtures.SideAway
		est.Probability = clamp(1-raw, pickFloor, pickCeiling)
	} else {
		est.Side = fixtures.SideHome
		est.Probability = clamp(raw, pickFloor, pickCeiling)
	}
	est.ModelOdds = Odds(est.Probability)
	return est
}

// Logistic is the standard sigmoid.
func Logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Odds converts a probability into decimal odds rounded to 2 places.
// Probabilities under 1% are floored at 1%.
func Odds(p float64) float64 {
	return market.Round(1/math.Max(p, 0.01), 2)
}
