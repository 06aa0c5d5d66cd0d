package slate

import (
	"math"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
	"github.com/moisenya/pronoai/pkg/market"
)

const (
	SourceLive     = "live"
	SourceFallback = "fallback"

	AnalysisTemplate = "template"

	// FlagFallback marks picks drawn from the bundled library.
	FlagFallback = "fallback"
)

// PriceRange is the spread of bookmaker prices.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Pick is one selection of the slate.
type Pick struct {
	ID              string         `json:"id"`
	Sport           fixtures.Sport `json:"sport"`
	League          string         `json:"league"`
	KickoffISO      string         `json:"kickoffISO"`
	Match           string         `json:"match"`
	Market          string         `json:"market"`
	PickLabel       string         `json:"pickLabel"`
	Confidence      int            `json:"confidence"`
	ModelOdds       float64        `json:"modelOdds"`
	MarketOdds      *float64       `json:"marketOdds,omitempty"`
	MarketRange     *PriceRange    `json:"marketRange,omitempty"`
	MarketProviders []string       `json:"marketProviders,omitempty"`
	Edge            *float64       `json:"edge,omitempty"`
	Signals         []string       `json:"signals"`
	Flags           []string       `json:"flags"`
	Analysis        string         `json:"analysis"`
	AnalysisSource  string         `json:"analysisSource"`
	AnalysisModel   string         `json:"analysisModel,omitempty"`
	Source          string         `json:"source"`

	// Context feeds the rationale prompt.
	Context string `json:"-"`
}

// EdgeValue returns the edge, or -Inf for picks without one.
func (p Pick) EdgeValue() float64 {
	if p.Edge == nil {
		return math.Inf(-1)
	}
	return *p.Edge
}

// MarketProbability is the probability implied by the market median, or 0.
func (p Pick) MarketProbability() float64 {
	if p.MarketOdds == nil {
		return 0
	}
	return market.ImpliedProbability(*p.MarketOdds)
}

// FromCandidate converts a qualified candidate into a live pick.
func FromCandidate(c gate.Candidate) Pick {
	f := c.Fixture
	odds := market.Round(c.Market.Median, 2)
	edge := market.Round(c.Edge, 4)

	p := Pick{
		ID:              f.ID,
		Sport:           f.Sport,
		League:          f.League,
		KickoffISO:      f.Kickoff.UTC().Format(time.RFC3339),
		Match:           f.Match(),
		Market:          c.MarketLabel(),
		PickLabel:       c.PickLabel(),
		Confidence:      int(math.Round(c.Estimate.Probability * 100)),
		ModelOdds:       c.Estimate.ModelOdds,
		MarketOdds:      &odds,
		MarketRange:     &PriceRange{Min: market.Round(c.Market.Min, 2), Max: market.Round(c.Market.Max, 2)},
		MarketProviders: append([]string(nil), c.Market.Providers...),
		Edge:            &edge,
		Signals:         nonNil(c.Signals),
		Flags:           nonNil(c.Flags),
		AnalysisSource:  AnalysisTemplate,
		Source:          SourceLive,
		Context:         liveContext(c),
	}
	p.Analysis = describeLive(c)
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
