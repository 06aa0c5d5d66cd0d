// Package gate decides which analysed fixtures qualify as picks.
//
// Qualification is an ordered list of stages. Each stage either advances
// the candidate (possibly annotated) or rejects it with a single reason;
// the first rejection ends evaluation.
package gate

import (
	"fmt"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/market"
)

// StageName identifies a qualification stage.
type StageName string

const (
	StageConfirmation StageName = "confirmation"
	StageMarket       StageName = "market_sufficiency"
	StageMedian       StageName = "median"
	StageOddsRange    StageName = "odds_range"
	StageDispersion   StageName = "dispersion"
	StageEdge         StageName = "edge"
	StageSignals      StageName = "signals"
)

// Reason explains a rejection.
type Reason struct {
	Stage   StageName `json:"stage"`
	Message string    `json:"reason"`
}

func (r Reason) String() string {
	return string(r.Stage) + ": " + r.Message
}

// Outcome is the result of one stage.
type Outcome struct {
	Candidate Candidate
	Reject    *Reason
}

func advance(c Candidate) Outcome {
	return Outcome{Candidate: c}
}

func reject(c Candidate, stage StageName, format string, args ...any) Outcome {
	return Outcome{Candidate: c, Reject: &Reason{Stage: stage, Message: fmt.Sprintf(format, args...)}}
}

// Stage is one qualification check.
type Stage struct {
	Name  StageName
	Check func(Candidate) Outcome
}

// Rejection records a candidate that failed qualification.
type Rejection struct {
	Candidate Candidate
	Reason    Reason
}

// Gate runs candidates through the qualification stages.
type Gate struct {
	thresholds *Thresholds
	stages     []Stage
}

// New creates a gate. A nil thresholds uses DefaultThresholds.
func New(t *Thresholds) *Gate {
	if t == nil {
		t = DefaultThresholds()
	}
	g := &Gate{thresholds: t.Clone()}
	g.stages = []Stage{
		{StageConfirmation, g.checkConfirmation},
		{StageMarket, g.checkMarket},
		{StageMedian, g.checkMedian},
		{StageOddsRange, g.checkOddsRange},
		{StageDispersion, g.checkDispersion},
		{StageEdge, g.checkEdge},
		{StageSignals, g.checkSignals},
	}
	return g
}

// Thresholds returns a copy of the gate's thresholds.
func (g *Gate) Thresholds() *Thresholds {
	return g.thresholds.Clone()
}

// Stages returns the stage names in evaluation order.
func (g *Gate) Stages() []StageName {
	names := make([]StageName, len(g.stages))
	for i, s := range g.stages {
		names[i] = s.Name
	}
	return names
}

// Evaluate runs every stage on c. The returned candidate carries the
// annotations added by the stages it passed.
func (g *Gate) Evaluate(c Candidate) Outcome {
	for _, stage := range g.stages {
		out := stage.Check(c)
		if out.Reject != nil {
			return out
		}
		c = out.Candidate
	}
	return advance(c)
}

// Run evaluates every candidate, preserving input order in both outputs.
func (g *Gate) Run(candidates []Candidate) ([]Candidate, []Rejection) {
	var accepted []Candidate
	var rejected []Rejection
	for _, c := range candidates {
		out := g.Evaluate(c)
		if out.Reject != nil {
			rejected = append(rejected, Rejection{Candidate: out.Candidate, Reason: *out.Reject})
			continue
		}
		accepted = append(accepted, out.Candidate)
	}
	return accepted, rejected
}

func (g *Gate) checkConfirmation(c Candidate) Outcome {
	if c.Confirmed {
		return advance(c)
	}
	reason := c.ConfirmationReason
	if reason == "" {
		reason = fixtures.ReasonUnconfirmed
	}
	return reject(c, StageConfirmation, "%s", reason)
}

func (g *Gate) checkMarket(c Candidate) Outcome {
	if c.Market.ProviderCount < g.thresholds.MinProviders {
		return reject(c, StageMarket, "insufficient odds (<%d books)", g.thresholds.MinProviders)
	}
	return advance(c)
}

func (g *Gate) checkMedian(c Candidate) Outcome {
	if !c.Market.HasMedian() {
		return reject(c, StageMedian, "no market median")
	}
	return advance(c)
}

func (g *Gate) checkOddsRange(c Candidate) Outcome {
	m := c.Market.Median
	switch {
	case m < g.thresholds.OddsMin:
		return reject(c, StageOddsRange, "median odds %.2f below min %.2f", m, g.thresholds.OddsMin)
	case m > g.thresholds.OddsMax:
		return reject(c, StageOddsRange, "median odds %.2f above max %.2f", m, g.thresholds.OddsMax)
	}
	return advance(c)
}

// checkDispersion never rejects.
func (g *Gate) checkDispersion(c Candidate) Outcome {
	if c.Market.Dispersion > g.thresholds.DispersionFlag {
		return advance(c.withFlag(FlagRecheck))
	}
	return advance(c)
}

func (g *Gate) checkEdge(c Candidate) Outcome {
	calc := market.NewEdgeCalculator(&market.EdgeCalculatorConfig{MinEdge: g.thresholds.EdgeFor(c.Fixture.Sport)})
	res := calc.CalculateEdge(c.Estimate.Probability, c.Market.Median)
	c.Edge = res.Float()
	if !res.IsValueBet {
		return reject(c, StageEdge, "%s", res.Reason)
	}
	return advance(c)
}

func (g *Gate) checkSignals(c Candidate) Outcome {
	c.Signals = DetectSignals(c, g.thresholds)
	if len(c.Signals) < g.thresholds.MinSignals {
		return reject(c, StageSignals, "insufficient signals (%d/%d)", len(c.Signals), g.thresholds.MinSignals)
	}
	return advance(c)
}
