package market

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// EdgeCalculator compares a model probability with the market consensus.
type EdgeCalculator struct {
	minEdge float64
}

// EdgeCalculatorConfig configures the edge calculator.
type EdgeCalculatorConfig struct {
	MinEdge float64 // Default: 0.08 (8 percentage points)
}

// DefaultEdgeCalculatorConfig returns default configuration.
func DefaultEdgeCalculatorConfig() *EdgeCalculatorConfig {
	return &EdgeCalculatorConfig{MinEdge: 0.08}
}

// NewEdgeCalculator creates a new edge calculator. MinEdge can be zero,
// negative or -Inf to loosen or disable the threshold.
func NewEdgeCalculator(config *EdgeCalculatorConfig) *EdgeCalculator {
	if config == nil {
		config = DefaultEdgeCalculatorConfig()
	}
	return &EdgeCalculator{minEdge: config.MinEdge}
}

// MinEdge returns the configured minimum edge.
func (c *EdgeCalculator) MinEdge() float64 {
	return c.minEdge
}

// EdgeResult is the outcome of one edge computation.
type EdgeResult struct {
	ModelProb   decimal.Decimal
	MarketOdds  decimal.Decimal
	ImpliedProb decimal.Decimal
	Edge        decimal.Decimal
	EdgeBps     decimal.Decimal
	IsValueBet  bool
	Reason      string
}

// Float returns the edge as a float64 fraction.
func (r *EdgeResult) Float() float64 {
	f, _ := r.Edge.Float64()
	return f
}

// Percent formats the edge as a percentage with one decimal.
func (r *EdgeResult) Percent() string {
	return r.Edge.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// CalculateEdge computes edge = q - 1/odds where q is the model
// probability and odds the market median decimal price.
func (c *EdgeCalculator) CalculateEdge(modelProb, marketOdds float64) *EdgeResult {
	if !finite(modelProb) || !finite(marketOdds) || marketOdds <= 1 {
		return &EdgeResult{Reason: "invalid market odds"}
	}
	q := decimal.NewFromFloat(modelProb)
	odds := decimal.NewFromFloat(marketOdds)

	result := &EdgeResult{ModelProb: q, MarketOdds: odds}
	result.ImpliedProb = decimal.NewFromInt(1).DivRound(odds, 8)
	result.Edge = q.Sub(result.ImpliedProb)
	result.EdgeBps = result.Edge.Mul(decimal.NewFromInt(10000)).Round(0)

	if math.IsNaN(c.minEdge) || result.Float() < c.minEdge {
		result.Reason = fmt.Sprintf("edge %s below %.1f%% minimum", result.Percent(), c.minEdge*100)
		return result
	}

	result.IsValueBet = true
	result.Reason = "edge above threshold"
	return result
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
