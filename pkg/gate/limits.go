package gate

import (
	"math"

	"github.com/moisenya/pronoai/pkg/fixtures"
)

// Thresholds defines the qualification bounds a candidate must clear.
type Thresholds struct {
	// Market limits
	MinProviders   int     // Min distinct bookmakers quoting the picked side
	OddsMin        float64 // Lowest acceptable median price
	OddsMax        float64 // Highest acceptable median price
	DispersionFlag float64 // (max-min)/median above which a pick is flagged

	// Value limits
	MinEdge        map[fixtures.Sport]float64 // Min model probability over implied probability
	DefaultMinEdge float64                    // Used for sports missing from MinEdge

	// Corroboration
	MinSignals int
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		MinProviders:   3,
		OddsMin:        1.40,
		OddsMax:        2.20,
		DispersionFlag: 0.08,
		MinEdge: map[fixtures.Sport]float64{
			fixtures.Football: 0.08,
			fixtures.Basket:   0.08,
			fixtures.Tennis:   0.10,
		},
		DefaultMinEdge: 0.08,
		MinSignals:     2,
	}
}

// RelaxedThresholds returns bounds that every priced, confirmed candidate clears.
func RelaxedThresholds() *Thresholds {
	return &Thresholds{
		MinProviders:   0,
		OddsMin:        math.Inf(-1),
		OddsMax:        math.Inf(1),
		DispersionFlag: math.Inf(1),
		MinEdge:        map[fixtures.Sport]float64{},
		DefaultMinEdge: math.Inf(-1),
		MinSignals:     0,
	}
}

// EdgeFor returns the minimum edge for a sport.
func (t *Thresholds) EdgeFor(sport fixtures.Sport) float64 {
	if v, ok := t.MinEdge[sport]; ok {
		return v
	}
	return t.DefaultMinEdge
}

// Clone returns a deep copy.
func (t *Thresholds) Clone() *Thresholds {
	c := *t
	c.MinEdge = make(map[fixtures.Sport]float64, len(t.MinEdge))
	for k, v := range t.MinEdge {
		c.MinEdge[k] = v
	}
	return &c
}
