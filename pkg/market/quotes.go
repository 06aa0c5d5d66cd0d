package market

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Format identifies how a bookmaker price is expressed.
type Format int

const (
	// FormatDecimal is a European decimal price (2.10 returns 2.10 per unit staked).
	FormatDecimal Format = iota
	// FormatAmerican is a moneyline (+150 / -120).
	FormatAmerican
)

// Quote is a single bookmaker price on one side of a fixture.
type Quote struct {
	Provider string
	Price    float64
	Format   Format
}

// Snapshot is the aggregated view of every quote on one side of a fixture.
type Snapshot struct {
	ProviderCount int       `json:"providerCount"`
	Providers     []string  `json:"providers"`
	Prices        []float64 `json:"prices"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	Median        float64   `json:"median"`
	Dispersion    float64   `json:"dispersion"`
}

// HasMedian reports whether the snapshot carries a usable median price.
func (s Snapshot) HasMedian() bool {
	return s.ProviderCount > 0 && s.Median > 0 && !math.IsNaN(s.Median) && !math.IsInf(s.Median, 0)
}

// ToDecimal converts a price to decimal odds. Prices that cannot be a
// valid decimal price (<= 1, NaN, an American value inside (-100, 100))
// are reported as not ok.
func ToDecimal(value float64, format Format) (float64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	switch format {
	case FormatAmerican:
		switch {
		case value >= 100:
			return 1 + value/100, true
		case value <= -100:
			return 1 + 100/math.Abs(value), true
		default:
			return 0, false
		}
	default:
		if value <= 1 {
			return 0, false
		}
		return value, true
	}
}

// Aggregate builds a Snapshot from raw quotes. Quotes are deduplicated
// by provider (case-insensitive) keeping the lowest price; the result does
// not depend on the input order.
func Aggregate(quotes []Quote) Snapshot {
	best := make(map[string]float64)
	names := make(map[string]string)
	for _, q := range quotes {
		price, ok := ToDecimal(q.Price, q.Format)
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(q.Provider))
		if key == "" {
			continue
		}
		if cur, seen := best[key]; !seen || price < cur {
			best[key] = price
		}
		if prev, seen := names[key]; !seen || q.Provider < prev {
			names[key] = strings.TrimSpace(q.Provider)
		}
	}

	snap := Snapshot{ProviderCount: len(best)}
	if len(best) == 0 {
		return snap
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap.Providers = make([]string, 0, len(keys))
	snap.Prices = make([]float64, 0, len(keys))
	for _, k := range keys {
		snap.Providers = append(snap.Providers, names[k])
		snap.Prices = append(snap.Prices, best[k])
	}
	sort.Float64s(snap.Prices)

	snap.Min = snap.Prices[0]
	snap.Max = snap.Prices[len(snap.Prices)-1]
	snap.Median = median(snap.Prices)
	if snap.ProviderCount >= 2 && snap.Median != 0 {
		snap.Dispersion = (snap.Max - snap.Min) / snap.Median
	}
	return snap
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Round rounds v to the given number of decimal places using
// half-away-from-zero rounding on the decimal representation.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// ImpliedProbability is 1/price, or 0 for a price that is not a valid decimal price.
func ImpliedProbability(price float64) float64 {
	if price <= 1 || math.IsNaN(price) {
		return 0
	}
	return 1 / price
}
