package model

import (
	"strconv"
	"strings"
)

const (
	minStrength = 0.2
	maxStrength = 0.95

	maxFormBoost = 0.2
	maxRankBoost = 0.15

	// TeamRankCap and IndividualRankCap bound the ranks that earn a boost.
	TeamRankCap       = 50
	IndividualRankCap = 80
)

// WinPct parses a "W-L" or "W-L-D" record, counting draws as half wins.
// Missing or malformed records return 0.5.
func WinPct(record string) float64 {
	parts := strings.Split(strings.TrimSpace(record), "-")
	if len(parts) < 2 || len(parts) > 3 {
		return 0.5
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0.5
		}
		vals[i] = float64(n)
	}
	wins, losses, draws := vals[0], vals[1], vals[2]
	total := wins + losses + draws
	if total == 0 {
		return 0.5
	}
	return (wins + 0.5*draws) / total
}

// FormBoost scores a recent-results string (W=1, D=0.5, L=0) centred on
// 0.5 and scaled to at most ±0.2. The second value is false when the
// string holds no recognised result.
func FormBoost(form string) (float64, bool) {
	var sum float64
	var n int
	for _, r := range strings.ToUpper(form) {
		switch r {
		case 'W':
			sum++
		case 'D', 'T':
			sum += 0.5
		case 'L':
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return (sum/float64(n) - 0.5) * 2 * maxFormBoost, true
}

// RankBoost gives up to +0.15 to ranked competitors, linearly decreasing
// from rank 1 to rank cap. Unknown ranks and ranks beyond cap earn nothing.
func RankBoost(rank, cap int) float64 {
	if rank <= 0 || cap <= 1 || rank > cap {
		return 0
	}
	return maxRankBoost * float64(cap-rank) / float64(cap-1)
}

// Strength combines record, form and rank into a score in [0.2, 0.95].
func Strength(record, form string, rank, rankCap int) float64 {
	boost, _ := FormBoost(form)
	return clamp(WinPct(record)+boost+RankBoost(rank, rankCap), minStrength, maxStrength)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
