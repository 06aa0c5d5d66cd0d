package fixtures

import (
	"fmt"
	"sort"
	"time"
)

const (
	ReasonUnconfirmed      = "unconfirmed by secondary source"
	ReasonScheduleMismatch = "schedule mismatch"
)

// ReconcilerConfig configures the reconciler.
type ReconcilerConfig struct {
	Tolerance             time.Duration // Default: 10m
	HighProfileImportance int           // Default: HighProfileImportance
	HighProfileLimit      int           // Default: 10
}

// DefaultReconcilerConfig returns default configuration.
func DefaultReconcilerConfig() *ReconcilerConfig {
	return &ReconcilerConfig{
		Tolerance:             10 * time.Minute,
		HighProfileImportance: HighProfileImportance,
		HighProfileLimit:      10,
	}
}

// Reconciler confirms primary fixtures against the secondary schedule.
type Reconciler struct {
	tolerance   time.Duration
	minImport   int
	highProfile int
}

// NewReconciler creates a reconciler, filling unset values with defaults.
func NewReconciler(config *ReconcilerConfig) *Reconciler {
	defaults := DefaultReconcilerConfig()
	if config == nil {
		config = defaults
	}
	r := &Reconciler{
		tolerance:   config.Tolerance,
		minImport:   config.HighProfileImportance,
		highProfile: config.HighProfileLimit,
	}
	if r.tolerance <= 0 {
		r.tolerance = defaults.Tolerance
	}
	if r.minImport <= 0 {
		r.minImport = defaults.HighProfileImportance
	}
	if r.highProfile <= 0 {
		r.highProfile = defaults.HighProfileLimit
	}
	return r
}

// Confirmation pairs a primary fixture with the secondary entry that confirmed it.
type Confirmation struct {
	Fixture   Fixture
	Secondary SecondaryFixture
	Delta     time.Duration
}

// Exclusion is a primary fixture that failed reconciliation.
type Exclusion struct {
	Fixture Fixture
	Reason  string
}

// HighProfileExclusion is the summary view of an excluded marquee fixture.
type HighProfileExclusion struct {
	Match      string `json:"match"`
	League     string `json:"league"`
	Importance int    `json:"importance"`
	KickoffISO string `json:"kickoffISO"`
	Reason     string `json:"reason"`
}

// Reconciliation is the result of one reconciliation pass.
type Reconciliation struct {
	Confirmed []Confirmation
	Excluded  []Exclusion
}

// ForSport returns the confirmations and exclusions of one sport.
func (r Reconciliation) ForSport(sport Sport) ([]Confirmation, []Exclusion) {
	var confirmed []Confirmation
	var excluded []Exclusion
	for _, c := range r.Confirmed {
		if c.Fixture.Sport == sport {
			confirmed = append(confirmed, c)
		}
	}
	for _, e := range r.Excluded {
		if e.Fixture.Sport == sport {
			excluded = append(excluded, e)
		}
	}
	return confirmed, excluded
}

type secondaryIndex struct {
	exact map[string][]SecondaryFixture
	pairs map[string][]SecondaryFixture
}

func exactKey(sport Sport, home, away string, t time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", sport, home, away, t.UTC().Truncate(time.Hour).Unix())
}

// pairKey ignores home/away order; sources disagree on it for neutral
// venues and for individual sports.
func pairKey(sport Sport, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return string(sport) + "|" + a + "|" + b
}

func buildIndex(secondary []SecondaryFixture) secondaryIndex {
	idx := secondaryIndex{
		exact: make(map[string][]SecondaryFixture),
		pairs: make(map[string][]SecondaryFixture),
	}
	for _, s := range secondary {
		h, a := NormalizeName(s.HomeName), NormalizeName(s.AwayName)
		if h == "" || a == "" || s.Start.IsZero() {
			continue
		}
		ek := exactKey(s.Sport, h, a, s.Start)
		idx.exact[ek] = append(idx.exact[ek], s)
		pk := pairKey(s.Sport, h, a)
		idx.pairs[pk] = append(idx.pairs[pk], s)
	}
	return idx
}

// closest returns the candidate nearest to t.
func closest(candidates []SecondaryFixture, t time.Time) (SecondaryFixture, time.Duration, bool) {
	var best SecondaryFixture
	bestDelta := time.Duration(-1)
	for _, c := range candidates {
		d := c.Start.Sub(t)
		if d < 0 {
			d = -d
		}
		if bestDelta < 0 || d < bestDelta {
			best, bestDelta = c, d
		}
	}
	return best, bestDelta, bestDelta >= 0
}

// Reconcile confirms each primary fixture against the secondary list.
// A fixture is confirmed when the secondary source lists the same pairing
// within the tolerance; the exact key (pairing plus hour bucket) is tried
// first, then the pairing alone. Output order follows kickoff, then ID.
func (r *Reconciler) Reconcile(primary []Fixture, secondary []SecondaryFixture) Reconciliation {
	idx := buildIndex(secondary)

	ordered := append([]Fixture(nil), primary...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Kickoff.Equal(ordered[j].Kickoff) {
			return ordered[i].Kickoff.Before(ordered[j].Kickoff)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var out Reconciliation
	for _, f := range ordered {
		h, a := NormalizeName(f.HomeName), NormalizeName(f.AwayName)
		if h == "" || a == "" {
			out.Excluded = append(out.Excluded, Exclusion{Fixture: f, Reason: ReasonUnconfirmed})
			continue
		}

		if s, d, ok := closest(idx.exact[exactKey(f.Sport, h, a, f.Kickoff)], f.Kickoff); ok && d <= r.tolerance {
			out.Confirmed = append(out.Confirmed, Confirmation{Fixture: f, Secondary: s, Delta: d})
			continue
		}

		s, d, ok := closest(idx.pairs[pairKey(f.Sport, h, a)], f.Kickoff)
		switch {
		case !ok:
			out.Excluded = append(out.Excluded, Exclusion{Fixture: f, Reason: ReasonUnconfirmed})
		case d <= r.tolerance:
			out.Confirmed = append(out.Confirmed, Confirmation{Fixture: f, Secondary: s, Delta: d})
		default:
			out.Excluded = append(out.Excluded, Exclusion{Fixture: f, Reason: ReasonScheduleMismatch})
		}
	}
	return out
}

// HighProfile lists excluded fixtures of marquee competitions, most
// important first, capped at the configured limit.
func (r *Reconciler) HighProfile(excluded []Exclusion) []HighProfileExclusion {
	var out []HighProfileExclusion
	for _, e := range excluded {
		if e.Fixture.Importance < r.minImport {
			continue
		}
		out = append(out, HighProfileExclusion{
			Match:      e.Fixture.Match(),
			League:     e.Fixture.League,
			Importance: e.Fixture.Importance,
			KickoffISO: e.Fixture.Kickoff.UTC().Format(time.RFC3339),
			Reason:     e.Reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].KickoffISO < out[j].KickoffISO
	})
	if len(out) > r.highProfile {
		out = out[:r.highProfile]
	}
	return out
}
