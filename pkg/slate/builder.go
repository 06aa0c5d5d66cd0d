// Package slate ranks qualified candidates into the day's picks and
// completes the slate from a bundled fallback library.
package slate

import (
	"sort"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
)

// BuilderConfig configures the slate builder.
type BuilderConfig struct {
	PerSport int // Default: 3
	MaxPicks int // Default: 9
}

// DefaultBuilderConfig returns default configuration.
func DefaultBuilderConfig() *BuilderConfig {
	return &BuilderConfig{PerSport: 3, MaxPicks: 9}
}

// Builder assembles the slate.
type Builder struct {
	perSport int
	maxPicks int
	library  *Library
}

// NewBuilder creates a builder. A nil library uses DefaultLibrary.
func NewBuilder(config *BuilderConfig, library *Library) *Builder {
	defaults := DefaultBuilderConfig()
	if config == nil {
		config = defaults
	}
	if library == nil {
		library = DefaultLibrary()
	}
	b := &Builder{perSport: config.PerSport, maxPicks: config.MaxPicks, library: library}
	if b.perSport <= 0 {
		b.perSport = defaults.PerSport
	}
	if b.maxPicks <= 0 {
		b.maxPicks = defaults.MaxPicks
	}
	return b
}

// Library returns the builder's fallback library.
func (b *Builder) Library() *Library {
	return b.library
}

// Build ranks qualified candidates per sport by edge, keeps at most
// PerSport of each, backfills every sport from its fallback blueprints,
// then tops up from any sport until MaxPicks. summaries may be nil; when
// present, Selected and fallback coverage are recorded per sport.
func (b *Builder) Build(w fixtures.Window, qualified []gate.Candidate, summaries map[fixtures.Sport]*SportSummary) []Pick {
	bySport := make(map[fixtures.Sport][]gate.Candidate)
	for _, c := range qualified {
		bySport[c.Fixture.Sport] = append(bySport[c.Fixture.Sport], c)
	}

	used := make(map[string]bool)
	count := make(map[fixtures.Sport]int)
	var picks []Pick

	add := func(p Pick) {
		used[p.ID] = true
		count[p.Sport]++
		picks = append(picks, p)
	}
	note := func(sport fixtures.Sport, n int) {
		if s := summaries[sport]; s != nil && n > 0 {
			s.noteFallback(n)
		}
	}

	for _, sport := range fixtures.Sports() {
		cands := bySport[sport]
		sortCandidates(cands)
		for _, c := range cands {
			if count[sport] >= b.perSport {
				break
			}
			if used[c.Fixture.ID] {
				continue
			}
			add(FromCandidate(c))
		}
		if s := summaries[sport]; s != nil {
			s.Selected = count[sport]
		}

		var backfilled int
		for _, bp := range b.library.ForSport(sport) {
			if count[sport] >= b.perSport {
				break
			}
			if used[bp.ID] {
				continue
			}
			add(bp.Pick(w))
			backfilled++
		}
		note(sport, backfilled)
	}

	if len(picks) < b.maxPicks {
		for _, bp := range b.library.All() {
			if len(picks) >= b.maxPicks {
				break
			}
			if used[bp.ID] || count[bp.Sport] >= b.perSport {
				continue
			}
			add(bp.Pick(w))
			note(bp.Sport, 1)
		}
	}

	SortPicks(picks)
	if len(picks) > b.maxPicks {
		picks = picks[:b.maxPicks]
	}
	return picks
}

// sortCandidates orders by edge descending, then kickoff, then ID.
func sortCandidates(cands []gate.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, c := cands[i], cands[j]
		if a.Edge != c.Edge {
			return a.Edge > c.Edge
		}
		if !a.Fixture.Kickoff.Equal(c.Fixture.Kickoff) {
			return a.Fixture.Kickoff.Before(c.Fixture.Kickoff)
		}
		return a.Fixture.ID < c.Fixture.ID
	})
}

// SortPicks orders by edge descending (picks without edge last), then
// sport order, then ID.
func SortPicks(picks []Pick) {
	sort.SliceStable(picks, func(i, j int) bool {
		a, c := picks[i], picks[j]
		if ea, ec := a.EdgeValue(), c.EdgeValue(); ea != ec {
			return ea > ec
		}
		if a.Sport.Order() != c.Sport.Order() {
			return a.Sport.Order() < c.Sport.Order()
		}
		return a.ID < c.ID
	})
}
