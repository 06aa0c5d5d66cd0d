package slate

import (
	"fmt"
	"testing"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
	"github.com/moisenya/pronoai/pkg/market"
	"github.com/moisenya/pronoai/pkg/model"
)

func candidate(sport fixtures.Sport, id string, edge float64) gate.Candidate {
	return gate.Candidate{
		Fixture: fixtures.Fixture{
			ID:       id,
			Sport:    sport,
			League:   "League",
			HomeName: "Home " + id,
			AwayName: "Away " + id,
			Kickoff:  time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC),
			Status:   fixtures.StatusScheduled,
		},
		Confirmed: true,
		Estimate:  model.Estimate{Side: fixtures.SideHome, Probability: 0.64, ModelOdds: 1.56},
		Market: market.Aggregate([]market.Quote{
			{Provider: "a", Price: 1.85}, {Provider: "b", Price: 1.90}, {Provider: "c", Price: 1.95},
		}),
		Edge:    edge,
		Signals: []string{"s1", "s2"},
	}
}

func summaries() map[fixtures.Sport]*SportSummary {
	out := make(map[fixtures.Sport]*SportSummary)
	for _, s := range fixtures.Sports() {
		out[s] = NewSportSummary()
	}
	return out
}

func TestBuildCapsPerSportAndTotal(t *testing.T) {
	var cands []gate.Candidate
	for _, sport := range fixtures.Sports() {
		for i := 0; i < 5; i++ {
			cands = append(cands, candidate(sport, fmt.Sprintf("%s-%d", sport, i), 0.08+float64(i)/100))
		}
	}

	picks := NewBuilder(nil, nil).Build(testWindow(t), cands, summaries())
	if len(picks) != 9 {
		t.Fatalf("len(picks) = %d, want 9", len(picks))
	}

	perSport := make(map[fixtures.Sport]int)
	for _, p := range picks {
		perSport[p.Sport]++
		if p.Source != SourceLive {
			t.Errorf("%s should be live with enough candidates", p.ID)
		}
	}
	for sport, n := range perSport {
		if n > 3 {
			t.Errorf("%s has %d picks, want <= 3", sport, n)
		}
	}
}

func TestBuildTakesHighestEdges(t *testing.T) {
	cands := []gate.Candidate{
		candidate(fixtures.Football, "low", 0.081),
		candidate(fixtures.Football, "top", 0.20),
		candidate(fixtures.Football, "mid", 0.12),
		candidate(fixtures.Football, "high", 0.15),
	}

	picks := NewBuilder(nil, nil).Build(testWindow(t), cands, summaries())

	var football []string
	for _, p := range picks {
		if p.Sport == fixtures.Football {
			football = append(football, p.ID)
		}
	}
	want := []string{"top", "high", "mid"}
	if fmt.Sprint(football) != fmt.Sprint(want) {
		t.Errorf("football picks = %v, want %v", football, want)
	}
}

func TestBuildBackfillsSingleTennisCandidate(t *testing.T) {
	sums := summaries()
	sums[fixtures.Tennis].Confirmed = 4
	sums[fixtures.Tennis].Candidates = 1

	picks := NewBuilder(nil, nil).Build(testWindow(t), []gate.Candidate{candidate(fixtures.Tennis, "t-live", 0.11)}, sums)

	var live, fallback int
	for _, p := range picks {
		if p.Sport != fixtures.Tennis {
			continue
		}
		if p.Source == SourceLive {
			live++
		} else {
			fallback++
		}
	}
	if live != 1 || fallback != 2 {
		t.Errorf("tennis live/fallback = %d/%d, want 1/2", live, fallback)
	}
	if got := sums[fixtures.Tennis].CoverageNote; got != "2 fallback used" {
		t.Errorf("CoverageNote = %q, want %q", got, "2 fallback used")
	}
	if sums[fixtures.Tennis].Selected != 1 {
		t.Errorf("Selected = %d, want 1", sums[fixtures.Tennis].Selected)
	}
	if picks[0].ID != "t-live" {
		t.Errorf("live pick should rank first, got %s", picks[0].ID)
	}
}

func TestBuildGlobalBackfillRespectsSportCap(t *testing.T) {
	lib := NewLibrary([]Blueprint{
		DefaultLibrary().ForSport(fixtures.Football)[0],
		DefaultLibrary().ForSport(fixtures.Basket)[0],
		DefaultLibrary().ForSport(fixtures.Basket)[1],
		DefaultLibrary().ForSport(fixtures.Basket)[2],
	})
	cands := []gate.Candidate{
		candidate(fixtures.Football, "f1", 0.1),
		candidate(fixtures.Football, "f2", 0.1),
		candidate(fixtures.Football, "f3", 0.1),
	}

	picks := NewBuilder(nil, lib).Build(testWindow(t), cands, summaries())

	perSport := make(map[fixtures.Sport]int)
	for _, p := range picks {
		perSport[p.Sport]++
	}
	if perSport[fixtures.Football] != 3 {
		t.Errorf("football = %d, want 3", perSport[fixtures.Football])
	}
	if perSport[fixtures.Basket] != 3 {
		t.Errorf("basket = %d, want 3", perSport[fixtures.Basket])
	}
	if len(picks) != 6 {
		t.Errorf("len(picks) = %d, want 6 with a short library", len(picks))
	}
}

func TestBuildFullFallback(t *testing.T) {
	picks := NewBuilder(nil, nil).Build(testWindow(t), nil, nil)
	if len(picks) != 9 {
		t.Fatalf("len(picks) = %d, want 9", len(picks))
	}
	seen := make(map[string]bool)
	for _, p := range picks {
		if seen[p.ID] {
			t.Errorf("duplicate pick %s", p.ID)
		}
		seen[p.ID] = true
		if p.Source != SourceFallback {
			t.Errorf("%s source = %s", p.ID, p.Source)
		}
	}
	if picks[0].Sport != fixtures.Football {
		t.Errorf("fallback slate should open with football, got %s", picks[0].Sport)
	}
}

func TestFromCandidate(t *testing.T) {
	c := candidate(fixtures.Football, "evt", 0.1137)
	c.Flags = []string{gate.FlagRecheck}

	p := FromCandidate(c)
	if p.Confidence != 64 {
		t.Errorf("Confidence = %d, want 64", p.Confidence)
	}
	if p.MarketOdds == nil || *p.MarketOdds != 1.9 {
		t.Errorf("MarketOdds = %v, want 1.9", p.MarketOdds)
	}
	if p.Edge == nil || *p.Edge != 0.1137 {
		t.Errorf("Edge = %v", p.Edge)
	}
	if p.PickLabel != "Home evt gagne" || p.Market != "1X2" {
		t.Errorf("label/market = %q/%q", p.PickLabel, p.Market)
	}
	if len(p.MarketProviders) != 3 {
		t.Errorf("MarketProviders = %v", p.MarketProviders)
	}
	if p.Analysis == "" || p.AnalysisSource != AnalysisTemplate {
		t.Errorf("missing templated analysis: %+v", p)
	}
}

func TestSummaryCoverage(t *testing.T) {
	s := NewSportSummary()
	s.UpdateCoverage()
	if s.CoverageRatio != 0 {
		t.Errorf("ratio with no confirmed = %v", s.CoverageRatio)
	}
	s.Confirmed, s.Candidates = 4, 1
	s.UpdateCoverage()
	if s.CoverageRatio != 0.25 {
		t.Errorf("ratio = %v, want 0.25", s.CoverageRatio)
	}
}
