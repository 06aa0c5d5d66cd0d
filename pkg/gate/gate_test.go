package gate

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/market"
	"github.com/moisenya/pronoai/pkg/model"
)

func quotes(prices ...float64) []market.Quote {
	out := make([]market.Quote, len(prices))
	for i, p := range prices {
		out[i] = market.Quote{Provider: string(rune('a' + i)), Price: p}
	}
	return out
}

// strongCandidate clears every default threshold: median 1.95, edge ~10.7%,
// three signals.
func strongCandidate(sport fixtures.Sport) Candidate {
	return Candidate{
		Fixture: fixtures.Fixture{
			ID:       "evt-1",
			Sport:    sport,
			League:   "Premier League",
			HomeName: "Manchester City",
			AwayName: "Arsenal",
			Kickoff:  time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC),
			Status:   fixtures.StatusScheduled,
			Home:     fixtures.CompetitorStats{Form: "WWWDW", Rank: 2},
			Away:     fixtures.CompetitorStats{Form: "WLDWL", Rank: 9},
		},
		Confirmed: true,
		Estimate: model.Estimate{
			Side:         fixtures.SideHome,
			Probability:  0.62,
			ModelOdds:    1.61,
			HomeStrength: 0.78,
			AwayStrength: 0.58,
			HasForm:      true,
			HasRank:      true,
		},
		Market: market.Aggregate(quotes(1.90, 1.95, 2.00)),
	}
}

func weakCandidate() Candidate {
	c := strongCandidate(fixtures.Football)
	c.Estimate = model.Estimate{Side: fixtures.SideHome, Probability: 0.52, HomeStrength: 0.5, AwayStrength: 0.5}
	c.Market = market.Aggregate(quotes(3.50))
	return c
}

func TestEvaluateAcceptsStrongCandidate(t *testing.T) {
	g := New(nil)

	out := g.Evaluate(strongCandidate(fixtures.Football))
	if out.Reject != nil {
		t.Fatalf("unexpected rejection: %s", out.Reject)
	}
	if len(out.Candidate.Signals) < 2 {
		t.Errorf("accepted candidate has %d signals", len(out.Candidate.Signals))
	}
	if out.Candidate.Edge < 0.107 || out.Candidate.Edge > 0.108 {
		t.Errorf("Edge = %v, want ~0.107", out.Candidate.Edge)
	}
	if out.Candidate.HasFlag(FlagRecheck) {
		t.Error("tight market should not be flagged")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	g := New(nil)
	c := strongCandidate(fixtures.Football)

	first := g.Evaluate(c)
	for i := 0; i < 5; i++ {
		if got := g.Evaluate(c); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestTightenedThresholdRejects(t *testing.T) {
	tests := []struct {
		name    string
		tighten func(*Thresholds)
		stage   StageName
		mention string
	}{
		{"providers", func(th *Thresholds) { th.MinProviders = 4 }, StageMarket, "insufficient odds (<4 books)"},
		{"odds max", func(th *Thresholds) { th.OddsMax = 1.90 }, StageOddsRange, "above max 1.90"},
		{"odds min", func(th *Thresholds) { th.OddsMin = 2.00 }, StageOddsRange, "below min 2.00"},
		{"edge", func(th *Thresholds) { th.MinEdge[fixtures.Football] = 0.12 }, StageEdge, "12.0% minimum"},
		{"signals", func(th *Thresholds) { th.MinSignals = 4 }, StageSignals, "insufficient signals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.tighten(th)

			out := New(th).Evaluate(strongCandidate(fixtures.Football))
			if out.Reject == nil {
				t.Fatal("expected rejection")
			}
			if out.Reject.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", out.Reject.Stage, tt.stage)
			}
			if !strings.Contains(out.Reject.Message, tt.mention) {
				t.Errorf("reason %q should mention %q", out.Reject.Message, tt.mention)
			}
		})
	}
}

func TestRelaxedThresholdsSelectWeakCandidate(t *testing.T) {
	weak := weakCandidate()

	if out := New(nil).Evaluate(weak); out.Reject == nil {
		t.Fatal("weak candidate should fail default thresholds")
	}
	if out := New(RelaxedThresholds()).Evaluate(weak); out.Reject != nil {
		t.Fatalf("relaxed thresholds rejected: %s", out.Reject)
	}
}

func TestLoosenedThresholdsKeepAccepted(t *testing.T) {
	c := strongCandidate(fixtures.Tennis)
	if out := New(nil).Evaluate(c); out.Reject != nil {
		t.Fatalf("baseline rejected: %s", out.Reject)
	}

	loose := DefaultThresholds()
	loose.MinProviders = 1
	loose.OddsMin = 1.01
	loose.OddsMax = 5
	loose.MinEdge[fixtures.Tennis] = 0.01
	loose.MinSignals = 1
	if out := New(loose).Evaluate(c); out.Reject != nil {
		t.Fatalf("looser thresholds rejected: %s", out.Reject)
	}
}

func TestDispersionFlagsWithoutRejecting(t *testing.T) {
	c := strongCandidate(fixtures.Football)
	c.Market = market.Aggregate(quotes(1.80, 1.85, 1.90, 1.95, 2.40))

	out := New(nil).Evaluate(c)
	if out.Reject != nil {
		t.Fatalf("dispersed market rejected: %s", out.Reject)
	}
	if !out.Candidate.HasFlag(FlagRecheck) {
		t.Errorf("expected %q flag, got %v", FlagRecheck, out.Candidate.Flags)
	}
	for _, s := range out.Candidate.Signals {
		if strings.HasPrefix(s, "Marché stable") {
			t.Error("dispersed market must not count as stable")
		}
	}
}

func TestTennisEdgeThreshold(t *testing.T) {
	out := New(nil).Evaluate(strongCandidate(fixtures.Tennis))
	if out.Reject != nil {
		t.Fatalf("edge of ~10.7%% should clear the 10%% tennis bar: %s", out.Reject)
	}

	c := strongCandidate(fixtures.Tennis)
	c.Estimate.Probability = 0.60 // edge ~8.7%
	out = New(nil).Evaluate(c)
	if out.Reject == nil || out.Reject.Stage != StageEdge {
		t.Fatalf("expected edge rejection for tennis, got %+v", out.Reject)
	}
	if !strings.Contains(out.Reject.Message, "8.7%") {
		t.Errorf("reason should cite the computed edge, got %q", out.Reject.Message)
	}
}

func TestConfirmationStage(t *testing.T) {
	c := strongCandidate(fixtures.Football)
	c.Confirmed = false
	c.ConfirmationReason = fixtures.ReasonScheduleMismatch

	out := New(RelaxedThresholds()).Evaluate(c)
	if out.Reject == nil || out.Reject.Stage != StageConfirmation {
		t.Fatalf("expected confirmation rejection, got %+v", out.Reject)
	}
	if out.Reject.Message != fixtures.ReasonScheduleMismatch {
		t.Errorf("Message = %q", out.Reject.Message)
	}
}

func TestMedianStage(t *testing.T) {
	c := strongCandidate(fixtures.Football)
	c.Market = market.Snapshot{}

	th := DefaultThresholds()
	th.MinProviders = 0
	out := New(th).Evaluate(c)
	if out.Reject == nil || out.Reject.Message != "no market median" {
		t.Fatalf("expected no market median, got %+v", out.Reject)
	}
}

func TestRunRecordsOneReasonPerRejection(t *testing.T) {
	cands := []Candidate{strongCandidate(fixtures.Football), weakCandidate(), strongCandidate(fixtures.Basket)}

	accepted, rejected := New(nil).Run(cands)
	if len(accepted) != 2 {
		t.Fatalf("accepted %d, want 2", len(accepted))
	}
	if len(rejected) != 1 {
		t.Fatalf("rejected %d, want 1", len(rejected))
	}
	if rejected[0].Reason.Message != "insufficient odds (<3 books)" {
		t.Errorf("reason = %q", rejected[0].Reason.Message)
	}
	if accepted[1].Fixture.Sport != fixtures.Basket {
		t.Error("Run should preserve input order")
	}
}

func TestAnalyseUsesPickedSideQuotes(t *testing.T) {
	f := fixtures.Fixture{
		Sport:    fixtures.Football,
		HomeName: "Burnley",
		AwayName: "Arsenal",
		Home:     fixtures.CompetitorStats{Record: "2-18", Form: "LLLLL"},
		Away:     fixtures.CompetitorStats{Record: "18-2", Form: "WWWWW"},
		Odds: []fixtures.OddsLine{
			{Provider: "a", Home: 4.5, Away: 1.8},
			{Provider: "b", Home: 4.2, Away: 1.85},
		},
	}
	c := Analyse(f, true, "", model.New(nil))
	if c.Side() != fixtures.SideAway {
		t.Fatalf("Side = %s, want away", c.Side())
	}
	if c.Market.Min != 1.8 || c.Market.Max != 1.85 {
		t.Errorf("market built from wrong side: %+v", c.Market)
	}
	if c.PickLabel() != "Arsenal gagne" {
		t.Errorf("PickLabel = %q", c.PickLabel())
	}
}
