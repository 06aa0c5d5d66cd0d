package rationale

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/slate"
)

type mockLLMClient struct {
	response  string
	err       error
	callCount int
	prompt    string
	system    string
}

func (m *mockLLMClient) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	m.callCount++
	m.prompt = prompt
	m.system = systemPrompt
	return m.response, m.err
}

func (m *mockLLMClient) Provider() string { return "gemini" }
func (m *mockLLMClient) Model() string    { return "gemini-test" }

func testPicks() []slate.Pick {
	odds := 1.95
	edge := 0.107
	return []slate.Pick{
		{
			ID:              "espn-1",
			Sport:           fixtures.Football,
			League:          "Premier League",
			KickoffISO:      "2026-10-17T16:30:00Z",
			Match:           "Arsenal vs Chelsea",
			Market:          "1X2",
			PickLabel:       "Arsenal gagne",
			Confidence:      62,
			ModelOdds:       1.61,
			MarketOdds:      &odds,
			MarketProviders: []string{"bet365", "unibet"},
			Edge:            &edge,
			Analysis:        "template text",
			AnalysisSource:  slate.AnalysisTemplate,
			Source:          slate.SourceLive,
			Context:         "Blessure: Saka (questionable)",
		},
		{
			ID:             "fallback-tennis-1",
			Sport:          fixtures.Tennis,
			League:         "ATP",
			Match:          "A vs B",
			Market:         "Vainqueur du match",
			PickLabel:      "A gagne",
			Confidence:     88,
			ModelOdds:      1.13,
			Analysis:       "fallback text",
			AnalysisSource: slate.AnalysisTemplate,
			Source:         slate.SourceFallback,
		},
	}
}

func TestEnrichReplacesReturnedAnalyses(t *testing.T) {
	client := &mockLLMClient{
		response: `{"picks":[{"id":"espn-1","analysis":"  Arsenal reste sur une bonne dynamique.  "},{"id":"fallback-tennis-1","analysis":"   "},{"id":"unknown","analysis":"ignored"}]}`,
	}
	g := NewGenerator(client, nil)

	picks := testPicks()
	out, err := g.Enrich(context.Background(), picks, nil, false)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if client.callCount != 1 {
		t.Errorf("callCount = %d, want 1", client.callCount)
	}
	if len(out) != len(picks) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(picks))
	}

	if out[0].Analysis != "Arsenal reste sur une bonne dynamique." {
		t.Errorf("analysis = %q", out[0].Analysis)
	}
	if out[0].AnalysisSource != "gemini" || out[0].AnalysisModel != "gemini-test" {
		t.Errorf("source/model = %q/%q", out[0].AnalysisSource, out[0].AnalysisModel)
	}

	if out[1].Analysis != "fallback text" || out[1].AnalysisSource != slate.AnalysisTemplate {
		t.Errorf("blank analysis should keep template, got %q (%s)", out[1].Analysis, out[1].AnalysisSource)
	}

	if picks[0].Analysis != "template text" {
		t.Error("input picks must not be modified")
	}
}

func TestEnrichFailuresKeepTemplates(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		wantErr  error
	}{
		{name: "transport error", err: errors.New("connection refused")},
		{name: "empty", response: "   ", wantErr: ErrEmptyResponse},
		{name: "not json", response: "Voici mes analyses"},
		{name: "missing picks", response: `{"other":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&mockLLMClient{response: tt.response, err: tt.err}, nil)
			out, err := g.Enrich(context.Background(), testPicks(), nil, false)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			for _, p := range out {
				if p.AnalysisSource != slate.AnalysisTemplate {
					t.Errorf("%s: source = %s, want template", p.ID, p.AnalysisSource)
				}
			}
		})
	}
}

func TestEnrichDisabled(t *testing.T) {
	g := NewGenerator(nil, nil)
	if g.Enabled() {
		t.Fatal("generator without client should be disabled")
	}
	out, err := g.Enrich(context.Background(), testPicks(), nil, false)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
	if len(out) != 2 || out[0].Analysis != "template text" {
		t.Error("disabled generator should return picks unchanged")
	}
}

func TestEnrichAcceptsFencedJSON(t *testing.T) {
	client := &mockLLMClient{response: "```json\n{\"picks\":[{\"id\":\"espn-1\",\"analysis\":\"ok\"}]}\n```"}
	out, err := NewGenerator(client, nil).Enrich(context.Background(), testPicks(), nil, false)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out[0].Analysis != "ok" {
		t.Errorf("analysis = %q, want ok", out[0].Analysis)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testPicks(), nil, false)

	for _, want := range []string{
		"Renvoie uniquement un objet JSON",
		"Matches :",
		"1. id: espn-1",
		"   sport: Football",
		"   pronostic: Arsenal gagne",
		"   confiance: 62%",
		"   cote: 1.61",
		"   coup_denvoi: 2026-10-17T16:30:00Z",
		"   cote_marche: 1.95",
		"   bookmaker: bet365, unibet",
		"   proba_marche: 51%",
		"   contexte: Blessure: Saka (questionable)",
		"2. id: fallback-tennis-1",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	second := prompt[strings.Index(prompt, "2. id:"):]
	if strings.Contains(second, "cote_marche") {
		t.Error("fallback pick should not list market odds")
	}
	if strings.Contains(prompt, "Couverture du jour") || strings.Contains(prompt, "sélection de secours") {
		t.Error("prompt without summaries or fallback should carry neither block")
	}
}

func testSummaries() map[fixtures.Sport]*slate.SportSummary {
	foot := slate.NewSportSummary()
	foot.Confirmed, foot.Candidates, foot.Selected = 4, 2, 2
	foot.CoverageNote = "1 fallback used"
	tennis := slate.NewSportSummary()
	tennis.Confirmed = 1
	return map[fixtures.Sport]*slate.SportSummary{fixtures.Football: foot, fixtures.Tennis: tennis}
}

func TestBuildPromptWithCoverage(t *testing.T) {
	tests := []struct {
		name       string
		fallback   bool
		wantNotice bool
	}{
		{name: "live slate", fallback: false, wantNotice: false},
		{name: "fallback slate", fallback: true, wantNotice: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildPrompt(testPicks(), testSummaries(), tt.fallback)

			for _, want := range []string{
				"Couverture du jour :",
				"- Football: 4 confirmés, 2 candidats, 2 retenus (1 fallback used)",
				"- Tennis: 1 confirmés, 0 candidats, 0 retenus",
			} {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
			if strings.Contains(prompt, "- Basket:") {
				t.Error("sports without a summary should be omitted")
			}
			if strings.Index(prompt, "- Football:") > strings.Index(prompt, "- Tennis:") {
				t.Error("coverage should follow sport order")
			}
			if got := strings.Contains(prompt, fallbackNotice); got != tt.wantNotice {
				t.Errorf("fallback notice present = %v, want %v", got, tt.wantNotice)
			}
		})
	}
}

func TestEnrichSendsCoverageAndFallback(t *testing.T) {
	client := &mockLLMClient{response: `{"picks":[]}`}
	if _, err := NewGenerator(client, nil).Enrich(context.Background(), testPicks(), testSummaries(), true); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !strings.Contains(client.prompt, fallbackNotice) {
		t.Error("prompt should announce the fallback slate")
	}
	if !strings.Contains(client.prompt, "- Football: 4 confirmés") {
		t.Error("prompt should carry the per-sport coverage")
	}
}
