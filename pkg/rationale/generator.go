// Package rationale rewrites pick analyses with a hosted language model.
// Enrichment is best effort: on any failure the templated analyses stay.
package rationale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/slate"
)

var (
	// ErrDisabled is returned when no model is configured.
	ErrDisabled = errors.New("rationale: generator disabled")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("rationale: empty response")
)

// LLMClient is a text completion provider.
type LLMClient interface {
	Complete(ctx context.Context, prompt string, systemPrompt string) (string, error)
	Provider() string
	Model() string
}

// Generator enriches picks with model-written analyses.
type Generator struct {
	client LLMClient
	logger *zap.Logger
}

// NewGenerator creates a generator. A nil client yields a generator that
// always reports ErrDisabled.
func NewGenerator(client LLMClient, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Enabled reports whether a model is configured.
func (g *Generator) Enabled() bool {
	return g != nil && g.client != nil
}

type response struct {
	Picks []struct {
		ID       string `json:"id"`
		Analysis string `json:"analysis"`
	} `json:"picks"`
}

// Enrich returns a copy of picks where every analysis the model returned
// replaces the templated one. Summaries and the fallback flag only shape
// the prompt. The input is never modified; on error the returned slice
// equals the input.
func (g *Generator) Enrich(ctx context.Context, picks []slate.Pick, summaries map[fixtures.Sport]*slate.SportSummary, fallback bool) ([]slate.Pick, error) {
	out := append([]slate.Pick(nil), picks...)
	if !g.Enabled() {
		return out, ErrDisabled
	}
	if len(picks) == 0 {
		return out, nil
	}

	text, err := g.client.Complete(ctx, BuildPrompt(picks, summaries, fallback), systemPrompt)
	if err != nil {
		return out, fmt.Errorf("complete: %w", err)
	}

	analyses, err := parseResponse(text)
	if err != nil {
		return out, err
	}

	var replaced int
	for i := range out {
		a := strings.TrimSpace(analyses[out[i].ID])
		if a == "" {
			continue
		}
		out[i].Analysis = a
		out[i].AnalysisSource = g.client.Provider()
		out[i].AnalysisModel = g.client.Model()
		replaced++
	}
	g.logger.Info("rationale enrichment complete",
		zap.String("provider", g.client.Provider()),
		zap.String("model", g.client.Model()),
		zap.Int("picks", len(out)),
		zap.Int("replaced", replaced),
		zap.Bool("fallback", fallback),
	)
	return out, nil
}

func parseResponse(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var resp response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Picks == nil {
		return nil, errors.New("parse response: missing picks")
	}

	out := make(map[string]string, len(resp.Picks))
	for _, p := range resp.Picks {
		if p.ID != "" {
			out[p.ID] = p.Analysis
		}
	}
	return out, nil
}
