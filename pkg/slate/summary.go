package slate

import (
	"fmt"

	"github.com/moisenya/pronoai/pkg/fixtures"
)

// Exclusion is a fixture dropped during a scan with its single reason.
type Exclusion struct {
	ID     string `json:"id"`
	Match  string `json:"match"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// SportSummary reports scan coverage for one sport.
type SportSummary struct {
	TotalListed         int                             `json:"totalListed"`
	Confirmed           int                             `json:"confirmed"`
	Analysed            int                             `json:"analysed"`
	Candidates          int                             `json:"candidates"`
	Selected            int                             `json:"selected"`
	FallbackUsed        int                             `json:"fallbackUsed"`
	CoverageRatio       float64                         `json:"coverageRatio"`
	CoverageNote        string                          `json:"coverageNote,omitempty"`
	HighProfileExcluded []fixtures.HighProfileExclusion `json:"highProfileExcluded"`
	Exclusions          []Exclusion                     `json:"exclusions"`
}

// NewSportSummary returns a summary with empty, non-nil lists.
func NewSportSummary() *SportSummary {
	return &SportSummary{
		HighProfileExcluded: []fixtures.HighProfileExclusion{},
		Exclusions:          []Exclusion{},
	}
}

// Exclude records a dropped fixture.
func (s *SportSummary) Exclude(f fixtures.Fixture, stage, reason string) {
	s.Exclusions = append(s.Exclusions, Exclusion{ID: f.ID, Match: f.Match(), Stage: stage, Reason: reason})
}

// UpdateCoverage recomputes the ratio of qualified candidates to
// confirmed fixtures.
func (s *SportSummary) UpdateCoverage() {
	if s.Confirmed == 0 {
		s.CoverageRatio = 0
		return
	}
	s.CoverageRatio = float64(s.Candidates) / float64(s.Confirmed)
}

func (s *SportSummary) noteFallback(n int) {
	s.FallbackUsed += n
	if s.FallbackUsed > 0 {
		s.CoverageNote = fmt.Sprintf("%d fallback used", s.FallbackUsed)
	}
}
