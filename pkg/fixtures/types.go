package fixtures

import (
	"time"

	"github.com/moisenya/pronoai/pkg/market"
)

// Sport is a display sport family. Values are the labels shown to users.
type Sport string

const (
	Football Sport = "Football"
	Tennis   Sport = "Tennis"
	Basket   Sport = "Basket"
)

// Sports returns every supported sport in slate order.
func Sports() []Sport {
	return []Sport{Football, Tennis, Basket}
}

// Order returns the position of s in slate order, or len(Sports()) if unknown.
func (s Sport) Order() int {
	for i, sp := range Sports() {
		if sp == s {
			return i
		}
	}
	return len(Sports())
}

// Individual reports whether competitors are players rather than teams.
func (s Sport) Individual() bool {
	return s == Tennis
}

// Valid reports whether s is a supported sport.
func (s Sport) Valid() bool {
	return s.Order() < len(Sports())
}

// Status is the lifecycle state reported by a source.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

// Side designates one competitor of a fixture.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// CompetitorStats holds the raw stats a source reports for one competitor.
type CompetitorStats struct {
	Record string   // "W-L" or "W-L-D"
	Form   string   // recent results, most recent last: "WWDLW"
	Rank   int      // 0 when unknown
	Notes  []string // injuries and other context
}

// OddsLine is one bookmaker's prices for both sides of a fixture.
type OddsLine struct {
	Provider string
	Home     float64
	Away     float64
	Format   market.Format
}

// Fixture is a scheduled event as reported by the primary source.
type Fixture struct {
	ID         string
	Sport      Sport
	League     string
	LeagueKey  string
	Importance int
	HomeName   string
	AwayName   string
	Kickoff    time.Time
	Venue      string
	Status     Status
	Home       CompetitorStats
	Away       CompetitorStats
	Notes      []string // weather and other fixture-level context
	Odds       []OddsLine
}

// Match returns the display label "Home vs Away".
func (f Fixture) Match() string {
	return f.HomeName + " vs " + f.AwayName
}

// Name returns the competitor name on the given side.
func (f Fixture) Name(side Side) string {
	if side == SideAway {
		return f.AwayName
	}
	return f.HomeName
}

// Stats returns the competitor stats on the given side.
func (f Fixture) Stats(side Side) CompetitorStats {
	if side == SideAway {
		return f.Away
	}
	return f.Home
}

// Quotes returns every bookmaker price on the given side.
func (f Fixture) Quotes(side Side) []market.Quote {
	quotes := make([]market.Quote, 0, len(f.Odds))
	for _, line := range f.Odds {
		price := line.Home
		if side == SideAway {
			price = line.Away
		}
		if price == 0 {
			continue
		}
		quotes = append(quotes, market.Quote{Provider: line.Provider, Price: price, Format: line.Format})
	}
	return quotes
}

// HasContextNotes reports whether any weather or injury note is attached.
func (f Fixture) HasContextNotes() bool {
	return len(f.Notes) > 0 || len(f.Home.Notes) > 0 || len(f.Away.Notes) > 0
}

// Eligible reports whether the fixture has not started and kicks off no
// earlier than now minus grace.
func (f Fixture) Eligible(now time.Time, grace time.Duration) bool {
	if f.Status != StatusScheduled {
		return false
	}
	return !f.Kickoff.Before(now.Add(-grace))
}

// SecondaryFixture is a scheduled event from the confirming source.
type SecondaryFixture struct {
	Sport    Sport
	League   string
	HomeName string
	AwayName string
	Start    time.Time
}
