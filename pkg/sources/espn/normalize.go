package espn

import (
	"strings"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/market"
)

// ESPN reports unranked competitors as 99.
const unranked = 99

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02T15:04Z"}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseStatus(s *status) fixtures.Status {
	if s == nil {
		return ""
	}
	switch s.Type.State {
	case "pre":
		return fixtures.StatusScheduled
	case "in":
		return fixtures.StatusLive
	case "post":
		return fixtures.StatusFinished
	}
	if s.Type.Completed {
		return fixtures.StatusFinished
	}
	return ""
}

// normalizeScoreboard keeps scheduled competitions with two named
// competitors and a parseable start time.
func normalizeScoreboard(board *scoreboard, league fixtures.League) []fixtures.Fixture {
	var out []fixtures.Fixture
	for i := range board.Events {
		ev := &board.Events[i]

		comps := ev.Competitions
		for _, g := range ev.Groupings {
			comps = append(comps, g.Competitions...)
		}

		for j := range comps {
			f, ok := normalizeCompetition(ev, &comps[j], league)
			if !ok || f.Status != fixtures.StatusScheduled {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

func normalizeCompetition(ev *event, comp *competition, league fixtures.League) (fixtures.Fixture, bool) {
	home, away, ok := splitCompetitors(comp.Competitors)
	if !ok {
		return fixtures.Fixture{}, false
	}
	homeName, awayName := competitorName(home), competitorName(away)
	if homeName == "" || awayName == "" {
		return fixtures.Fixture{}, false
	}

	var kickoff time.Time
	for _, s := range []string{comp.Date, comp.StartDate, ev.Date} {
		if t, ok := parseTime(s); ok {
			kickoff = t
			break
		}
	}
	if kickoff.IsZero() {
		return fixtures.Fixture{}, false
	}

	id := comp.ID
	if id == "" {
		id = ev.ID
	}
	if id == "" {
		return fixtures.Fixture{}, false
	}

	st := parseStatus(comp.Status)
	if st == "" {
		st = parseStatus(&ev.Status)
	}

	f := fixtures.Fixture{
		ID:         "espn-" + id,
		Sport:      league.Sport,
		League:     league.Name,
		LeagueKey:  league.Key,
		Importance: league.Importance,
		HomeName:   homeName,
		AwayName:   awayName,
		Kickoff:    kickoff.UTC(),
		Status:     st,
		Home:       competitorStats(home),
		Away:       competitorStats(away),
		Odds:       oddsLines(comp.Odds),
	}
	if comp.Venue != nil {
		f.Venue = comp.Venue.FullName
	}
	if ev.Weather != nil && ev.Weather.DisplayValue != "" {
		f.Notes = append(f.Notes, "Météo: "+ev.Weather.DisplayValue)
	}
	return f, true
}

// splitCompetitors uses homeAway when present and listing order otherwise.
func splitCompetitors(cs []competitor) (*competitor, *competitor, bool) {
	if len(cs) != 2 {
		return nil, nil, false
	}
	var home, away *competitor
	for i := range cs {
		switch cs[i].HomeAway {
		case "home":
			home = &cs[i]
		case "away":
			away = &cs[i]
		}
	}
	if home == nil || away == nil {
		first, second := &cs[0], &cs[1]
		if cs[1].Order < cs[0].Order {
			first, second = second, first
		}
		home, away = first, second
	}
	return home, away, true
}

func competitorName(c *competitor) string {
	if c.Team != nil && strings.TrimSpace(c.Team.DisplayName) != "" {
		return strings.TrimSpace(c.Team.DisplayName)
	}
	if c.Athlete != nil {
		return strings.TrimSpace(c.Athlete.DisplayName)
	}
	return ""
}

func competitorStats(c *competitor) fixtures.CompetitorStats {
	stats := fixtures.CompetitorStats{Form: c.Form}

	for _, r := range c.Records {
		if r.Type == "total" || r.Type == "" {
			stats.Record = r.Summary
			break
		}
	}
	if stats.Record == "" && len(c.Records) > 0 {
		stats.Record = c.Records[0].Summary
	}

	if c.CuratedRank != nil && c.CuratedRank.Current > 0 && c.CuratedRank.Current < unranked {
		stats.Rank = c.CuratedRank.Current
	} else if c.Rank > 0 && int(c.Rank) < unranked {
		stats.Rank = int(c.Rank)
	}

	for _, inj := range c.Injuries {
		name := strings.TrimSpace(inj.Athlete.DisplayName)
		if name == "" {
			continue
		}
		note := "Blessure: " + name
		if inj.Status != "" {
			note += " (" + inj.Status + ")"
		}
		stats.Notes = append(stats.Notes, note)
	}
	return stats
}

func oddsLines(in []odds) []fixtures.OddsLine {
	var out []fixtures.OddsLine
	for _, o := range in {
		name := strings.TrimSpace(o.Provider.Name)
		if name == "" {
			continue
		}
		home, hf, okH := price(o.HomeTeamOdds)
		away, af, okA := price(o.AwayTeamOdds)
		if !okH && !okA {
			continue
		}
		if !okH || !okA || hf == af {
			format := hf
			if !okH {
				format = af
			}
			out = append(out, fixtures.OddsLine{Provider: name, Home: home, Away: away, Format: format})
			continue
		}
		// Mixed formats on one line are converted up front.
		line := fixtures.OddsLine{Provider: name, Format: market.FormatDecimal}
		line.Home, _ = market.ToDecimal(home, hf)
		line.Away, _ = market.ToDecimal(away, af)
		out = append(out, line)
	}
	return out
}

func price(t teamOdds) (float64, market.Format, bool) {
	if t.DecimalOdds != nil && *t.DecimalOdds > 1 {
		return *t.DecimalOdds, market.FormatDecimal, true
	}
	if t.MoneyLine != nil && *t.MoneyLine != 0 {
		return *t.MoneyLine, market.FormatAmerican, true
	}
	return 0, 0, false
}
