package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/market"
	"github.com/moisenya/pronoai/pkg/sources"
)

const scoreboardJSON = `{
  "leagues": [{"name": "English Premier League", "abbreviation": "EPL"}],
  "events": [
    {
      "id": "401",
      "date": "2026-10-17T16:30Z",
      "status": {"type": {"state": "pre", "completed": false}},
      "weather": {"displayValue": "Pluie"},
      "competitions": [{
        "id": "401",
        "date": "2026-10-17T16:30Z",
        "venue": {"fullName": "Etihad Stadium"},
        "competitors": [
          {"homeAway": "home", "team": {"displayName": "Manchester City"},
           "records": [{"type": "total", "summary": "6-1-1"}], "form": "WWDWW",
           "injuries": [{"status": "Out", "athlete": {"displayName": "Rodri"}}]},
          {"homeAway": "away", "team": {"displayName": "Arsenal"},
           "records": [{"type": "total", "summary": "5-2-1"}], "form": "WLWDW"}
        ],
        "odds": [
          {"provider": {"name": "ESPN BET"}, "homeTeamOdds": {"moneyLine": -120}, "awayTeamOdds": {"moneyLine": 310}},
          {"provider": {"name": "DraftKings"}, "homeTeamOdds": {"decimalOdds": 1.85}, "awayTeamOdds": {"decimalOdds": 4.1}},
          {"provider": {"name": ""}, "homeTeamOdds": {"moneyLine": -150}}
        ]
      }]
    },
    {
      "id": "402",
      "date": "2026-10-17T11:30Z",
      "status": {"type": {"state": "in"}},
      "competitions": [{
        "id": "402",
        "competitors": [
          {"homeAway": "home", "team": {"displayName": "Chelsea"}},
          {"homeAway": "away", "team": {"displayName": "Everton"}}
        ]
      }]
    },
    {
      "id": "403",
      "date": "not-a-date",
      "status": {"type": {"state": "pre"}},
      "competitions": [{
        "id": "403",
        "competitors": [
          {"homeAway": "home", "team": {"displayName": "Spurs"}},
          {"homeAway": "away", "team": {"displayName": "Fulham"}}
        ]
      }]
    },
    {
      "id": "404",
      "date": "2026-10-17T14:00Z",
      "status": {"type": {"state": "pre"}},
      "competitions": [{
        "id": "404",
        "competitors": [
          {"homeAway": "home", "team": {"displayName": "Leeds"}}
        ]
      }]
    }
  ]
}`

const tennisJSON = `{
  "events": [{
    "id": "t1",
    "date": "2026-10-17T12:00Z",
    "status": {"type": {"state": "pre"}},
    "groupings": [{
      "competitions": [{
        "id": "m1",
        "date": "2026-10-17T12:00Z",
        "status": {"type": {"state": "pre"}},
        "competitors": [
          {"order": 2, "athlete": {"displayName": "Jannik Sinner"}, "rank": "2", "form": "WWLWW"},
          {"order": 1, "athlete": {"displayName": "Carlos Alcaraz"}, "rank": 1}
        ]
      }]
    }]
  }]
}`

var premierLeague = fixtures.League{Sport: fixtures.Football, Key: "soccer/eng.1", Name: "Premier League", Importance: 10}

func TestFetchFixtures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apis/site/v2/sports/soccer/eng.1/scoreboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("dates"); got != "20261017" {
			t.Errorf("dates = %s, want 20261017", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scoreboardJSON))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	batch, err := client.FetchFixtures(context.Background(), sources.Request{
		Sport:  fixtures.Football,
		League: premierLeague,
		Date:   time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("FetchFixtures failed: %v", err)
	}

	// Live, undated and single-competitor events are skipped.
	if len(batch.Fixtures) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(batch.Fixtures))
	}
	f := batch.Fixtures[0]
	if f.ID != "espn-401" || f.HomeName != "Manchester City" || f.AwayName != "Arsenal" {
		t.Errorf("unexpected fixture %+v", f)
	}
	if !f.Kickoff.Equal(time.Date(2026, 10, 17, 16, 30, 0, 0, time.UTC)) {
		t.Errorf("Kickoff = %v", f.Kickoff)
	}
	if f.Home.Record != "6-1-1" || f.Home.Form != "WWDWW" {
		t.Errorf("home stats = %+v", f.Home)
	}
	if len(f.Home.Notes) != 1 || f.Home.Notes[0] != "Blessure: Rodri (Out)" {
		t.Errorf("home notes = %v", f.Home.Notes)
	}
	if len(f.Notes) != 1 || f.Venue != "Etihad Stadium" || f.Importance != 10 {
		t.Errorf("fixture context = %v / %s / %d", f.Notes, f.Venue, f.Importance)
	}

	if len(f.Odds) != 2 {
		t.Fatalf("got %d odds lines, want 2", len(f.Odds))
	}
	snap := market.Aggregate(f.Quotes(fixtures.SideHome))
	if snap.ProviderCount != 2 {
		t.Errorf("home providers = %d, want 2", snap.ProviderCount)
	}
	if snap.Max != 1.85 || snap.Min < 1.833 || snap.Min > 1.834 {
		t.Errorf("home range = %v-%v, want 1.833-1.85", snap.Min, snap.Max)
	}
}

func TestFetchFixturesTennisGroupings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tennisJSON))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	batch, err := client.FetchFixtures(context.Background(), sources.Request{
		Sport:  fixtures.Tennis,
		League: fixtures.League{Sport: fixtures.Tennis, Key: "tennis/atp", Name: "ATP", Importance: 9},
		Date:   time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("FetchFixtures failed: %v", err)
	}
	if len(batch.Fixtures) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(batch.Fixtures))
	}
	f := batch.Fixtures[0]
	if f.HomeName != "Carlos Alcaraz" || f.AwayName != "Jannik Sinner" {
		t.Errorf("competitors = %s vs %s", f.HomeName, f.AwayName)
	}
	if f.Home.Rank != 1 || f.Away.Rank != 2 {
		t.Errorf("ranks = %d/%d, want 1/2", f.Home.Rank, f.Away.Rank)
	}
}

func TestFetchFixturesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.FetchFixtures(context.Background(), sources.Request{League: premierLeague, Date: time.Now()})
	if err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestFetchFixturesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := client.FetchFixtures(context.Background(), sources.Request{League: premierLeague, Date: time.Now()})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not enforced: took %v", time.Since(start))
	}
}

func TestFetchFixturesMissingLeague(t *testing.T) {
	client := NewClient()
	if _, err := client.FetchFixtures(context.Background(), sources.Request{}); err == nil {
		t.Fatal("expected error without a league key")
	}
}
