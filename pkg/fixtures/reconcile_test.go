package fixtures

import (
	"fmt"
	"testing"
	"time"
)

var kickoff = time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC)

func primaryFixture(id, home, away string, at time.Time) Fixture {
	return Fixture{
		ID:         id,
		Sport:      Football,
		League:     "Premier League",
		Importance: 10,
		HomeName:   home,
		AwayName:   away,
		Kickoff:    at,
		Status:     StatusScheduled,
	}
}

func TestReconcileTolerance(t *testing.T) {
	r := NewReconciler(nil)

	tests := []struct {
		name      string
		secondary time.Time
		confirmed bool
		reason    string
	}{
		{"same time", kickoff, true, ""},
		{"seven minutes later", kickoff.Add(7 * time.Minute), true, ""},
		{"fifteen minutes later", kickoff.Add(15 * time.Minute), false, ReasonScheduleMismatch},
		{"across hour bucket", kickoff.Add(-5 * time.Minute), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Reconcile(
				[]Fixture{primaryFixture("1", "Manchester City", "Arsenal", kickoff)},
				[]SecondaryFixture{{Sport: Football, HomeName: "Manchester City", AwayName: "Arsenal", Start: tt.secondary}},
			)
			if tt.confirmed {
				if len(res.Confirmed) != 1 {
					t.Fatalf("expected confirmation, got exclusions %+v", res.Excluded)
				}
				return
			}
			if len(res.Excluded) != 1 || res.Excluded[0].Reason != tt.reason {
				t.Fatalf("expected exclusion %q, got %+v", tt.reason, res.Excluded)
			}
		})
	}
}

func TestReconcileUnconfirmed(t *testing.T) {
	r := NewReconciler(nil)
	res := r.Reconcile(
		[]Fixture{primaryFixture("1", "Real Madrid", "Real Sociedad", kickoff)},
		[]SecondaryFixture{{Sport: Football, HomeName: "Inter", AwayName: "Bologna", Start: kickoff}},
	)
	if len(res.Excluded) != 1 || res.Excluded[0].Reason != ReasonUnconfirmed {
		t.Fatalf("expected %q, got %+v", ReasonUnconfirmed, res.Excluded)
	}
}

func TestReconcileNameVariants(t *testing.T) {
	r := NewReconciler(nil)
	res := r.Reconcile(
		[]Fixture{primaryFixture("1", "Barcelona", "Fenerbahçe", kickoff)},
		// Swapped order and decorated names on the confirming side.
		[]SecondaryFixture{{Sport: Football, HomeName: "Fenerbahce", AwayName: "FC Barcelona", Start: kickoff.Add(3 * time.Minute)}},
	)
	if len(res.Confirmed) != 1 {
		t.Fatalf("expected confirmation, got %+v", res.Excluded)
	}
	if res.Confirmed[0].Delta != 3*time.Minute {
		t.Errorf("Delta = %v, want 3m", res.Confirmed[0].Delta)
	}
}

func TestReconcileDifferentSportDoesNotConfirm(t *testing.T) {
	r := NewReconciler(nil)
	res := r.Reconcile(
		[]Fixture{primaryFixture("1", "Real Madrid", "Barcelona", kickoff)},
		[]SecondaryFixture{{Sport: Basket, HomeName: "Real Madrid", AwayName: "Barcelona", Start: kickoff}},
	)
	if len(res.Confirmed) != 0 {
		t.Fatal("a basketball listing must not confirm a football fixture")
	}
}

func TestReconcilePicksClosestCandidate(t *testing.T) {
	r := NewReconciler(nil)
	res := r.Reconcile(
		[]Fixture{primaryFixture("1", "Inter", "Bologna", kickoff)},
		[]SecondaryFixture{
			{Sport: Football, HomeName: "Inter", AwayName: "Bologna", Start: kickoff.Add(2 * time.Hour)},
			{Sport: Football, HomeName: "Inter", AwayName: "Bologna", Start: kickoff.Add(-8 * time.Minute)},
		},
	)
	if len(res.Confirmed) != 1 {
		t.Fatalf("expected confirmation, got %+v", res.Excluded)
	}
}

func TestHighProfileCapAndOrder(t *testing.T) {
	r := NewReconciler(nil)

	var excluded []Exclusion
	for i := 0; i < 14; i++ {
		f := primaryFixture(fmt.Sprint(i), fmt.Sprintf("Home %d", i), "Away", kickoff)
		f.Importance = 8 + i%3
		excluded = append(excluded, Exclusion{Fixture: f, Reason: ReasonUnconfirmed})
	}
	minor := primaryFixture("minor", "Minor", "Club", kickoff)
	minor.Importance = 3
	excluded = append(excluded, Exclusion{Fixture: minor, Reason: ReasonUnconfirmed})

	got := r.HighProfile(excluded)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Importance > got[i-1].Importance {
			t.Fatalf("not sorted by importance: %d after %d", got[i].Importance, got[i-1].Importance)
		}
	}
	for _, h := range got {
		if h.Importance < HighProfileImportance {
			t.Errorf("minor fixture %q listed", h.Match)
		}
	}
}

func TestEligible(t *testing.T) {
	now := kickoff
	grace := 5 * time.Minute

	tests := []struct {
		name string
		f    Fixture
		want bool
	}{
		{"future", primaryFixture("1", "a", "b", now.Add(time.Hour)), true},
		{"inside grace", primaryFixture("2", "a", "b", now.Add(-3*time.Minute)), true},
		{"started", primaryFixture("3", "a", "b", now.Add(-10*time.Minute)), false},
	}
	live := primaryFixture("4", "a", "b", now.Add(time.Hour))
	live.Status = StatusLive
	tests = append(tests, struct {
		name string
		f    Fixture
		want bool
	}{"live status", live, false})

	for _, tt := range tests {
		if got := tt.f.Eligible(now, grace); got != tt.want {
			t.Errorf("%s: Eligible = %v, want %v", tt.name, got, tt.want)
		}
	}
}
