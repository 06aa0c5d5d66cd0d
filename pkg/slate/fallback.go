package slate

import (
	"math"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/model"
)

const (
	PreferHome  = "home"
	PreferAway  = "away"
	PreferOver  = "over"
	PreferUnder = "under"
)

// Rating is a hand-rated competitor of a blueprint. Fields apply per sport:
// football uses Attack/Defense/Form (points per game 0-3), tennis uses
// Hold/Break/Elo/Recent, basketball uses Offensive/Defensive/Pace/Recent.
type Rating struct {
	Name string

	Attack  float64
	Defense float64
	Form    []int

	Hold   float64
	Break  float64
	Elo    float64
	Recent []int

	Offensive float64
	Defensive float64
	Pace      float64
}

// Blueprint is a curated fixture used when live data cannot fill the slate.
type Blueprint struct {
	ID        string
	Sport     fixtures.Sport
	League    string
	Venue     string
	Surface   string
	Clock     string // local kickoff "15:04" on the scan day
	Home      Rating
	Away      Rating
	Market    string
	Preferred string
	Angle     string
}

func scale(value, min, max float64) float64 {
	if max == min {
		return 0.5
	}
	return (value - min) / (max - min)
}

func rolling(entries []int) float64 {
	if len(entries) == 0 {
		return 0
	}
	var total int
	for _, v := range entries {
		total += v
	}
	return float64(total) / float64(3*len(entries))
}

func logisticFromDiff(diff float64) float64 {
	capped := math.Max(math.Min(diff, 40), -40)
	return 1 / (1 + math.Exp(-capped/6))
}

// Probability is the hand-rated probability of the preferred outcome.
func (b Blueprint) Probability() float64 {
	switch b.Sport {
	case fixtures.Football:
		score := func(s Rating) float64 {
			return s.Attack*0.6 + s.Defense*0.4 + rolling(s.Form)*100
		}
		raw := logisticFromDiff((score(b.Home) - score(b.Away)) / 2)
		if b.Preferred == PreferHome {
			return raw
		}
		return 1 - raw

	case fixtures.Tennis:
		if b.Preferred == PreferOver {
			holdAvg := (b.Home.Hold + b.Away.Hold) / 2
			tieBreak := scale(holdAvg, 70, 90)
			eloClose := 1 - math.Min(math.Abs(b.Home.Elo-b.Away.Elo)/400, 1)
			return math.Min(0.85, 0.55+tieBreak*0.3+eloClose*0.1)
		}
		fav, out := b.favourite()
		service := scale(fav.Hold-out.Hold, -10, 10)
		brk := scale(fav.Break-out.Break, -15, 15)
		elo := scale(fav.Elo-out.Elo, -200, 200)
		return math.Min(0.9, 0.45+service*0.25+brk*0.2+elo*0.25)

	default:
		if b.Preferred == PreferOver {
			pace := scale((b.Home.Pace+b.Away.Pace)/2, 92, 102)
			offense := (b.Home.Offensive + b.Away.Offensive) / 2
			defense := (b.Home.Defensive + b.Away.Defensive) / 2
			return math.Min(0.85, 0.52+pace*0.2+scale(offense-defense, -15, 15)*0.25)
		}
		fav, out := b.favourite()
		offEdge := scale(fav.Offensive-out.Offensive, -15, 15)
		defEdge := scale(out.Defensive-fav.Defensive, -15, 15)
		recent := scale(rolling(fav.Recent)-rolling(out.Recent), -0.5, 0.5)
		return math.Min(0.88, 0.48+offEdge*0.2+defEdge*0.2+recent*0.2)
	}
}

func (b Blueprint) favourite() (Rating, Rating) {
	if b.Preferred == PreferAway {
		return b.Away, b.Home
	}
	return b.Home, b.Away
}

// PickLabel is the user-facing selection.
func (b Blueprint) PickLabel() string {
	switch b.Preferred {
	case PreferHome:
		return b.Home.Name + " gagne"
	case PreferAway:
		return b.Away.Name + " gagne"
	case PreferOver:
		return "Over recommandé"
	case PreferUnder:
		return "Under recommandé"
	}
	return b.Preferred
}

// Kickoff anchors the blueprint clock to the window day.
func (b Blueprint) Kickoff(w fixtures.Window) time.Time {
	t, err := time.Parse("15:04", b.Clock)
	if err != nil || w.Location == nil {
		return w.DayStart
	}
	return w.At(t.Hour(), t.Minute())
}

// Pick renders the blueprint for the given scan window.
func (b Blueprint) Pick(w fixtures.Window) Pick {
	p := b.Probability()
	signals := []string{}
	if len(b.Home.Form) > 0 || len(b.Home.Recent) > 0 {
		signals = append(signals, "Forme récente (fiche interne)")
	}
	return Pick{
		ID:             b.ID,
		Sport:          b.Sport,
		League:         b.League,
		KickoffISO:     b.Kickoff(w).UTC().Format(time.RFC3339),
		Match:          b.Home.Name + " vs " + b.Away.Name,
		Market:         b.Market,
		PickLabel:      b.PickLabel(),
		Confidence:     int(math.Round(p * 100)),
		ModelOdds:      model.Odds(p),
		Signals:        signals,
		Flags:          []string{FlagFallback},
		Analysis:       describeBlueprint(b, p),
		AnalysisSource: AnalysisTemplate,
		Source:         SourceFallback,
		Context:        b.Angle,
	}
}

// Library is the bundled set of fallback blueprints.
type Library struct {
	blueprints []Blueprint
}

// NewLibrary creates a library from blueprints, keeping their order.
func NewLibrary(blueprints []Blueprint) *Library {
	return &Library{blueprints: append([]Blueprint(nil), blueprints...)}
}

// DefaultLibrary returns the curated blueprints.
func DefaultLibrary() *Library {
	return NewLibrary(defaultBlueprints)
}

// All returns every blueprint.
func (l *Library) All() []Blueprint {
	return append([]Blueprint(nil), l.blueprints...)
}

// ForSport returns the blueprints of one sport.
func (l *Library) ForSport(sport fixtures.Sport) []Blueprint {
	var out []Blueprint
	for _, b := range l.blueprints {
		if b.Sport == sport {
			out = append(out, b)
		}
	}
	return out
}

var defaultBlueprints = []Blueprint{
	{
		ID: "foot-1", Sport: fixtures.Football, League: "Premier League", Venue: "Etihad Stadium", Clock: "18:30",
		Home:   Rating{Name: "Manchester City", Attack: 92, Defense: 89, Form: []int{3, 3, 3, 1, 3}},
		Away:   Rating{Name: "Arsenal", Attack: 88, Defense: 87, Form: []int{3, 3, 1, 3, 3}},
		Market: "1X2", Preferred: PreferHome,
		Angle: "City conserve un léger avantage à domicile avec une attaque toujours aussi productive.",
	},
	{
		ID: "foot-2", Sport: fixtures.Football, League: "Liga", Venue: "Santiago Bernabéu", Clock: "21:00",
		Home:   Rating{Name: "Real Madrid", Attack: 91, Defense: 90, Form: []int{3, 3, 1, 3, 3}},
		Away:   Rating{Name: "Real Sociedad", Attack: 83, Defense: 84, Form: []int{1, 3, 0, 1, 3}},
		Market: "1X2", Preferred: PreferHome,
		Angle: "Madrid domine la Liga et arrive reposé après la rotation en coupe.",
	},
	{
		ID: "foot-3", Sport: fixtures.Football, League: "Serie A", Venue: "Giuseppe Meazza", Clock: "20:45",
		Home:   Rating{Name: "Inter Milan", Attack: 90, Defense: 91, Form: []int{3, 3, 3, 3, 0}},
		Away:   Rating{Name: "Bologna", Attack: 79, Defense: 82, Form: []int{1, 3, 0, 3, 1}},
		Market: "Handicap -1", Preferred: PreferHome,
		Angle: "Inter déroule à domicile, Bologna souffre face aux blocs hauts.",
	},
	{
		ID: "tennis-1", Sport: fixtures.Tennis, League: "ATP Miami", Surface: "Dur", Clock: "16:00",
		Home:   Rating{Name: "Carlos Alcaraz", Hold: 86, Break: 31, Elo: 2155, Recent: []int{1, 1, 1, 0, 1}},
		Away:   Rating{Name: "Jannik Sinner", Hold: 84, Break: 28, Elo: 2095, Recent: []int{1, 1, 1, 1, 0}},
		Market: "Vainqueur du match", Preferred: PreferHome,
		Angle: "Alcaraz possède un léger avantage dans les rallies longs sur dur rapide.",
	},
	{
		ID: "tennis-2", Sport: fixtures.Tennis, League: "WTA Miami", Surface: "Dur", Clock: "19:00",
		Home:   Rating{Name: "Iga Swiatek", Hold: 78, Break: 49, Elo: 2090, Recent: []int{1, 1, 1, 1, 1}},
		Away:   Rating{Name: "Jessica Pegula", Hold: 74, Break: 36, Elo: 1960, Recent: []int{1, 0, 1, 1, 0}},
		Market: "Vainqueur du match", Preferred: PreferHome,
		Angle: "Swiatek domine Pegula dans les échanges croisés et retourne mieux.",
	},
	{
		ID: "tennis-3", Sport: fixtures.Tennis, League: "ATP Challenger Lille", Surface: "Indoor", Clock: "12:00",
		Home:   Rating{Name: "Arthur Fils", Hold: 83, Break: 24, Elo: 1825, Recent: []int{1, 1, 0, 1, 1}},
		Away:   Rating{Name: "Jack Draper", Hold: 80, Break: 22, Elo: 1885, Recent: []int{1, 1, 1, 0, 1}},
		Market: "Total jeux - Over/Under", Preferred: PreferOver,
		Angle: "Deux gros serveurs indoor, peu de breaks attendus dans ce duel.",
	},
	{
		ID: "basket-1", Sport: fixtures.Basket, League: "NBA", Venue: "TD Garden", Clock: "22:30",
		Home:   Rating{Name: "Boston Celtics", Offensive: 119, Defensive: 110, Pace: 98, Recent: []int{1, 1, 1, 1, 0}},
		Away:   Rating{Name: "Miami Heat", Offensive: 112, Defensive: 111, Pace: 96, Recent: []int{0, 1, 0, 1, 1}},
		Market: "Vainqueur", Preferred: PreferHome,
		Angle: "Boston solide à domicile, Heat en back-to-back avec rotation courte.",
	},
	{
		ID: "basket-2", Sport: fixtures.Basket, League: "EuroLeague", Venue: "Palau Blaugrana", Clock: "20:30",
		Home:   Rating{Name: "Barcelone", Offensive: 113, Defensive: 106, Pace: 95, Recent: []int{1, 1, 1, 0, 1}},
		Away:   Rating{Name: "Fenerbahçe", Offensive: 111, Defensive: 108, Pace: 94, Recent: []int{1, 0, 1, 1, 0}},
		Market: "Handicap -4.5", Preferred: PreferHome,
		Angle: "Le Barça domine au rebond et profite du retour de Vesely.",
	},
	{
		ID: "basket-3", Sport: fixtures.Basket, League: "Betclic Élite", Venue: "Astroballe", Clock: "17:00",
		Home:   Rating{Name: "ASVEL", Offensive: 108, Defensive: 104, Pace: 97, Recent: []int{1, 1, 0, 1, 1}},
		Away:   Rating{Name: "Paris Basketball", Offensive: 110, Defensive: 107, Pace: 99, Recent: []int{1, 1, 1, 0, 0}},
		Market: "Total points", Preferred: PreferOver,
		Angle: "Deux équipes rapides, Paris accélère en transition contre les gros.",
	},
}
