package fixtures

// League describes one competition scanned on the primary source.
type League struct {
	Sport      Sport
	Key        string // primary source path, e.g. "soccer/eng.1"
	Name       string
	Importance int // 1 (minor) to 10 (marquee)
}

// HighProfileImportance is the importance from which an excluded fixture
// is surfaced in a sport summary.
const HighProfileImportance = 8

// DefaultLeagues returns the competitions scanned by default.
func DefaultLeagues() []League {
	return []League{
		{Sport: Football, Key: "soccer/uefa.champions", Name: "Ligue des champions", Importance: 10},
		{Sport: Football, Key: "soccer/eng.1", Name: "Premier League", Importance: 10},
		{Sport: Football, Key: "soccer/esp.1", Name: "Liga", Importance: 9},
		{Sport: Football, Key: "soccer/ita.1", Name: "Serie A", Importance: 8},
		{Sport: Football, Key: "soccer/ger.1", Name: "Bundesliga", Importance: 8},
		{Sport: Football, Key: "soccer/fra.1", Name: "Ligue 1", Importance: 8},
		{Sport: Football, Key: "soccer/uefa.europa", Name: "Ligue Europa", Importance: 7},
		{Sport: Tennis, Key: "tennis/atp", Name: "ATP", Importance: 9},
		{Sport: Tennis, Key: "tennis/wta", Name: "WTA", Importance: 8},
		{Sport: Basket, Key: "basketball/nba", Name: "NBA", Importance: 10},
		{Sport: Basket, Key: "basketball/wnba", Name: "WNBA", Importance: 6},
		{Sport: Basket, Key: "basketball/mens-college-basketball", Name: "NCAA", Importance: 5},
	}
}

// LeaguesFor filters leagues by sport, preserving order.
func LeaguesFor(leagues []League, sport Sport) []League {
	var out []League
	for _, l := range leagues {
		if l.Sport == sport {
			out = append(out, l)
		}
	}
	return out
}
