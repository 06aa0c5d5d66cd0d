package espn

import (
	"encoding/json"
	"strconv"
)

// scoreboard is the subset of the site API scoreboard payload we read.
type scoreboard struct {
	Leagues []struct {
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"leagues"`
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Name         string        `json:"name"`
	Status       status        `json:"status"`
	Competitions []competition `json:"competitions"`
	Groupings    []struct {
		Competitions []competition `json:"competitions"`
	} `json:"groupings"`
	Weather *struct {
		DisplayValue string `json:"displayValue"`
	} `json:"weather"`
}

type status struct {
	Type struct {
		State     string `json:"state"` // pre, in, post
		Completed bool   `json:"completed"`
	} `json:"type"`
}

type competition struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	StartDate   string       `json:"startDate"`
	Status      *status      `json:"status"`
	Venue       *venue       `json:"venue"`
	Competitors []competitor `json:"competitors"`
	Odds        []odds       `json:"odds"`
	Notes       []struct {
		Headline string `json:"headline"`
	} `json:"notes"`
}

type venue struct {
	FullName string `json:"fullName"`
}

type competitor struct {
	ID       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Order    int    `json:"order"`
	Team     *struct {
		DisplayName string `json:"displayName"`
	} `json:"team"`
	Athlete *struct {
		DisplayName string `json:"displayName"`
	} `json:"athlete"`
	Records []struct {
		Type    string `json:"type"`
		Summary string `json:"summary"`
	} `json:"records"`
	Form        string      `json:"form"`
	CuratedRank *struct {
		Current int `json:"current"`
	} `json:"curatedRank"`
	Rank     flexInt `json:"rank"`
	Injuries []struct {
		Status  string `json:"status"`
		Athlete struct {
			DisplayName string `json:"displayName"`
		} `json:"athlete"`
	} `json:"injuries"`
}

type odds struct {
	Provider struct {
		Name string `json:"name"`
	} `json:"provider"`
	HomeTeamOdds teamOdds `json:"homeTeamOdds"`
	AwayTeamOdds teamOdds `json:"awayTeamOdds"`
}

type teamOdds struct {
	MoneyLine   *float64 `json:"moneyLine"`
	DecimalOdds *float64 `json:"decimalOdds"`
}

// flexInt accepts numbers and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	n, _ = strconv.Atoi(s)
	*f = flexInt(n)
	return nil
}
