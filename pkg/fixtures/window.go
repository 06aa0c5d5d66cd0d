package fixtures

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

// ErrTimezone is returned when the scan timezone cannot be resolved.
var ErrTimezone = errors.New("fixtures: unresolvable timezone")

// DefaultWindowBuffer pads the civil day on both sides.
const DefaultWindowBuffer = 6 * time.Hour

// Window is the scan interval for one civil day.
type Window struct {
	Start     time.Time // padded start
	End       time.Time // padded end
	DayStart  time.Time // local midnight
	DayEnd    time.Time // next local midnight
	DateISO   string    // 2026-10-17
	DateLabel string    // samedi 17 octobre 2026
	Label     string
	Location  *time.Location
}

var (
	frenchDays   = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet",
		"août", "septembre", "octobre", "novembre", "décembre"}
)

// ResolveWindow returns the padded window covering the civil day that
// contains now in the named zone. Midnights come from the zone database,
// so days of 23 or 25 hours around DST changes are handled.
func ResolveWindow(now time.Time, tz string, buffer time.Duration) (Window, error) {
	if tz == "" {
		return Window{}, fmt.Errorf("%w: empty name", ErrTimezone)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrTimezone, err)
	}
	if buffer < 0 {
		buffer = 0
	}

	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)

	w := Window{
		Start:     dayStart.Add(-buffer),
		End:       dayEnd.Add(buffer),
		DayStart:  dayStart,
		DayEnd:    dayEnd,
		DateISO:   dayStart.Format("2006-01-02"),
		DateLabel: frenchDate(dayStart),
		Location:  loc,
	}
	w.Label = fmt.Sprintf("%s → %s (%s)",
		w.Start.In(loc).Format("02/01 15:04"), w.End.In(loc).Format("02/01 15:04"), loc.String())
	return w, nil
}

// Contains reports whether t falls inside the padded window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the local dates at the given offsets from the window day.
func (w Window) Days(offsets []int) []time.Time {
	days := make([]time.Time, 0, len(offsets))
	for _, off := range offsets {
		d := w.DayStart
		days = append(days, time.Date(d.Year(), d.Month(), d.Day()+off, 0, 0, 0, 0, w.Location))
	}
	return days
}

// At returns the local time on the window day at hh:mm.
func (w Window) At(hour, minute int) time.Time {
	d := w.DayStart
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, w.Location)
}

func frenchDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}
