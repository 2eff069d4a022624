package alert

import (
	"time"
)

const dateLayout = "2006-01-02"

// Gate decides when the daily alert scan runs: once per calendar day in
// Location, on the first poll at or after Hour:Minute and no later than
// Window past it. Checking absolute wall time instead of counting ticks
// lets a delayed poll still fire, while the remembered date keeps
// repeated polls from firing twice.
//
// Gate is not safe for concurrent use.
type Gate struct {
	location *time.Location
	hour     int
	minute   int
	window   time.Duration

	lastAlertDate string
}

// NewGate returns Gate firing at hour:minute in loc.
// A window shorter than a minute is widened to one minute.
func NewGate(loc *time.Location, hour, minute int, window time.Duration) *Gate {
	if window < time.Minute {
		window = time.Minute
	}
	return &Gate{
		location: loc,
		hour:     hour,
		minute:   minute,
		window:   window,
	}
}

// Due reports whether a scan should run at now.
func (g *Gate) Due(now time.Time) bool {
	local := now.In(g.location)
	if local.Format(dateLayout) == g.lastAlertDate {
		return false
	}

	target := time.Date(local.Year(), local.Month(), local.Day(), g.hour, g.minute, 0, 0, g.location)
	return !local.Before(target) && local.Before(target.Add(g.window))
}

// Done marks the scan of now's local date as completed.
func (g *Gate) Done(now time.Time) {
	g.lastAlertDate = now.In(g.location).Format(dateLayout)
}

// LastAlertDate returns local date of the last completed scan, empty if none.
func (g *Gate) LastAlertDate() string {
	return g.lastAlertDate
}
