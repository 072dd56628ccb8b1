package activity

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type DurationStatus int

const (
	DurationOK DurationStatus = iota
	DurationInvalidDates
	DurationEndBeforeStart
)

const (
	DurationInvalidText        = "Fechas inválidas"
	DurationEndBeforeStartText = "La fecha de fin es anterior a la de inicio"
	sameDayText                = "1 día"
)

// Duration is the outcome of a trip length computation. It never carries an
// error: partially typed dates degrade to a sentinel status.
type Duration struct {
	Days   int
	Status DurationStatus
}

func (d Duration) Valid() bool { return d.Status == DurationOK }

func (d Duration) String() string {
	switch d.Status {
	case DurationInvalidDates:
		return DurationInvalidText
	case DurationEndBeforeStart:
		return DurationEndBeforeStartText
	}
	if d.Days == 0 {
		return sameDayText
	}
	return strconv.Itoa(d.Days)
}

const msPerDay = 24 * 60 * 60 * 1000

// TripDuration counts the days between two YYYY-MM-DD dates. Both are
// anchored at midday UTC so zone and DST shifts cannot move a day.
func TripDuration(ini, fin string) Duration {
	start, ok := middayUTC(ini)
	if !ok {
		return Duration{Status: DurationInvalidDates}
	}
	end, ok := middayUTC(fin)
	if !ok {
		return Duration{Status: DurationInvalidDates}
	}
	if end.Before(start) {
		return Duration{Status: DurationEndBeforeStart}
	}
	ms := float64(end.Sub(start).Milliseconds())
	return Duration{Days: int(math.Round(ms / msPerDay)), Status: DurationOK}
}

func middayUTC(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !reDateOnly.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s+"T12:00:00Z")
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
