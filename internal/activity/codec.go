package activity

import (
	"regexp"
	"strings"
	"time"
)

var (
	reClock     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
	reDateOnly  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateClock = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ T](\d{1,2}:\d{2})(?::\d{2}(?:\.\d+)?)?$`)
)

// instantLayouts are tried last, for values that carry a zone or fraction.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeTime converts any stored time shape to HH:mm. Unparseable input
// yields "" so the field reads as missing.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := reClock.FindStringSubmatch(s); m != nil {
		return clock(s)
	}
	if m := reDateClock.FindStringSubmatch(s); m != nil {
		if !validDate(m[1]) {
			return ""
		}
		return clock(m[2])
	}
	if t, ok := parseInstant(s); ok {
		return t.Format("15:04")
	}
	return ""
}

// NormalizeDate converts any stored date shape to YYYY-MM-DD, or "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if reDateOnly.MatchString(s) {
		if !validDate(s) {
			return ""
		}
		return s
	}
	if m := reDateClock.FindStringSubmatch(s); m != nil {
		if !validDate(m[1]) || clock(m[2]) == "" {
			return ""
		}
		return m[1]
	}
	if t, ok := parseInstant(s); ok {
		return t.Format("2006-01-02")
	}
	return ""
}

// JoinDateTime recombines a canonical date and time into YYYY-MM-DDTHH:mm,
// the shape the backend stores time fields in.
func JoinDateTime(date, hhmm string) string {
	date = NormalizeDate(date)
	hhmm = NormalizeTime(hhmm)
	if date == "" || hhmm == "" {
		return ""
	}
	return date + "T" + hhmm
}

func clock(s string) string {
	t, err := time.Parse("15:04", padHour(s))
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}

func padHour(s string) string {
	// Cut seconds; "8:30" -> "08:30".
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	h := parts[0]
	if len(h) == 1 {
		h = "0" + h
	}
	return h + ":" + parts[1]
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// parseInstant keeps the wall clock as written; no zone conversion happens.
func parseInstant(s string) (time.Time, bool) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
