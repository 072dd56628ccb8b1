package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"agenda-cli/internal/activity"
)

var ErrDoctorIssuesFound = errors.New("doctor found errors")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`

	EventID  string `json:"eventId,omitempty"`
	DayID    string `json:"dayId,omitempty"`
	DetailID string `json:"detailId,omitempty"`
	Field    string `json:"field,omitempty"`
}

type DoctorReport struct {
	Days    int           `json:"days"`
	Details int           `json:"details"`
	Issues  []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor checks the database file and every stored detail against the
// category rules. Problems are reported as issues, not returned as errors.
func (s *Store) Doctor(ctx context.Context) (DoctorReport, error) {
	rep := DoctorReport{Issues: []DoctorIssue{}}

	var integrity string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		return rep, err
	}
	if integrity != "ok" {
		rep.Issues = append(rep.Issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "sqlite_integrity",
			Message: integrity,
		})
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.event_id, a.date, d.id, d.json
		FROM activity_days a LEFT JOIN activity_details d ON d.activity_id = a.id
		ORDER BY a.event_id, a.date, d.hora_ini`)
	if err != nil {
		return rep, err
	}
	defer rows.Close()

	seen := map[string]int{}
	for rows.Next() {
		var dayID, eventID, date string
		var detailID, raw sql.NullString
		if err := rows.Scan(&dayID, &eventID, &date, &detailID, &raw); err != nil {
			return rep, err
		}
		if _, ok := seen[dayID]; !ok {
			seen[dayID] = 0
			rep.Days++
			if activity.NormalizeDate(date) != date {
				rep.Issues = append(rep.Issues, DoctorIssue{
					Level: DoctorIssueLevelError, Code: "day_invalid_date",
					Message: fmt.Sprintf("day date %q is not YYYY-MM-DD", date),
					EventID: eventID, DayID: dayID,
				})
			}
		}
		if !detailID.Valid {
			continue
		}
		seen[dayID]++
		rep.Details++
		rep.Issues = append(rep.Issues, checkDetail(eventID, dayID, date, detailID.String, raw.String)...)
	}
	if err := rows.Err(); err != nil {
		return rep, err
	}

	var empty []string
	for id, n := range seen {
		if n == 0 {
			empty = append(empty, id)
		}
	}
	sort.Strings(empty)
	for _, id := range empty {
		rep.Issues = append(rep.Issues, DoctorIssue{
			Level: DoctorIssueLevelWarn, Code: "day_without_details",
			Message: "day has no activities", DayID: id,
		})
	}
	return rep, nil
}

func checkDetail(eventID, dayID, date, detailID, raw string) []DoctorIssue {
	issue := func(level DoctorIssueLevel, code, msg, field string) DoctorIssue {
		return DoctorIssue{Level: level, Code: code, Message: msg, EventID: eventID, DayID: dayID, DetailID: detailID, Field: field}
	}

	d, err := decodeDetail(raw)
	if err != nil {
		return []DoctorIssue{issue(DoctorIssueLevelError, "detail_invalid_json", err.Error(), "")}
	}
	fe, err := activity.ValidateDetail(d)
	if err != nil {
		return []DoctorIssue{issue(DoctorIssueLevelError, "detail_unknown_category", err.Error(), "")}
	}

	var out []DoctorIssue
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, issue(DoctorIssueLevelWarn, "detail_invalid_field", fe[activity.FieldName(name)], name))
	}
	if ini := strings.TrimSpace(d.HoraIni); ini != "" && activity.NormalizeDate(ini) != date {
		out = append(out, issue(DoctorIssueLevelWarn, "detail_date_mismatch",
			fmt.Sprintf("start %q is not on day %s", ini, date), string(activity.FieldHoraIni)))
	}
	return out
}
