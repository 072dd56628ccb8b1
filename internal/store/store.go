package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// Store is the local collaborator: it keeps activity days and details in a
// SQLite file and satisfies the same contract as the REST API.
type Store struct {
	db  *sql.DB
	log logx.Logger
	now func() time.Time
}

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path string, log logx.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database is locked"
	// when the TUI and a CLI command touch the file at once.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &Store{db: db, log: log.With(logx.String("comp", "store")), now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			description TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS activity_days (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			date TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			UNIQUE(event_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS activity_details (
			id TEXT PRIMARY KEY,
			activity_id TEXT NOT NULL REFERENCES activity_days(id) ON DELETE CASCADE,
			localized_category_id INTEGER NOT NULL,
			hora_ini TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_details_activity ON activity_details(activity_id);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for _, c := range activity.StaticCategoryOptions() {
		if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories(id, description) VALUES(?, ?)`, c.ID, c.Description); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]model.CategoryOption, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CategoryOption
	for rows.Next() {
		var c model.CategoryOption
		if err := rows.Scan(&c.ID, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateActivityDetail stores every payload under the day of its record,
// creating the day when it does not exist yet. It returns the last detail.
func (s *Store) CreateActivityDetail(ctx context.Context, records []activity.CreateRecord) (model.ActivityDetail, error) {
	var last model.ActivityDetail
	if len(records) == 0 {
		return last, errors.New("no records")
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return last, err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := s.now().UnixMilli()
	for _, rec := range records {
		date := activity.NormalizeDate(rec.Date)
		if date == "" {
			return last, fmt.Errorf("record date %q: %w", rec.Date, activity.ErrInvalidDate)
		}
		eventID := strings.TrimSpace(rec.EventID)
		if eventID == "" {
			return last, errors.New("record without eventId")
		}
		dayID, err := findOrCreateDay(ctx, tx, eventID, date, nowMs)
		if err != nil {
			return last, err
		}
		for _, p := range rec.Details {
			d, err := activity.DetailFromPayload(p)
			if err != nil {
				return last, err
			}
			d.DetailID = "det-" + uuid.NewString()
			d.ActivityID = dayID
			if err := insertDetail(ctx, tx, d, nowMs); err != nil {
				return last, err
			}
			d.EventID, d.Date, d.UpdatedAt = eventID, date, time.UnixMilli(nowMs).UTC()
			last = d
		}
	}
	if err := tx.Commit(); err != nil {
		return last, err
	}
	s.log.Debug("details created", logx.String("detail", last.DetailID), logx.String("day", last.ActivityID))
	return last, nil
}

// UpdateActivityDetail replaces the stored fields of existing details.
func (s *Store) UpdateActivityDetail(ctx context.Context, records []activity.UpdateRecord) (model.ActivityDetail, error) {
	var last model.ActivityDetail
	if len(records) == 0 {
		return last, errors.New("no records")
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return last, err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := s.now().UnixMilli()
	for _, rec := range records {
		for _, p := range rec.Details {
			d, err := activity.DetailFromPayload(p)
			if err != nil {
				return last, err
			}
			var dayID, eventID, date string
			err = tx.QueryRowContext(ctx, `
				SELECT d.activity_id, a.event_id, a.date
				FROM activity_details d JOIN activity_days a ON a.id = d.activity_id
				WHERE d.id = ?`, d.DetailID).Scan(&dayID, &eventID, &date)
			if errors.Is(err, sql.ErrNoRows) {
				return last, fmt.Errorf("detail %s: %w", d.DetailID, ErrNotFound)
			}
			if err != nil {
				return last, err
			}
			if rec.ActivityID != "" && rec.ActivityID != dayID {
				return last, fmt.Errorf("detail %s does not belong to activity %s: %w", d.DetailID, rec.ActivityID, ErrNotFound)
			}
			d.ActivityID = dayID
			b, err := json.Marshal(stripIdentity(d))
			if err != nil {
				return last, err
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE activity_details SET localized_category_id = ?, hora_ini = ?, json = ?, updated_at_unixms = ?
				WHERE id = ?`, d.LocalizedCategoryID, d.HoraIni, string(b), nowMs, d.DetailID); err != nil {
				return last, err
			}
			d.EventID, d.Date, d.UpdatedAt = eventID, date, time.UnixMilli(nowMs).UTC()
			last = d
		}
	}
	if err := tx.Commit(); err != nil {
		return last, err
	}
	s.log.Debug("details updated", logx.String("detail", last.DetailID))
	return last, nil
}

// DeleteActivityDetail removes a detail; a day left without details goes too.
func (s *Store) DeleteActivityDetail(ctx context.Context, detailID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var dayID string
	err = tx.QueryRowContext(ctx, `SELECT activity_id FROM activity_details WHERE id = ?`, detailID).Scan(&dayID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("detail %s: %w", detailID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_details WHERE id = ?`, detailID); err != nil {
		return err
	}
	var left int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_details WHERE activity_id = ?`, dayID).Scan(&left); err != nil {
		return err
	}
	if left == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM activity_days WHERE id = ?`, dayID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Debug("detail deleted", logx.String("detail", detailID), logx.Bool("dayRemoved", left == 0))
	return nil
}

// ListDays returns an event's days by date, each with its details by start time.
func (s *Store) ListDays(ctx context.Context, eventID string) ([]model.ActivityDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.date, d.id, d.json, d.updated_at_unixms
		FROM activity_days a LEFT JOIN activity_details d ON d.activity_id = a.id
		WHERE a.event_id = ?
		ORDER BY a.date, d.hora_ini, d.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []model.ActivityDay
	idx := map[string]int{}
	for rows.Next() {
		var dayID, date string
		var detailID, raw sql.NullString
		var updated sql.NullInt64
		if err := rows.Scan(&dayID, &date, &detailID, &raw, &updated); err != nil {
			return nil, err
		}
		i, ok := idx[dayID]
		if !ok {
			days = append(days, model.ActivityDay{ID: dayID, EventID: eventID, Date: date, Details: []model.ActivityDetail{}})
			i = len(days) - 1
			idx[dayID] = i
		}
		if !detailID.Valid {
			continue
		}
		d, err := decodeDetail(raw.String)
		if err != nil {
			return nil, fmt.Errorf("detail %s: %w", detailID.String, err)
		}
		d.DetailID, d.ActivityID, d.EventID, d.Date = detailID.String, dayID, eventID, date
		d.UpdatedAt = time.UnixMilli(updated.Int64).UTC()
		days[i].Details = append(days[i].Details, d)
	}
	return days, rows.Err()
}

func (s *Store) GetDetail(ctx context.Context, detailID string) (model.ActivityDetail, error) {
	var d model.ActivityDetail
	var raw, dayID, eventID, date string
	var updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT d.json, d.activity_id, a.event_id, a.date, d.updated_at_unixms
		FROM activity_details d JOIN activity_days a ON a.id = d.activity_id
		WHERE d.id = ?`, detailID).Scan(&raw, &dayID, &eventID, &date, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return d, fmt.Errorf("detail %s: %w", detailID, ErrNotFound)
	}
	if err != nil {
		return d, err
	}
	d, err = decodeDetail(raw)
	if err != nil {
		return d, err
	}
	d.DetailID, d.ActivityID, d.EventID, d.Date = detailID, dayID, eventID, date
	d.UpdatedAt = time.UnixMilli(updated).UTC()
	return d, nil
}

// ListEvents summarizes every event that has at least one day.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event_id, MIN(date), MAX(date) FROM activity_days GROUP BY event_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Start, &e.End); err != nil {
			return nil, err
		}
		e.Name = e.ID
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func findOrCreateDay(ctx context.Context, tx *sql.Tx, eventID, date string, nowMs int64) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM activity_days WHERE event_id = ? AND date = ?`, eventID, date).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = "day-" + uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO activity_days(id, event_id, date, created_at_unixms) VALUES(?, ?, ?, ?)`, id, eventID, date, nowMs); err != nil {
		return "", err
	}
	return id, nil
}

func insertDetail(ctx context.Context, tx *sql.Tx, d model.ActivityDetail, nowMs int64) error {
	b, err := json.Marshal(stripIdentity(d))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_details(id, activity_id, localized_category_id, hora_ini, json, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)`, d.DetailID, d.ActivityID, d.LocalizedCategoryID, d.HoraIni, string(b), nowMs)
	return err
}

// storedDetail is the JSON column: the category fields without the
// identifiers that live in their own columns.
type storedDetail struct {
	LocalizedCategoryID int    `json:"localizedCategoryId"`
	Language            string `json:"language"`
	CategoryLabel       string `json:"tipoActividad,omitempty"`
	Titulo              string `json:"titulo,omitempty"`
	Responsable         string `json:"responsable,omitempty"`
	FechaIni            string `json:"fechaIni,omitempty"`
	FechaFin            string `json:"fechaFin,omitempty"`
	HoraIni             string `json:"horaIni,omitempty"`
	HoraFin             string `json:"horaFin,omitempty"`
	Lugar               string `json:"lugar,omitempty"`
	Traduccion          string `json:"traduccion,omitempty"`
	Duracion            string `json:"duracion,omitempty"`
}

func stripIdentity(d model.ActivityDetail) storedDetail {
	return storedDetail{
		LocalizedCategoryID: d.LocalizedCategoryID,
		Language:            d.Language,
		CategoryLabel:       d.CategoryLabel,
		Titulo:              d.Titulo,
		Responsable:         d.Responsable,
		FechaIni:            d.FechaIni,
		FechaFin:            d.FechaFin,
		HoraIni:             d.HoraIni,
		HoraFin:             d.HoraFin,
		Lugar:               d.Lugar,
		Traduccion:          d.Traduccion,
		Duracion:            d.Duracion,
	}
}

func decodeDetail(raw string) (model.ActivityDetail, error) {
	var sd storedDetail
	if err := json.Unmarshal([]byte(raw), &sd); err != nil {
		return model.ActivityDetail{}, err
	}
	return model.ActivityDetail{
		LocalizedCategoryID: sd.LocalizedCategoryID,
		Language:            sd.Language,
		CategoryLabel:       sd.CategoryLabel,
		Titulo:              sd.Titulo,
		Responsable:         sd.Responsable,
		FechaIni:            sd.FechaIni,
		FechaFin:            sd.FechaFin,
		HoraIni:             sd.HoraIni,
		HoraFin:             sd.HoraFin,
		Lugar:               sd.Lugar,
		Traduccion:          sd.Traduccion,
		Duracion:            sd.Duracion,
	}, nil
}
