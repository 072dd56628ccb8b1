package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"
	"agenda-cli/internal/store"
)

func newServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "agenda.sqlite"), logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st, logx.Nop()), st
}

func call(t *testing.T, s *Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func keynoteRecord(title string) []map[string]any {
	return []map[string]any{{
		"date":                "2025-03-10",
		"eventId":             "ev",
		"localizedCategoryId": 5,
		"details": []map[string]any{{
			"titulo":  title,
			"lugar":   "Auditorio",
			"horaIni": "2025-03-10T09:00",
			"horaFin": "2025-03-10T10:00",
		}},
	}}
}

func TestCategories(t *testing.T) {
	t.Parallel()
	s, _ := newServer(t)

	resp, raw := call(t, s, http.MethodGet, "/api/tipos-actividad", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var cats []model.CategoryOption
	if err := json.Unmarshal(raw, &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 22 {
		t.Fatalf("expected 22 categories, got %d", len(cats))
	}
}

func TestCreateListUpdateDelete(t *testing.T) {
	t.Parallel()
	s, _ := newServer(t)

	resp, raw := call(t, s, http.MethodPost, "/api/actividades", keynoteRecord("Conferencia inaugural"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}
	var created model.ActivityDetail
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.DetailID == "" || created.CategoryLabel != "Conferencia magistral" || created.Language != "ES" {
		t.Fatalf("unexpected created detail: %+v", created)
	}

	resp, raw = call(t, s, http.MethodGet, "/api/eventos/ev/actividades", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var days []model.ActivityDay
	_ = json.Unmarshal(raw, &days)
	if len(days) != 1 || len(days[0].Details) != 1 {
		t.Fatalf("unexpected days: %s", raw)
	}

	upd := []map[string]any{{
		"date":                "2025-03-10",
		"eventId":             "ev",
		"localizedCategoryId": 5,
		"activityId":          created.ActivityID,
		"details": []map[string]any{{
			"detailId": created.DetailID,
			"titulo":   "Conferencia magistral de apertura",
			"lugar":    "Auditorio B",
			"horaIni":  "2025-03-10T09:30",
			"horaFin":  "2025-03-10T10:30",
		}},
	}}
	resp, raw = call(t, s, http.MethodPut, "/api/actividades", upd)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", resp.StatusCode, raw)
	}
	resp, raw = call(t, s, http.MethodGet, "/api/actividades/detalle/"+created.DetailID, nil)
	var got model.ActivityDetail
	_ = json.Unmarshal(raw, &got)
	if resp.StatusCode != http.StatusOK || got.Lugar != "Auditorio B" || got.HoraIni != "2025-03-10T09:30" {
		t.Fatalf("unexpected detail after update (%d): %s", resp.StatusCode, raw)
	}

	resp, _ = call(t, s, http.MethodDelete, "/api/actividades/detalle/"+created.DetailID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, raw = call(t, s, http.MethodGet, "/api/eventos/ev/actividades", nil)
	if resp.StatusCode != http.StatusOK || string(bytes.TrimSpace(raw)) != "[]" {
		t.Fatalf("expected empty program after delete, got %s", raw)
	}
	resp, _ = call(t, s, http.MethodDelete, "/api/actividades/detalle/"+created.DetailID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestCreate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()
	s, _ := newServer(t)

	resp, raw := call(t, s, http.MethodPost, "/api/actividades", keynoteRecord("ab"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(raw, &body)
	if body.Fields["titulo"] == "" {
		t.Fatalf("expected titulo error, got %s", raw)
	}
}

func TestCreate_BadRequests(t *testing.T) {
	t.Parallel()
	s, _ := newServer(t)

	unknown := keynoteRecord("Conferencia")
	unknown[0]["localizedCategoryId"] = 99
	cases := []struct {
		name string
		body any
	}{
		{"empty", []map[string]any{}},
		{"unknown category", unknown},
		{"bad date", []map[string]any{{"date": "mañana", "eventId": "ev", "details": []any{map[string]any{"titulo": "x"}}}}},
	}
	for _, tc := range cases {
		resp, raw := call(t, s, http.MethodPost, "/api/actividades", tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", tc.name, resp.StatusCode, raw)
		}
	}
}

func TestUpdate_RequiresDetailID(t *testing.T) {
	t.Parallel()
	s, _ := newServer(t)

	rec := keynoteRecord("Conferencia")
	rec[0]["activityId"] = "day-x"
	resp, raw := call(t, s, http.MethodPut, "/api/actividades", rec)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, raw)
	}
}
