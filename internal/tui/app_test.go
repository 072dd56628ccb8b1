package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	mu       sync.Mutex
	days     []model.ActivityDay
	creates  [][]activity.CreateRecord
	updates  [][]activity.UpdateRecord
	deleted  []string
	failNext error
}

func (f *fakeBackend) ListCategories(context.Context) ([]model.CategoryOption, error) {
	return activity.StaticCategoryOptions(), nil
}

func (f *fakeBackend) CreateActivityDetail(_ context.Context, recs []activity.CreateRecord) (model.ActivityDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		return model.ActivityDetail{}, err
	}
	f.creates = append(f.creates, recs)
	return model.ActivityDetail{DetailID: "det-new", ActivityID: "day-new"}, nil
}

func (f *fakeBackend) UpdateActivityDetail(_ context.Context, recs []activity.UpdateRecord) (model.ActivityDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, recs)
	return model.ActivityDetail{DetailID: "det-1"}, nil
}

func (f *fakeBackend) ListDays(context.Context, string) ([]model.ActivityDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ActivityDay(nil), f.days...), nil
}

func (f *fakeBackend) DeleteActivityDetail(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func seededBackend() *fakeBackend {
	return &fakeBackend{days: []model.ActivityDay{{
		ID:      "day-1",
		EventID: "ev",
		Date:    "2025-03-10",
		Details: []model.ActivityDetail{{
			DetailID:            "det-1",
			ActivityID:          "day-1",
			LocalizedCategoryID: 5,
			Language:            "ES",
			CategoryLabel:       "Conferencia magistral",
			Titulo:              "Conferencia inaugural",
			Lugar:               "Auditorio",
			HoraIni:             "2025-03-10T09:00",
			HoraFin:             "2025-03-10T10:00",
		}},
	}}}
}

func newTestModel(t *testing.T, b *fakeBackend) appModel {
	t.Helper()
	m := newAppModel(context.Background(), Options{Backend: b, EventID: "ev", Logger: logx.Nop(), MarkdownStyle: "notty"})
	return step(t, m, m.Init()())
}

func step(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(appModel)
}

// stepRun sends msg and runs the returned command once, feeding its result
// back. Only used where the command is a backend call.
func stepRun(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a command for %v", msg)
	}
	return step(t, m, cmd())
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func TestInit_LoadsProgram(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, seededBackend())
	if len(m.list.Items()) != 2 {
		t.Fatalf("expected day + detail rows, got %d", len(m.list.Items()))
	}
	if v := m.View(); !strings.Contains(v, "2025-03-10 (lunes)") {
		t.Fatalf("expected day heading in view:\n%s", v)
	}
}

func TestAddDay_FullFlow(t *testing.T) {
	t.Parallel()
	b := seededBackend()
	m := newTestModel(t, b)

	m = stepRun(t, m, keys("a"))
	if m.dialog == nil || m.dialog.eng.State().Mode != activity.ModeDateSelect {
		t.Fatalf("expected date selection dialog")
	}

	m = step(t, m, keys("2025-03-11"))
	m = step(t, m, keyEnter)
	if st := m.dialog.eng.State(); st.Mode != activity.ModeActivityAdd || st.Step != 1 {
		t.Fatalf("expected add flow step 1, got %+v", st)
	}

	// Coffee break is the third category.
	m = step(t, m, keyDown)
	m = step(t, m, keyDown)
	m = step(t, m, keyEnter)
	if m.dialog.eng.State().Step != 2 || len(m.dialog.inputs) != 3 {
		t.Fatalf("expected coffee break fields, got step %d with %d inputs", m.dialog.eng.State().Step, len(m.dialog.inputs))
	}

	m = step(t, m, keys("Café"))
	m = step(t, m, keyTab)
	m = step(t, m, keys("10:00"))
	m = step(t, m, keyTab)
	m = step(t, m, keys("10:30"))

	next, cmd := m.Update(keySave)
	m = next.(appModel)
	if cmd == nil || !m.dialog.eng.Submitting() {
		t.Fatalf("expected submit in flight")
	}
	if v := m.View(); !strings.Contains(v, "Guardando") {
		t.Fatalf("expected saving indicator in view")
	}
	// A second save while in flight does nothing.
	if _, again := m.Update(keySave); again != nil {
		t.Fatalf("expected no second submission")
	}

	m = step(t, m, cmd())
	if m.dialog != nil {
		t.Fatalf("expected dialog closed after success")
	}
	if m.status != "Actividad creada" {
		t.Fatalf("expected created status, got %q", m.status)
	}
	if len(b.creates) != 1 {
		t.Fatalf("expected one create call, got %d", len(b.creates))
	}
	rec := b.creates[0][0]
	if rec.Date != "2025-03-11" || rec.EventID != "ev" || rec.LocalizedCategoryID != 3 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	c := activity.CommonOf(rec.Details[0])
	if c.Titulo != "Café" || c.HoraIni != "2025-03-11T10:00" || c.HoraFin != "2025-03-11T10:30" {
		t.Fatalf("unexpected payload: %+v", c)
	}
}

func TestAddDay_TakenDate(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, seededBackend())

	m = stepRun(t, m, keys("a"))
	m = step(t, m, keys("2025-03-10"))
	m = step(t, m, keyEnter)
	if m.dialog.eng.State().Mode != activity.ModeDateSelect {
		t.Fatalf("expected to stay in date selection")
	}
	if !strings.Contains(m.View(), "Ya existe un día") {
		t.Fatalf("expected taken-date notice in view")
	}
}

func TestAddDay_ListsTakenDates(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, seededBackend())

	m = stepRun(t, m, keys("a"))
	v := m.View()
	if !strings.Contains(v, "Fechas ocupadas") || !strings.Contains(v, "(ocupada)") {
		t.Fatalf("expected taken dates listed in date selection:\n%s", v)
	}
	if strings.Contains(v, "Esa fecha ya tiene") {
		t.Fatalf("expected no taken-date warning before typing")
	}
	m = step(t, m, keys("2025-03-10"))
	if !strings.Contains(m.View(), "Esa fecha ya tiene") {
		t.Fatalf("expected typed taken date flagged before enter")
	}
}

func TestEditDetail_PrefillsAndUpdates(t *testing.T) {
	t.Parallel()
	b := seededBackend()
	m := newTestModel(t, b)
	m.list.Select(1)

	m = stepRun(t, m, keys("e"))
	if !m.dialog.eng.Locked() || m.dialog.eng.State().Step != 2 {
		t.Fatalf("expected locked edit at step 2, got %+v", m.dialog.eng.State())
	}
	if got := m.dialog.inputs[0].input.Value(); got != "Conferencia inaugural" {
		t.Fatalf("expected prefilled title, got %q", got)
	}
	if got := m.dialog.eng.Values()[activity.FieldHoraIni]; got != "09:00" {
		t.Fatalf("expected normalized start time, got %q", got)
	}

	// ctrl+b cannot go back while editing.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	if m.dialog.eng.State().Step != 2 {
		t.Fatalf("expected edit to stay on step 2")
	}

	m = step(t, m, keys(" (2025)"))
	m = stepRun(t, m, keySave)
	if m.dialog != nil || m.status != "Actividad actualizada" {
		t.Fatalf("expected closed dialog with updated status, got %q", m.status)
	}
	if len(b.updates) != 1 {
		t.Fatalf("expected one update call, got %d", len(b.updates))
	}
	rec := b.updates[0][0]
	c := activity.CommonOf(rec.Details[0])
	if rec.ActivityID != "day-1" || c.DetailID != "det-1" || c.Titulo != "Conferencia inaugural (2025)" {
		t.Fatalf("unexpected update record: %+v / %+v", rec, c)
	}
}

func TestSubmitFailure_KeepsValues(t *testing.T) {
	t.Parallel()
	b := seededBackend()
	b.failNext = errors.New("boom")
	m := newTestModel(t, b)

	m = stepRun(t, m, keys("n"))
	m = step(t, m, keyDown)
	m = step(t, m, keyDown)
	m = step(t, m, keyEnter)
	m = step(t, m, keys("Café"))
	m = step(t, m, keyTab)
	m = step(t, m, keys("10:00"))
	m = step(t, m, keyTab)
	m = step(t, m, keys("10:30"))
	m = stepRun(t, m, keySave)

	if m.dialog == nil {
		t.Fatalf("expected dialog to stay open after failure")
	}
	if m.dialog.eng.Submitting() {
		t.Fatalf("expected submit lock released")
	}
	if got := m.dialog.inputs[0].input.Value(); got != "Café" {
		t.Fatalf("expected values kept, got %q", got)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected failure notice in view")
	}
}

func TestCancelDuringSubmit_IgnoresLateResult(t *testing.T) {
	t.Parallel()
	b := seededBackend()
	m := newTestModel(t, b)

	m = stepRun(t, m, keys("n"))
	m = step(t, m, keyDown)
	m = step(t, m, keyDown)
	m = step(t, m, keyEnter)
	m = step(t, m, keys("Café"))
	m = step(t, m, keyTab)
	m = step(t, m, keys("10:00"))
	m = step(t, m, keyTab)
	m = step(t, m, keys("10:30"))

	next, cmd := m.Update(keySave)
	m = next.(appModel)
	m = step(t, m, keyEsc)
	if m.dialog != nil {
		t.Fatalf("expected dialog closed on esc")
	}

	next, reload := m.Update(cmd())
	m = next.(appModel)
	if reload != nil || m.status != "" {
		t.Fatalf("expected late result ignored, got status %q", m.status)
	}
}

func TestValidationErrors_BlockSubmit(t *testing.T) {
	t.Parallel()
	b := seededBackend()
	m := newTestModel(t, b)

	m = stepRun(t, m, keys("n"))
	m = step(t, m, keyEnter) // first category, no choice made yet: marks it and advances
	if m.dialog.eng.State().Step != 2 {
		t.Fatalf("expected step 2")
	}
	next, cmd := m.Update(keySave)
	m = next.(appModel)
	if cmd != nil {
		t.Fatalf("expected no submission with empty fields")
	}
	if !strings.Contains(m.View(), "Este campo es obligatorio") {
		t.Fatalf("expected required-field messages in view")
	}
}

func TestDelete_Confirm(t *testing.T) {
	t.Parallel()
	b := seededBackend()
	m := newTestModel(t, b)
	m.list.Select(1)

	m = step(t, m, keys("d"))
	if m.confirm == nil {
		t.Fatalf("expected confirm modal")
	}
	m = step(t, m, keyEnter) // focus starts on cancel
	if m.confirm != nil || len(b.deleted) != 0 {
		t.Fatalf("expected cancel without deleting")
	}

	m = step(t, m, keys("d"))
	m = stepRun(t, m, keys("y"))
	if len(b.deleted) != 1 || b.deleted[0] != "det-1" {
		t.Fatalf("expected det-1 deleted, got %v", b.deleted)
	}
	if !strings.HasPrefix(m.status, "Actividad eliminada") {
		t.Fatalf("unexpected status %q", m.status)
	}
}
