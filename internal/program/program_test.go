package program

import (
	"strings"
	"testing"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/model"
)

func sampleDays() []model.ActivityDay {
	return []model.ActivityDay{
		{ID: "a1", Date: "2025-03-10", Details: []model.ActivityDetail{
			{LocalizedCategoryID: 5, Titulo: "Conferencia inaugural", Lugar: "Auditorio", HoraIni: "2025-03-10T09:00", HoraFin: "2025-03-10T10:00"},
			{LocalizedCategoryID: 1, CategoryLabel: "Salida de campo", Titulo: "Visita a la reserva", Responsable: "Ana", FechaIni: "2025-03-10", FechaFin: "2025-03-12", HoraIni: "2025-03-10T14:00"},
		}},
		{ID: "a2", Date: "2025-03-11"},
	}
}

func TestDayHeading(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date string
		lang activity.Language
		want string
	}{
		{"2025-03-10", activity.Spanish, "2025-03-10 (lunes)"},
		{"2025-03-10T08:00", activity.English, "2025-03-10 (Monday)"},
		{"someday", activity.Spanish, "someday"},
	}
	for _, tc := range cases {
		if got := DayHeading(tc.date, tc.lang); got != tc.want {
			t.Fatalf("DayHeading(%q): expected %q, got %q", tc.date, tc.want, got)
		}
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	md := Markdown("congreso", sampleDays(), activity.Spanish)
	for _, want := range []string{
		"# Programa: congreso",
		"## 2025-03-10 (lunes)",
		"- **09:00–10:00** · Conferencia magistral · *Conferencia inaugural*",
		"Lugar: Auditorio",
		"Salida: 2025-03-10 → 2025-03-12 (2 días)",
		"## 2025-03-11 (martes)",
		"_Sin actividades registradas._",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Index(md, "Conferencia inaugural") > strings.Index(md, "Visita a la reserva") {
		t.Fatalf("expected detail order preserved:\n%s", md)
	}
}

func TestMarkdown_EmptyAndEnglish(t *testing.T) {
	t.Parallel()

	if md := Markdown("x", nil, activity.English); !strings.Contains(md, "No activities yet") {
		t.Fatalf("expected empty program text, got:\n%s", md)
	}
}

func TestDetailLine_EscapesMarkdown(t *testing.T) {
	t.Parallel()

	line := DetailLine(model.ActivityDetail{LocalizedCategoryID: 3, Titulo: "Café *gratis*", HoraIni: "10:00"}, activity.Spanish)
	if !strings.Contains(line, `Café \*gratis\*`) {
		t.Fatalf("expected escaped title, got %q", line)
	}
	if !strings.Contains(line, "**10:00**") {
		t.Fatalf("expected open-ended span, got %q", line)
	}
}

func TestRender_NoTTY(t *testing.T) {
	t.Parallel()

	out := Render(Markdown("congreso", sampleDays(), activity.Spanish), 120, "notty")
	if !strings.Contains(out, "Conferencia inaugural") {
		t.Fatalf("expected rendered program to keep content, got:\n%s", out)
	}
	if Render("  ", 80, "notty") != "" {
		t.Fatalf("expected empty render for blank markdown")
	}
}
