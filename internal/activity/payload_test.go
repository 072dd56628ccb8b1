package activity

import (
	"encoding/json"
	"testing"

	"agenda-cli/internal/model"
)

func payloadKeys(t *testing.T, p Payload) map[string]any {
	t.Helper()
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return m
}

func TestBuildPayload_FieldTrip(t *testing.T) {
	t.Parallel()

	cat, _ := CategoryByID(BaseFieldTrip)
	p := BuildPayload(cat, Spanish, "2025-05-10", Values{
		FieldTitulo:      "Visita al volcán",
		FieldResponsable: "Ana",
		FieldFechaIni:    "2025-05-10",
		FieldFechaFin:    "2025-05-12",
		FieldHoraIni:     "08:00",
		FieldHoraFin:     "18:30",
	})
	if _, ok := p.(*FieldTrip); !ok {
		t.Fatalf("expected *FieldTrip; got %T", p)
	}
	m := payloadKeys(t, p)
	if m["duracion"] != "2" {
		t.Fatalf("expected computed duracion 2; got %v", m["duracion"])
	}
	for _, k := range []string{"lugar", "traduccion"} {
		if _, ok := m[k]; ok {
			t.Fatalf("expected no %s key; got %v", k, m)
		}
	}
	if m["horaIni"] != "2025-05-10T08:00" || m["horaFin"] != "2025-05-10T18:30" {
		t.Fatalf("expected times joined with the day; got %v / %v", m["horaIni"], m["horaFin"])
	}
	if m["language"] != "ES" || m["localizedCategoryId"] != float64(1) {
		t.Fatalf("unexpected language/category: %v", m)
	}
	if m["tipoActividad"] != "Salida de campo" {
		t.Fatalf("unexpected label: %v", m["tipoActividad"])
	}
	if _, ok := m["detailId"]; ok {
		t.Fatalf("expected no detailId on create payload")
	}
}

func TestBuildPayload_Course(t *testing.T) {
	t.Parallel()

	cat, _ := CategoryByID(BaseCourse)
	p := BuildPayload(cat, English, "2025-05-11", Values{
		FieldTitulo:      "Intro to GIS",
		FieldResponsable: "Bob",
		FieldLugar:       "Room 4",
		FieldTraduccion:  "ES-EN",
		FieldHoraIni:     "09:00",
		FieldHoraFin:     "11:00",
	})
	m := payloadKeys(t, p)
	for _, k := range []string{"lugar", "traduccion", "responsable"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("expected %s key; got %v", k, m)
		}
	}
	for _, k := range []string{"fechaIni", "fechaFin", "duracion"} {
		if _, ok := m[k]; ok {
			t.Fatalf("expected no %s key; got %v", k, m)
		}
	}
	if m["localizedCategoryId"] != float64(13) || m["tipoActividad"] != "Course" {
		t.Fatalf("expected EN course identity; got %v", m)
	}
}

func TestBuildPayload_ExtraKeysPerCategory(t *testing.T) {
	t.Parallel()

	base := Values{FieldTitulo: "Algo", FieldHoraIni: "10:00", FieldHoraFin: "10:30", FieldLugar: "Sala", FieldResponsable: "Eva"}
	cases := []struct {
		id    BaseID
		extra []string
	}{
		{BaseCoffeeBreak, nil},
		{BaseLunch, nil},
		{BaseOpening, nil},
		{BaseClosing, nil},
		{BaseKeynote, []string{"lugar"}},
		{BaseRoundTable, []string{"lugar"}},
		{BasePosterSession, []string{"lugar"}},
		{BaseSymposium, []string{"lugar"}},
		{BaseBookPresentation, []string{"responsable"}},
	}
	common := map[string]bool{"titulo": true, "horaIni": true, "horaFin": true, "language": true, "localizedCategoryId": true, "tipoActividad": true}
	for _, tc := range cases {
		cat, _ := CategoryByID(tc.id)
		p := BuildPayload(cat, Spanish, "2025-05-10", base)
		if p.Base() != tc.id {
			t.Fatalf("expected variant for %d; got %d", tc.id, p.Base())
		}
		m := payloadKeys(t, p)
		want := map[string]bool{}
		for _, k := range tc.extra {
			want[k] = true
		}
		for k := range m {
			if !common[k] && !want[k] {
				t.Fatalf("base %d: unexpected key %s in %v", tc.id, k, m)
			}
		}
		for k := range want {
			if _, ok := m[k]; !ok {
				t.Fatalf("base %d: expected key %s in %v", tc.id, k, m)
			}
		}
	}
}

func TestBuildPayload_ZeroCategoryPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unregistered category")
		}
	}()
	_ = BuildPayload(Category{}, Spanish, "2025-05-10", Values{})
}

func TestPayloadFromDetail_RoundTrip(t *testing.T) {
	t.Parallel()

	d := model.ActivityDetail{
		DetailID:            "det-1",
		LocalizedCategoryID: 16,
		Language:            "EN",
		Titulo:              "Keynote",
		Lugar:               "Main hall",
		HoraIni:             "2025-05-10 09:00:00",
		HoraFin:             "2025-05-10T10:00",
	}
	p, err := PayloadFromDetail(d, "2025-05-10")
	if err != nil {
		t.Fatalf("rebuild payload: %v", err)
	}
	if _, ok := p.(*Keynote); !ok {
		t.Fatalf("expected *Keynote; got %T", p)
	}
	got, err := DetailFromPayload(p)
	if err != nil {
		t.Fatalf("flatten payload: %v", err)
	}
	if got.DetailID != "det-1" || got.Lugar != "Main hall" || got.HoraIni != "2025-05-10T09:00" {
		t.Fatalf("unexpected detail: %+v", got)
	}

	if _, err := PayloadFromDetail(model.ActivityDetail{LocalizedCategoryID: 40}, ""); err == nil {
		t.Fatalf("expected unknown category error")
	}
}

func TestValidateDetail(t *testing.T) {
	t.Parallel()

	errs, err := ValidateDetail(model.ActivityDetail{
		LocalizedCategoryID: 1,
		Titulo:              "Salida",
		Responsable:         "Ana",
		FechaIni:            "2025-05-12",
		FechaFin:            "2025-05-10",
		HoraIni:             "08:00",
		HoraFin:             "bogus",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if errs[FieldHoraFin] == "" {
		t.Fatalf("expected unparseable end time rejected; got %v", errs)
	}
	if errs[FieldFechaFin] != DurationEndBeforeStartText {
		t.Fatalf("expected inverted dates rejected on fechaFin; got %v", errs)
	}

	if _, err := ValidateDetail(model.ActivityDetail{LocalizedCategoryID: 0}); err == nil {
		t.Fatalf("expected unknown category error")
	}
}
