package activity

import (
	"reflect"
	"testing"

	"agenda-cli/internal/model"
)

func TestFieldsFor_NonEmptyAndStable(t *testing.T) {
	t.Parallel()

	for id := BaseID(1); id <= 11; id++ {
		a := FieldsFor(id)
		if len(a) == 0 {
			t.Fatalf("expected fields for base %d", id)
		}
		b := FieldsFor(id)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("expected stable fields for base %d; got %v vs %v", id, a, b)
		}
		names := map[FieldName]bool{}
		for _, f := range a {
			names[f.Name] = true
		}
		for _, must := range []FieldName{FieldTitulo, FieldHoraIni, FieldHoraFin} {
			if !names[must] {
				t.Fatalf("base %d: expected %s in field set", id, must)
			}
		}
	}
}

func TestFieldsFor_UnknownIsEmpty(t *testing.T) {
	t.Parallel()

	for _, id := range []BaseID{0, -1, 12, 22} {
		if got := FieldsFor(id); len(got) != 0 {
			t.Fatalf("expected no fields for %d; got %v", id, got)
		}
	}
}

func TestFieldsFor_CategoryShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id   BaseID
		want []FieldName
	}{
		{BaseFieldTrip, []FieldName{FieldTitulo, FieldResponsable, FieldFechaIni, FieldFechaFin, FieldDuracion, FieldHoraIni, FieldHoraFin}},
		{BaseCourse, []FieldName{FieldTitulo, FieldResponsable, FieldLugar, FieldTraduccion, FieldHoraIni, FieldHoraFin}},
		{BaseCoffeeBreak, []FieldName{FieldTitulo, FieldHoraIni, FieldHoraFin}},
		{BaseKeynote, []FieldName{FieldTitulo, FieldLugar, FieldHoraIni, FieldHoraFin}},
		{BaseBookPresentation, []FieldName{FieldTitulo, FieldResponsable, FieldHoraIni, FieldHoraFin}},
		{BaseClosing, []FieldName{FieldTitulo, FieldHoraIni, FieldHoraFin}},
	}
	for _, tc := range cases {
		var got []FieldName
		for _, f := range FieldsFor(tc.id) {
			got = append(got, f.Name)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("base %d: expected %v, got %v", tc.id, tc.want, got)
		}
	}
}

func TestLocalize_Offsets(t *testing.T) {
	t.Parallel()

	for id := BaseID(1); id <= 11; id++ {
		if got := Localize(id, Spanish); got != LocalizedID(id) {
			t.Fatalf("ES %d: expected %d, got %d", id, id, got)
		}
		if got := Localize(id, English); got != LocalizedID(id)+11 {
			t.Fatalf("EN %d: expected %d, got %d", id, id+11, got)
		}
	}
	if got := Localize(12, Spanish); got != 0 {
		t.Fatalf("expected 0 for unknown base; got %d", got)
	}
	if got := Localize(1, Language("FR")); got != 0 {
		t.Fatalf("expected 0 for unknown language; got %d", got)
	}
}

func TestDelocalize_RoundTrip(t *testing.T) {
	t.Parallel()

	for id := BaseID(1); id <= 11; id++ {
		for _, lang := range []Language{Spanish, English} {
			loc, ok := Delocalize(Localize(id, lang))
			if !ok {
				t.Fatalf("expected %d/%s to delocalize", id, lang)
			}
			if loc.Base != id || loc.Lang != lang {
				t.Fatalf("round trip %d/%s: got %+v", id, lang, loc)
			}
		}
	}
}

func TestDelocalize_IsBijection(t *testing.T) {
	t.Parallel()

	seen := map[Localized]LocalizedID{}
	for id := LocalizedID(1); id <= 22; id++ {
		loc, ok := Delocalize(id)
		if !ok {
			t.Fatalf("expected %d to be recognized", id)
		}
		if prev, dup := seen[loc]; dup {
			t.Fatalf("%d and %d map to the same pair %+v", prev, id, loc)
		}
		seen[loc] = id
		if Localize(loc.Base, loc.Lang) != id {
			t.Fatalf("expected Localize(Delocalize(%d)) == %d", id, id)
		}
	}
	for _, id := range []LocalizedID{0, 23, -3} {
		if _, ok := Delocalize(id); ok {
			t.Fatalf("expected %d to be rejected", id)
		}
	}
}

func TestLabelFor_StaticThenFallback(t *testing.T) {
	t.Parallel()

	if got := LabelFor(1, nil); got != "Salida de campo" {
		t.Fatalf("expected ES label; got %q", got)
	}
	if got := LabelFor(12, nil); got != "Field trip" {
		t.Fatalf("expected EN label; got %q", got)
	}
	fallback := []model.CategoryOption{{ID: 40, Description: "  Taller  "}}
	if got := LabelFor(40, fallback); got != "Taller" {
		t.Fatalf("expected fallback label; got %q", got)
	}
	if got := LabelFor(41, fallback); got != "Actividad 41" {
		t.Fatalf("expected generic label; got %q", got)
	}
}

func TestStaticCategoryOptions_Covers22(t *testing.T) {
	t.Parallel()

	opts := StaticCategoryOptions()
	if len(opts) != 22 {
		t.Fatalf("expected 22 options; got %d", len(opts))
	}
	if opts[0].ID != 1 || opts[11].ID != 12 || opts[21].ID != 22 {
		t.Fatalf("unexpected ordering: %+v", opts)
	}
}
