package activity

import "testing"

func TestBuildSchema_NoCategoryAcceptsAnything(t *testing.T) {
	t.Parallel()

	s := BuildSchema(0)
	if len(s.Rules) != 0 {
		t.Fatalf("expected empty schema; got %d rules", len(s.Rules))
	}
	if errs := s.Validate(Values{}); !errs.Empty() {
		t.Fatalf("expected no errors; got %v", errs)
	}
}

func TestBuildSchema_CoversFieldSetPlusTripStart(t *testing.T) {
	t.Parallel()

	for id := BaseID(1); id <= 11; id++ {
		s := BuildSchema(id)
		fields := FieldsFor(id)
		if len(s.Rules) != len(fields)+1 {
			t.Fatalf("base %d: expected %d rules, got %d", id, len(fields)+1, len(s.Rules))
		}
		for _, f := range fields {
			if !s.Has(f.Name) {
				t.Fatalf("base %d: missing rule for %s", id, f.Name)
			}
		}
		if !s.Has(FieldFechaSalida) {
			t.Fatalf("base %d: expected optional trip start rule", id)
		}
		if msg := s.ValidateField(FieldFechaSalida, ""); msg != "" {
			t.Fatalf("base %d: expected trip start to be optional; got %q", id, msg)
		}
	}
}

func TestSchema_MinLengths(t *testing.T) {
	t.Parallel()

	s := BuildSchema(BaseCourse)
	cases := []struct {
		field FieldName
		value string
		ok    bool
	}{
		{FieldTitulo, "", false},
		{FieldTitulo, "ab", false},
		{FieldTitulo, "abc", true},
		{FieldTitulo, "   ab  ", false},
		{FieldResponsable, "A", false},
		{FieldResponsable, "Al", true},
		{FieldLugar, "Aula 1", true},
		{FieldTraduccion, "x", false},
		{FieldTraduccion, "sí", true},
		{FieldHoraIni, "", false},
		{FieldHoraIni, "08:00", true},
		{FieldHoraIni, "25:00", true},
	}
	for _, tc := range cases {
		msg := s.ValidateField(tc.field, tc.value)
		if tc.ok && msg != "" {
			t.Fatalf("%s=%q: expected valid, got %q", tc.field, tc.value, msg)
		}
		if !tc.ok && msg == "" {
			t.Fatalf("%s=%q: expected an error", tc.field, tc.value)
		}
	}
}

func TestSchema_ComputedDurationIsOptional(t *testing.T) {
	t.Parallel()

	s := BuildSchema(BaseFieldTrip)
	if msg := s.ValidateField(FieldDuracion, ""); msg != "" {
		t.Fatalf("expected duracion optional; got %q", msg)
	}
	errs := s.Validate(Values{
		FieldTitulo:      "Visita al volcán",
		FieldResponsable: "Ana",
		FieldFechaIni:    "2025-05-10",
		FieldFechaFin:    "2025-05-12",
		FieldHoraIni:     "08:00",
		FieldHoraFin:     "18:00",
	})
	if !errs.Empty() {
		t.Fatalf("expected valid trip; got %v", errs)
	}
}

func TestSchema_FieldOutsideCategoryPasses(t *testing.T) {
	t.Parallel()

	s := BuildSchema(BaseCoffeeBreak)
	if msg := s.ValidateField(FieldLugar, ""); msg != "" {
		t.Fatalf("expected fields outside the schema to pass; got %q", msg)
	}
}

func TestSchema_LeavesFormatToCodec(t *testing.T) {
	t.Parallel()

	s := BuildSchema(BaseFieldTrip)
	if msg := s.ValidateField(FieldFechaIni, "2025-02-30"); msg != "" {
		t.Fatalf("expected schema to check presence only; got %q", msg)
	}
}
