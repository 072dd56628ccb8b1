package activity

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Rule struct {
	Field    FieldDescriptor
	Required bool
	MinLen   int
}

// Schema is the validation contract of one category's form.
type Schema struct {
	Rules []Rule
}

// FieldErrors maps a field to its user-facing message.
type FieldErrors map[FieldName]string

func (e FieldErrors) Empty() bool { return len(e) == 0 }

// BuildSchema returns the contract for a base category. Zero (no category
// chosen yet) yields an empty schema that accepts anything.
func BuildSchema(id BaseID) Schema {
	fields := FieldsFor(id)
	if len(fields) == 0 {
		return Schema{}
	}
	rules := make([]Rule, 0, len(fields)+1)
	for _, f := range fields {
		rules = append(rules, ruleFor(f))
	}
	rules = append(rules, ruleFor(descFechaSalida))
	return Schema{Rules: rules}
}

func ruleFor(f FieldDescriptor) Rule {
	r := Rule{Field: f, Required: f.Required}
	if !f.Required {
		return r
	}
	r.MinLen = f.MinLen
	if r.MinLen < 1 {
		r.MinLen = 1
	}
	return r
}

func (s Schema) Has(name FieldName) bool {
	_, ok := s.rule(name)
	return ok
}

func (s Schema) rule(name FieldName) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Field.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// ValidateField returns "" when the value satisfies the field's rule.
// Fields outside the schema always pass. Date and time formats are the
// codec's concern.
func (s Schema) ValidateField(name FieldName, value string) string {
	r, ok := s.rule(name)
	if !ok || !r.Required {
		return ""
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return "Este campo es obligatorio"
	}
	if n := utf8.RuneCountInString(v); n < r.MinLen {
		return fmt.Sprintf("Debe tener al menos %d caracteres", r.MinLen)
	}
	return ""
}

func (s Schema) Validate(values Values) FieldErrors {
	errs := FieldErrors{}
	for _, r := range s.Rules {
		if msg := s.ValidateField(r.Field.Name, values.Get(r.Field.Name)); msg != "" {
			errs[r.Field.Name] = msg
		}
	}
	return errs
}
