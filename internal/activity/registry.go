package activity

import (
	"fmt"
	"strings"

	"agenda-cli/internal/model"
)

type Language string

const (
	Spanish Language = "ES"
	English Language = "EN"
)

// ParseLanguage accepts ES/EN in any case; anything else is rejected.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ES":
		return Spanish, true
	case "EN":
		return English, true
	default:
		return "", false
	}
}

// BaseID identifies an activity kind independently of language (1..11).
type BaseID int

// LocalizedID identifies a kind in one language: base for ES, base+11 for EN.
type LocalizedID int

const (
	BaseFieldTrip BaseID = iota + 1
	BaseCourse
	BaseCoffeeBreak
	BaseLunch
	BaseKeynote
	BaseRoundTable
	BaseBookPresentation
	BasePosterSession
	BaseSymposium
	BaseOpening
	BaseClosing
)

const (
	categoryCount   = 11
	localizedOffset = 11
)

// Category is a recognized activity kind. The zero value is not a valid
// category; values come from CategoryByID or Categories.
type Category struct {
	id     BaseID
	labels map[Language]string
	fields []FieldDescriptor
}

func (c Category) ID() BaseID { return c.id }

func (c Category) Label(lang Language) string { return c.labels[lang] }

// Fields returns a copy of the ordered field descriptors.
func (c Category) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), c.fields...)
}

func (c Category) valid() bool { return c.id >= 1 && c.id <= categoryCount }

var registry = [categoryCount + 1]Category{
	{},
	{id: BaseFieldTrip, labels: map[Language]string{Spanish: "Salida de campo", English: "Field trip"},
		fields: []FieldDescriptor{descTitulo, descResponsable, descFechaIni, descFechaFin, descDuracion, descHoraIni, descHoraFin}},
	{id: BaseCourse, labels: map[Language]string{Spanish: "Curso", English: "Course"},
		fields: []FieldDescriptor{descTitulo, descResponsable, descLugar, descTraduccion, descHoraIni, descHoraFin}},
	{id: BaseCoffeeBreak, labels: map[Language]string{Spanish: "Coffee break", English: "Coffee break"},
		fields: []FieldDescriptor{descTitulo, descHoraIni, descHoraFin}},
	{id: BaseLunch, labels: map[Language]string{Spanish: "Comida", English: "Lunch"},
		fields: []FieldDescriptor{descTitulo, descHoraIni, descHoraFin}},
	{id: BaseKeynote, labels: map[Language]string{Spanish: "Conferencia magistral", English: "Keynote lecture"},
		fields: []FieldDescriptor{descTitulo, descLugar, descHoraIni, descHoraFin}},
	{id: BaseRoundTable, labels: map[Language]string{Spanish: "Mesa redonda", English: "Round table"},
		fields: []FieldDescriptor{descTitulo, descLugar, descHoraIni, descHoraFin}},
	{id: BaseBookPresentation, labels: map[Language]string{Spanish: "Presentación de libro", English: "Book presentation"},
		fields: []FieldDescriptor{descTitulo, descResponsable, descHoraIni, descHoraFin}},
	{id: BasePosterSession, labels: map[Language]string{Spanish: "Sesión de carteles", English: "Poster session"},
		fields: []FieldDescriptor{descTitulo, descLugar, descHoraIni, descHoraFin}},
	{id: BaseSymposium, labels: map[Language]string{Spanish: "Simposio", English: "Symposium"},
		fields: []FieldDescriptor{descTitulo, descLugar, descHoraIni, descHoraFin}},
	{id: BaseOpening, labels: map[Language]string{Spanish: "Inauguración", English: "Opening ceremony"},
		fields: []FieldDescriptor{descTitulo, descHoraIni, descHoraFin}},
	{id: BaseClosing, labels: map[Language]string{Spanish: "Clausura", English: "Closing ceremony"},
		fields: []FieldDescriptor{descTitulo, descHoraIni, descHoraFin}},
}

func CategoryByID(id BaseID) (Category, bool) {
	if id < 1 || id > categoryCount {
		return Category{}, false
	}
	return registry[id], true
}

// Categories returns every recognized category in base id order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for _, c := range registry[1:] {
		out = append(out, c)
	}
	return out
}

// FieldsFor returns the ordered field set of a base category. Unknown ids
// yield an empty set, which the dialog renders as "no fields".
func FieldsFor(id BaseID) []FieldDescriptor {
	c, ok := CategoryByID(id)
	if !ok {
		return nil
	}
	return c.Fields()
}

// Localize maps (base, language) to the localized id, or 0 when either is unknown.
func Localize(id BaseID, lang Language) LocalizedID {
	if id < 1 || id > categoryCount {
		return 0
	}
	switch lang {
	case Spanish:
		return LocalizedID(id)
	case English:
		return LocalizedID(id) + localizedOffset
	default:
		return 0
	}
}

type Localized struct {
	Base BaseID
	Lang Language
}

// Delocalize is the inverse of Localize.
func Delocalize(id LocalizedID) (Localized, bool) {
	if id < 1 || id > 2*categoryCount {
		return Localized{}, false
	}
	if id > localizedOffset {
		return Localized{Base: BaseID(id - localizedOffset), Lang: English}, true
	}
	return Localized{Base: BaseID(id), Lang: Spanish}, true
}

// LabelFor resolves the display label of a localized id. The static table
// wins; otherwise the server-provided list is consulted.
func LabelFor(id LocalizedID, fallback []model.CategoryOption) string {
	if loc, ok := Delocalize(id); ok {
		if c, ok := CategoryByID(loc.Base); ok {
			if s := c.Label(loc.Lang); s != "" {
				return s
			}
		}
	}
	for _, opt := range fallback {
		if opt.ID == int(id) && strings.TrimSpace(opt.Description) != "" {
			return strings.TrimSpace(opt.Description)
		}
	}
	return fmt.Sprintf("Actividad %d", int(id))
}

// StaticCategoryOptions lists all 22 localized entries, ES first.
func StaticCategoryOptions() []model.CategoryOption {
	out := make([]model.CategoryOption, 0, 2*categoryCount)
	for _, lang := range []Language{Spanish, English} {
		for _, c := range registry[1:] {
			out = append(out, model.CategoryOption{ID: int(Localize(c.id, lang)), Description: c.Label(lang)})
		}
	}
	return out
}
