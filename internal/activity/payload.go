package activity

import (
	"encoding/json"
	"fmt"

	"agenda-cli/internal/model"
)

// Payload is one category's outbound detail shape. The set of variants is
// closed: only this package can implement it.
type Payload interface {
	Base() BaseID
	common() *Common
}

// Common carries the fields every category submits.
type Common struct {
	Titulo              string      `json:"titulo"`
	HoraIni             string      `json:"horaIni"`
	HoraFin             string      `json:"horaFin"`
	Language            Language    `json:"language"`
	LocalizedCategoryID LocalizedID `json:"localizedCategoryId"`
	CategoryLabel       string      `json:"tipoActividad"`
	// DetailID is only set when updating an existing detail.
	DetailID string `json:"detailId,omitempty"`
}

func (c *Common) common() *Common { return c }

type FieldTrip struct {
	Common
	Responsable string `json:"responsable"`
	FechaIni    string `json:"fechaIni"`
	FechaFin    string `json:"fechaFin"`
	Duracion    string `json:"duracion"`
}

type Course struct {
	Common
	Responsable string `json:"responsable"`
	Lugar       string `json:"lugar"`
	Traduccion  string `json:"traduccion"`
}

type CoffeeBreak struct{ Common }

type Lunch struct{ Common }

type Keynote struct {
	Common
	Lugar string `json:"lugar"`
}

type RoundTable struct {
	Common
	Lugar string `json:"lugar"`
}

type BookPresentation struct {
	Common
	Responsable string `json:"responsable"`
}

type PosterSession struct {
	Common
	Lugar string `json:"lugar"`
}

type Symposium struct {
	Common
	Lugar string `json:"lugar"`
}

type Opening struct{ Common }

type Closing struct{ Common }

func (*FieldTrip) Base() BaseID        { return BaseFieldTrip }
func (*Course) Base() BaseID           { return BaseCourse }
func (*CoffeeBreak) Base() BaseID      { return BaseCoffeeBreak }
func (*Lunch) Base() BaseID            { return BaseLunch }
func (*Keynote) Base() BaseID          { return BaseKeynote }
func (*RoundTable) Base() BaseID       { return BaseRoundTable }
func (*BookPresentation) Base() BaseID { return BaseBookPresentation }
func (*PosterSession) Base() BaseID    { return BasePosterSession }
func (*Symposium) Base() BaseID        { return BaseSymposium }
func (*Opening) Base() BaseID          { return BaseOpening }
func (*Closing) Base() BaseID          { return BaseClosing }

// CommonOf exposes the shared part of any payload.
func CommonOf(p Payload) Common {
	if p == nil {
		return Common{}
	}
	return *p.common()
}

// BuildPayload maps validated canonical values to the category's variant.
// Time fields are joined with the owning day's date. cat must come from the
// registry; a zero Category is a caller defect and panics.
func BuildPayload(cat Category, lang Language, date string, values Values) Payload {
	if !cat.valid() {
		panic(fmt.Sprintf("activity: payload requested for unregistered category %d", int(cat.id)))
	}
	localized := Localize(cat.id, lang)
	c := Common{
		Titulo:              values.Get(FieldTitulo),
		HoraIni:             JoinDateTime(date, values.Get(FieldHoraIni)),
		HoraFin:             JoinDateTime(date, values.Get(FieldHoraFin)),
		Language:            lang,
		LocalizedCategoryID: localized,
		CategoryLabel:       LabelFor(localized, nil),
	}

	switch cat.id {
	case BaseFieldTrip:
		ini, fin := NormalizeDate(values.Get(FieldFechaIni)), NormalizeDate(values.Get(FieldFechaFin))
		return &FieldTrip{
			Common:      c,
			Responsable: values.Get(FieldResponsable),
			FechaIni:    ini,
			FechaFin:    fin,
			Duracion:    TripDuration(ini, fin).String(),
		}
	case BaseCourse:
		return &Course{
			Common:      c,
			Responsable: values.Get(FieldResponsable),
			Lugar:       values.Get(FieldLugar),
			Traduccion:  values.Get(FieldTraduccion),
		}
	case BaseCoffeeBreak:
		return &CoffeeBreak{Common: c}
	case BaseLunch:
		return &Lunch{Common: c}
	case BaseKeynote:
		return &Keynote{Common: c, Lugar: values.Get(FieldLugar)}
	case BaseRoundTable:
		return &RoundTable{Common: c, Lugar: values.Get(FieldLugar)}
	case BaseBookPresentation:
		return &BookPresentation{Common: c, Responsable: values.Get(FieldResponsable)}
	case BasePosterSession:
		return &PosterSession{Common: c, Lugar: values.Get(FieldLugar)}
	case BaseSymposium:
		return &Symposium{Common: c, Lugar: values.Get(FieldLugar)}
	case BaseOpening:
		return &Opening{Common: c}
	case BaseClosing:
		return &Closing{Common: c}
	}
	panic(fmt.Sprintf("activity: no payload variant for category %d", int(cat.id)))
}

// withDetailID stamps the existing detail's identifier on an update payload.
func withDetailID(p Payload, detailID string) Payload {
	p.common().DetailID = detailID
	return p
}

// CreateRecord is the body item of createActivityDetail.
type CreateRecord struct {
	Date                string      `json:"date"`
	EventID             string      `json:"eventId"`
	LocalizedCategoryID LocalizedID `json:"localizedCategoryId"`
	Details             []Payload   `json:"details"`
}

// UpdateRecord is the body item of updateActivityDetail.
type UpdateRecord struct {
	Date                string      `json:"date"`
	EventID             string      `json:"eventId"`
	LocalizedCategoryID LocalizedID `json:"localizedCategoryId"`
	ActivityID          string      `json:"activityId"`
	Details             []Payload   `json:"details"`
}

// PayloadFromDetail rebuilds the variant of a detail received from outside
// the process. Unlike BuildPayload it reports unknown categories as errors.
func PayloadFromDetail(d model.ActivityDetail, date string) (Payload, error) {
	loc, ok := Delocalize(LocalizedID(d.LocalizedCategoryID))
	if !ok {
		return nil, UnknownCategoryError{ID: LocalizedID(d.LocalizedCategoryID)}
	}
	cat, _ := CategoryByID(loc.Base)
	if NormalizeDate(date) == "" {
		date = NormalizeDate(d.HoraIni)
	}
	p := BuildPayload(cat, loc.Lang, date, prefill(cat, d))
	if d.DetailID != "" {
		p = withDetailID(p, d.DetailID)
	}
	return p, nil
}

// ValidateDetail checks a detail received from outside the process against
// its category's schema, after the same normalization the dialog applies.
func ValidateDetail(d model.ActivityDetail) (FieldErrors, error) {
	loc, ok := Delocalize(LocalizedID(d.LocalizedCategoryID))
	if !ok {
		return nil, UnknownCategoryError{ID: LocalizedID(d.LocalizedCategoryID)}
	}
	cat, _ := CategoryByID(loc.Base)
	values := prefill(cat, d)
	errs := BuildSchema(loc.Base).Validate(values)
	if loc.Base == BaseFieldTrip && errs[FieldFechaFin] == "" {
		if dur := TripDuration(values.Get(FieldFechaIni), values.Get(FieldFechaFin)); dur.Status == DurationEndBeforeStart {
			errs[FieldFechaFin] = dur.String()
		}
	}
	return errs, nil
}

// DetailFromPayload flattens a variant into the stored record shape.
func DetailFromPayload(p Payload) (model.ActivityDetail, error) {
	var d model.ActivityDetail
	b, err := json.Marshal(p)
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, err
	}
	return d, nil
}
