package model

import "time"

type Event struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// CategoryOption is one entry of the server-side category list.
type CategoryOption struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ActivityDay groups every detail sharing one calendar date within an event.
type ActivityDay struct {
	ID      string           `json:"id"`
	EventID string           `json:"eventId"`
	Date    string           `json:"date"`
	Details []ActivityDetail `json:"details"`
}

// ActivityDetail is one scheduled activity. Only the fields applicable to its
// category are set; the rest stay empty.
type ActivityDetail struct {
	DetailID            string `json:"detailId"`
	ActivityID          string `json:"activityId"`
	EventID             string `json:"eventId,omitempty"`
	Date                string `json:"date,omitempty"`
	LocalizedCategoryID int    `json:"localizedCategoryId"`
	Language            string `json:"language"`
	CategoryLabel       string `json:"tipoActividad,omitempty"`

	Titulo      string `json:"titulo,omitempty"`
	Responsable string `json:"responsable,omitempty"`
	FechaIni    string `json:"fechaIni,omitempty"`
	FechaFin    string `json:"fechaFin,omitempty"`
	HoraIni     string `json:"horaIni,omitempty"`
	HoraFin     string `json:"horaFin,omitempty"`
	Lugar       string `json:"lugar,omitempty"`
	Traduccion  string `json:"traduccion,omitempty"`
	Duracion    string `json:"duracion,omitempty"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Field returns the raw stored value of a field by its wire name.
func (d ActivityDetail) Field(name string) string {
	switch name {
	case "titulo":
		return d.Titulo
	case "responsable":
		return d.Responsable
	case "fechaIni":
		return d.FechaIni
	case "fechaFin":
		return d.FechaFin
	case "horaIni":
		return d.HoraIni
	case "horaFin":
		return d.HoraFin
	case "lugar":
		return d.Lugar
	case "traduccion":
		return d.Traduccion
	case "duracion":
		return d.Duracion
	default:
		return ""
	}
}
