package activity

// FieldName is the wire/form name of an activity field.
type FieldName string

const (
	FieldTitulo      FieldName = "titulo"
	FieldResponsable FieldName = "responsable"
	FieldFechaIni    FieldName = "fechaIni"
	FieldFechaFin    FieldName = "fechaFin"
	FieldHoraIni     FieldName = "horaIni"
	FieldHoraFin     FieldName = "horaFin"
	FieldLugar       FieldName = "lugar"
	FieldTraduccion  FieldName = "traduccion"
	FieldDuracion    FieldName = "duracion"

	// FieldFechaSalida is never submitted; the dialog uses it to sequence the
	// trip date inputs.
	FieldFechaSalida FieldName = "fechaSalida"
)

type FieldKind int

const (
	KindText FieldKind = iota
	KindDate
	KindTime
	// KindComputed fields are derived from other values and never typed in.
	KindComputed
)

func (k FieldKind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindComputed:
		return "computed"
	default:
		return "text"
	}
}

type FieldDescriptor struct {
	Name     FieldName
	Kind     FieldKind
	Required bool
	MinLen   int
	// Label is shown next to the input, per language.
	Label map[Language]string
}

func (f FieldDescriptor) LabelIn(lang Language) string {
	if s, ok := f.Label[lang]; ok && s != "" {
		return s
	}
	return string(f.Name)
}

var (
	descTitulo = FieldDescriptor{Name: FieldTitulo, Kind: KindText, Required: true, MinLen: 3,
		Label: map[Language]string{Spanish: "Título", English: "Title"}}
	descResponsable = FieldDescriptor{Name: FieldResponsable, Kind: KindText, Required: true, MinLen: 2,
		Label: map[Language]string{Spanish: "Responsable", English: "Person in charge"}}
	descFechaIni = FieldDescriptor{Name: FieldFechaIni, Kind: KindDate, Required: true, MinLen: 1,
		Label: map[Language]string{Spanish: "Fecha de inicio", English: "Start date"}}
	descFechaFin = FieldDescriptor{Name: FieldFechaFin, Kind: KindDate, Required: true, MinLen: 1,
		Label: map[Language]string{Spanish: "Fecha de fin", English: "End date"}}
	descHoraIni = FieldDescriptor{Name: FieldHoraIni, Kind: KindTime, Required: true, MinLen: 1,
		Label: map[Language]string{Spanish: "Hora de inicio", English: "Start time"}}
	descHoraFin = FieldDescriptor{Name: FieldHoraFin, Kind: KindTime, Required: true, MinLen: 1,
		Label: map[Language]string{Spanish: "Hora de fin", English: "End time"}}
	descLugar = FieldDescriptor{Name: FieldLugar, Kind: KindText, Required: true, MinLen: 2,
		Label: map[Language]string{Spanish: "Lugar", English: "Venue"}}
	descTraduccion = FieldDescriptor{Name: FieldTraduccion, Kind: KindText, Required: true, MinLen: 2,
		Label: map[Language]string{Spanish: "Traducción", English: "Translation"}}
	descDuracion = FieldDescriptor{Name: FieldDuracion, Kind: KindComputed, Required: false,
		Label: map[Language]string{Spanish: "Duración (días)", English: "Duration (days)"}}
	descFechaSalida = FieldDescriptor{Name: FieldFechaSalida, Kind: KindDate, Required: false,
		Label: map[Language]string{Spanish: "Fecha de salida", English: "Departure date"}}
)

// Values holds canonical form values keyed by field name.
type Values map[FieldName]string

func (v Values) Get(name FieldName) string {
	if v == nil {
		return ""
	}
	return v[name]
}

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}
