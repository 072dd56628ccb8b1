package activity

import (
	"context"
	"errors"
	"sort"
	"strings"

	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"
)

// Backend is the collaborator the dialog reads categories from and submits to.
type Backend interface {
	ListCategories(ctx context.Context) ([]model.CategoryOption, error)
	CreateActivityDetail(ctx context.Context, records []CreateRecord) (model.ActivityDetail, error)
	UpdateActivityDetail(ctx context.Context, records []UpdateRecord) (model.ActivityDetail, error)
}

type Mode int

const (
	ModeDateSelect Mode = iota
	ModeActivityAdd
	ModeActivityEdit
)

func (m Mode) String() string {
	switch m {
	case ModeActivityAdd:
		return "activity-add"
	case ModeActivityEdit:
		return "activity-edit"
	default:
		return "date-select"
	}
}

type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusClosed:
		return "closed"
	default:
		return "loading"
	}
}

// State is the dialog position. Step is 0 in DateSelect, otherwise 1
// (language + category) or 2 (category fields).
type State struct {
	Mode   Mode
	Step   int
	Status Status
}

type OutcomeKind int

const (
	OutcomeCreated OutcomeKind = iota + 1
	OutcomeUpdated
)

func (k OutcomeKind) String() string {
	if k == OutcomeUpdated {
		return "updated"
	}
	return "created"
}

// Outcome is what a successful submit signals to the caller.
type Outcome struct {
	Kind   OutcomeKind
	Detail model.ActivityDetail
}

type OpenRequest struct {
	EventID string
	// Date opens the add flow for that day.
	Date string
	// Detail opens the edit flow; it wins over Date.
	Detail *model.ActivityDetail
	// UsedDates are days that already exist and cannot be picked again.
	UsedDates       []string
	DefaultLanguage Language
	Backend         Backend
	Logger          logx.Logger
}

const (
	noticeNoCategory   = "Seleccione un tipo de actividad para continuar"
	noticeDateTaken    = "Ya existe un día de actividades en esa fecha"
	noticeCategoryList = "No se pudo cargar la lista de tipos de actividad"
	noticeUnknownEdit  = "El tipo de actividad del registro no es reconocido"
	noticeSaveFailed   = "No se pudo guardar la actividad"
	noticeNoDate       = "La actividad no tiene una fecha de día válida"

	msgBadTime = "Hora inválida (HH:mm)"
	msgBadDate = "Fecha inválida (AAAA-MM-DD)"
)

// Engine is one open instance of the activity dialog. It is not safe for
// concurrent use; callers drive it from a single event loop and run the
// collaborator calls it hands out wherever they like.
type Engine struct {
	backend Backend
	log     logx.Logger

	eventID     string
	state       State
	date        string
	usedDates   map[string]bool
	defaultLang Language

	language    Language
	category    Category
	hasCategory bool
	values      Values
	errors      FieldErrors
	submitting  bool
	notice      string

	categoriesLoaded   bool
	categoriesFetching bool
	categories         []model.CategoryOption

	editing *model.ActivityDetail
}

// Open resolves the initial state once: an existing detail starts the edit
// flow, a date starts the add flow, nothing starts date selection.
func Open(req OpenRequest) *Engine {
	lang := req.DefaultLanguage
	if lang != English {
		lang = Spanish
	}
	e := &Engine{
		backend:     req.Backend,
		log:         req.Logger.With(logx.String("comp", "activity")),
		eventID:     strings.TrimSpace(req.EventID),
		usedDates:   map[string]bool{},
		defaultLang: lang,
		language:    lang,
		values:      Values{},
		errors:      FieldErrors{},
	}
	for _, d := range req.UsedDates {
		if n := NormalizeDate(d); n != "" {
			e.usedDates[n] = true
		}
	}

	switch {
	case req.Detail != nil:
		d := *req.Detail
		e.editing = &d
		e.date = NormalizeDate(d.Date)
		if e.date == "" {
			e.date = NormalizeDate(d.HoraIni)
		}
		if e.date == "" {
			e.date = NormalizeDate(req.Date)
		}
		if loc, ok := Delocalize(LocalizedID(d.LocalizedCategoryID)); ok {
			e.language = loc.Lang
			e.category, e.hasCategory = CategoryByID(loc.Base)
		} else if l, ok := ParseLanguage(d.Language); ok {
			e.language = l
		}
		e.state = State{Mode: ModeActivityEdit, Step: 1, Status: StatusLoading}
	case NormalizeDate(req.Date) != "":
		e.date = NormalizeDate(req.Date)
		e.state = State{Mode: ModeActivityAdd, Step: 1, Status: StatusLoading}
	default:
		e.state = State{Mode: ModeDateSelect, Step: 0, Status: StatusLoading}
	}
	e.log.Debug("dialog opened", logx.String("mode", e.state.Mode.String()), logx.String("date", e.date))
	return e
}

func (e *Engine) State() State { return e.state }

func (e *Engine) Closed() bool { return e.state.Status == StatusClosed }

func (e *Engine) EventID() string { return e.eventID }

func (e *Engine) Date() string { return e.date }

func (e *Engine) Language() Language { return e.language }

func (e *Engine) Category() (Category, bool) { return e.category, e.hasCategory }

// Locked reports whether category and language are read-only (edit flow).
func (e *Engine) Locked() bool { return e.state.Mode == ModeActivityEdit }

func (e *Engine) Submitting() bool { return e.submitting }

func (e *Engine) Notice() string { return e.notice }

func (e *Engine) ClearNotice() { e.notice = "" }

func (e *Engine) Editing() (model.ActivityDetail, bool) {
	if e.editing == nil {
		return model.ActivityDetail{}, false
	}
	return *e.editing, true
}

func (e *Engine) Values() Values { return e.values.Clone() }

func (e *Engine) Errors() FieldErrors {
	out := make(FieldErrors, len(e.errors))
	for k, v := range e.errors {
		out[k] = v
	}
	return out
}

func (e *Engine) DateUsed(date string) bool { return e.usedDates[NormalizeDate(date)] }

// UsedDates lists the dates that already have a day, oldest first.
func (e *Engine) UsedDates() []string {
	out := make([]string, 0, len(e.usedDates))
	for d := range e.usedDates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// VisibleFields are the inputs of step 2 for the chosen category.
func (e *Engine) VisibleFields() []FieldDescriptor {
	if !e.hasCategory {
		return nil
	}
	return e.category.Fields()
}

// Duration is the live trip length shown next to the date inputs.
func (e *Engine) Duration() Duration {
	return TripDuration(e.values.Get(FieldFechaIni), e.values.Get(FieldFechaFin))
}

// CategoryOptions lists the categories selectable in the current language.
func (e *Engine) CategoryOptions() []model.CategoryOption {
	out := make([]model.CategoryOption, 0, categoryCount)
	for _, c := range Categories() {
		id := Localize(c.ID(), e.language)
		out = append(out, model.CategoryOption{ID: int(id), Description: LabelFor(id, e.categories)})
	}
	return out
}

// CategoryLabel is the display label of the current (category, language) pair.
func (e *Engine) CategoryLabel() string {
	if !e.hasCategory {
		return ""
	}
	return LabelFor(Localize(e.category.ID(), e.language), e.categories)
}

// CategoryFetch hands out the category list request at most once per open
// lifetime. The returned func only touches the backend, so it may run on
// another goroutine; its result goes back through ApplyCategories.
func (e *Engine) CategoryFetch() (func(context.Context) ([]model.CategoryOption, error), bool) {
	if e.Closed() || e.categoriesLoaded || e.categoriesFetching || e.backend == nil {
		return nil, false
	}
	e.categoriesFetching = true
	b := e.backend
	return func(ctx context.Context) ([]model.CategoryOption, error) {
		return b.ListCategories(ctx)
	}, true
}

// ApplyCategories records the fetched list and settles the loading phase.
// In the edit flow this maps the record into the form and moves to step 2.
func (e *Engine) ApplyCategories(list []model.CategoryOption, err error) {
	if e.Closed() {
		return
	}
	e.categoriesFetching = false
	e.categoriesLoaded = true
	if err != nil {
		e.notice = noticeCategoryList
		e.log.Warn("category list unavailable", logx.Err(err))
	} else {
		e.categories = append([]model.CategoryOption(nil), list...)
	}
	e.settle()
}

// Load runs the category fetch inline and settles. Without a backend the
// static table is used as is.
func (e *Engine) Load(ctx context.Context) {
	if e.Closed() {
		return
	}
	fetch, ok := e.CategoryFetch()
	if !ok {
		if !e.categoriesFetching {
			e.settle()
		}
		return
	}
	list, err := fetch(ctx)
	e.ApplyCategories(list, err)
}

func (e *Engine) settle() {
	if e.state.Status != StatusLoading {
		return
	}
	e.state.Status = StatusReady
	if e.state.Mode != ModeActivityEdit || e.editing == nil {
		return
	}
	if !e.hasCategory {
		e.notice = noticeUnknownEdit
		return
	}
	e.values = prefill(e.category, *e.editing)
	e.errors = FieldErrors{}
	e.state.Step = 2
}

// prefill maps a stored record into canonical form values.
func prefill(c Category, d model.ActivityDetail) Values {
	v := Values{}
	for _, f := range c.Fields() {
		raw := d.Field(string(f.Name))
		switch f.Kind {
		case KindTime:
			v[f.Name] = NormalizeTime(raw)
		case KindDate:
			v[f.Name] = NormalizeDate(raw)
		case KindComputed:
		default:
			v[f.Name] = strings.TrimSpace(raw)
		}
	}
	if c.ID() == BaseFieldTrip {
		v[FieldFechaSalida] = v[FieldFechaIni]
		v[FieldDuracion] = TripDuration(v[FieldFechaIni], v[FieldFechaFin]).String()
	}
	return v
}

// ChooseDate leaves date selection for the add flow. Days that already
// exist cannot be chosen.
func (e *Engine) ChooseDate(date string) error {
	if e.Closed() {
		return ErrClosed
	}
	if e.state.Mode != ModeDateSelect {
		return ErrWrongState
	}
	d := NormalizeDate(date)
	if d == "" || !reDateOnly.MatchString(strings.TrimSpace(date)) {
		return ErrInvalidDate
	}
	if e.usedDates[d] {
		e.notice = noticeDateTaken
		return ErrDateTaken
	}
	e.date = d
	e.notice = ""
	e.state.Mode = ModeActivityAdd
	e.state.Step = 1
	return nil
}

func (e *Engine) canChoose() error {
	if e.Closed() {
		return ErrClosed
	}
	if e.state.Mode == ModeActivityEdit {
		return ErrLocked
	}
	if e.state.Mode != ModeActivityAdd || e.state.Step != 1 {
		return ErrWrongState
	}
	return nil
}

// SelectLanguage switches the language of a new activity. Entered values
// are dropped because the localized id depends on the pair.
func (e *Engine) SelectLanguage(lang Language) error {
	if err := e.canChoose(); err != nil {
		return err
	}
	if lang != Spanish && lang != English {
		return errors.New("unknown language: " + string(lang))
	}
	if lang == e.language {
		return nil
	}
	e.language = lang
	e.resetFields()
	return nil
}

func (e *Engine) SelectCategory(id BaseID) error {
	if err := e.canChoose(); err != nil {
		return err
	}
	c, ok := CategoryByID(id)
	if !ok {
		return UnknownCategoryError{ID: LocalizedID(id)}
	}
	if e.hasCategory && e.category.ID() == id {
		return nil
	}
	e.category, e.hasCategory = c, true
	e.notice = ""
	e.resetFields()
	return nil
}

// SelectLocalized picks both language and category from a localized id.
func (e *Engine) SelectLocalized(id LocalizedID) error {
	loc, ok := Delocalize(id)
	if !ok {
		return UnknownCategoryError{ID: id}
	}
	if err := e.SelectLanguage(loc.Lang); err != nil {
		return err
	}
	return e.SelectCategory(loc.Base)
}

func (e *Engine) resetFields() {
	e.values = Values{}
	e.errors = FieldErrors{}
}

// Next advances from the category step to the fields step.
func (e *Engine) Next() error {
	if e.Closed() {
		return ErrClosed
	}
	if e.state.Step != 1 || e.state.Mode == ModeDateSelect {
		return ErrWrongState
	}
	if !e.hasCategory {
		e.notice = noticeNoCategory
		return ErrNoCategory
	}
	if e.state.Mode == ModeActivityEdit {
		e.settle()
		if e.state.Step != 2 {
			return ErrWrongState
		}
		return nil
	}
	e.notice = ""
	e.errors = FieldErrors{}
	e.state.Step = 2
	return nil
}

// Back returns from the fields step to the category step, clearing the
// choice and every entered value.
func (e *Engine) Back() error {
	if e.Closed() {
		return ErrClosed
	}
	if e.state.Mode == ModeActivityEdit {
		return ErrLocked
	}
	if e.state.Mode != ModeActivityAdd || e.state.Step != 2 {
		return ErrWrongState
	}
	e.state.Step = 1
	e.category, e.hasCategory = Category{}, false
	e.language = e.defaultLang
	e.resetFields()
	return nil
}

// SetField stores one input value. An existing error on the field is
// re-checked so it disappears as soon as the value is fixed.
func (e *Engine) SetField(name FieldName, value string) error {
	if e.Closed() {
		return ErrClosed
	}
	if e.state.Step != 2 || !e.hasCategory {
		return ErrWrongState
	}
	schema := BuildSchema(e.category.ID())
	if !schema.Has(name) {
		return ErrUnknownField
	}
	if name == FieldFechaSalida && e.category.ID() != BaseFieldTrip {
		return ErrUnknownField
	}
	for _, f := range e.category.Fields() {
		if f.Name == name && f.Kind == KindComputed {
			return ErrUnknownField
		}
	}
	e.values[name] = value
	if e.category.ID() == BaseFieldTrip && (name == FieldFechaIni || name == FieldFechaFin) {
		if name == FieldFechaIni {
			e.values[FieldFechaSalida] = value
		}
		e.values[FieldDuracion] = e.Duration().String()
	}
	if _, had := e.errors[name]; had {
		if msg := fieldMessage(schema, name, value); msg != "" {
			e.errors[name] = msg
		} else {
			delete(e.errors, name)
		}
	}
	return nil
}

// Validate checks the form against the category schema and records the
// per-field messages. A trip whose end precedes its start is rejected on
// the end date.
func (e *Engine) Validate() bool {
	if !e.hasCategory {
		e.errors = FieldErrors{}
		return false
	}
	schema := BuildSchema(e.category.ID())
	e.errors = FieldErrors{}
	for _, r := range schema.Rules {
		if msg := fieldMessage(schema, r.Field.Name, e.values.Get(r.Field.Name)); msg != "" {
			e.errors[r.Field.Name] = msg
		}
	}
	if e.category.ID() == BaseFieldTrip {
		if _, bad := e.errors[FieldFechaFin]; !bad {
			if d := e.Duration(); d.Status == DurationEndBeforeStart {
				e.errors[FieldFechaFin] = d.String()
			}
		}
	}
	return e.errors.Empty()
}

// fieldMessage applies the schema rule, then the codec's format check to a
// non-empty date or time.
func fieldMessage(s Schema, name FieldName, value string) string {
	if msg := s.ValidateField(name, value); msg != "" {
		return msg
	}
	r, ok := s.rule(name)
	if !ok || strings.TrimSpace(value) == "" {
		return ""
	}
	switch r.Field.Kind {
	case KindTime:
		if NormalizeTime(value) == "" {
			return msgBadTime
		}
	case KindDate:
		if NormalizeDate(value) == "" {
			return msgBadDate
		}
	}
	return ""
}

// Submission is a prepared collaborator call.
type Submission struct {
	Kind   OutcomeKind
	Create []CreateRecord
	Update []UpdateRecord
}

// Payload returns the single detail carried by the submission.
func (s Submission) Payload() Payload {
	switch {
	case len(s.Create) > 0 && len(s.Create[0].Details) > 0:
		return s.Create[0].Details[0]
	case len(s.Update) > 0 && len(s.Update[0].Details) > 0:
		return s.Update[0].Details[0]
	}
	return nil
}

func (s Submission) Dispatch(ctx context.Context, b Backend) (model.ActivityDetail, error) {
	if b == nil {
		return model.ActivityDetail{}, errors.New("no backend configured")
	}
	if s.Kind == OutcomeUpdated {
		return b.UpdateActivityDetail(ctx, s.Update)
	}
	return b.CreateActivityDetail(ctx, s.Create)
}

// BeginSubmit validates, builds the payload and locks the dialog until
// CompleteSubmit. A second call while locked is rejected without side effects.
func (e *Engine) BeginSubmit() (Submission, error) {
	if e.Closed() {
		return Submission{}, ErrClosed
	}
	if e.submitting {
		return Submission{}, ErrSubmitInFlight
	}
	if e.state.Step != 2 || !e.hasCategory {
		return Submission{}, ErrWrongState
	}
	if !e.Validate() {
		return Submission{}, ErrInvalid
	}
	// Times are sent joined with the day's date; without one they would be
	// blanked on the collaborator side.
	if e.date == "" {
		e.notice = noticeNoDate
		return Submission{}, ErrInvalidDate
	}

	p := BuildPayload(e.category, e.language, e.date, e.values)
	localized := Localize(e.category.ID(), e.language)
	var sub Submission
	if e.editing != nil {
		p = withDetailID(p, e.editing.DetailID)
		sub = Submission{Kind: OutcomeUpdated, Update: []UpdateRecord{{
			Date:                e.date,
			EventID:             e.eventID,
			LocalizedCategoryID: localized,
			ActivityID:          e.editing.ActivityID,
			Details:             []Payload{p},
		}}}
	} else {
		sub = Submission{Kind: OutcomeCreated, Create: []CreateRecord{{
			Date:                e.date,
			EventID:             e.eventID,
			LocalizedCategoryID: localized,
			Details:             []Payload{p},
		}}}
	}
	e.submitting = true
	e.notice = ""
	return sub, nil
}

// CompleteSubmit applies the collaborator result. Success closes the dialog;
// failure keeps it open with the values intact. Results arriving after the
// dialog closed are dropped.
func (e *Engine) CompleteSubmit(sub Submission, detail model.ActivityDetail, err error) (Outcome, bool) {
	if e.Closed() {
		return Outcome{}, false
	}
	e.submitting = false
	if err != nil {
		e.notice = noticeSaveFailed + ": " + err.Error()
		e.log.Warn("activity submit failed", logx.String("kind", sub.Kind.String()), logx.Err(err))
		return Outcome{}, false
	}
	e.log.Info("activity saved",
		logx.String("kind", sub.Kind.String()),
		logx.String("date", e.date),
		logx.String("detail", detail.DetailID),
	)
	e.close()
	return Outcome{Kind: sub.Kind, Detail: detail}, true
}

// Submit runs the whole submit cycle inline.
func (e *Engine) Submit(ctx context.Context) (Outcome, error) {
	sub, err := e.BeginSubmit()
	if err != nil {
		return Outcome{}, err
	}
	detail, err := sub.Dispatch(ctx, e.backend)
	out, ok := e.CompleteSubmit(sub, detail, err)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, ErrClosed
	}
	return out, nil
}

// Cancel closes the dialog and discards the form.
func (e *Engine) Cancel() {
	if e.Closed() {
		return
	}
	e.log.Debug("dialog cancelled", logx.String("mode", e.state.Mode.String()))
	e.close()
}

func (e *Engine) close() {
	e.state = State{Mode: e.state.Mode, Status: StatusClosed}
	e.category, e.hasCategory = Category{}, false
	e.language = e.defaultLang
	e.values = Values{}
	e.errors = FieldErrors{}
	e.submitting = false
	e.notice = ""
	e.editing = nil
	e.categoriesFetching = false
}
