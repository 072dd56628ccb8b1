package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const backendTimeout = 30 * time.Second

// categoriesMsg and submitDoneMsg carry the engine they belong to, so a
// result for a dialog that was closed or replaced lands on that engine,
// which drops it.
type categoriesMsg struct {
	eng  *activity.Engine
	list []model.CategoryOption
	err  error
}

type submitDoneMsg struct {
	eng    *activity.Engine
	sub    activity.Submission
	detail model.ActivityDetail
	err    error
}

type fieldInput struct {
	desc  activity.FieldDescriptor
	input textinput.Model
}

func (f fieldInput) editable() bool { return f.desc.Kind != activity.KindComputed }

// activityDialog is the view layer over one activity.Engine.
type activityDialog struct {
	eng     *activity.Engine
	ctx     context.Context
	backend activity.Backend

	dateInput textinput.Model
	catCursor int

	inputs []fieldInput
	// builtFor remembers which category the inputs were built for.
	builtFor activity.BaseID
	focus    int

	// notice is a view-local message (bad date input); the engine's own
	// notice is shown next to it.
	notice string
}

func newActivityDialog(ctx context.Context, eng *activity.Engine, backend activity.Backend) *activityDialog {
	d := &activityDialog{eng: eng, ctx: ctx, backend: backend}
	d.dateInput = newInput("AAAA-MM-DD", 10)
	d.dateInput.Focus()
	d.sync()
	return d
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 30
	in.Prompt = ""
	in.TextStyle = lipgloss.NewStyle().Foreground(colorSurfaceFg)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent)
	return in
}

// loadCmd starts the category fetch. Without a backend the engine settles
// on the static table right away.
func (d *activityDialog) loadCmd() tea.Cmd {
	fetch, ok := d.eng.CategoryFetch()
	if !ok {
		d.eng.Load(d.ctx)
		d.sync()
		return nil
	}
	eng, ctx := d.eng, d.ctx
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		list, err := fetch(cctx)
		return categoriesMsg{eng: eng, list: list, err: err}
	}
}

func (d *activityDialog) submitCmd() tea.Cmd {
	sub, err := d.eng.BeginSubmit()
	if err != nil {
		if errors.Is(err, activity.ErrInvalid) {
			d.focusFirstError()
		}
		return nil
	}
	eng, ctx, b := d.eng, d.ctx, d.backend
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		detail, err := sub.Dispatch(cctx, b)
		return submitDoneMsg{eng: eng, sub: sub, detail: detail, err: err}
	}
}

// sync rebuilds the step 2 inputs when the category changed and copies
// the engine's values (including computed ones) into them.
func (d *activityDialog) sync() {
	st := d.eng.State()
	if st.Step != 2 {
		d.inputs, d.builtFor, d.focus = nil, 0, 0
		d.syncCursor()
		return
	}
	cat, _ := d.eng.Category()
	if d.inputs == nil || d.builtFor != cat.ID() {
		d.buildInputs(cat)
	}
	values := d.eng.Values()
	for i := range d.inputs {
		name := d.inputs[i].desc.Name
		if !d.inputs[i].editable() || d.inputs[i].input.Value() != values.Get(name) {
			d.inputs[i].input.SetValue(values.Get(name))
		}
	}
}

func (d *activityDialog) buildInputs(cat activity.Category) {
	lang := d.eng.Language()
	fields := d.eng.VisibleFields()
	d.inputs = make([]fieldInput, 0, len(fields))
	for _, f := range fields {
		var in textinput.Model
		switch f.Kind {
		case activity.KindDate:
			in = newInput("AAAA-MM-DD", 10)
		case activity.KindTime:
			in = newInput("HH:mm", 5)
		default:
			in = newInput(f.LabelIn(lang), 200)
		}
		d.inputs = append(d.inputs, fieldInput{desc: f, input: in})
	}
	d.builtFor = cat.ID()
	d.focus = 0
	d.applyFocus()
}

// syncCursor points the category cursor at the chosen category, if any.
func (d *activityDialog) syncCursor() {
	cat, ok := d.eng.Category()
	if !ok {
		return
	}
	for i, c := range activity.Categories() {
		if c.ID() == cat.ID() {
			d.catCursor = i
			return
		}
	}
}

// focus indexes inputs; len(inputs) is the save button.
func (d *activityDialog) applyFocus() {
	for i := range d.inputs {
		if i == d.focus {
			d.inputs[i].input.Focus()
		} else {
			d.inputs[i].input.Blur()
		}
	}
}

func (d *activityDialog) moveFocus(delta int) {
	n := len(d.inputs) + 1
	for step := 0; step < n; step++ {
		d.focus = (d.focus + delta + n) % n
		if d.focus == len(d.inputs) || d.inputs[d.focus].editable() {
			break
		}
	}
	d.applyFocus()
}

func (d *activityDialog) focusFirstError() {
	errs := d.eng.Errors()
	for i, f := range d.inputs {
		if _, bad := errs[f.desc.Name]; bad {
			d.focus = i
			d.applyFocus()
			return
		}
	}
}

// update handles a key while the dialog is open. The returned bool reports
// that the dialog closed (cancelled).
func (d *activityDialog) update(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "esc" {
		d.eng.Cancel()
		return nil, true
	}
	if d.eng.Submitting() {
		return nil, false
	}
	st := d.eng.State()
	switch {
	case st.Mode == activity.ModeDateSelect:
		return d.updateDate(msg), false
	case st.Step == 1:
		return d.updateCategory(msg), false
	default:
		return d.updateFields(msg), false
	}
}

func (d *activityDialog) updateDate(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		err := d.eng.ChooseDate(d.dateInput.Value())
		switch {
		case err == nil:
			d.notice = ""
			d.dateInput.Blur()
			d.sync()
		case errors.Is(err, activity.ErrInvalidDate):
			d.notice = "Fecha inválida (AAAA-MM-DD)"
		default:
			d.notice = ""
		}
		return nil
	}
	var cmd tea.Cmd
	d.dateInput, cmd = d.dateInput.Update(msg)
	return cmd
}

func (d *activityDialog) updateCategory(msg tea.KeyMsg) tea.Cmd {
	if d.eng.Locked() {
		// Category and language are fixed while editing; the engine moves
		// on by itself once loading settles.
		if msg.String() == "enter" && d.eng.Next() == nil {
			d.sync()
		}
		return nil
	}
	opts := d.eng.CategoryOptions()
	switch msg.String() {
	case "up", "k", "ctrl+p":
		if d.catCursor > 0 {
			d.catCursor--
		}
	case "down", "j", "ctrl+n":
		if d.catCursor < len(opts)-1 {
			d.catCursor++
		}
	case "l", "tab":
		next := activity.English
		if d.eng.Language() == activity.English {
			next = activity.Spanish
		}
		_ = d.eng.SelectLanguage(next)
	case " ":
		if d.catCursor < len(opts) {
			_ = d.eng.SelectLocalized(activity.LocalizedID(opts[d.catCursor].ID))
		}
	case "enter":
		if d.catCursor < len(opts) {
			_ = d.eng.SelectLocalized(activity.LocalizedID(opts[d.catCursor].ID))
		}
		if d.eng.Next() == nil {
			d.sync()
		}
	}
	return nil
}

func (d *activityDialog) updateFields(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		d.moveFocus(1)
		return nil
	case "shift+tab", "up":
		d.moveFocus(-1)
		return nil
	case "ctrl+s":
		return d.submitCmd()
	case "ctrl+b":
		if d.eng.Back() == nil {
			d.sync()
		}
		return nil
	case "enter":
		if d.focus >= len(d.inputs) {
			return d.submitCmd()
		}
		d.moveFocus(1)
		return nil
	}
	if d.focus >= len(d.inputs) {
		return nil
	}
	f := &d.inputs[d.focus]
	if !f.editable() {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	_ = d.eng.SetField(f.desc.Name, f.input.Value())
	d.sync()
	return cmd
}

func (d *activityDialog) title() string {
	switch d.eng.State().Mode {
	case activity.ModeDateSelect:
		return "Nuevo día de actividades"
	case activity.ModeActivityEdit:
		return "Editar actividad"
	default:
		return "Nueva actividad"
	}
}

func (d *activityDialog) view(width int) string {
	bodyW := modalBodyWidth(width)
	st := d.eng.State()

	var lines []string
	switch {
	case st.Mode == activity.ModeDateSelect:
		lines = d.viewDate()
	case st.Step == 1:
		lines = d.viewCategory()
	default:
		lines = d.viewFields(bodyW)
	}

	var notices []string
	if d.notice != "" {
		notices = append(notices, d.notice)
	}
	if n := d.eng.Notice(); n != "" {
		notices = append(notices, n)
	}
	if len(notices) > 0 {
		lines = append(lines, "", styleError().Width(bodyW).Render(strings.Join(notices, "\n")))
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render(d.help()))
	return renderModalBox(width, d.title(), strings.Join(lines, "\n"))
}

func (d *activityDialog) viewDate() []string {
	lines := []string{
		"Fecha del nuevo día:",
		inputBox(d.dateInput.View()),
	}
	if d.eng.DateUsed(d.dateInput.Value()) {
		lines = append(lines, styleError().Render("Esa fecha ya tiene un día de actividades"))
	}
	used := d.eng.UsedDates()
	if len(used) == 0 {
		return lines
	}
	taken := styleMuted().Strikethrough(true)
	lines = append(lines, "", styleMuted().Render("Fechas ocupadas:"))
	for _, u := range used {
		lines = append(lines, "  "+taken.Render(u)+" "+styleMuted().Render("(ocupada)"))
	}
	return lines
}

func (d *activityDialog) viewCategory() []string {
	lines := []string{"Día: " + emptyAsDash(d.eng.Date())}
	if d.eng.Locked() {
		lines = append(lines,
			"Idioma: "+string(d.eng.Language())+"  "+styleMuted().Render("(bloqueado)"),
			"Tipo: "+emptyAsDash(d.eng.CategoryLabel())+"  "+styleMuted().Render("(bloqueado)"),
		)
		if d.eng.State().Status == activity.StatusLoading {
			lines = append(lines, "", styleMuted().Render("Cargando tipos de actividad…"))
		}
		return lines
	}

	lang := renderButtons([]string{"ES", "EN"}, langIndex(d.eng.Language()), false)
	lines = append(lines, "Idioma: "+lang, "", "Tipo de actividad:")
	chosen, hasChosen := d.eng.Category()
	for i, opt := range d.eng.CategoryOptions() {
		cursor := "  "
		if i == d.catCursor {
			cursor = "> "
		}
		mark := "○ "
		if loc, ok := activity.Delocalize(activity.LocalizedID(opt.ID)); ok && hasChosen && loc.Base == chosen.ID() {
			mark = "● "
		}
		row := cursor + mark + opt.Description
		if i == d.catCursor {
			row = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(row)
		}
		lines = append(lines, row)
	}
	return lines
}

func (d *activityDialog) viewFields(bodyW int) []string {
	lang := d.eng.Language()
	errs := d.eng.Errors()
	lines := []string{
		fmt.Sprintf("Día: %s   %s (%s)", emptyAsDash(d.eng.Date()), d.eng.CategoryLabel(), lang),
		"",
	}
	for i, f := range d.inputs {
		label := f.desc.LabelIn(lang)
		if f.desc.Required {
			label += " *"
		}
		if i == d.focus {
			label = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(label)
		}
		if !f.editable() {
			val := d.eng.Duration().String()
			st := styleMuted()
			if !d.eng.Duration().Valid() {
				st = styleError()
			}
			lines = append(lines, label+": "+st.Render(val))
			continue
		}
		lines = append(lines, label, inputBox(f.input.View()))
		if msg, bad := errs[f.desc.Name]; bad {
			lines = append(lines, styleError().Width(bodyW).Render("  "+msg))
		}
	}
	save := "Guardar"
	if d.eng.Submitting() {
		save = "Guardando…"
	}
	active := -1
	if d.focus >= len(d.inputs) {
		active = 0
	}
	lines = append(lines, "", renderButtons([]string{save}, active, d.eng.Submitting()))
	return lines
}

func (d *activityDialog) help() string {
	st := d.eng.State()
	switch {
	case st.Mode == activity.ModeDateSelect:
		return "enter: elegir fecha   esc: cancelar"
	case st.Step == 1 && d.eng.Locked():
		return "esc: cancelar"
	case st.Step == 1:
		return "↑/↓: tipo   espacio: marcar   l/tab: idioma   enter: continuar   esc: cancelar"
	case d.eng.Locked():
		return "tab: siguiente   ctrl+s: guardar   esc: cancelar"
	default:
		return "tab: siguiente   ctrl+s: guardar   ctrl+b: atrás   esc: cancelar"
	}
}

func inputBox(s string) string {
	return lipgloss.NewStyle().Background(colorInputBg).Padding(0, 1).Render(s)
}

func langIndex(l activity.Language) int {
	if l == activity.English {
		return 1
	}
	return 0
}

func emptyAsDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
