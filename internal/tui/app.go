package tui

import (
	"context"
	"fmt"
	"strings"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"
	"agenda-cli/internal/program"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend is the collaborator the console works against: the dialog
// contract plus the program listing and deletion.
type Backend interface {
	activity.Backend
	ListDays(ctx context.Context, eventID string) ([]model.ActivityDay, error)
	DeleteActivityDetail(ctx context.Context, detailID string) error
}

type Options struct {
	Backend  Backend
	EventID  string
	Language activity.Language
	Logger   logx.Logger
	// MarkdownStyle is the glamour style of the preview pane.
	MarkdownStyle string
}

type daysLoadedMsg struct {
	days []model.ActivityDay
	err  error
}

type deleteDoneMsg struct {
	detail model.ActivityDetail
	err    error
}

type confirmDelete struct {
	detail model.ActivityDetail
	focus  confirmModalFocus
}

type appModel struct {
	ctx     context.Context
	backend Backend
	eventID string
	lang    activity.Language
	log     logx.Logger
	mdStyle string

	width  int
	height int

	days    []model.ActivityDay
	list    list.Model
	loading bool

	dialog  *activityDialog
	confirm *confirmDelete

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, opts Options) appModel {
	lang := opts.Language
	if lang != activity.English {
		lang = activity.Spanish
	}
	style := opts.MarkdownStyle
	if style == "" {
		style = "notty"
	}
	m := appModel{
		ctx:     ctx,
		backend: opts.Backend,
		eventID: opts.EventID,
		lang:    lang,
		log:     opts.Logger.With(logx.String("comp", "tui")),
		mdStyle: style,
		list:    newProgramList(),
		loading: true,
		width:   100,
		height:  30,
	}
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd { return m.loadDaysCmd() }

func (m appModel) loadDaysCmd() tea.Cmd {
	ctx, b, ev := m.ctx, m.backend, m.eventID
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		days, err := b.ListDays(cctx, ev)
		return daysLoadedMsg{days: days, err: err}
	}
}

func (m appModel) deleteCmd(d model.ActivityDetail) tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		return deleteDoneMsg{detail: d, err: b.DeleteActivityDetail(cctx, d.DetailID)}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case daysLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus("No se pudo cargar el programa: "+msg.err.Error(), true)
			m.log.Warn("program load failed", logx.Err(msg.err))
			return m, nil
		}
		m.setDays(msg.days)
		return m, nil

	case categoriesMsg:
		msg.eng.ApplyCategories(msg.list, msg.err)
		if m.dialog != nil && m.dialog.eng == msg.eng {
			m.dialog.sync()
		}
		return m, nil

	case submitDoneMsg:
		out, ok := msg.eng.CompleteSubmit(msg.sub, msg.detail, msg.err)
		if m.dialog == nil || m.dialog.eng != msg.eng {
			return m, nil
		}
		if !ok {
			m.dialog.sync()
			return m, nil
		}
		m.dialog = nil
		if out.Kind == activity.OutcomeUpdated {
			m.setStatus("Actividad actualizada", false)
		} else {
			m.setStatus("Actividad creada", false)
		}
		return m, m.loadDaysCmd()

	case deleteDoneMsg:
		if msg.err != nil {
			m.setStatus("No se pudo eliminar la actividad: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("Actividad eliminada: "+msg.detail.Titulo, false)
		return m, m.loadDaysCmd()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.dialog != nil {
			cmd, closed := m.dialog.update(msg)
			if closed {
				m.dialog = nil
			}
			return m, cmd
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		return m, m.loadDaysCmd()
	case "a":
		return m, m.openDialog(activity.OpenRequest{UsedDates: m.usedDates()})
	case "n":
		if day, ok := m.selectedDay(); ok {
			return m, m.openDialog(activity.OpenRequest{Date: day.Date})
		}
		m.setStatus("Seleccione un día", true)
		return m, nil
	case "e", "enter":
		if row, ok := m.list.SelectedItem().(detailRow); ok {
			d := row.detail
			if d.Date == "" {
				d.Date = row.day.Date
			}
			return m, m.openDialog(activity.OpenRequest{Detail: &d})
		}
		if msg.String() == "enter" {
			if day, ok := m.selectedDay(); ok {
				return m, m.openDialog(activity.OpenRequest{Date: day.Date})
			}
		}
		return m, nil
	case "d", "x":
		if row, ok := m.list.SelectedItem().(detailRow); ok {
			m.confirm = &confirmDelete{detail: row.detail, focus: confirmFocusCancel}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.confirm = nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
	case "y":
		d := m.confirm.detail
		m.confirm = nil
		return m, m.deleteCmd(d)
	case "enter":
		d, focus := m.confirm.detail, m.confirm.focus
		m.confirm = nil
		if focus == confirmFocusConfirm {
			return m, m.deleteCmd(d)
		}
	}
	return m, nil
}

func (m *appModel) openDialog(req activity.OpenRequest) tea.Cmd {
	req.EventID = m.eventID
	req.DefaultLanguage = m.lang
	req.Backend = m.backend
	req.Logger = m.log
	eng := activity.Open(req)
	m.dialog = newActivityDialog(m.ctx, eng, m.backend)
	m.status = ""
	return m.dialog.loadCmd()
}

func (m *appModel) setDays(days []model.ActivityDay) {
	var cur string
	switch it := m.list.SelectedItem().(type) {
	case dayRow:
		cur = it.day.ID
	case detailRow:
		cur = it.detail.DetailID
	}
	m.days = days
	m.list.SetItems(programRows(days, m.lang))
	if cur != "" {
		selectRowByID(&m.list, cur)
	}
}

func selectRowByID(l *list.Model, id string) {
	for i, it := range l.Items() {
		switch r := it.(type) {
		case dayRow:
			if r.day.ID == id {
				l.Select(i)
				return
			}
		case detailRow:
			if r.detail.DetailID == id {
				l.Select(i)
				return
			}
		}
	}
}

func (m appModel) selectedDay() (model.ActivityDay, bool) {
	switch it := m.list.SelectedItem().(type) {
	case dayRow:
		return it.day, true
	case detailRow:
		return it.day, true
	}
	return model.ActivityDay{}, false
}

func (m appModel) usedDates() []string {
	out := make([]string, 0, len(m.days))
	for _, d := range m.days {
		out = append(out, d.Date)
	}
	return out
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *appModel) resize() {
	h := m.height - 4
	if h < 5 {
		h = 5
	}
	m.list.SetSize(m.listWidth(), h)
}

func (m appModel) listWidth() int {
	w := m.width / 2
	if w < 40 {
		w = 40
	}
	return w
}

func (m appModel) View() string {
	header := styleHeading().Render(fmt.Sprintf("Agenda  Evento=%s  Idioma=%s", emptyAsDash(m.eventID), m.lang))

	var body string
	switch {
	case m.dialog != nil:
		body = m.placeCentered(m.dialog.view(m.width))
	case m.confirm != nil:
		d := m.confirm.detail
		text := fmt.Sprintf("¿Eliminar «%s» (%s)?", d.Titulo, activity.NormalizeTime(d.HoraIni))
		body = m.placeCentered(renderConfirmModal(m.width, "Eliminar actividad", text, "Eliminar", "Cancelar", m.confirm.focus))
	case m.loading && len(m.days) == 0:
		body = styleMuted().Render("Cargando programa…")
	case len(m.days) == 0:
		body = styleMuted().Render("Sin días de actividades. Pulse «a» para crear el primero.")
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), "  ", m.preview())
	}

	footer := styleMuted().Render("a: nuevo día  n: nueva actividad  e: editar  d: eliminar  r: recargar  q: salir")
	if m.status != "" {
		st := styleOK()
		if m.statusErr {
			st = styleError()
		}
		footer = st.Render(m.status) + "\n" + footer
	}
	return strings.Join([]string{header, body, footer}, "\n\n")
}

// preview renders the selected day as program markdown.
func (m appModel) preview() string {
	w := m.width - m.listWidth() - 2
	if w < 20 {
		return ""
	}
	day, ok := m.selectedDay()
	if !ok {
		return ""
	}
	md := program.Markdown(m.eventID, []model.ActivityDay{day}, m.lang)
	return lipgloss.NewStyle().Width(w).Render(program.Render(md, w, m.mdStyle))
}

func (m appModel) placeCentered(s string) string {
	h := m.height - 6
	if h < lipgloss.Height(s) {
		return s
	}
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, s)
}
