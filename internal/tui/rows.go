package tui

import (
	"fmt"
	"io"
	"strings"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/model"
	"agenda-cli/internal/program"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// dayRow heads a day in the program list; detailRow is one activity under it.
type dayRow struct {
	day  model.ActivityDay
	lang activity.Language
}

func (r dayRow) FilterValue() string { return r.day.Date }
func (r dayRow) Title() string {
	n := len(r.day.Details)
	noun := "actividades"
	if n == 1 {
		noun = "actividad"
	}
	return fmt.Sprintf("%s  %d %s", program.DayHeading(r.day.Date, r.lang), n, noun)
}

type detailRow struct {
	day    model.ActivityDay
	detail model.ActivityDetail
}

func (r detailRow) FilterValue() string { return r.detail.Titulo }
func (r detailRow) Title() string {
	span := activity.NormalizeTime(r.detail.HoraIni)
	if end := activity.NormalizeTime(r.detail.HoraFin); end != "" {
		span += "-" + end
	}
	if span == "" {
		span = "--:--"
	}
	label := r.detail.CategoryLabel
	if label == "" {
		label = activity.LabelFor(activity.LocalizedID(r.detail.LocalizedCategoryID), nil)
	}
	return fmt.Sprintf("  %-11s %s · %s", span, r.detail.Titulo, label)
}

func programRows(days []model.ActivityDay, lang activity.Language) []list.Item {
	var items []list.Item
	for _, d := range days {
		items = append(items, dayRow{day: d, lang: lang})
		for _, det := range d.Details {
			items = append(items, detailRow{day: d, detail: det})
		}
	}
	return items
}

type rowDelegate struct {
	normal   lipgloss.Style
	day      lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle(),
		day:    styleHeading(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	style := d.normal
	if _, ok := item.(dayRow); ok {
		style = d.day
	}
	if index == m.Index() {
		style = d.selected
	}

	txt := ""
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	}
	line := txt
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW-1, "…")
	}
	fmt.Fprint(w, style.Render(line))
}

func newProgramList() list.Model {
	l := list.New(nil, newRowDelegate(), 0, 0)
	l.Title = "Programa"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// ESC closes dialogs here, it must not quit the list.
	l.KeyMap.Quit.SetKeys("q")
	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}
