package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	modalMinBodyWidth = 36
	modalMaxBodyWidth = 72
)

// modalBodyWidth is the usable content width of a modal on a screen of the
// given width.
func modalBodyWidth(screenW int) int {
	w := screenW - 10
	if w > modalMaxBodyWidth {
		w = modalMaxBodyWidth
	}
	if w < modalMinBodyWidth {
		w = modalMinBodyWidth
	}
	return w
}

func renderModalBox(screenW int, title, content string) string {
	bodyW := modalBodyWidth(screenW)
	header := lipgloss.NewStyle().
		Width(bodyW).
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().
		Width(bodyW).
		Padding(1, 1, 0, 1).
		Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func renderButtons(labels []string, active int, disabled bool) string {
	// No borders: nested bordered components inside a modal leave
	// background artifacts on some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	if disabled {
		btnBase = faintIfDark(btnBase.Foreground(colorMuted))
		btnActive = btnBase
	}
	out := make([]string, 0, len(labels)*2)
	for i, l := range labels {
		if i > 0 {
			out = append(out, " ")
		}
		if i == active {
			out = append(out, btnActive.Render(l))
		} else {
			out = append(out, btnBase.Render(l))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	active := 0
	if focus == confirmFocusCancel {
		active = 1
	}
	controls := renderButtons([]string{confirmLabel, cancelLabel}, active, false)
	help := styleMuted().Width(modalBodyWidth(width)).Render("tab: foco   enter: elegir   esc: cancelar")
	return renderModalBox(width, title, strings.Join([]string{body, "", controls, "", help}, "\n"))
}
