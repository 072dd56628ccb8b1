package tui

import (
	"context"

	"agenda-cli/internal/program"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = program.Style()
	}
	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
