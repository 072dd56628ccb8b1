package program

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	rendererMu sync.Mutex
	// Cached by style + wrap width. WithAutoStyle can block on terminal
	// background queries, so the style is resolved up front instead.
	renderers = map[string]*glamour.TermRenderer{}
)

// Style picks the glamour style: AGENDA_MD_STYLE wins, then NO_COLOR
// ("notty"), then the terminal background.
func Style() string {
	switch s := strings.ToLower(strings.TrimSpace(os.Getenv("AGENDA_MD_STYLE"))); s {
	case "light", "dark", "notty", "ascii":
		return s
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// Render turns program markdown into terminal output. On renderer failure
// the markdown is returned unchanged.
func Render(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = "dark"
	}

	key := style + ":" + strconv.Itoa(width)
	rendererMu.Lock()
	r := renderers[key]
	rendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		rendererMu.Lock()
		if existing := renderers[key]; existing != nil {
			r = existing
		} else {
			renderers[key] = rr
			r = rr
		}
		rendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
