package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Renderers are cached per width. Building one with WithAutoStyle queries the
// terminal background, which blocks on some terminals, so the style is picked
// from VAULT_TUI_THEME instead.
var (
	mdMu        sync.Mutex
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	theme := markdownTheme()
	key := theme + ":" + strconv.Itoa(width)

	mdMu.Lock()
	defer mdMu.Unlock()

	r := mdRenderers[key]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStyles(markdownStyleConfig(theme)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = r
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func markdownTheme() string {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("VAULT_TUI_THEME")), "light") {
		return "light"
	}
	return "dark"
}

func markdownStyleConfig(theme string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if theme == "light" {
		cfg = styles.LightStyleConfig
	}
	// The preview pane has its own padding.
	zero := uint(0)
	cfg.Document.Margin = &zero
	return cfg
}
