package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent   = lipgloss.Color("#7aa2f7")
	colorMuted    = lipgloss.Color("#6b7089")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorDanger   = lipgloss.Color("#f7768e")
	colorWarning  = lipgloss.Color("#e0af68")
	colorSurface  = lipgloss.Color("#24283b")
	colorSelected = lipgloss.Color("#3d59a1")
	colorText     = lipgloss.Color("#c0caf5")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeTabStyle = tabStyle.Foreground(colorText).Background(colorSelected).Bold(true)

	rowStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedRowStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(colorAccent).
				Foreground(colorText).
				Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	tagStyle   = lipgloss.NewStyle().Foreground(colorAccent)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	toastSuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	toastErrorStyle   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)

	statusStyles = map[string]lipgloss.Style{
		"clean":       mutedStyle,
		"modified":    lipgloss.NewStyle().Foreground(colorWarning),
		"saving":      lipgloss.NewStyle().Foreground(colorAccent),
		"save failed": toastErrorStyle,
	}

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 2)
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(colorText).
			Background(colorSurface)
	activeButtonStyle = buttonStyle.
				Background(colorSelected).
				Bold(true)
)
