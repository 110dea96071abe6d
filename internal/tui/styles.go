package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	bgColor        = lipgloss.Color("#1F2937") // Dark gray
	fgColor        = lipgloss.Color("#F9FAFB") // Light
	workColor      = lipgloss.Color("#273449")
	selectColor    = lipgloss.Color("#3B82F6") // Blue

	// Layout styles
	AppStyle    = lipgloss.NewStyle().Padding(1, 2)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

	// Grid
	GridStyle        = lipgloss.NewStyle().Background(bgColor).Foreground(mutedColor)
	WorkingStyle     = lipgloss.NewStyle().Background(workColor).Foreground(mutedColor)
	HourLabelStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	DayHeaderStyle   = lipgloss.NewStyle().Foreground(fgColor).Bold(true)
	TodayHeaderStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Underline(true)
	BannerAreaStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#111827"))
	SelectionStyle   = lipgloss.NewStyle().Background(selectColor).Foreground(fgColor)
	NowLineStyle     = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	GripStyle        = lipgloss.NewStyle().Foreground(fgColor)
	EditStyle        = lipgloss.NewStyle().Background(fgColor).Foreground(bgColor)

	// One palette entry per group, in order of first appearance.
	groupPalette = []lipgloss.Color{
		primaryColor,
		lipgloss.Color("#0E7490"),
		lipgloss.Color("#B45309"),
		lipgloss.Color("#047857"),
		lipgloss.Color("#BE185D"),
	}

	// Detail panel styles
	DetailPanelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primaryColor).Padding(0, 1)
	TitleStyle          = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	LabelStyle          = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Width(14)
	ValueStyle          = lipgloss.NewStyle().Foreground(fgColor)
	LinkStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true)
	StatusAcceptedStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	StatusDeclinedStyle = lipgloss.NewStyle().Foreground(errorColor)
	StatusPendingStyle  = lipgloss.NewStyle().Foreground(accentColor)
	ErrorStyle          = lipgloss.NewStyle().Foreground(errorColor)

	// Help bar
	HelpStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	// Calendar badge
	CalendarBadgeStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

// appointmentStyle colors a view by its group. Selected views are inverted.
func appointmentStyle(color lipgloss.Color, selected bool) lipgloss.Style {
	if selected {
		return lipgloss.NewStyle().Background(fgColor).Foreground(color).Bold(true)
	}
	return lipgloss.NewStyle().Background(color).Foreground(fgColor)
}
