package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#7D56F4")
	Secondary = lipgloss.Color("#00D4AA")

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
	Bright  = lipgloss.Color("#FAFAFA")

	// One color per fuzzing category, in category order.
	RequiredColor  = lipgloss.Color("#FF6B6B")
	MinimumColor   = lipgloss.Color("#4D96FF")
	MaximumColor   = lipgloss.Color("#6BCB77")
	MinLengthColor = lipgloss.Color("#FFD93D")
	MaxLengthColor = lipgloss.Color("#C77DFF")
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(Bright).
			Bold(true).
			MarginTop(1)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(15)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(Bright)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Bright).
			Bold(true)

	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// CategoryStyle returns the badge style of a fuzzing category.
func CategoryStyle(category string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch category {
	case "required":
		return base.Foreground(RequiredColor)
	case "minimum":
		return base.Foreground(MinimumColor)
	case "maximum":
		return base.Foreground(MaximumColor)
	case "minLength":
		return base.Foreground(MinLengthColor)
	case "maxLength":
		return base.Foreground(MaxLengthColor)
	default:
		return base.Foreground(Muted)
	}
}

// TargetStyle returns the style of a request target label.
func TargetStyle(target string) lipgloss.Style {
	switch target {
	case "requestBody", "body":
		return lipgloss.NewStyle().Foreground(Secondary)
	case "requestQueryParams", "query":
		return lipgloss.NewStyle().Foreground(Primary)
	default:
		return lipgloss.NewStyle().Foreground(Muted)
	}
}
