package ui

import "github.com/charmbracelet/lipgloss"

// Colors of the executive palette.
var (
	ColorGold    = lipgloss.Color("#D4AF37")
	ColorTeal    = lipgloss.Color("#14B8A6")
	ColorPurple  = lipgloss.Color("#8B5CF6")
	ColorNavy    = lipgloss.Color("#0F172A")
	ColorRed     = lipgloss.Color("#EF4444")
	ColorGreen   = lipgloss.Color("#22C55E")
	ColorGray    = lipgloss.Color("#6B7280")
	ColorDimGray = lipgloss.Color("#374151")
	ColorWhite   = lipgloss.Color("#F8FAFC")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGold)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorGold)

	ListeningDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	InterimTextStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Italic(true)

	TranscriptStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorTeal).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DoneStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Strikethrough(true)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorGold).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	PriorityHighStyle = lipgloss.NewStyle().
				Foreground(ColorTeal)

	PriorityMediumStyle = lipgloss.NewStyle().
				Foreground(ColorGold)

	PriorityLowStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	InsightBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorNavy).
				Background(ColorTeal).
				Padding(0, 1)

	ActionButtonStyle = lipgloss.NewStyle().
				Foreground(ColorTeal).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorTeal).
				Padding(0, 1)

	ToastStyle = lipgloss.NewStyle().
			Foreground(ColorNavy).
			Background(ColorGreen).
			Bold(true).
			Padding(0, 1)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPurple).
			Padding(1, 2)

	NoticeStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorRed).
			Padding(1, 2)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)
)

// PriorityStyle returns the style for a priority name.
func PriorityStyle(priority string) lipgloss.Style {
	switch priority {
	case "high":
		return PriorityHighStyle
	case "medium":
		return PriorityMediumStyle
	default:
		return PriorityLowStyle
	}
}
