package render

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Header    lipgloss.Style
	Status    lipgloss.Style
	Band      lipgloss.Style
	Node      lipgloss.Style
	Leaf      lipgloss.Style
	Collapsed lipgloss.Style
	Entering  lipgloss.Style
	Sorted    lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Accent    lipgloss.Style
	Muted     lipgloss.Style
	Fallback  lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVariant("modern_arcade")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "cozy_clean":
		return cozyCleanTheme()
	case "retro_terminal":
		return retroTerminalTheme()
	default:
		return modernArcadeTheme()
	}
}

func modernArcadeTheme() Theme {
	amber := lipgloss.Color("#FFC857")
	ink := lipgloss.Color("#0E1420")
	slate := lipgloss.Color("#1B2740")
	powder := lipgloss.Color("#EAF2FF")
	blue := lipgloss.Color("#5EEBFF")
	border := lipgloss.Color("#4B5F8A")
	muted := lipgloss.Color("#9CAAC6")

	return Theme{
		Header: lipgloss.NewStyle().Background(ink).Foreground(powder).Padding(0, 1),
		Status: lipgloss.NewStyle().Background(slate).Foreground(powder).Padding(0, 1),
		Band:   lipgloss.NewStyle().Foreground(border),
		Node: lipgloss.NewStyle().
			Background(slate).
			Foreground(powder),
		Leaf: lipgloss.NewStyle().
			Background(ink).
			Foreground(powder),
		Collapsed: lipgloss.NewStyle().Background(slate).Foreground(amber),
		Entering:  lipgloss.NewStyle().Foreground(muted),
		Sorted:    lipgloss.NewStyle().Background(slate).Foreground(blue).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Background(blue).Foreground(ink).Bold(true).Padding(0, 1),
		Accent:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Fallback: lipgloss.NewStyle().
			Background(ink).
			Foreground(amber).
			Padding(0, 1),
	}
}

func cozyCleanTheme() Theme {
	honey := lipgloss.Color("#F2B872")
	rose := lipgloss.Color("#D17A86")
	night := lipgloss.Color("#1E2430")
	slate := lipgloss.Color("#30394A")
	paper := lipgloss.Color("#F4F6FA")
	sky := lipgloss.Color("#86B6F6")
	muted := lipgloss.Color("#A3ACC2")

	return Theme{
		Header:    lipgloss.NewStyle().Background(night).Foreground(paper).Padding(0, 1),
		Status:    lipgloss.NewStyle().Background(slate).Foreground(paper).Padding(0, 1),
		Band:      lipgloss.NewStyle().Foreground(slate),
		Node:      lipgloss.NewStyle().Background(slate).Foreground(paper),
		Leaf:      lipgloss.NewStyle().Background(night).Foreground(paper),
		Collapsed: lipgloss.NewStyle().Background(slate).Foreground(honey),
		Entering:  lipgloss.NewStyle().Foreground(muted),
		Sorted:    lipgloss.NewStyle().Background(slate).Foreground(sky).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Background(honey).Foreground(night).Bold(true).Padding(0, 1),
		Accent:    lipgloss.NewStyle().Foreground(sky).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Fallback:  lipgloss.NewStyle().Background(night).Foreground(rose).Padding(0, 1),
	}
}

func retroTerminalTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	deep := lipgloss.Color("#07150A")
	forest := lipgloss.Color("#12301A")
	glow := lipgloss.Color("#C5F7C4")
	muted := lipgloss.Color("#73A17A")

	return Theme{
		Header:    lipgloss.NewStyle().Background(deep).Foreground(glow).Padding(0, 1),
		Status:    lipgloss.NewStyle().Background(forest).Foreground(glow).Padding(0, 1),
		Band:      lipgloss.NewStyle().Foreground(forest),
		Node:      lipgloss.NewStyle().Background(forest).Foreground(glow),
		Leaf:      lipgloss.NewStyle().Background(deep).Foreground(glow),
		Collapsed: lipgloss.NewStyle().Background(forest).Foreground(amber),
		Entering:  lipgloss.NewStyle().Foreground(muted),
		Sorted:    lipgloss.NewStyle().Background(forest).Foreground(lime).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Background(lime).Foreground(deep).Bold(true).Padding(0, 1),
		Accent:    lipgloss.NewStyle().Foreground(lime).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Fallback:  lipgloss.NewStyle().Background(deep).Foreground(amber).Padding(0, 1),
	}
}
