package ui

import "github.com/charmbracelet/lipgloss"

// Level palette
var (
	ColorLime      = lipgloss.Color("#99CC00")
	ColorLimeDim   = lipgloss.Color("#5C7A00")
	ColorGray      = lipgloss.Color("#AAAAAA")
	ColorMidGray   = lipgloss.Color("#777777")
	ColorDimGray   = lipgloss.Color("#444444")
	ColorWhite     = lipgloss.Color("#FFFFFF")
	ColorBarBg     = lipgloss.Color("#1C1C1C")
	ColorError     = lipgloss.Color("#FF3300")
	ColorWarning   = lipgloss.Color("#FFAA00")
	ColorBorder    = lipgloss.Color("#777777")
	ColorBorderLvl = lipgloss.Color("#99CC00")
)

// Pre-built styles
var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(ColorBarBg).
			Foreground(ColorWhite).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorLime).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorGray)

	StyleStatusBar = lipgloss.NewStyle().
			Background(ColorBarBg).
			Foreground(ColorGray).
			Padding(0, 1)

	StyleStatusRunning = lipgloss.NewStyle().
				Foreground(ColorLime).
				Bold(true)

	StyleStatusPaused = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StyleStatusError = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder)

	StylePanelLevel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderLvl)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true).
			Padding(0, 1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorMidGray)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	StyleSeparator = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	StyleBadgeLevel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(ColorLime).
			Bold(true).
			Padding(0, 1)

	StyleBadgeOff = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(ColorGray).
			Bold(true).
			Padding(0, 1)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	StyleSpark = lipgloss.NewStyle().
			Foreground(ColorGray)
)
