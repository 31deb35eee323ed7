package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e4e4ec")).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))

	// Boutons
	buttonStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0")).Padding(0, 1)
	buttonFocusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0b0f14")).Background(lipgloss.Color("#4ade80")).Bold(true).Padding(0, 1)
	buttonDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868")).Strikethrough(true).Padding(0, 1)
)
