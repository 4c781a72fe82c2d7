package viz

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	planeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)
