package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	Primary = lipgloss.Color("#22d3ee")
	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Danger  = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	BoldStyle     = lipgloss.NewStyle().Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(Muted)
	SuccessStyle  = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle    = lipgloss.NewStyle().Foreground(Danger)
	StatusStyle   = lipgloss.NewStyle().Foreground(Warning)
	ChatUserStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true).Padding(0, 1)
	TableRowStyle    = lipgloss.NewStyle().Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
)

// PrintError writes a styled error line to stdout.
func PrintError(msg string) {
	fmt.Println(ErrorStyle.Render("✗ " + msg))
}

// PrintSuccessf writes a styled success line to stdout.
func PrintSuccessf(format string, args ...any) {
	fmt.Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintStatus writes a muted status line (joins, leaves, link state).
func PrintStatus(msg string) {
	fmt.Println(StatusStyle.Render("• " + msg))
}

// PrintChat writes one chat line.
func PrintChat(identifier, text string) {
	fmt.Printf("%s %s\n", ChatUserStyle.Render(identifier+":"), text)
}
