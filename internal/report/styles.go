// Package report renders import and reconciliation results to the
// console. It is the rendering collaborator's boundary: everything it
// receives is already computed, it only formats.
package report

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// SuccessColor indicates a healthy reconciliation.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates accepted drift and other cautions.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates reconciliation failures.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// InfoColor indicates informational lines.
	InfoColor = lipgloss.Color("#95E1D3")
	// SubtleColor indicates less prominent output.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for per-account headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(InfoColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)
