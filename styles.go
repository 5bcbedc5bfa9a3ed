package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text, textMuted, border, accent, danger, success lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
	textMuted: lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
	border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
	accent:    lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
	danger:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
	success:   lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"},
}

type styles struct {
	app, topBar                      lipgloss.Style
	columnTitle                      lipgloss.Style
	panel, panelFocused              lipgloss.Style
	tabActive, tabInactive           lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	listItem, listSel, listHeader    lipgloss.Style
	placeholder, errorText, okText   lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint   lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:          base,
		topBar:       base.Copy().Padding(0, 1).Bold(true),
		columnTitle:  base.Copy().Bold(true).Padding(0, 1),
		panel:        base.Copy().BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused: base.Copy().BorderStyle(focusedBorder).BorderForeground(palette.accent),
		tabActive:    base.Copy().Bold(true).Padding(0, 1).Foreground(palette.accent).Underline(true),
		tabInactive:  base.Copy().Padding(0, 1).Foreground(palette.textMuted),
		statusBar:    base.Copy().Padding(0, 1),
		statusSeg:    base.Copy().Padding(0, 1).MarginRight(1),
		statusHint:   base.Copy().Foreground(palette.textMuted),
		listItem:     base.Copy().Padding(0, 1),
		listSel:      base.Copy().Padding(0, 1).Bold(true).Foreground(palette.accent),
		listHeader:   base.Copy().Padding(0, 1).Bold(true).Foreground(palette.text),
		placeholder:  base.Copy().Padding(0, 1).Foreground(palette.textMuted).Italic(true),
		errorText:    base.Copy().Padding(0, 1).Foreground(palette.danger),
		okText:       base.Copy().Padding(0, 1).Foreground(palette.success),
		cmdOverlay:   base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(1, 2),
		cmdPrompt:    base.Copy().Bold(true),
		cmdHint:      base.Copy().Faint(true),
	}
}

// swatch renders a short colour sample for a hex colour.
func swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
}
