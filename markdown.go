package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

func (t markdownTheme) String() string {
	if t == "" {
		return string(markdownThemeAuto)
	}
	return string(t)
}

func (t markdownTheme) Label() string {
	switch t {
	case markdownThemeDark:
		return "Dark"
	case markdownThemeLight:
		return "Light"
	default:
		return "Auto"
	}
}

func (t markdownTheme) Next() markdownTheme {
	switch t {
	case markdownThemeDark:
		return markdownThemeLight
	case markdownThemeLight:
		return markdownThemeAuto
	default:
		return markdownThemeDark
	}
}

// markdownRenderer caches a glamour renderer for the current theme and width.
type markdownRenderer struct {
	theme    markdownTheme
	wordWrap int
	term     *glamour.TermRenderer
}

func newMarkdownRenderer(theme markdownTheme) *markdownRenderer {
	return &markdownRenderer{theme: theme, wordWrap: 60}
}

func (r *markdownRenderer) SetTheme(theme markdownTheme) {
	if theme == "" {
		theme = markdownThemeAuto
	}
	if r.theme != theme {
		r.theme = theme
		r.term = nil
	}
}

func (r *markdownRenderer) SetWordWrap(width int) {
	if width < 20 {
		width = 20
	}
	if r.wordWrap != width {
		r.wordWrap = width
		r.term = nil
	}
}

// Render falls back to the raw markdown when glamour cannot render it.
func (r *markdownRenderer) Render(content string) string {
	if r.term == nil {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.wordWrap)}
		switch r.theme {
		case markdownThemeLight:
			opts = append(opts, glamour.WithStandardStyle("light"))
		case markdownThemeDark:
			opts = append(opts, glamour.WithStandardStyle("dark"))
		default:
			opts = append(opts, glamour.WithAutoStyle())
		}
		term, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return content
		}
		r.term = term
	}
	out, err := r.term.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
