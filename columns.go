package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
	FocusValue() string
}

// listEntry is one row. Rows without a payload are group headers.
type listEntry struct {
	title   string
	desc    string
	payload any
}

func (e listEntry) Title() string       { return e.title }
func (e listEntry) Description() string { return e.desc }
func (e listEntry) FilterValue() string { return e.title }

func headerEntry(title string) listEntry {
	return listEntry{title: "── " + title}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

type selectableColumn struct {
	title       string
	model       list.Model
	width       int
	height      int
	placeholder string
	errText     string
	onSelect    func(entry listEntry) tea.Cmd
	onToggle    func(entry listEntry) tea.Cmd
}

func newSelectableColumn(title string, s styles) *selectableColumn {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel.Copy().Bold(false)
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Copy().Foreground(palette.textMuted)

	m := list.New(nil, delegate, 32, 20)
	m.Title = title
	m.SetShowTitle(false)
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(true)
	m.KeyMap.Quit.SetEnabled(false)
	m.KeyMap.ForceQuit.SetEnabled(false)

	return &selectableColumn{title: title, model: m, width: 32}
}

// SetItems swaps the rows while keeping the cursor where it was.
func (c *selectableColumn) SetItems(items []list.Item) {
	idx := c.model.Index()
	c.model.SetItems(items)
	switch {
	case len(items) == 0:
	case idx >= len(items):
		c.model.Select(len(items) - 1)
	default:
		c.model.Select(idx)
	}
}

func (c *selectableColumn) SetPlaceholder(text string) { c.placeholder = text }

func (c *selectableColumn) SetError(text string) { c.errText = text }

func (c *selectableColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.model.SetSize(width-2, height-3)
}

func (c *selectableColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	if m, ok := msg.(tea.KeyMsg); ok {
		switch m.String() {
		case "enter":
			if entry, ok := c.SelectedEntry(); ok && entry.payload != nil && c.onSelect != nil {
				return c, c.onSelect(entry)
			}
			return c, nil
		case " ", "space":
			if entry, ok := c.SelectedEntry(); ok && entry.payload != nil && c.onToggle != nil {
				return c, c.onToggle(entry)
			}
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	return c, cmd
}

func (c *selectableColumn) View(s styles, focused bool) string {
	var content string
	switch {
	case c.errText != "":
		content = s.errorText.Width(max(c.width-4, 8)).Render(c.errText)
	case len(c.model.Items()) == 0:
		content = s.placeholder.Width(max(c.width-4, 8)).Render(c.placeholder)
	default:
		content = c.model.View()
	}
	body := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), content)
	panel := s.panel
	if focused {
		panel = s.panelFocused
	}
	return panel.Width(c.width - 2).Height(c.height - 2).Render(body)
}

func (c *selectableColumn) Title() string { return c.title }

func (c *selectableColumn) FocusValue() string {
	if entry, ok := c.SelectedEntry(); ok {
		return strings.TrimSpace(strings.TrimPrefix(entry.title, "── "))
	}
	return ""
}

func (c *selectableColumn) SelectedEntry() (listEntry, bool) {
	entry, ok := c.model.SelectedItem().(listEntry)
	return entry, ok
}

// previewColumn shows rendered markdown in a scrollable viewport.
type previewColumn struct {
	title   string
	width   int
	height  int
	content string
	vp      viewport.Model
}

func newPreviewColumn(title string) *previewColumn {
	return &previewColumn{title: title, vp: viewport.New(40, 10)}
}

func (c *previewColumn) SetContent(content string) {
	if content == c.content {
		return
	}
	c.content = content
	c.vp.SetContent(content)
}

func (c *previewColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.vp.Width = max(width-2, 1)
	c.vp.Height = max(height-3, 1)
}

func (c *previewColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	c.vp, cmd = c.vp.Update(msg)
	return c, cmd
}

func (c *previewColumn) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), c.vp.View())
	panel := s.panel
	if focused {
		panel = s.panelFocused
	}
	return panel.Width(c.width - 2).Height(c.height - 2).Render(body)
}

func (c *previewColumn) Title() string { return c.title }

func (c *previewColumn) FocusValue() string {
	return strings.TrimSpace(strings.SplitN(c.content, "\n", 2)[0])
}
