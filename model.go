package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/bekirdag/secdeck/internal/brand"
	"github.com/bekirdag/secdeck/internal/history"
	"github.com/bekirdag/secdeck/internal/workflow"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// backend is the full API surface the three tools talk to.
type backend interface {
	workflow.FilingsAPI
	workflow.LandscapeAPI
	workflow.ValueChainAPI
}

type deps struct {
	api       backend
	brands    *brand.Table
	saver     workflow.Saver
	history   *history.Store
	telemetry *telemetryLogger
	log       *zap.Logger
	ui        *uiConfig
	uiPath    string
	opts      workflow.Options
	baseURL   string
	tool      workflow.Tool
	theme     markdownTheme
	copy      func(string) error
}

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputFilter
	inputColor
)

type historyLoadedMsg struct {
	entries []history.Entry
	counts  map[string]int
	err     error
}

type historyRecordedMsg struct {
	err error
}

const historyLimit = 20

type keyMap struct {
	quit        key.Binding
	nextFocus   key.Binding
	prevFocus   key.Binding
	nextTool    key.Binding
	prevTool    key.Binding
	search      key.Binding
	selectAll   key.Binding
	selectNone  key.Binding
	select10K   key.Binding
	select10Q   key.Binding
	select8K    key.Binding
	scan        key.Binding
	generate    key.Binding
	singleSheet key.Binding
	colors      key.Binding
	scope       key.Binding
	reset       key.Binding
	copyPath    key.Binding
	history     key.Binding
	theme       key.Binding
	toggleLogs  key.Binding
	dismiss     key.Binding
	toggleHelp  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		nextTool: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next tool"),
		),
		prevTool: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev tool"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search / filter"),
		),
		selectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		selectNone: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "select none"),
		),
		select10K: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "all 10-K"),
		),
		select10Q: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "all 10-Q"),
		),
		select8K: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "all 8-K"),
		),
		scan: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scan filings"),
		),
		generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		singleSheet: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "single sheet"),
		),
		colors: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "brand colours"),
		),
		scope: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "cycle scope"),
		),
		reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "start over"),
		),
		copyPath: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy saved path"),
		),
		history: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "toggle logs"),
		),
		dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "hide results"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextFocus,
		k.nextTool,
		k.search,
		k.scan,
		k.generate,
		k.reset,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextFocus, k.prevFocus, k.nextTool, k.prevTool},
		{k.search, k.dismiss, k.selectAll, k.selectNone},
		{k.select10K, k.select10Q, k.select8K, k.scan},
		{k.generate, k.singleSheet, k.colors, k.scope},
		{k.reset, k.copyPath, k.history, k.theme},
		{k.toggleLogs, k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	deps deps
	log  *zap.Logger
	md   *markdownRenderer

	tool       workflow.Tool
	filings    *workflow.Filings
	landscape  *workflow.Landscape
	valueChain *workflow.ValueChain

	companyCol    *selectableColumn
	filingsCol    *selectableColumn
	tablesCol     *selectableColumn
	industriesCol *selectableColumn
	subsCol       *selectableColumn
	chainsCol     *selectableColumn
	scopesCol     *selectableColumn
	preview       *previewColumn

	columns   []column
	colWidths []int
	focus     int

	inputField  textinput.Model
	inputActive bool
	inputMode   inputMode
	inputPrompt string

	showHistory    bool
	historyEntries []history.Entry
	historyCounts  map[string]int
	historyErr     string

	logs       viewport.Model
	logLines   []string
	showLogs   bool
	logsHeight int

	spinner       spinner.Model
	spinnerActive bool
	spinnerLabel  string

	toastMessage string
	toastExpires time.Time

	jobs *jobManager
}

func newModel(d deps) *model {
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.ui == nil {
		d.ui = &uiConfig{}
	}
	if d.brands == nil {
		d.brands = brand.Default()
	}
	if d.copy == nil {
		d.copy = clipboard.WriteAll
	}
	opts := d.opts
	opts.Logger = d.log

	s := newStyles()
	m := &model{
		styles:     s,
		keys:       newKeyMap(),
		help:       help.New(),
		deps:       d,
		log:        d.log,
		md:         newMarkdownRenderer(d.theme),
		tool:       d.tool,
		filings:    workflow.NewFilings(d.api, d.saver, d.brands, opts),
		landscape:  workflow.NewLandscape(d.api, d.saver, opts),
		valueChain: workflow.NewValueChain(d.api, d.saver, opts),
		logs:       viewport.New(0, 0),
		logsHeight: 8,
		jobs:       newJobManager(),
	}
	if m.tool == "" {
		m.tool = workflow.ToolFilings
	}
	m.filings.SetSingleSheet(d.ui.SingleSheet)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m.spinner = sp

	ti := textinput.New()
	ti.CharLimit = 120
	m.inputField = ti

	m.companyCol = newSelectableColumn("Company", s)
	m.companyCol.onSelect = func(e listEntry) tea.Cmd {
		p, ok := e.payload.(companyPayload)
		if !ok {
			return nil
		}
		cmd := m.filings.SelectResult(p.index)
		if cmd != nil {
			m.focus = 1
		}
		return cmd
	}
	m.filingsCol = newSelectableColumn("Filings", s)
	m.filingsCol.onSelect = m.handleFilingEntry
	m.filingsCol.onToggle = m.handleFilingEntry
	m.tablesCol = newSelectableColumn("Tables", s)
	m.tablesCol.onSelect = m.handleTableEntry
	m.tablesCol.onToggle = m.handleTableEntry

	m.industriesCol = newSelectableColumn("Industries", s)
	m.industriesCol.onSelect = func(e listEntry) tea.Cmd {
		p, ok := e.payload.(industryPayload)
		if !ok {
			return nil
		}
		cmd := m.landscape.SelectIndustry(p.id)
		if cmd != nil {
			m.focus = 1
		}
		return cmd
	}
	m.subsCol = newSelectableColumn("Sub-industries", s)
	m.subsCol.onSelect = m.handleSubIndustryEntry
	m.subsCol.onToggle = m.handleSubIndustryEntry

	m.chainsCol = newSelectableColumn("Value chains", s)
	m.chainsCol.onSelect = func(e listEntry) tea.Cmd {
		p, ok := e.payload.(chainPayload)
		if !ok {
			return nil
		}
		cmd := m.valueChain.SelectChain(p.id)
		if cmd != nil {
			m.focus = 1
		}
		return cmd
	}
	m.scopesCol = newSelectableColumn("Scope", s)
	scopeSelect := func(e listEntry) tea.Cmd {
		if p, ok := e.payload.(scopePayload); ok {
			m.valueChain.SetScope(p.scope)
		}
		return nil
	}
	m.scopesCol.onSelect = scopeSelect
	m.scopesCol.onToggle = scopeSelect

	m.preview = newPreviewColumn("Deck")
	m.selectToolColumns()
	m.refresh()
	return m
}

func (m *model) handleFilingEntry(e listEntry) tea.Cmd {
	switch p := e.payload.(type) {
	case filingGroupPayload:
		m.filings.SelectFilingsByType(p.filingType)
	case filingPayload:
		m.filings.ToggleFiling(p.accession)
	}
	return nil
}

func (m *model) handleTableEntry(e listEntry) tea.Cmd {
	if p, ok := e.payload.(tablePayload); ok {
		m.filings.ToggleTable(p.id)
	}
	return nil
}

func (m *model) handleSubIndustryEntry(e listEntry) tea.Cmd {
	if p, ok := e.payload.(subIndustryPayload); ok {
		m.landscape.ToggleSubIndustry(p.id)
	}
	return nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.landscape.Init(), m.valueChain.Init())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	case tea.MouseMsg:
		m.handleMouse(msg)
	case workflow.EventMsg:
		m.recordEvent(msg)
	case workflow.ArtifactSavedMsg:
		cmds = append(cmds, m.handleSaved(msg))
	case historyRecordedMsg:
		if msg.err != nil {
			m.appendLog("history: " + msg.err.Error())
		}
		if m.showHistory {
			cmds = append(cmds, m.loadHistoryCmd())
		}
	case historyLoadedMsg:
		m.historyEntries = msg.entries
		m.historyCounts = msg.counts
		m.historyErr = ""
		if msg.err != nil {
			m.historyErr = msg.err.Error()
		}
	case jobMsg:
		cmds = append(cmds, m.handleJobMessage(msg))
	}

	// Controllers ignore messages that are not theirs.
	cmds = append(cmds,
		m.filings.Update(msg),
		m.landscape.Update(msg),
		m.valueChain.Update(msg),
	)

	m.refresh()
	m.applyLayout()
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.inputActive {
		return m.handleInputKey(msg)
	}
	if handled, cmd := m.handleGlobalKey(msg); handled {
		return cmd
	}
	if m.focus < 0 || m.focus >= len(m.columns) {
		return nil
	}
	col, cmd := m.columns[m.focus].Update(msg)
	m.columns[m.focus] = col
	return cmd
}

func (m *model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return true, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.toggleLogs):
		m.showLogs = !m.showLogs
		return true, nil
	case key.Matches(msg, m.keys.nextFocus):
		m.focus = (m.focus + 1) % len(m.columns)
		return true, nil
	case key.Matches(msg, m.keys.prevFocus):
		m.focus = (m.focus - 1 + len(m.columns)) % len(m.columns)
		return true, nil
	case key.Matches(msg, m.keys.nextTool):
		m.switchTool(1)
		return true, nil
	case key.Matches(msg, m.keys.prevTool):
		m.switchTool(-1)
		return true, nil
	case key.Matches(msg, m.keys.theme):
		m.deps.theme = m.deps.theme.Next()
		m.md.SetTheme(m.deps.theme)
		m.deps.ui.Theme = m.deps.theme.String()
		m.saveUI()
		m.setToast("Theme: "+m.deps.theme.Label(), 0)
		return true, nil
	case key.Matches(msg, m.keys.history):
		m.showHistory = !m.showHistory
		if m.showHistory {
			return true, m.loadHistoryCmd()
		}
		return true, nil
	case key.Matches(msg, m.keys.copyPath):
		m.copyLastSaved()
		return true, nil
	case key.Matches(msg, m.keys.reset):
		m.focus = 0
		return true, m.resetTool()
	case key.Matches(msg, m.keys.generate):
		return true, m.generate()
	}

	switch m.tool {
	case workflow.ToolFilings:
		return m.handleFilingsKey(msg)
	case workflow.ToolLandscape:
		return m.handleLandscapeKey(msg)
	case workflow.ToolValueChain:
		return m.handleValueChainKey(msg)
	}
	return false, nil
}

func (m *model) handleFilingsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	onTables := m.columns[m.focus] == column(m.tablesCol)
	switch {
	case key.Matches(msg, m.keys.search):
		m.openInput(inputSearch, "Search company name or ticker", m.filings.Query())
		return true, nil
	case key.Matches(msg, m.keys.dismiss):
		m.filings.DismissResults()
		return true, nil
	case key.Matches(msg, m.keys.selectAll):
		if onTables {
			m.filings.SelectAllTables()
		} else {
			m.filings.SelectAllFilings()
		}
		return true, nil
	case key.Matches(msg, m.keys.selectNone):
		if onTables {
			m.filings.SelectNoTables()
		} else {
			m.filings.SelectNoFilings()
		}
		return true, nil
	case key.Matches(msg, m.keys.select10K):
		m.filings.SelectFilingsByType("10-K")
		return true, nil
	case key.Matches(msg, m.keys.select10Q):
		m.filings.SelectFilingsByType("10-Q")
		return true, nil
	case key.Matches(msg, m.keys.select8K):
		m.filings.SelectFilingsByType("8-K")
		return true, nil
	case key.Matches(msg, m.keys.scan):
		cmd := m.filings.Scan()
		if cmd != nil {
			m.focus = 2
		}
		return true, cmd
	case key.Matches(msg, m.keys.singleSheet):
		m.filings.ToggleSingleSheet()
		m.deps.ui.SingleSheet = m.filings.View().SingleSheet
		m.saveUI()
		return true, nil
	case key.Matches(msg, m.keys.colors):
		if !m.filings.View().ShowGenerate {
			return true, nil
		}
		m.openInput(inputColor, "Brand name or two hex colours (#RRGGBB #RRGGBB)", m.filings.View().ColorQuery)
		return true, nil
	}
	return false, nil
}

func (m *model) handleLandscapeKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.selectAll):
		m.landscape.SelectAll()
		return true, nil
	case key.Matches(msg, m.keys.selectNone):
		m.landscape.SelectNone()
		return true, nil
	}
	return false, nil
}

func (m *model) handleValueChainKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		m.openInput(inputFilter, "Filter industries", m.valueChain.Filter())
		return true, nil
	case key.Matches(msg, m.keys.scope):
		if m.valueChain.View().Chain != nil {
			m.valueChain.CycleScope()
		}
		return true, nil
	}
	return false, nil
}

func (m *model) generate() tea.Cmd {
	switch m.tool {
	case workflow.ToolLandscape:
		return m.landscape.Generate()
	case workflow.ToolValueChain:
		return m.valueChain.Generate()
	default:
		return m.filings.Generate()
	}
}

func (m *model) resetTool() tea.Cmd {
	switch m.tool {
	case workflow.ToolLandscape:
		return m.landscape.Reset()
	case workflow.ToolValueChain:
		return m.valueChain.Reset()
	default:
		return m.filings.Reset()
	}
}

func (m *model) switchTool(delta int) {
	idx := 0
	for i, t := range tools {
		if t == m.tool {
			idx = i
		}
	}
	m.tool = tools[(idx+delta+len(tools))%len(tools)]
	m.focus = 0
	m.selectToolColumns()
	m.deps.ui.LastTool = string(m.tool)
	m.saveUI()
}

func (m *model) selectToolColumns() {
	switch m.tool {
	case workflow.ToolLandscape:
		m.columns = []column{m.industriesCol, m.subsCol, m.preview}
	case workflow.ToolValueChain:
		m.columns = []column{m.chainsCol, m.scopesCol, m.preview}
	default:
		m.columns = []column{m.companyCol, m.filingsCol, m.tablesCol, m.preview}
	}
	if m.focus >= len(m.columns) {
		m.focus = 0
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Type != tea.MouseLeft {
		return
	}
	x := 0
	clicked := -1
	for i, w := range m.colWidths {
		if msg.X >= x && msg.X < x+w {
			clicked = i
			break
		}
		x += w
	}
	if clicked < 0 {
		return
	}
	m.focus = clicked
	if m.tool == workflow.ToolFilings && clicked != 0 {
		m.filings.DismissResults()
	}
}

func (m *model) openInput(mode inputMode, prompt, value string) {
	m.inputActive = true
	m.inputMode = mode
	m.inputPrompt = prompt
	m.inputField.Placeholder = ""
	m.inputField.SetValue(value)
	m.inputField.CursorEnd()
	m.inputField.Focus()
}

func (m *model) closeInput() {
	m.inputActive = false
	m.inputMode = inputNone
	m.inputPrompt = ""
	m.inputField.Blur()
}

// handleInputKey feeds the overlay. Every edit is applied live; enter and
// esc only close the overlay.
func (m *model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return nil
	case "enter":
		if m.inputMode == inputSearch && m.filings.View().ResultsOpen {
			m.focus = 0
		}
		m.closeInput()
		return nil
	}
	before := m.inputField.Value()
	var cmd tea.Cmd
	m.inputField, cmd = m.inputField.Update(msg)
	value := m.inputField.Value()
	if value == before {
		return cmd
	}
	switch m.inputMode {
	case inputSearch:
		return tea.Batch(cmd, m.filings.SetQuery(value))
	case inputFilter:
		m.valueChain.SetFilter(value)
	case inputColor:
		return tea.Batch(cmd, m.filings.SetColorQuery(value))
	}
	return cmd
}

func (m *model) recordEvent(msg workflow.EventMsg) {
	m.deps.telemetry.Emit(string(msg.Tool), msg.Name, msg.Fields)
	line := fmt.Sprintf("[%s] %s", msg.Tool, msg.Name)
	if errText := msg.Fields["error"]; errText != "" {
		line += ": " + errText
	}
	m.appendLog(line)
}

func (m *model) handleSaved(msg workflow.ArtifactSavedMsg) tea.Cmd {
	m.appendLog(fmt.Sprintf("[%s] saved %s (%s)", msg.Tool, msg.Path, humanize.Bytes(uint64(max(msg.Bytes, 0)))))
	m.setToast("Saved "+msg.Name, 0)

	var cmds []tea.Cmd
	if store := m.deps.history; store != nil {
		entry := history.Entry{
			Tool:     string(msg.Tool),
			Label:    msg.Label,
			Filename: msg.Name,
			Path:     msg.Path,
			Bytes:    msg.Bytes,
		}
		cmds = append(cmds, func() tea.Msg {
			_, err := store.Record(entry)
			return historyRecordedMsg{err: err}
		})
	}
	cmds = append(cmds, m.openArtifact(msg.Name, msg.Path))
	return tea.Batch(cmds...)
}

func (m *model) openArtifact(name, path string) tea.Cmd {
	template := strings.TrimSpace(m.deps.ui.OpenCommand)
	if template == "" {
		return nil
	}
	command, args, err := openCommandArgs(template, path)
	if err != nil {
		m.appendLog(err.Error())
		return nil
	}
	title := "open " + name
	return m.jobs.Enqueue(jobRequest{
		title:   title,
		command: command,
		args:    args,
		onFinish: func(err error) {
			if err != nil {
				m.log.Warn("open command failed", zap.String("path", path), zap.Error(err))
				m.setToast(title+" failed", 0)
			}
		},
	})
}

func (m *model) handleJobMessage(msg jobMsg) tea.Cmd {
	switch msg := msg.(type) {
	case jobStartedMsg:
		m.appendLog("▶ " + msg.Title)
	case jobLogMsg:
		m.appendLog("  " + msg.Line)
	case jobFinishedMsg:
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("✖ %s: %v", msg.Title, msg.Err))
		} else {
			m.appendLog("✔ " + msg.Title)
		}
	}
	return m.jobs.Handle(msg)
}

func (m *model) loadHistoryCmd() tea.Cmd {
	store := m.deps.history
	if store == nil {
		return func() tea.Msg { return historyLoadedMsg{} }
	}
	return func() tea.Msg {
		entries, err := store.Recent("", historyLimit)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		// Files deleted or moved outside the app drop out of the history.
		kept := entries[:0]
		for _, e := range entries {
			if _, statErr := os.Stat(e.Path); errors.Is(statErr, fs.ErrNotExist) {
				if err := store.Remove(e.ID); err != nil {
					return historyLoadedMsg{err: err}
				}
				continue
			}
			kept = append(kept, e)
		}
		counts, err := store.Counts()
		return historyLoadedMsg{entries: kept, counts: counts, err: err}
	}
}

func (m *model) lastSaved() string {
	switch m.tool {
	case workflow.ToolLandscape:
		return m.landscape.View().LastSaved
	case workflow.ToolValueChain:
		return m.valueChain.View().LastSaved
	default:
		return m.filings.View().LastSaved
	}
}

func (m *model) copyLastSaved() {
	path := m.lastSaved()
	if path == "" {
		m.setToast("Nothing saved yet", 0)
		return
	}
	if err := m.deps.copy(path); err != nil {
		m.setToast("Copy failed: "+err.Error(), 0)
		return
	}
	m.setToast("Copied "+abbreviatePath(path), 0)
}

func (m *model) saveUI() {
	if m.deps.uiPath == "" {
		return
	}
	if err := saveUIConfig(m.deps.ui, m.deps.uiPath); err != nil {
		m.log.Warn("save ui config", zap.Error(err))
	}
}

// refresh rebuilds the columns from the controllers' view-models.
func (m *model) refresh() {
	var markdown, busy string
	var colors []string
	switch m.tool {
	case workflow.ToolLandscape:
		v := m.landscape.View()
		items, ph := industryItems(v)
		fill(m.industriesCol, v.LoadErr, items, ph)
		items, ph = subIndustryItems(v)
		fill(m.subsCol, "", items, ph)
		markdown = landscapeMarkdown(v)
		switch {
		case v.Loading:
			busy = "Loading industries…"
		case v.GenerateBusy:
			busy = "Generating deck…"
		}
	case workflow.ToolValueChain:
		v := m.valueChain.View()
		items, ph := chainItems(v)
		fill(m.chainsCol, v.LoadErr, items, ph)
		items, ph = scopeItems(v)
		fill(m.scopesCol, "", items, ph)
		m.chainsCol.title = "Value chains"
		if f := strings.TrimSpace(v.Filter); f != "" {
			m.chainsCol.title = fmt.Sprintf("Value chains (%s)", f)
		}
		markdown = valueChainMarkdown(v)
		switch {
		case v.Loading:
			busy = "Loading value chains…"
		case v.GenerateBusy:
			busy = "Generating deck…"
		}
	default:
		v := m.filings.View()
		items, ph := companyItems(v)
		fill(m.companyCol, "", items, ph)
		items, ph = filingItems(v)
		fill(m.filingsCol, v.FilingsErr, items, ph)
		tablesErr := ""
		if !v.ShowTables {
			tablesErr = v.ScanErr
		}
		items, ph = tableItems(v)
		fill(m.tablesCol, tablesErr, items, ph)
		m.tablesCol.title = "Tables"
		if v.ShowTables {
			m.tablesCol.title = fmt.Sprintf("Tables (%d selected)", v.TableCount)
		}
		markdown = filingsMarkdown(v)
		if v.ShowGenerate {
			colors = []string{v.Colors.Primary, v.Colors.Accent}
		}
		switch {
		case v.Searching:
			busy = "Searching…"
		case v.FilingsLoading:
			busy = "Loading filings…"
		case v.ScanBusy:
			busy = "Scanning…"
		case v.GenerateBusy:
			busy = "Generating spreadsheet…"
		}
	}

	m.spinnerActive = busy != ""
	m.spinnerLabel = busy

	if m.showHistory {
		m.preview.title = "History"
		m.preview.SetContent(m.md.Render(historyMarkdown(m.historyEntries, m.historyCounts, m.historyErr)))
		return
	}
	m.preview.title = "Deck"
	content := m.md.Render(markdown)
	if len(colors) == 2 {
		content += "\n\n  " + swatch(colors[0]) + " " + swatch(colors[1])
	}
	m.preview.SetContent(content)
}

func fill(col *selectableColumn, errText string, items []list.Item, placeholder string) {
	col.SetError(errText)
	col.SetPlaceholder(placeholder)
	col.SetItems(items)
}

func (m *model) appendLog(line string) {
	if line == "" {
		return
	}
	m.log.Debug("ui log", zap.String("line", line))
	m.logLines = append(m.logLines, time.Now().Format("15:04:05")+" "+line)
	if len(m.logLines) > 400 {
		m.logLines = m.logLines[len(m.logLines)-400:]
	}
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.help.Width = max(m.width-4, 0)

	bottomChrome := 1
	if helpView := m.help.View(m.keys); helpView != "" {
		bottomChrome += lipgloss.Height(helpView)
	}
	bodyHeight := m.height - 1 - bottomChrome
	if m.showLogs {
		bodyHeight -= m.logsHeight
		m.logs.Width = max(m.width-2, 10)
		m.logs.Height = m.logsHeight - 2
	}
	if bodyHeight < 6 {
		bodyHeight = 6
	}

	var shares []int
	if len(m.columns) == 4 {
		shares = []int{24, 26, 26, 24}
	} else {
		shares = []int{34, 30, 36}
	}
	m.colWidths = make([]int, len(m.columns))
	remaining := m.width
	for i, col := range m.columns {
		w := m.width * shares[i] / 100
		if i == len(m.columns)-1 {
			w = remaining
		}
		if w < 16 {
			w = 16
		}
		remaining -= w
		m.colWidths[i] = w
		col.SetSize(w, bodyHeight)
	}
	m.md.SetWordWrap(m.colWidths[len(m.colWidths)-1] - 6)
}

func (m *model) View() string {
	var builder strings.Builder

	builder.WriteString(m.renderTopBar())
	builder.WriteRune('\n')

	var colViews []string
	for i, col := range m.columns {
		colViews = append(colViews, col.View(m.styles, i == m.focus))
	}
	builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, colViews...))
	builder.WriteRune('\n')

	if m.showLogs {
		logTitle := m.styles.columnTitle.Render("Logs")
		builder.WriteString(m.styles.panel.Width(max(m.width-2, 10)).Render(logTitle + "\n" + m.logs.View()))
		builder.WriteRune('\n')
	}

	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}
	builder.WriteString(m.renderStatus())

	if m.inputActive {
		overlayWidth := min(64, m.width-4)
		if overlayWidth < 24 {
			overlayWidth = 24
		}
		var content strings.Builder
		content.WriteString(m.styles.cmdPrompt.Render(m.inputPrompt))
		content.WriteRune('\n')
		content.WriteString(m.inputField.View())
		content.WriteRune('\n')
		content.WriteString(m.styles.cmdHint.Render("results update as you type • enter done • esc close"))
		overlay := m.styles.cmdOverlay.Width(overlayWidth).Render(content.String())
		builder.WriteString("\n")
		builder.WriteString(lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay))
	}

	return m.styles.app.Render(builder.String())
}

func (m *model) renderTopBar() string {
	tabs := []string{m.styles.topBar.Render("secdeck")}
	for _, t := range tools {
		if t == m.tool {
			tabs = append(tabs, m.styles.tabActive.Render(toolTitle(t)))
		} else {
			tabs = append(tabs, m.styles.tabInactive.Render(toolTitle(t)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) renderStatus() string {
	focusTitle := m.columns[m.focus].Title()
	focusValue := strings.TrimSpace(m.columns[m.focus].FocusValue())
	if focusValue == "" {
		focusValue = "—"
	}
	segments := []string{
		m.styles.statusSeg.Render(fmt.Sprintf("%s: %s", focusTitle, focusValue)),
		m.styles.statusSeg.Render("Stage: " + m.stage().String()),
	}
	if m.deps.baseURL != "" {
		segments = append(segments, m.styles.statusSeg.Render("API: "+m.deps.baseURL))
	}
	if m.spinnerActive {
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" "+m.spinnerLabel))
	}
	if m.jobs.Running() {
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Jobs: 1 running, %d queued", m.jobs.Pending())))
	}
	if m.toastMessage != "" {
		if time.Now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	content := strings.Join(segments, lipgloss.NewStyle().Render("│"))
	return m.styles.statusBar.Width(m.width).Render(content)
}

func (m *model) stage() workflow.Stage {
	switch m.tool {
	case workflow.ToolLandscape:
		return m.landscape.Stage()
	case workflow.ToolValueChain:
		return m.valueChain.Stage()
	default:
		return m.filings.Stage()
	}
}

func abbreviatePath(path string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}
