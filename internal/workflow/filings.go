package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/bekirdag/secdeck/internal/brand"
	"github.com/bekirdag/secdeck/internal/secapi"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// MaxSearchResults bounds the rendered search list.
const MaxSearchResults = 15

const noResults = "No results found"

type FilingsAPI interface {
	Search(ctx context.Context, query string) ([]secapi.Company, error)
	Filings(ctx context.Context, cik string) ([]secapi.Filing, error)
	Scan(ctx context.Context, req secapi.ScanRequest) (secapi.ScanResult, error)
	Generate(ctx context.Context, req secapi.GenerateRequest) (secapi.Artifact, error)
}

type searchResultMsg struct {
	seq       int
	companies []secapi.Company
	err       error
}

type filingsLoadedMsg struct {
	epoch   int
	filings []secapi.Filing
	err     error
}

type scanDoneMsg struct {
	epoch   int
	version int
	result  secapi.ScanResult
	err     error
}

// Filings drives search → company → filings → scan → tables → spreadsheet.
type Filings struct {
	api    FilingsAPI
	saver  Saver
	brands *brand.Table
	opts   Options
	log    *zap.Logger

	// epoch changes with every session change or reset; version changes with
	// every edit of the filing selection.
	epoch   int
	version int

	query       string
	searchDeb   *Debouncer
	searchSeq   int
	searching   bool
	results     []secapi.Company
	placeholder string
	resultsOpen bool

	company       *secapi.Company
	filings       []secapi.Filing
	filingsLoaded bool
	load          Action
	selected      Selection

	scan       *secapi.ScanResult
	tables     Selection
	scanAction Action

	generate    Action
	outcome     Outcome
	lastSaved   string
	singleSheet bool

	colors     brand.Colors
	colorQuery string
	colorMatch *brand.Match
	colorDeb   *Debouncer
}

func NewFilings(api FilingsAPI, saver Saver, brands *brand.Table, opts Options) *Filings {
	opts = opts.withDefaults()
	return &Filings{
		api:       api,
		saver:     saver,
		brands:    brands,
		opts:      opts,
		log:       opts.Logger.Named("filings"),
		searchDeb: NewDebouncer("filings.search", opts.SearchDelay),
		colorDeb:  NewDebouncer("filings.color", opts.ColorDelay),
		colors:    brand.DefaultColors,
	}
}

// SetQuery records a keystroke in the search box and schedules the search.
func (c *Filings) SetQuery(query string) tea.Cmd {
	c.query = query
	if strings.TrimSpace(query) == "" {
		c.searchDeb.Cancel()
		c.searchSeq++
		c.searching = false
		c.results = nil
		c.placeholder = ""
		c.resultsOpen = false
		return nil
	}
	// Any response still in flight belongs to an older keystroke.
	c.searchSeq++
	c.searching = true
	return c.searchDeb.Schedule(strings.TrimSpace(query))
}

func (c *Filings) Query() string { return c.query }

// DismissResults hides the results panel, e.g. after a click elsewhere.
func (c *Filings) DismissResults() { c.resultsOpen = false }

func (c *Filings) Results() []secapi.Company {
	return append([]secapi.Company(nil), c.results...)
}

// SelectResult picks the index-th visible search result as the session.
func (c *Filings) SelectResult(index int) tea.Cmd {
	if !c.resultsOpen || index < 0 || index >= len(c.results) {
		return nil
	}
	return c.SelectCompany(c.results[index])
}

// SelectCompany starts a new session and loads its filings.
func (c *Filings) SelectCompany(co secapi.Company) tea.Cmd {
	c.epoch++
	c.searchDeb.Cancel()
	c.searchSeq++
	c.searching = false
	c.resultsOpen = false
	c.query = fmt.Sprintf("%s (%s)", co.Name, co.Ticker)

	c.company = &co
	c.filings = nil
	c.filingsLoaded = false
	c.selected.Clear()
	c.invalidate()
	c.scanAction = Action{}
	c.generate = Action{}
	c.outcome = OutcomeNone
	c.autofillColors(co)
	c.load.Start()

	epoch, api, timeout, cik := c.epoch, c.api, c.opts.RequestTimeout, co.CIK
	c.log.Info("company selected", zap.String("cik", cik), zap.String("ticker", co.Ticker))
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			filings, err := api.Filings(ctx, cik)
			return filingsLoadedMsg{epoch: epoch, filings: filings, err: err}
		},
		emit(ToolFilings, "session_selected", map[string]string{"cik": cik, "ticker": co.Ticker}),
	)
}

func (c *Filings) autofillColors(co secapi.Company) {
	c.colorDeb.Cancel()
	match, ok := c.brands.Lookup(co.Name)
	if !ok {
		match, ok = c.brands.Lookup(co.Ticker)
	}
	if !ok {
		c.colorQuery = ""
		c.colorMatch = nil
		return
	}
	c.colorQuery = match.Name
	c.colors = match.Colors
	c.colorMatch = &match
}

// invalidate hides everything downstream of the filing selection.
func (c *Filings) invalidate() {
	c.version++
	c.scan = nil
	c.tables.Clear()
	c.scanAction.Err = ""
	c.generate.Err = ""
	c.outcome = OutcomeNone
}

func (c *Filings) hasFiling(accession string) bool {
	for _, f := range c.filings {
		if f.Accession == accession {
			return true
		}
	}
	return false
}

// ToggleFiling flips one filing and reports whether it is now selected.
func (c *Filings) ToggleFiling(accession string) bool {
	if !c.filingsLoaded || !c.hasFiling(accession) {
		return false
	}
	on := c.selected.Toggle(accession)
	c.invalidate()
	return on
}

// SelectFilingsByType replaces the selection with every filing of type t,
// amendments ("t/A") included.
func (c *Filings) SelectFilingsByType(t string) {
	c.selectFilingsWhere(func(f secapi.Filing) bool {
		return f.Type == t || f.Type == t+"/A"
	})
}

func (c *Filings) SelectAllFilings() {
	c.selectFilingsWhere(func(secapi.Filing) bool { return true })
}

func (c *Filings) SelectNoFilings() {
	c.selectFilingsWhere(func(secapi.Filing) bool { return false })
}

func (c *Filings) selectFilingsWhere(keep func(secapi.Filing) bool) {
	if !c.filingsLoaded {
		return
	}
	var ids []string
	for _, f := range c.filings {
		if keep(f) {
			ids = append(ids, f.Accession)
		}
	}
	c.selected.Replace(ids)
	c.invalidate()
}

func (c *Filings) selectedFilings() []secapi.Filing {
	var out []secapi.Filing
	for _, f := range c.filings {
		if c.selected.Has(f.Accession) {
			out = append(out, f)
		}
	}
	return out
}

func (c *Filings) CanScan() bool {
	return c.company != nil && c.selected.Len() > 0 && !c.scanAction.Busy
}

// Scan asks the service to extract tables from the selected filings.
func (c *Filings) Scan() tea.Cmd {
	if !c.CanScan() {
		return nil
	}
	c.scanAction.Start()
	req := secapi.ScanRequest{CIK: c.company.CIK, Filings: c.selectedFilings()}
	epoch, version, api, timeout := c.epoch, c.version, c.api, c.opts.GenerateTimeout
	c.log.Info("scan requested", zap.String("cik", req.CIK), zap.Int("filings", len(req.Filings)))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := api.Scan(ctx, req)
		return scanDoneMsg{epoch: epoch, version: version, result: res, err: err}
	}
}

func (c *Filings) ToggleTable(id string) bool {
	if c.scan == nil || !c.hasTable(id) {
		return false
	}
	return c.tables.Toggle(id)
}

func (c *Filings) hasTable(id string) bool {
	for _, t := range c.scan.Tables {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (c *Filings) SelectAllTables() {
	if c.scan == nil {
		return
	}
	ids := make([]string, 0, len(c.scan.Tables))
	for _, t := range c.scan.Tables {
		ids = append(ids, t.ID)
	}
	c.tables.Replace(ids)
}

func (c *Filings) SelectNoTables() { c.tables.Clear() }

func (c *Filings) ToggleSingleSheet() { c.singleSheet = !c.singleSheet }

func (c *Filings) SetSingleSheet(on bool) { c.singleSheet = on }

// SetColorQuery records input in the brand colour box; the lookup runs once
// typing pauses.
func (c *Filings) SetColorQuery(query string) tea.Cmd {
	c.colorQuery = query
	return c.colorDeb.Schedule(query)
}

func (c *Filings) applyColorQuery(query string) {
	if pair, ok := brand.ParsePair(query); ok {
		c.colors = pair
		c.colorMatch = nil
		return
	}
	match, ok := c.brands.Lookup(query)
	if !ok {
		c.colorMatch = nil
		return
	}
	c.colors = match.Colors
	c.colorMatch = &match
}

func (c *Filings) Colors() brand.Colors { return c.colors }

func (c *Filings) CanGenerate() bool {
	return c.company != nil && c.scan != nil && c.selected.Len() > 0 && !c.generate.Busy
}

// Generate requests the spreadsheet and saves it as {ticker}_SEC_Filings.xlsx.
func (c *Filings) Generate() tea.Cmd {
	if !c.CanGenerate() {
		return nil
	}
	c.generate.Start()
	co := *c.company
	req := secapi.GenerateRequest{
		CIK:            co.CIK,
		CompanyName:    co.Name,
		Ticker:         co.Ticker,
		Filings:        c.selectedFilings(),
		ScanID:         c.scan.ScanID,
		SelectedTables: c.tables.IDs(),
		SingleSheet:    c.singleSheet,
		BrandColors:    secapi.BrandColors{Primary: c.colors.Primary, Accent: c.colors.Accent},
	}
	c.log.Info("generate requested", zap.String("cik", co.CIK), zap.Int("tables", len(req.SelectedTables)), zap.Bool("single_sheet", req.SingleSheet))
	api := c.api
	return generateCmd(ToolFilings, c.epoch, co.Ticker, c.opts.GenerateTimeout, c.saver,
		func(ctx context.Context) (secapi.Artifact, error) { return api.Generate(ctx, req) },
		func(secapi.Artifact) string { return FilingsFilename(co) },
	)
}

// Reset returns to the initial state.
func (c *Filings) Reset() tea.Cmd {
	c.epoch++
	c.searchDeb.Cancel()
	c.colorDeb.Cancel()
	c.searchSeq++
	c.query = ""
	c.searching = false
	c.results = nil
	c.placeholder = ""
	c.resultsOpen = false
	c.company = nil
	c.filings = nil
	c.filingsLoaded = false
	c.load = Action{}
	c.selected.Clear()
	c.invalidate()
	c.scanAction = Action{}
	c.generate = Action{}
	c.lastSaved = ""
	c.colors = brand.DefaultColors
	c.colorQuery = ""
	c.colorMatch = nil
	c.log.Info("reset")
	return emit(ToolFilings, "reset", nil)
}

// Update applies asynchronous results. Messages for other tools are ignored.
func (c *Filings) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DebounceMsg:
		if c.searchDeb.Fired(msg) {
			return c.runSearch(msg.Value)
		}
		if c.colorDeb.Fired(msg) {
			c.applyColorQuery(msg.Value)
		}
	case searchResultMsg:
		c.applySearch(msg)
	case filingsLoadedMsg:
		if msg.epoch != c.epoch {
			return nil
		}
		if msg.err != nil {
			c.load.Finish(loadErrorText("Failed to load filings", msg.err))
			c.log.Warn("filings load failed", zap.Error(msg.err))
			return nil
		}
		c.load.Finish("")
		c.filings = msg.filings
		c.filingsLoaded = true
		c.selected.Clear()
		c.invalidate()
	case scanDoneMsg:
		return c.applyScan(msg)
	case generatedMsg:
		if msg.tool != ToolFilings || msg.epoch != c.epoch {
			return nil
		}
		return finishGenerate(msg, &c.generate, &c.outcome, &c.lastSaved, c.log)
	}
	return nil
}

func (c *Filings) runSearch(query string) tea.Cmd {
	c.searchSeq++
	c.searching = true
	seq, api, timeout := c.searchSeq, c.api, c.opts.RequestTimeout
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			companies, err := api.Search(ctx, query)
			return searchResultMsg{seq: seq, companies: companies, err: err}
		},
		emit(ToolFilings, "search", map[string]string{"query": query}),
	)
}

func (c *Filings) applySearch(msg searchResultMsg) {
	// Responses for superseded keystrokes are dropped.
	if msg.seq != c.searchSeq {
		return
	}
	c.searching = false
	c.resultsOpen = true
	c.results = nil
	c.placeholder = ""
	switch {
	case msg.err != nil:
		c.placeholder = ErrorText(msg.err)
		c.log.Warn("search failed", zap.Error(msg.err))
	case len(msg.companies) == 0:
		c.placeholder = noResults
	default:
		n := min(len(msg.companies), MaxSearchResults)
		c.results = append([]secapi.Company(nil), msg.companies[:n]...)
	}
}

func (c *Filings) applyScan(msg scanDoneMsg) tea.Cmd {
	if msg.epoch != c.epoch {
		return nil
	}
	if msg.err != nil {
		c.scanAction.Finish(ErrorText(msg.err))
		c.log.Warn("scan failed", zap.Error(msg.err))
		return emit(ToolFilings, "scan_failed", map[string]string{"error": c.scanAction.Err})
	}
	c.scanAction.Finish("")
	if msg.version != c.version {
		// The filing selection changed while the scan was running.
		return nil
	}
	result := msg.result
	result.Tables = append([]secapi.Table(nil), msg.result.Tables...)
	c.scan = &result
	c.tables.Clear()
	c.generate.Err = ""
	c.outcome = OutcomeNone
	c.log.Info("scan complete", zap.String("scan_id", result.ScanID), zap.Int("tables", len(result.Tables)))
	return emit(ToolFilings, "scan_succeeded", map[string]string{
		"scan_id": result.ScanID,
		"tables":  fmt.Sprint(len(result.Tables)),
	})
}

// Stage reports where the workflow currently is.
func (c *Filings) Stage() Stage {
	switch {
	case c.company == nil:
		return StageIdle
	case c.generate.Busy:
		return StageGenerating
	case c.scan != nil:
		return StageReady
	case c.filingsLoaded:
		return StageChildrenLoaded
	default:
		return StageSessionChosen
	}
}

// FilingsView is everything needed to draw the tool, derived from state.
type FilingsView struct {
	Stage Stage

	Query       string
	Searching   bool
	ResultsOpen bool
	Results     []secapi.Company
	Placeholder string

	Company        *secapi.Company
	ShowFilings    bool
	FilingsLoading bool
	FilingsErr     string
	FilingGroups   []FilingGroup
	SelectedCount  int

	ShowScan  bool
	ScanLabel string
	ScanBusy  bool
	ScanErr   string

	ShowTables  bool
	TableGroups []TableGroup
	TablesEmpty bool
	TableCount  int

	ShowGenerate bool
	Summary      string
	GenerateBusy bool
	GenerateErr  string
	Outcome      Outcome
	LastSaved    string
	SingleSheet  bool
	Colors       brand.Colors
	ColorQuery   string
	ColorMatch   string

	ShowReset bool
}

func (c *Filings) View() FilingsView {
	v := FilingsView{
		Stage:         c.Stage(),
		Query:         c.query,
		Searching:     c.searching,
		ResultsOpen:   c.resultsOpen,
		Results:       c.Results(),
		Placeholder:   c.placeholder,
		SelectedCount: c.selected.Len(),
		Summary:       FilingsSummary(c.tables.Len()),
		SingleSheet:   c.singleSheet,
		Colors:        c.colors,
		ColorQuery:    c.colorQuery,
		Outcome:       c.outcome,
		LastSaved:     c.lastSaved,
		GenerateBusy:  c.generate.Busy,
		GenerateErr:   c.generate.Err,
	}
	if c.colorMatch != nil {
		v.ColorMatch = c.colorMatch.Name
	}
	if c.company == nil {
		return v
	}
	co := *c.company
	v.Company = &co
	v.ShowReset = true
	v.ShowFilings = true
	v.FilingsLoading = c.load.Busy
	v.FilingsErr = c.load.Err
	if c.filingsLoaded {
		v.FilingGroups = GroupFilings(c.filings, &c.selected)
	}
	v.ShowScan = c.selected.Len() > 0
	v.ScanLabel = ScanLabel(c.selected.Len())
	v.ScanBusy = c.scanAction.Busy
	v.ScanErr = c.scanAction.Err
	if c.scan != nil {
		v.ShowTables = true
		v.ShowGenerate = true
		v.TableGroups = GroupTables(c.scan.Tables, &c.tables)
		v.TablesEmpty = len(c.scan.Tables) == 0
		v.TableCount = c.tables.Len()
	}
	return v
}
