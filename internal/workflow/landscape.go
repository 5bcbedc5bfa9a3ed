package workflow

import (
	"context"
	"fmt"

	"github.com/bekirdag/secdeck/internal/secapi"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type LandscapeAPI interface {
	Industries(ctx context.Context) ([]secapi.Industry, error)
	GenerateLandscape(ctx context.Context, req secapi.LandscapeRequest) (secapi.Artifact, error)
}

type industriesLoadedMsg struct {
	industries []secapi.Industry
	err        error
}

// Landscape drives industry → sub-industries → deck.
type Landscape struct {
	api   LandscapeAPI
	saver Saver
	opts  Options
	log   *zap.Logger

	epoch int

	industries []secapi.Industry
	loaded     bool
	load       Action

	industry *secapi.Industry
	selected Selection

	generate  Action
	outcome   Outcome
	lastSaved string
}

func NewLandscape(api LandscapeAPI, saver Saver, opts Options) *Landscape {
	opts = opts.withDefaults()
	return &Landscape{
		api:   api,
		saver: saver,
		opts:  opts,
		log:   opts.Logger.Named("landscape"),
	}
}

// Init loads the industry grid.
func (c *Landscape) Init() tea.Cmd {
	if c.load.Busy {
		return nil
	}
	c.load.Start()
	api, timeout := c.api, c.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		industries, err := api.Industries(ctx)
		return industriesLoadedMsg{industries: industries, err: err}
	}
}

func (c *Landscape) Industries() []secapi.Industry {
	return append([]secapi.Industry(nil), c.industries...)
}

// SelectIndustry starts a session with every sub-industry selected.
func (c *Landscape) SelectIndustry(id string) tea.Cmd {
	var found *secapi.Industry
	for i := range c.industries {
		if c.industries[i].ID == id {
			ind := c.industries[i]
			found = &ind
			break
		}
	}
	if found == nil {
		return nil
	}
	c.epoch++
	c.industry = found
	ids := make([]string, 0, len(found.SubIndustries))
	for _, sub := range found.SubIndustries {
		ids = append(ids, sub.ID)
	}
	c.selected.Replace(ids)
	c.generate = Action{}
	c.outcome = OutcomeNone
	c.log.Info("industry selected", zap.String("industry", found.ID), zap.Int("sub_industries", len(ids)))
	return emit(ToolLandscape, "session_selected", map[string]string{"industry": found.ID})
}

func (c *Landscape) hasSub(id string) bool {
	if c.industry == nil {
		return false
	}
	for _, sub := range c.industry.SubIndustries {
		if sub.ID == id {
			return true
		}
	}
	return false
}

func (c *Landscape) ToggleSubIndustry(id string) bool {
	if !c.hasSub(id) {
		return false
	}
	on := c.selected.Toggle(id)
	c.touch()
	return on
}

func (c *Landscape) SelectAll() {
	if c.industry == nil {
		return
	}
	ids := make([]string, 0, len(c.industry.SubIndustries))
	for _, sub := range c.industry.SubIndustries {
		ids = append(ids, sub.ID)
	}
	c.selected.Replace(ids)
	c.touch()
}

func (c *Landscape) SelectNone() {
	c.selected.Clear()
	c.touch()
}

func (c *Landscape) touch() {
	c.generate.Err = ""
	c.outcome = OutcomeNone
}

func (c *Landscape) CanGenerate() bool {
	return c.industry != nil && c.selected.Len() > 0 && !c.generate.Busy
}

// Generate requests the landscape deck for the selected sub-industries.
func (c *Landscape) Generate() tea.Cmd {
	if !c.CanGenerate() {
		return nil
	}
	c.generate.Start()
	ind := *c.industry
	req := secapi.LandscapeRequest{IndustryID: ind.ID, SubIndustryIDs: c.orderedSelection()}
	c.log.Info("generate requested", zap.String("industry", ind.ID), zap.Int("sub_industries", len(req.SubIndustryIDs)))
	api := c.api
	return generateCmd(ToolLandscape, c.epoch, ind.Name, c.opts.GenerateTimeout, c.saver,
		func(ctx context.Context) (secapi.Artifact, error) { return api.GenerateLandscape(ctx, req) },
		func(art secapi.Artifact) string { return LandscapeFilename(art, ind.Name) },
	)
}

// orderedSelection lists the selected ids in candidate order.
func (c *Landscape) orderedSelection() []string {
	ids := make([]string, 0, c.selected.Len())
	for _, sub := range c.industry.SubIndustries {
		if c.selected.Has(sub.ID) {
			ids = append(ids, sub.ID)
		}
	}
	return ids
}

// Reset returns to the industry grid. Loaded industries are kept.
func (c *Landscape) Reset() tea.Cmd {
	c.epoch++
	c.industry = nil
	c.selected.Clear()
	c.generate = Action{}
	c.outcome = OutcomeNone
	c.lastSaved = ""
	c.log.Info("reset")
	return emit(ToolLandscape, "reset", nil)
}

func (c *Landscape) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case industriesLoadedMsg:
		if msg.err != nil {
			c.load.Finish(loadErrorText("Failed to load industries", msg.err))
			c.log.Warn("industries load failed", zap.Error(msg.err))
			return nil
		}
		c.load.Finish("")
		c.industries = msg.industries
		c.loaded = true
		c.log.Info("industries loaded", zap.Int("count", len(msg.industries)))
	case generatedMsg:
		if msg.tool != ToolLandscape || msg.epoch != c.epoch {
			return nil
		}
		return finishGenerate(msg, &c.generate, &c.outcome, &c.lastSaved, c.log)
	}
	return nil
}

func (c *Landscape) Stage() Stage {
	switch {
	case c.industry == nil:
		return StageIdle
	case c.generate.Busy:
		return StageGenerating
	default:
		// Sub-industries come with the industry, so a chosen session is
		// immediately ready.
		return StageReady
	}
}

type IndustryCard struct {
	Industry secapi.Industry
	Label    string
}

type SubIndustryRow struct {
	SubIndustry secapi.SubIndustry
	Selected    bool
	Label       string
}

type LandscapeView struct {
	Stage Stage

	Loading bool
	LoadErr string
	Cards   []IndustryCard

	Industry      *secapi.Industry
	Heading       string
	SubIndustries []SubIndustryRow

	ShowGenerate bool
	Summary      string
	CanGenerate  bool
	GenerateBusy bool
	GenerateErr  string
	Outcome      Outcome
	LastSaved    string

	ShowReset bool
}

func (c *Landscape) View() LandscapeView {
	v := LandscapeView{
		Stage:        c.Stage(),
		Loading:      c.load.Busy,
		LoadErr:      c.load.Err,
		GenerateBusy: c.generate.Busy,
		GenerateErr:  c.generate.Err,
		Outcome:      c.outcome,
		LastSaved:    c.lastSaved,
	}
	for _, ind := range c.industries {
		v.Cards = append(v.Cards, IndustryCard{Industry: ind, Label: IndustryCardLabel(ind)})
	}
	if c.industry == nil {
		return v
	}
	ind := *c.industry
	v.Industry = &ind
	v.Heading = fmt.Sprintf("%s — %d sub-industries", ind.Name, len(ind.SubIndustries))
	for _, sub := range ind.SubIndustries {
		v.SubIndustries = append(v.SubIndustries, SubIndustryRow{
			SubIndustry: sub,
			Selected:    c.selected.Has(sub.ID),
			Label:       fmt.Sprintf("%s (%d companies)", sub.Name, len(sub.Companies)),
		})
	}
	v.ShowGenerate = true
	v.ShowReset = true
	v.Summary = LandscapeSummary(ind.SubIndustries, &c.selected)
	v.CanGenerate = c.CanGenerate()
	return v
}
