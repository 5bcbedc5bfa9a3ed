package workflow

import (
	"context"
	"strings"

	"github.com/bekirdag/secdeck/internal/secapi"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const noMatchingChains = "No matching industries"

var scopeOrder = []secapi.Scope{secapi.ScopeBroad, secapi.ScopeNarrow, secapi.ScopeBoth}

type ValueChainAPI interface {
	ValueChains(ctx context.Context) ([]secapi.ValueChain, error)
	GenerateValueChain(ctx context.Context, req secapi.ValueChainRequest) (secapi.Artifact, error)
}

type valueChainsLoadedMsg struct {
	chains []secapi.ValueChain
	err    error
}

// ValueChain drives chain → scope → deck. Filtering is local to the loaded grid.
type ValueChain struct {
	api   ValueChainAPI
	saver Saver
	opts  Options
	log   *zap.Logger

	epoch int

	chains []secapi.ValueChain
	loaded bool
	load   Action
	filter string

	chain *secapi.ValueChain
	scope secapi.Scope

	generate  Action
	outcome   Outcome
	lastSaved string
}

func NewValueChain(api ValueChainAPI, saver Saver, opts Options) *ValueChain {
	opts = opts.withDefaults()
	return &ValueChain{
		api:   api,
		saver: saver,
		opts:  opts,
		log:   opts.Logger.Named("value_chain"),
		scope: secapi.ScopeBroad,
	}
}

func (c *ValueChain) Init() tea.Cmd {
	if c.load.Busy {
		return nil
	}
	c.load.Start()
	api, timeout := c.api, c.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		chains, err := api.ValueChains(ctx)
		return valueChainsLoadedMsg{chains: chains, err: err}
	}
}

func (c *ValueChain) SetFilter(query string) { c.filter = query }

func (c *ValueChain) Filter() string { return c.filter }

// Visible returns the chains matching the filter against name or keywords.
func (c *ValueChain) Visible() []secapi.ValueChain {
	q := strings.ToLower(strings.TrimSpace(c.filter))
	if q == "" {
		return append([]secapi.ValueChain(nil), c.chains...)
	}
	var out []secapi.ValueChain
	for _, vc := range c.chains {
		keywords := strings.ToLower(strings.Join(vc.Keywords, " "))
		if strings.Contains(strings.ToLower(vc.Name), q) || strings.Contains(keywords, q) {
			out = append(out, vc)
		}
	}
	return out
}

// SelectChain starts a session on the chain with the broad scope.
func (c *ValueChain) SelectChain(id string) tea.Cmd {
	var found *secapi.ValueChain
	for i := range c.chains {
		if c.chains[i].ID == id {
			vc := c.chains[i]
			found = &vc
			break
		}
	}
	if found == nil {
		return nil
	}
	c.epoch++
	c.chain = found
	c.scope = secapi.ScopeBroad
	c.generate = Action{}
	c.outcome = OutcomeNone
	c.log.Info("value chain selected", zap.String("chain", found.ID))
	return emit(ToolValueChain, "session_selected", map[string]string{"chain": found.ID})
}

// SetScope ignores anything but broad, narrow and both.
func (c *ValueChain) SetScope(scope secapi.Scope) bool {
	if c.chain == nil {
		return false
	}
	for _, s := range scopeOrder {
		if s == scope {
			c.scope = scope
			c.generate.Err = ""
			c.outcome = OutcomeNone
			return true
		}
	}
	return false
}

// CycleScope steps broad → narrow → both → broad.
func (c *ValueChain) CycleScope() secapi.Scope {
	if c.chain == nil {
		return c.scope
	}
	next := scopeOrder[0]
	for i, s := range scopeOrder {
		if s == c.scope {
			next = scopeOrder[(i+1)%len(scopeOrder)]
			break
		}
	}
	c.SetScope(next)
	return c.scope
}

func (c *ValueChain) Scope() secapi.Scope { return c.scope }

func (c *ValueChain) CanGenerate() bool {
	return c.chain != nil && !c.generate.Busy
}

func (c *ValueChain) Generate() tea.Cmd {
	if !c.CanGenerate() {
		return nil
	}
	c.generate.Start()
	vc := *c.chain
	req := secapi.ValueChainRequest{ChainID: vc.ID, Scope: c.scope}
	c.log.Info("generate requested", zap.String("chain", vc.ID), zap.String("scope", string(req.Scope)))
	api := c.api
	return generateCmd(ToolValueChain, c.epoch, vc.Name, c.opts.GenerateTimeout, c.saver,
		func(ctx context.Context) (secapi.Artifact, error) { return api.GenerateValueChain(ctx, req) },
		func(art secapi.Artifact) string { return ValueChainFilename(art, vc.Name) },
	)
}

func (c *ValueChain) Reset() tea.Cmd {
	c.epoch++
	c.chain = nil
	c.filter = ""
	c.scope = secapi.ScopeBroad
	c.generate = Action{}
	c.outcome = OutcomeNone
	c.lastSaved = ""
	c.log.Info("reset")
	return emit(ToolValueChain, "reset", nil)
}

func (c *ValueChain) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case valueChainsLoadedMsg:
		if msg.err != nil {
			c.load.Finish(loadErrorText("Failed to load value chains", msg.err))
			c.log.Warn("value chains load failed", zap.Error(msg.err))
			return nil
		}
		c.load.Finish("")
		c.chains = msg.chains
		c.loaded = true
		c.log.Info("value chains loaded", zap.Int("count", len(msg.chains)))
	case generatedMsg:
		if msg.tool != ToolValueChain || msg.epoch != c.epoch {
			return nil
		}
		return finishGenerate(msg, &c.generate, &c.outcome, &c.lastSaved, c.log)
	}
	return nil
}

func (c *ValueChain) Stage() Stage {
	switch {
	case c.chain == nil:
		return StageIdle
	case c.generate.Busy:
		return StageGenerating
	default:
		return StageReady
	}
}

type ValueChainCard struct {
	Chain secapi.ValueChain
	Label string
}

type ScopeOption struct {
	Scope       secapi.Scope
	Title       string
	Description string
	Selected    bool
}

type ValueChainView struct {
	Stage Stage

	Loading     bool
	LoadErr     string
	Filter      string
	Cards       []ValueChainCard
	Placeholder string

	Chain  *secapi.ValueChain
	Scopes []ScopeOption

	ShowGenerate bool
	Summary      string
	GenerateBusy bool
	GenerateErr  string
	Outcome      Outcome
	LastSaved    string

	ShowReset bool
}

func (c *ValueChain) View() ValueChainView {
	v := ValueChainView{
		Stage:        c.Stage(),
		Loading:      c.load.Busy,
		LoadErr:      c.load.Err,
		Filter:       c.filter,
		GenerateBusy: c.generate.Busy,
		GenerateErr:  c.generate.Err,
		Outcome:      c.outcome,
		LastSaved:    c.lastSaved,
	}
	visible := c.Visible()
	for _, vc := range visible {
		v.Cards = append(v.Cards, ValueChainCard{Chain: vc, Label: ValueChainCardLabel(vc)})
	}
	if c.loaded && len(visible) == 0 && strings.TrimSpace(c.filter) != "" {
		v.Placeholder = noMatchingChains
	}
	if c.chain == nil {
		return v
	}
	vc := *c.chain
	v.Chain = &vc
	v.Scopes = []ScopeOption{
		{Scope: secapi.ScopeBroad, Title: "Broad", Description: "End-to-end industry stages"},
		{Scope: secapi.ScopeNarrow, Title: "Narrow", Description: NarrowDescription(vc)},
		{Scope: secapi.ScopeBoth, Title: "Both", Description: "Broad and narrow decks in one file"},
	}
	for i := range v.Scopes {
		v.Scopes[i].Selected = v.Scopes[i].Scope == c.scope
	}
	v.ShowGenerate = true
	v.ShowReset = true
	v.Summary = ValueChainSummary(vc, c.scope)
	return v
}
