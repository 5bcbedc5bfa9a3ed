// Package workflow implements the selection-and-generation controllers behind
// the three tools: SEC filings to spreadsheet, industry landscape deck and
// value chain deck.
//
// Controllers are plain state holders driven from a bubbletea Update loop.
// Every network call runs inside a tea.Cmd and reports back through a message,
// so state is only ever written from Update.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bekirdag/secdeck/internal/secapi"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Tool string

const (
	ToolFilings    Tool = "filings"
	ToolLandscape  Tool = "landscape"
	ToolValueChain Tool = "value-chain"
)

type Stage int

const (
	StageIdle Stage = iota
	StageSessionChosen
	StageChildrenLoaded
	StageReady
	StageGenerating
)

func (s Stage) String() string {
	switch s {
	case StageSessionChosen:
		return "session chosen"
	case StageChildrenLoaded:
		return "children loaded"
	case StageReady:
		return "ready"
	case StageGenerating:
		return "generating"
	default:
		return "idle"
	}
}

// Outcome is the result of the most recent generate action.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeDownloaded
	OutcomeFailed
)

// Action tracks one triggering control: disabled while Busy, with the last
// error shown next to it.
type Action struct {
	Busy bool
	Err  string
}

func (a *Action) Start() {
	a.Busy = true
	a.Err = ""
}

func (a *Action) Finish(errText string) {
	a.Busy = false
	a.Err = errText
}

// ErrorText turns an error into the message shown to the user. Server-reported
// messages are passed through verbatim.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *secapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	var transport *secapi.TransportError
	if errors.As(err, &transport) {
		return fmt.Sprintf("Request failed: %v", transport.Err)
	}
	return err.Error()
}

// loadErrorText keeps server messages verbatim and prefixes everything else.
func loadErrorText(prefix string, err error) string {
	var apiErr *secapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return prefix + ": " + ErrorText(err)
}

type Options struct {
	RequestTimeout  time.Duration
	GenerateTimeout time.Duration
	SearchDelay     time.Duration
	ColorDelay      time.Duration
	Logger          *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.GenerateTimeout <= 0 {
		o.GenerateTimeout = 5 * time.Minute
	}
	if o.SearchDelay <= 0 {
		o.SearchDelay = 250 * time.Millisecond
	}
	if o.ColorDelay <= 0 {
		o.ColorDelay = 200 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// EventMsg reports a user-visible workflow event for logs and telemetry.
type EventMsg struct {
	Tool   Tool
	Name   string
	Fields map[string]string
}

// ArtifactSavedMsg is emitted after a generated document was written to disk.
type ArtifactSavedMsg struct {
	Tool  Tool
	Label string
	Name  string
	Path  string
	Bytes int
}

func emit(tool Tool, name string, fields map[string]string) tea.Cmd {
	return func() tea.Msg {
		return EventMsg{Tool: tool, Name: name, Fields: fields}
	}
}

// generatedMsg carries a finished generate-and-save round trip.
type generatedMsg struct {
	tool  Tool
	epoch int
	label string
	name  string
	path  string
	bytes int
	err   error
}

// generateCmd runs request, saves the returned body and reports back.
func generateCmd(tool Tool, epoch int, label string, timeout time.Duration, saver Saver,
	request func(ctx context.Context) (secapi.Artifact, error), filename func(secapi.Artifact) string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		art, err := request(ctx)
		if err != nil {
			return generatedMsg{tool: tool, epoch: epoch, label: label, err: err}
		}
		name := filename(art)
		path, err := saver.Save(name, art.Body)
		if err != nil {
			return generatedMsg{tool: tool, epoch: epoch, label: label, name: name, err: err}
		}
		return generatedMsg{tool: tool, epoch: epoch, label: label, name: name, path: path, bytes: len(art.Body)}
	}
}

// finishGenerate applies a generatedMsg to the shared generate state and
// returns the follow-up messages.
func finishGenerate(msg generatedMsg, action *Action, outcome *Outcome, lastSaved *string, log *zap.Logger) tea.Cmd {
	if msg.err != nil {
		action.Finish(ErrorText(msg.err))
		*outcome = OutcomeFailed
		log.Warn("generation failed", zap.String("tool", string(msg.tool)), zap.String("session", msg.label), zap.Error(msg.err))
		return emit(msg.tool, "generate_failed", map[string]string{"session": msg.label, "error": action.Err})
	}
	action.Finish("")
	*outcome = OutcomeDownloaded
	*lastSaved = msg.path
	log.Info("artifact saved", zap.String("tool", string(msg.tool)), zap.String("path", msg.path), zap.Int("bytes", msg.bytes))
	saved := ArtifactSavedMsg{Tool: msg.tool, Label: msg.label, Name: msg.name, Path: msg.path, Bytes: msg.bytes}
	return tea.Batch(
		func() tea.Msg { return saved },
		emit(msg.tool, "generate_succeeded", map[string]string{"session": msg.label, "file": msg.name}),
	)
}
