package workflow

import (
	"context"
	"time"

	"github.com/bekirdag/secdeck/internal/secapi"
	tea "github.com/charmbracelet/bubbletea"
)

type updater interface {
	Update(tea.Msg) tea.Cmd
}

// run executes cmd and every follow-up command until the queue drains,
// feeding each message back into u. It returns every message seen.
func run(u updater, cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		seen = append(seen, msg)
		queue = append(queue, u.Update(msg))
	}
	return seen
}

func eventNames(msgs []tea.Msg) []string {
	var names []string
	for _, m := range msgs {
		if ev, ok := m.(EventMsg); ok {
			names = append(names, ev.Name)
		}
	}
	return names
}

func savedMsg(msgs []tea.Msg) (ArtifactSavedMsg, bool) {
	for _, m := range msgs {
		if saved, ok := m.(ArtifactSavedMsg); ok {
			return saved, true
		}
	}
	return ArtifactSavedMsg{}, false
}

func testOptions() Options {
	return Options{
		RequestTimeout:  time.Second,
		GenerateTimeout: time.Second,
		SearchDelay:     time.Millisecond,
		ColorDelay:      time.Millisecond,
	}
}

type fakeAPI struct {
	searches  []string
	companies map[string][]secapi.Company
	searchErr error

	filingCalls []string
	filings     []secapi.Filing
	filingsErr  error

	scans      []secapi.ScanRequest
	scanResult secapi.ScanResult
	scanErr    error

	generates []secapi.GenerateRequest
	artifact  secapi.Artifact
	genErr    error

	industries    []secapi.Industry
	industriesErr error
	landscapes    []secapi.LandscapeRequest

	chains    []secapi.ValueChain
	chainsErr error
	chainReqs []secapi.ValueChainRequest
}

func (f *fakeAPI) Search(_ context.Context, query string) ([]secapi.Company, error) {
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.companies[query], nil
}

func (f *fakeAPI) Filings(_ context.Context, cik string) ([]secapi.Filing, error) {
	f.filingCalls = append(f.filingCalls, cik)
	return f.filings, f.filingsErr
}

func (f *fakeAPI) Scan(_ context.Context, req secapi.ScanRequest) (secapi.ScanResult, error) {
	f.scans = append(f.scans, req)
	return f.scanResult, f.scanErr
}

func (f *fakeAPI) Generate(_ context.Context, req secapi.GenerateRequest) (secapi.Artifact, error) {
	f.generates = append(f.generates, req)
	return f.artifact, f.genErr
}

func (f *fakeAPI) Industries(context.Context) ([]secapi.Industry, error) {
	return f.industries, f.industriesErr
}

func (f *fakeAPI) GenerateLandscape(_ context.Context, req secapi.LandscapeRequest) (secapi.Artifact, error) {
	f.landscapes = append(f.landscapes, req)
	return f.artifact, f.genErr
}

func (f *fakeAPI) ValueChains(context.Context) ([]secapi.ValueChain, error) {
	return f.chains, f.chainsErr
}

func (f *fakeAPI) GenerateValueChain(_ context.Context, req secapi.ValueChainRequest) (secapi.Artifact, error) {
	f.chainReqs = append(f.chainReqs, req)
	return f.artifact, f.genErr
}

type memSaver struct {
	saved map[string][]byte
	err   error
}

func (s *memSaver) Save(name string, body []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = body
	return "/downloads/" + name, nil
}
