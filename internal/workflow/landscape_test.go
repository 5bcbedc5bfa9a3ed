package workflow

import (
	"errors"
	"testing"

	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func companies(n int) []secapi.LandscapeCompany {
	out := make([]secapi.LandscapeCompany, n)
	for i := range out {
		out[i] = secapi.LandscapeCompany{Name: "Company"}
	}
	return out
}

func landscapeAPI() *fakeAPI {
	return &fakeAPI{
		industries: []secapi.Industry{{
			ID:   "fintech",
			Name: "Fintech & Payments",
			SubIndustries: []secapi.SubIndustry{
				{ID: "payments", Name: "Payments", Companies: companies(5)},
				{ID: "lending", Name: "Lending", Companies: companies(7)},
			},
		}},
		artifact: secapi.Artifact{Body: []byte("pptx")},
	}
}

func loadedLandscape(t *testing.T, api *fakeAPI, saver Saver) *Landscape {
	t.Helper()
	l := NewLandscape(api, saver, testOptions())
	run(l, l.Init())
	require.Empty(t, l.View().LoadErr)
	return l
}

func TestLandscapeIndustriesScenario(t *testing.T) {
	l := loadedLandscape(t, landscapeAPI(), &memSaver{})

	view := l.View()
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "2 verticals · 12 companies", view.Cards[0].Label)
	assert.False(t, view.ShowGenerate)

	run(l, l.SelectIndustry("fintech"))
	view = l.View()
	assert.Equal(t, "2 sub-industries selected · 12 companies will be included", view.Summary)
	assert.Equal(t, "Fintech & Payments — 2 sub-industries", view.Heading)
	require.Len(t, view.SubIndustries, 2)
	assert.True(t, view.SubIndustries[0].Selected)
	assert.Equal(t, "Lending (7 companies)", view.SubIndustries[1].Label)
	assert.True(t, view.CanGenerate)
	assert.Equal(t, StageReady, l.Stage())
}

func TestLandscapeSelectionDrivesGenerate(t *testing.T) {
	api := landscapeAPI()
	l := loadedLandscape(t, api, &memSaver{})
	run(l, l.SelectIndustry("fintech"))

	assert.False(t, l.ToggleSubIndustry("payments"))
	assert.Equal(t, "1 sub-industries selected · 7 companies will be included", l.View().Summary)

	l.SelectNone()
	view := l.View()
	assert.Equal(t, "0 sub-industries selected · 0 companies will be included", view.Summary)
	assert.False(t, view.CanGenerate)
	assert.Nil(t, l.Generate())
	assert.Empty(t, api.landscapes)

	l.SelectAll()
	assert.Equal(t, "2 sub-industries selected · 12 companies will be included", l.View().Summary)
	assert.False(t, l.ToggleSubIndustry("nope"))
}

func TestLandscapeGenerate(t *testing.T) {
	api := landscapeAPI()
	saver := &memSaver{}
	l := loadedLandscape(t, api, saver)
	run(l, l.SelectIndustry("fintech"))
	l.ToggleSubIndustry("payments")
	l.ToggleSubIndustry("payments")

	msgs := run(l, l.Generate())
	require.Len(t, api.landscapes, 1)
	// Sent in candidate order, not toggle order.
	assert.Equal(t, secapi.LandscapeRequest{IndustryID: "fintech", SubIndustryIDs: []string{"payments", "lending"}}, api.landscapes[0])

	saved, ok := savedMsg(msgs)
	require.True(t, ok)
	assert.Equal(t, "Fintech___Payments_Landscape.pptx", saved.Name)
	assert.Equal(t, OutcomeDownloaded, l.View().Outcome)

	api.artifact.Filename = "Fintech_Landscape_2024.pptx"
	msgs = run(l, l.Generate())
	saved, ok = savedMsg(msgs)
	require.True(t, ok)
	assert.Equal(t, "Fintech_Landscape_2024.pptx", saved.Name)
}

func TestLandscapeGenerateFailure(t *testing.T) {
	api := landscapeAPI()
	api.genErr = &secapi.APIError{Endpoint: "/api/landscape/generate", Status: 500, Message: "Generation failed"}
	l := loadedLandscape(t, api, &memSaver{})
	run(l, l.SelectIndustry("fintech"))

	run(l, l.Generate())
	view := l.View()
	assert.Equal(t, "Generation failed", view.GenerateErr)
	assert.False(t, view.GenerateBusy)
	assert.Len(t, view.SubIndustries, 2)
	assert.True(t, view.CanGenerate)
}

func TestLandscapeLoadFailure(t *testing.T) {
	api := &fakeAPI{industriesErr: &secapi.TransportError{Endpoint: "/api/industries", Err: errors.New("dial tcp: refused")}}
	l := NewLandscape(api, &memSaver{}, testOptions())
	run(l, l.Init())

	view := l.View()
	assert.Equal(t, "Failed to load industries: Request failed: dial tcp: refused", view.LoadErr)
	assert.False(t, view.Loading)
	assert.Empty(t, view.Cards)
	assert.Nil(t, l.SelectIndustry("fintech"))

	api.industriesErr = &secapi.APIError{Endpoint: "/api/industries", Status: 500, Message: "industry data missing"}
	run(l, l.Init())
	assert.Equal(t, "industry data missing", l.View().LoadErr)
}

func TestLandscapeReset(t *testing.T) {
	l := loadedLandscape(t, landscapeAPI(), &memSaver{})
	initial := l.View()
	run(l, l.SelectIndustry("fintech"))
	run(l, l.Generate())

	run(l, l.Reset())
	assert.Equal(t, initial, l.View())
	assert.Equal(t, StageIdle, l.Stage())
	assert.Zero(t, l.selected.Len())
}
