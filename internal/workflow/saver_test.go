package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSaverWritesAndReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	s := DirSaver{Dir: dir}

	path, err := s.Save("AAPL_SEC_Filings.xlsx", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL_SEC_Filings.xlsx"), path)

	_, err = s.Save("AAPL_SEC_Filings.xlsx", []byte("v2"))
	require.NoError(t, err)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirSaverStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	path, err := DirSaver{Dir: dir}.Save("../../etc/deck.pptx", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "deck.pptx"), path)

	_, err = DirSaver{Dir: dir}.Save("  ", []byte("x"))
	assert.Error(t, err)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "AAPL_SEC_Filings.xlsx", FilingsFilename(secapi.Company{CIK: "320193", Ticker: "AAPL"}))
	assert.Equal(t, "BRK_B_SEC_Filings.xlsx", FilingsFilename(secapi.Company{CIK: "1067983", Ticker: "BRK.B"}))
	assert.Equal(t, "0000320193_SEC_Filings.xlsx", FilingsFilename(secapi.Company{CIK: "0000320193"}))

	assert.Equal(t, "Health_Tech_Landscape.pptx", LandscapeFilename(secapi.Artifact{}, "Health Tech"))
	assert.Equal(t, "server.pptx", LandscapeFilename(secapi.Artifact{Filename: "server.pptx"}, "Health Tech"))
	assert.Equal(t, "Oil___Gas_Value_Chain.pptx", ValueChainFilename(secapi.Artifact{}, "Oil & Gas"))
	assert.Equal(t, "a_b_c", SanitizeName("a-b c"))
}

func TestSummaries(t *testing.T) {
	assert.Equal(t, coreFinancials, FilingsSummary(0))
	assert.Equal(t, coreFinancials+" Plus 3 additional table(s) you selected.", FilingsSummary(3))
	assert.Equal(t, "Scan 0 Filing(s)", ScanLabel(0))

	ind := secapi.Industry{SubIndustries: []secapi.SubIndustry{{Companies: companies(2)}}}
	assert.Equal(t, "1 verticals · 2 companies", IndustryCardLabel(ind))
	ind.CompanyCount = 40
	assert.Equal(t, "1 verticals · 40 companies", IndustryCardLabel(ind))
}

func TestGroupFilingsOrdersByType(t *testing.T) {
	filings := []secapi.Filing{
		{Type: "8-K", Accession: "e1"},
		{Type: "S-1", Accession: "s1"},
		{Type: "10-Q", Accession: "q1"},
		{Type: "10-K", Accession: "k1"},
		{Type: "DEF 14A", Accession: "d1"},
		{Type: "10-Q", Accession: "q2"},
	}
	var sel Selection
	sel.Add("q2")

	groups := GroupFilings(filings, &sel)
	var headers []string
	for _, g := range groups {
		headers = append(headers, g.Header)
	}
	assert.Equal(t, []string{"10-K (1)", "10-Q (2)", "8-K (1)", "S-1 (1)", "DEF 14A (1)"}, headers)
	assert.False(t, groups[1].Filings[0].Selected)
	assert.True(t, groups[1].Filings[1].Selected)
}

func TestGroupTablesKeepsScanOrder(t *testing.T) {
	tables := []secapi.Table{
		{ID: "t1", FilingType: "10-Q", FilingDate: "2024-05-01", Rows: 4},
		{ID: "t2", FilingType: "10-K", FilingDate: "2024-02-01", Rows: 9},
		{ID: "t3", FilingType: "10-Q", FilingDate: "2024-05-01", Rows: 1},
	}
	var sel Selection
	sel.Add("t3")

	groups := GroupTables(tables, &sel)
	require.Len(t, groups, 2)
	assert.Equal(t, "10-Q (2024-05-01) — 2 table(s)", groups[0].Header)
	assert.Equal(t, "9 rows", groups[1].Tables[0].Dims)
	assert.True(t, groups[0].Tables[1].Selected)
}
