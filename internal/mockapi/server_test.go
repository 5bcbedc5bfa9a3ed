package mockapi

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error
}

func TestSearch(t *testing.T) {
	s := New(DefaultFixtures())

	resp, body := do(t, s, http.MethodGet, "/api/search?q=apple", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var companies []secapi.Company
	require.NoError(t, json.Unmarshal(body, &companies))
	require.Len(t, companies, 1)
	assert.Equal(t, "AAPL", companies[0].Ticker)

	_, body = do(t, s, http.MethodGet, "/api/search?q=%20", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestFilingsErrors(t *testing.T) {
	s := New(DefaultFixtures())

	resp, body := do(t, s, http.MethodGet, "/api/filings", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CIK is required", errorOf(t, body))

	resp, body = do(t, s, http.MethodGet, "/api/filings?cik=42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Unknown CIK 42", errorOf(t, body))

	_, body = do(t, s, http.MethodGet, "/api/filings?cik=0001067983", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestScanRequiresFilings(t *testing.T) {
	s := New(DefaultFixtures())
	resp, body := do(t, s, http.MethodPost, "/api/scan", `{"cik":"0000320193","filings":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CIK and at least one filing are required", errorOf(t, body))
}

func TestGenerateRejectsUnknownScan(t *testing.T) {
	s := New(DefaultFixtures())
	payload := `{"cik":"0000320193","ticker":"AAPL","filings":[{"type":"10-K","accession":"x"}],"scan_id":"nope"}`
	resp, body := do(t, s, http.MethodPost, "/api/generate", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, body), "please scan again")
}

func TestLandscapeAndValueChainValidation(t *testing.T) {
	s := New(DefaultFixtures())

	resp, body := do(t, s, http.MethodPost, "/api/landscape/generate", `{"industry_id":"nope","sub_industry_ids":["a"]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Unknown industry nope", errorOf(t, body))

	resp, body = do(t, s, http.MethodPost, "/api/landscape/generate", `{"industry_id":"fintech","sub_industry_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Select at least one sub-industry", errorOf(t, body))

	resp, body = do(t, s, http.MethodPost, "/api/value-chain/generate", `{"chain_id":"ev","scope":"deep"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `Invalid scope "deep"`, errorOf(t, body))

	resp, _ = do(t, s, http.MethodPost, "/api/value-chain/generate", `{"chain_id":"ev","scope":"both"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="Electric_Vehicles_Value_Chain.pptx"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, pptxType, resp.Header.Get("Content-Type"))
}

// serve runs the mock on a loopback port and returns its base URL.
func serve(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.App().Listener(ln) }()
	t.Cleanup(func() { _ = s.Shutdown() })
	return "http://" + ln.Addr().String()
}

func TestClientRoundTrip(t *testing.T) {
	s := New(DefaultFixtures())
	client := secapi.New(serve(t, s), secapi.WithCache(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	companies, err := client.Search(ctx, "aapl")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	apple := companies[0]

	filings, err := client.Filings(ctx, apple.CIK)
	require.NoError(t, err)
	require.Len(t, filings, 5)

	scan, err := client.Scan(ctx, secapi.ScanRequest{CIK: apple.CIK, Filings: filings[:1]})
	require.NoError(t, err)
	require.NotEmpty(t, scan.ScanID)
	require.Len(t, scan.Tables, 4)
	assert.Equal(t, "10-K", scan.Tables[0].FilingType)

	art, err := client.Generate(ctx, secapi.GenerateRequest{
		CIK:            apple.CIK,
		CompanyName:    apple.Name,
		Ticker:         apple.Ticker,
		Filings:        filings[:1],
		ScanID:         scan.ScanID,
		SelectedTables: []string{scan.Tables[1].ID},
		BrandColors:    secapi.BrandColors{Primary: "#555555", Accent: "#A2AAAD"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL_SEC_Filings.xlsx", art.Filename)
	assert.Contains(t, string(art.Body), "workbook AAPL")

	_, err = client.Generate(ctx, secapi.GenerateRequest{CIK: apple.CIK, Filings: filings[:1], ScanID: scan.ScanID, SelectedTables: []string{"bogus"}})
	var apiErr *secapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Unknown table bogus", apiErr.Message)

	industries, err := client.Industries(ctx)
	require.NoError(t, err)
	require.Len(t, industries, 2)
	assert.Equal(t, 12, industries[0].CompanyCount)

	deck, err := client.GenerateLandscape(ctx, secapi.LandscapeRequest{IndustryID: "fintech", SubIndustryIDs: []string{"payments", "lending"}})
	require.NoError(t, err)
	assert.Equal(t, "Fintech___Payments_Landscape.pptx", deck.Filename)
	assert.Contains(t, string(deck.Body), "companies=12")

	chains, err := client.ValueChains(ctx)
	require.NoError(t, err)
	assert.Len(t, chains, 3)
}
