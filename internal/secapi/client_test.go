package secapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDecodesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathSearch, r.URL.Path)
		assert.Equal(t, "Apple Inc", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"cik":"320193","ticker":"AAPL","name":"Apple Inc."}]`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Search(context.Background(), "  Apple Inc ")
	require.NoError(t, err)
	assert.Equal(t, []Company{{CIK: "320193", Ticker: "AAPL", Name: "Apple Inc."}}, got)
}

func TestNewTrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5050", New("  http://localhost:5050/ ").BaseURL())
}

func TestSearchEmptyQuerySkipsRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	got, err := New(srv.URL).Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestSearchServerErrorOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"ticker feed unavailable"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Search(context.Background(), "apple")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Equal(t, "ticker feed unavailable", apiErr.Error())
}

func TestSearchUsesCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"cik":"1","ticker":"A","name":"Agilent"}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithCache(time.Minute))
	for i := 0; i < 3; i++ {
		got, err := client.Search(context.Background(), "Agi")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	_, err := client.Search(context.Background(), "agi")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestScanNon2xxWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Scan(context.Background(), ScanRequest{CIK: "1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Server error 502", apiErr.Error())
}

func TestScanSendsFilingRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req ScanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "320193", req.CIK)
		require.Len(t, req.Filings, 1)
		assert.Equal(t, "https://sec.example/a.htm", req.Filings[0].DocURL)
		_, _ = w.Write([]byte(`{"scan_id":"s1","tables":[{"id":"t1","title":"Revenue","rows":12,"filing_type":"10-K","filing_date":"2024-11-01"}]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Scan(context.Background(), ScanRequest{
		CIK:     "320193",
		Filings: []Filing{{Type: "10-K", Date: "2024-11-01", Accession: "a-1", DocURL: "https://sec.example/a.htm"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.ScanID)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, 12, res.Tables[0].Rows)
}

func TestGenerateReturnsArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="AAPL_SEC_Filings.xlsx"`)
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))
	defer srv.Close()

	art, err := New(srv.URL).Generate(context.Background(), GenerateRequest{CIK: "1"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL_SEC_Filings.xlsx", art.Filename)
	assert.Equal(t, []byte("PK\x03\x04"), art.Body)
}

func TestGenerateErrorBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "json error", body: `{"error":"Generation failed: no XBRL facts"}`, want: "Generation failed: no XBRL facts"},
		{name: "malformed", body: `{"error":`, want: "Server error 500"},
		{name: "empty", body: ``, want: "Server error 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Generate(context.Background(), GenerateRequest{})
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New(base).Filings(context.Background(), "1")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, pathFilings, transport.Endpoint)
}

func TestIndustriesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"industries":[{"id":"ai","name":"AI","sub_industries":[{"id":"gen","name":"GenAI","companies":[{"name":"A","founded":2015},{"name":"B"}]}]}]}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Industries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TotalCompanies())
}

func TestValueChainsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value_chains":[{"id":"ev","name":"Electric Vehicles","keywords":["battery"],"broad_stages":6,"narrow_stages":8,"narrow_focus":"Battery cells"}]}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).ValueChains(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].NarrowStages)
	assert.Equal(t, []string{"battery"}, got[0].Keywords)
}

func TestFilenameFromDisposition(t *testing.T) {
	assert.Equal(t, "Deck.pptx", FilenameFromDisposition(`attachment; filename="Deck.pptx"`))
	assert.Equal(t, "Deck.pptx", FilenameFromDisposition(`attachment; filename=Deck.pptx`))
	assert.Equal(t, "evil.pptx", FilenameFromDisposition(`attachment; filename="../../evil.pptx"`))
	assert.Equal(t, "", FilenameFromDisposition("attachment"))
	assert.Equal(t, "", FilenameFromDisposition(""))
}
