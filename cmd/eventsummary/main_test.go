package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"session_id":"a","timestamp":"2024-05-01T10:00:00Z","tool":"filings","event":"search","fields":{"query":"Apple"}}
{"session_id":"a","timestamp":"2024-05-01T10:00:02Z","tool":"filings","event":"search","fields":{"query":"apple "}}
{"session_id":"a","timestamp":"2024-05-01T10:00:03Z","tool":"filings","event":"search","fields":{"query":"msft"}}
not json
{"session_id":"a","timestamp":"2024-05-01T10:01:00Z","tool":"filings","event":"scan_succeeded"}
{"session_id":"a","timestamp":"2024-05-01T10:02:00Z","tool":"filings","event":"scan_failed","fields":{"error":"Server error 502"}}

{"session_id":"b","timestamp":"2024-05-01T09:59:00Z","tool":"landscape","event":"generate_succeeded"}
{"session_id":"b","timestamp":"2024-05-01T10:05:00Z","tool":"landscape","event":"generate_succeeded"}
{"session_id":"b","timestamp":"2024-05-01T10:06:00Z","tool":"landscape","event":"generate_failed","fields":{"error":"Request timed out"}}
`

func TestSummarize(t *testing.T) {
	rep, err := summarize(strings.NewReader(sample), 1)
	require.NoError(t, err)

	assert.Equal(t, 8, rep.Events)
	assert.Equal(t, 1, rep.Malformed)
	assert.Equal(t, 2, rep.Sessions)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 59, 0, 0, time.UTC), rep.StartTime)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 6, 0, 0, time.UTC), rep.EndTime)

	filings := rep.Tools["filings"]
	require.NotNil(t, filings)
	assert.Equal(t, 3, filings.Events["search"])
	require.NotNil(t, filings.Scan)
	assert.InDelta(t, 0.5, filings.Scan.Ratio, 1e-9)
	assert.Nil(t, filings.Generate)

	landscape := rep.Tools["landscape"]
	require.NotNil(t, landscape.Generate)
	assert.Equal(t, 2, landscape.Generate.Succeeded)
	assert.InDelta(t, 2.0/3.0, landscape.Generate.Ratio, 1e-9)

	assert.Equal(t, []queryCount{{Query: "apple", Count: 2}}, rep.TopQueries)
	assert.Equal(t, map[string]int{"Server error 502": 1, "Request timed out": 1}, rep.Errors)
}

func TestSummarizeEmpty(t *testing.T) {
	rep, err := summarize(strings.NewReader(""), 5)
	require.NoError(t, err)
	assert.Zero(t, rep.Events)
	assert.Empty(t, rep.Tools)
	assert.Empty(t, rep.TopQueries)
	assert.Nil(t, rep.Errors)
}
