package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableLoads(t *testing.T) {
	table := Default()
	assert.Greater(t, table.Len(), 100)
}

func TestLookupExact(t *testing.T) {
	m, ok := Default().Lookup("  AAPL ")
	require.True(t, ok)
	assert.Equal(t, "AAPL", m.Name)
	assert.Equal(t, Colors{Primary: "#333333", Accent: "#E0E0E0"}, m.Colors)
}

func TestLookupPartialUsesTableOrder(t *testing.T) {
	m, ok := Default().Lookup("Apple Inc.")
	require.True(t, ok)
	assert.Equal(t, "Apple", m.Name)

	// "ms" sits inside "adams"; the short key wins because it comes first.
	m, ok = Default().Lookup("Adams Resources")
	require.True(t, ok)
	assert.Equal(t, "Ms", m.Name)
	assert.Equal(t, "#002F5F", m.Colors.Primary)
}

func TestLookupMiss(t *testing.T) {
	_, ok := Default().Lookup("")
	assert.False(t, ok)
	_, ok = Default().Lookup("zzz")
	assert.False(t, ok)
}

func TestParseRejectsBadColours(t *testing.T) {
	_, err := Parse([]byte("brands:\n  - keys: [x]\n    primary: nope\n    accent: \"#FFFFFF\"\n"))
	require.Error(t, err)
}

func TestParseKeepsFirstDuplicate(t *testing.T) {
	table, err := Parse([]byte(`brands:
  - keys: [acme]
    primary: "#111111"
    accent: "#222222"
  - keys: [acme, acm]
    primary: "#333333"
    accent: "#444444"
`))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	m, ok := table.Lookup("acme")
	require.True(t, ok)
	assert.Equal(t, "#111111", m.Colors.Primary)
}

func TestLookupPartialCapitalisesFirstRune(t *testing.T) {
	table, err := Parse([]byte(`brands:
  - keys: ["électricité"]
    primary: "#111111"
    accent: "#222222"
`))
	require.NoError(t, err)
	m, ok := table.Lookup("Électricité de France")
	require.True(t, ok)
	assert.Equal(t, "Électricité", m.Name)
}

func TestParsePair(t *testing.T) {
	c, ok := ParsePair("#ff0000, 00ff00")
	require.True(t, ok)
	assert.Equal(t, Colors{Primary: "#FF0000", Accent: "#00FF00"}, c)

	_, ok = ParsePair("#ff0000")
	assert.False(t, ok)
	_, ok = ParsePair("red blue")
	assert.False(t, ok)
}
