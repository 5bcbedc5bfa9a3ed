// Package brand maps company names and tickers to spreadsheet brand colours.
package brand

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed brand_colors.yaml
var defaultTable []byte

type Colors struct {
	Primary string `yaml:"primary" json:"primary"`
	Accent  string `yaml:"accent" json:"accent"`
}

// DefaultColors are used until a brand match or manual entry replaces them.
var DefaultColors = Colors{Primary: "#4472C4", Accent: "#D9E1F2"}

type Match struct {
	Name   string
	Colors Colors
}

type entry struct {
	key    string
	colors Colors
}

// Table is an ordered keyword table. Order decides which key wins a partial match.
type Table struct {
	entries []entry
	exact   map[string]Colors
}

type fileFormat struct {
	Brands []struct {
		Keys    []string `yaml:"keys"`
		Primary string   `yaml:"primary"`
		Accent  string   `yaml:"accent"`
	} `yaml:"brands"`
}

func Parse(data []byte) (*Table, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse brand colours: %w", err)
	}
	t := &Table{exact: make(map[string]Colors)}
	for i, b := range raw.Brands {
		colors, ok := normalizePair(b.Primary, b.Accent)
		if !ok {
			return nil, fmt.Errorf("brand entry %d: invalid colours %q/%q", i, b.Primary, b.Accent)
		}
		for _, key := range b.Keys {
			key = strings.ToLower(strings.TrimSpace(key))
			if key == "" {
				continue
			}
			if _, dup := t.exact[key]; dup {
				continue
			}
			t.entries = append(t.entries, entry{key: key, colors: colors})
			t.exact[key] = colors
		}
	}
	return t, nil
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand colours: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup tries an exact key match first, then the first key (in table order)
// that contains the query or is contained in it.
//
// Short keys such as "ms" or "v" match inside many unrelated names; that is the
// established behaviour and is kept as-is.
func (t *Table) Lookup(query string) (Match, bool) {
	if t == nil {
		return Match{}, false
	}
	trimmed := strings.TrimSpace(query)
	q := strings.ToLower(trimmed)
	if q == "" {
		return Match{}, false
	}
	if colors, ok := t.exact[q]; ok {
		return Match{Name: trimmed, Colors: colors}, true
	}
	for _, e := range t.entries {
		if strings.Contains(e.key, q) || strings.Contains(q, e.key) {
			return Match{Name: capitalize(e.key), Colors: e.colors}, true
		}
	}
	return Match{}, false
}

// ParsePair reads "#RRGGBB #RRGGBB" (space or comma separated) as primary and
// accent colours.
func ParsePair(input string) (Colors, bool) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return Colors{}, false
	}
	return normalizePair(fields[0], fields[1])
}

func normalizePair(primary, accent string) (Colors, bool) {
	p, ok := normalizeHex(primary)
	if !ok {
		return Colors{}, false
	}
	a, ok := normalizeHex(accent)
	if !ok {
		return Colors{}, false
	}
	return Colors{Primary: p, Accent: a}, true
}

func normalizeHex(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return "", false
	}
	return strings.ToUpper(c.Hex()), true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
