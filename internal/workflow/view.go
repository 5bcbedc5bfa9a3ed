package workflow

import (
	"fmt"
	"sort"

	"github.com/bekirdag/secdeck/internal/secapi"
)

var filingTypeOrder = []string{"10-K", "10-K/A", "10-Q", "10-Q/A", "8-K", "8-K/A"}

func filingTypeRank(t string) int {
	for i, known := range filingTypeOrder {
		if known == t {
			return i
		}
	}
	return 99
}

type FilingRow struct {
	Filing   secapi.Filing
	Selected bool
}

type FilingGroup struct {
	Type    string
	Header  string
	Filings []FilingRow
}

// GroupFilings groups by filing type in the canonical type order; unknown
// types follow in first-seen order.
func GroupFilings(filings []secapi.Filing, selected *Selection) []FilingGroup {
	var groups []FilingGroup
	index := map[string]int{}
	for _, f := range filings {
		pos, ok := index[f.Type]
		if !ok {
			pos = len(groups)
			index[f.Type] = pos
			groups = append(groups, FilingGroup{Type: f.Type})
		}
		groups[pos].Filings = append(groups[pos].Filings, FilingRow{Filing: f, Selected: selected.Has(f.Accession)})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return filingTypeRank(groups[i].Type) < filingTypeRank(groups[j].Type)
	})
	for i := range groups {
		groups[i].Header = fmt.Sprintf("%s (%d)", groups[i].Type, len(groups[i].Filings))
	}
	return groups
}

type TableRow struct {
	Table    secapi.Table
	Selected bool
	Dims     string
}

type TableGroup struct {
	Label  string
	Header string
	Tables []TableRow
}

// GroupTables groups scanned tables by source filing in first-seen order.
func GroupTables(tables []secapi.Table, selected *Selection) []TableGroup {
	var groups []TableGroup
	index := map[string]int{}
	for _, t := range tables {
		label := fmt.Sprintf("%s (%s)", t.FilingType, t.FilingDate)
		pos, ok := index[label]
		if !ok {
			pos = len(groups)
			index[label] = pos
			groups = append(groups, TableGroup{Label: label})
		}
		groups[pos].Tables = append(groups[pos].Tables, TableRow{
			Table:    t,
			Selected: selected.Has(t.ID),
			Dims:     fmt.Sprintf("%d rows", t.Rows),
		})
	}
	for i := range groups {
		groups[i].Header = fmt.Sprintf("%s — %d table(s)", groups[i].Label, len(groups[i].Tables))
	}
	return groups
}
