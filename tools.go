package main

import (
	"fmt"
	"strings"

	"github.com/bekirdag/secdeck/internal/history"
	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/bekirdag/secdeck/internal/workflow"
	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
)

var tools = []workflow.Tool{workflow.ToolFilings, workflow.ToolLandscape, workflow.ToolValueChain}

func toolTitle(t workflow.Tool) string {
	switch t {
	case workflow.ToolLandscape:
		return "Industry Landscape"
	case workflow.ToolValueChain:
		return "Value Chain"
	default:
		return "SEC Filings"
	}
}

func toolFromString(value string) (workflow.Tool, bool) {
	for _, t := range tools {
		if string(t) == strings.TrimSpace(strings.ToLower(value)) {
			return t, true
		}
	}
	return workflow.ToolFilings, false
}

// Row payloads. The column callbacks switch on these.
type (
	companyPayload     struct{ index int }
	filingGroupPayload struct{ filingType string }
	filingPayload      struct{ accession string }
	tablePayload       struct{ id string }
	industryPayload    struct{ id string }
	subIndustryPayload struct{ id string }
	chainPayload       struct{ id string }
	scopePayload       struct{ scope secapi.Scope }
)

func companyLabel(co secapi.Company) string {
	if co.Ticker == "" {
		return co.Name
	}
	return fmt.Sprintf("%s (%s)", co.Name, co.Ticker)
}

func companyItems(v workflow.FilingsView) ([]list.Item, string) {
	if v.ResultsOpen {
		if len(v.Results) == 0 {
			if v.Searching {
				return nil, "Searching…"
			}
			return nil, v.Placeholder
		}
		items := make([]list.Item, 0, len(v.Results))
		for i, co := range v.Results {
			desc := "CIK " + co.CIK
			if co.Ticker != "" {
				desc = co.Ticker + " · " + desc
			}
			items = append(items, listEntry{title: co.Name, desc: desc, payload: companyPayload{index: i}})
		}
		return items, ""
	}
	if v.Company != nil {
		return []list.Item{listEntry{title: companyLabel(*v.Company), desc: "CIK " + v.Company.CIK}}, ""
	}
	if v.Searching {
		return nil, "Searching…"
	}
	return nil, "Press / to search for a company"
}

func filingItems(v workflow.FilingsView) ([]list.Item, string) {
	switch {
	case !v.ShowFilings:
		return nil, "Select a company to list its filings"
	case v.FilingsLoading:
		return nil, "Loading filings…"
	case len(v.FilingGroups) == 0:
		return nil, "No filings found"
	}
	var items []list.Item
	for _, g := range v.FilingGroups {
		items = append(items, listEntry{title: "── " + g.Header, desc: "enter selects this type", payload: filingGroupPayload{filingType: g.Type}})
		for _, row := range g.Filings {
			items = append(items, listEntry{
				title:   fmt.Sprintf("%s %s  %s", checkbox(row.Selected), row.Filing.Type, row.Filing.Date),
				desc:    row.Filing.Accession,
				payload: filingPayload{accession: row.Filing.Accession},
			})
		}
	}
	return items, ""
}

func tableItems(v workflow.FilingsView) ([]list.Item, string) {
	switch {
	case v.ScanBusy:
		return nil, "Scanning…"
	case !v.ShowTables && v.ShowScan:
		return nil, "Press s to " + strings.ToLower(v.ScanLabel[:1]) + v.ScanLabel[1:]
	case !v.ShowTables:
		return nil, "Select filings, then scan them for tables"
	case v.TablesEmpty:
		return nil, "No additional tables found. The core financial statements are still included."
	}
	var items []list.Item
	for _, g := range v.TableGroups {
		items = append(items, headerEntry(g.Header))
		for _, row := range g.Tables {
			items = append(items, listEntry{
				title:   checkbox(row.Selected) + " " + row.Table.Title,
				desc:    row.Dims,
				payload: tablePayload{id: row.Table.ID},
			})
		}
	}
	return items, ""
}

func industryItems(v workflow.LandscapeView) ([]list.Item, string) {
	if v.Loading {
		return nil, "Loading industries…"
	}
	if len(v.Cards) == 0 {
		return nil, "No industries available"
	}
	items := make([]list.Item, 0, len(v.Cards))
	for _, card := range v.Cards {
		title := card.Industry.Name
		if v.Industry != nil && v.Industry.ID == card.Industry.ID {
			title = "● " + title
		}
		items = append(items, listEntry{title: title, desc: card.Label, payload: industryPayload{id: card.Industry.ID}})
	}
	return items, ""
}

func subIndustryItems(v workflow.LandscapeView) ([]list.Item, string) {
	if v.Industry == nil {
		return nil, "Select an industry"
	}
	items := []list.Item{headerEntry(v.Heading)}
	for _, row := range v.SubIndustries {
		items = append(items, listEntry{
			title:   checkbox(row.Selected) + " " + row.Label,
			desc:    companyPreview(row.SubIndustry.Companies),
			payload: subIndustryPayload{id: row.SubIndustry.ID},
		})
	}
	return items, ""
}

func companyPreview(companies []secapi.LandscapeCompany) string {
	const shown = 3
	names := make([]string, 0, shown)
	for i, co := range companies {
		if i == shown {
			break
		}
		names = append(names, co.Name)
	}
	out := strings.Join(names, ", ")
	if extra := len(companies) - shown; extra > 0 {
		out += fmt.Sprintf(" +%d more", extra)
	}
	return out
}

func chainItems(v workflow.ValueChainView) ([]list.Item, string) {
	if v.Loading {
		return nil, "Loading value chains…"
	}
	if len(v.Cards) == 0 {
		if v.Placeholder != "" {
			return nil, v.Placeholder
		}
		return nil, "No value chains available"
	}
	items := make([]list.Item, 0, len(v.Cards))
	for _, card := range v.Cards {
		title := card.Chain.Name
		if v.Chain != nil && v.Chain.ID == card.Chain.ID {
			title = "● " + title
		}
		items = append(items, listEntry{title: title, desc: card.Label, payload: chainPayload{id: card.Chain.ID}})
	}
	return items, ""
}

func scopeItems(v workflow.ValueChainView) ([]list.Item, string) {
	if v.Chain == nil {
		return nil, "Select an industry"
	}
	items := make([]list.Item, 0, len(v.Scopes))
	for _, opt := range v.Scopes {
		mark := "( )"
		if opt.Selected {
			mark = "(•)"
		}
		items = append(items, listEntry{title: mark + " " + opt.Title, desc: opt.Description, payload: scopePayload{scope: opt.Scope}})
	}
	return items, ""
}

func outcomeMarkdown(b *strings.Builder, busy bool, errText string, outcome workflow.Outcome, lastSaved, busyText string) {
	switch {
	case busy:
		b.WriteString("\n_" + busyText + "_\n")
	case errText != "":
		b.WriteString("\n**Error:** " + errText + "\n")
	case outcome == workflow.OutcomeDownloaded && lastSaved != "":
		b.WriteString("\nSaved to `" + lastSaved + "`\n")
	}
}

func filingsMarkdown(v workflow.FilingsView) string {
	var b strings.Builder
	if v.Company == nil {
		b.WriteString("## SEC filings to spreadsheet\n\nSearch for a company by name or ticker with `/`.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "## %s\n\nCIK `%s`\n\n", companyLabel(*v.Company), v.Company.CIK)
	fmt.Fprintf(&b, "- Filings selected: **%d**\n", v.SelectedCount)
	if v.ShowTables {
		fmt.Fprintf(&b, "- Additional tables selected: **%d**\n", v.TableCount)
	}
	if v.ScanErr != "" {
		b.WriteString("\n**Scan failed:** " + v.ScanErr + "\n")
	}
	if !v.ShowGenerate {
		if v.ShowScan && !v.ScanBusy {
			b.WriteString("\nPress `s` to " + strings.ToLower(v.ScanLabel) + ".\n")
		}
		return b.String()
	}
	b.WriteString("\n### Spreadsheet\n\n" + v.Summary + "\n\n")
	layout := "one sheet per table"
	if v.SingleSheet {
		layout = "single sheet"
	}
	fmt.Fprintf(&b, "- Layout: %s (`o` toggles)\n", layout)
	fmt.Fprintf(&b, "- Brand colours: `%s` / `%s`", v.Colors.Primary, v.Colors.Accent)
	if v.ColorMatch != "" {
		b.WriteString(" matched **" + v.ColorMatch + "**")
	}
	b.WriteString(" (`c` changes)\n\nPress `g` to generate.\n")
	outcomeMarkdown(&b, v.GenerateBusy, v.GenerateErr, v.Outcome, v.LastSaved, "Generating spreadsheet…")
	return b.String()
}

func landscapeMarkdown(v workflow.LandscapeView) string {
	var b strings.Builder
	if v.LoadErr != "" {
		return "## Industry landscape\n\n**Error:** " + v.LoadErr + "\n"
	}
	if v.Industry == nil {
		return "## Industry landscape\n\nPick an industry to build a landscape deck.\n"
	}
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", v.Industry.Name, v.Summary)
	if v.CanGenerate {
		b.WriteString("Press `g` to generate the deck.\n")
	} else {
		b.WriteString("Select at least one sub-industry.\n")
	}
	outcomeMarkdown(&b, v.GenerateBusy, v.GenerateErr, v.Outcome, v.LastSaved, "Generating deck…")
	return b.String()
}

func valueChainMarkdown(v workflow.ValueChainView) string {
	var b strings.Builder
	if v.LoadErr != "" {
		return "## Value chain\n\n**Error:** " + v.LoadErr + "\n"
	}
	if v.Chain == nil {
		b.WriteString("## Value chain\n\nPick an industry. `/` filters the list")
		if strings.TrimSpace(v.Filter) != "" {
			b.WriteString(" (filter: `" + v.Filter + "`)")
		}
		b.WriteString(".\n")
		return b.String()
	}
	fmt.Fprintf(&b, "## %s\n\n%s\n\nPress `b` to change scope, `g` to generate.\n", v.Chain.Name, v.Summary)
	outcomeMarkdown(&b, v.GenerateBusy, v.GenerateErr, v.Outcome, v.LastSaved, "Generating deck…")
	return b.String()
}

func historyMarkdown(entries []history.Entry, counts map[string]int, errText string) string {
	var b strings.Builder
	b.WriteString("## Recent downloads\n\n")
	if errText != "" {
		b.WriteString("**Error:** " + errText + "\n")
		return b.String()
	}
	var totals []string
	for _, t := range tools {
		if n := counts[string(t)]; n > 0 {
			totals = append(totals, fmt.Sprintf("%s: %d", toolTitle(t), n))
		}
	}
	if len(totals) > 0 {
		b.WriteString(strings.Join(totals, " · ") + "\n\n")
	}
	if len(entries) == 0 {
		b.WriteString("Nothing saved yet.\n")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s** · %s · %s · %s\n  `%s`\n",
			e.Label, toolTitle(workflow.Tool(e.Tool)), humanize.Bytes(uint64(max(e.Bytes, 0))), humanize.Time(e.SavedAt), e.Path)
	}
	return b.String()
}
