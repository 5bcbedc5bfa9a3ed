package workflow

import (
	"fmt"
	"strconv"

	"github.com/bekirdag/secdeck/internal/secapi"
)

const coreFinancials = "Core financials (Income Statement, Balance Sheet, Cash Flow) will always be included."

func FilingsSummary(extraTables int) string {
	if extraTables <= 0 {
		return coreFinancials
	}
	return fmt.Sprintf("%s Plus %d additional table(s) you selected.", coreFinancials, extraTables)
}

func ScanLabel(selected int) string {
	return fmt.Sprintf("Scan %d Filing(s)", selected)
}

// LandscapeSummary counts the selected sub-industries and their companies.
func LandscapeSummary(subs []secapi.SubIndustry, selected *Selection) string {
	companies := 0
	for _, sub := range subs {
		if selected.Has(sub.ID) {
			companies += len(sub.Companies)
		}
	}
	return fmt.Sprintf("%d sub-industries selected · %d companies will be included", selected.Len(), companies)
}

func IndustryCardLabel(ind secapi.Industry) string {
	return fmt.Sprintf("%d verticals · %d companies", len(ind.SubIndustries), ind.TotalCompanies())
}

func ValueChainCardLabel(vc secapi.ValueChain) string {
	return fmt.Sprintf("%d broad stages · %d narrow stages", vc.BroadStages, vc.NarrowStages)
}

func stageCount(n int) string {
	if n <= 0 {
		return "?"
	}
	return strconv.Itoa(n)
}

func ValueChainSummary(vc secapi.ValueChain, scope secapi.Scope) string {
	switch scope {
	case secapi.ScopeNarrow:
		focus := vc.NarrowFocus
		if focus == "" {
			focus = vc.Name
		}
		return fmt.Sprintf("Narrow value chain: %s — %s stages", focus, stageCount(vc.NarrowStages))
	case secapi.ScopeBoth:
		return fmt.Sprintf("Both broad (%s stages) and narrow (%s stages) value chains",
			stageCount(vc.BroadStages), stageCount(vc.NarrowStages))
	default:
		return fmt.Sprintf("Broad value chain for %s — %s stages", vc.Name, stageCount(vc.BroadStages))
	}
}

// NarrowDescription labels the narrow scope option.
func NarrowDescription(vc secapi.ValueChain) string {
	stages := "7–10"
	if vc.NarrowStages > 0 {
		stages = strconv.Itoa(vc.NarrowStages)
	}
	focus := vc.NarrowFocus
	if focus == "" {
		focus = "Specific niche"
	}
	return fmt.Sprintf("Granular, %s stages — %s", stages, focus)
}
