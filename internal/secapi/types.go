package secapi

import "encoding/json"

// Company is one search hit from /api/search.
type Company struct {
	CIK    string `json:"cik"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Filing is a single regulatory document instance.
type Filing struct {
	Type      string `json:"type"`
	Date      string `json:"date"`
	Accession string `json:"accession"`
	DocURL    string `json:"doc_url"`
}

type ScanRequest struct {
	CIK     string   `json:"cik"`
	Filings []Filing `json:"filings"`
}

// Table is a data table discovered by a scan.
type Table struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols,omitempty"`
	FilingType string `json:"filing_type"`
	FilingDate string `json:"filing_date"`
	Accession  string `json:"accession,omitempty"`
}

type ScanResult struct {
	ScanID string  `json:"scan_id"`
	Tables []Table `json:"tables"`
}

type BrandColors struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

type GenerateRequest struct {
	CIK            string      `json:"cik"`
	CompanyName    string      `json:"company_name"`
	Ticker         string      `json:"ticker"`
	Filings        []Filing    `json:"filings"`
	ScanID         string      `json:"scan_id"`
	SelectedTables []string    `json:"selected_tables"`
	SingleSheet    bool        `json:"single_sheet"`
	BrandColors    BrandColors `json:"brand_colors"`
}

type LandscapeCompany struct {
	Name        string      `json:"name"`
	Domain      string      `json:"domain,omitempty"`
	Description string      `json:"description,omitempty"`
	Funding     string      `json:"funding,omitempty"`
	Stage       string      `json:"stage,omitempty"`
	Founded     json.Number `json:"founded,omitempty"`
	HQ          string      `json:"hq,omitempty"`
}

type SubIndustry struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Companies []LandscapeCompany `json:"companies"`
}

type Industry struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	CompanyCount  int           `json:"company_count,omitempty"`
	SubIndustries []SubIndustry `json:"sub_industries"`
}

// TotalCompanies prefers the server-provided count and falls back to summing
// the sub-industries.
func (i Industry) TotalCompanies() int {
	if i.CompanyCount > 0 {
		return i.CompanyCount
	}
	total := 0
	for _, sub := range i.SubIndustries {
		total += len(sub.Companies)
	}
	return total
}

type LandscapeRequest struct {
	IndustryID     string   `json:"industry_id"`
	SubIndustryIDs []string `json:"sub_industry_ids"`
}

type ValueChain struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords"`
	BroadStages  int      `json:"broad_stages,omitempty"`
	NarrowStages int      `json:"narrow_stages,omitempty"`
	NarrowFocus  string   `json:"narrow_focus,omitempty"`
}

type Scope string

const (
	ScopeBroad  Scope = "broad"
	ScopeNarrow Scope = "narrow"
	ScopeBoth   Scope = "both"
)

type ValueChainRequest struct {
	ChainID string `json:"chain_id"`
	Scope   Scope  `json:"scope"`
}

// Artifact is a generated document returned as a binary stream.
type Artifact struct {
	// Filename is the name suggested by the server, empty when none was sent.
	Filename    string
	ContentType string
	Body        []byte
}

type industriesEnvelope struct {
	Industries []Industry `json:"industries"`
}

type valueChainsEnvelope struct {
	ValueChains []ValueChain `json:"value_chains"`
}
