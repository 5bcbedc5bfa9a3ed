package mockapi

import (
	"fmt"

	"github.com/bekirdag/secdeck/internal/secapi"
)

// Fixtures is the data the mock server answers from.
type Fixtures struct {
	Companies []secapi.Company
	// Filings and TableTitles are keyed by CIK and accession respectively.
	Filings     map[string][]secapi.Filing
	TableTitles map[string][]string
	Industries  []secapi.Industry
	ValueChains []secapi.ValueChain
}

func filing(cik, typ, date, seq string) secapi.Filing {
	accession := fmt.Sprintf("%s-%s-%s", cik[len(cik)-4:], date[:4], seq)
	return secapi.Filing{
		Type:      typ,
		Date:      date,
		Accession: accession,
		DocURL:    fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s.htm", cik, accession),
	}
}

func named(names ...string) []secapi.LandscapeCompany {
	out := make([]secapi.LandscapeCompany, 0, len(names))
	for _, n := range names {
		out = append(out, secapi.LandscapeCompany{Name: n})
	}
	return out
}

// DefaultFixtures is a small, stable data set for local runs and tests.
func DefaultFixtures() Fixtures {
	apple := "0000320193"
	msft := "0000789019"
	nvda := "0001045810"
	brk := "0001067983"

	fx := Fixtures{
		Companies: []secapi.Company{
			{CIK: apple, Ticker: "AAPL", Name: "Apple Inc."},
			{CIK: msft, Ticker: "MSFT", Name: "Microsoft Corp"},
			{CIK: nvda, Ticker: "NVDA", Name: "NVIDIA Corp"},
			{CIK: brk, Ticker: "BRK-B", Name: "Berkshire Hathaway Inc"},
			{CIK: "0000002178", Ticker: "AE", Name: "Adams Resources & Energy, Inc."},
		},
		Filings: map[string][]secapi.Filing{
			apple: {
				filing(apple, "10-K", "2024-11-01", "000123"),
				filing(apple, "10-Q", "2024-08-02", "000081"),
				filing(apple, "8-K", "2024-10-31", "000120"),
				filing(apple, "10-K", "2023-11-03", "000106"),
				filing(apple, "10-K/A", "2023-12-15", "000110"),
			},
			msft: {
				filing(msft, "10-K", "2024-07-30", "000070"),
				filing(msft, "10-Q", "2024-10-30", "000095"),
			},
			nvda: {
				filing(nvda, "10-K", "2024-02-21", "000012"),
				filing(nvda, "10-Q", "2024-08-28", "000074"),
				filing(nvda, "8-K", "2024-05-22", "000051"),
			},
		},
		TableTitles: map[string][]string{},
		Industries: []secapi.Industry{
			{
				ID:   "fintech",
				Name: "Fintech & Payments",
				SubIndustries: []secapi.SubIndustry{
					{ID: "payments", Name: "Payments", Companies: named("Stripe", "Adyen", "Checkout.com", "Block", "PayPal")},
					{ID: "lending", Name: "Digital Lending", Companies: named("Affirm", "Klarna", "Upstart", "SoFi", "LendingClub", "Funding Circle", "Kabbage")},
				},
			},
			{
				ID:   "climate",
				Name: "Climate Tech",
				SubIndustries: []secapi.SubIndustry{
					{ID: "storage", Name: "Energy Storage", Companies: named("Form Energy", "Fluence", "ESS Inc")},
					{ID: "carbon", Name: "Carbon Removal", Companies: named("Climeworks", "Heirloom", "CarbonCure", "Charm Industrial")},
					{ID: "mobility", Name: "EV Charging", Companies: named("ChargePoint", "EVgo")},
				},
			},
		},
		ValueChains: []secapi.ValueChain{
			{ID: "semiconductors", Name: "Semiconductors", Keywords: []string{"chips", "foundry", "fab", "EDA"}, BroadStages: 6, NarrowStages: 9, NarrowFocus: "Advanced packaging"},
			{ID: "ev", Name: "Electric Vehicles", Keywords: []string{"battery", "lithium", "charging"}, BroadStages: 7, NarrowStages: 8, NarrowFocus: "Battery cell manufacturing"},
			{ID: "pharma", Name: "Pharmaceuticals", Keywords: []string{"drug", "biotech", "clinical trials"}, BroadStages: 5},
		},
	}
	for _, filings := range fx.Filings {
		for _, f := range filings {
			fx.TableTitles[f.Accession] = tableTitles(f.Type)
		}
	}
	return fx
}

func tableTitles(filingType string) []string {
	switch filingType {
	case "8-K":
		return []string{"Press release highlights"}
	case "10-Q":
		return []string{"Net sales by category", "Segment operating income", "Share repurchases"}
	default:
		return []string{"Net sales by category", "Segment information", "Deferred revenue", "Lease obligations"}
	}
}

func (fx Fixtures) company(cik string) (secapi.Company, bool) {
	for _, c := range fx.Companies {
		if c.CIK == cik {
			return c, true
		}
	}
	return secapi.Company{}, false
}

func (fx Fixtures) industry(id string) (secapi.Industry, bool) {
	for _, ind := range fx.Industries {
		if ind.ID == id {
			return ind, true
		}
	}
	return secapi.Industry{}, false
}

func (fx Fixtures) valueChain(id string) (secapi.ValueChain, bool) {
	for _, vc := range fx.ValueChains {
		if vc.ID == id {
			return vc, true
		}
	}
	return secapi.ValueChain{}, false
}
