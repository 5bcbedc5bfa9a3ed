package mockapi

import (
	"errors"

	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type scanPayload struct {
	CIK     string          `json:"cik" validate:"required"`
	Filings []secapi.Filing `json:"filings" validate:"required,min=1"`
}

type generatePayload struct {
	CIK            string             `json:"cik" validate:"required"`
	CompanyName    string             `json:"company_name"`
	Ticker         string             `json:"ticker"`
	Filings        []secapi.Filing    `json:"filings" validate:"required,min=1"`
	ScanID         string             `json:"scan_id" validate:"required"`
	SelectedTables []string           `json:"selected_tables"`
	SingleSheet    bool               `json:"single_sheet"`
	BrandColors    secapi.BrandColors `json:"brand_colors"`
}

type landscapePayload struct {
	IndustryID     string   `json:"industry_id" validate:"required"`
	SubIndustryIDs []string `json:"sub_industry_ids" validate:"required,min=1"`
}

type valueChainPayload struct {
	ChainID string       `json:"chain_id" validate:"required"`
	Scope   secapi.Scope `json:"scope" validate:"required,oneof=broad narrow both"`
}

// invalidField names the first field that fails validation, "" when v is valid.
func invalidField(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return fields[0].Field()
	}
	return "payload"
}
