package expense

import (
	"github.com/shopspring/decimal"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

// DescriptionLimit is the maximum length of description and vendor labels
const DescriptionLimit = 64

// DefaultCurrency applies when a record has no currency
const DefaultCurrency = "USD"

// DateLayout is the wire format of transaction dates
const DateLayout = "2006-01-02"

// Location identifies where an expense was incurred
type Location struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	City                   string `json:"city"`
	CountrySubDivisionCode string `json:"countrySubDivisionCode"`
	CountryCode            string `json:"countryCode"`
}

// Payload is the type-specific entry sent to the expense backend. Only the
// extras relevant to the resolved type are populated.
type Payload struct {
	ReportID                string          `json:"ReportID"`
	ExpenseTypeCode         string          `json:"ExpenseTypeCode"`
	TransactionDate         string          `json:"TransactionDate"`
	TransactionAmount       decimal.Decimal `json:"TransactionAmount"`
	TransactionCurrencyCode string          `json:"TransactionCurrencyCode"`
	PaymentTypeID           string          `json:"PaymentTypeID"`
	Description             string          `json:"Description"`
	VendorDescription       string          `json:"VendorDescription"`
	Location                Location        `json:"location"`
	IsPersonal              bool            `json:"IsPersonal"`
	IsBillable              bool            `json:"IsBillable"`
	TaxReceiptType          string          `json:"TaxReceiptType"`
	Comment                 string          `json:"Comment,omitempty"`

	// meals
	MealType       string `json:"MealType,omitempty"`
	AttendeesCount int    `json:"AttendeesCount,omitempty"`
	ClientName     string `json:"ClientProspectName,omitempty"`

	// ground transport
	StartingCity string `json:"StartingCity,omitempty"`
	TravelType   string `json:"TravelType,omitempty"`
}

// MappingResult is returned by every mapping path, fallbacks included
type MappingResult struct {
	Payload    *Payload              `json:"payload"`
	TypeInfo   *taxonomy.ExpenseType `json:"type_info"`
	Resolution taxonomy.MatchSource  `json:"resolution"`
	Errors     ValidationResult      `json:"errors"`
}

// Valid reports whether the payload passed validation
func (r *MappingResult) Valid() bool {
	return r != nil && len(r.Errors) == 0
}
