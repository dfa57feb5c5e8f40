// Package expense turns generic extracted expense records into typed
// submission payloads and validates them.
package expense

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

// Record is the loosely-typed data extracted from a receipt or supplied by
// the user. Absent fields are left empty; nothing is inferred here.
type Record struct {
	Category        string              `json:"expense_category,omitempty"`
	ExpenseType     string              `json:"expense_type,omitempty"`
	MealType        string              `json:"meal_type,omitempty"`
	TransactionDate string              `json:"transaction_date,omitempty"`
	BusinessPurpose string              `json:"business_purpose,omitempty"`
	Vendor          string              `json:"vendor,omitempty"`
	City            string              `json:"city,omitempty"`
	Country         string              `json:"country,omitempty"`
	PaymentType     string              `json:"payment_type,omitempty"`
	Amount          decimal.NullDecimal `json:"amount"`
	Currency        string              `json:"currency,omitempty"`
	AttendeesCount  int                 `json:"attendees_count,omitempty"`
	ClientName      string              `json:"client_prospect_name,omitempty"`
	Comment         string              `json:"comment,omitempty"`
	StartingCity    string              `json:"starting_city,omitempty"`
	TravelType      string              `json:"travel_type,omitempty"`
}

// Clone returns a copy that shares no state with r
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Keywords returns the free-text fields useful for category-directed
// classification.
func (r *Record) Keywords() []string {
	var kws []string
	for _, s := range []string{r.MealType, r.Vendor, r.BusinessPurpose} {
		if s = strings.TrimSpace(s); s != "" {
			kws = append(kws, s)
		}
	}
	return kws
}

// Placeholder is substituted when extraction fails so the flow can go on
func Placeholder() *Record {
	return &Record{
		Category:    "Other",
		ExpenseType: "Other",
		Currency:    DefaultCurrency,
		PaymentType: taxonomy.DefaultPaymentMethod,
		Comment:     "Receipt could not be read automatically; please review all fields.",
	}
}

// NewAmount wraps a float as a present amount
func NewAmount(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
