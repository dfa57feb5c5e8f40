package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

// MaxAmount is the largest amount accepted without manual review
var MaxAmount = decimal.NewFromInt(10000)

// defaultClientAttendees applies when a client meal type has no minimum set
const defaultClientAttendees = 2

// ValidationError is a single field-level problem
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult lists every violated rule in check order
type ValidationResult []ValidationError

// OK returns true when nothing was violated
func (v ValidationResult) OK() bool {
	return len(v) == 0
}

// Has reports whether field has at least one error
func (v ValidationResult) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// String joins the messages for logs and chat replies
func (v ValidationResult) String() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationResult) add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Validate checks a mapped payload against the rules of its type. It reports
// every violation and never fails; et may be nil for an unresolved type.
func Validate(p *Payload, et *taxonomy.ExpenseType) ValidationResult {
	errs := ValidationResult{}
	if p == nil {
		errs.add("payload", "Expense entry is missing")
		return errs
	}

	if strings.TrimSpace(p.VendorDescription) == "" {
		errs.add("vendor", "Vendor is required")
	}

	switch {
	case !p.TransactionAmount.IsPositive():
		errs.add("amount", "Amount must be greater than zero")
	case p.TransactionAmount.GreaterThan(MaxAmount):
		errs.add("amount", fmt.Sprintf("Amount exceeds %s and needs manual review", MaxAmount.StringFixed(2)))
	}

	if strings.TrimSpace(p.TransactionDate) == "" {
		errs.add("transaction_date", "Transaction date is required")
	} else if _, err := time.Parse(DateLayout, p.TransactionDate); err != nil {
		errs.add("transaction_date", "Transaction date must be in YYYY-MM-DD format")
	}

	if et == nil || p.ExpenseTypeCode == "" {
		errs.add("expense_type", "Expense type is required")
		return errs
	}

	switch et.Kind {
	case taxonomy.KindMealEmployee, taxonomy.KindMealClient:
		if p.MealType == "" {
			errs.add("meal_type", "Meal type is required for meals")
		}
		if et.Kind == taxonomy.KindMealClient {
			if strings.TrimSpace(p.ClientName) == "" {
				errs.add("client_prospect_name", "Client/Prospect name is required for client meals")
			}
			minAttendees := et.Attendees.Min
			if minAttendees < defaultClientAttendees {
				minAttendees = defaultClientAttendees
			}
			if p.AttendeesCount < minAttendees {
				errs.add("attendees_count", fmt.Sprintf("Client meals need at least %d attendees", minAttendees))
			}
		}
		if et.Attendees.Max > 0 && p.AttendeesCount > et.Attendees.Max {
			errs.add("attendees_count", fmt.Sprintf("No more than %d attendees are allowed", et.Attendees.Max))
		}
	case taxonomy.KindGroundTransport:
		if strings.TrimSpace(p.StartingCity) == "" {
			errs.add("starting_city", "Starting city is required for ground transportation")
		}
		if p.TravelType == "" {
			errs.add("travel_type", "Travel type is required for ground transportation")
		} else if !isTravelType(p.TravelType) {
			errs.add("travel_type", "Travel type must be domestic or international")
		}
	}

	return errs
}

func isTravelType(s string) bool {
	for _, tt := range taxonomy.TravelTypes {
		if s == tt {
			return true
		}
	}
	return false
}
