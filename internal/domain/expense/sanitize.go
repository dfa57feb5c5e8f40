package expense

import (
	"strings"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

// Sanitize tidies an extracted record before it is mapped: unknown
// categories become Other, meal types are normalized, a missing payment
// method gets the default and attendee counts are at least one. It returns
// a new record and leaves rec untouched.
func Sanitize(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	out := rec.Clone()

	category, _ := taxonomy.ParseCategory(out.Category)
	out.Category = category.String()

	out.MealType = NormalizeMealType(out.MealType)
	if strings.TrimSpace(out.PaymentType) == "" {
		out.PaymentType = taxonomy.DefaultPaymentMethod
	}
	if out.AttendeesCount < 1 {
		out.AttendeesCount = 1
	}
	out.Currency = strings.ToUpper(strings.TrimSpace(out.Currency))
	if out.Amount.Valid {
		out.Amount.Decimal = out.Amount.Decimal.Round(2)
	}
	return out
}
