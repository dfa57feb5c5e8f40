package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

var dateLayouts = []string{
	DateLayout,
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
	time.RFC3339,
}

// Defaults are applied to fields a record does not carry
type Defaults struct {
	Currency string
	Location Location
}

// DefaultLocation is the backend location used for every entry
var DefaultLocation = Location{
	ID:                     "D23A4483615E4A2084260E97E5F0D5E0",
	Name:                   "Miami, Florida",
	City:                   "Miami",
	CountrySubDivisionCode: "US-FL",
	CountryCode:            "US",
}

// Mapper builds type-specific payloads from generic records
type Mapper struct {
	resolver *taxonomy.Resolver
	payments *taxonomy.PaymentResolver
	defaults Defaults
	now      func() time.Time
}

// MapperOption configures a Mapper
type MapperOption func(*Mapper)

// WithClock overrides the clock used for missing transaction dates
func WithClock(now func() time.Time) MapperOption {
	return func(m *Mapper) {
		m.now = now
	}
}

// WithDefaults overrides currency and location defaults
func WithDefaults(d Defaults) MapperOption {
	return func(m *Mapper) {
		if d.Currency != "" {
			m.defaults.Currency = d.Currency
		}
		if d.Location.ID != "" {
			m.defaults.Location = d.Location
		}
	}
}

// NewMapper creates a mapper over the given resolvers
func NewMapper(resolver *taxonomy.Resolver, payments *taxonomy.PaymentResolver, opts ...MapperOption) *Mapper {
	m := &Mapper{
		resolver: resolver,
		payments: payments,
		defaults: Defaults{
			Currency: DefaultCurrency,
			Location: DefaultLocation,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Classify resolves the record's expense type
func (m *Mapper) Classify(rec *Record) taxonomy.Resolution {
	if rec == nil {
		return m.resolver.Resolve("")
	}
	return m.resolver.ResolveQuery(taxonomy.Query{
		Name:     rec.ExpenseType,
		Category: rec.Category,
		Keywords: rec.Keywords(),
	})
}

// Map classifies rec, projects it onto a fresh payload for reportID and
// validates the result. It always returns a result; a nil record maps as
// an empty one.
func (m *Mapper) Map(rec *Record, reportID string) *MappingResult {
	if rec == nil {
		rec = &Record{}
	}

	res := m.Classify(rec)
	et := res.Type

	payload := &Payload{
		ReportID:                reportID,
		ExpenseTypeCode:         res.Code,
		TransactionDate:         m.transactionDate(rec.TransactionDate),
		TransactionCurrencyCode: m.currency(rec.Currency),
		Description:             Truncate(description(rec), DescriptionLimit),
		VendorDescription:       Truncate(strings.TrimSpace(rec.Vendor), DescriptionLimit),
		Location:                m.defaults.Location,
		TaxReceiptType:          "R",
		Comment:                 strings.TrimSpace(rec.Comment),
	}
	if rec.Amount.Valid {
		payload.TransactionAmount = rec.Amount.Decimal.Round(2)
	}
	payload.PaymentTypeID, _ = m.payments.Resolve(rec.PaymentType)

	kind := taxonomy.KindGeneral
	if et != nil {
		kind = et.Kind
	}

	switch kind {
	case taxonomy.KindMealEmployee, taxonomy.KindMealClient:
		payload.Location.City = cityOr(rec.City, m.defaults.Location.City)
		payload.MealType = NormalizeMealType(rec.MealType)
		payload.AttendeesCount = rec.AttendeesCount
		if payload.AttendeesCount <= 0 {
			payload.AttendeesCount = 1
		}
		if kind == taxonomy.KindMealClient {
			payload.ClientName = strings.TrimSpace(rec.ClientName)
		}
	case taxonomy.KindGroundTransport:
		payload.StartingCity = strings.TrimSpace(rec.StartingCity)
		payload.TravelType = NormalizeTravelType(rec.TravelType)
	default:
		payload.Location.City = cityOr(rec.City, m.defaults.Location.City)
	}

	return &MappingResult{
		Payload:    payload,
		TypeInfo:   et,
		Resolution: res.Source,
		Errors:     Validate(payload, et),
	}
}

func (m *Mapper) transactionDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m.now().Format(DateLayout)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout)
		}
	}
	return raw
}

func (m *Mapper) currency(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return m.defaults.Currency
	}
	return raw
}

func description(rec *Record) string {
	if p := strings.TrimSpace(rec.BusinessPurpose); p != "" {
		return p
	}
	if v := strings.TrimSpace(rec.Vendor); v != "" {
		return fmt.Sprintf("Expense at %s", v)
	}
	return "Business expense"
}

func cityOr(city, fallback string) string {
	if c := strings.TrimSpace(city); c != "" {
		return c
	}
	return fallback
}

// Truncate shortens s to at most limit characters, replacing the tail with
// "..." when it does not fit.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// NormalizeMealType maps free text to one of taxonomy.MealTypes. Empty input
// stays empty; unknown input becomes "Other".
func NormalizeMealType(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	for _, mt := range taxonomy.MealTypes {
		if strings.Contains(key, strings.ToLower(mt)) {
			return mt
		}
	}
	switch {
	case strings.Contains(key, "brunch"), strings.Contains(key, "morning"):
		return "Breakfast"
	case strings.Contains(key, "supper"), strings.Contains(key, "evening"):
		return "Dinner"
	}
	return "Other"
}

// NormalizeTravelType lower-cases known travel types and passes others through
func NormalizeTravelType(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, tt := range taxonomy.TravelTypes {
		if key == tt {
			return tt
		}
	}
	return strings.TrimSpace(raw)
}
