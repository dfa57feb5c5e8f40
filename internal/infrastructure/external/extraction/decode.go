package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akhil1198/ER/internal/domain/expense"
)

// ErrNoJSON is returned when a model reply holds no JSON object
var ErrNoJSON = errors.New("no JSON object in model response")

type rawRecord struct {
	Category        *string `json:"expense_category"`
	ExpenseType     *string `json:"expense_type"`
	MealType        *string `json:"meal_type"`
	TransactionDate *string `json:"transaction_date"`
	BusinessPurpose *string `json:"business_purpose"`
	Vendor          *string `json:"vendor"`
	City            *string `json:"city"`
	Country         *string `json:"country"`
	PaymentType     *string `json:"payment_type"`
	Amount          any     `json:"amount"`
	Currency        *string `json:"currency"`
	AttendeesCount  any     `json:"attendees_count"`
	ClientName      *string `json:"client_prospect_name"`
	Comment         *string `json:"comment"`
	StartingCity    *string `json:"starting_city"`
	TravelType      *string `json:"travel_type"`
}

// Parse pulls the JSON object out of a model reply and decodes it into a
// record. With strict set the object must also satisfy the receipt schema.
func Parse(content string, strict bool) (*expense.Record, error) {
	obj := ExtractJSON(content)
	if obj == "" {
		return nil, ErrNoJSON
	}
	if strict {
		if err := ValidateRecordJSON([]byte(obj)); err != nil {
			return nil, err
		}
	}
	return DecodeRecord([]byte(obj))
}

// DecodeRecord decodes one receipt object. Amounts given as strings such as
// "$1,234.50" and attendee counts given as strings are coerced.
func DecodeRecord(data []byte) (*expense.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	return &expense.Record{
		Category:        str(raw.Category),
		ExpenseType:     str(raw.ExpenseType),
		MealType:        str(raw.MealType),
		TransactionDate: str(raw.TransactionDate),
		BusinessPurpose: str(raw.BusinessPurpose),
		Vendor:          str(raw.Vendor),
		City:            str(raw.City),
		Country:         str(raw.Country),
		PaymentType:     str(raw.PaymentType),
		Amount:          coerceAmount(raw.Amount),
		Currency:        str(raw.Currency),
		AttendeesCount:  coerceCount(raw.AttendeesCount),
		ClientName:      str(raw.ClientName),
		Comment:         str(raw.Comment),
		StartingCity:    str(raw.StartingCity),
		TravelType:      str(raw.TravelType),
	}, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func coerceAmount(v any) decimal.NullDecimal {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = cleanNumber(t)
	default:
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func coerceCount(v any) int {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = cleanNumber(t)
	default:
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(math.Round(f))
}

// cleanNumber drops currency symbols, grouping commas and spaces
func cleanNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractJSON returns the first balanced JSON object in content, skipping any
// markdown fence or prose around it.
func ExtractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = inString
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}
