// Package taxonomy holds the static catalog of expense categories and types
// and resolves free-form type names to external submission codes.
package taxonomy

import (
	"strings"
)

// Category groups related expense types
type Category string

const (
	CategoryMeals          Category = "Meals & Entertainment"
	CategoryTransportation Category = "Transportation"
	CategoryLodging        Category = "Lodging"
	CategoryOfficeSupplies Category = "Office Supplies"
	CategoryTravel         Category = "Travel"
	CategoryOther          Category = "Other"
)

var validCategories = map[Category]bool{
	CategoryMeals:          true,
	CategoryTransportation: true,
	CategoryLodging:        true,
	CategoryOfficeSupplies: true,
	CategoryTravel:         true,
	CategoryOther:          true,
}

// IsValid returns true if the category is part of the catalog
func (c Category) IsValid() bool {
	return validCategories[c]
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory matches a category name case-insensitively.
// Unknown names return CategoryOther and false.
func ParseCategory(name string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories() {
		if strings.ToLower(string(c)) == key {
			return c, true
		}
	}
	// short forms such as "meals" or "office"
	if len(key) >= minSubstringTerm {
		for _, c := range Categories() {
			if strings.HasPrefix(strings.ToLower(string(c)), key) {
				return c, true
			}
		}
	}
	return CategoryOther, false
}

// Categories returns every category in display order
func Categories() []Category {
	return []Category{
		CategoryMeals,
		CategoryTransportation,
		CategoryLodging,
		CategoryOfficeSupplies,
		CategoryTravel,
		CategoryOther,
	}
}

// Kind selects which type-specific fields a payload carries
type Kind string

const (
	KindGeneral         Kind = "GENERAL"
	KindMealEmployee    Kind = "MEAL_EMPLOYEE"
	KindMealClient      Kind = "MEAL_CLIENT"
	KindGroundTransport Kind = "GROUND_TRANSPORT"
)

// IsMeal returns true for both employee-only and client-facing meals
func (k Kind) IsMeal() bool {
	return k == KindMealEmployee || k == KindMealClient
}

// Field names used in required/optional/hidden lists
const (
	FieldExpenseType            = "expense_type"
	FieldTransactionDate        = "transaction_date"
	FieldBusinessPurpose        = "business_purpose"
	FieldMealType               = "meal_type"
	FieldVendor                 = "vendor_description"
	FieldCity                   = "city_of_purchase"
	FieldCurrency               = "currency"
	FieldPaymentType            = "payment_type"
	FieldAmount                 = "amount"
	FieldAttendees              = "attendees"
	FieldClientName             = "client_prospect_name"
	FieldStartingCity           = "starting_city"
	FieldTravelType             = "travel_type"
	FieldComment                = "comment"
	FieldBusinessUnitAllocation = "business_unit_allocation"
	FieldBusinessUnit           = "business_unit"
	FieldCountryCode            = "country_code"
	FieldDomesticInternational  = "domestic_international"
	FieldOrgUnits               = "org_units"
)

// AttendeeConstraints limits who may be listed on an expense
type AttendeeConstraints struct {
	Required bool     `json:"required"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
	Kinds    []string `json:"kinds"`
}

// ExpenseType is one entry of the catalog. Values are never mutated after
// the table is built.
type ExpenseType struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Code           string              `json:"code"`
	Category       Category            `json:"category"`
	Kind           Kind                `json:"kind"`
	Form           string              `json:"form,omitempty"`
	RequiredFields []string            `json:"required_fields"`
	OptionalFields []string            `json:"optional_fields"`
	HiddenFields   []string            `json:"hidden_fields"`
	Attendees      AttendeeConstraints `json:"attendees"`
}

// Requires reports whether field is in the required list
func (t *ExpenseType) Requires(field string) bool {
	for _, f := range t.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// Table is the read-only catalog indexed by id, lower-cased name and category
type Table struct {
	types      []*ExpenseType
	byID       map[string]*ExpenseType
	byName     map[string]*ExpenseType
	byCategory map[Category][]*ExpenseType
	defaultTyp *ExpenseType
}

// NewTable indexes the given types. The type whose ID equals defaultID
// becomes the fallback for unresolved names.
func NewTable(types []ExpenseType, defaultID string) *Table {
	t := &Table{
		types:      make([]*ExpenseType, 0, len(types)),
		byID:       make(map[string]*ExpenseType, len(types)),
		byName:     make(map[string]*ExpenseType, len(types)),
		byCategory: make(map[Category][]*ExpenseType),
	}

	for i := range types {
		et := types[i]
		p := &et
		t.types = append(t.types, p)
		t.byID[p.ID] = p
		t.byName[normalize(p.Name)] = p
		t.byCategory[p.Category] = append(t.byCategory[p.Category], p)
	}

	t.defaultTyp = t.byID[defaultID]
	if t.defaultTyp == nil && len(t.types) > 0 {
		t.defaultTyp = t.types[len(t.types)-1]
	}

	return t
}

// Default returns the fallback expense type
func (t *Table) Default() *ExpenseType {
	return t.defaultTyp
}

// ByID looks up a type by its identifier
func (t *Table) ByID(id string) (*ExpenseType, bool) {
	et, ok := t.byID[id]
	return et, ok
}

// ByName looks up a type by its canonical name, case-insensitively
func (t *Table) ByName(name string) (*ExpenseType, bool) {
	et, ok := t.byName[normalize(name)]
	return et, ok
}

// ByCode returns the first type that carries the given submission code
func (t *Table) ByCode(code string) (*ExpenseType, bool) {
	for _, et := range t.types {
		if et.Code == code {
			return et, true
		}
	}
	return nil, false
}

// InCategory returns the types of a category in catalog order
func (t *Table) InCategory(c Category) []*ExpenseType {
	return t.byCategory[c]
}

// All returns every type in catalog order
func (t *Table) All() []*ExpenseType {
	return t.types
}

// Codes returns the lower-cased name to code mapping
func (t *Table) Codes() map[string]string {
	codes := make(map[string]string, len(t.byName))
	for name, et := range t.byName {
		codes[name] = et.Code
	}
	return codes
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
