package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable maps colloquial terms to expense type IDs. Version is carried
// into resolution results so a stored mapping can be traced to its aliases.
type AliasTable struct {
	Version string            `yaml:"version" json:"version"`
	Entries map[string]string `yaml:"aliases" json:"aliases"`
}

// DefaultAliases returns the built-in alias table
func DefaultAliases() AliasTable {
	return AliasTable{
		Version: "2024.1",
		Entries: map[string]string{
			// meals
			"meal":       "meals_employee_in_town",
			"meals":      "meals_employee_in_town",
			"breakfast":  "meals_employee_in_town",
			"lunch":      "meals_employee_in_town",
			"dinner":     "meals_employee_in_town",
			"restaurant": "meals_employee_in_town",
			"coffee":     "meals_employee_in_town",
			"food":       "meals_employee_in_town",
			"client":     "meals_client_in_town",

			// air and rail
			"flight":  "airfare",
			"airline": "airfare",
			"plane":   "airfare",
			"travel":  "airfare",
			"amtrak":  "train",
			"rail":    "train",

			// ground
			"uber":           "rideshare",
			"lyft":           "rideshare",
			"taxi":           "taxi_rideshare",
			"cab":            "taxi_rideshare",
			"limo":           "taxi_limo",
			"shuttle":        "other_ground",
			"bus":            "other_ground",
			"subway":         "other_ground",
			"ferry":          "other_ground",
			"transportation": "other_ground",
			"mileage":        "car_mileage",
			"rental car":     "car_rental",
			"hertz":          "car_rental",
			"avis":           "car_rental",
			"fuel":           "gas_fuel",
			"gas":            "gas_fuel",
			"gasoline":       "gas_fuel",
			"toll":           "parking_tolls",
			"garage":         "parking",

			// lodging
			"accommodation": "hotel",
			"motel":         "hotel",
			"inn":           "lodging",
			"airbnb":        "lodging",

			// office
			"stationery":   "office_supplies",
			"supplies":     "office_supplies",
			"subscription": "software",
			"license":      "software",
		},
	}
}

// LoadAliases reads an alias table from a YAML file of the form
//
//	version: "2024.2"
//	aliases:
//	  uber: rideshare
func LoadAliases(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AliasTable{}, fmt.Errorf("failed to read aliases file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes a YAML alias table and lower-cases its keys
func ParseAliases(data []byte) (AliasTable, error) {
	var raw AliasTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return AliasTable{}, fmt.Errorf("failed to unmarshal aliases: %w", err)
	}
	if raw.Version == "" {
		return AliasTable{}, fmt.Errorf("alias table version is required")
	}

	table := AliasTable{
		Version: raw.Version,
		Entries: make(map[string]string, len(raw.Entries)),
	}
	for term, typeID := range raw.Entries {
		table.Entries[normalize(term)] = strings.TrimSpace(typeID)
	}
	return table, nil
}

// Validate checks that every alias points at a type in the catalog
func (a AliasTable) Validate(t *Table) error {
	var unknown []string
	for term, typeID := range a.Entries {
		if _, ok := t.ByID(typeID); !ok {
			unknown = append(unknown, fmt.Sprintf("%s->%s", term, typeID))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("aliases %s reference unknown expense types", strings.Join(unknown, ", "))
	}
	return nil
}

// sortedTerms returns alias keys longest first, ties broken alphabetically,
// so substring matching prefers the most specific term.
func (a AliasTable) sortedTerms() []string {
	terms := make([]string, 0, len(a.Entries))
	for term := range a.Entries {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}
