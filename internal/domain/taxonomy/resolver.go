package taxonomy

import "strings"

// minSubstringTerm is the shortest alias tried by containment; shorter terms
// ("gas", "cab") only match exactly.
const minSubstringTerm = 4

// MatchSource records which resolution step produced a type
type MatchSource string

const (
	MatchExact          MatchSource = "exact"
	MatchAlias          MatchSource = "alias"
	MatchAliasSubstring MatchSource = "alias_substring"
	MatchCategory       MatchSource = "category"
	MatchDefault        MatchSource = "default"
)

// Resolution is the outcome of resolving a free-form type name
type Resolution struct {
	Type         *ExpenseType
	Code         string
	Source       MatchSource
	AliasVersion string
}

// Query carries the inputs for category-directed resolution
type Query struct {
	Name     string
	Category string
	Keywords []string
}

// Resolver resolves type names against a table and alias set
type Resolver struct {
	table   *Table
	aliases AliasTable
	terms   []string
}

// NewResolver creates a resolver; aliases referencing unknown IDs are ignored
// at lookup time.
func NewResolver(table *Table, aliases AliasTable) *Resolver {
	return &Resolver{
		table:   table,
		aliases: aliases,
		terms:   aliases.sortedTerms(),
	}
}

// Table returns the catalog the resolver reads from
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve maps a free-form name to an expense type. It never fails.
func (r *Resolver) Resolve(name string) Resolution {
	return r.ResolveQuery(Query{Name: name})
}

// ResolveQuery runs exact, alias, alias-substring, category and default
// resolution in that order.
func (r *Resolver) ResolveQuery(q Query) Resolution {
	key := normalize(q.Name)

	if key != "" {
		if et, ok := r.table.ByName(key); ok {
			return r.result(et, MatchExact)
		}
		if et, ok := r.table.ByID(key); ok {
			return r.result(et, MatchExact)
		}

		if typeID, ok := r.aliases.Entries[key]; ok {
			if et, ok := r.table.ByID(typeID); ok {
				return r.result(et, MatchAlias)
			}
		}

		for _, term := range r.terms {
			if len(term) < minSubstringTerm || !strings.Contains(key, term) {
				continue
			}
			if et, ok := r.table.ByID(r.aliases.Entries[term]); ok {
				return r.result(et, MatchAliasSubstring)
			}
		}
	}

	if category, ok := ParseCategory(q.Category); ok {
		keywords := append([]string{key}, q.Keywords...)
		if et := r.scanCategory(category, keywords); et != nil {
			return r.result(et, MatchCategory)
		}
	}

	return r.result(r.table.Default(), MatchDefault)
}

// scanCategory looks for a type in the category whose name contains one of
// the keywords, or is contained by one ("Hilton Hotel" finds "Hotel").
func (r *Resolver) scanCategory(category Category, keywords []string) *ExpenseType {
	for _, kw := range keywords {
		kw = normalize(kw)
		if len(kw) < minSubstringTerm {
			continue
		}
		for _, et := range r.table.InCategory(category) {
			name := normalize(et.Name)
			if strings.Contains(name, kw) || strings.Contains(kw, name) {
				return et
			}
		}
	}
	return nil
}

func (r *Resolver) result(et *ExpenseType, source MatchSource) Resolution {
	res := Resolution{Type: et, Source: source, AliasVersion: r.aliases.Version}
	if et != nil {
		res.Code = et.Code
	} else {
		res.Code = DefaultCode
	}
	return res
}
