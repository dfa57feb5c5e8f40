package service

import (
	"fmt"
	"strings"

	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

// FormSpec describes the fields a client should collect for one expense type
type FormSpec struct {
	Type           *taxonomy.ExpenseType `json:"type"`
	MealTypes      []string              `json:"meal_types,omitempty"`
	TravelTypes    []string              `json:"travel_types,omitempty"`
	Currencies     []string              `json:"currencies"`
	PaymentMethods []string              `json:"payment_methods"`
	DescriptionMax int                   `json:"description_max"`
}

// ClassifyResult is the outcome of resolving a free-form type name
type ClassifyResult struct {
	Type         *taxonomy.ExpenseType `json:"type"`
	Code         string                `json:"code"`
	Source       taxonomy.MatchSource  `json:"source"`
	AliasVersion string                `json:"alias_version"`
}

// CatalogService exposes the expense taxonomy to clients
type CatalogService interface {
	Categories() []taxonomy.Category
	ListTypes(category string) ([]*taxonomy.ExpenseType, error)
	Form(typeID string) (*FormSpec, error)
	Classify(name, category string) ClassifyResult
}

type catalogServiceImpl struct {
	resolver *taxonomy.Resolver
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(resolver *taxonomy.Resolver) CatalogService {
	return &catalogServiceImpl{resolver: resolver}
}

func (s *catalogServiceImpl) Categories() []taxonomy.Category {
	return taxonomy.Categories()
}

// ListTypes returns every type, or only those of category when it is set
func (s *catalogServiceImpl) ListTypes(category string) ([]*taxonomy.ExpenseType, error) {
	table := s.resolver.Table()
	if strings.TrimSpace(category) == "" {
		return table.All(), nil
	}

	c, ok := taxonomy.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return table.InCategory(c), nil
}

func (s *catalogServiceImpl) Form(typeID string) (*FormSpec, error) {
	et, ok := s.resolver.Table().ByID(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExpenseType, typeID)
	}

	spec := &FormSpec{
		Type:           et,
		Currencies:     taxonomy.Currencies,
		PaymentMethods: taxonomy.PaymentMethods,
		DescriptionMax: expense.DescriptionLimit,
	}
	switch {
	case et.Kind.IsMeal():
		spec.MealTypes = taxonomy.MealTypes
	case et.Kind == taxonomy.KindGroundTransport:
		spec.TravelTypes = taxonomy.TravelTypes
	}
	return spec, nil
}

func (s *catalogServiceImpl) Classify(name, category string) ClassifyResult {
	res := s.resolver.ResolveQuery(taxonomy.Query{Name: name, Category: category})
	return ClassifyResult{
		Type:         res.Type,
		Code:         res.Code,
		Source:       res.Source,
		AliasVersion: res.AliasVersion,
	}
}
