package extraction

import (
	"strings"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

// PromptData is the template input for receipt extraction prompts
type PromptData struct {
	Categories     []string
	ExpenseTypes   []string
	MealTypes      []string
	PaymentMethods []string
	Currencies     []string
}

// NewPromptData lists the vocabulary a model may answer with
func NewPromptData(table *taxonomy.Table) PromptData {
	data := PromptData{
		MealTypes:      taxonomy.MealTypes,
		PaymentMethods: taxonomy.PaymentMethods,
		Currencies:     taxonomy.Currencies,
	}
	for _, c := range taxonomy.Categories() {
		data.Categories = append(data.Categories, c.String())
	}
	for _, et := range table.All() {
		data.ExpenseTypes = append(data.ExpenseTypes, et.Name)
	}
	return data
}

// Join is exposed to templates as {{join .Categories ", "}}
func Join(items []string, sep string) string {
	return strings.Join(items, sep)
}
