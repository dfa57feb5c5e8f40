package taxonomy

import "strings"

// DefaultPaymentTypeID is used when a payment method cannot be resolved
const DefaultPaymentTypeID = "gWuT0oX4FNnukaeUcpOO3WSub$p5tY"

// DefaultPaymentMethod is assumed when extraction finds no payment method
const DefaultPaymentMethod = "Personal Credit Card"

// PaymentMethods lists the payment methods offered to the user
var PaymentMethods = []string{
	"Cash",
	"Personal Credit Card",
	"Corporate Credit Card",
	"Bank Transfer",
	"Check",
}

// PaymentResolver maps payment method names to backend payment type IDs
type PaymentResolver struct {
	methods   map[string]string
	aliases   map[string]string
	defaultID string
}

// NewPaymentResolver creates a resolver with the built-in method and alias maps
func NewPaymentResolver(defaultID string) *PaymentResolver {
	if defaultID == "" {
		defaultID = DefaultPaymentTypeID
	}

	methods := make(map[string]string, len(PaymentMethods))
	for _, m := range PaymentMethods {
		methods[normalize(m)] = defaultID
	}

	return &PaymentResolver{
		methods: methods,
		aliases: map[string]string{
			"personal card":  "personal credit card",
			"personal_card":  "personal credit card",
			"credit card":    "personal credit card",
			"credit":         "personal credit card",
			"debit":          "personal credit card",
			"debit card":     "personal credit card",
			"visa":           "personal credit card",
			"mastercard":     "personal credit card",
			"amex":           "personal credit card",
			"corporate card": "corporate credit card",
			"corporate_card": "corporate credit card",
			"company card":   "corporate credit card",
			"wire":           "bank transfer",
			"bank_transfer":  "bank transfer",
			"ach":            "bank transfer",
			"cheque":         "check",
		},
		defaultID: defaultID,
	}
}

// Resolve returns the payment type ID for name and whether it was matched
// by name or alias. Unmatched names yield the default ID.
func (p *PaymentResolver) Resolve(name string) (string, bool) {
	key := normalize(name)
	if key == "" {
		return p.defaultID, false
	}

	if id, ok := p.methods[key]; ok {
		return id, true
	}

	if method, ok := p.aliases[key]; ok {
		if id, ok := p.methods[method]; ok {
			return id, true
		}
	}

	for alias, method := range p.aliases {
		if len(alias) >= minSubstringTerm && strings.Contains(key, alias) {
			return p.methods[method], true
		}
	}

	return p.defaultID, false
}
