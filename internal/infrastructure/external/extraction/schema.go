package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var textField = map[string]any{"type": []string{"string", "null"}}

// recordSchema describes the JSON object a vision model must return for one
// receipt. Amount and attendee count may arrive as strings and are coerced
// during decoding.
var recordSchema = map[string]any{
	"type":    "object",
	"properties": map[string]any{
		"expense_category":     textField,
		"expense_type":         textField,
		"meal_type":            textField,
		"transaction_date":     textField,
		"business_purpose":     textField,
		"vendor":               textField,
		"city":                 textField,
		"country":              textField,
		"payment_type":         textField,
		"currency":             textField,
		"client_prospect_name": textField,
		"comment":              textField,
		"starting_city":        textField,
		"travel_type":          textField,
		"amount": map[string]any{
			"type": []string{"number", "string", "null"},
		},
		"attendees_count": map[string]any{
			"type": []string{"integer", "string", "null"},
		},
	},
	"required": []string{"vendor", "amount"},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(recordSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("receipt.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("receipt.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidateRecordJSON checks model output against the receipt schema
func ValidateRecordJSON(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
