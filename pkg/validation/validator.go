// Package validation builds the go-playground validator used for request and record checks.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/abgdnv/flatshop/pkg/money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New returns a validator that reports JSON field names.
// Decimals and json.Number values are checked as float64, so zero counts as absent.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, money.Amount{})
	v.RegisterCustomTypeFunc(numberValue, json.Number(""))
	return v
}

// Fields extracts field-specific rule failures from a validation error.
// The boolean is false when err is not a validator.ValidationErrors.
func Fields(err error) (map[string]string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		// fieldErr.Tag() returns "required", "unique", etc.
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return fields, true
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.InexactFloat64()
	case money.Amount:
		return d.InexactFloat64()
	}
	return nil
}

func numberValue(field reflect.Value) any {
	if n, ok := field.Interface().(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return 0.0
}
