// Package errors provides custom error types for product and cart operations.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrProductNotFound = errors.New("product not found")
var ErrCartNotFound = errors.New("cart not found")
var ErrDuplicateCode = errors.New("product code already exists")
var ErrValidation = errors.New("validation failed")

// ValidationError reports which fields failed validation and on which rule.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
