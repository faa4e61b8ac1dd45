package base

import (
	"fmt"
	"strings"

	"daraja/internal/provider"
)

// Field is one named builder argument
type Field struct {
	Name  string
	Value string
}

// RequireFields fails on the first blank field. Values are never rewritten:
// outbound field values are a bit-exact contract with the provider.
func RequireFields(family provider.Family, fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return &provider.ProviderError{
				Code:    provider.ErrMissingField,
				Message: fmt.Sprintf("%s: %s is required", family, f.Name),
			}
		}
	}
	return nil
}

// Enum is implemented by the fixed-value wire enums
type Enum interface {
	Valid() bool
	String() string
}

// RequireEnum fails when e is not one of its declared values
func RequireEnum(family provider.Family, name string, e Enum) error {
	if e.Valid() {
		return nil
	}
	return &provider.ProviderError{
		Code:    provider.ErrInvalidField,
		Message: fmt.Sprintf("%s: %s has unsupported value %q", family, name, e.String()),
	}
}

// RequirePositive fails unless amount is greater than zero
func RequirePositive(family provider.Family, name string, amount float64) error {
	if amount > 0 {
		return nil
	}
	return &provider.ProviderError{
		Code:    provider.ErrInvalidField,
		Message: fmt.Sprintf("%s: %s must be greater than zero", family, name),
	}
}
