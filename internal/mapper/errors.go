package mapper

import "fmt"

// MappingError is a non-recoverable mapping failure: a missing required
// field, an unknown variant, a failed conversion. It names the mapper and
// the offending field and is surfaced directly to the ToStorage/ToDomain
// caller; no partially constructed object escapes.
type MappingError struct {
	Mapper string
	Field  string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mapper %s: field %q: %v", e.Mapper, e.Field, e.Err)
	}
	return fmt.Sprintf("mapper %s: %v", e.Mapper, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// ConversionError is a field-level value failure: a stored enum value with
// no domain variant, or a discriminator naming no known variant.
type ConversionError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %q: %v: %s", e.Field, e.Value, e.Reason)
}
