package luabind

import (
	"fmt"
	"strings"
)

// ConversionError reports a Lua value that cannot be converted to the
// requested Go type, or a Go value with no Lua representation.
type ConversionError struct {
	FieldPath string // e.g. "Human.age"
	Expected  string
	Received  string
	Message   string
	Err       error
}

func (e *ConversionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, e.Received)
	}
	if e.FieldPath != "" {
		return fmt.Sprintf("conversion error at %s: %s", e.FieldPath, msg)
	}
	return fmt.Sprintf("conversion error: %s", msg)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ArityError reports too few positional values: call arguments or the
// sequence part of a table.
type ArityError struct {
	Context  string
	Expected int
	Received int
}

func (e *ArityError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("arity error for %s: expected %d values, got %d", e.Context, e.Expected, e.Received)
	}
	return fmt.Sprintf("arity error: expected %d values, got %d", e.Expected, e.Received)
}

// NoMatchingVariantError reports a table holding none of a sum type's
// variant keys.
type NoMatchingVariantError struct {
	Type     string
	Keys     []string
	Received string
}

func (e *NoMatchingVariantError) Error() string {
	return fmt.Sprintf("no matching variant for %s: expected one of keys [%s], got %s",
		e.Type, strings.Join(e.Keys, ", "), e.Received)
}

// MalformedVariantError reports a variant key present with a payload of the
// wrong shape.
type MalformedVariantError struct {
	Type     string
	Variant  string
	Key      string
	Expected string
	Received string
}

func (e *MalformedVariantError) Error() string {
	return fmt.Sprintf("malformed variant %s.%s: key %q expected %s, got %s",
		e.Type, e.Variant, e.Key, e.Expected, e.Received)
}
