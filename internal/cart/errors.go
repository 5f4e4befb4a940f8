package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRoomAlreadyInCart = errors.New("room is already in the cart")
	ErrRoomNotInCart     = errors.New("room is not in the cart")
	ErrCartNotFound      = errors.New("cart not found")
)

// ValidationError collects field level problems found before any network
// or database call is made.
type ValidationError struct {
	fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

// AsValidationError returns the ValidationError wrapped in err, or nil.
func AsValidationError(err error) *ValidationError {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func (e *ValidationError) add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.fields) == 0
}

func (e *ValidationError) Fields() map[string][]string {
	return e.fields
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
