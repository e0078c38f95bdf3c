package query

import (
	"errors"
	"fmt"
)

// Input error codes.
const (
	// ErrCodeMissingOperator: a bare token with no search fields to fall back on.
	ErrCodeMissingOperator = "MISSING_OPERATOR"
	// ErrCodeUnknownField: a field operation on an unknown field with no search fields.
	ErrCodeUnknownField = "UNKNOWN_FIELD"
)

// InputError reports a query the user has to fix. It is never a system fault
// and is never retried.
type InputError struct {
	Code    string
	Token   string // offending token as written by the user
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInputError reports whether err is (or wraps) an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

func missingOperator(token string) *InputError {
	return &InputError{
		Code:    ErrCodeMissingOperator,
		Token:   token,
		Message: fmt.Sprintf("cannot process token %q: operator is missing and no search fields are present", token),
	}
}

func unknownField(token string) *InputError {
	return &InputError{
		Code:    ErrCodeUnknownField,
		Token:   token,
		Message: fmt.Sprintf("unknown field %q", token),
	}
}
