package services

import "errors"

// ErrCategoryForbidden aborts a provisioning run when the contest category cannot be created
var ErrCategoryForbidden = errors.New("bot does not have permission to create the contest category")

// ValidationError is a user-caused error; UserMessage is shown verbatim and nothing was changed
type ValidationError struct {
	UserMessage string
}

func (e *ValidationError) Error() string {
	return e.UserMessage
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{UserMessage: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
