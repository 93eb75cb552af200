package onboarding

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidTransition is returned for events that do not apply to the
	// current stage. State is left untouched.
	ErrInvalidTransition = errors.New("onboarding: invalid transition")

	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("onboarding: submission in progress")

	// ErrClosed is returned by every call on a torn-down wizard.
	ErrClosed = errors.New("onboarding: wizard closed")

	ErrIndexOutOfRange = errors.New("onboarding: copy index out of range")
	ErrSubmitTimeout   = errors.New("onboarding: persistence call timed out")
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError blocks a transition; the user corrects the listed
// fields and resubmits.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SubmissionError wraps any failure of the persistence call.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "submission failed: " + e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }

func fieldErr(field, code, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Code: code, Message: msg}}}
}

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DescribeSubmitError is the default banner text.
func DescribeSubmitError(err error) string {
	if errors.Is(err, ErrSubmitTimeout) {
		return "the catalog did not answer in time; your data is kept, please confirm again"
	}
	return "the book could not be saved; your data is kept, please confirm again"
}
