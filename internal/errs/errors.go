package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	// ErrInUse indicates a delete blocked because other rows still reference the entity.
	ErrInUse = errors.New("in_use")
	// ErrInvalidArgument is a malformed or out-of-bounds caller parameter (HTTP 400).
	ErrInvalidArgument = errors.New("invalid_argument")
	// ErrInvalidRange is a date range whose start is after its end.
	ErrInvalidRange = errors.New("invalid_range")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
)

// FieldError names the parameter or field responsible for a failure.
type FieldError struct {
	Field string
	Msg   string
	Kind  error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

func (e *FieldError) Unwrap() error { return e.Kind }

// Invalid reports a bad caller parameter.
func Invalid(field, msg string) error {
	return &FieldError{Field: field, Msg: msg, Kind: ErrInvalidArgument}
}

// Unprocessable reports a field that breaks a domain rule.
func Unprocessable(field, msg string) error {
	return &FieldError{Field: field, Msg: msg, Kind: ErrUnprocessable}
}

// Field returns the offending field name when err carries one.
func Field(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
