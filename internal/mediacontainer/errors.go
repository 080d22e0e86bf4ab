package mediacontainer

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBoolean         = errors.New("invalid boolean")
	ErrInvalidTimestamp       = errors.New("invalid timestamp")
	ErrInvalidList            = errors.New("invalid list")
	ErrInvalidVersionFormat   = errors.New("invalid version format")
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// CoercionError reports a wire scalar that could not be converted to its
// declared type. Field is empty when the decoder does not expose the key.
type CoercionError struct {
	Kind  error
	Field string
	Value string
}

func (e *CoercionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v for %q: %q", e.Kind, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: %q", e.Kind, e.Value)
}

func (e *CoercionError) Unwrap() error {
	return e.Kind
}

// VersionError carries the raw version string that failed to parse.
type VersionError struct {
	Raw    string
	Reason string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Raw, e.Reason)
}

func (e *VersionError) Unwrap() error {
	return ErrInvalidVersionFormat
}

// SchemaMismatchError is a structural decode failure. Err holds the
// underlying cause, so errors.Is still matches coercion sentinels.
type SchemaMismatchError struct {
	Field  string
	Reason string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	if e.Field == "" {
		return "schema mismatch: " + e.Reason
	}
	return fmt.Sprintf("schema mismatch at %s: %s", e.Field, e.Reason)
}

func (e *SchemaMismatchError) Unwrap() error {
	return e.Err
}

// ServiceError is the service's own error envelope, surfaced verbatim.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error %d: %s", e.Code, e.Message)
}

func mismatch(field, reason string, err error) *SchemaMismatchError {
	return &SchemaMismatchError{Field: field, Reason: reason, Err: err}
}
