// Package simerr defines the closed set of recoverable lookup failures
// returned by the simulation core.
package simerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code. The set is closed; callers switch on
// it and never parse error strings.
type Code uint8

const (
	// CodeUnknown is returned by CodeOf for errors that carry no code.
	CodeUnknown Code = iota

	// Lookup errors
	RegionNotFound
	SpeciesNotFound
	EntityNotFound
	ComponentNotFound

	// Validation errors raised while loading the world definition
	InvalidRegionID
	InvalidSpeciesID
)

var codeNames = [...]string{
	CodeUnknown:       "UNKNOWN",
	RegionNotFound:    "REGION_NOT_FOUND",
	SpeciesNotFound:   "SPECIES_NOT_FOUND",
	EntityNotFound:    "ENTITY_NOT_FOUND",
	ComponentNotFound: "COMPONENT_NOT_FOUND",
	InvalidRegionID:   "INVALID_REGION_ID",
	InvalidSpeciesID:  "INVALID_SPECIES_ID",
}

// String returns the upper-snake name of the code.
func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return codeNames[CodeUnknown]
}

// Error is a tier-1 failure: a missing or invalid reference that the caller
// is expected to branch on.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Detail
}

// Is matches any *Error with the same code, so sentinels work with errors.Is
// regardless of detail text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrRegionNotFound    = &Error{Code: RegionNotFound}
	ErrSpeciesNotFound   = &Error{Code: SpeciesNotFound}
	ErrEntityNotFound    = &Error{Code: EntityNotFound}
	ErrComponentNotFound = &Error{Code: ComponentNotFound}
	ErrInvalidRegionID   = &Error{Code: InvalidRegionID}
	ErrInvalidSpeciesID  = &Error{Code: InvalidSpeciesID}
)

// New returns an *Error with a formatted detail.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from err, or CodeUnknown if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
