package domain

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the record model. Callers match them with
// errors.Is; every returned error wraps exactly one of these.
var (
	// ErrNotFound: no stored curve family or record matches the request.
	ErrNotFound = errors.New("no matching data")
	// ErrOutOfRange: a requested operating value lies outside the sampled
	// or rated domain.
	ErrOutOfRange = errors.New("value out of range")
	// ErrInvalidRecord: a record is malformed or internally inconsistent.
	ErrInvalidRecord = errors.New("invalid record")
)

func notFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func outOfRangef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrOutOfRange)...)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidRecord)...)
}
