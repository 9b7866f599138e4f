package proteograph

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared by the search and repository layers.
var (
	// ErrNotFound is returned by repository lookups when no node matches.
	// Searches never return it: an unmatched anchor yields an empty subgraph.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRequest marks search requests that cannot be turned into a query.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrUnknownSearchType is returned when a request names a search type that does not exist.
	ErrUnknownSearchType = errors.New("unknown search type")

	// ErrQueryTimeout is returned when a graph query does not finish within its deadline.
	ErrQueryTimeout = errors.New("graph query timed out")

	// ErrUpstream covers driver, connectivity and query execution failures.
	ErrUpstream = errors.New("graph database failure")

	// ErrMalformedResult is returned when the database answers with rows the
	// shaper cannot interpret.
	ErrMalformedResult = errors.New("malformed graph result")
)

// ErrorClass groups errors by how they should be reported to a caller.
type ErrorClass int

const (
	// ClassUpstream is the default: something outside the caller's control failed.
	ClassUpstream ErrorClass = iota
	// ClassInvalid means the request itself was malformed.
	ClassInvalid
	// ClassUnknownKind means the request named an unsupported search type.
	ClassUnknownKind
	// ClassTimeout means the query exceeded its deadline.
	ClassTimeout
)

// String returns the string representation of ErrorClass.
func (c ErrorClass) String() string {
	switch c {
	case ClassInvalid:
		return "invalid"
	case ClassUnknownKind:
		return "unknown_kind"
	case ClassTimeout:
		return "timeout"
	default:
		return "upstream"
	}
}

// SearchError wraps a failure with the operation it happened in and its class.
type SearchError struct {
	Class ErrorClass
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SearchError) Unwrap() error {
	return e.Err
}

func newSearchError(class ErrorClass, op string, err error) *SearchError {
	return &SearchError{Class: class, Op: op, Err: err}
}

// invalidf builds a ClassInvalid error that also matches ErrInvalidRequest.
func invalidf(op, format string, args ...any) error {
	return newSearchError(ClassInvalid, op, fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...)))
}

// Classify reports the class of err. Unclassified errors are treated as
// upstream failures, except for context deadlines which count as timeouts.
func Classify(err error) ErrorClass {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Class
	}
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return ClassInvalid
	case errors.Is(err, ErrUnknownSearchType):
		return ClassUnknownKind
	case errors.Is(err, ErrQueryTimeout), errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	default:
		return ClassUpstream
	}
}
