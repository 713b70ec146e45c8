package itinerary

import (
	"fmt"
	"strings"
)

// InvalidRangeError reports trip dates that cannot produce a trip length.
type InvalidRangeError struct {
	Start  string
	End    string
	Reason string
	Err    error
}

func (e *InvalidRangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid trip range %q..%q: %s: %v", e.Start, e.End, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid trip range %q..%q: %s", e.Start, e.End, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error { return e.Err }

// ParseError reports a model reply that is not a usable itinerary. Raw holds
// the cleaned reply.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse itinerary: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError lists the ways an itinerary deviates from what was requested.
type ShapeError struct {
	Issues []string
}

func (e *ShapeError) Error() string {
	return "itinerary shape: " + strings.Join(e.Issues, "; ")
}
