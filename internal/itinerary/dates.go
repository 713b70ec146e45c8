package itinerary

import (
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TripLength returns the number of calendar days covered by start..end,
// both inclusive: ceil(end-start in days) + 1.
func TripLength(start, end string) (int, error) {
	s, err := parseDate(start)
	if err != nil {
		return 0, &InvalidRangeError{Start: start, End: end, Reason: "bad start date", Err: err}
	}
	e, err := parseDate(end)
	if err != nil {
		return 0, &InvalidRangeError{Start: start, End: end, Reason: "bad end date", Err: err}
	}
	if e.Before(s) {
		return 0, &InvalidRangeError{Start: start, End: end, Reason: "end date is before start date"}
	}
	days := math.Ceil(e.Sub(s).Hours() / 24)
	return int(days) + 1, nil
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	t, err := time.Parse(dateLayout, v)
	if err == nil {
		return t, nil
	}
	if ts, tsErr := time.Parse(time.RFC3339, v); tsErr == nil {
		return ts, nil
	}
	return time.Time{}, err
}
