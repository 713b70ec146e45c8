package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xiaot623/tripmate/internal/domain"
)

// Shape tells which document layout a model replied with.
type Shape int

const (
	// ShapeLegacy is a bare array of days.
	ShapeLegacy Shape = iota + 1
	// ShapeFull is an object with hotels and itinerary.
	ShapeFull
)

func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeFull:
		return "full"
	}
	return "unknown"
}

// Document is a parsed reply before it is resolved to an Itinerary. Hotels
// is always empty for ShapeLegacy.
type Document struct {
	Shape  Shape
	Hotels []domain.Hotel
	Days   []domain.Day
}

// Itinerary resolves the document into the canonical form.
func (d *Document) Itinerary() domain.Itinerary {
	it := domain.Itinerary{Hotels: d.Hotels, Days: d.Days}
	if it.Hotels == nil {
		it.Hotels = []domain.Hotel{}
	}
	if it.Days == nil {
		it.Days = []domain.Day{}
	}
	return it
}

// Cleanup strips markdown code fences the model may add despite being asked
// not to.
func Cleanup(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

var errNotItinerary = errors.New("document is neither an array of days nor an itinerary object")

// Parse decodes a cleaned reply. Any failure is a *ParseError.
func Parse(cleaned string) (*Document, error) {
	trimmed := strings.TrimSpace(cleaned)
	if trimmed == "" {
		return nil, &ParseError{Raw: cleaned, Err: errors.New("empty reply")}
	}

	switch trimmed[0] {
	case '[':
		var days []domain.Day
		if err := json.Unmarshal([]byte(trimmed), &days); err != nil {
			return nil, &ParseError{Raw: cleaned, Err: err}
		}
		return &Document{Shape: ShapeLegacy, Days: days}, nil
	case '{':
		var full struct {
			Hotels []domain.Hotel `json:"hotels"`
			Days   []domain.Day   `json:"itinerary"`
		}
		if err := json.Unmarshal([]byte(trimmed), &full); err != nil {
			return nil, &ParseError{Raw: cleaned, Err: err}
		}
		return &Document{Shape: ShapeFull, Hotels: full.Hotels, Days: full.Days}, nil
	}
	return nil, &ParseError{Raw: cleaned, Err: errNotItinerary}
}

// MinHotels is the number of hotel recommendations a full itinerary carries.
const MinHotels = 3

// ValidateShape checks doc against the requested trip length. It returns a
// *ShapeError listing every issue, or nil.
func ValidateShape(doc *Document, tripLength int) error {
	var issues []string

	if len(doc.Days) != tripLength {
		issues = append(issues, fmt.Sprintf("expected %d days, got %d", tripLength, len(doc.Days)))
	}

	numbers := make([]int, 0, len(doc.Days))
	for _, d := range doc.Days {
		numbers = append(numbers, d.DayNumber)
	}
	sort.Ints(numbers)
	for i, n := range numbers {
		if n != i+1 {
			issues = append(issues, fmt.Sprintf("day numbers are not contiguous from 1 (found %v)", numbers))
			break
		}
	}

	if doc.Shape == ShapeFull && len(doc.Hotels) < MinHotels {
		issues = append(issues, fmt.Sprintf("expected at least %d hotels, got %d", MinHotels, len(doc.Hotels)))
	}

	if len(issues) == 0 {
		return nil
	}
	return &ShapeError{Issues: issues}
}
