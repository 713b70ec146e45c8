package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// HotelCategory is the price tier of a recommended hotel.
type HotelCategory string

const (
	HotelBudget HotelCategory = "BUDGET"
	HotelMid    HotelCategory = "MID"
	HotelLuxury HotelCategory = "LUXURY"
)

// ParseHotelCategory maps the model's free text ("Budget", "Mid-range",
// "Luxury", ...) to a tier. Unrecognised text is kept as-is.
func ParseHotelCategory(s string) HotelCategory {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "budget"), strings.Contains(lower, "cheap"):
		return HotelBudget
	case strings.Contains(lower, "lux"), strings.Contains(lower, "premium"):
		return HotelLuxury
	case strings.Contains(lower, "mid"), strings.Contains(lower, "moderate"), strings.Contains(lower, "medium"):
		return HotelMid
	}
	return HotelCategory(strings.TrimSpace(s))
}

// Label is the display form used on the wire.
func (c HotelCategory) Label() string {
	switch c {
	case HotelBudget:
		return "Budget"
	case HotelMid:
		return "Mid"
	case HotelLuxury:
		return "Luxury"
	}
	return string(c)
}

func (c HotelCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Label())
}

func (c *HotelCategory) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = ParseHotelCategory(string(s))
	return nil
}

// FlexString decodes from a JSON string or number. Models are inconsistent
// about quoting prices and ratings.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

// Int parses s as a whole number, or returns 0.
func (s FlexString) Int() int {
	text := strings.TrimSpace(string(s))
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// Hotel is a single accommodation recommendation.
type Hotel struct {
	Name          string        `json:"name"`
	Category      HotelCategory `json:"category"`
	PricePerNight FlexString    `json:"price"`
	Rating        FlexString    `json:"rating"`
	Description   string        `json:"description"`
	BookingLink   string        `json:"booking_link"`

	// Decoded form, replayed by MarshalJSON.
	categoryText  string
	numericPrice  bool
	numericRating bool
}

type hotelWire struct {
	Name          string          `json:"name"`
	Category      json.RawMessage `json:"category"`
	PricePerNight json.RawMessage `json:"price"`
	Rating        json.RawMessage `json:"rating"`
	Description   string          `json:"description"`
	BookingLink   string          `json:"booking_link"`
}

// CategoryText is the category as the model wrote it, or the tier label for
// hotels built in code.
func (h Hotel) CategoryText() string {
	if h.categoryText != "" {
		return h.categoryText
	}
	return h.Category.Label()
}

func (h *Hotel) UnmarshalJSON(data []byte) error {
	var w hotelWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var category FlexString
	if err := decodeFlex(w.Category, &category); err != nil {
		return err
	}
	*h = Hotel{
		Name:          w.Name,
		Category:      ParseHotelCategory(string(category)),
		Description:   w.Description,
		BookingLink:   w.BookingLink,
		categoryText:  strings.TrimSpace(string(category)),
		numericPrice:  isJSONNumber(w.PricePerNight),
		numericRating: isJSONNumber(w.Rating),
	}
	if err := decodeFlex(w.PricePerNight, &h.PricePerNight); err != nil {
		return err
	}
	return decodeFlex(w.Rating, &h.Rating)
}

func (h Hotel) MarshalJSON() ([]byte, error) {
	category, err := json.Marshal(h.CategoryText())
	if err != nil {
		return nil, err
	}
	price, err := flexValue(h.PricePerNight, h.numericPrice)
	if err != nil {
		return nil, err
	}
	rating, err := flexValue(h.Rating, h.numericRating)
	if err != nil {
		return nil, err
	}
	return json.Marshal(hotelWire{
		Name:          h.Name,
		Category:      category,
		PricePerNight: price,
		Rating:        rating,
		Description:   h.Description,
		BookingLink:   h.BookingLink,
	})
}

func decodeFlex(raw json.RawMessage, dst *FlexString) error {
	if len(raw) == 0 {
		*dst = ""
		return nil
	}
	return dst.UnmarshalJSON(raw)
}

func isJSONNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'))
}

// flexValue writes s back as a number when it was decoded from one.
func flexValue(s FlexString, numeric bool) (json.RawMessage, error) {
	if numeric && s != "" && json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	return json.Marshal(string(s))
}

// Activity is one entry in a day's schedule.
type Activity struct {
	Time        string `json:"time"`
	Title       string `json:"activity"`
	Description string `json:"description"`
	Transport   string `json:"transport"`
	Food        string `json:"food"`
	Category    string `json:"type"`
}

// Day is one day of the plan. DayNumber is 1-based.
type Day struct {
	DayNumber  int        `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// UnmarshalJSON accepts the day number as a JSON number or a numeric
// string. Anything else decodes as 0.
func (d *Day) UnmarshalJSON(data []byte) error {
	type plainDay Day
	aux := struct {
		*plainDay
		DayNumber json.RawMessage `json:"day"`
	}{plainDay: (*plainDay)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var n FlexString
	if err := decodeFlex(aux.DayNumber, &n); err != nil {
		n = ""
	}
	d.DayNumber = n.Int()
	return nil
}

// Itinerary is the finished plan handed to the presentation layer. Field
// names on the wire must stay exactly as tagged.
type Itinerary struct {
	Hotels []Hotel `json:"hotels"`
	Days   []Day   `json:"itinerary"`
	Notes  string  `json:"prompt,omitempty"`
}

// WithNotes returns a copy of the itinerary carrying the given notes.
func (it Itinerary) WithNotes(notes string) Itinerary {
	out := it.Clone()
	out.Notes = notes
	return out
}

// Clone returns a deep copy.
func (it Itinerary) Clone() Itinerary {
	out := Itinerary{Notes: it.Notes}
	out.Hotels = append([]Hotel{}, it.Hotels...)
	out.Days = make([]Day, len(it.Days))
	for i, d := range it.Days {
		d.Activities = append([]Activity{}, d.Activities...)
		out.Days[i] = d
	}
	return out
}
