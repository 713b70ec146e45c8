package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xiaot623/tripmate/internal/domain"
)

// BuildPrompt renders the one-shot planning request for params. days must be
// the value returned by TripLength.
func BuildPrompt(params domain.TripParameters, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a %d-day trip to %s from %s to %s.\n", days, params.Destination, params.StartDate, params.EndDate)
	fmt.Fprintf(&b, "Budget: %s - %s (Currency: assume local or USD).\n", budgetBound(params.MinBudget), budgetBound(params.MaxBudget))
	fmt.Fprintf(&b, "Interests: %s.\n", interestsLine(params.Interests))
	fmt.Fprintf(&b, "Special Instructions: %s.\n", notesLine(params.FreeformNotes))
	fmt.Fprintf(&b, `
Act as a local expert travel planner. Your goal is to provide a highly detailed, logistical, and authentic itinerary.

The "itinerary" array MUST contain exactly %d day entries, numbered 1 to %d.

CRITICAL: You MUST also provide 3 specific hotel recommendations (Budget, Mid-range, Luxury) with prices.

For every activity in the itinerary, you MUST include:
1. Exact transport details.
2. Specific food recommendations.
3. Practical tips.

Generate the response in strictly valid JSON format.
Structure:
{
  "hotels": [
    {
      "name": "Hotel Name",
      "category": "Budget/Mid/Luxury",
      "price": "$X per night",
      "rating": "4.5",
      "description": "Brief review.",
      "booking_link": "https://www.booking.com/searchresults.html?ss=Hotel+Name"
    }
  ],
  "itinerary": [
    {
      "day": 1,
      "date": "YYYY-MM-DD",
      "activities": [
        {
          "time": "09:00 AM",
          "activity": "Name",
          "description": "Details",
          "transport": "How to get there",
          "food": "Where to eat",
          "type": "Category"
        }
      ]
    }
  ]
}
Ensure the response is ONLY the JSON object, no markdown formatting or backticks.
`, days, days)
	return b.String()
}

func budgetBound(v *float64) string {
	if v == nil {
		return "flexible"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func interestsLine(interests []string) string {
	if len(interests) == 0 {
		return "General sightseeing"
	}
	return strings.Join(interests, ", ")
}

func notesLine(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return "None"
	}
	return strings.TrimSpace(notes)
}
