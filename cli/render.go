package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaot623/tripmate/internal/domain"
)

func renderTranscript(w io.Writer, transcript []domain.ChatTurn) {
	for _, turn := range transcript {
		who := "You"
		if turn.Role == domain.RoleAssistant {
			who = "Assistant"
		}
		fmt.Fprintf(w, "%s: %s\n", who, turn.Text)
	}
}

func renderTrip(w io.Writer, trip domain.TripParameters) {
	fmt.Fprintf(w, "\nTrip: %s, %s to %s\n", trip.Destination, trip.StartDate, trip.EndDate)
	fmt.Fprintf(w, "Budget: %s - %s\n", bound(trip.MinBudget), bound(trip.MaxBudget))
	if len(trip.Interests) > 0 {
		fmt.Fprintf(w, "Interests: %s\n", strings.Join(trip.Interests, ", "))
	}
}

func bound(v *float64) string {
	if v == nil {
		return "flexible"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func renderItinerary(w io.Writer, it domain.Itinerary) {
	if len(it.Hotels) > 0 {
		fmt.Fprintln(w, "\nWhere to stay")
		for _, h := range it.Hotels {
			fmt.Fprintf(w, "  [%s] %s, %s, rated %s\n", h.CategoryText(), h.Name, h.PricePerNight, h.Rating)
			if h.Description != "" {
				fmt.Fprintf(w, "      %s\n", h.Description)
			}
			if h.BookingLink != "" {
				fmt.Fprintf(w, "      %s\n", h.BookingLink)
			}
		}
	}

	for _, d := range it.Days {
		fmt.Fprintf(w, "\nDay %d (%s)\n", d.DayNumber, d.Date)
		for _, a := range d.Activities {
			fmt.Fprintf(w, "  %-9s %s", a.Time, a.Title)
			if a.Category != "" {
				fmt.Fprintf(w, " [%s]", a.Category)
			}
			fmt.Fprintln(w)
			if a.Description != "" {
				fmt.Fprintf(w, "            %s\n", a.Description)
			}
			if a.Transport != "" {
				fmt.Fprintf(w, "            Getting there: %s\n", a.Transport)
			}
			if a.Food != "" {
				fmt.Fprintf(w, "            Food: %s\n", a.Food)
			}
		}
	}

	if it.Notes != "" {
		fmt.Fprintf(w, "\nNotes: %s\n", it.Notes)
	}
}
