package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/tripmate/internal/domain"
)

// MockClient is an offline Gateway for demos and tests. Chat requests get a
// follow-up question until the user has spoken four times, then a completion
// block. Itinerary requests get a valid plan of the requested length.
type MockClient struct {
	now func() time.Time
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{now: time.Now}
}

var mockQuestions = []string{
	"[MOCK] Wonderful! When would you like to travel, and for how long?",
	"[MOCK] Got it. What budget do you have in mind for this trip?",
	"[MOCK] And what are you most interested in: food, history, nature, adventure?",
}

var planHeader = regexp.MustCompile(`Plan a (\d+)-day trip to (.+?) from (\d{4}-\d{2}-\d{2})`)

// Complete implements Gateway.
func (m *MockClient) Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &TransportError{Model: model, Err: err}
	}
	if systemInstruction == "" {
		if match := planHeader.FindStringSubmatch(userText); match != nil {
			return m.mockItinerary(match)
		}
		return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(userText, 100)), nil
	}

	var userTurns []string
	for _, turn := range history {
		if turn.Role == domain.RoleUser {
			userTurns = append(userTurns, turn.Text)
		}
	}
	userTurns = append(userTurns, userText)

	if len(userTurns) <= len(mockQuestions) {
		return mockQuestions[len(userTurns)-1], nil
	}
	return m.mockCompletion(userTurns)
}

func (m *MockClient) mockCompletion(userTurns []string) (string, error) {
	start := m.now().AddDate(0, 0, 30)
	payload := map[string]interface{}{
		"COMPLETE":    true,
		"destination": truncate(userTurns[0], 60),
		"startDate":   start.Format("2006-01-02"),
		"endDate":     start.AddDate(0, 0, 2).Format("2006-01-02"),
		"minBudget":   1000,
		"maxBudget":   2000,
		"interests":   []string{"Food", "Culture"},
		"prompt":      strings.Join(userTurns, " / "),
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return "[MOCK] Perfect, I have everything I need!\n```json\n" + string(body) + "\n```", nil
}

func (m *MockClient) mockItinerary(match []string) (string, error) {
	days, err := strconv.Atoi(match[1])
	if err != nil || days < 1 {
		days = 1
	}
	destination := match[2]
	start, err := time.Parse("2006-01-02", match[3])
	if err != nil {
		start = m.now()
	}

	it := domain.Itinerary{
		Hotels: []domain.Hotel{
			{Name: destination + " Hostel", Category: domain.HotelBudget, PricePerNight: "$40 per night", Rating: "4.1", Description: "[MOCK] Simple and central."},
			{Name: destination + " Inn", Category: domain.HotelMid, PricePerNight: "$120 per night", Rating: "4.4", Description: "[MOCK] Comfortable rooms."},
			{Name: destination + " Palace", Category: domain.HotelLuxury, PricePerNight: "$380 per night", Rating: "4.8", Description: "[MOCK] Views and a spa."},
		},
	}
	for i := range it.Hotels {
		it.Hotels[i].BookingLink = "https://www.booking.com/searchresults.html?ss=" + strings.ReplaceAll(it.Hotels[i].Name, " ", "+")
	}
	for d := 0; d < days; d++ {
		it.Days = append(it.Days, domain.Day{
			DayNumber: d + 1,
			Date:      start.AddDate(0, 0, d).Format("2006-01-02"),
			Activities: []domain.Activity{
				{Time: "09:00 AM", Title: "Morning walk", Description: "[MOCK] Explore the old town.", Transport: "On foot", Food: "Local bakery", Category: "Culture"},
				{Time: "01:00 PM", Title: "Market lunch", Description: "[MOCK] Taste the regional dishes.", Transport: "Tram", Food: "Market stalls", Category: "Food"},
			},
		})
	}

	body, err := json.Marshal(it)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ListModels returns a single offline model.
func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{{ID: "mock", Object: "model", OwnedBy: "tripmate"}}, nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
