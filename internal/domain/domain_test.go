package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleUnmarshal(t *testing.T) {
	var turns []ChatTurn
	require.NoError(t, json.Unmarshal([]byte(`[{"role":"user","text":"a"},{"role":"model","text":"b"},{"role":"Assistant","text":"c"}]`), &turns))
	assert.Equal(t, []ChatTurn{UserTurn("a"), AssistantTurn("b"), AssistantTurn("c")}, turns)

	var r Role
	assert.Error(t, json.Unmarshal([]byte(`"system"`), &r))
}

func TestConversationContextDropsLeadingAssistantTurns(t *testing.T) {
	history := []ChatTurn{AssistantTurn("hi"), AssistantTurn("again"), UserTurn("Rome"), AssistantTurn("When?")}

	got := ConversationContext(history)
	assert.Equal(t, []ChatTurn{UserTurn("Rome"), AssistantTurn("When?")}, got)

	got[0].Text = "changed"
	assert.Equal(t, "Rome", history[2].Text)

	assert.Empty(t, ConversationContext([]ChatTurn{AssistantTurn("hi")}))
	assert.Empty(t, ConversationContext(nil))
}

func TestParseHotelCategory(t *testing.T) {
	tests := []struct {
		in   string
		want HotelCategory
	}{
		{"Budget", HotelBudget},
		{"cheap and cheerful", HotelBudget},
		{"Mid-range", HotelMid},
		{"moderate", HotelMid},
		{"Luxury", HotelLuxury},
		{"premium", HotelLuxury},
		{" Boutique ", HotelCategory("Boutique")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseHotelCategory(tt.in), tt.in)
	}
}

func TestHotelWireFormat(t *testing.T) {
	raw := `{"name":"Casa","category":"Mid-range","price":85,"rating":4.5,"description":"","booking_link":"https://example.com"}`
	var h Hotel
	require.NoError(t, json.Unmarshal([]byte(raw), &h))
	assert.Equal(t, HotelMid, h.Category)
	assert.Equal(t, "Mid-range", h.CategoryText())
	assert.Equal(t, FlexString("85"), h.PricePerNight)
	assert.Equal(t, FlexString("4.5"), h.Rating)

	out, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestHotelBuiltInCodeUsesTierLabel(t *testing.T) {
	out, err := json.Marshal(Hotel{Name: "Inn", Category: HotelLuxury, PricePerNight: "$300", Rating: "4.9"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Inn","category":"Luxury","price":"$300","rating":"4.9","description":"","booking_link":""}`, string(out))
}

func TestDayNumberLenient(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"day":2}`, 2},
		{`{"day":"1"}`, 1},
		{`{"day":" 3 "}`, 3},
		{`{"day":4.0}`, 4},
		{`{"day":"first"}`, 0},
		{`{"day":true}`, 0},
		{`{"day":null}`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		var d Day
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &d), tt.raw)
		assert.Equal(t, tt.want, d.DayNumber, tt.raw)
	}

	var d Day
	require.NoError(t, json.Unmarshal([]byte(`{"day":"1","date":"2024-03-01","activities":[{"activity":"Walk"}]}`), &d))
	assert.Equal(t, "2024-03-01", d.Date)
	assert.Equal(t, "Walk", d.Activities[0].Title)
}

func TestFlexStringNull(t *testing.T) {
	var s FlexString = "x"
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, FlexString(""), s)
}

func TestItineraryCloneIsDeep(t *testing.T) {
	it := Itinerary{
		Hotels: []Hotel{{Name: "A"}},
		Days:   []Day{{DayNumber: 1, Activities: []Activity{{Title: "Walk"}}}},
	}
	cp := it.WithNotes("n")
	cp.Hotels[0].Name = "B"
	cp.Days[0].Activities[0].Title = "Run"

	assert.Equal(t, "A", it.Hotels[0].Name)
	assert.Equal(t, "Walk", it.Days[0].Activities[0].Title)
	assert.Equal(t, "n", cp.Notes)
	assert.Empty(t, it.Notes)
}

func TestTripParametersClone(t *testing.T) {
	p := TripParameters{MinBudget: Budget(100), Interests: []string{"food"}}
	cp := p.Clone()
	*cp.MinBudget = 5
	cp.Interests[0] = "art"

	assert.Equal(t, 100.0, *p.MinBudget)
	assert.Equal(t, "food", p.Interests[0])
	assert.Nil(t, cp.MaxBudget)
}
