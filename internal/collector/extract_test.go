package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripmate/internal/domain"
)

func TestExtractNoBlock(t *testing.T) {
	text, params := Extract("Where would you like to go?")
	assert.Equal(t, "Where would you like to go?", text)
	assert.Nil(t, params)
}

func TestExtractCompleteFlagTruthiness(t *testing.T) {
	cases := []struct {
		flag string
		want bool
	}{
		{`true`, true},
		{`1`, true},
		{`"yes"`, true},
		{`{}`, true},
		{`[]`, true},
		{`false`, false},
		{`0`, false},
		{`""`, false},
		{`null`, false},
	}
	for _, tc := range cases {
		t.Run(tc.flag, func(t *testing.T) {
			text := "ok ```json\n{\"COMPLETE\": " + tc.flag + ", \"destination\": \"Oslo\"}\n```"
			display, params := Extract(text)
			if tc.want {
				require.NotNil(t, params)
				assert.Equal(t, "ok", display)
				assert.Equal(t, "Oslo", params.Destination)
			} else {
				assert.Nil(t, params)
				assert.Equal(t, text, display)
			}
		})
	}
}

func TestExtractMissingCompleteFlag(t *testing.T) {
	text := "```json\n{\"destination\": \"Oslo\"}\n```"
	display, params := Extract(text)
	assert.Nil(t, params)
	assert.Equal(t, text, display)
}

func TestExtractUsesFirstBlockOnly(t *testing.T) {
	text := "A\n```json\n{\"COMPLETE\": true, \"destination\": \"First\"}\n```\nB\n```json\n{\"COMPLETE\": true, \"destination\": \"Second\"}\n```"
	display, params := Extract(text)
	require.NotNil(t, params)
	assert.Equal(t, "First", params.Destination)
	assert.Equal(t, "A\n\nB\n```json\n{\"COMPLETE\": true, \"destination\": \"Second\"}\n```", display)
}

func TestExtractBlockInMiddle(t *testing.T) {
	text := "Here you go:\n```json\n{\"COMPLETE\": true}\n```\nEnjoy!"
	display, params := Extract(text)
	require.NotNil(t, params)
	assert.Equal(t, "Here you go:\n\nEnjoy!", display)
}

func TestExtractLenientFields(t *testing.T) {
	text := "```json\n" + `{
  "COMPLETE": "true",
  "destination": "Tokyo",
  "startDate": "2025-04-01",
  "endDate": "2025-04-07",
  "minBudget": "$1,200",
  "maxBudget": "lots",
  "interests": "Anime, Food, anime, Food",
  "prompt": 42
}` + "\n```"
	display, params := Extract(text)
	require.NotNil(t, params)
	assert.Empty(t, display)
	assert.Equal(t, domain.Budget(1200), params.MinBudget)
	assert.Nil(t, params.MaxBudget)
	assert.Equal(t, []string{"Anime", "Food", "anime"}, params.Interests)
	assert.Equal(t, "42", params.FreeformNotes)
}

func TestExtractNullBudgets(t *testing.T) {
	text := "```json\n{\"COMPLETE\": true, \"minBudget\": null, \"interests\": [\"Art\", 3, null]}\n```"
	_, params := Extract(text)
	require.NotNil(t, params)
	assert.Nil(t, params.MinBudget)
	assert.Nil(t, params.MaxBudget)
	assert.Equal(t, []string{"Art", "3"}, params.Interests)
}
