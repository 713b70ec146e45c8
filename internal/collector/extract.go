package collector

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xiaot623/tripmate/internal/domain"
)

var completionBlock = regexp.MustCompile("```json\\s*(\\{[\\s\\S]*?\\})\\s*```")

// Extract looks for the first fenced json block in text. When the block is
// valid JSON with a truthy COMPLETE flag it returns the text with that block
// removed and the decoded parameters. Otherwise it returns text unchanged and
// nil.
func Extract(text string) (string, *domain.TripParameters) {
	loc := completionBlock.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[loc[2]:loc[3]]), &fields); err != nil {
		return text, nil
	}
	if !truthy(fields["COMPLETE"]) {
		return text, nil
	}

	params := &domain.TripParameters{
		Destination:   looseString(fields["destination"]),
		StartDate:     looseString(fields["startDate"]),
		EndDate:       looseString(fields["endDate"]),
		MinBudget:     looseNumber(fields["minBudget"]),
		MaxBudget:     looseNumber(fields["maxBudget"]),
		Interests:     looseList(fields["interests"]),
		FreeformNotes: looseString(fields["prompt"]),
	}
	display := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return display, params
}

// truthy follows JavaScript truthiness for a decoded JSON value.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	}
	return true
}

func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimLeft(s, "$€£")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// looseList accepts an array of strings or a single comma-separated string,
// and returns the distinct non-empty entries in their original order.
func looseList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var items []string
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			items = append(items, looseString(item))
		}
	} else if s := looseString(raw); s != "" {
		items = strings.Split(s, ",")
	}

	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
