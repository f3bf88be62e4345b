package suggest

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

// cleanJSONResponse strips markdown fences and returns the first balanced
// JSON object in the model output.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(response), "```"))

	first := strings.Index(response, "{")
	if first == -1 {
		return response
	}

	depth := 0
	inString, escaped := false, false
	for i := first; i < len(response); i++ {
		ch := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[first : i+1]
			}
		}
	}
	return response[first:]
}

type rawSuggestion struct {
	Title string                       `json:"title"`
	Plan  map[string][]json.RawMessage `json:"plan"`
}

type rawEntry struct {
	PlaceName string `json:"place_name"`
}

// ParseSuggestion extracts {title, plan: {day: [{place_name}]}} from free text.
// Day keys such as "1" or "day 2" are accepted; entries may be objects or plain strings.
func ParseSuggestion(text string) (models.SuggestedPlan, error) {
	var raw rawSuggestion
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &raw); err != nil {
		return models.SuggestedPlan{}, fmt.Errorf("failed to parse suggestion: %w", err)
	}
	if raw.Plan == nil {
		return models.SuggestedPlan{}, fmt.Errorf("failed to parse suggestion: response has no plan")
	}

	out := models.SuggestedPlan{Title: strings.TrimSpace(raw.Title), Plan: make(map[int][]string, len(raw.Plan))}
	// keys like "1" and "Day 1" merge into the same day in sorted key order
	for _, key := range slices.Sorted(maps.Keys(raw.Plan)) {
		day, ok := dayNumber(key)
		if !ok {
			continue
		}
		for _, entry := range raw.Plan[key] {
			if name := entryName(entry); name != "" {
				out.Plan[day] = append(out.Plan[day], name)
			}
		}
	}
	return out, nil
}

func dayNumber(key string) (int, bool) {
	digits := strings.TrimFunc(key, func(r rune) bool { return !unicode.IsDigit(r) })
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func entryName(raw json.RawMessage) string {
	var e rawEntry
	if err := json.Unmarshal(raw, &e); err == nil {
		return strings.TrimSpace(e.PlaceName)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}
