package suggest

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

// maxPromptPlaces caps how many catalog names go into a single prompt.
const maxPromptPlaces = 150

type PromptInput struct {
	RegionName string
	StartDate  string
	EndDate    string
	Days       int
	PartyType  string
	Pace       string
	PlaceNames []string
}

func placesPerDay(pace string) string {
	switch strings.ToLower(strings.TrimSpace(pace)) {
	case "relaxed", "slow":
		return "2 to 3"
	case "packed", "busy", "fast":
		return "5 to 6"
	default:
		return "3 to 4"
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// BuildPrompt asks for a JSON itinerary restricted to the given place names.
func BuildPrompt(in PromptInput) string {
	names := in.PlaceNames
	if len(names) > maxPromptPlaces {
		names = names[:maxPromptPlaces]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a travel planner for Korea. Plan a %d-day trip in %s from %s to %s.\n",
		in.Days, in.RegionName, in.StartDate, in.EndDate)
	fmt.Fprintf(&b, "Travellers: %s. Pace: %s, about %s places per day.\n",
		orDefault(in.PartyType, "not specified"), orDefault(in.Pace, "normal"), placesPerDay(in.Pace))
	b.WriteString("Only use places from this list and copy their names exactly:\n")
	for _, name := range names {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Group nearby places on the same day and do not repeat a place. Use day numbers 1 to %d.\n", in.Days)
	b.WriteString(`Respond with only a JSON object in this format:
{"title": "short trip title", "plan": {"1": [{"place_name": "..."}], "2": [{"place_name": "..."}]}}`)
	return b.String()
}

func catalogNames(catalog []models.Place) []string {
	names := make([]string, 0, len(catalog))
	seen := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
