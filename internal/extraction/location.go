package extraction

import (
	"strings"

	"github.com/jonathan/job-harvester/internal/types"
)

// DefaultCountry is assigned to every decomposed location. The guest job
// search is scoped to US listings, so there is no international handling.
const DefaultCountry = "United States"

const metroSuffix = " Metropolitan Area"

// ParseLocation splits a posting's location line into city, state and country.
//
//	"San Francisco, CA"               -> city "San Francisco", state "CA"
//	"United States"                   -> country only
//	"Greater Boston Metropolitan Area" -> city "Greater Boston"
func ParseLocation(raw *string) types.Location {
	if raw == nil {
		return types.Location{}
	}
	location := strings.TrimSpace(*raw)
	if location == "" {
		return types.Location{}
	}

	location = strings.TrimSpace(strings.ReplaceAll(location, metroSuffix, ""))
	country := DefaultCountry
	if location == DefaultCountry {
		return types.Location{Location: &location, Country: &country}
	}

	result := types.Location{Location: &location, Country: &country}

	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	city := parts[0]
	result.City = &city
	if len(parts) >= 2 {
		state := parts[1]
		result.State = &state
	}

	return result
}
