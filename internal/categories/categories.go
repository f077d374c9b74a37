// Package categories maps semantic date-category tags to places-provider
// query keywords, place-type filters, and vibe-boost tags.
package categories

import "strings"

// Config is the keyword/type/tag triple for one date category.
type Config struct {
	QueryKeywords []string
	PlaceTypes    []string
	VibeBoostTags []string
}

// categoryMap is the closed table of supported date categories.
// Unknown categories are silently skipped by every lookup.
var categoryMap = map[string]Config{
	"Food": {
		QueryKeywords: []string{"restaurant", "cafe", "dining"},
		PlaceTypes:    []string{"restaurant", "cafe", "bakery", "meal_takeaway"},
		VibeBoostTags: []string{"casual dining", "intimate", "culinary"},
	},
	"Fun": {
		QueryKeywords: []string{"arcade", "museum", "entertainment", "games"},
		PlaceTypes:    []string{"amusement_center", "arcade", "museum", "bowling_alley"},
		VibeBoostTags: []string{"fun", "playful", "entertainment"},
	},
	"Live Events": {
		QueryKeywords: []string{"concert", "comedy", "live music", "performance"},
		PlaceTypes:    []string{"performing_arts_theater", "concert_hall", "night_club"},
		VibeBoostTags: []string{"live entertainment", "energetic", "performance"},
	},
	"Active": {
		QueryKeywords: []string{"hiking", "sports", "fitness", "activity"},
		PlaceTypes:    []string{"gym", "sports_complex", "park", "hiking_area"},
		VibeBoostTags: []string{"active", "energetic", "outdoor"},
	},
	"Bars/Drinks": {
		QueryKeywords: []string{"bar", "pub", "wine tasting", "cocktails"},
		PlaceTypes:    []string{"bar", "pub", "wine_bar", "cocktail_bar"},
		VibeBoostTags: []string{"drinks", "nightlife", "social"},
	},
	"Nature": {
		QueryKeywords: []string{"park", "beach", "nature", "outdoor"},
		PlaceTypes:    []string{"park", "beach", "garden", "nature_reserve"},
		VibeBoostTags: []string{"nature", "outdoor", "scenic"},
	},
	"Romantic": {
		QueryKeywords: []string{"romantic", "sunset", "picnic", "intimate"},
		PlaceTypes:    []string{"restaurant", "park", "viewpoint"},
		VibeBoostTags: []string{"romantic", "intimate", "scenic"},
	},
	"Cultural": {
		QueryKeywords: []string{"art gallery", "theater", "cultural", "exhibit"},
		PlaceTypes:    []string{"art_gallery", "museum", "performing_arts_theater"},
		VibeBoostTags: []string{"cultural", "artistic", "sophisticated"},
	},
	"Adventure": {
		QueryKeywords: []string{"escape room", "zip-lining", "adventure", "thrilling"},
		PlaceTypes:    []string{"amusement_center", "tourist_attraction"},
		VibeBoostTags: []string{"adventure", "thrilling", "unique"},
	},
	"Relaxed": {
		QueryKeywords: []string{"spa", "coffee shop", "relaxing", "chill"},
		PlaceTypes:    []string{"spa", "cafe", "park"},
		VibeBoostTags: []string{"relaxed", "cozy", "peaceful"},
	},
	"Seasonal": {
		QueryKeywords: []string{"holiday", "seasonal", "christmas", "summer"},
		PlaceTypes:    []string{"tourist_attraction", "event_venue"},
		VibeBoostTags: []string{"seasonal", "festive", "timely"},
	},
}

// union collects the selected field across categories, deduplicated in
// first-seen order.
func union(categories []string, field func(Config) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, cat := range categories {
		cfg, ok := categoryMap[cat]
		if !ok {
			continue
		}
		for _, v := range field(cfg) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// QueryKeywords returns the deduplicated union of provider query keywords.
func QueryKeywords(categories []string) []string {
	return union(categories, func(c Config) []string { return c.QueryKeywords })
}

// PlaceTypes returns the deduplicated union of provider place-type filters.
func PlaceTypes(categories []string) []string {
	return union(categories, func(c Config) []string { return c.PlaceTypes })
}

// VibeBoostTags returns the deduplicated union of vibe-boost tags.
func VibeBoostTags(categories []string) []string {
	return union(categories, func(c Config) []string { return c.VibeBoostTags })
}

// BuildSearchQuery combines the free-text query with the category keywords
// into a single provider text query of the form "<keywords> in <city>".
func BuildSearchQuery(city, userQuery string, categories []string) string {
	seen := make(map[string]struct{})
	var words []string
	for _, w := range strings.Fields(userQuery) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	for _, kw := range QueryKeywords(categories) {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		words = append(words, kw)
	}
	return strings.Join(words, " ") + " in " + city
}

// placeTypeVibes maps provider place types to descriptive vibe tags.
var placeTypeVibes = map[string][]string{
	"restaurant":    {"casual dining"},
	"cafe":          {"coffee", "cozy"},
	"bar":           {"drinks", "nightlife"},
	"park":          {"outdoor", "nature"},
	"movie_theater": {"entertainment", "indoor"},
	"arcade":        {"games", "fun"},
}

// maxExtractedVibes caps the number of vibe tags derived from place types.
const maxExtractedVibes = 3

// ExtractVibeTags derives vibe tags from a venue's provider place types,
// capped at three tags.
func ExtractVibeTags(placeTypes []string) []string {
	var tags []string
	for _, t := range placeTypes {
		tags = append(tags, placeTypeVibes[t]...)
	}
	if len(tags) > maxExtractedVibes {
		tags = tags[:maxExtractedVibes]
	}
	return tags
}
