// Package scoring computes the dateability score for a venue.
package scoring

import (
	"math"
	"strings"

	"github.com/CelebrityPunks/date-genie/internal/categories"
	"github.com/CelebrityPunks/date-genie/internal/core"
)

// priceBonus rewards affordable venues. Tiers missing from this table
// (unspecified or unknown) get a flat 0.5.
var priceBonus = map[string]float64{
	core.PriceLevelInexpensive:   2,
	core.PriceLevelModerate:      1.5,
	core.PriceLevelExpensive:     1,
	core.PriceLevelVeryExpensive: 0,
}

// chainBrands is the deny-list of big-chain name substrings that forfeit the
// local-business bonus.
var chainBrands = []string{
	"McDonald",
	"Starbucks",
	"Target",
	"Walmart",
	"Applebee",
	"Chili",
}

// Score computes the dateability score for a venue given the requester's
// selected categories. Pure and deterministic; missing rating, review count,
// or price tier contribute their zero-value bonuses rather than failing.
// The result is rounded to one decimal and is not clamped in either
// direction: heavy penalties can push it below zero.
func Score(venue core.Venue, selectedCategories []string) float64 {
	score := math.Min(venue.Rating, 5)

	switch {
	case venue.ReviewCount > 1000:
		score += 3
	case venue.ReviewCount > 500:
		score += 2
	case venue.ReviewCount > 100:
		score += 1
	}

	if bonus, ok := priceBonus[venue.PriceLevel]; ok {
		score += bonus
	} else {
		score += 0.5
	}

	if len(selectedCategories) > 0 {
		boostTags := categories.VibeBoostTags(selectedCategories)
		for _, tag := range venue.VibeTags {
			for _, boost := range boostTags {
				if strings.Contains(tag, boost) {
					score += 1.5
					break
				}
			}
		}

		selectedTypes := make(map[string]struct{})
		for _, t := range categories.PlaceTypes(selectedCategories) {
			selectedTypes[t] = struct{}{}
		}
		for _, t := range venue.Categories {
			if _, ok := selectedTypes[t]; ok {
				score += 2
			}
		}
	}

	if !isChain(venue.Name) {
		score += 0.5
	}

	if venue.Distance > 20 {
		score -= 1
	} else if venue.Distance > 10 {
		score -= 0.5
	}

	return math.Round(score*10) / 10
}

func isChain(name string) bool {
	for _, brand := range chainBrands {
		if strings.Contains(name, brand) {
			return true
		}
	}
	return false
}
