package search

import (
	"math"

	"github.com/CelebrityPunks/date-genie/internal/categories"
	"github.com/CelebrityPunks/date-genie/internal/core"
	"github.com/CelebrityPunks/date-genie/internal/places"
	"github.com/CelebrityPunks/date-genie/internal/scoring"
)

// priceTierDollars maps provider price tiers to an approximate per-person
// dollar cost for the budget filter. Unknown tiers are treated as mid-budget.
var priceTierDollars = map[string]float64{
	core.PriceLevelUnspecified:   50,
	core.PriceLevelFree:          0,
	core.PriceLevelInexpensive:   20,
	core.PriceLevelModerate:      50,
	core.PriceLevelExpensive:     100,
	core.PriceLevelVeryExpensive: 200,
}

func withinBudget(priceLevel string, budget float64) bool {
	dollars, ok := priceTierDollars[priceLevel]
	if !ok {
		dollars = 50
	}
	return dollars <= budget
}

// buildVenue maps one raw place record to an enriched Venue: provider fields,
// vibe tags, distance, dateability score. The pitch is attached separately so
// enrichment stays free of network calls.
func (o *Orchestrator) buildVenue(place places.Place, req *core.SearchRequest) core.Venue {
	priceLevel := place.PriceLevel
	if priceLevel == "" {
		priceLevel = core.PriceLevelUnspecified
	}

	vibeTags := append(
		categories.ExtractVibeTags(place.Types),
		categories.VibeBoostTags(req.Categories)...,
	)

	venue := core.Venue{
		ID:          place.PlaceID(),
		Name:        place.DisplayName.Text,
		Address:     place.FormattedAddress,
		PriceLevel:  priceLevel,
		Rating:      place.Rating,
		ReviewCount: place.UserRatingCount,
		Categories:  place.Types,
		Location: core.Location{
			Lat: place.Location.Latitude,
			Lng: place.Location.Longitude,
		},
		VibeTags:           vibeTags,
		SelectedCategories: req.Categories,
		BookingURL:         bookingURL(place),
	}

	if len(place.Photos) > 0 {
		venue.PhotoURL = o.places.PhotoURL(place.Photos[0].Name)
	}
	if place.EditorialSummary != nil {
		venue.Summary = place.EditorialSummary.Text
	}
	if req.Lat != nil && req.Lng != nil {
		venue.Distance = haversineMiles(*req.Lat, *req.Lng, venue.Location.Lat, venue.Location.Lng)
	}

	venue.DateabilityScore = scoring.Score(venue, req.Categories)
	return venue
}

func bookingURL(place places.Place) string {
	if place.WebsiteURI != "" {
		return place.WebsiteURI
	}
	return place.GoogleMapsURI
}

// earthRadiusMiles matches the request/score distance unit.
const earthRadiusMiles = 3958.8

// haversineMiles computes the great-circle distance between two coordinates.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
