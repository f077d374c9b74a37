// Package core defines the core types and errors shared across the search backend.
package core

// SearchRequest is the incoming venue search request.
// Validation tags are enforced before any external call is made.
type SearchRequest struct {
	City             string   `json:"city" validate:"required"`
	Query            string   `json:"query" validate:"required"`
	Budget           float64  `json:"budget" validate:"gte=0,lte=1000"`
	Radius           float64  `json:"radius" validate:"gte=1,lte=50"`
	Categories       []string `json:"categories" validate:"required,min=1,max=3"`
	UserID           string   `json:"userId,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lng              *float64 `json:"lng,omitempty"`
	ExcludedVenueIDs []string `json:"excludedVenueIds,omitempty"`
}

// Preferences is the user-preference summary attached to pitch generation.
type Preferences struct {
	Budget     float64  `json:"budget"`
	Radius     float64  `json:"radius"`
	Categories []string `json:"categories"`
}

// Preferences extracts the pitch-relevant preferences from a request.
func (r *SearchRequest) Preferences() Preferences {
	return Preferences{
		Budget:     r.Budget,
		Radius:     r.Radius,
		Categories: r.Categories,
	}
}

// Provider price tiers as returned by the places API.
const (
	PriceLevelUnspecified   = "PRICE_LEVEL_UNSPECIFIED"
	PriceLevelFree          = "PRICE_LEVEL_FREE"
	PriceLevelInexpensive   = "PRICE_LEVEL_INEXPENSIVE"
	PriceLevelModerate      = "PRICE_LEVEL_MODERATE"
	PriceLevelExpensive     = "PRICE_LEVEL_EXPENSIVE"
	PriceLevelVeryExpensive = "PRICE_LEVEL_VERY_EXPENSIVE"
)

// Location is a venue coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Venue is a fully enriched venue. Once enriched and cached it is never
// mutated; later fetches only append new venues.
type Venue struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Address            string   `json:"address"`
	PriceLevel         string   `json:"priceLevel"`
	Rating             float64  `json:"rating"`
	ReviewCount        int      `json:"reviewCount"`
	Categories         []string `json:"categories"`
	Location           Location `json:"location"`
	Distance           float64  `json:"distance,omitempty"`
	VibeTags           []string `json:"vibeTags"`
	SelectedCategories []string `json:"selectedCategories"`
	DateabilityScore   float64  `json:"dateabilityScore"`
	AIPitch            string   `json:"aiPitch"`
	LogisticsTip       string   `json:"logisticsTip"`
	BookingURL         string   `json:"bookingUrl"`
	PhotoURL           string   `json:"photoUrl,omitempty"`
	Summary            string   `json:"summary,omitempty"`
}

// CacheEntry is the per-query cache record. Venues keep discovery order and
// are deduplicated by id; NextPageToken continues a prior paginated fetch.
type CacheEntry struct {
	Venues        []Venue `json:"venues"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// Response source labels.
const (
	SourceCache          = "cache"
	SourceCacheExhausted = "cache_exhausted"
	SourceAPI            = "api"
)

// SearchResponse is the JSON body returned by POST /search.
type SearchResponse struct {
	Success bool    `json:"success"`
	Source  string  `json:"source,omitempty"`
	Data    []Venue `json:"data"`
	Latency int64   `json:"latency"`
	Error   string  `json:"error,omitempty"`
}

// SearchResult is the orchestrator output before HTTP shaping.
type SearchResult struct {
	Source string
	Venues []Venue
}

// Pitch is the generated promotional copy for a venue.
type Pitch struct {
	Pitch        string `json:"pitch"`
	LogisticsTip string `json:"logistics_tip"`
}
