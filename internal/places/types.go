package places

// LatLng is a coordinate pair in the provider wire format.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocalizedText carries a provider text field with its language code.
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Photo is a provider photo reference.
type Photo struct {
	Name string `json:"name"`
}

// Place is one raw place record returned by the text-search endpoint.
type Place struct {
	Name             string         `json:"name"` // resource name, "places/<id>"
	ID               string         `json:"id,omitempty"`
	DisplayName      LocalizedText  `json:"displayName"`
	FormattedAddress string         `json:"formattedAddress"`
	PriceLevel       string         `json:"priceLevel,omitempty"`
	Rating           float64        `json:"rating,omitempty"`
	UserRatingCount  int            `json:"userRatingCount,omitempty"`
	Types            []string       `json:"types,omitempty"`
	Location         LatLng         `json:"location"`
	Photos           []Photo        `json:"photos,omitempty"`
	WebsiteURI       string         `json:"websiteUri,omitempty"`
	GoogleMapsURI    string         `json:"googleMapsUri,omitempty"`
	EditorialSummary *LocalizedText `json:"editorialSummary,omitempty"`
}

// PlaceID returns the provider-assigned stable id, preferring the explicit id
// field and falling back to the resource name suffix.
func (p Place) PlaceID() string {
	if p.ID != "" {
		return p.ID
	}
	for i := 0; i < len(p.Name); i++ {
		if p.Name[i] == '/' {
			return p.Name[i+1:]
		}
	}
	return p.Name
}

// searchTextRequest is the JSON body for places:searchText.
type searchTextRequest struct {
	TextQuery      string        `json:"textQuery"`
	MaxResultCount int           `json:"maxResultCount,omitempty"`
	IncludedType   string        `json:"includedType,omitempty"`
	PageToken      string        `json:"pageToken,omitempty"`
	LocationBias   *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"` // meters
}

// searchTextResponse is the JSON body returned by places:searchText.
type searchTextResponse struct {
	Places        []Place `json:"places"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}
