// Package places provides the client for the paid, rate-limited places
// provider (Google Places text search).
package places

import (
	"context"
	"fmt"
	"net/http"

	"github.com/CelebrityPunks/date-genie/internal/restclient"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1"

	// milesToMeters converts the request radius to the provider's unit.
	milesToMeters = 1609.34

	// maxPageSize bounds a single fetched page.
	maxPageSize = 20

	// fieldMask limits the billed response payload to the fields the search
	// layer actually consumes. editorialSummary feeds the pitch fallback.
	fieldMask = "places.name,places.id,places.displayName,places.formattedAddress," +
		"places.priceLevel,places.rating,places.userRatingCount,places.types," +
		"places.location,places.photos,places.websiteUri,places.googleMapsUri," +
		"places.editorialSummary,nextPageToken"
)

// SearchParams describe one text-search page fetch.
type SearchParams struct {
	// Query is the combined free-text + category keyword query.
	Query string

	// IncludedType optionally restricts results to one provider place type.
	IncludedType string

	// PageToken continues a prior paginated fetch when non-empty.
	PageToken string

	// Lat/Lng bias results around a point when both are set.
	Lat *float64
	Lng *float64

	// RadiusMiles is the bias circle radius.
	RadiusMiles float64
}

// SearchPage is one page of raw results plus the continuation cursor, if any.
type SearchPage struct {
	Places        []Place
	NextPageToken string
}

// Client calls the places provider. Construct once at process start and share.
type Client struct {
	client *restclient.Client
	apiKey string
}

// New creates a places client with the default production base URL.
func New(apiKey string) *Client {
	c := &Client{apiKey: apiKey}
	c.client = restclient.New(restclient.DefaultConfig("places", defaultBaseURL), c.setHeaders)
	return c
}

// NewWithHTTPClient creates a places client with a custom HTTP client,
// used by tests to point at a fake provider.
func NewWithHTTPClient(apiKey string, httpClient *http.Client) *Client {
	c := &Client{apiKey: apiKey}
	c.client = restclient.NewWithHTTPClient(httpClient, restclient.DefaultConfig("places", defaultBaseURL), c.setHeaders)
	return c
}

// SetBaseURL allows pointing the client at a non-production endpoint.
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)
}

// SearchText fetches one bounded page of text-search results. A non-success
// provider status surfaces as an upstream error; there is no retry here.
func (c *Client) SearchText(ctx context.Context, params SearchParams) (*SearchPage, error) {
	body := searchTextRequest{
		TextQuery:      params.Query,
		MaxResultCount: maxPageSize,
		IncludedType:   params.IncludedType,
		PageToken:      params.PageToken,
	}
	if params.Lat != nil && params.Lng != nil {
		body.LocationBias = &locationBias{
			Circle: circle{
				Center: LatLng{Latitude: *params.Lat, Longitude: *params.Lng},
				Radius: params.RadiusMiles * milesToMeters,
			},
		}
	}

	var resp searchTextResponse
	err := c.client.Do(ctx, restclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/places:searchText",
		Body:     body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &SearchPage{
		Places:        resp.Places,
		NextPageToken: resp.NextPageToken,
	}, nil
}

// PhotoURL builds the media URL for a photo resource name.
// Returns "" when the place has no photos.
func (c *Client) PhotoURL(photoName string) string {
	if photoName == "" {
		return ""
	}
	return fmt.Sprintf("https://places.googleapis.com/v1/%s/media?key=%s&maxHeightPx=800", photoName, c.apiKey)
}
