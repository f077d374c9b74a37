package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CelebrityPunks/date-genie/internal/analytics"
	"github.com/CelebrityPunks/date-genie/internal/cache"
	"github.com/CelebrityPunks/date-genie/internal/core"
	"github.com/CelebrityPunks/date-genie/internal/places"
)

// fakePlaces implements PlacesSearcher, serving queued pages in order.
type fakePlaces struct {
	pages []*places.SearchPage
	err   error
	calls []places.SearchParams
}

func (f *fakePlaces) SearchText(_ context.Context, params places.SearchParams) (*places.SearchPage, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &places.SearchPage{}, nil
	}
	page := f.pages[0]
	if len(f.pages) > 1 {
		f.pages = f.pages[1:]
	}
	return page, nil
}

func (f *fakePlaces) PhotoURL(photoName string) string {
	return "https://img.test/" + photoName
}

// fakePitch implements PitchGenerator, recording which venues were enriched.
type fakePitch struct {
	generated []string
}

func (f *fakePitch) Generate(_ context.Context, venue core.Venue, _ core.Preferences) core.Pitch {
	f.generated = append(f.generated, venue.ID)
	return core.Pitch{
		Pitch:        "Pitch for " + venue.Name,
		LogisticsTip: "Book ahead.",
	}
}

func makePlace(id, name, priceLevel string) places.Place {
	return places.Place{
		Name:             "places/" + id,
		ID:               id,
		DisplayName:      places.LocalizedText{Text: name},
		FormattedAddress: "1 Main St",
		PriceLevel:       priceLevel,
		Rating:           4.2,
		UserRatingCount:  250,
		Types:            []string{"restaurant"},
		Location:         places.LatLng{Latitude: 40.7, Longitude: -74.0},
	}
}

func makePage(n int, cursor string) *places.SearchPage {
	page := &places.SearchPage{NextPageToken: cursor}
	for i := 0; i < n; i++ {
		page.Places = append(page.Places, makePlace(
			fmt.Sprintf("venue-%d", i), fmt.Sprintf("Venue %d", i), core.PriceLevelModerate))
	}
	return page
}

func baseRequest() *core.SearchRequest {
	return &core.SearchRequest{
		City:       "NYC",
		Query:      "dinner",
		Budget:     100,
		Radius:     10,
		Categories: []string{"Food", "Romantic"},
	}
}

func newTestOrchestrator(store cache.Store, provider *fakePlaces) (*Orchestrator, *fakePitch) {
	pitches := &fakePitch{}
	o := New(store, provider, pitches, analytics.New(""))
	return o, pitches
}

func venueIDs(venues []core.Venue) map[string]struct{} {
	ids := make(map[string]struct{}, len(venues))
	for _, v := range venues {
		ids[v.ID] = struct{}{}
	}
	return ids
}

func TestSearchAPIThenCache(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(12, "")}}
	o, _ := newTestOrchestrator(store, provider)
	ctx := context.Background()

	first, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, core.SourceAPI, first.Source)
	assert.Len(t, first.Venues, 12)

	second, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, core.SourceCache, second.Source)
	assert.Len(t, provider.calls, 1, "second call must not hit the provider")

	// Identical id sets modulo shuffle ordering
	assert.Equal(t, venueIDs(first.Venues), venueIDs(second.Venues))
}

func TestSearchEnrichesVenues(t *testing.T) {
	store := cache.NewMemoryStore()
	page := makePage(1, "")
	page.Places[0].Photos = []places.Photo{{Name: "places/venue-0/photos/p1"}}
	page.Places[0].EditorialSummary = &places.LocalizedText{Text: "A classic."}
	page.Places[0].WebsiteURI = "https://venue0.example"
	provider := &fakePlaces{pages: []*places.SearchPage{page}}
	o, _ := newTestOrchestrator(store, provider)

	result, err := o.Search(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, result.Venues, 1)

	v := result.Venues[0]
	assert.Equal(t, "venue-0", v.ID)
	assert.Equal(t, "Venue 0", v.Name)
	assert.NotZero(t, v.DateabilityScore)
	assert.Equal(t, "Pitch for Venue 0", v.AIPitch)
	assert.Equal(t, "Book ahead.", v.LogisticsTip)
	assert.Equal(t, "https://venue0.example", v.BookingURL)
	assert.Equal(t, "https://img.test/places/venue-0/photos/p1", v.PhotoURL)
	assert.Equal(t, []string{"Food", "Romantic"}, v.SelectedCategories)
}

func TestSearchNoDuplicateIDsInCache(t *testing.T) {
	store := cache.NewMemoryStore()
	// Same page twice: second fetch (forced by exclusions emptying the
	// entry below threshold) must not duplicate ids.
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(5, "tok"), makePage(5, "")}}
	o, _ := newTestOrchestrator(store, provider)
	ctx := context.Background()

	_, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	_, err = o.Search(ctx, baseRequest())
	require.NoError(t, err)

	data, ok, err := store.Get(ctx, CacheKey(baseRequest()))
	require.NoError(t, err)
	require.True(t, ok)

	var entry core.CacheEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	seen := make(map[string]int)
	for _, v := range entry.Venues {
		seen[v.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "venue %s appears %d times", id, n)
	}
}

func TestSearchExclusion(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(15, "")}}
	o, _ := newTestOrchestrator(store, provider)
	ctx := context.Background()

	_, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)

	req := baseRequest()
	req.ExcludedVenueIDs = []string{"venue-3", "venue-7"}
	result, err := o.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, core.SourceCache, result.Source)

	ids := venueIDs(result.Venues)
	assert.NotContains(t, ids, "venue-3")
	assert.NotContains(t, ids, "venue-7")
	assert.Len(t, result.Venues, 13)
}

func TestSearchBudgetFilter(t *testing.T) {
	store := cache.NewMemoryStore()
	page := &places.SearchPage{Places: []places.Place{
		makePlace("cheap", "Cheap Eats", core.PriceLevelInexpensive),
		makePlace("fancy", "Fancy Tasting Menu", core.PriceLevelVeryExpensive),
	}}
	provider := &fakePlaces{pages: []*places.SearchPage{page}}
	o, _ := newTestOrchestrator(store, provider)

	req := baseRequest()
	req.Budget = 20
	result, err := o.Search(context.Background(), req)
	require.NoError(t, err)

	ids := venueIDs(result.Venues)
	assert.Contains(t, ids, "cheap")
	assert.NotContains(t, ids, "fancy", "a tier above budget must never appear")
}

func TestSearchCacheExhausted(t *testing.T) {
	store := cache.NewMemoryStore()
	// 3 venues below threshold, no cursor: serve them without fetching.
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(3, "")}}
	o, _ := newTestOrchestrator(store, provider)
	ctx := context.Background()

	first, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, core.SourceAPI, first.Source)

	second, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, core.SourceCacheExhausted, second.Source)
	assert.Len(t, second.Venues, 3)
	assert.Len(t, provider.calls, 1, "exhausted entries must not re-query the provider")
}

func TestSearchContinuesPaginationCursor(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{pages: []*places.SearchPage{
		makePage(4, "page2-token"),
		{
			Places:        []places.Place{makePlace("next-0", "Next Venue", core.PriceLevelModerate)},
			NextPageToken: "",
		},
	}}
	o, _ := newTestOrchestrator(store, provider)
	ctx := context.Background()

	_, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)

	second, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, core.SourceAPI, second.Source)

	require.Len(t, provider.calls, 2)
	assert.Empty(t, provider.calls[0].PageToken)
	assert.Equal(t, "page2-token", provider.calls[1].PageToken, "stored cursor must continue the fetch")

	ids := venueIDs(second.Venues)
	assert.Contains(t, ids, "next-0")
	assert.Contains(t, ids, "venue-0")
}

func TestSearchPitchOnlyForNewVenues(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{pages: []*places.SearchPage{
		makePage(4, "tok"),
		// Second page repeats venue-0 and adds one genuinely new venue.
		{Places: []places.Place{
			makePlace("venue-0", "Venue 0", core.PriceLevelModerate),
			makePlace("brand-new", "Brand New", core.PriceLevelModerate),
		}},
	}}
	o, pitches := newTestOrchestrator(store, provider)
	ctx := context.Background()

	_, err := o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Len(t, pitches.generated, 4)

	_, err = o.Search(ctx, baseRequest())
	require.NoError(t, err)
	assert.Len(t, pitches.generated, 5, "cached venues must never be re-pitched")
	assert.Equal(t, "brand-new", pitches.generated[4])
}

func TestSearchProviderErrorAborts(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{err: core.NewUpstreamError("places", 502, "places error (status 500): boom", nil)}
	o, _ := newTestOrchestrator(store, provider)

	_, err := o.Search(context.Background(), baseRequest())
	require.Error(t, err)

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, core.ErrorTypeUpstream, appErr.Type)
}

// failingStore simulates an unavailable cache backend.
type failingStore struct {
	sets int
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return errors.New("connection refused")
}

func (f *failingStore) Delete(context.Context, string) error { return errors.New("connection refused") }
func (f *failingStore) Close() error                         { return nil }

func TestSearchCacheUnavailableDegrades(t *testing.T) {
	store := &failingStore{}
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(2, "")}}
	o, _ := newTestOrchestrator(store, provider)

	// Read failure degrades to a fresh fetch; write failure is swallowed.
	result, err := o.Search(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, core.SourceAPI, result.Source)
	assert.Len(t, result.Venues, 2)
	assert.Equal(t, 1, store.sets, "write should have been attempted")
}

func TestSearchResponseCapped(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(60, "")}}
	o, _ := newTestOrchestrator(store, provider)

	result, err := o.Search(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Len(t, result.Venues, maxResponseVenues)
}

func TestSearchBuildsProviderQuery(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakePlaces{pages: []*places.SearchPage{makePage(1, "")}}
	o, _ := newTestOrchestrator(store, provider)

	lat, lng := 40.71, -74.01
	req := baseRequest()
	req.Lat = &lat
	req.Lng = &lng
	_, err := o.Search(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, provider.calls, 1)
	call := provider.calls[0]
	assert.Contains(t, call.Query, "dinner")
	assert.Contains(t, call.Query, "in NYC")
	assert.Equal(t, "restaurant", call.IncludedType)
	assert.Equal(t, &lat, call.Lat)
	assert.Equal(t, float64(10), call.RadiusMiles)
}
