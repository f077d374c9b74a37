// Package search implements the search orchestration and caching layer: it
// decides between serving cached venues, extending a prior paginated fetch,
// and fetching fresh pages, while minimizing calls to the paid places
// provider.
package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/CelebrityPunks/date-genie/internal/analytics"
	"github.com/CelebrityPunks/date-genie/internal/cache"
	"github.com/CelebrityPunks/date-genie/internal/categories"
	"github.com/CelebrityPunks/date-genie/internal/core"
	"github.com/CelebrityPunks/date-genie/internal/metrics"
	"github.com/CelebrityPunks/date-genie/internal/places"
)

const (
	// cacheTTL is the retention window for a per-query cache entry. Every
	// write resets it.
	cacheTTL = 7 * 24 * time.Hour

	// minServeThreshold is the minimum number of non-excluded cached venues
	// required to serve from cache without fetching.
	minServeThreshold = 10

	// maxResponseVenues caps the response size.
	maxResponseVenues = 50

	// providerCallSpacing is the minimum spacing between consecutive
	// outbound provider calls, process-wide. Bursts are delayed, not
	// rejected.
	providerCallSpacing = 100 * time.Millisecond
)

// PlacesSearcher is the slice of the places client the orchestrator uses.
type PlacesSearcher interface {
	SearchText(ctx context.Context, params places.SearchParams) (*places.SearchPage, error)
	PhotoURL(photoName string) string
}

// PitchGenerator attaches promotional copy to newly discovered venues.
type PitchGenerator interface {
	Generate(ctx context.Context, venue core.Venue, prefs core.Preferences) core.Pitch
}

// Orchestrator coordinates cache, provider, scoring, and pitch generation.
// Construct once at process start and share across requests; there is no
// per-key mutual exclusion (see Search for the write-race contract).
type Orchestrator struct {
	store     cache.Store
	places    PlacesSearcher
	pitches   PitchGenerator
	analytics *analytics.Client
	limiter   *rate.Limiter
	ttl       time.Duration
}

// Options overrides orchestrator tunables. Zero values take the defaults.
type Options struct {
	CacheTTL            time.Duration
	ProviderCallSpacing time.Duration
}

// New creates an orchestrator with the default tunables and the shared
// provider-call pacer.
func New(store cache.Store, placesClient PlacesSearcher, pitches PitchGenerator, analyticsClient *analytics.Client) *Orchestrator {
	return NewWithOptions(store, placesClient, pitches, analyticsClient, Options{})
}

// NewWithOptions creates an orchestrator with explicit tunables.
func NewWithOptions(store cache.Store, placesClient PlacesSearcher, pitches PitchGenerator, analyticsClient *analytics.Client, opts Options) *Orchestrator {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cacheTTL
	}
	spacing := opts.ProviderCallSpacing
	if spacing <= 0 {
		spacing = providerCallSpacing
	}
	return &Orchestrator{
		store:     store,
		places:    placesClient,
		pitches:   pitches,
		analytics: analyticsClient,
		limiter:   rate.NewLimiter(rate.Every(spacing), 1),
		ttl:       ttl,
	}
}

// Search executes one validated request. Two concurrent requests for the same
// key may both fetch and both write; last writer wins. The merge deduplicates
// by id, so the race can drop one writer's new venues but never corrupts an
// entry. This weak-consistency behavior is intentional.
func (o *Orchestrator) Search(ctx context.Context, req *core.SearchRequest) (*core.SearchResult, error) {
	key := CacheKey(req)
	entry, found := o.lookup(ctx, key)

	if found {
		remaining := exclude(entry.Venues, req.ExcludedVenueIDs)

		if len(remaining) >= minServeThreshold {
			metrics.CacheOpsTotal.WithLabelValues("hit").Inc()
			o.track(ctx, "cache_hit", req, map[string]interface{}{"cacheKey": key, "source": "redis"})
			return o.respond(core.SourceCache, remaining), nil
		}

		if entry.NextPageToken == "" {
			if len(remaining) > 0 {
				// Below threshold and the provider has no further pages:
				// serve what we have rather than re-query.
				metrics.CacheOpsTotal.WithLabelValues("hit").Inc()
				o.track(ctx, "cache_hit", req, map[string]interface{}{"cacheKey": key, "source": "redis"})
				return o.respond(core.SourceCacheExhausted, remaining), nil
			}
			// Everything excluded and no cursor: fall through to a fresh
			// first-page fetch; the prior venues still participate in the
			// merge so the entry keeps its discovery order.
		}
	} else {
		entry = &core.CacheEntry{}
	}

	metrics.CacheOpsTotal.WithLabelValues("miss").Inc()
	o.track(ctx, "cache_miss", req, map[string]interface{}{"cacheKey": key, "source": "api"})

	merged, err := o.fetchAndMerge(ctx, req, key, entry)
	if err != nil {
		return nil, err
	}

	o.track(ctx, "search_performed", req, map[string]interface{}{
		"city":        req.City,
		"query":       req.Query,
		"categories":  req.Categories,
		"budget":      req.Budget,
		"radius":      req.Radius,
		"resultCount": len(merged),
	})

	return o.respond(core.SourceAPI, exclude(merged, req.ExcludedVenueIDs)), nil
}

// lookup reads and decodes the cache entry for key. Any store or decode
// failure degrades to a miss so the request proceeds to a fresh fetch.
func (o *Orchestrator) lookup(ctx context.Context, key string) (*core.CacheEntry, bool) {
	data, ok, err := o.store.Get(ctx, key)
	if err != nil {
		metrics.CacheOpsTotal.WithLabelValues("error").Inc()
		slog.Warn("search cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry core.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("search cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return &entry, true
}

// fetchAndMerge fetches one provider page (continuing entry's cursor when
// present), enriches the new venues, merges them into the prior entry, and
// writes the result back under key. Returns the merged venue list.
func (o *Orchestrator) fetchAndMerge(ctx context.Context, req *core.SearchRequest, key string, entry *core.CacheEntry) ([]core.Venue, error) {
	// Smooth bursts against the provider's own rate limits: delay, don't
	// reject. The limiter is the process-wide last-call watermark.
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, core.NewInternalError("request canceled while pacing provider call", err)
	}

	params := places.SearchParams{
		Query:       categories.BuildSearchQuery(req.City, req.Query, req.Categories),
		PageToken:   entry.NextPageToken,
		Lat:         req.Lat,
		Lng:         req.Lng,
		RadiusMiles: req.Radius,
	}
	if types := categories.PlaceTypes(req.Categories); len(types) > 0 {
		params.IncludedType = types[0]
	}

	page, err := o.places.SearchText(ctx, params)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ProviderRequestsTotal.WithLabelValues("ok").Inc()

	// Enrich only venues we have not seen before; previously cached venues
	// are immutable and their pitches are never recomputed.
	known := make(map[string]struct{}, len(entry.Venues))
	for _, v := range entry.Venues {
		known[v.ID] = struct{}{}
	}

	prefs := req.Preferences()
	var fresh []core.Venue
	for _, place := range page.Places {
		if _, dup := known[place.PlaceID()]; dup {
			continue
		}
		venue := o.buildVenue(place, req)
		if !withinBudget(venue.PriceLevel, req.Budget) {
			continue
		}
		p := o.pitches.Generate(ctx, venue, prefs)
		venue.AIPitch = p.Pitch
		venue.LogisticsTip = p.LogisticsTip
		fresh = append(fresh, venue)
		known[venue.ID] = struct{}{}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].DateabilityScore > fresh[j].DateabilityScore
	})

	merged := append(append([]core.Venue(nil), entry.Venues...), fresh...)

	o.writeBack(ctx, key, &core.CacheEntry{
		Venues:        merged,
		NextPageToken: page.NextPageToken,
	})

	return merged, nil
}

// writeBack persists the merged entry, resetting the retention window.
// Write failures are swallowed: the request still succeeds without caching.
func (o *Orchestrator) writeBack(ctx context.Context, key string, entry *core.CacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("search cache entry marshal failed", "key", key, "error", err)
		return
	}
	if err := o.store.Set(ctx, key, data, o.ttl); err != nil {
		metrics.CacheOpsTotal.WithLabelValues("error").Inc()
		slog.Warn("search cache write failed", "key", key, "error", err)
	}
}

// respond shuffles uniformly, truncates, and labels the result.
func (o *Orchestrator) respond(source string, venues []core.Venue) *core.SearchResult {
	out := append([]core.Venue(nil), venues...)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	if len(out) > maxResponseVenues {
		out = out[:maxResponseVenues]
	}

	metrics.SearchesTotal.WithLabelValues(source).Inc()
	return &core.SearchResult{Source: source, Venues: out}
}

// exclude filters out venues whose id the client has already seen.
func exclude(venues []core.Venue, excludedIDs []string) []core.Venue {
	if len(excludedIDs) == 0 {
		return venues
	}
	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}

	var out []core.Venue
	for _, v := range venues {
		if _, skip := excluded[v.ID]; skip {
			continue
		}
		out = append(out, v)
	}
	return out
}

// track emits a best-effort analytics event for identified users.
func (o *Orchestrator) track(ctx context.Context, event string, req *core.SearchRequest, properties map[string]interface{}) {
	if req.UserID == "" {
		return
	}
	properties["userId"] = req.UserID
	if id := core.RequestID(ctx); id != "" {
		properties["requestId"] = id
	}
	o.analytics.Track(event, properties)
}
