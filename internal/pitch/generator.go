// Package pitch produces the short promotional description and logistics tip
// for a venue, caching results and degrading to a deterministic fallback when
// the text-generation provider is unavailable.
package pitch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/CelebrityPunks/date-genie/internal/cache"
	"github.com/CelebrityPunks/date-genie/internal/core"
	"github.com/CelebrityPunks/date-genie/internal/metrics"
)

const (
	// generatedTTL keeps successfully generated pitches for a long window.
	generatedTTL = 30 * 24 * time.Hour

	// fallbackTTL keeps fallback pitches briefly so a transient provider
	// outage is retried sooner than a genuine cached success.
	fallbackTTL = time.Hour

	systemPrompt = "You are a date concierge. Write 1-2 sentence pitches using ONLY provided facts. " +
		"Incorporate user selected categories naturally. Avoid availability claims unless confirmed."

	genericLogisticsTip = "Check reviews for current hours and make reservations."
)

// TextProvider issues a chat-style completion call and returns the raw
// assistant text. Implementations must honor the context deadline.
type TextProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator computes pitches. Construct once and share; safe for concurrent use.
type Generator struct {
	store    cache.Store
	provider TextProvider
}

// New creates a pitch generator. provider may be nil when no generation
// credential is configured; every pitch then takes the fallback path.
func New(store cache.Store, provider TextProvider) *Generator {
	return &Generator{store: store, provider: provider}
}

// Generate returns the pitch for a venue and preference set. It never fails:
// generation errors silently select the deterministic fallback. The venue is
// not mutated.
func (g *Generator) Generate(ctx context.Context, venue core.Venue, prefs core.Preferences) core.Pitch {
	key := cacheKey(venue.ID, prefs)

	if data, ok, err := g.store.Get(ctx, key); err != nil {
		slog.Warn("pitch cache read failed", "key", key, "error", err)
	} else if ok {
		var cached core.Pitch
		if err := json.Unmarshal(data, &cached); err == nil && cached.Pitch != "" {
			metrics.PitchResultsTotal.WithLabelValues("cached").Inc()
			return cached
		}
	}

	if g.provider == nil {
		return g.fallback(ctx, key, venue, prefs)
	}

	content, err := g.provider.Complete(ctx, systemPrompt, userPrompt(venue, prefs))
	if err != nil {
		slog.Warn("pitch generation failed", "venue", venue.ID, "error", err)
		return g.fallback(ctx, key, venue, prefs)
	}

	result, err := parsePitch(content)
	if err != nil {
		slog.Warn("pitch response unparseable", "venue", venue.ID, "error", err)
		return g.fallback(ctx, key, venue, prefs)
	}

	g.put(ctx, key, result, generatedTTL)
	metrics.PitchResultsTotal.WithLabelValues("generated").Inc()
	return result
}

// fallback builds a deterministic pitch from already-known venue facts and
// caches it with the short retry window.
func (g *Generator) fallback(ctx context.Context, key string, venue core.Venue, prefs core.Preferences) core.Pitch {
	text := venue.Summary
	if text == "" {
		vibes := "unique"
		if len(venue.VibeTags) > 0 {
			vibes = strings.Join(venue.VibeTags, ", ")
		}
		text = fmt.Sprintf("%s offers %s vibes perfect for %s.",
			venue.Name, vibes, strings.Join(prefs.Categories, " or "))
	}

	result := core.Pitch{
		Pitch:        text,
		LogisticsTip: genericLogisticsTip,
	}
	g.put(ctx, key, result, fallbackTTL)
	metrics.PitchResultsTotal.WithLabelValues("fallback").Inc()
	return result
}

func (g *Generator) put(ctx context.Context, key string, p core.Pitch, ttl time.Duration) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := g.store.Set(ctx, key, data, ttl); err != nil {
		slog.Warn("pitch cache write failed", "key", key, "error", err)
	}
}

// cacheKey derives a stable key from the venue id and the serialized
// preference summary. Category order is normalized so [A,B] and [B,A] share
// an entry.
func cacheKey(venueID string, prefs core.Preferences) string {
	normalized := core.Preferences{
		Budget:     prefs.Budget,
		Radius:     prefs.Radius,
		Categories: append([]string(nil), prefs.Categories...),
	}
	sort.Strings(normalized.Categories)

	serialized, _ := json.Marshal(normalized)
	return fmt.Sprintf("pitch:v1:%x:%x", xxhash.Sum64String(venueID), xxhash.Sum64(serialized))
}

// parsePitch extracts a structured pitch from the raw completion text.
// Generation output sometimes arrives wrapped in a markdown code fence.
func parsePitch(content string) (core.Pitch, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result core.Pitch
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return core.Pitch{}, fmt.Errorf("invalid pitch payload: %w", err)
	}
	if result.Pitch == "" {
		return core.Pitch{}, fmt.Errorf("empty pitch in payload")
	}
	if result.LogisticsTip == "" {
		result.LogisticsTip = genericLogisticsTip
	}
	return result, nil
}

// userPrompt renders the fact-bounded generation prompt.
func userPrompt(venue core.Venue, prefs core.Preferences) string {
	category := "unknown"
	if len(venue.Categories) > 0 {
		category = venue.Categories[0]
	}
	vibes := "none"
	if len(venue.VibeTags) > 0 {
		vibes = strings.Join(venue.VibeTags, ", ")
	}

	return fmt.Sprintf(`FACTS: Name: %s, Category: %s, Price: %s, Rating: %v/5, Reviews: %d, Distance: %dmi, Vibes: %s
USER_PREFS: Budget: $%v, Radius: %vmi, Categories: %s

OUTPUT: { "pitch": string, "logistics_tip": string }`,
		venue.Name, category, venue.PriceLevel, venue.Rating, venue.ReviewCount,
		int(venue.Distance+0.5), vibes,
		prefs.Budget, prefs.Radius, strings.Join(prefs.Categories, ", "))
}
