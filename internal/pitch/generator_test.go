package pitch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CelebrityPunks/date-genie/internal/cache"
	"github.com/CelebrityPunks/date-genie/internal/core"
)

// stubProvider implements TextProvider for testing
type stubProvider struct {
	content string
	err     error
	calls   int
}

func (s *stubProvider) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.content, nil
}

func testVenue() core.Venue {
	return core.Venue{
		ID:         "abc123",
		Name:       "Corner Cafe",
		PriceLevel: core.PriceLevelModerate,
		Rating:     4.4,
		VibeTags:   []string{"coffee", "cozy"},
		Categories: []string{"cafe"},
	}
}

func testPrefs() core.Preferences {
	return core.Preferences{Budget: 100, Radius: 10, Categories: []string{"Food", "Relaxed"}}
}

func TestGenerateSuccess(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &stubProvider{content: `{"pitch":"A cozy spot for coffee dates.","logistics_tip":"Weekday mornings are quiet."}`}
	gen := New(store, provider)

	got := gen.Generate(context.Background(), testVenue(), testPrefs())
	if got.Pitch != "A cozy spot for coffee dates." {
		t.Errorf("Pitch = %q", got.Pitch)
	}
	if got.LogisticsTip != "Weekday mornings are quiet." {
		t.Errorf("LogisticsTip = %q", got.LogisticsTip)
	}

	// Second call served from cache, no provider call
	_ = gen.Generate(context.Background(), testVenue(), testPrefs())
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit expected)", provider.calls)
	}
}

func TestGenerateFencedJSON(t *testing.T) {
	gen := New(cache.NewMemoryStore(), &stubProvider{
		content: "```json\n{\"pitch\":\"Great views.\",\"logistics_tip\":\"Go at sunset.\"}\n```",
	})

	got := gen.Generate(context.Background(), testVenue(), testPrefs())
	if got.Pitch != "Great views." {
		t.Errorf("Pitch = %q", got.Pitch)
	}
}

func TestGenerateUnconfiguredUsesFallback(t *testing.T) {
	gen := New(cache.NewMemoryStore(), nil)

	got := gen.Generate(context.Background(), testVenue(), testPrefs())
	want := "Corner Cafe offers coffee, cozy vibes perfect for Food or Relaxed."
	if got.Pitch != want {
		t.Errorf("Pitch = %q, want %q", got.Pitch, want)
	}
	if got.LogisticsTip != genericLogisticsTip {
		t.Errorf("LogisticsTip = %q", got.LogisticsTip)
	}
}

func TestGenerateProviderErrorUsesFallback(t *testing.T) {
	gen := New(cache.NewMemoryStore(), &stubProvider{err: errors.New("rate limited")})

	got := gen.Generate(context.Background(), testVenue(), testPrefs())
	if got.Pitch == "" {
		t.Fatal("fallback pitch must be non-empty")
	}
	if strings.Contains(got.Pitch, "error") {
		t.Errorf("fallback must not leak error text: %q", got.Pitch)
	}
}

func TestGenerateParseFailureUsesFallback(t *testing.T) {
	gen := New(cache.NewMemoryStore(), &stubProvider{content: "sorry, I can't do that"})

	got := gen.Generate(context.Background(), testVenue(), testPrefs())
	if !strings.HasPrefix(got.Pitch, "Corner Cafe offers") {
		t.Errorf("expected fallback pitch, got %q", got.Pitch)
	}
}

func TestFallbackPrefersProviderSummary(t *testing.T) {
	gen := New(cache.NewMemoryStore(), nil)

	v := testVenue()
	v.Summary = "A beloved neighborhood cafe with a leafy patio."
	got := gen.Generate(context.Background(), v, testPrefs())
	if got.Pitch != v.Summary {
		t.Errorf("Pitch = %q, want provider summary", got.Pitch)
	}
}

func TestFallbackCachedWithShortExpiry(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &stubProvider{err: errors.New("down")}
	gen := New(store, provider)

	_ = gen.Generate(context.Background(), testVenue(), testPrefs())

	// Fallback was cached: immediate retry serves from cache
	_ = gen.Generate(context.Background(), testVenue(), testPrefs())
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}

	// After the fallback entry is gone, generation is retried
	if err := store.Delete(context.Background(), cacheKey("abc123", testPrefs())); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = gen.Generate(context.Background(), testVenue(), testPrefs())
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2 after expiry", provider.calls)
	}
}

func TestCacheKeyCategoryOrderIndependent(t *testing.T) {
	a := cacheKey("v1", core.Preferences{Budget: 50, Radius: 5, Categories: []string{"Food", "Romantic"}})
	b := cacheKey("v1", core.Preferences{Budget: 50, Radius: 5, Categories: []string{"Romantic", "Food"}})
	if a != b {
		t.Errorf("cache keys differ by category order: %q vs %q", a, b)
	}

	c := cacheKey("v2", core.Preferences{Budget: 50, Radius: 5, Categories: []string{"Food", "Romantic"}})
	if a == c {
		t.Error("different venues must not share a pitch cache key")
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"pitch\":\"x\",\"logistics_tip\":\"y\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test")
	client.SetBaseURL(srv.URL)

	content, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, `"pitch"`) {
		t.Errorf("content = %q", content)
	}
}

func TestOpenAIClientEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test")
	client.SetBaseURL(srv.URL)

	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty completion")
	}
}
