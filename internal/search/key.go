package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/CelebrityPunks/date-genie/internal/core"
)

// cacheSchemaVersion tags cache keys so incompatible historical entries are
// naturally bypassed instead of migrated.
const cacheSchemaVersion = "v2"

// CacheKey builds the deterministic per-query cache key from normalized
// request fields. Categories are sorted so [A,B] and [B,A] share an entry.
func CacheKey(req *core.SearchRequest) string {
	cats := append([]string(nil), req.Categories...)
	sort.Strings(cats)

	parts := []string{
		"search",
		cacheSchemaVersion,
		normalize(req.City),
		normalize(req.Query),
		strconv.FormatFloat(req.Budget, 'f', -1, 64),
		strconv.FormatFloat(req.Radius, 'f', -1, 64),
		strings.ToLower(strings.Join(cats, ",")),
	}
	return strings.Join(parts, ":")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
